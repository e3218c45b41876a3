// Package agenthttp serves the state of an agent's option, and the agent's
// metrics, over HTTP.
package agenthttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/austincho/crystal-protocol/agent"
	"github.com/austincho/crystal-protocol/option"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// New returns a handler serving the option at /option and the metrics
// gathered by the gatherer at /metrics. If the gatherer is nil no metrics
// are served.
func New(a *agent.Agent, g prometheus.Gatherer) http.Handler {
	m := http.NewServeMux()
	m.HandleFunc("/option", handleOption(a))
	if g != nil {
		m.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	}
	return cors.Default().Handler(m)
}

// Option is the document served at /option.
type Option struct {
	Custodian               string         `json:"custodian"`
	CollateralAtInstantiate bool           `json:"collateral_at_instantiate"`
	Record                  *option.Record `json:"record"`
	Escrowed                option.Bundle  `json:"escrowed"`
}

func handleOption(a *agent.Agent) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		v := Option{
			Custodian:               a.Custodian(),
			CollateralAtInstantiate: a.CollateralAtInstantiate(),
			Escrowed:                option.Bundle{},
		}
		record, err := a.Query(r.Context())
		if err != nil && !errors.Is(err, option.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err == nil {
			v.Record = &record
			v.Escrowed, err = a.Escrowed(record)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(v)
		if err != nil {
			panic(err)
		}
	}
}
