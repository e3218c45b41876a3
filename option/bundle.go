package option

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Coin is an amount of a single denomination.
type Coin struct {
	Denom  string `json:"denom"`
	Amount int64  `json:"amount"`
}

func (c Coin) String() string {
	return strconv.FormatInt(c.Amount, 10) + c.Denom
}

// Coins returns a bundle containing a single coin.
func Coins(amount int64, denom string) Bundle {
	return Bundle{{Denom: denom, Amount: amount}}
}

// Bundle is a set of coins with unique denominations. The order of coins in a
// bundle is not significant.
type Bundle []Coin

// Validate checks that every coin has a denomination and a positive amount,
// and that no denomination appears twice.
func (b Bundle) Validate() error {
	seen := make(map[string]bool, len(b))
	for _, c := range b {
		if c.Denom == "" {
			return errors.New("coin has empty denomination")
		}
		if c.Amount <= 0 {
			return fmt.Errorf("coin %s: amount must be greater than 0", c)
		}
		if seen[c.Denom] {
			return fmt.Errorf("denomination %s appears more than once", c.Denom)
		}
		seen[c.Denom] = true
	}
	return nil
}

// Equal returns true if both bundles contain exactly the same denominations
// with the same amounts, regardless of order. A nil bundle is equal to an
// empty bundle.
func (b Bundle) Equal(o Bundle) bool {
	if len(b) != len(o) {
		return false
	}
	amounts := make(map[string]int64, len(o))
	for _, c := range o {
		amounts[c.Denom] = c.Amount
	}
	if len(amounts) != len(o) {
		return false
	}
	seen := make(map[string]bool, len(b))
	for _, c := range b {
		a, ok := amounts[c.Denom]
		if !ok || a != c.Amount || seen[c.Denom] {
			return false
		}
		seen[c.Denom] = true
	}
	return true
}

// IsZero returns true if the bundle holds no value.
func (b Bundle) IsZero() bool {
	for _, c := range b {
		if c.Amount != 0 {
			return false
		}
	}
	return true
}

// AmountOf returns the amount of the denomination in the bundle.
func (b Bundle) AmountOf(denom string) int64 {
	sum := int64(0)
	for _, c := range b {
		if c.Denom == denom {
			sum += c.Amount
		}
	}
	return sum
}

// IsAnyNegative returns true if any coin in the bundle has a negative
// amount.
func (b Bundle) IsAnyNegative() bool {
	for _, c := range b {
		if c.Amount < 0 {
			return true
		}
	}
	return false
}

// ErrOverflow is returned when a sum of amounts does not fit in an int64.
var ErrOverflow = errors.New("amount overflows")

func addAmount(a, b int64) (int64, error) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, ErrOverflow
	}
	return s, nil
}

// Normalize returns a copy of the bundle with coins of the same denomination
// merged, zero coins dropped, and coins sorted by denomination. An error
// wrapping ErrOverflow is returned if merging a denomination overflows.
func (b Bundle) Normalize() (Bundle, error) {
	amounts := map[string]int64{}
	for _, c := range b {
		a, err := addAmount(amounts[c.Denom], c.Amount)
		if err != nil {
			return nil, fmt.Errorf("adding %s: %w", c, err)
		}
		amounts[c.Denom] = a
	}
	n := Bundle{}
	for d, a := range amounts {
		if a == 0 {
			continue
		}
		n = append(n, Coin{Denom: d, Amount: a})
	}
	sort.Slice(n, func(i, j int) bool { return n[i].Denom < n[j].Denom })
	return n, nil
}

// Add returns the normalized sum of both bundles.
func (b Bundle) Add(o Bundle) (Bundle, error) {
	sum := make(Bundle, 0, len(b)+len(o))
	sum = append(sum, b...)
	sum = append(sum, o...)
	return sum.Normalize()
}

// ErrNegativeBundle is returned by Sub when the result would contain a
// negative amount.
var ErrNegativeBundle = errors.New("bundle amount would be negative")

// Sub returns the normalized difference of the bundles, or an error if any
// denomination would become negative. Coins subtracted must not be negative.
func (b Bundle) Sub(o Bundle) (Bundle, error) {
	n, err := b.Normalize()
	if err != nil {
		return nil, err
	}
	sub, err := o.Normalize()
	if err != nil {
		return nil, err
	}
	for _, c := range sub {
		if c.Amount < 0 {
			return nil, fmt.Errorf("subtracting %s: %w", c, ErrNegativeBundle)
		}
		have := n.AmountOf(c.Denom)
		if have < c.Amount {
			return nil, fmt.Errorf("subtracting %s from %s: %w", c, Coin{Denom: c.Denom, Amount: have}, ErrNegativeBundle)
		}
		n, err = append(n, Coin{Denom: c.Denom, Amount: -c.Amount}).Normalize()
		if err != nil {
			return nil, err
		}
	}
	return n, nil
}

// Sum returns the normalized total of a list of bundles.
func Sum(bundles ...Bundle) (Bundle, error) {
	total := Bundle{}
	for _, b := range bundles {
		var err error
		total, err = total.Add(b)
		if err != nil {
			return nil, err
		}
	}
	return total, nil
}

func (b Bundle) String() string {
	parts := make([]string, len(b))
	for i, c := range b {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

var coinPattern = regexp.MustCompile(`^([0-9]+)([a-zA-Z][a-zA-Z0-9/:._-]*)$`)

// ParseBundle parses a comma separated list of coins, such as
// "10uusd,1uluna". Denominations may contain colons so that assets written
// as CODE:ISSUER can be used. An empty string is an empty bundle.
func ParseBundle(s string) (Bundle, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Bundle{}, nil
	}
	b := Bundle{}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		m := coinPattern.FindStringSubmatch(part)
		if m == nil {
			return nil, fmt.Errorf("parsing coin %q: expected <amount><denom>", part)
		}
		amount, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing coin %q amount: %w", part, err)
		}
		b = append(b, Coin{Denom: m[2], Amount: amount})
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("parsing bundle %q: %w", s, err)
	}
	return b, nil
}
