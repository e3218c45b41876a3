package agent

import (
	"fmt"
	"net"
	"sync"

	"github.com/austincho/crystal-protocol/msg"
)

// Client sends requests to an agent over a TCP connection. Requests are sent
// one at a time.
type Client struct {
	mu   sync.Mutex
	conn net.Conn
	send *msg.Encoder
	recv *msg.Decoder
}

// Dial connects to the agent listening on the address.
func Dial(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return NewClient(conn), nil
}

// NewClient returns a client that uses the connection.
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn: conn,
		send: msg.NewEncoder(conn),
		recv: msg.NewDecoder(conn),
	}
}

// Do sends the request and waits for its response. If the agent reports an
// error it is returned as a *msg.Error along with the response.
func (c *Client) Do(req msg.Message) (msg.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := c.send.Encode(req)
	if err != nil {
		return msg.Message{}, fmt.Errorf("sending %v: %w", req.Type, err)
	}
	resp := msg.Message{}
	err = c.recv.Decode(&resp)
	if err != nil {
		return msg.Message{}, fmt.Errorf("receiving response to %v: %w", req.Type, err)
	}
	if resp.ID != req.ID {
		return resp, fmt.Errorf("response %s does not answer request %s", resp.ID, req.ID)
	}
	if resp.Response == nil {
		return resp, fmt.Errorf("response to %v is empty", req.Type)
	}
	if resp.Response.Error != nil {
		return resp, resp.Response.Error
	}
	return resp, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}
