package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/austincho/crystal-protocol/msg"
)

// ServeTCP listens on the address and serves connections until the context
// is done.
func (a *Agent) ServeTCP(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on the listener until the context is done,
// handling the messages received on each connection in order. The listener
// is closed when Serve returns.
func (a *Agent) Serve(ctx context.Context, ln net.Listener) error {
	fmt.Fprintf(a.logWriter, "listening on %v\n", ln.Addr())
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("accepting incoming connection: %w", err)
		}
		fmt.Fprintf(a.logWriter, "accepted connection from %v\n", conn.RemoteAddr())
		go a.serveConn(ctx, conn)
	}
}

func (a *Agent) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	recv := msg.NewDecoder(conn)
	send := msg.NewEncoder(conn)
	for {
		m := msg.Message{}
		err := recv.Decode(&m)
		if errors.Is(err, io.EOF) {
			fmt.Fprintf(a.logWriter, "connection from %v closed\n", conn.RemoteAddr())
			return
		}
		if err != nil {
			if ctx.Err() == nil {
				fmt.Fprintf(a.logWriter, "error reading and decoding from %v: %v\n", conn.RemoteAddr(), err)
			}
			return
		}
		err = send.Encode(a.Handle(ctx, m))
		if err != nil {
			fmt.Fprintf(a.logWriter, "error encoding response to %v: %v\n", conn.RemoteAddr(), err)
			return
		}
	}
}
