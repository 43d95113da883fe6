package control

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
)

// Handler processes one control command.
type Handler interface {
	Handle(context.Context, Command) Reply
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(context.Context, Command) Reply

func (f HandlerFunc) Handle(ctx context.Context, cmd Command) Reply {
	return f(ctx, cmd)
}

// Serve accepts unix-socket clients until context cancellation or listener
// close. Each connection carries exactly one newline-terminated JSON command
// and receives one JSON reply.
func Serve(ctx context.Context, listener net.Listener, handler Handler) error {
	var wg sync.WaitGroup

	go func() {
		<-ctx.Done()
		_ = listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) || ctx.Err() != nil {
				wg.Wait()
				return nil
			}
			return fmt.Errorf("accept control connection: %w", err)
		}

		wg.Add(1)
		go func(c net.Conn) {
			defer wg.Done()
			defer c.Close()

			line, err := bufio.NewReader(c).ReadBytes('\n')
			if err != nil {
				_ = json.NewEncoder(c).Encode(Reply{OK: false, Error: fmt.Sprintf("read command: %v", err)})
				return
			}

			var cmd Command
			if err := json.Unmarshal(line, &cmd); err != nil {
				_ = json.NewEncoder(c).Encode(Reply{OK: false, Error: fmt.Sprintf("decode command: %v", err)})
				return
			}

			_ = json.NewEncoder(c).Encode(handler.Handle(ctx, cmd))
		}(conn)
	}
}
