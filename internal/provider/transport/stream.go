package transport

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/sse"
)

// EventHandler normalizes one upstream SSE event into zero or more chunks.
// Returning done ends the stream after the chunks are delivered.
type EventHandler func(ev *sse.Event) (chunks []domain.StreamChunk, done bool, err error)

// StreamEvents pumps the SSE body of resp through handle on a new goroutine.
//
// ctx is the caller's context and cancel cancels the context the upstream request was
// issued with. Every event kicks w. When the body ends without handle reporting done,
// finish supplies the final chunk. Read failures and handler errors are delivered as a
// chunk carrying a *domain.StreamInterruptedError. The body is closed and cancel is
// called before the channel closes.
func StreamEvents(
	ctx context.Context,
	cancel context.CancelFunc,
	provider string,
	resp *http.Response,
	w *Watchdog,
	handle EventHandler,
	finish func() domain.StreamChunk,
) <-chan domain.StreamChunk {
	out := make(chan domain.StreamChunk)

	go func() {
		defer close(out)
		defer cancel()
		defer w.Stop()
		defer resp.Body.Close()

		send := func(chunk domain.StreamChunk) bool {
			select {
			case out <- chunk:
				return true
			case <-ctx.Done():
				return false
			}
		}

		reader := sse.NewReader(resp.Body)
		for {
			ev, err := reader.Next()
			if errors.Is(err, io.EOF) {
				send(finish())
				return
			}
			if err != nil {
				if ctx.Err() == nil {
					send(domain.StreamChunk{Error: Interrupted(provider, err, w)})
				}
				return
			}

			w.Kick()

			chunks, done, err := handle(ev)
			if err != nil {
				send(domain.StreamChunk{Error: &domain.StreamInterruptedError{Provider: provider, Err: err}})
				return
			}

			for _, chunk := range chunks {
				if !send(chunk) {
					return
				}
			}

			if done {
				return
			}
		}
	}()

	return out
}
