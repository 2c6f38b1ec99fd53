package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/httpserver/apierror"
	"github.com/davidbz/bridge/internal/observability"
)

var doneFrame = []byte("data: [DONE]\n\n")

// chunkWriter frames normalized chunks as OpenAI chat.completion.chunk events.
type chunkWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	id      string
	model   string
	created int64
}

func (h *Handler) handleStream(
	ctx context.Context,
	w http.ResponseWriter,
	req *domain.CompletionRequest,
) {
	logger := observability.FromContext(ctx)

	chunks, err := h.gateway.Stream(ctx, req)
	if err != nil {
		apierror.Write(ctx, w, err)
		return
	}

	observability.StreamingConnections.Inc()
	defer observability.StreamingConnections.Dec()

	cw := &chunkWriter{
		w:       w,
		rc:      http.NewResponseController(w),
		id:      newCompletionID(),
		model:   req.Model,
		created: time.Now().Unix(),
	}

	// Long streams must not be cut by the server write timeout.
	_ = cw.rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := cw.write(wireDelta{Role: domain.RoleAssistant}, nil, nil); err != nil {
		logger.Info("client went away before the first chunk", observability.Error(err))
		return
	}

	finished := false
	for chunk := range chunks {
		if chunk.Error != nil {
			logger.Warn("stream interrupted, closing with synthesized stop", observability.Error(chunk.Error))
			break
		}

		if chunk.Delta != "" {
			if err := cw.write(wireDelta{Content: chunk.Delta}, nil, nil); err != nil {
				logger.Info("client went away", observability.Error(err))
				return
			}
		}

		if chunk.Done {
			finish := chunk.FinishReason
			if finish == "" {
				finish = domain.FinishReasonStop
			}
			if err := cw.finish(finish, chunk.Usage); err != nil {
				logger.Info("client went away", observability.Error(err))
				return
			}
			finished = true
			break
		}
	}

	if !finished {
		if ctx.Err() != nil {
			logger.Info("stream context done", observability.Error(ctx.Err()))
			return
		}
		if err := cw.finish(domain.FinishReasonStop, nil); err != nil {
			return
		}
	}

	if err := cw.raw(doneFrame); err != nil {
		return
	}

	logger.Info("stream completed")
}

func (c *chunkWriter) finish(reason domain.FinishReason, usage *domain.Usage) error {
	finish := string(reason)

	var wire *wireUsage
	if usage != nil {
		u := toWireUsage(*usage)
		wire = &u
	}

	return c.write(wireDelta{}, &finish, wire)
}

func (c *chunkWriter) write(delta wireDelta, finish *string, usage *wireUsage) error {
	data, err := sonic.Marshal(chatChunk{
		ID:      c.id,
		Object:  objectChunk,
		Created: c.created,
		Model:   c.model,
		Choices: []chunkChoice{{Index: 0, Delta: delta, FinishReason: finish}},
		Usage:   usage,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal chunk: %w", err)
	}

	frame := make([]byte, 0, len(data)+len("data: \n\n"))
	frame = append(frame, "data: "...)
	frame = append(frame, data...)
	frame = append(frame, "\n\n"...)

	return c.raw(frame)
}

func (c *chunkWriter) raw(frame []byte) error {
	if _, err := c.w.Write(frame); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}
	if err := c.rc.Flush(); err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}
	return nil
}
