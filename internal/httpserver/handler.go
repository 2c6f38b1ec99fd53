package httpserver

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/httpserver/apierror"
	"github.com/davidbz/bridge/internal/observability"
)

const maxBodyBytes = 10 << 20

// Handler handles HTTP requests.
type Handler struct {
	gateway   *domain.GatewayService
	providers domain.ProviderRegistry
	startedAt time.Time
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(gateway *domain.GatewayService, providers domain.ProviderRegistry) *Handler {
	return &Handler{
		gateway:   gateway,
		providers: providers,
		startedAt: time.Now(),
	}
}

// HandleRoot describes the service.
func (h *Handler) HandleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "OpenAI-compatible bridge for Anthropic and Gemini",
		"models":  "/v1/models",
		"health":  "/health",
	})
}

// HandleHealth reports healthy when at least one credentialed upstream is configured.
// The echo provider needs no credentials and does not count.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	providers, err := h.providers.List(r.Context())
	if err != nil || !hasUpstream(providers) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"providers": providers,
	})
}

func hasUpstream(providers []string) bool {
	for _, name := range providers {
		if domain.ProviderTag(name) != domain.ProviderEcho {
			return true
		}
	}
	return false
}

// HandleModels lists the routable models in configuration order.
func (h *Handler) HandleModels(w http.ResponseWriter, r *http.Request) {
	created := h.startedAt.Unix()
	models := h.gateway.Models(r.Context())

	list := modelList{Object: objectList, Data: make([]modelObject, 0, len(models))}
	for _, desc := range models {
		list.Data = append(list.Data, toModelObject(desc, created))
	}

	writeJSON(w, http.StatusOK, list)
}

// HandleModel returns a single model.
func (h *Handler) HandleModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	desc, err := h.gateway.Model(ctx, r.PathValue("id"))
	if err != nil {
		apierror.Write(ctx, w, err)
		return
	}

	writeJSON(w, http.StatusOK, toModelObject(desc, h.startedAt.Unix()))
}

// HandleChatCompletions processes chat completion requests.
func (h *Handler) HandleChatCompletions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.CompletionRequest
	if err := decodeBody(w, r, &req); err != nil {
		apierror.Write(ctx, w, err)
		return
	}

	// Inject model into context for downstream logging.
	ctx = observability.WithModel(ctx, req.Model)

	logger := observability.FromContext(ctx)
	logger.Info("completion request received",
		observability.Int("messages", len(req.Messages)),
		observability.Bool("stream", req.Stream),
	)

	if req.Stream {
		h.handleStream(ctx, w, &req)
		return
	}

	response, err := h.gateway.Complete(ctx, &req)
	if err != nil {
		apierror.Write(ctx, w, err)
		return
	}

	logger.Info("completion succeeded",
		observability.Int("tokens", response.Usage.TotalTokens),
		observability.String("finish_reason", string(response.FinishReason)),
	)

	writeJSON(w, http.StatusOK, toChatCompletion(response, time.Now().Unix()))
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if err := sonic.ConfigDefault.NewDecoder(body).Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return &apierror.DecodeError{Err: errors.New("request body is required")}
		}
		return &apierror.DecodeError{Err: err}
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := sonic.Marshal(payload)
	if err != nil {
		apierror.Write(context.Background(), w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
