package domain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/davidbz/bridge/internal/observability"
)

const (
	outcomeOK          = "ok"
	outcomeInterrupted = "interrupted"
	outcomeCanceled    = "canceled"
)

// UsageRecordTimeout bounds a single usage write so a stalled ledger cannot hold a response.
const UsageRecordTimeout = 250 * time.Millisecond

// GatewayService orchestrates requests to providers.
type GatewayService struct {
	router Router
	usage  UsageRecorder
}

// NewGatewayService creates a new gateway service (DI constructor).
// usage may be nil, in which case no usage is recorded.
func NewGatewayService(router Router, usage UsageRecorder) *GatewayService {
	return &GatewayService{
		router: router,
		usage:  usage,
	}
}

// Complete handles a non-streaming completion request.
func (g *GatewayService) Complete(
	ctx context.Context,
	req *CompletionRequest,
) (*CompletionResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	route, err := g.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithProvider(ctx, string(route.Descriptor.Provider))
	logger := observability.FromContext(ctx)

	start := time.Now()
	response, err := route.Provider.Complete(ctx, nativeRequest(req, route.Descriptor))
	observeProvider(route.Descriptor, start, err)
	if err != nil {
		logger.Error("completion failed", observability.Error(err))
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	response.Model = route.Descriptor.PublicID
	if response.FinishReason == "" {
		response.FinishReason = FinishReasonStop
	}

	g.recordUsage(ctx, route.Descriptor, response.Usage)

	return response, nil
}

// Stream handles streaming completion requests. Chunks are relayed in upstream order.
func (g *GatewayService) Stream(
	ctx context.Context,
	req *CompletionRequest,
) (<-chan StreamChunk, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	route, err := g.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	ctx = observability.WithProvider(ctx, string(route.Descriptor.Provider))

	start := time.Now()
	chunks, err := route.Provider.Stream(ctx, nativeRequest(req, route.Descriptor))
	if err != nil {
		observeProvider(route.Descriptor, start, err)
		observability.FromContext(ctx).Error("stream failed to start", observability.Error(err))
		return nil, fmt.Errorf("failed to stream from provider: %w", err)
	}

	out := make(chan StreamChunk)
	go g.relay(ctx, route.Descriptor, start, chunks, out)

	return out, nil
}

// Models returns the routable model descriptors.
func (g *GatewayService) Models(ctx context.Context) []ModelDescriptor {
	return g.router.Models(ctx)
}

// Model returns a single routable descriptor.
func (g *GatewayService) Model(ctx context.Context, publicID string) (ModelDescriptor, error) {
	route, err := g.router.Route(ctx, publicID)
	if err != nil {
		return ModelDescriptor{}, err
	}
	return route.Descriptor, nil
}

func (g *GatewayService) prepare(ctx context.Context, req *CompletionRequest) (*Route, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	route, err := g.router.Route(ctx, req.Model)
	if err != nil {
		return nil, err
	}

	if err := ValidateForModel(req, route.Descriptor); err != nil {
		return nil, err
	}

	return route, nil
}

func (g *GatewayService) relay(
	ctx context.Context,
	desc ModelDescriptor,
	start time.Time,
	in <-chan StreamChunk,
	out chan<- StreamChunk,
) {
	// Usage is written after out is closed, so the client sees [DONE] first.
	var final *Usage
	defer func() {
		if final != nil {
			g.recordUsage(ctx, desc, *final)
		}
	}()
	defer close(out)

	logger := observability.FromContext(ctx)
	outcome := outcomeOK

	defer func() {
		observability.ProviderRequestsTotal.WithLabelValues(string(desc.Provider), desc.PublicID, outcome).Inc()
		observability.ProviderLatency.WithLabelValues(string(desc.Provider), desc.PublicID).Observe(time.Since(start).Seconds())
	}()

	for chunk := range in {
		if chunk.Error != nil {
			outcome = outcomeInterrupted
			logger.Warn("upstream stream interrupted", observability.Error(chunk.Error))
		}

		if chunk.Done && chunk.Usage != nil {
			final = chunk.Usage
		}

		select {
		case out <- chunk:
		case <-ctx.Done():
			outcome = outcomeCanceled
			logger.Info("client went away, abandoning stream", observability.Error(ctx.Err()))
			return
		}
	}
}

func (g *GatewayService) recordUsage(ctx context.Context, desc ModelDescriptor, usage Usage) {
	provider := string(desc.Provider)
	observability.ProviderTokensTotal.WithLabelValues(provider, desc.PublicID, "input").Add(float64(usage.PromptTokens))
	observability.ProviderTokensTotal.WithLabelValues(provider, desc.PublicID, "output").Add(float64(usage.CompletionTokens))

	if g.usage == nil {
		return
	}

	user := observability.GetUser(ctx)
	if user == "" {
		return
	}

	// Detached from the request so a client leaving right after the final chunk still counts.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), UsageRecordTimeout)
	defer cancel()

	if err := g.usage.Record(recordCtx, user, desc.PublicID, usage); err != nil {
		observability.FromContext(ctx).Warn("failed to record usage", observability.Error(err))
	}
}

// nativeRequest copies the request with the public model id swapped for the native one.
func nativeRequest(req *CompletionRequest, desc ModelDescriptor) *CompletionRequest {
	native := *req
	native.Model = desc.NativeID
	return &native
}

func observeProvider(desc ModelDescriptor, start time.Time, err error) {
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeFor(err)
	}
	observability.ProviderRequestsTotal.WithLabelValues(string(desc.Provider), desc.PublicID, outcome).Inc()
	observability.ProviderLatency.WithLabelValues(string(desc.Provider), desc.PublicID).Observe(time.Since(start).Seconds())
}

func outcomeFor(err error) string {
	var providerErr *ProviderError
	switch {
	case errors.As(err, &providerErr):
		return providerErr.Kind.String()
	case errors.Is(err, context.Canceled):
		return outcomeCanceled
	default:
		return "error"
	}
}
