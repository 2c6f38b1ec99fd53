package registry

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/davidbz/bridge/internal/domain"
	"github.com/davidbz/bridge/internal/observability"
)

//go:embed models.yaml
var defaultCatalog []byte

// Config selects the catalog file.
type Config struct {
	ModelsFile string `env:"MODELS_FILE"`
}

// catalogFile is the YAML shape of a model catalog.
type catalogFile struct {
	Providers []providerBlock `yaml:"providers"`
}

type providerBlock struct {
	Provider string       `yaml:"provider"`
	Models   []modelEntry `yaml:"models"`
}

type modelEntry struct {
	ID               string `yaml:"id"`
	NativeID         string `yaml:"native_id"`
	MaxContextTokens int    `yaml:"max_context_tokens"`
	MaxOutputTokens  int    `yaml:"max_output_tokens"`
	Streaming        *bool  `yaml:"streaming"`
}

// Catalog implements domain.ModelRegistry. It is immutable after construction.
type Catalog struct {
	ordered []domain.ModelDescriptor
	byID    map[string]int
}

// NewCatalog loads the configured catalog, keeping only blocks whose provider is
// registered (DI constructor).
func NewCatalog(cfg *Config, providers domain.ProviderRegistry) (*Catalog, error) {
	data := defaultCatalog
	source := "embedded catalog"

	if cfg != nil && cfg.ModelsFile != "" {
		var err error
		data, err = os.ReadFile(cfg.ModelsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read models file %q: %w", cfg.ModelsFile, err)
		}
		source = cfg.ModelsFile
	}

	ctx := context.Background()
	enabled := func(tag domain.ProviderTag) bool {
		_, err := providers.Get(ctx, string(tag))
		return err == nil
	}

	catalog, err := ParseCatalog(data, enabled)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}

	observability.FromContext(ctx).Info("model catalog loaded",
		observability.String("source", source),
		observability.Int("models", len(catalog.ordered)))

	return catalog, nil
}

// ParseCatalog parses a YAML catalog. Blocks for which enabled returns false are
// validated and then dropped.
func ParseCatalog(data []byte, enabled func(domain.ProviderTag) bool) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if len(file.Providers) == 0 {
		return nil, errors.New("catalog has no provider blocks")
	}

	logger := observability.FromContext(context.Background())
	catalog := &Catalog{byID: make(map[string]int)}
	seen := make(map[string]bool)

	for _, block := range file.Providers {
		tag := domain.ProviderTag(strings.TrimSpace(block.Provider))
		if !domain.KnownProvider(tag) {
			return nil, fmt.Errorf("unknown provider %q", block.Provider)
		}

		descriptors := make([]domain.ModelDescriptor, 0, len(block.Models))
		for _, entry := range block.Models {
			desc, err := entry.descriptor(tag)
			if err != nil {
				return nil, err
			}
			if seen[desc.PublicID] {
				return nil, fmt.Errorf("model %s is listed more than once", desc.PublicID)
			}
			seen[desc.PublicID] = true
			descriptors = append(descriptors, desc)
		}

		if !enabled(tag) {
			logger.Info("provider not configured, skipping its models",
				observability.String("provider", string(tag)),
				observability.Int("models", len(descriptors)))
			continue
		}

		for _, desc := range descriptors {
			catalog.byID[desc.PublicID] = len(catalog.ordered)
			catalog.ordered = append(catalog.ordered, desc)
		}
	}

	return catalog, nil
}

func (e modelEntry) descriptor(tag domain.ProviderTag) (domain.ModelDescriptor, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return domain.ModelDescriptor{}, fmt.Errorf("provider %s: model id must not be empty", tag)
	}

	if e.MaxContextTokens < 0 || e.MaxOutputTokens < 0 {
		return domain.ModelDescriptor{}, fmt.Errorf("model %s: token limits must not be negative", id)
	}

	native := strings.TrimSpace(e.NativeID)
	if native == "" {
		native = id
	}

	streaming := true
	if e.Streaming != nil {
		streaming = *e.Streaming
	}

	return domain.ModelDescriptor{
		PublicID:          id,
		Provider:          tag,
		NativeID:          native,
		MaxContextTokens:  e.MaxContextTokens,
		MaxOutputTokens:   e.MaxOutputTokens,
		SupportsStreaming: streaming,
	}, nil
}

// Resolve returns the descriptor for a public model id.
func (c *Catalog) Resolve(publicID string) (domain.ModelDescriptor, error) {
	i, ok := c.byID[publicID]
	if !ok {
		return domain.ModelDescriptor{}, &domain.ModelNotFoundError{Model: publicID}
	}
	return c.ordered[i], nil
}

// List returns every descriptor in catalog order.
func (c *Catalog) List() []domain.ModelDescriptor {
	out := make([]domain.ModelDescriptor, len(c.ordered))
	copy(out, c.ordered)
	return out
}
