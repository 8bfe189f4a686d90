package pipeline

import (
	"context"
	"sync"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/dynmod/internal/ctxlog"
	"github.com/vk/dynmod/internal/invoker"
	"github.com/vk/dynmod/internal/memo"
	"github.com/vk/dynmod/internal/resolver"
	"github.com/vk/dynmod/internal/source"
)

// ArtifactPipeline loads modules from their pre-resolved artifact form.
type ArtifactPipeline struct {
	resolver *resolver.Resolver
	sources  *source.Cache
	invoker  *invoker.Invoker

	// locations aliases identifiers onto resolved locations; modules is
	// keyed by location, so identifiers resolving to one artifact fold
	// onto a single evaluation.
	mu        sync.Mutex
	locations map[string]string
	modules   *memo.Cache[cty.Value]
}

// NewArtifact creates an artifact pipeline. The pipeline's invoker
// satisfies nested dependency requests through the pipeline itself.
func NewArtifact(res *resolver.Resolver, sources *source.Cache) *ArtifactPipeline {
	p := &ArtifactPipeline{
		resolver:  res,
		sources:   sources,
		locations: make(map[string]string),
		modules:   memo.New[cty.Value](),
	}
	p.invoker = invoker.New(p)
	return p
}

// LoadModule resolves, loads, and invokes the artifact named by id. The
// result is cached under both the identifier and its resolved location.
func (p *ArtifactPipeline) LoadModule(ctx context.Context, id string) (cty.Value, error) {
	p.mu.Lock()
	location, aliased := p.locations[id]
	p.mu.Unlock()

	if !aliased {
		var err error
		location, err = p.resolver.Resolve(id)
		if err != nil {
			return cty.NilVal, err
		}
		p.mu.Lock()
		p.locations[id] = location
		p.mu.Unlock()
	}

	return p.modules.Do(ctx, location, func(ctx context.Context) (cty.Value, error) {
		logger := ctxlog.FromContext(ctx)
		logger.Debug("Artifact pipeline loading module.", "id", id, "location", location)

		data, err := p.sources.LoadBytes(ctx, id, location)
		if err != nil {
			return cty.NilVal, err
		}
		return p.invoker.Invoke(ctx, string(data))
	})
}
