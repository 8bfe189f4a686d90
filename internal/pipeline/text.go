package pipeline

import (
	"context"

	"github.com/zclconf/go-cty/cty"

	"github.com/vk/dynmod/internal/ctxlog"
	"github.com/vk/dynmod/internal/invoker"
	"github.com/vk/dynmod/internal/memo"
	"github.com/vk/dynmod/internal/resolver"
	"github.com/vk/dynmod/internal/source"
)

// Transform rewrites module source text before invocation. It is invoked
// once per load and never retried.
type Transform func(ctx context.Context, src string, id string) (string, error)

// TextPipeline loads modules from their original source form.
type TextPipeline struct {
	resolver  *resolver.Resolver
	sources   *source.Cache
	transform Transform // may be nil
	invoker   *invoker.Invoker
	modules   *memo.Cache[cty.Value]
}

// NewText creates a text pipeline. The pipeline's invoker satisfies nested
// dependency requests through the pipeline itself.
func NewText(res *resolver.Resolver, sources *source.Cache, transform Transform) *TextPipeline {
	p := &TextPipeline{
		resolver:  res,
		sources:   sources,
		transform: transform,
		modules:   memo.New[cty.Value](),
	}
	p.invoker = invoker.New(p)
	return p
}

// LoadModule resolves, loads, transforms, and invokes the module named by
// id, memoizing the outcome per identifier.
func (p *TextPipeline) LoadModule(ctx context.Context, id string) (cty.Value, error) {
	return p.modules.Do(ctx, id, func(ctx context.Context) (cty.Value, error) {
		logger := ctxlog.FromContext(ctx)
		logger.Debug("Text pipeline loading module.", "id", id)

		location, err := p.resolver.ResolveSource(id)
		if err != nil {
			return cty.NilVal, err
		}

		text, err := p.sources.Load(ctx, id, location)
		if err != nil {
			return cty.NilVal, err
		}

		if p.transform != nil {
			text, err = p.transform(ctx, text, id)
			if err != nil {
				return cty.NilVal, err
			}
		}

		return p.invoker.Invoke(ctx, text)
	})
}

// LoadSource resolves and loads the module's source text without invoking
// it.
func (p *TextPipeline) LoadSource(ctx context.Context, id string) (string, error) {
	location, err := p.resolver.ResolveSource(id)
	if err != nil {
		return "", err
	}
	return p.sources.Load(ctx, id, location)
}

// InvokeCode executes sourceText as a module body with this pipeline
// serving its dependency requests.
func (p *TextPipeline) InvokeCode(ctx context.Context, sourceText string) (cty.Value, error) {
	return p.invoker.Invoke(ctx, sourceText)
}
