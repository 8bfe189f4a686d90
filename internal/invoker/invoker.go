package invoker

import (
	"context"
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"

	"github.com/vk/dynmod/internal/ctxlog"
)

// Accessor and block names available inside module bodies.
const (
	syncAccessor  = "require"
	asyncAccessor = "await"
	defineBlock   = "define"
)

// ModuleLoader resolves nested dependencies requested by a module body.
type ModuleLoader interface {
	LoadModule(ctx context.Context, id string) (cty.Value, error)
}

// Invoker evaluates module bodies.
type Invoker struct {
	loader ModuleLoader
}

// New creates an Invoker that satisfies dependency requests through loader.
func New(loader ModuleLoader) *Invoker {
	return &Invoker{loader: loader}
}

// outcome is the tagged result of one evaluation attempt: exactly one of
// value, missing, or err is meaningful. The missing tag is the dependency
// signal; it is fully contained within this package.
type outcome struct {
	value   cty.Value
	missing string
	err     error
}

// Invoke executes src as a module body and returns its exported bindings:
// the define-block factory result when one is registered, otherwise the
// plain exports object.
func (inv *Invoker) Invoke(ctx context.Context, src string) (cty.Value, error) {
	logger := ctxlog.FromContext(ctx)

	file, diags := hclsyntax.ParseConfig([]byte(normalizeImports(src)), "module.hcl", hcl.InitialPos)
	if diags.HasErrors() {
		return cty.NilVal, fmt.Errorf("failed to parse module body: %w", diags)
	}
	body := file.Body.(*hclsyntax.Body)

	// Per-invocation module table. Cross-invocation memoization belongs to
	// the loader, not here.
	table := make(map[string]cty.Value)

	inv.preload(ctx, body, table)

	for attempt := 1; ; attempt++ {
		out := inv.evalOnce(ctx, body, table)
		switch {
		case out.missing != "":
			logger.Debug("Module body unwound on unresolved dependency, loading it.",
				"id", out.missing, "attempt", attempt)
			if inv.loader == nil {
				return cty.NilVal, fmt.Errorf("module body requires %q but no module loader is configured", out.missing)
			}
			dep, err := inv.loader.LoadModule(ctx, out.missing)
			if err != nil {
				return cty.NilVal, err
			}
			table[out.missing] = dep
			// Restart from the top of the body; partial exports from the
			// failed attempt are discarded.
		case out.err != nil:
			return cty.NilVal, out.err
		default:
			return out.value, nil
		}
	}
}

// evalOnce executes the full module body once against the current table.
func (inv *Invoker) evalOnce(ctx context.Context, body *hclsyntax.Body, table map[string]cty.Value) outcome {
	state := &attemptState{table: table}
	funcs := accessorFunctions(state)

	exports := make(map[string]cty.Value)
	for _, attr := range orderedAttributes(body) {
		evalCtx := &hcl.EvalContext{
			Variables: bindingVariables(exports),
			Functions: funcs,
		}
		val, diags := attr.Expr.Value(evalCtx)
		if state.missing != "" {
			return outcome{missing: state.missing}
		}
		if diags.HasErrors() {
			return outcome{err: diags}
		}
		exports[attr.Name] = val
	}

	def, err := findDefine(body)
	if err != nil {
		return outcome{err: err}
	}
	if def != nil {
		return inv.evalDefine(ctx, def, state, funcs, exports)
	}

	return outcome{value: objectVal(exports)}
}

// orderedAttributes returns the body's attributes in source order.
// hclsyntax hands them back as a map, so order has to be reconstructed
// from source ranges.
func orderedAttributes(body *hclsyntax.Body) []*hclsyntax.Attribute {
	attrs := make([]*hclsyntax.Attribute, 0, len(body.Attributes))
	for _, attr := range body.Attributes {
		attrs = append(attrs, attr)
	}
	sort.Slice(attrs, func(i, j int) bool {
		return attrs[i].SrcRange.Start.Byte < attrs[j].SrcRange.Start.Byte
	})
	return attrs
}

// findDefine locates the body's define block, if any.
func findDefine(body *hclsyntax.Body) (*hclsyntax.Block, error) {
	var found *hclsyntax.Block
	for _, blk := range body.Blocks {
		if blk.Type != defineBlock {
			return nil, fmt.Errorf("unsupported block type %q in module body", blk.Type)
		}
		if found != nil {
			return nil, fmt.Errorf("module body registers more than one %s block", defineBlock)
		}
		found = blk
	}
	return found, nil
}
