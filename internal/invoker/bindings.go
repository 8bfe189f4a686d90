package invoker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"golang.org/x/sync/errgroup"

	"github.com/vk/dynmod/internal/ctxlog"
)

// errDependencySignal aborts the expression whose accessor call missed the
// module table. It never escapes Invoke: the driver inspects the attempt
// state before it ever looks at evaluation diagnostics.
var errDependencySignal = errors.New("unresolved dependency")

// attemptState carries the mutable bits of a single evaluation attempt.
type attemptState struct {
	table   map[string]cty.Value
	missing string
}

// accessorFunctions builds the require/await bindings for one attempt.
// Both accessors share an implementation: under the cooperative model, by
// the time an expression evaluates, an awaited dependency is either in the
// table or must be signaled just like a synchronous one.
func accessorFunctions(state *attemptState) map[string]function.Function {
	accessor := function.New(&function.Spec{
		Params: []function.Parameter{{Name: "id", Type: cty.String}},
		Type:   function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
			id := args[0].AsString()
			if val, ok := state.table[id]; ok {
				return val, nil
			}
			if state.missing == "" {
				state.missing = id
			}
			return cty.DynamicVal, errDependencySignal
		},
	})

	return map[string]function.Function{
		syncAccessor:  accessor,
		asyncAccessor: accessor,
	}
}

// bindingVariables exposes the exports accumulated so far as the module
// record bindings.
func bindingVariables(exports map[string]cty.Value) map[string]cty.Value {
	obj := objectVal(exports)
	return map[string]cty.Value{
		"exports": obj,
		"module":  cty.ObjectVal(map[string]cty.Value{"exports": obj}),
	}
}

func objectVal(m map[string]cty.Value) cty.Value {
	if len(m) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(m)
}

// evalDefine runs the factory registration: resolve every listed
// dependency, then evaluate the provide expression with the dep map bound.
// Its result supersedes the plain exports object.
func (inv *Invoker) evalDefine(ctx context.Context, block *hclsyntax.Block, state *attemptState, funcs map[string]function.Function, exports map[string]cty.Value) outcome {
	attrs := block.Body.Attributes
	provideAttr, ok := attrs["provide"]
	if !ok {
		return outcome{err: fmt.Errorf("%s block is missing the provide attribute", defineBlock)}
	}

	var ids []string
	if reqAttr, ok := attrs["requires"]; ok {
		evalCtx := &hcl.EvalContext{Variables: bindingVariables(exports), Functions: funcs}
		listVal, diags := reqAttr.Expr.Value(evalCtx)
		if state.missing != "" {
			return outcome{missing: state.missing}
		}
		if diags.HasErrors() {
			return outcome{err: diags}
		}
		if !listVal.CanIterateElements() {
			return outcome{err: fmt.Errorf("%s requires must be a list of module identifiers", defineBlock)}
		}
		for it := listVal.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			if elem.Type() != cty.String {
				return outcome{err: fmt.Errorf("%s requires entries must be strings", defineBlock)}
			}
			ids = append(ids, elem.AsString())
		}
	}

	deps, err := inv.resolveFactoryDeps(ctx, state, ids)
	if err != nil {
		return outcome{err: err}
	}

	vars := bindingVariables(exports)
	vars["dep"] = deps
	provideCtx := &hcl.EvalContext{Variables: vars, Functions: funcs}

	val, diags := provideAttr.Expr.Value(provideCtx)
	if state.missing != "" {
		return outcome{missing: state.missing}
	}
	if diags.HasErrors() {
		return outcome{err: diags}
	}
	return outcome{value: val}
}

// resolveFactoryDeps loads all listed dependencies, concurrently for the
// ones not already in the module table.
func (inv *Invoker) resolveFactoryDeps(ctx context.Context, state *attemptState, ids []string) (cty.Value, error) {
	if len(ids) == 0 {
		return cty.EmptyObjectVal, nil
	}
	logger := ctxlog.FromContext(ctx)

	resolved := make(map[string]cty.Value, len(ids))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)

	for _, id := range ids {
		if val, ok := state.table[id]; ok {
			resolved[id] = val
			continue
		}
		if inv.loader == nil {
			return cty.NilVal, fmt.Errorf("%s block requires %q but no module loader is configured", defineBlock, id)
		}
		g.Go(func() error {
			logger.Debug("Resolving factory dependency.", "id", id)
			val, err := inv.loader.LoadModule(gctx, id)
			if err != nil {
				return err
			}
			mu.Lock()
			resolved[id] = val
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return cty.NilVal, err
	}

	return cty.ObjectVal(resolved), nil
}
