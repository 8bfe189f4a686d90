package invoker

import (
	"context"
	"sort"
	"sync"

	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"golang.org/x/sync/errgroup"

	"github.com/vk/dynmod/internal/ctxlog"
)

// preload scans the body for literal-argument accessor calls and eagerly
// loads every such identifier not already in the table, all concurrently,
// before the first evaluation attempt. This is an optimization: a literal
// call inside a branch that never executes may name an unloadable module,
// so individual failures are left for the retry loop to surface if the
// body actually needs them.
func (inv *Invoker) preload(ctx context.Context, body *hclsyntax.Body, table map[string]cty.Value) {
	if inv.loader == nil {
		return
	}

	var pending []string
	for _, id := range literalDependencies(body) {
		if _, ok := table[id]; !ok {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return
	}

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Preloading literal dependencies.", "ids", pending)

	var mu sync.Mutex
	var g errgroup.Group
	for _, id := range pending {
		g.Go(func() error {
			val, err := inv.loader.LoadModule(ctx, id)
			if err != nil {
				logger.Debug("Preload failed, deferring to retry loop.", "id", id, "error", err)
				return nil
			}
			mu.Lock()
			table[id] = val
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
}

// literalDependencies walks the body's expressions looking for calls to
// either dependency accessor whose sole argument is a string literal. The
// returned identifiers are sorted and unique.
func literalDependencies(body *hclsyntax.Body) []string {
	found := make(map[string]struct{})
	walkBodyForAccessors(body, found)

	ids := make([]string, 0, len(found))
	for id := range found {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func walkBodyForAccessors(body *hclsyntax.Body, found map[string]struct{}) {
	for _, attr := range body.Attributes {
		walkExprForAccessors(attr.Expr, found)
	}
	for _, blk := range body.Blocks {
		walkBodyForAccessors(blk.Body, found)
	}
}

// walkExprForAccessors recursively walks the AST, collecting literal
// accessor arguments.
func walkExprForAccessors(expr hclsyntax.Expression, found map[string]struct{}) {
	if expr == nil {
		return
	}
	switch e := expr.(type) {
	case *hclsyntax.FunctionCallExpr:
		if (e.Name == syncAccessor || e.Name == asyncAccessor) && len(e.Args) == 1 {
			if id, ok := literalString(e.Args[0]); ok {
				found[id] = struct{}{}
			}
		}
		for _, arg := range e.Args {
			walkExprForAccessors(arg, found)
		}
	case *hclsyntax.BinaryOpExpr:
		walkExprForAccessors(e.LHS, found)
		walkExprForAccessors(e.RHS, found)
	case *hclsyntax.ConditionalExpr:
		walkExprForAccessors(e.Condition, found)
		walkExprForAccessors(e.TrueResult, found)
		walkExprForAccessors(e.FalseResult, found)
	case *hclsyntax.UnaryOpExpr:
		walkExprForAccessors(e.Val, found)
	case *hclsyntax.TemplateExpr:
		for _, part := range e.Parts {
			walkExprForAccessors(part, found)
		}
	case *hclsyntax.TemplateWrapExpr:
		walkExprForAccessors(e.Wrapped, found)
	case *hclsyntax.TupleConsExpr:
		for _, item := range e.Exprs {
			walkExprForAccessors(item, found)
		}
	case *hclsyntax.ObjectConsExpr:
		for _, item := range e.Items {
			walkExprForAccessors(item.KeyExpr, found)
			walkExprForAccessors(item.ValueExpr, found)
		}
	case *hclsyntax.ForExpr:
		walkExprForAccessors(e.CollExpr, found)
		walkExprForAccessors(e.KeyExpr, found)
		walkExprForAccessors(e.ValExpr, found)
		walkExprForAccessors(e.CondExpr, found)
	case *hclsyntax.IndexExpr:
		walkExprForAccessors(e.Collection, found)
		walkExprForAccessors(e.Key, found)
	case *hclsyntax.SplatExpr:
		walkExprForAccessors(e.Source, found)
		walkExprForAccessors(e.Each, found)
	case *hclsyntax.RelativeTraversalExpr:
		walkExprForAccessors(e.Source, found)
	case *hclsyntax.ParenthesesExpr:
		walkExprForAccessors(e.Expression, found)
	}
}

// literalString extracts the string from a literal expression. Quoted
// strings parse as single-part templates, so both shapes are handled.
func literalString(expr hclsyntax.Expression) (string, bool) {
	switch e := expr.(type) {
	case *hclsyntax.LiteralValueExpr:
		if e.Val.Type() == cty.String {
			return e.Val.AsString(), true
		}
	case *hclsyntax.TemplateExpr:
		if len(e.Parts) == 1 {
			return literalString(e.Parts[0])
		}
	}
	return "", false
}
