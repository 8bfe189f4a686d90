package app

import (
	"context"
	"fmt"

	ctyjson "github.com/zclconf/go-cty/cty/json"

	"github.com/vk/dynmod/internal/ctxlog"
)

// Run executes the requested operation for every configured module
// identifier: resolve-only printing, or a full load through the strategy
// dispatcher with the exported bindings printed as JSON.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "modules", a.config.Modules)

	for _, id := range a.config.Modules {
		if a.config.ResolveOnly {
			if err := a.printLocations(id); err != nil {
				return err
			}
			continue
		}

		bindings, err := a.dispatcher.LoadModule(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load module %q: %w", id, err)
		}

		data, err := ctyjson.Marshal(bindings, bindings.Type())
		if err != nil {
			return fmt.Errorf("failed to encode exports of %q: %w", id, err)
		}
		fmt.Fprintf(a.outW, "%s: %s\n", id, data)
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}

// printLocations resolves id in both modes and prints the results.
func (a *App) printLocations(id string) error {
	artifact, err := a.resolver.Resolve(id)
	if err != nil {
		return err
	}
	src, err := a.resolver.ResolveSource(id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.outW, "%s: artifact=%s source=%s\n", id, artifact, src)
	return nil
}
