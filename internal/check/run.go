// Package check runs adapter requests against type information and
// reports the outcome of every adapter.
package check

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/calumari/shim/internal/adapter"
	"github.com/calumari/shim/internal/request"
	"github.com/calumari/shim/internal/typeinfo"
)

// Run loads the configured types and request, then validates every adapter.
// A failing adapter is part of the report, not an error; errors are
// reserved for inputs that could not be loaded.
func Run(ctx context.Context, cfg Config) (*Report, error) {
	if cfg.Request == "" {
		return nil, errors.New("no request file provided")
	}
	resolver, err := loadResolver(cfg)
	if err != nil {
		return nil, err
	}
	doc, err := request.LoadFile(cfg.Request)
	if err != nil {
		return nil, err
	}
	results, err := validateAll(ctx, cfg, resolver, doc.Adapters)
	if err != nil {
		return nil, err
	}
	report := &Report{Request: doc.Path, Command: cfg.Command, Version: cfg.Version, Results: results}
	cfg.logger().Info("check finished", "request", doc.Path, "adapters", len(results), "failed", report.Failed())
	return report, nil
}

// loadResolver chains the tables in order, followed by the Go packages.
func loadResolver(cfg Config) (adapter.Resolver, error) {
	var chain typeinfo.Chain
	for _, path := range cfg.Tables {
		tbl, err := typeinfo.LoadTableFile(path)
		if err != nil {
			return nil, err
		}
		cfg.logger().Debug("loaded type table", "path", path, "types", len(tbl.Names()))
		chain = append(chain, tbl)
	}
	if cfg.Dir != "" {
		pkgs, err := typeinfo.LoadPackages(cfg.Dir, cfg.Packages...)
		if err != nil {
			return nil, fmt.Errorf("load packages in %s: %w", cfg.Dir, err)
		}
		cfg.logger().Debug("loaded go packages", "dir", cfg.Dir)
		chain = append(chain, pkgs)
	}
	if len(chain) == 0 {
		return nil, errors.New("no type information: provide a type table or a package directory")
	}
	return chain, nil
}

// validateAll checks adapters concurrently; results keep request order.
func validateAll(ctx context.Context, cfg Config, resolver adapter.Resolver, adapters []request.Adapter) ([]Result, error) {
	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	results := make([]Result, len(adapters))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)
	for i, a := range adapters {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = checkOne(resolver, a)
			log := cfg.logger().With("adapter", a.Name)
			if results[i].OK {
				log.Debug("adapter valid")
			} else {
				log.Debug("adapter invalid", "kind", results[i].Kind, "err", results[i].Error)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkOne(resolver adapter.Resolver, a request.Adapter) Result {
	res := Result{Adapter: a.Name, Parent: a.Parent, Interfaces: interfaceSet(a.Interfaces)}
	def, err := a.Build(resolver)
	if err != nil {
		return res.failed(err)
	}
	snap, err := def.Validate()
	if err != nil {
		return res.failed(err)
	}
	return resultOf(snap)
}

// interfaceSet orders names the way a snapshot does: sorted, no repeats.
func interfaceSet(names []string) []string {
	if len(names) == 0 {
		return nil
	}
	out := slices.Clone(names)
	slices.Sort(out)
	return slices.Compact(out)
}
