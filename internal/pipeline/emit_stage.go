package pipeline

import (
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/MatthewHRockwell/atomik-sub001/internal/artifact"
	"github.com/MatthewHRockwell/atomik-sub001/internal/emit/registry"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/schema"
)

// runEmitters fans out one goroutine per selected target, grounded on the
// teacher's ConcurrencyExecutor (golang.org/x/sync/errgroup, no worker
// limit, fail-fast-free collection since per §5 one emitter's error
// never blocks the others from finishing). Each emitter writes to its own
// disjoint file-path subtree, so no shared mutable state crosses
// goroutines; results are merged only after every emitter has returned.
func runEmitters(s *schema.Schema, nm *namespace.NamespaceMap, outputRoot string, targets []namespace.Target) *artifact.Manifest {
	m := artifact.NewManifest("emit")
	all := registry.All()

	var mu sync.Mutex
	var g errgroup.Group

	for _, target := range targets {
		target := target
		e, ok := all[target]
		if !ok {
			continue
		}
		g.Go(func() error {
			descriptors, err := e.Emit(s, nm, outputRoot)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				m.AddError(artifact.StructuredError{
					Category:      "emission",
					Code:          "emit_failed",
					Message:       err.Error(),
					OriginStage:   "emit",
					OriginEmitter: string(target),
				})
				return nil
			}
			m.Artifacts = append(m.Artifacts, descriptors...)
			return nil
		})
	}

	_ = g.Wait()
	return m
}

// reEmitOne re-runs a single target's emitter, the deterministic fixer the
// verification stage calls for classified failures.
func reEmitOne(target namespace.Target, s *schema.Schema, nm *namespace.NamespaceMap, outputRoot string) error {
	e, ok := registry.All()[target]
	if !ok {
		return nil
	}
	_, err := e.Emit(s, nm, outputRoot)
	return err
}
