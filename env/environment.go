package env

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/flowkit/flowkit/component"
	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/flow"
	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/logger"
	"github.com/flowkit/flowkit/notify"
	"github.com/flowkit/flowkit/pipe"
	"github.com/flowkit/flowkit/runtime"
	"github.com/flowkit/flowkit/scheduler"
	"github.com/flowkit/flowkit/seqno"
)

// Environment owns one run's worth of infrastructure: the Dag, its KV
// and pipe stores, the actor template registry, and the scheduler that
// drives nodes to completion. Every Environment is stamped with a
// unique RunID at construction.
type Environment struct {
	RunID string
	Cfg   Config

	components *component.Registry
	shared     *runtime.Shared
	telemetry  *telemetryComponent
}

// New constructs an Environment from cfg without starting it. Call
// Start before Run.
func New(cfg Config) (*Environment, error) {
	var store kv.Store
	switch cfg.KVBackend {
	case KVBackendBadger:
		b, err := kv.NewBadger(cfg.KVPath)
		if err != nil {
			return nil, fmt.Errorf("env: opening badger store: %w", err)
		}
		store = b
	default:
		store = kv.NewMem()
	}

	queue := notify.New()
	seq := seqno.New()
	shared := &runtime.Shared{
		Dag:      dag.New(),
		Registry: flow.NewRegistry(),
		Piper:    pipe.NewPiper(store, queue, seq),
		Queue:    queue,
		KV:       store,
		Seq:      seq,
	}

	components := component.NewRegistry()
	if err := components.Register(&kvComponent{store: store}); err != nil {
		return nil, err
	}
	tc := &telemetryComponent{cfg: cfg}
	if err := components.Register(tc); err != nil {
		return nil, err
	}

	return &Environment{
		RunID:      uuid.NewString(),
		Cfg:        cfg,
		components: components,
		shared:     shared,
		telemetry:  tc,
	}, nil
}

// Start starts every registered component in registration order and
// loads any configured flow plans into the registry.
func (e *Environment) Start(ctx context.Context) error {
	if err := e.components.StartAll(ctx); err != nil {
		return err
	}
	for _, planPath := range e.Cfg.Registry {
		p, err := flow.LoadPlan(planPath)
		if err != nil {
			return fmt.Errorf("env: loading flow plan %s: %w", planPath, err)
		}
		if _, err := flow.Run(e.shared.Dag, e.shared.Registry, p, make(map[string]string)); err != nil {
			return fmt.Errorf("env: running flow plan %s: %w", planPath, err)
		}
	}
	logger.Info("environment started", logger.Fields("run_id", e.RunID, "name", e.Cfg.Name))
	return nil
}

// Stop stops every registered component in reverse registration order.
func (e *Environment) Stop(ctx context.Context) error {
	return e.components.StopAll(ctx)
}

// Shared returns the collaborators NodeRuntime and DagOpsHandle are
// built from, for callers (cmd entry points, wasmbridge, nodes/std)
// that need to add nodes directly.
func (e *Environment) Shared() *runtime.Shared { return e.shared }

// Run drives target and its ancestors to completion and returns the
// environment-level completion code: the first non-zero completion
// code recorded by any node, 0 on full success.
func (e *Environment) Run(ctx context.Context, target string) (int, error) {
	sch := scheduler.New(e.shared.Dag, e.shared, scheduler.Config{
		MaxConcurrent: e.Cfg.MaxConcurrentNodes,
		Metrics:       e.telemetry.Metrics,
	})
	return sch.Run(ctx, target)
}
