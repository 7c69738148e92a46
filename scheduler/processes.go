package scheduler

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/concurrency"
	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/logger"
	"github.com/flowkit/flowkit/pipe"
	"github.com/flowkit/flowkit/runtime"
	"github.com/flowkit/flowkit/telemetry"
)

// Processes is the scheduler: one instance drives one Dag to completion
// for a given target node.
type Processes struct {
	dag     *dag.Dag
	shared  *runtime.Shared
	bh      *concurrency.Bulkhead
	metrics *telemetry.NodeMetrics
	log     *logger.Logger

	progressHandle uint64
	fsopsSubID     uint64

	mu       sync.Mutex
	finished map[string]int
	active   map[string]bool

	errnoMu sync.Mutex
	errno   int

	wg sync.WaitGroup
}

// Config configures a Processes instance. MaxConcurrent <= 0 means
// unlimited concurrent node tasks. Metrics may be nil.
type Config struct {
	MaxConcurrent int
	Metrics       *telemetry.NodeMetrics
}

// New creates a scheduler over d, using shared's collaborators.
func New(d *dag.Dag, shared *runtime.Shared, cfg Config) *Processes {
	p := &Processes{
		dag:      d,
		shared:   shared,
		metrics:  cfg.Metrics,
		log:      logger.Get("scheduler"),
		finished: make(map[string]int),
		active:   make(map[string]bool),
	}
	if cfg.MaxConcurrent > 0 {
		bhCfg := concurrency.DefaultBulkheadConfig("scheduler")
		bhCfg.MaxConcurrent = cfg.MaxConcurrent
		bhCfg.MaxWait = time.Hour
		p.bh = concurrency.NewBulkhead(bhCfg)
	}

	p.progressHandle = shared.Seq.Next()
	_ = shared.Queue.Whitelist(p.progressHandle, "scheduler.progress")

	fsops := shared.Piper.GetFsopsHandle()
	id, err := shared.Queue.Subscribe(fsops, func(int) {
		_ = shared.Queue.Notify(p.progressHandle, 1)
	}, "scheduler.fsops-bridge")
	if err == nil {
		p.fsopsSubID = id
	}
	return p
}

// Errno returns the environment-level completion code: the first
// non-zero completion code recorded by any node, 0 if none.
func (p *Processes) Errno() int {
	p.errnoMu.Lock()
	defer p.errnoMu.Unlock()
	return p.errno
}

func (p *Processes) recordErrno(code int) {
	if code == 0 {
		return
	}
	p.errnoMu.Lock()
	defer p.errnoMu.Unlock()
	if p.errno == 0 {
		p.errno = code
	}
}

func (p *Processes) isFinished(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.finished[name]
	return ok
}

func (p *Processes) isActive(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active[name]
}

func (p *Processes) activeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, v := range p.active {
		if v {
			n++
		}
	}
	return n
}

func (p *Processes) markActive(name string) {
	p.mu.Lock()
	p.active[name] = true
	p.mu.Unlock()
}

func (p *Processes) markFinished(name string, code int) {
	p.mu.Lock()
	p.active[name] = false
	p.finished[name] = code
	p.mu.Unlock()
	p.recordErrno(code)
}

// canStart reports whether name's dependencies are satisfied: every
// dependency's source is finished, or active with its pipe already
// carrying at least one byte (the streaming gate).
func (p *Processes) canStart(name string) (bool, error) {
	deps, err := p.dag.IterDeps(name)
	if err != nil {
		return false, err
	}
	for _, dep := range deps {
		if p.isFinished(dep.Source) {
			continue
		}
		if !p.isActive(dep.Source) {
			return false, nil
		}
		w, ok := p.shared.Piper.GetExistingPipe(pipe.DerivePath(dep.Source, dep.Slot))
		if !ok || w.Tell() < 1 {
			return false, nil
		}
	}
	return true, nil
}

// Run drives every ancestor of target (target included) to completion,
// admitting new tasks while the environment errno is still 0. Returns
// the environment errno — 0 on success — and a non-nil error only for a
// planning-level failure (e.g. a cycle), never for a node's own failure.
func (p *Processes) Run(ctx context.Context, target string) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			p.wg.Wait()
			return p.Errno(), err
		}

		p.mu.Lock()
		seenFinished := len(p.finished)
		p.mu.Unlock()

		names, err := p.dag.Plan(target)
		if err != nil {
			p.wg.Wait()
			return p.Errno(), err
		}

		allDone := true
		progressed := false
		admitting := p.Errno() == 0

		for _, name := range names {
			if p.isFinished(name) {
				continue
			}
			allDone = false
			if p.isActive(name) {
				continue
			}
			if !admitting {
				continue
			}

			ok, err := p.canStart(name)
			if err != nil {
				p.wg.Wait()
				return p.Errno(), err
			}
			if !ok {
				continue
			}

			p.launch(ctx, name)
			progressed = true
		}

		if allDone {
			break
		}
		if !admitting && !progressed && p.activeCount() == 0 {
			// Admission is stopped and nothing is left running: the
			// target can never finish. Stop rather than wait forever.
			break
		}
		if !progressed {
			// Re-check under the queue lock: a node that finished after
			// this pass began has already sent its progress notification.
			p.shared.Queue.Lock()
			p.mu.Lock()
			changed := len(p.finished) != seenFinished
			p.mu.Unlock()
			if !changed {
				p.shared.Queue.WaitUnsafe(p.progressHandle)
			}
			p.shared.Queue.Unlock()
		}
	}

	p.wg.Wait()
	return p.Errno(), nil
}

func (p *Processes) launch(ctx context.Context, name string) {
	n, ok := p.dag.GetNode(name)
	if !ok {
		return
	}
	p.markActive(name)

	if n.IsValue {
		p.runValueNode(n)
		return
	}
	if n.IsOpenValue {
		p.watchOpenValueNode(n)
		return
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		if p.bh != nil {
			_ = p.bh.Execute(ctx, func() error {
				p.runNode(ctx, n)
				return nil
			})
			return
		}
		p.runNode(ctx, n)
	}()
}

func (p *Processes) runValueNode(n *dag.Node) {
	w, err := p.shared.Piper.CreatePipe(n.Name, "", kv.ModeWrite)
	code := 0
	if err != nil {
		p.log.Error("value node pipe creation failed", logger.Fields("node", n.Name, "err", err.Error()))
		code = apperr.ErrnoOf(apperr.ErrCodeAlreadyExists)
	} else {
		_, _ = w.Write(n.ValueData)
		_ = w.Close()
	}
	p.markFinished(n.Name, code)
	_ = p.shared.Queue.Notify(p.progressHandle, 1)
}

// watchOpenValueNode marks an open value node finished once its pipe
// (already created by DagOpsHandle.OpenWritePipe when the node was
// created) is closed by whatever external writer holds it.
func (p *Processes) watchOpenValueNode(n *dag.Node) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		path := pipe.DerivePath(n.Name, "")
		for {
			w, ok := p.shared.Piper.GetExistingPipe(path)
			if !ok {
				p.markFinished(n.Name, 0)
				_ = p.shared.Queue.Notify(p.progressHandle, 1)
				return
			}
			r := pipe.NewReader(w)
			for {
				if _, err := r.Read(4096); err != nil {
					p.markFinished(n.Name, 0)
					_ = p.shared.Queue.Notify(p.progressHandle, 1)
					return
				}
			}
		}
	}()
}

func (p *Processes) runNode(ctx context.Context, n *dag.Node) {
	deps, err := p.dag.IterDeps(n.Name)
	if err != nil {
		p.markFinished(n.Name, apperr.ErrnoOf(apperr.ErrCodeNotFound))
		_ = p.shared.Queue.Notify(p.progressHandle, 1)
		return
	}

	rt, err := runtime.New(p.shared, n.Name, deps, nil)
	if err != nil {
		p.markFinished(n.Name, apperr.ErrnoOf(apperr.ErrCodeBadDescriptor))
		_ = p.shared.Queue.Notify(p.progressHandle, 1)
		return
	}

	if p.metrics != nil {
		p.metrics.RecordNodeStart(ctx, n.Name)
	}
	spanCtx, span := telemetry.StartNodeSpan(ctx, n.Name)
	start := time.Now()

	code := 0
	func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("node panicked", logger.Fields("node", n.Name, "panic", r))
				if code == 0 {
					code = -1
				}
			}
		}()
		if runErr := n.Func(spanCtx, rt); runErr != nil {
			p.log.Error("node returned error", logger.Fields("node", n.Name, "err", runErr.Error()))
			if rt.Errno() == 0 {
				rt.SetErrno(-1)
			}
		}
		code = rt.Errno()
	}()

	rt.Destroy()
	span.SetAttributes(attribute.Int64(telemetry.AttrNodeDurationMs, time.Since(start).Milliseconds()))
	telemetry.EndNodeSpan(span, code, nil)
	if p.metrics != nil {
		p.metrics.RecordNodeEnd(ctx, n.Name, code, time.Since(start))
	}

	p.markFinished(n.Name, code)
	_ = p.shared.Queue.Notify(p.progressHandle, 1)
}
