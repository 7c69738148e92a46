package main

import (
	"context"
	"fmt"
	"time"

	"github.com/flowkit/flowkit/apperr"
	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/env"
	"github.com/flowkit/flowkit/flow"
	"github.com/flowkit/flowkit/nodes/std"
	"github.com/flowkit/flowkit/pipe"
	"github.com/flowkit/flowkit/runtime"
)

type scenarioFunc func(ctx context.Context, e *env.Environment) error

var scenarios = map[string]scenarioFunc{
	"s1": s1ValuePassthrough,
	"s2": s2Streaming,
	"s3": s3Merge,
	"s4": s4DynamicExtension,
	"s5": s5ErrorPropagation,
	"s6": s6Cycle,
}

func printPipe(e *env.Environment, label, node, slot string) {
	w, ok := e.Shared().Piper.GetExistingPipe(pipe.DerivePath(node, slot))
	if !ok {
		fmt.Printf("  %s: <no pipe>\n", label)
		return
	}
	fmt.Printf("  %s: %q\n", label, w.Bytes())
}

// s1ValuePassthrough is spec scenario S1: a value node feeds a plain
// passthrough consumer.
func s1ValuePassthrough(ctx context.Context, e *env.Environment) error {
	shared := e.Shared()
	v := shared.Dag.AddValueNode("V", []byte("hello"), "value passthrough demo")
	c := shared.Dag.AddNode("C", std.Passthrough, []dag.Dependency{{Source: v.Name}}, "")

	code, err := e.Run(ctx, c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("s1: code=%d\n", code)
	printPipe(e, "C output", c.Name, "")
	return nil
}

// yieldingProducer writes chunks with a short pause between each, giving
// the scheduler's streaming can-start gate a chance to admit a consumer
// before the producer finishes (spec scenario S2).
func yieldingProducer(chunks ...string) dag.Func {
	return func(ctx context.Context, rt dag.NodeRuntime) error {
		for i, chunk := range chunks {
			if _, err := rt.Write(runtime.FdStdout, []byte(chunk)); err != nil {
				return err
			}
			if i < len(chunks)-1 {
				time.Sleep(5 * time.Millisecond)
			}
		}
		return rt.Close(runtime.FdStdout)
	}
}

func s2Streaming(ctx context.Context, e *env.Environment) error {
	shared := e.Shared()
	p := shared.Dag.AddNode("P", yieldingProducer("a", "b"), nil, "")
	c := shared.Dag.AddNode("C", std.Stdout, []dag.Dependency{{Source: p.Name}}, "")

	code, err := e.Run(ctx, c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("s2: code=%d\n", code)
	printPipe(e, "P output", p.Name, "")
	return nil
}

// mergeUnderSlot reads everything arriving on the "in" slot until EOF and
// copies it verbatim to its own default output slot, exercising
// MergeReader over two value-node dependencies that share one slot name.
func mergeUnderSlot(ctx context.Context, rt dag.NodeRuntime) error {
	in, err := rt.OpenRead("in")
	if err != nil {
		return err
	}
	for {
		data, rerr := rt.Read(in, 4096)
		if len(data) > 0 {
			if _, werr := rt.Write(runtime.FdStdout, data); werr != nil {
				return werr
			}
		}
		if rerr != nil {
			break
		}
	}
	return rt.Close(runtime.FdStdout)
}

func s3Merge(ctx context.Context, e *env.Environment) error {
	shared := e.Shared()
	v1 := shared.Dag.AddValueNode("V1", []byte("one"), "")
	v2 := shared.Dag.AddValueNode("V2", []byte("two"), "")
	c := shared.Dag.AddNode("C", mergeUnderSlot, []dag.Dependency{
		{Source: v1.Name, Name: "in"},
		{Source: v2.Name, Name: "in"},
	}, "")

	code, err := e.Run(ctx, c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("s3: code=%d\n", code)
	printPipe(e, "C output", c.Name, "")
	return nil
}

// s4DynamicExtension is spec scenario S4. The consumer discovers a new
// value node and a new instantiated target entirely through its own
// DagOpsHandle while it runs; the scheduler's Run entry point still
// requires an already-existing node name, so the resolved name of T is
// handed back over a channel and driven by a second Run call once C has
// finished growing the graph.
func s4DynamicExtension(ctx context.Context, e *env.Environment) error {
	shared := e.Shared()
	shared.Registry.RegisterTemplate(&flow.Template{
		Name:   "T",
		Inputs: []flow.Input{{Name: "", Source: ".extra", Slot: ""}},
		Func:   std.Passthrough,
	})

	resolved := make(chan string, 1)
	discover := func(ctx context.Context, rt dag.NodeRuntime) error {
		ops, err := rt.DagOps()
		if err != nil {
			return err
		}
		v2Handle, err := ops.AddValueNode([]byte("y"), "")
		if err != nil {
			return err
		}
		if err := ops.Alias(".extra", v2Handle); err != nil {
			return err
		}
		tHandle, err := ops.InstantiateWithDeps("T", map[string]uint64{".extra": v2Handle})
		if err != nil {
			return err
		}
		if err := ops.Alias("t.result", tHandle); err != nil {
			return err
		}
		members, err := shared.Dag.ExpandAlias("t.result")
		if err != nil || len(members) == 0 {
			return fmt.Errorf("resolving instantiated T: %w", err)
		}
		resolved <- members[0]
		return nil
	}

	v := shared.Dag.AddValueNode("V", []byte("x"), "")
	c := shared.Dag.AddNode("C", discover, []dag.Dependency{{Source: v.Name}}, "")

	code, err := e.Run(ctx, c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("s4: discover code=%d\n", code)

	tName := <-resolved
	code, err = e.Run(ctx, tName)
	if err != nil {
		return err
	}
	fmt.Printf("s4: target=%s code=%d\n", tName, code)
	printPipe(e, "T output", tName, "")
	return nil
}

// s5ErrorPropagation is spec scenario S5: a producer writes data, then
// sets the pipe error state directly instead of closing it, simulating
// an upstream actor that hit an unrecoverable fault mid-stream. The
// consumer's first read succeeds; its second read observes the broken
// pipe and adopts the writer's errno as its own completion code.
func s5ErrorPropagation(ctx context.Context, e *env.Environment) error {
	shared := e.Shared()
	p := shared.Dag.AddNode("P", func(ctx context.Context, rt dag.NodeRuntime) error {
		if _, err := rt.Write(runtime.FdStdout, []byte("abc")); err != nil {
			return err
		}
		// Leaving fd 1 open and setting a nonzero errno makes the
		// scheduler's Destroy pass put the pipe into the error state
		// instead of closing it, so the consumer observes EPIPE.
		rt.SetErrno(32)
		return nil
	}, nil, "")

	c := shared.Dag.AddNode("C", func(ctx context.Context, rt dag.NodeRuntime) error {
		defer rt.Close(runtime.FdStdout)

		var rerr error
		for {
			data, err := rt.Read(runtime.FdStdin, 4096)
			if len(data) > 0 {
				if _, werr := rt.Write(runtime.FdStdout, data); werr != nil {
					return werr
				}
			}
			if err != nil {
				rerr = err
				break
			}
		}
		ae, ok := apperr.As(rerr)
		if !ok {
			return rerr
		}
		errno, _ := ae.Details["writer_errno"].(int)
		if errno == 0 {
			errno = ae.Errno()
		}
		rt.SetErrno(errno)
		return nil
	}, []dag.Dependency{{Source: p.Name}}, "")

	code, err := e.Run(ctx, c.Name)
	if err != nil {
		return err
	}
	fmt.Printf("s5: code=%d (environment errno=%d)\n", code, code)
	printPipe(e, "C output", c.Name, "")
	return nil
}

func s6Cycle(ctx context.Context, e *env.Environment) error {
	shared := e.Shared()
	a := shared.Dag.AddNode("A", std.Passthrough, nil, "")
	b := shared.Dag.AddNode("B", std.Passthrough, []dag.Dependency{{Source: a.Name}}, "")
	if err := shared.Dag.Depend(a.Name, []dag.Dependency{{Source: b.Name}}); err != nil {
		return err
	}

	_, err := e.Run(ctx, a.Name)
	if err == nil {
		return fmt.Errorf("s6: expected a cycle error, got none")
	}
	fmt.Printf("s6: got expected cycle error: %v\n", err)
	if _, ok := shared.Piper.GetExistingPipe(pipe.DerivePath(a.Name, "")); ok {
		return fmt.Errorf("s6: expected no pipe for A")
	}
	if _, ok := shared.Piper.GetExistingPipe(pipe.DerivePath(b.Name, "")); ok {
		return fmt.Errorf("s6: expected no pipe for B")
	}
	fmt.Println("s6: confirmed no pipes were created")
	return nil
}
