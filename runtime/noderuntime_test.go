package runtime

import (
	"testing"

	"github.com/flowkit/flowkit/dag"
	"github.com/flowkit/flowkit/flow"
	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/notify"
	"github.com/flowkit/flowkit/pipe"
	"github.com/flowkit/flowkit/seqno"
)

func newTestShared() *Shared {
	store := kv.NewMem()
	queue := notify.New()
	seq := seqno.New()
	return &Shared{
		Dag:      dag.New(),
		Registry: flow.NewRegistry(),
		Piper:    pipe.NewPiper(store, queue, seq),
		Queue:    queue,
		KV:       store,
		Seq:      seq,
	}
}

func TestNodeRuntime_OpenWriteThenReadBySlot(t *testing.T) {
	shared := newTestShared()

	producer, err := New(shared, "producer.0", nil, nil)
	if err != nil {
		t.Fatalf("new producer runtime: %v", err)
	}
	fd, err := producer.OpenWrite("out")
	if err != nil {
		t.Fatalf("open write: %v", err)
	}
	if _, err := producer.Write(fd, []byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := producer.Close(fd); err != nil {
		t.Fatalf("close: %v", err)
	}

	consumer, err := New(shared, "consumer.0", []dag.Dependency{
		{Source: "producer.0", Name: "in", Slot: "out"},
	}, nil)
	if err != nil {
		t.Fatalf("new consumer runtime: %v", err)
	}
	rfd, err := consumer.OpenRead("in")
	if err != nil {
		t.Fatalf("open read: %v", err)
	}
	data, err := consumer.Read(rfd, 1024)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "hello" {
		t.Fatalf("expected hello, got %s", data)
	}
}

func TestNodeRuntime_StandardFdsPreOpened(t *testing.T) {
	shared := newTestShared()
	rt, err := New(shared, "n.0", nil, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := rt.Write(FdStdout, []byte("x")); err != nil {
		t.Fatalf("write stdout: %v", err)
	}
	if err := rt.Close(FdStdout); err != nil {
		t.Fatalf("close stdout: %v", err)
	}
}

func TestNodeRuntime_DagOpsAddValueNode(t *testing.T) {
	shared := newTestShared()
	rt, _ := New(shared, "n.0", nil, nil)

	ops, err := rt.DagOps()
	if err != nil {
		t.Fatalf("dagops: %v", err)
	}
	handle, err := ops.AddValueNode([]byte("v"), "")
	if err != nil {
		t.Fatalf("add value node: %v", err)
	}
	if handle == 0 {
		t.Fatal("expected non-zero handle")
	}
}

func TestNodeRuntime_Destroy_PropagatesErrorToOpenWriters(t *testing.T) {
	shared := newTestShared()
	producer, _ := New(shared, "p.0", nil, nil)
	fd, _ := producer.OpenWrite("out")
	_, _ = producer.Write(fd, []byte("partial"))

	consumer, _ := New(shared, "c.0", []dag.Dependency{{Source: "p.0", Name: "in", Slot: "out"}}, nil)
	rfd, _ := consumer.OpenRead("in")
	_, _ = consumer.Read(rfd, 1024) // drain available bytes

	producer.SetErrno(5)
	producer.Destroy()

	if _, err := consumer.Read(rfd, 1024); err == nil {
		t.Fatal("expected broken-pipe error after producer destroyed with errno set")
	}
}
