package pipe

import (
	"testing"
	"time"

	"github.com/flowkit/flowkit/kv"
	"github.com/flowkit/flowkit/notify"
	"github.com/flowkit/flowkit/seqno"
)

func newTestPiper() *Piper {
	return NewPiper(kv.NewMem(), notify.New(), seqno.New())
}

func TestDerivePath(t *testing.T) {
	cases := []struct{ node, slot, want string }{
		{"chat.1", "", "chat.1"},
		{"chat.1", "out", "chat.1-out"},
		{"chat.1", "value.tmp/blob", "value.tmp/blob"},
	}
	for _, c := range cases {
		if got := DerivePath(c.node, c.slot); got != c.want {
			t.Errorf("DerivePath(%q,%q) = %q, want %q", c.node, c.slot, got, c.want)
		}
	}
}

func TestStaticPipe_ReadsImmediately(t *testing.T) {
	p := newTestPiper()
	w, err := p.MakeEnvPipe("env", []byte(`{"model":"x"}`))
	if err != nil {
		t.Fatalf("make env pipe: %v", err)
	}
	r := NewReader(w)
	data, err := r.Read(1024)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"model":"x"}` {
		t.Fatalf("unexpected content: %s", data)
	}
	if _, err := r.Read(1); !IsEOF(err) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestWriter_BytesReflectsWritesRegardlessOfCloseState(t *testing.T) {
	p := newTestPiper()
	w, err := p.CreatePipe("node", "", kv.ModeWrite)
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	if _, err := w.Write([]byte("ab")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if string(w.Bytes()) != "ab" {
		t.Fatalf("expected ab before close, got %q", w.Bytes())
	}
	if _, err := w.Write([]byte("c")); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = w.Close()
	if string(w.Bytes()) != "abc" {
		t.Fatalf("expected abc after close, got %q", w.Bytes())
	}
}

func TestReader_BlocksUntilWrite(t *testing.T) {
	p := newTestPiper()
	w, err := p.CreatePipe("chat.1", "out", kv.ModeAppend)
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	r := NewReader(w)

	result := make(chan []byte, 1)
	go func() {
		data, err := r.Read(1024)
		if err != nil {
			t.Errorf("read: %v", err)
			return
		}
		result <- data
	}()

	time.Sleep(20 * time.Millisecond)
	if _, err := w.Write([]byte("hello")); err != nil {
		t.Fatalf("write: %v", err)
	}

	select {
	case data := <-result:
		if string(data) != "hello" {
			t.Fatalf("expected hello, got %s", data)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reader to unblock")
	}
}

func TestReader_EOFAfterClose(t *testing.T) {
	p := newTestPiper()
	w, _ := p.CreatePipe("chat.1", "out", kv.ModeAppend)
	r := NewReader(w)

	_, _ = w.Write([]byte("ab"))
	_ = w.Close()

	data, err := r.Read(1024)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "ab" {
		t.Fatalf("expected ab, got %s", data)
	}
	if _, err := r.Read(1024); !IsEOF(err) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestReader_PropagatesWriterError(t *testing.T) {
	p := newTestPiper()
	w, _ := p.CreatePipe("chat.1", "out", kv.ModeAppend)
	r := NewReader(w)

	w.SetError(5)
	if _, err := r.Read(1024); err == nil {
		t.Fatal("expected broken-pipe error")
	}
}

func TestCreatePipe_DuplicateRejected(t *testing.T) {
	p := newTestPiper()
	if _, err := p.CreatePipe("n", "out", kv.ModeAppend); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := p.CreatePipe("n", "out", kv.ModeAppend); err == nil {
		t.Fatal("expected error on duplicate create")
	}
}

func TestOpenRead_NoProducerYieldsClosedEmptyPipe(t *testing.T) {
	p := newTestPiper()
	w, err := p.OpenRead("n", "missing")
	if err != nil {
		t.Fatalf("open read: %v", err)
	}
	r := NewReader(w)
	if _, err := r.Read(1024); !IsEOF(err) {
		t.Fatalf("expected immediate EOF for no-producer pipe, got %v", err)
	}
}
