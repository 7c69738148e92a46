package kv

import "testing"

func TestMem_OpenRead_MissingErrors(t *testing.T) {
	m := NewMem()
	if _, err := m.Open("a", ModeRead); err == nil {
		t.Fatal("expected error reading missing path")
	}
}

func TestMem_OpenWrite_Replaces(t *testing.T) {
	m := NewMem()
	buf, _ := m.Open("a", ModeAppend)
	_, _ = buf.Write([]byte("hello"))

	fresh, _ := m.Open("a", ModeWrite)
	if fresh.Len() != 0 {
		t.Fatalf("expected fresh buffer on write, got len %d", fresh.Len())
	}
	if buf.Len() != 5 {
		t.Fatalf("original buffer should be unaffected, got len %d", buf.Len())
	}
}

func TestMem_OpenAppend_GetOrCreate(t *testing.T) {
	m := NewMem()
	first, _ := m.Open("a", ModeAppend)
	_, _ = first.Write([]byte("x"))

	second, _ := m.Open("a", ModeAppend)
	if second != first {
		t.Fatal("expected append to return the same buffer instance")
	}
	if second.Len() != 1 {
		t.Fatalf("expected len 1, got %d", second.Len())
	}
}

func TestMem_Listdir_FiltersByPrefix(t *testing.T) {
	m := NewMem()
	_, _ = m.Open("nodes/a", ModeWrite)
	_, _ = m.Open("nodes/b", ModeWrite)
	_, _ = m.Open("values/c", ModeWrite)

	names, err := m.Listdir("nodes/")
	if err != nil {
		t.Fatalf("listdir: %v", err)
	}
	if len(names) != 2 || names[0] != "nodes/a" || names[1] != "nodes/b" {
		t.Fatalf("unexpected listing: %v", names)
	}
}

func TestMem_Destroy_ClearsAll(t *testing.T) {
	m := NewMem()
	_, _ = m.Open("a", ModeWrite)
	if err := m.Destroy(); err != nil {
		t.Fatalf("destroy: %v", err)
	}
	if _, err := m.Open("a", ModeRead); err == nil {
		t.Fatal("expected path to be gone after destroy")
	}
}

func TestBuffer_ConcurrentWriteRead(t *testing.T) {
	b := NewBuffer(nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			_, _ = b.Write([]byte{'x'})
		}
		close(done)
	}()
	for i := 0; i < 100; i++ {
		_ = b.Slice(0, b.Len())
	}
	<-done
	if b.Len() != 100 {
		t.Fatalf("expected 100 bytes, got %d", b.Len())
	}
}
