package wasmbridge

import "testing"

func TestParseEntryResult_JSONObject(t *testing.T) {
	code, msg := ParseEntryResult([]byte(`{"code": 3, "message": "out of memory"}`))
	if code != 3 || msg != "out of memory" {
		t.Fatalf("expected code=3 msg=%q, got code=%d msg=%q", "out of memory", code, msg)
	}
}

func TestParseEntryResult_RawMessage(t *testing.T) {
	code, msg := ParseEntryResult([]byte("segfault at offset 0x10"))
	if code != -1 {
		t.Fatalf("expected code -1 for raw message, got %d", code)
	}
	if msg != "segfault at offset 0x10" {
		t.Fatalf("expected raw message preserved, got %q", msg)
	}
}

func TestParseEntryResult_EmptyInput(t *testing.T) {
	code, msg := ParseEntryResult(nil)
	if code != -1 || msg != "" {
		t.Fatalf("expected code=-1 msg=\"\" for empty input, got code=%d msg=%q", code, msg)
	}
}
