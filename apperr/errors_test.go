package apperr

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew_Success(t *testing.T) {
	err := New(ErrCodeNotFound, "missing")
	if err.Code != ErrCodeNotFound {
		t.Errorf("expected code %s, got %s", ErrCodeNotFound, err.Code)
	}
	if err.Errno() != 2 {
		t.Errorf("expected errno 2, got %d", err.Errno())
	}
}

func TestBrokenPipe_CarriesWriterErrno(t *testing.T) {
	err := BrokenPipe("p.out", 32)
	if err.Errno() != 32 {
		t.Errorf("expected errno 32, got %d", err.Errno())
	}
	if err.Details["writer_errno"] != 32 {
		t.Errorf("expected writer_errno detail, got %v", err.Details["writer_errno"])
	}
}

func TestCycle_NamesChain(t *testing.T) {
	err := Cycle([]string{"a", "b", "a"})
	if err.Errno() != 200 {
		t.Errorf("expected errno 200 for ECYCLE, got %d", err.Errno())
	}
	chain, ok := err.Details["chain"].([]string)
	if !ok || len(chain) != 3 {
		t.Errorf("expected chain detail with 3 entries, got %v", err.Details["chain"])
	}
}

func TestWithCause_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying")
	err := NotFound("node", "x").WithCause(cause)
	if err.Unwrap() != cause {
		t.Error("expected Unwrap to return cause")
	}
	if !stderrors.Is(err, cause) {
		t.Error("expected stderrors.Is to follow Unwrap chain")
	}
}

func TestWithDetail_Chains(t *testing.T) {
	err := AlreadyExists("pipe", "n1").WithDetail("extra", 1)
	if err.Details["extra"] != 1 {
		t.Error("expected extra detail to be set")
	}
	if err.Details["name"] != "n1" {
		t.Error("expected original detail preserved")
	}
}

func TestIs_MatchesCode(t *testing.T) {
	err := BadDescriptor(7)
	if !Is(err, ErrCodeBadDescriptor) {
		t.Error("expected Is to match EBADF")
	}
	if Is(err, ErrCodeNotFound) {
		t.Error("expected Is to not match ENOENT")
	}
	wrapped := fmt.Errorf("wrap: %w", err)
	if !Is(wrapped, ErrCodeBadDescriptor) {
		t.Error("expected Is to follow wrapped errors")
	}
}

func TestAs_ExtractsAppError(t *testing.T) {
	orig := InvalidArgument("bad handle")
	wrapped := fmt.Errorf("outer: %w", orig)
	got, ok := As(wrapped)
	if !ok {
		t.Fatal("expected As to succeed")
	}
	if got.Code != ErrCodeInvalidArgument {
		t.Errorf("expected EINVAL, got %s", got.Code)
	}

	_, ok = As(fmt.Errorf("plain"))
	if ok {
		t.Error("expected As to fail for non-AppError")
	}
}

func TestError_FormatsWithAndWithoutCause(t *testing.T) {
	noCause := NotFound("node", "x")
	if noCause.Error() == "" {
		t.Error("expected non-empty error string")
	}
	withCause := NotFound("node", "x").WithCause(fmt.Errorf("boom"))
	if withCause.Error() == noCause.Error() {
		t.Error("expected cause to change the error string")
	}
}
