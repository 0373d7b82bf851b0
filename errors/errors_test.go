package errors

import (
	"errors"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindInvalidReference,
				Path:   []string{"method 2", "Code", "exception table"},
				Detail: "handler index out of range",
			},
			contains: []string{"[decode]", "invalid_reference", "method 2.Code.exception table", "handler index out of range"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseEncode,
				Kind:  KindOverflow,
			},
			contains: []string{"[encode]", "overflow"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseDecode,
				Kind:   KindTruncated,
				Detail: "reading pool_count",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[decode]", "truncated", "reading pool_count", "caused by", "underlying error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !containsSubstring(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindInvalidData,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	// Test with errors.Unwrap
	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseDecode,
		Kind:  KindUnknownTag,
		Path:  []string{"pool entry 4"},
	}

	// Same phase and kind
	if !err.Is(&Error{Phase: PhaseDecode, Kind: KindUnknownTag}) {
		t.Error("Is should match same phase and kind")
	}

	// Different phase
	if err.Is(&Error{Phase: PhaseEncode, Kind: KindUnknownTag}) {
		t.Error("Is should not match different phase")
	}

	// Different kind
	if err.Is(&Error{Phase: PhaseDecode, Kind: KindTruncated}) {
		t.Error("Is should not match different kind")
	}

	// Test with errors.Is
	target := &Error{Phase: PhaseDecode, Kind: KindUnknownTag}
	if !errors.Is(err, target) {
		t.Error("errors.Is should match")
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseResolve, KindInvalidReference).
		Path("field 0", "ConstantValue").
		Value(9).
		Cause(cause).
		Detail("expected %s, got %s", "Integer", "Utf8").
		Build()

	if err.Phase != PhaseResolve {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseResolve)
	}
	if err.Kind != KindInvalidReference {
		t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidReference)
	}
	if len(err.Path) != 2 || err.Path[0] != "field 0" || err.Path[1] != "ConstantValue" {
		t.Errorf("Path = %v, want [field 0 ConstantValue]", err.Path)
	}
	if err.Value != 9 {
		t.Errorf("Value = %v, want 9", err.Value)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "expected Integer, got Utf8" {
		t.Errorf("Detail = %v, want 'expected Integer, got Utf8'", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("Truncated", func(t *testing.T) {
		err := Truncated(PhaseDecode, "method table", errors.New("EOF"))
		if err.Kind != KindTruncated {
			t.Errorf("Kind = %v, want %v", err.Kind, KindTruncated)
		}
		if !containsSubstring(err.Detail, "method table") {
			t.Errorf("Detail = %v, should name the field", err.Detail)
		}
	})

	t.Run("MalformedEncoding", func(t *testing.T) {
		cause := errors.New("bad continuation byte 0x41")
		err := MalformedEncoding(PhaseDecode, []string{"pool entry 3"}, cause)
		if err.Kind != KindMalformedEncoding {
			t.Errorf("Kind = %v, want %v", err.Kind, KindMalformedEncoding)
		}
		if !errors.Is(err, err) || err.Cause != cause {
			t.Error("cause not carried")
		}
	})

	t.Run("PoolIndexOutOfBounds", func(t *testing.T) {
		err := PoolIndexOutOfBounds(PhaseResolve, 12, 10)
		if err.Kind != KindInvalidReference {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidReference)
		}
		if !containsSubstring(err.Detail, "index 12 out of bounds for pool size 10") {
			t.Errorf("Detail = %v", err.Detail)
		}
		if err.Value != 12 {
			t.Errorf("Value = %v, want 12", err.Value)
		}
	})

	t.Run("UnknownTag", func(t *testing.T) {
		err := UnknownTag(PhaseDecode, "constant pool tag", 0x0D)
		if err.Kind != KindUnknownTag {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnknownTag)
		}
		if !containsSubstring(err.Detail, "0x0d") {
			t.Errorf("Detail = %v, should contain the tag", err.Detail)
		}
	})

	t.Run("Overflow", func(t *testing.T) {
		err := Overflow(PhaseEncode, "code_length", 70000)
		if err.Kind != KindOverflow {
			t.Errorf("Kind = %v, want %v", err.Kind, KindOverflow)
		}
		if err.Value != 70000 {
			t.Errorf("Value = %v, want 70000", err.Value)
		}
		if !containsSubstring(err.Detail, "code_length") {
			t.Errorf("Detail = %v, should name the field", err.Detail)
		}
	})

	t.Run("InvalidName", func(t *testing.T) {
		err := InvalidName("class name", "bad;name", "';' not allowed")
		if err.Kind != KindInvalidName {
			t.Errorf("Kind = %v, want %v", err.Kind, KindInvalidName)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseDecode, "pre-45.3 class files")
		if err.Kind != KindUnsupported {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})
}

func TestIn(t *testing.T) {
	inner := InvalidReference(PhaseResolve, []string{"NameAndType"}, "wrong tag")
	wrapped := In(inner, "method 1", "descriptor")

	e, ok := wrapped.(*Error)
	if !ok {
		t.Fatalf("In returned %T, want *Error", wrapped)
	}
	if len(e.Path) != 3 || e.Path[0] != "method 1" || e.Path[1] != "descriptor" || e.Path[2] != "NameAndType" {
		t.Errorf("Path = %v", e.Path)
	}

	// Inner error is not mutated.
	if len(inner.Path) != 1 {
		t.Errorf("inner Path mutated: %v", inner.Path)
	}

	// Plain errors get wrapped.
	plain := errors.New("plain")
	wrapped = In(plain, "frame")
	e, ok = wrapped.(*Error)
	if !ok {
		t.Fatalf("In returned %T, want *Error", wrapped)
	}
	if !errors.Is(e, e) || e.Cause != plain {
		t.Error("plain cause not carried")
	}

	if In(nil, "frame") != nil {
		t.Error("In(nil) should be nil")
	}
}

func containsSubstring(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(substr) == 0 ||
		(len(s) > 0 && containsSubstringHelper(s, substr)))
}

func containsSubstringHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
