package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
		excludes []string
	}{
		{
			name: "full error",
			err: &Error{
				Phase:  PhaseEmbed,
				Kind:   KindIO,
				Path:   "/tmp/main.wasm",
				Detail: "write module",
			},
			contains: []string{"[embed]", "io", "/tmp/main.wasm", "write module"},
		},
		{
			name: "minimal error",
			err: &Error{
				Phase: PhaseResolve,
				Kind:  KindResolution,
			},
			contains: []string{"[resolve]", "resolution"},
			excludes: []string{" at ", "caused by"},
		},
		{
			name: "error with cause",
			err: &Error{
				Phase:  PhaseEncode,
				Kind:   KindProcess,
				Detail: "failed to encode component from module",
				Cause:  errors.New("underlying error"),
			},
			contains: []string{"[encode]", "process", "failed to encode component from module", "caused by", "underlying error"},
		},
		{
			name: "stderr appended verbatim",
			err: &Error{
				Phase:  PhaseBuild,
				Kind:   KindProcess,
				Detail: "'go build' command failed",
				Stderr: "main.go:3:1: syntax error\n",
			},
			contains: []string{"'go build' command failed\nmain.go:3:1: syntax error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.err.Error()
			for _, s := range tt.contains {
				if !strings.Contains(msg, s) {
					t.Errorf("error message %q does not contain %q", msg, s)
				}
			}
			for _, s := range tt.excludes {
				if strings.Contains(msg, s) {
					t.Errorf("error message %q should not contain %q", msg, s)
				}
			}
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{
		Phase: PhaseEmbed,
		Kind:  KindBinaryFormat,
		Cause: cause,
	}

	if !errors.Is(err.Unwrap(), cause) {
		t.Error("Unwrap did not return cause")
	}

	if !errors.Is(errors.Unwrap(err), cause) {
		t.Error("errors.Unwrap did not return cause")
	}
}

func TestError_Is(t *testing.T) {
	err := &Error{
		Phase: PhaseBuild,
		Kind:  KindUnsupported,
		Path:  "main.wasm",
	}

	tests := []struct {
		name   string
		target error
		want   bool
	}{
		{"same phase and kind", &Error{Phase: PhaseBuild, Kind: KindUnsupported}, true},
		{"different phase", &Error{Phase: PhaseEncode, Kind: KindUnsupported}, false},
		{"different kind", &Error{Phase: PhaseBuild, Kind: KindProcess}, false},
		{"kind wildcard", &Error{Kind: KindUnsupported}, true},
		{"phase wildcard", &Error{Phase: PhaseBuild}, true},
		{"foreign error", errors.New("x"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errors.Is(err, tt.target); got != tt.want {
				t.Errorf("errors.Is = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuilder(t *testing.T) {
	cause := errors.New("root")
	err := New(PhaseBuild, KindProcess).
		Path("/work/app").
		Stderr([]byte("boom")).
		Cause(cause).
		Detail("'%s' command failed", "go build").
		Build()

	if err.Phase != PhaseBuild {
		t.Errorf("Phase = %v, want %v", err.Phase, PhaseBuild)
	}
	if err.Kind != KindProcess {
		t.Errorf("Kind = %v, want %v", err.Kind, KindProcess)
	}
	if err.Path != "/work/app" {
		t.Errorf("Path = %q, want /work/app", err.Path)
	}
	if err.Stderr != "boom" {
		t.Errorf("Stderr = %q, want boom", err.Stderr)
	}
	if !errors.Is(err.Cause, cause) {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}
	if err.Detail != "'go build' command failed" {
		t.Errorf("Detail = %q", err.Detail)
	}
}

func TestConvenienceConstructors(t *testing.T) {
	t.Run("IO", func(t *testing.T) {
		err := IO(PhaseEncode, "failed to write `out.wasm`", "out.wasm", errors.New("denied"))
		if err.Kind != KindIO || err.Path != "out.wasm" {
			t.Errorf("Kind=%v Path=%q", err.Kind, err.Path)
		}
	})

	t.Run("Process", func(t *testing.T) {
		err := Process(PhaseTool, "wasm-tools component new", 1, []byte("invalid module"))
		if err.Kind != KindProcess {
			t.Errorf("Kind = %v, want %v", err.Kind, KindProcess)
		}
		if !strings.Contains(err.Error(), "invalid module") {
			t.Errorf("stderr missing from %q", err.Error())
		}
		if !strings.Contains(err.Detail, "exit status 1") {
			t.Errorf("Detail = %q, should contain exit status", err.Detail)
		}
	})

	t.Run("Unsupported", func(t *testing.T) {
		err := Unsupported(PhaseBuild, "wasip1-only builds")
		if !errors.Is(err, &Error{Kind: KindUnsupported}) {
			t.Errorf("Kind = %v, want %v", err.Kind, KindUnsupported)
		}
	})

	t.Run("Precondition", func(t *testing.T) {
		err := Precondition(PhaseBuild, "Go version is not valid")
		if err.Kind != KindPrecondition {
			t.Errorf("Kind = %v, want %v", err.Kind, KindPrecondition)
		}
	})

	t.Run("Resolution", func(t *testing.T) {
		err := Resolution("world not found", nil)
		if err.Phase != PhaseResolve || err.Kind != KindResolution {
			t.Errorf("Phase=%v Kind=%v", err.Phase, err.Kind)
		}
	})

	t.Run("BinaryFormat", func(t *testing.T) {
		err := BinaryFormat(PhaseEmbed, "bad magic", nil)
		if err.Kind != KindBinaryFormat {
			t.Errorf("Kind = %v, want %v", err.Kind, KindBinaryFormat)
		}
	})

	t.Run("Wrap", func(t *testing.T) {
		cause := errors.New("inner")
		err := Wrap(PhaseConfig, KindInvalidInput, cause, "read config")
		if !errors.Is(err, cause) {
			t.Error("Wrap should keep the cause chain")
		}
	})
}
