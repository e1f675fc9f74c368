package gobuild

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bytecodealliance/componentize-go/errors"
	"github.com/bytecodealliance/componentize-go/toolchain"
)

// fakeGo answers `go version` with version and writes artifact to the -o
// path of build commands unless exitCode is non-zero.
type fakeGo struct {
	version  string
	artifact string
	exitCode int
	seen     []toolchain.Command
	// existed records whether the output existed when the build started.
	existed bool
}

func (f *fakeGo) Run(_ context.Context, cmd toolchain.Command) (toolchain.Result, error) {
	f.seen = append(f.seen, cmd)
	if cmd.Args[0] == "version" {
		return toolchain.Result{Stdout: []byte(f.version)}, nil
	}
	if f.exitCode != 0 {
		return toolchain.Result{ExitCode: f.exitCode, Stderr: []byte("main.go:3:1: syntax error")}, nil
	}
	for i, a := range cmd.Args {
		if a == "-o" {
			out := cmd.Args[i+1]
			_, err := os.Stat(out)
			f.existed = err == nil
			return toolchain.Result{}, os.WriteFile(out, []byte(f.artifact), 0o644)
		}
	}
	return toolchain.Result{}, nil
}

func TestParseGoVersion(t *testing.T) {
	tests := []struct {
		output  string
		want    string
		wantErr errors.Kind
	}{
		{"go version go1.25.0 linux/amd64", "1.25.0", ""},
		{"go version go1.26.3 darwin/arm64", "1.26.3", ""},
		{"go version go1.24.9 linux/amd64", "1.24.9", ""},
		{"go version devel +abc", "", errors.KindParse},
		{"", "", errors.KindParse},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			v, err := ParseGoVersion(tt.output)
			if tt.wantErr != "" {
				if !stderrors.Is(err, &errors.Error{Kind: tt.wantErr}) {
					t.Fatalf("error = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseGoVersion: %v", err)
			}
			if v.String() != tt.want {
				t.Errorf("version = %s, want %s", v, tt.want)
			}
		})
	}
}

func TestGoVersion(t *testing.T) {
	tests := []struct {
		output string
		kind   errors.Kind
	}{
		{"go version go1.24.9 linux/amd64", errors.KindPrecondition},
		{"go version go1.25.0 linux/amd64", ""},
		{"go version go1.26.3 linux/amd64", ""},
		{"go version go2.0.0 linux/amd64", errors.KindPrecondition},
		{"not a version", errors.KindParse},
	}
	for _, tt := range tests {
		t.Run(tt.output, func(t *testing.T) {
			_, err := GoVersion(context.Background(), &fakeGo{version: tt.output}, "go")
			if tt.kind == "" {
				if err != nil {
					t.Fatalf("GoVersion: %v", err)
				}
				return
			}
			if !stderrors.Is(err, &errors.Error{Kind: tt.kind}) {
				t.Errorf("error = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestCheckGoVersionMessage(t *testing.T) {
	v, err := ParseGoVersion("go1.24.9")
	if err != nil {
		t.Fatal(err)
	}
	err = CheckGoVersion(v)
	if err == nil || !strings.Contains(err.Error(), "Expected '^1.25.0', found '1.24.9'") {
		t.Errorf("error = %v", err)
	}
}

func TestGoVersionCommandFailure(t *testing.T) {
	runner := toolchain.RunnerFunc(func(context.Context, toolchain.Command) (toolchain.Result, error) {
		return toolchain.Result{ExitCode: 2, Stderr: []byte("go: unknown")}, nil
	})
	_, err := GoVersion(context.Background(), runner, "go")
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindProcess}) {
		t.Errorf("error = %v, want process error", err)
	}
}

func TestBuildModuleRemovesStaleOutput(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "app.wasm")
	if err := os.WriteFile(out, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	fake := &fakeGo{version: "go version go1.25.1 linux/amd64", artifact: "fresh"}
	got, err := NewBuilder(fake).BuildModule(context.Background(), BuildOptions{ModuleDir: dir, Output: out})
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	if got != out {
		t.Errorf("output = %s, want %s", got, out)
	}
	if fake.existed {
		t.Error("stale output still present when the compiler ran")
	}
	data, _ := os.ReadFile(out)
	if string(data) != "fresh" {
		t.Errorf("output content = %q, want fresh artifact", data)
	}

	build := fake.seen[len(fake.seen)-1]
	wantArgs := []string{"build", "-C", dir, "-buildmode=c-shared", "-ldflags=-checklinkname=0", "-o", out}
	if !reflect.DeepEqual(build.Args, wantArgs) {
		t.Errorf("args = %v, want %v", build.Args, wantArgs)
	}
	if !reflect.DeepEqual(build.Env, []string{"GOOS=wasip1", "GOARCH=wasm"}) {
		t.Errorf("env = %v", build.Env)
	}
	if build.Path != DefaultGo {
		t.Errorf("go path = %s", build.Path)
	}
}

func TestBuildModuleDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	fake := &fakeGo{version: "go1.25.0", artifact: "wasm"}
	got, err := NewBuilder(fake).BuildModule(context.Background(), BuildOptions{GoPath: "bin/go"})
	if err != nil {
		t.Fatalf("BuildModule: %v", err)
	}
	wd, _ := os.Getwd()
	if got != filepath.Join(wd, DefaultOutput) {
		t.Errorf("output = %s", got)
	}
	build := fake.seen[len(fake.seen)-1]
	if build.Args[2] != "." {
		t.Errorf("module dir = %s, want .", build.Args[2])
	}
	if build.Path != filepath.Join(wd, "bin", "go") {
		t.Errorf("go path = %s, want absolute", build.Path)
	}
}

func TestBuildModuleFailure(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "main.wasm")
	os.WriteFile(out, []byte("stale"), 0o644)

	fake := &fakeGo{version: "go1.25.0", exitCode: 1}
	_, err := NewBuilder(fake).BuildModule(context.Background(), BuildOptions{ModuleDir: dir, Output: out})
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseBuild, Kind: errors.KindProcess}) {
		t.Fatalf("error = %v, want build process error", err)
	}
	if !strings.Contains(err.Error(), "'go build' command failed") || !strings.Contains(err.Error(), "syntax error") {
		t.Errorf("error %q should name the command and carry stderr", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Error("stale output survived a failed build")
	}
}

func TestBuildModuleInvalidInput(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	os.WriteFile(file, nil, 0o644)

	tests := []struct {
		name string
		opts BuildOptions
		kind errors.Kind
	}{
		{"module is a file", BuildOptions{ModuleDir: file, Output: filepath.Join(dir, "a.wasm")}, errors.KindInvalidInput},
		{"module missing", BuildOptions{ModuleDir: filepath.Join(dir, "nope"), Output: filepath.Join(dir, "a.wasm")}, errors.KindInvalidInput},
		{"wasip1 only", BuildOptions{ModuleDir: dir, Output: filepath.Join(dir, "a.wasm"), OnlyWASIP1: true}, errors.KindUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeGo{version: "go1.25.0"}
			_, err := NewBuilder(fake).BuildModule(context.Background(), tt.opts)
			if !stderrors.Is(err, &errors.Error{Kind: tt.kind}) {
				t.Errorf("error = %v, want %s", err, tt.kind)
			}
			if len(fake.seen) != 1 {
				t.Errorf("compiler invoked %d times, want only the version check", len(fake.seen))
			}
		})
	}
}

func TestBuildModuleVersionGate(t *testing.T) {
	fake := &fakeGo{version: "go version go1.24.9 linux/amd64"}
	_, err := NewBuilder(fake).BuildModule(context.Background(), BuildOptions{Output: filepath.Join(t.TempDir(), "a.wasm")})
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindPrecondition}) {
		t.Errorf("error = %v, want precondition", err)
	}
}

func TestBuildTestModule(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out", "nested")
	fake := &fakeGo{version: "go1.25.0", artifact: "test"}

	got, err := NewBuilder(fake).BuildTestModule(context.Background(), TestOptions{
		Package:    "./internal/store",
		OutputDir:  dir,
		OnlyWASIP1: true,
	})
	if err != nil {
		t.Fatalf("BuildTestModule: %v", err)
	}
	want := filepath.Join(dir, "test_internal_store.wasm")
	if got != want {
		t.Errorf("output = %s, want %s", got, want)
	}
	build := fake.seen[len(fake.seen)-1]
	wantArgs := []string{"test", "-c", "-ldflags=-checklinkname=0", "-o", want, "./internal/store"}
	if !reflect.DeepEqual(build.Args, wantArgs) {
		t.Errorf("args = %v, want %v", build.Args, wantArgs)
	}
}

func TestBuildTestModuleRequiresWASIP1(t *testing.T) {
	dir := t.TempDir()
	_, err := NewBuilder(&fakeGo{version: "go1.25.0"}).BuildTestModule(context.Background(), TestOptions{
		Package:   "./pkg",
		OutputDir: dir,
	})
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindUnsupported}) {
		t.Errorf("error = %v, want unsupported", err)
	}
}

func TestTestFilename(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"./foo/bar/baz", "test_bar_baz.wasm"},
		{"./foo/bar", "test_foo_bar.wasm"},
		{"./bar", "test_bar.wasm"},
		{"/usr/bin/foo/bar/baz", "test_bar_baz.wasm"},
		{"../up/pkg/", "test_up_pkg.wasm"},
	}
	for _, tt := range tests {
		if got := TestFilename(tt.path); got != tt.want {
			t.Errorf("TestFilename(%q) = %s, want %s", tt.path, got, tt.want)
		}
	}
}
