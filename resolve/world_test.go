package resolve

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"go.bytecodealliance.org/wit"

	"github.com/bytecodealliance/componentize-go/errors"
)

// multiJSON has two main candidates (a:one, b:two) plus a dependency and the
// workspace root.
const multiJSON = `{
  "worlds": [
    {"name": "app", "imports": {"interface-0": {"interface": {"id": 0}}}, "exports": {"run": {"function": {"name": "run", "kind": "freestanding", "params": []}}}, "package": 0},
    {"name": "app", "imports": {}, "exports": {"api": {"interface": {"id": 1}}}, "package": 1},
    {"name": "cli", "imports": {}, "exports": {}, "package": 1},
    {"name": "workspace", "imports": {}, "exports": {}, "package": 3}
  ],
  "interfaces": [
    {"name": "log", "types": {}, "functions": {}, "package": 2},
    {"name": null, "types": {}, "functions": {}, "package": null}
  ],
  "types": [],
  "packages": [
    {"name": "a:one", "interfaces": {}, "worlds": {"app": 0}},
    {"name": "b:two@1.0.0", "interfaces": {}, "worlds": {"app": 1, "cli": 2}},
    {"name": "wasi:logging@0.1.0", "interfaces": {"log": 0}, "worlds": {}},
    {"name": "componentize-go:workspace", "interfaces": {}, "worlds": {"workspace": 3}}
  ]
}`

func decodeMulti(t *testing.T) *wit.Resolve {
	t.Helper()
	res, err := DecodeResolve([]byte(multiJSON))
	if err != nil {
		t.Fatalf("DecodeResolve: %v", err)
	}
	return res
}

func TestDecodeResolve(t *testing.T) {
	res := decodeMulti(t)
	if len(res.Packages) != 4 || len(res.Worlds) != 4 || len(res.Interfaces) != 2 {
		t.Fatalf("counts = %d packages, %d worlds, %d interfaces", len(res.Packages), len(res.Worlds), len(res.Interfaces))
	}
	if got := WorldName(res.Worlds[1]); got != "b:two/app@1.0.0" {
		t.Errorf("WorldName = %s", got)
	}

	w := res.Worlds[0]
	if got := itemNames(&w.Imports); !reflect.DeepEqual(got, []string{"wasi:logging/log@0.1.0"}) {
		t.Errorf("imports = %v", got)
	}
	if got := itemNames(&w.Exports); !reflect.DeepEqual(got, []string{"run"}) {
		t.Errorf("exports = %v", got)
	}
	if got := itemNames(&res.Worlds[1].Exports); !reflect.DeepEqual(got, []string{"api"}) {
		t.Errorf("anonymous interface export = %v", got)
	}
}

func TestDecodeResolveErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `}`},
		{"bad package name", `{"packages": [{"name": "nocolon"}]}`},
		{"world without package", `{"worlds": [{"name": "w", "package": null}]}`},
		{"unknown item kind", `{"packages": [{"name": "a:b"}], "worlds": [{"name": "w", "package": 0, "exports": {"x": {}}}]}`},
		{"dangling world", `{"packages": [{"name": "a:b", "worlds": {"w": 3}}]}`},
		{"dangling package", `{"packages": [{"name": "a:b"}], "worlds": [{"name": "w", "package": 2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeResolve([]byte(tt.doc))
			if !stderrors.Is(err, &errors.Error{Kind: errors.KindResolution}) {
				t.Errorf("error = %v, want resolution error", err)
			}
		})
	}
}

func TestFindPackage(t *testing.T) {
	res := decodeMulti(t)
	tests := []struct {
		name string
		want int
		ok   bool
	}{
		{"a:one", 0, true},
		{"b:two@1.0.0", 1, true},
		{"b:two", 1, true},
		{"b:two@2.0.0", 0, false},
		{"missing:pkg", 0, false},
	}
	for _, tt := range tests {
		id, err := wit.ParseIdent(tt.name)
		if err != nil {
			t.Fatalf("ParseIdent(%q): %v", tt.name, err)
		}
		got, ok := FindPackage(res, id)
		if ok != tt.ok || (ok && got != res.Packages[tt.want]) {
			t.Errorf("FindPackage(%q) = %v, %v; want package %d, %v", tt.name, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSelectWorld(t *testing.T) {
	res := decodeMulti(t)
	pkgs := func(ids ...int) []*wit.Package {
		out := make([]*wit.Package, len(ids))
		for i, id := range ids {
			out[i] = res.Packages[id]
		}
		return out
	}
	tests := []struct {
		name    string
		main    []*wit.Package
		world   string
		want    int
		wantErr string
	}{
		{name: "default single world", main: pkgs(0), want: 0},
		{name: "default ambiguous", main: pkgs(0, 1), wantErr: "multiple worlds found"},
		{name: "default none", main: pkgs(2), wantErr: "no worlds found"},
		{name: "default repeated package", main: pkgs(0, 0), want: 0},
		{name: "bare unique", main: pkgs(0, 1), world: "cli", want: 2},
		{name: "bare repeated package", main: pkgs(0, 2, 0), world: "app", want: 0},
		{name: "bare ambiguous", main: pkgs(0, 1), world: "app", wantErr: "fully-qualified"},
		{name: "bare missing", main: pkgs(0), world: "cli", wantErr: "not found"},
		{name: "qualified", main: pkgs(0, 1), world: "b:two/app@1.0.0", want: 1},
		{name: "qualified version on package", main: pkgs(0), world: "b:two@1.0.0/cli", want: 2},
		{name: "qualified unversioned", main: pkgs(0), world: "b:two/cli", want: 2},
		{name: "qualified outside main", main: pkgs(0), world: "a:one/app", want: 0},
		{name: "qualified missing world", main: pkgs(0), world: "a:one/nope", wantErr: "not found"},
		{name: "qualified missing package", main: pkgs(0), world: "x:y/app", wantErr: "not found"},
		{name: "qualified malformed", main: pkgs(0), world: "a:one", wantErr: "invalid world name"},
		{name: "version twice", main: pkgs(0), world: "b:two@1.0.0/cli@1.0.0", wantErr: "version given twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SelectWorld(res, tt.main, tt.world)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("SelectWorld: %v", err)
			}
			if got != res.Worlds[tt.want] {
				t.Errorf("SelectWorld = %s, want %s", WorldName(got), WorldName(res.Worlds[tt.want]))
			}
		})
	}
}

func TestSelectWorldNoMainPackages(t *testing.T) {
	_, err := SelectWorld(decodeMulti(t), nil, "")
	if !stderrors.Is(err, &errors.Error{Kind: errors.KindInvalidInput}) {
		t.Errorf("error = %v, want invalid input", err)
	}
}
