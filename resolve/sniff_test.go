package resolve

import "testing"

func TestSniffPackage(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
		ok   bool
	}{
		{"simple", "package example:hello;\n\nworld w {}", "example:hello", true},
		{"versioned", "package wasi:cli@0.2.0;", "wasi:cli@0.2.0", true},
		{"line comment", "// package fake:one;\npackage real:two;", "real:two", true},
		{"block comment", "/* package fake:one; /* nested */ still */ package real:two;", "real:two", true},
		{"nested package skipped", "package a:nested { interface i {} }\npackage b:top;", "b:top", true},
		{"identifier containing keyword", "interface my-package {}\npackage c:d;", "c:d", true},
		{"none", "interface i {}", "", false},
		{"malformed", "package nocolon;", "", false},
		{"item path", "package a:b/c;", "", false},
		{"unterminated", "package a:b", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := SniffPackage(tt.src)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if ok && got.String() != tt.want {
				t.Errorf("SniffPackage() = %s, want %s", got, tt.want)
			}
		})
	}
}
