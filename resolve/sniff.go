package resolve

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/bytecodealliance/componentize-go/errors"
)

// SniffPackage returns the first top-level package declaration in WIT text.
// Comments are ignored and nested `package x { ... }` blocks are skipped.
func SniffPackage(src string) (wit.Ident, bool) {
	text := stripComments(src)
	depth := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '{':
			depth++
			continue
		case '}':
			if depth > 0 {
				depth--
			}
			continue
		}
		if depth != 0 || !keywordAt(text, i, "package") {
			continue
		}
		rest := text[i+len("package"):]
		end := strings.IndexAny(rest, ";{")
		if end < 0 {
			return wit.Ident{}, false
		}
		if rest[end] == '{' {
			i += len("package") + end - 1
			continue
		}
		id, err := wit.ParseIdent(strings.TrimSpace(rest[:end]))
		if err != nil || id.Extension != "" {
			return wit.Ident{}, false
		}
		return id, true
	}
	return wit.Ident{}, false
}

func keywordAt(text string, i int, kw string) bool {
	if !strings.HasPrefix(text[i:], kw) {
		return false
	}
	if i > 0 && isIdentRune(rune(text[i-1])) {
		return false
	}
	next := i + len(kw)
	return next < len(text) && unicode.IsSpace(rune(text[next]))
}

func isIdentRune(r rune) bool {
	return r == '-' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// stripComments blanks line comments and nested block comments, keeping
// newlines so offsets remain meaningful.
func stripComments(src string) string {
	var b strings.Builder
	b.Grow(len(src))
	depth := 0
	for i := 0; i < len(src); i++ {
		switch {
		case depth == 0 && strings.HasPrefix(src[i:], "//"):
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				b.WriteByte('\n')
			}
		case strings.HasPrefix(src[i:], "/*"):
			depth++
			i++
			b.WriteString("  ")
		case depth > 0 && strings.HasPrefix(src[i:], "*/"):
			depth--
			i++
			b.WriteString("  ")
		case depth > 0:
			if src[i] == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		default:
			b.WriteByte(src[i])
		}
	}
	return b.String()
}

// sniffDir returns the package declared by the first .wit file in dir, in
// lexical order, that carries a declaration.
func sniffDir(dir string) (wit.Ident, error) {
	files, err := witFiles(dir)
	if err != nil {
		return wit.Ident{}, err
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			return wit.Ident{}, errors.IO(errors.PhaseResolve, "read", f, err)
		}
		if id, ok := SniffPackage(string(data)); ok {
			return id, nil
		}
	}
	return wit.Ident{}, errors.New(errors.PhaseResolve, errors.KindResolution).
		Path(dir).
		Detail("no package declaration found in any .wit file").
		Build()
}

func sniffFile(path string) (wit.Ident, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return wit.Ident{}, errors.IO(errors.PhaseResolve, "read", path, err)
	}
	if id, ok := SniffPackage(string(data)); ok {
		return id, nil
	}
	return wit.Ident{}, errors.New(errors.PhaseResolve, errors.KindResolution).
		Path(path).
		Detail("no package declaration found").
		Build()
}

// witFiles lists the top-level .wit files of dir in lexical order.
func witFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.IO(errors.PhaseResolve, "read directory", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && filepath.Ext(e.Name()) == ".wit" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}
