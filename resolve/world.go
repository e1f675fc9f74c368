package resolve

import (
	"bytes"
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"
	"go.bytecodealliance.org/wit/ordered"

	"github.com/bytecodealliance/componentize-go/errors"
)

// DecodeResolve decodes the JSON form of a resolved package graph as printed
// by `wasm-tools component wit --json`. Every world must belong to a package.
func DecodeResolve(data []byte) (*wit.Resolve, error) {
	res, err := wit.DecodeJSON(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Resolution("decode resolved package graph", err)
	}

	for i, p := range res.Packages {
		if p == nil {
			return nil, errors.Resolution(fmt.Sprintf("package %d is referenced but not defined", i), nil)
		}
	}
	for i, w := range res.Worlds {
		if w == nil || w.Package == nil {
			return nil, errors.Resolution(fmt.Sprintf("world %d has no owning package", i), nil)
		}
		for name, item := range w.AllItems() {
			if item == nil {
				return nil, errors.Resolution(fmt.Sprintf("world %s: item %s has unknown kind", w.Name, name), nil)
			}
		}
	}
	return res, nil
}

// WorldName returns the fully-qualified name of w: ns:pkg/world@version.
func WorldName(w *wit.World) string {
	id := w.Package.Name
	id.Extension = w.Name
	return id.String()
}

// FindPackage looks a package up by identifier. An unversioned identifier
// matches a versioned package when exactly one version is present.
func FindPackage(res *wit.Resolve, id wit.Ident) (*wit.Package, bool) {
	want := id.String()
	for _, p := range res.Packages {
		if p.Name.String() == want {
			return p, true
		}
	}
	if id.Version != nil {
		return nil, false
	}
	var found *wit.Package
	for _, p := range res.Packages {
		if p.Name.UnversionedString() == want {
			if found != nil {
				return nil, false
			}
			found = p
		}
	}
	return found, found != nil
}

// SelectWorld picks one world. A fully-qualified name (ns:pkg/world,
// optionally versioned) is looked up anywhere in res. A bare name must
// match exactly one world among the main packages. An empty name requires
// the main packages to define exactly one world in total. A package listed
// more than once in main counts once.
func SelectWorld(res *wit.Resolve, main []*wit.Package, name string) (*wit.World, error) {
	main = uniquePackages(main)
	if len(main) == 0 {
		return nil, errors.InvalidInput(errors.PhaseResolve, "no main packages to select a world from")
	}

	if strings.Contains(name, ":") {
		return selectQualified(res, name)
	}

	pkgNames := make([]string, len(main))
	for i, p := range main {
		pkgNames[i] = p.Name.String()
	}

	if name != "" {
		var matches []*wit.World
		for _, p := range main {
			if w, ok := p.Worlds.GetOK(name); ok {
				matches = append(matches, w)
			}
		}
		switch len(matches) {
		case 0:
			return nil, errors.Resolution(fmt.Sprintf("world %q not found in package(s) %s", name, strings.Join(pkgNames, ", ")), nil)
		case 1:
			return matches[0], nil
		default:
			return nil, errors.Resolution(fmt.Sprintf("world %q is defined in multiple packages (%s); use a fully-qualified name",
				name, strings.Join(worldNames(matches), ", ")), nil)
		}
	}

	var candidates []*wit.World
	for _, p := range main {
		for _, w := range p.Worlds.All() {
			candidates = append(candidates, w)
		}
	}
	switch len(candidates) {
	case 0:
		return nil, errors.Resolution(fmt.Sprintf("no worlds found in package(s) %s", strings.Join(pkgNames, ", ")), nil)
	case 1:
		return candidates[0], nil
	default:
		return nil, errors.Resolution("multiple worlds found; one must be explicitly chosen: "+
			strings.Join(worldNames(candidates), ", "), nil)
	}
}

func selectQualified(res *wit.Resolve, name string) (*wit.World, error) {
	slash := strings.LastIndex(name, "/")
	if slash < 0 {
		return nil, errors.Resolution(fmt.Sprintf("invalid world name %q: expected ns:pkg/world", name), nil)
	}
	pkgName, world := name[:slash], name[slash+1:]
	if w, version, ok := strings.Cut(world, "@"); ok {
		if strings.Contains(pkgName, "@") {
			return nil, errors.Resolution(fmt.Sprintf("invalid world name %q: version given twice", name), nil)
		}
		world = w
		pkgName += "@" + version
	}
	id, err := wit.ParseIdent(pkgName)
	if err != nil || id.Extension != "" || world == "" {
		return nil, errors.Resolution(fmt.Sprintf("invalid world name %q", name), err)
	}

	p, ok := FindPackage(res, id)
	if !ok {
		return nil, errors.Resolution(fmt.Sprintf("package %q not found", pkgName), nil)
	}
	w, ok := p.Worlds.GetOK(world)
	if !ok {
		return nil, errors.Resolution(fmt.Sprintf("world %q not found in package %s", world, p.Name.String()), nil)
	}
	return w, nil
}

func uniquePackages(pkgs []*wit.Package) []*wit.Package {
	seen := make(map[*wit.Package]bool, len(pkgs))
	out := make([]*wit.Package, 0, len(pkgs))
	for _, p := range pkgs {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

func worldNames(worlds []*wit.World) []string {
	names := make([]string, len(worlds))
	for i, w := range worlds {
		names[i] = WorldName(w)
	}
	return names
}

// itemNames lists the keys of world imports or exports. Interface items
// owned by a package are shown by their qualified interface name.
func itemNames(items *ordered.Map[string, wit.WorldItem]) []string {
	var names []string
	for key, item := range items.All() {
		ref, ok := item.(*wit.InterfaceRef)
		if ok && ref.Interface != nil && ref.Interface.Name != nil && ref.Interface.Package != nil {
			id := ref.Interface.Package.Name
			id.Extension = *ref.Interface.Name
			key = id.String()
		}
		names = append(names, key)
	}
	return names
}
