// Package hierarchy resolves native-contract classes across partial files
// and base classes into flat method sets.
package hierarchy

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"neotables/internal/cache/memory"
	"neotables/internal/catalog"
	"neotables/internal/extract"
	t "neotables/internal/types"
)

const DefaultRoot = "NativeContract"

type Options struct {
	// Dir is the unit-name directory holding class files, e.g. "Native/".
	Dir string
	// Root is the registry root class. It is never descended into.
	Root string
	// Skip lists extra base classes that are not descended into.
	Skip   []string
	Logger *zap.Logger
}

// Resolver is created once per run. It memoizes every class it builds so
// a base shared by many contracts is fetched and parsed once.
type Resolver struct {
	cat  catalog.SourceCatalog
	dir  string
	root string
	memo *memory.Memo[string, t.ClassRecord]
	skip map[string]bool
	log  *zap.Logger
}

func New(cat catalog.SourceCatalog, opts Options) *Resolver {
	root := opts.Root
	if root == "" {
		root = DefaultRoot
	}
	skip := map[string]bool{root: true}
	for _, s := range opts.Skip {
		skip[s] = true
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		cat:  cat,
		dir:  opts.Dir,
		root: root,
		memo: memory.NewMemo[string, t.ClassRecord](),
		skip: skip,
		log:  log,
	}
}

// BuildClassInfo merges the class declared across "<unit>.cs" and every
// "<unit>.*.cs" part. The name is the first declared one (falling back to
// unit); bases and methods are ordered unions. A class with no source at
// all yields an empty record named unit.
func (r *Resolver) BuildClassInfo(ctx context.Context, unit string) (t.ClassRecord, error) {
	primary := r.dir + unit + ".cs"
	parts, err := r.cat.Enumerate(ctx, r.dir+unit+".")
	if err != nil {
		return t.ClassRecord{}, fmt.Errorf("hierarchy: enumerate %s: %w", unit, err)
	}
	names := []string{primary}
	for _, p := range parts {
		if p != primary {
			names = append(names, p)
		}
	}

	info := t.ClassRecord{}
	bases := newOrderedSet()
	methods := map[string]bool{}
	found := false
	for _, name := range names {
		units, err := r.cat.Resolve(ctx, name)
		if err != nil {
			return t.ClassRecord{}, fmt.Errorf("hierarchy: resolve %s: %w", name, err)
		}
		for _, u := range units {
			found = true
			if decl, ok := extract.ParseClassDeclaration(u.Content); ok {
				if info.Name == "" {
					info.Name = decl.Name
				}
				// nested classes in part files must not leak their bases
				if decl.Name == info.Name {
					bases.add(decl.Bases...)
				}
			}
			for _, m := range extract.ParseContractMethods(u.Content) {
				if !methods[m.ExposedName] {
					methods[m.ExposedName] = true
					info.Methods = append(info.Methods, m)
				}
			}
		}
	}
	if info.Name == "" {
		info.Name = unit
	}
	info.Bases = bases.items
	if !found {
		r.log.Debug("class has no source", zap.String("class", unit))
	}
	return info, nil
}

func (r *Resolver) classInfo(ctx context.Context, name string) (t.ClassRecord, error) {
	return r.memo.GetOrCompute(name, func() (t.ClassRecord, error) {
		return r.BuildClassInfo(ctx, name)
	})
}

// ResolveMethods returns the exposed method names of name and all of its
// bases, own methods first, unique. visited guards against inheritance
// cycles and is shared across the recursion; pass nil to start fresh.
// Unknown bases contribute nothing.
func (r *Resolver) ResolveMethods(ctx context.Context, name string, visited map[string]bool) ([]string, error) {
	if visited == nil {
		visited = map[string]bool{}
	}
	if visited[name] || r.skip[name] {
		return nil, nil
	}
	visited[name] = true

	info, err := r.classInfo(ctx, name)
	if err != nil {
		return nil, err
	}
	out := newOrderedSet()
	out.add(info.MethodNames()...)
	for _, base := range info.Bases {
		inherited, err := r.ResolveMethods(ctx, base, visited)
		if err != nil {
			return nil, err
		}
		out.add(inherited...)
	}
	return out.items, nil
}

// Roots returns the contract classes registered on the root class, in
// declaration order.
func (r *Resolver) Roots(ctx context.Context) ([]string, error) {
	units, err := catalog.ResolveRoot(ctx, r.cat, r.dir+r.root+".cs")
	if err != nil {
		return nil, err
	}
	roots := newOrderedSet()
	for _, u := range units {
		roots.add(extract.ParseContractRoots(u.Content)...)
	}
	return roots.items, nil
}

type orderedSet struct {
	seen  map[string]bool
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: map[string]bool{}}
}

func (s *orderedSet) add(vals ...string) {
	for _, v := range vals {
		if !s.seen[v] {
			s.seen[v] = true
			s.items = append(s.items, v)
		}
	}
}
