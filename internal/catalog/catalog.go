package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"neotables/internal/cache/disk"
	t "neotables/internal/types"
)

// SourceCatalog resolves unit names to source text.
type SourceCatalog interface {
	Resolve(ctx context.Context, name string) ([]t.SourceUnit, error)
	Enumerate(ctx context.Context, prefix string) ([]string, error)
}

type Config struct {
	// Local sources are always consulted; their hits are authoritative.
	Local []Source
	// Remote sources are tried in order only when no local source has the
	// unit. The first hit wins.
	Remote []Source
	// MemoSize bounds the per-run memo of remote fetches.
	MemoSize int
	// Store persists remote bodies across runs; nil disables it.
	Store  *disk.Store
	Logger *zap.Logger
}

type fetched struct {
	body  []byte
	found bool
}

type listed struct {
	names       []string
	unsupported bool
}

// Catalog combines a local snapshot with remote fallbacks.
type Catalog struct {
	local  []Source
	remote []Source
	memo   *lru.Cache[string, fetched]
	lists  *lru.Cache[string, listed]
	store  *disk.Store
	log    *zap.Logger
}

var _ SourceCatalog = (*Catalog)(nil)

func New(cfg Config) (*Catalog, error) {
	if cfg.MemoSize <= 0 {
		cfg.MemoSize = 256
	}
	memo, err := lru.New[string, fetched](cfg.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("catalog: memo: %w", err)
	}
	lists, err := lru.New[string, listed](cfg.MemoSize)
	if err != nil {
		return nil, fmt.Errorf("catalog: list memo: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Catalog{
		local:  cfg.Local,
		remote: cfg.Remote,
		memo:   memo,
		lists:  lists,
		store:  cfg.Store,
		log:    log,
	}, nil
}

// Resolve returns every distinct text for name. Local hits are returned
// without touching the network. A name found nowhere yields an empty slice;
// an error is returned only when some source failed and none succeeded.
func (c *Catalog) Resolve(ctx context.Context, name string) ([]t.SourceUnit, error) {
	var units []t.SourceUnit
	var lastErr error
	for _, src := range c.local {
		body, err := src.Fetch(ctx, name)
		if err != nil {
			if !errors.Is(err, ErrSourceNotFound) {
				lastErr = err
			}
			continue
		}
		units = append(units, t.SourceUnit{Name: name, Origin: src.Origin(), Content: string(body)})
	}
	if len(units) > 0 {
		c.logResolved(name, units)
		return t.DedupeUnits(units), nil
	}

	for _, src := range c.remote {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		body, err := c.fetchRemote(ctx, src, name)
		if err != nil {
			if !errors.Is(err, ErrSourceNotFound) {
				lastErr = err
				c.log.Warn("source failed", zap.String("name", name), zap.String("source", src.Key()), zap.Error(err))
			}
			continue
		}
		units = append(units, t.SourceUnit{Name: name, Origin: src.Origin(), Content: string(body)})
		break
	}
	if len(units) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		c.log.Debug("unit not found", zap.String("name", name))
		return nil, nil
	}
	c.logResolved(name, units)
	return units, nil
}

// Enumerate lists unit names starting with prefix. Local listings win;
// remote listings are only consulted when the snapshot has no match.
// Sources that cannot list are skipped.
func (c *Catalog) Enumerate(ctx context.Context, prefix string) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	add := func(list []string) {
		for _, n := range list {
			if !seen[n] {
				seen[n] = true
				names = append(names, n)
			}
		}
	}
	var lastErr error
	for _, src := range c.local {
		list, err := src.List(ctx, prefix)
		if err != nil {
			if !errors.Is(err, ErrListUnsupported) {
				lastErr = err
			}
			continue
		}
		add(list)
	}
	if len(names) == 0 {
		for _, src := range c.remote {
			list, err := c.listRemote(ctx, src, prefix)
			if err != nil {
				if !errors.Is(err, ErrListUnsupported) {
					lastErr = err
				}
				continue
			}
			add(list)
			if len(names) > 0 {
				break
			}
		}
	}
	if len(names) == 0 && lastErr != nil {
		return nil, lastErr
	}
	sort.Strings(names)
	return names, nil
}

// listRemote memoizes remote listings for the run, including sources that
// cannot list. Failed listings are retried on the next call.
func (c *Catalog) listRemote(ctx context.Context, src Source, prefix string) ([]string, error) {
	key := src.Key() + "|" + prefix
	if l, ok := c.lists.Get(key); ok {
		if l.unsupported {
			return nil, ErrListUnsupported
		}
		return l.names, nil
	}
	names, err := src.List(ctx, prefix)
	switch {
	case errors.Is(err, ErrListUnsupported):
		c.lists.Add(key, listed{unsupported: true})
	case err == nil:
		c.lists.Add(key, listed{names: names})
	}
	return names, err
}

// fetchRemote consults the run memo, then the disk store, then the source.
// Not-found answers are memoized for the run but never persisted.
func (c *Catalog) fetchRemote(ctx context.Context, src Source, name string) ([]byte, error) {
	key := src.Key() + "|" + name
	if f, ok := c.memo.Get(key); ok {
		if !f.found {
			return nil, notFound(name)
		}
		return f.body, nil
	}
	if c.store != nil {
		if body, ok, err := c.store.Get(ctx, key); err == nil && ok {
			c.memo.Add(key, fetched{body: body, found: true})
			return body, nil
		} else if err != nil {
			c.log.Warn("source cache read failed", zap.String("key", key), zap.Error(err))
		}
	}
	body, err := src.Fetch(ctx, name)
	if errors.Is(err, ErrSourceNotFound) {
		c.memo.Add(key, fetched{})
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	c.memo.Add(key, fetched{body: body, found: true})
	if c.store != nil {
		if err := c.store.Set(ctx, key, body); err != nil {
			c.log.Warn("source cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return body, nil
}

func (c *Catalog) logResolved(name string, units []t.SourceUnit) {
	if ce := c.log.Check(zap.DebugLevel, "unit resolved"); ce != nil {
		origins := make([]string, 0, len(units))
		for _, u := range units {
			origins = append(origins, string(u.Origin))
		}
		ce.Write(zap.String("name", name), zap.Strings("origins", origins))
	}
}

// ResolveRoot resolves a registry root unit. Unlike other units, a root
// with no content fails the run with ErrRootUnresolved.
func ResolveRoot(ctx context.Context, cat SourceCatalog, name string) ([]t.SourceUnit, error) {
	units, err := cat.Resolve(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("catalog: resolve root %s: %w", name, err)
	}
	if len(units) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRootUnresolved, name)
	}
	return units, nil
}
