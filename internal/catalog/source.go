package catalog

import (
	"context"

	t "neotables/internal/types"
)

// Source fetches unit text by name from one place. Names are
// slash-separated paths relative to the SmartContract directory, e.g.
// "ApplicationEngine.Runtime.cs" or "Native/NeoToken.cs".
type Source interface {
	Origin() t.Origin
	// Fetch returns ErrSourceNotFound when the source has no such unit.
	Fetch(ctx context.Context, name string) ([]byte, error)
	// List returns every unit name starting with prefix, sorted. Sources
	// that cannot enumerate return ErrListUnsupported.
	List(ctx context.Context, prefix string) ([]string, error)
	// Key identifies the source in caches, e.g. its base URL.
	Key() string
}

// Middleware decorates a Source.
type Middleware func(Source) Source

// Wrap applies mws in order; the first middleware is the outermost.
func Wrap(s Source, mws ...Middleware) Source {
	for i := len(mws) - 1; i >= 0; i-- {
		s = mws[i](s)
	}
	return s
}
