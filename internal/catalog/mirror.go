package catalog

import (
	"context"
	"errors"

	"neotables/internal/objstore"
	t "neotables/internal/types"
)

// MirrorSource reads units from an S3-compatible bucket holding a copy of
// the SmartContract tree.
type MirrorSource struct {
	store *objstore.Store
}

func NewMirrorSource(store *objstore.Store) *MirrorSource {
	return &MirrorSource{store: store}
}

func (m *MirrorSource) Origin() t.Origin { return t.OriginMirror }
func (m *MirrorSource) Key() string      { return "mirror:" + m.store.Bucket() }

func (m *MirrorSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	b, err := m.store.Get(ctx, name)
	if errors.Is(err, objstore.ErrNotFound) {
		return nil, notFound(name)
	}
	if err != nil {
		return nil, &TransientFetchError{Name: name, Err: err}
	}
	return b, nil
}

func (m *MirrorSource) List(ctx context.Context, prefix string) ([]string, error) {
	names, err := m.store.List(ctx, prefix)
	if errors.Is(err, objstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &TransientFetchError{Name: prefix, Err: err}
	}
	return names, nil
}
