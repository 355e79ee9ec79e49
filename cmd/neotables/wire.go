package main

import (
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"

	"neotables/internal/artifact"
	"neotables/internal/cache/disk"
	"neotables/internal/catalog"
	"neotables/internal/config"
	"neotables/internal/objstore"
)

// buildCatalog assembles the source catalog: the local snapshot, then the
// mirror bucket, the GitHub raw host and the contents API, each remote one
// behind the retry middleware.
func buildCatalog(c *config.Config, offline bool, log *zap.Logger) (*catalog.Catalog, error) {
	var local, remote []catalog.Source

	src, err := catalog.NewLocalSource(c.SnapshotDir, c.SnapshotIgnore...)
	switch {
	case err == nil:
		local = append(local, src)
	case errors.Is(err, fs.ErrNotExist):
		log.Warn("snapshot directory missing, using remote sources only", zap.String("dir", c.SnapshotDir))
	default:
		return nil, fmt.Errorf("snapshot %s: %w", c.SnapshotDir, err)
	}

	if !offline {
		retry := catalog.Retry(c.Fetch.Attempts, c.Fetch.Backoff, log)
		if c.Mirror.Enabled {
			store, err := mirrorStore(c.Mirror)
			if err != nil {
				return nil, err
			}
			remote = append(remote, catalog.Wrap(catalog.NewMirrorSource(store), retry))
		}
		client, err := catalog.NewHTTPClient(c.Fetch.Timeout)
		if err != nil {
			return nil, err
		}
		remote = append(remote,
			catalog.Wrap(catalog.NewRawSource(client, catalog.HTTPConfig{BaseURL: c.Fetch.RawBaseURL, Token: c.Fetch.Token}), retry),
			catalog.Wrap(catalog.NewContentsSource(client, catalog.HTTPConfig{BaseURL: c.Fetch.APIBaseURL, Ref: c.Fetch.Ref, Token: c.Fetch.Token}), retry),
		)
	}
	if len(local) == 0 && len(remote) == 0 {
		return nil, fmt.Errorf("no sources: snapshot %s is missing and remote sources are disabled", c.SnapshotDir)
	}

	var store *disk.Store
	if c.Cache.Dir != "" {
		store, err = disk.New(disk.Config{Root: c.Cache.Dir, TTL: c.Cache.TTL})
		if err != nil {
			return nil, fmt.Errorf("source cache: %w", err)
		}
	}
	return catalog.New(catalog.Config{Local: local, Remote: remote, Store: store, Logger: log})
}

func mirrorStore(m config.MirrorConfig) (*objstore.Store, error) {
	return objstore.New(objstore.Config{
		Endpoint:  m.Endpoint,
		Region:    m.Region,
		AccessKey: m.AccessKey,
		SecretKey: m.SecretKey,
		Bucket:    m.Bucket,
		Prefix:    m.Prefix,
		UseSSL:    m.UseSSL,
	})
}

func buildWriter(c *config.Config, log *zap.Logger) (*artifact.Writer, error) {
	var pub artifact.Publisher
	if c.Mirror.Publish {
		if !c.Mirror.Enabled {
			return nil, errors.New("publish requested but NEOTABLES_MIRROR_ENDPOINT is not set")
		}
		store, err := mirrorStore(c.Mirror)
		if err != nil {
			return nil, err
		}
		pub = store
	}
	return artifact.NewWriter(".", pub, log), nil
}

