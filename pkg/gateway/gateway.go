// Package gateway turns "I want asset X" into "here is a locally servable
// path for X", composing the upstream client and the asset store.
package gateway

import (
	"context"
	"path/filepath"

	"github.com/ASHISH26940/manim-asset-gateway/pkg/store"
	"github.com/ASHISH26940/manim-asset-gateway/pkg/upstream"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Asset is the stable local reference returned by a successful fetch.
type Asset struct {
	Key       string
	FileName  string
	LocalPath string
	PublicURL string
	Size      int64
}

// Gateway is the single externally-used fetch entry point.
type Gateway struct {
	store    *store.Store
	upstream *upstream.Client
	group    singleflight.Group
}

// New builds a Gateway over an asset store and an upstream client.
func New(st *store.Store, up *upstream.Client) *Gateway {
	return &Gateway{store: st, upstream: up}
}

// FetchAsset downloads the asset for key and persists it, returning a
// reference whose PublicURL points to a file containing exactly the bytes
// upstream returned. Concurrent calls for the same key collapse into one
// in-flight download sharing the result; without that, the clear-then-write
// sequence of the stable policy races with itself.
func (g *Gateway) FetchAsset(ctx context.Context, key string) (*Asset, error) {
	v, err, shared := g.group.Do(key, func() (interface{}, error) {
		return g.fetch(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		log.Debugf("Fetch for key %q joined an in-flight download", key)
	}
	return v.(*Asset), nil
}

func (g *Gateway) fetch(ctx context.Context, key string) (*Asset, error) {
	if err := g.store.EnsureDirectory(); err != nil {
		return nil, err
	}

	// Download before touching resident files: a missing or failing asset
	// must leave the store exactly as it was.
	data, err := g.upstream.Download(ctx, key)
	if err != nil {
		return nil, err
	}

	if g.store.Policy() == store.PolicyStable {
		if err := g.store.Clear(); err != nil {
			return nil, err
		}
	}

	path, err := g.store.Write(key, data)
	if err != nil {
		return nil, err
	}

	asset := &Asset{
		Key:       key,
		FileName:  filepath.Base(path),
		LocalPath: path,
		PublicURL: g.store.PublicReference(path),
		Size:      int64(len(data)),
	}

	log.Infof("Video saved successfully: %s", asset.PublicURL)
	return asset, nil
}

// CheckExists is a pre-flight advisory probe. It never fails: every
// transport error, timeout or non-success status is downgraded to false and
// logged. Only the full download path surfaces hard failures.
func (g *Gateway) CheckExists(ctx context.Context, key string) bool {
	ok, err := g.upstream.Exists(ctx, key)
	if err != nil {
		log.Warnf("Existence check for key %q failed, reporting absent: %v", key, err)
		return false
	}
	return ok
}

// ListAvailable surfaces the upstream listing unchanged.
func (g *Gateway) ListAvailable(ctx context.Context) (*upstream.VideoList, error) {
	return g.upstream.List(ctx)
}
