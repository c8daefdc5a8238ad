package cache

import (
	"context"
	"fmt"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
)

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
	BackendNone  = "none"
)

// Backends lists the supported backend names.
var Backends = []string{BackendFile, BackendRedis, BackendMongo, BackendNone}

// Options selects and configures a cache backend.
type Options struct {
	Backend    string
	Dir        string // file backend; empty means DefaultDir
	URL        string // redis and mongo backends
	Database   string // mongo backend
	Collection string // mongo backend
}

// Open creates the cache described by opts. An empty backend selects the
// file cache.
func Open(ctx context.Context, opts Options) (Cache, error) {
	switch opts.Backend {
	case "", BackendFile:
		dir := opts.Dir
		if dir == "" {
			d, err := DefaultDir()
			if err != nil {
				return nil, fmt.Errorf("resolve cache dir: %w", err)
			}
			dir = d
		}
		c, err := NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendRedis:
		if err := errs.ValidateURL(opts.URL, "redis", "rediss"); err != nil {
			return nil, err
		}
		c, err := NewRedisCache(ctx, opts.URL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendMongo:
		if err := errs.ValidateURL(opts.URL, "mongodb", "mongodb+srv"); err != nil {
			return nil, err
		}
		c, err := NewMongoCache(ctx, opts.URL, opts.Database, opts.Collection)
		if err != nil {
			return nil, err
		}
		return c, nil
	case BackendNone:
		return NewNullCache(), nil
	default:
		return nil, errs.New(errs.ErrCodeInvalidOptions, "unknown cache backend %q", opts.Backend)
	}
}
