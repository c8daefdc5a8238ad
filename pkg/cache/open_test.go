package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	errs "github.com/matzehuels/linearmesh/pkg/errors"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatal(err)
	}
	defer mr.Close()

	tests := []struct {
		name string
		opts Options
		want string
		code errs.Code
	}{
		{"file", Options{Backend: BackendFile, Dir: t.TempDir()}, "*cache.FileCache", ""},
		{"default is file", Options{Dir: t.TempDir()}, "*cache.FileCache", ""},
		{"none", Options{Backend: BackendNone}, "*cache.NullCache", ""},
		{"redis", Options{Backend: BackendRedis, URL: "redis://" + mr.Addr()}, "*cache.RedisCache", ""},
		{"redis bad url", Options{Backend: BackendRedis, URL: "mongodb://x"}, "", errs.ErrCodeInvalidInput},
		{"mongo missing url", Options{Backend: BackendMongo}, "", errs.ErrCodeInvalidInput},
		{"unknown", Options{Backend: "memcached"}, "", errs.ErrCodeInvalidOptions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.opts)
			if tt.code != "" {
				if !errs.Is(err, tt.code) {
					t.Fatalf("Open error = %v, want code %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer c.Close()
			if got := typeName(c); got != tt.want {
				t.Errorf("Open returned %s, want %s", got, tt.want)
			}
		})
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case *FileCache:
		return "*cache.FileCache"
	case *NullCache:
		return "*cache.NullCache"
	case *RedisCache:
		return "*cache.RedisCache"
	case *MongoCache:
		return "*cache.MongoCache"
	}
	return "unknown"
}
