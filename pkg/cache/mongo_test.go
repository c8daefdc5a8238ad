package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// TestMongoCache needs a live server and runs only when
// LINEARMESH_TEST_MONGO_URI is set.
func TestMongoCache(t *testing.T) {
	uri := os.Getenv("LINEARMESH_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("LINEARMESH_TEST_MONGO_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	coll := "cache_test_" + uuid.NewString()
	c, err := NewMongoCache(ctx, uri, "linearmesh_test", coll)
	if err != nil {
		t.Fatalf("NewMongoCache: %v", err)
	}
	t.Cleanup(func() {
		_ = c.coll.Drop(context.Background())
		c.Close()
	})

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get missing = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("first"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "k", []byte("second"), time.Hour); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "second" {
		t.Errorf("Get = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "old", []byte("x"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "old"); hit {
		t.Error("expired document should read as a miss")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("entry should be gone after Delete")
	}
}
