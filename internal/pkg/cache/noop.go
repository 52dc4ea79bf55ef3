package cache

import (
	"context"
	"fmt"
	"time"
)

// noopCache is used when no Redis address is configured: every Get is a
// miss, every Set and Delete succeeds.
type noopCache struct{}

func NewNoop() Cache { return noopCache{} }

func (noopCache) Set(context.Context, string, interface{}, time.Duration) error { return nil }

func (noopCache) Get(context.Context, string) (string, error) { return "", nil }

func (noopCache) Delete(context.Context, string) error { return nil }

func (noopCache) GenerateKey(operation, key string) string {
	return fmt.Sprintf("%s:%s", operation, key)
}
