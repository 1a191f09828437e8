package service

import (
	"context"
	"reflect"
	"strings"
	"time"

	"github.com/ikkim/toolchest-backend/internal/cache"
	apperrors "github.com/ikkim/toolchest-backend/internal/errors"
)

// baseService is embedded by the services that memoize read aggregations
type baseService struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

func newBaseService(c *cache.Cache, ttl time.Duration) baseService {
	if ttl <= 0 && c != nil {
		ttl = c.DefaultTTL()
	}
	return baseService{cache: c, ttl: ttl, now: time.Now}
}

// getCached reads key through the shared cache; ttl 0 means the service default
func getCached[T any](ctx context.Context, b *baseService, key string, ttl time.Duration, producer func(context.Context) (T, error)) (T, error) {
	if ttl <= 0 {
		ttl = b.ttl
	}
	return cache.GetCached(ctx, b.cache, key, ttl, producer)
}

// invalidateCache drops keys containing any of the patterns; no pattern clears everything
func (b *baseService) invalidateCache(ctx context.Context, patterns ...string) {
	if len(patterns) == 0 {
		b.cache.Invalidate(ctx, "")
		return
	}
	for _, p := range patterns {
		b.cache.Invalidate(ctx, p)
	}
}

// ValidateRequired fails with one validation error naming every missing or empty field
func ValidateRequired(params map[string]interface{}) error {
	var missing []string
	for name, value := range params {
		if isEmptyValue(value) {
			missing = append(missing, name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return apperrors.MissingFields(missing)
}

func isEmptyValue(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}

	v := reflect.ValueOf(value)
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
