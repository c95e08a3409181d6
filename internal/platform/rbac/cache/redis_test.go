package cache

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"budget-control-plane/internal/permission"
	"budget-control-plane/internal/platform/rbac"
)

// fakeRedis implements commander over a map.
type fakeRedis struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failing error
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.failing != nil {
		return redis.NewStringResult("", f.failing)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.failing != nil {
		return redis.NewStatusResult("", f.failing)
	}
	f.data[key] = value.(string)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	if f.failing != nil {
		return redis.NewIntResult(0, f.failing)
	}
	n, _ := strconv.ParseInt(f.data[key], 10, 64)
	n++
	f.data[key] = strconv.FormatInt(n, 10)
	return redis.NewIntResult(n, nil)
}

func TestRedis_RoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	c := newRedis(fake, 30*time.Second)

	gen, err := c.Generation(ctx, "org-1")
	if err != nil || gen != 0 {
		t.Fatalf("Generation = %d, %v, want 0, nil", gen, err)
	}
	key := rbac.DecisionKey{OrgID: "org-1", Generation: gen, UserID: "u1", Permission: permission.ViewReport}
	if _, found, err := c.Get(ctx, key); found || err != nil {
		t.Fatalf("Get on empty cache = found %v, %v", found, err)
	}
	if err := c.Set(ctx, key, true); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if fake.ttls["authz:org-1:0:u1:VIEW_REPORT"] != 30*time.Second {
		t.Errorf("ttl = %v, want 30s", fake.ttls["authz:org-1:0:u1:VIEW_REPORT"])
	}
	allowed, found, err := c.Get(ctx, key)
	if !allowed || !found || err != nil {
		t.Fatalf("Get = %v, %v, %v, want true, true, nil", allowed, found, err)
	}

	denied := key
	denied.Permission = permission.ManageRoles
	_ = c.Set(ctx, denied, false)
	if allowed, found, _ := c.Get(ctx, denied); allowed || !found {
		t.Errorf("denied decision = %v, found %v", allowed, found)
	}

	if err := c.Invalidate(ctx, "org-1"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	gen, _ = c.Generation(ctx, "org-1")
	if gen != 1 {
		t.Fatalf("generation after invalidate = %d, want 1", gen)
	}
	key.Generation = gen
	if _, found, _ := c.Get(ctx, key); found {
		t.Error("decision from the previous generation should not be visible")
	}
	if other, _ := c.Generation(ctx, "org-2"); other != 0 {
		t.Errorf("other org generation = %d, want 0", other)
	}
}

func TestRedis_Errors(t *testing.T) {
	ctx := context.Background()
	fake := newFakeRedis()
	fake.failing = errors.New("connection refused")
	c := newRedis(fake, time.Second)
	key := rbac.DecisionKey{OrgID: "org-1", UserID: "u1", Permission: permission.ViewReport}

	if _, err := c.Generation(ctx, "org-1"); err == nil {
		t.Error("Generation should fail")
	}
	if _, _, err := c.Get(ctx, key); err == nil {
		t.Error("Get should fail")
	}
	if err := c.Set(ctx, key, true); err == nil {
		t.Error("Set should fail")
	}
	if err := c.Invalidate(ctx, "org-1"); !errors.Is(err, fake.failing) {
		t.Errorf("Invalidate err = %v, want wrapped connection error", err)
	}
}
