// Package storetest builds in-memory stores for tests in other packages.
package storetest

import (
	"context"
	"testing"

	"budget-control-plane/internal/store"
	userdomain "budget-control-plane/internal/user/domain"
)

// NewMemory returns a memory store holding an active user for each id, with email id@example.com.
func NewMemory(t testing.TB, userIDs ...string) *store.Memory {
	t.Helper()
	mem := store.NewMemory()
	err := mem.Update(context.Background(), "", func(ctx context.Context, r store.Repos) error {
		for _, id := range userIDs {
			if err := r.Users.Create(ctx, &userdomain.User{ID: id, Email: id + "@example.com", Status: userdomain.UserStatusActive}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("storetest: create users: %v", err)
	}
	return mem
}
