package common

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/turtacn/BioSecure-Portal/internal/domain/profile"
)

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		name       string
		page, size int
		want       Page
	}{
		{"defaults", 0, 0, Page{1, DefaultPageSize}},
		{"negative", -3, -1, Page{1, DefaultPageSize}},
		{"clamped", 2, 500, Page{2, MaxPageSize}},
		{"kept", 3, 10, Page{3, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePage(tt.page, tt.size))
		})
	}
}

func TestPageMath(t *testing.T) {
	p := NormalizePage(3, 10)
	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 3, p.TotalPages(21))
}

func TestActorFromProfile(t *testing.T) {
	p := &profile.Profile{ID: uuid.New(), UserID: "sub-1", Email: "a@b.c", Role: profile.RoleAdmin}
	a := ActorFromProfile(p)
	assert.Equal(t, p.ID, a.ProfileID)
	assert.Equal(t, "a@b.c", a.Name)
	assert.True(t, a.IsAdmin())
}

func TestCacheKeys(t *testing.T) {
	id := uuid.MustParse("7b0a3c2e-4d6f-4e1a-9c3b-5a8d2f1e0c9b")
	assert.Equal(t, "profile:user:sub-1", ProfileKey("sub-1"))
	assert.Equal(t, "dashboard:7b0a3c2e-4d6f-4e1a-9c3b-5a8d2f1e0c9b", DashboardKey(id))
}
