package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/meeting-room-reservation/internal/model"
	"github.com/iliyamo/meeting-room-reservation/internal/service"
)

func TestCanMutate(t *testing.T) {
	cases := []struct {
		name    string
		actor   service.Principal
		ownerID uint64
		want    bool
	}{
		{"owner may mutate own row", service.Principal{UserID: 1, Role: model.RoleUser}, 1, true},
		{"user may not mutate another's row", service.Principal{UserID: 1, Role: model.RoleUser}, 2, false},
		{"admin may mutate any row", service.Principal{UserID: 9, Role: model.RoleAdmin}, 2, true},
		{"admin may mutate own row", service.Principal{UserID: 9, Role: model.RoleAdmin}, 9, true},
		{"unknown role falls back to ownership", service.Principal{UserID: 3, Role: "AUDITOR"}, 3, true},
		{"unknown role denied on foreign row", service.Principal{UserID: 3, Role: "AUDITOR"}, 4, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.CanMutate(tc.actor, tc.ownerID))
		})
	}
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, service.Principal{Role: model.RoleAdmin}.IsAdmin())
	assert.False(t, service.Principal{Role: model.RoleUser}.IsAdmin())
	assert.False(t, service.Principal{Role: "admin"}.IsAdmin(), "role comparison is case sensitive")
}
