package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanManageStores(t *testing.T) {
	require.True(t, RoleAdmin.CanManageStores())
	require.True(t, RoleSeller.CanManageStores())
	require.False(t, RoleReviewer.CanManageStores())
}
