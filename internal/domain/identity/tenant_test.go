package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	t.Run("creates tenant successfully", func(t *testing.T) {
		tenant, err := NewTenant("acme-01", "Acme Dropshipping")

		require.NoError(t, err)
		assert.NotNil(t, tenant)
		assert.Equal(t, "acme-01", tenant.Code)
		assert.Equal(t, "Acme Dropshipping", tenant.Name)
		assert.Equal(t, TenantStatusActive, tenant.Status)
		assert.True(t, tenant.IsActive())
		assert.Len(t, tenant.GetDomainEvents(), 1)
	})

	t.Run("converts code to lowercase", func(t *testing.T) {
		tenant, err := NewTenant("ACME-01", "Acme Dropshipping")

		require.NoError(t, err)
		assert.Equal(t, "acme-01", tenant.Code)
	})

	t.Run("fails with empty code", func(t *testing.T) {
		tenant, err := NewTenant("", "Acme Dropshipping")

		assert.Error(t, err)
		assert.Nil(t, tenant)
		assert.Contains(t, err.Error(), "code cannot be empty")
	})

	t.Run("fails with invalid code characters", func(t *testing.T) {
		tenant, err := NewTenant("acme@01", "Acme Dropshipping")

		assert.Error(t, err)
		assert.Nil(t, tenant)
		assert.Contains(t, err.Error(), "can only contain")
	})

	t.Run("fails with code shorter than 2 characters", func(t *testing.T) {
		tenant, err := NewTenant("a", "Acme Dropshipping")

		assert.Error(t, err)
		assert.Nil(t, tenant)
	})

	t.Run("fails with code exceeding max length", func(t *testing.T) {
		tenant, err := NewTenant(strings.Repeat("a", 51), "Acme Dropshipping")

		assert.Error(t, err)
		assert.Nil(t, tenant)
		assert.Contains(t, err.Error(), "between 2 and 50")
	})

	t.Run("fails with empty name", func(t *testing.T) {
		tenant, err := NewTenant("acme-01", "")

		assert.Error(t, err)
		assert.Nil(t, tenant)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with name exceeding max length", func(t *testing.T) {
		tenant, err := NewTenant("acme-01", strings.Repeat("n", 201))

		assert.Error(t, err)
		assert.Nil(t, tenant)
	})
}

func TestTenant_Update(t *testing.T) {
	t.Run("updates tenant name", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Original Name")
		tenant.ClearDomainEvents()
		initialVersion := tenant.Version

		err := tenant.Update("Updated Name")

		require.NoError(t, err)
		assert.Equal(t, "Updated Name", tenant.Name)
		assert.Equal(t, initialVersion+1, tenant.Version)
		assert.Len(t, tenant.GetDomainEvents(), 1)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Original Name")

		err := tenant.Update("")

		assert.Error(t, err)
		assert.Equal(t, "Original Name", tenant.Name)
	})
}

func TestTenant_SetContact(t *testing.T) {
	t.Run("sets contact information", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Acme Dropshipping")

		err := tenant.SetContact("Jordan Reyes", "+1-202-555-0114", "ops@acme.example")

		require.NoError(t, err)
		assert.Equal(t, "Jordan Reyes", tenant.ContactName)
		assert.Equal(t, "+1-202-555-0114", tenant.ContactPhone)
		assert.Equal(t, "ops@acme.example", tenant.ContactEmail)
	})

	t.Run("allows empty email", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Acme Dropshipping")

		err := tenant.SetContact("Jordan Reyes", "", "")

		require.NoError(t, err)
		assert.Empty(t, tenant.ContactEmail)
	})

	t.Run("fails with invalid email", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Acme Dropshipping")

		err := tenant.SetContact("Jordan Reyes", "", "not-an-email")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Invalid email format")
	})
}

func TestTenant_StatusTransitions(t *testing.T) {
	t.Run("suspend blocks active tenant", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Acme Dropshipping")
		tenant.ClearDomainEvents()

		err := tenant.Suspend()

		require.NoError(t, err)
		assert.Equal(t, TenantStatusSuspended, tenant.Status)
		assert.True(t, tenant.IsSuspended())
		assert.False(t, tenant.IsActive())
		assert.Len(t, tenant.GetDomainEvents(), 1)
	})

	t.Run("suspend fails when already suspended", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Acme Dropshipping")
		require.NoError(t, tenant.Suspend())

		err := tenant.Suspend()

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already suspended")
	})

	t.Run("activate restores suspended tenant", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Acme Dropshipping")
		require.NoError(t, tenant.Suspend())
		tenant.ClearDomainEvents()

		err := tenant.Activate()

		require.NoError(t, err)
		assert.True(t, tenant.IsActive())
	})

	t.Run("activate fails when already active", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Acme Dropshipping")

		err := tenant.Activate()

		assert.Error(t, err)
	})

	t.Run("deactivate disables tenant", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Acme Dropshipping")

		err := tenant.Deactivate()

		require.NoError(t, err)
		assert.Equal(t, TenantStatusInactive, tenant.Status)
	})

	t.Run("deactivate fails when already inactive", func(t *testing.T) {
		tenant, _ := NewTenant("acme-01", "Acme Dropshipping")
		require.NoError(t, tenant.Deactivate())

		err := tenant.Deactivate()

		assert.Error(t, err)
	})
}

func TestTenant_GetTenantID(t *testing.T) {
	tenant, _ := NewTenant("acme-01", "Acme Dropshipping")

	assert.Equal(t, tenant.ID, tenant.GetTenantID())
}
