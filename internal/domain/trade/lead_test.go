package trade

import (
	"testing"

	"github.com/dropship/backoffice/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers
func validLeadInput() NewLeadInput {
	return NewLeadInput{
		TenantID:      uuid.New(),
		SellerID:      uuid.New(),
		Number:        "LD-20250115-000001",
		ExternalID:    "ext-42",
		ProductID:     uuid.New(),
		ProductSKU:    "GADGET-01",
		ProductName:   "Kitchen Gadget",
		Quantity:      2,
		UnitPrice:     valueobject.NewMoneyUSDFromFloat(29.99),
		Payout:        valueobject.NewMoneyUSDFromFloat(8.50),
		CustomerName:  "Jane Smith",
		CustomerPhone: "+1 (555) 010-2030",
		Country:       "us",
		City:          "Austin",
		Address:       "12 Main St",
		Source:        LeadSourceAPI,
		Subs:          SubIDs{Sub1: "campaign-7"},
	}
}

func createTestLead(t *testing.T) *Lead {
	lead, err := NewLead(validLeadInput())
	require.NoError(t, err)
	return lead
}

// ============================================
// LeadStatus Tests
// ============================================

func TestLeadStatus_IsValid(t *testing.T) {
	tests := []struct {
		status  LeadStatus
		isValid bool
	}{
		{LeadStatusNew, true},
		{LeadStatusCallback, true},
		{LeadStatusConfirmed, true},
		{LeadStatusShipped, true},
		{LeadStatusDelivered, true},
		{LeadStatusPaid, true},
		{LeadStatusCancelled, true},
		{LeadStatusReturned, true},
		{LeadStatusTrash, true},
		{LeadStatus("INVALID"), false},
		{LeadStatus(""), false},
		{LeadStatus("new"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.isValid, tt.status.IsValid())
		})
	}
}

func TestLeadStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from     LeadStatus
		to       LeadStatus
		canTrans bool
	}{
		// From NEW
		{LeadStatusNew, LeadStatusCallback, true},
		{LeadStatusNew, LeadStatusConfirmed, true},
		{LeadStatusNew, LeadStatusCancelled, true},
		{LeadStatusNew, LeadStatusTrash, true},
		{LeadStatusNew, LeadStatusShipped, false},
		{LeadStatusNew, LeadStatusDelivered, false},
		{LeadStatusNew, LeadStatusPaid, false},
		{LeadStatusNew, LeadStatusReturned, false},
		// From CALLBACK
		{LeadStatusCallback, LeadStatusConfirmed, true},
		{LeadStatusCallback, LeadStatusCancelled, true},
		{LeadStatusCallback, LeadStatusTrash, true},
		{LeadStatusCallback, LeadStatusNew, false},
		{LeadStatusCallback, LeadStatusShipped, false},
		{LeadStatusCallback, LeadStatusCallback, false},
		// From CONFIRMED
		{LeadStatusConfirmed, LeadStatusShipped, true},
		{LeadStatusConfirmed, LeadStatusCancelled, true},
		{LeadStatusConfirmed, LeadStatusTrash, false},
		{LeadStatusConfirmed, LeadStatusDelivered, false},
		{LeadStatusConfirmed, LeadStatusNew, false},
		// From SHIPPED
		{LeadStatusShipped, LeadStatusDelivered, true},
		{LeadStatusShipped, LeadStatusReturned, true},
		{LeadStatusShipped, LeadStatusCancelled, false},
		{LeadStatusShipped, LeadStatusPaid, false},
		// From DELIVERED
		{LeadStatusDelivered, LeadStatusPaid, true},
		{LeadStatusDelivered, LeadStatusReturned, false},
		{LeadStatusDelivered, LeadStatusCancelled, false},
		// From PAID (terminal)
		{LeadStatusPaid, LeadStatusNew, false},
		{LeadStatusPaid, LeadStatusDelivered, false},
		{LeadStatusPaid, LeadStatusCancelled, false},
		// From CANCELLED (terminal)
		{LeadStatusCancelled, LeadStatusNew, false},
		{LeadStatusCancelled, LeadStatusConfirmed, false},
		// From RETURNED (terminal)
		{LeadStatusReturned, LeadStatusShipped, false},
		{LeadStatusReturned, LeadStatusCancelled, false},
		// From TRASH (terminal)
		{LeadStatusTrash, LeadStatusNew, false},
		{LeadStatusTrash, LeadStatusConfirmed, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.canTrans, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestLeadStatus_IsTerminal(t *testing.T) {
	terminal := []LeadStatus{LeadStatusPaid, LeadStatusCancelled, LeadStatusReturned, LeadStatusTrash}
	for _, s := range terminal {
		assert.True(t, s.IsTerminal(), "expected %s to be terminal", s)
	}

	workable := []LeadStatus{LeadStatusNew, LeadStatusCallback, LeadStatusConfirmed, LeadStatusShipped, LeadStatusDelivered}
	for _, s := range workable {
		assert.False(t, s.IsTerminal(), "expected %s not to be terminal", s)
	}
}

func TestLeadStatus_IsApproved(t *testing.T) {
	approved := []LeadStatus{LeadStatusConfirmed, LeadStatusShipped, LeadStatusDelivered, LeadStatusPaid}
	for _, s := range approved {
		assert.True(t, s.IsApproved(), "expected %s to count as approved", s)
	}

	notApproved := []LeadStatus{LeadStatusNew, LeadStatusCallback, LeadStatusCancelled, LeadStatusReturned, LeadStatusTrash}
	for _, s := range notApproved {
		assert.False(t, s.IsApproved(), "expected %s not to count as approved", s)
	}
}

// ============================================
// NewLead Tests
// ============================================

func TestNewLead(t *testing.T) {
	t.Run("creates lead with valid inputs", func(t *testing.T) {
		input := validLeadInput()
		lead, err := NewLead(input)
		require.NoError(t, err)
		require.NotNil(t, lead)

		assert.Equal(t, input.TenantID, lead.TenantID)
		assert.Equal(t, input.SellerID, lead.SellerID())
		assert.Equal(t, "LD-20250115-000001", lead.Number)
		assert.Equal(t, "ext-42", lead.ExternalID)
		assert.Equal(t, LeadStatusNew, lead.Status)
		assert.Equal(t, LeadSourceAPI, lead.Source)
		assert.Equal(t, "US", lead.Country, "country should be uppercased")
		assert.Equal(t, 2, lead.Quantity)
		assert.True(t, lead.Total.Equal(decimal.NewFromFloat(59.98)), "total = unit price * quantity, got %s", lead.Total)
		assert.Empty(t, lead.StatusHistory)
		assert.Nil(t, lead.PaidAt)

		events := lead.GetDomainEvents()
		require.Len(t, events, 1)
		created, ok := events[0].(*LeadCreatedEvent)
		require.True(t, ok)
		assert.Equal(t, lead.ID, created.LeadID)
		assert.Equal(t, "LD-20250115-000001", created.Number)
	})

	t.Run("fails with empty number", func(t *testing.T) {
		input := validLeadInput()
		input.Number = ""
		_, err := NewLead(input)
		assert.Error(t, err)
	})

	t.Run("fails with empty seller", func(t *testing.T) {
		input := validLeadInput()
		input.SellerID = uuid.Nil
		_, err := NewLead(input)
		assert.Error(t, err)
	})

	t.Run("fails with empty product", func(t *testing.T) {
		input := validLeadInput()
		input.ProductID = uuid.Nil
		_, err := NewLead(input)
		assert.Error(t, err)
	})

	t.Run("fails with zero quantity", func(t *testing.T) {
		input := validLeadInput()
		input.Quantity = 0
		_, err := NewLead(input)
		assert.Error(t, err)
	})

	t.Run("fails with empty phone", func(t *testing.T) {
		input := validLeadInput()
		input.CustomerPhone = ""
		_, err := NewLead(input)
		assert.Error(t, err)
	})

	t.Run("fails with letters in phone", func(t *testing.T) {
		input := validLeadInput()
		input.CustomerPhone = "call me maybe"
		_, err := NewLead(input)
		assert.Error(t, err)
	})

	t.Run("fails with bad country code", func(t *testing.T) {
		input := validLeadInput()
		input.Country = "USA"
		_, err := NewLead(input)
		assert.Error(t, err)
	})

	t.Run("fails with unknown source", func(t *testing.T) {
		input := validLeadInput()
		input.Source = LeadSource("CARRIER_PIGEON")
		_, err := NewLead(input)
		assert.Error(t, err)
	})

	t.Run("fails with overlong external ID", func(t *testing.T) {
		input := validLeadInput()
		input.ExternalID = string(make([]byte, 101))
		_, err := NewLead(input)
		assert.Error(t, err)
	})
}

// ============================================
// ChangeStatus Tests
// ============================================

func TestLead_ChangeStatus(t *testing.T) {
	t.Run("records transition and raises event", func(t *testing.T) {
		lead := createTestLead(t)
		lead.ClearDomainEvents()
		operator := uuid.New()

		err := lead.ChangeStatus(LeadStatusConfirmed, "customer confirmed by phone", &operator)
		require.NoError(t, err)

		assert.Equal(t, LeadStatusConfirmed, lead.Status)
		require.Len(t, lead.StatusHistory, 1)
		change := lead.StatusHistory[0]
		assert.Equal(t, LeadStatusNew, change.FromStatus)
		assert.Equal(t, LeadStatusConfirmed, change.ToStatus)
		assert.Equal(t, "customer confirmed by phone", change.Reason)
		require.NotNil(t, change.ChangedBy)
		assert.Equal(t, operator, *change.ChangedBy)

		events := lead.GetDomainEvents()
		require.Len(t, events, 1)
		evt, ok := events[0].(*LeadStatusChangedEvent)
		require.True(t, ok)
		assert.Equal(t, "NEW", evt.OldStatus)
		assert.Equal(t, "CONFIRMED", evt.NewStatus)
		assert.True(t, evt.Payout.Equal(decimal.NewFromFloat(17.00)), "event payout should be per-unit payout times quantity, got %s", evt.Payout)
	})

	t.Run("rejects invalid transition", func(t *testing.T) {
		lead := createTestLead(t)
		err := lead.ChangeStatus(LeadStatusDelivered, "", nil)
		assert.Error(t, err)
		assert.Equal(t, LeadStatusNew, lead.Status)
		assert.Empty(t, lead.StatusHistory)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		lead := createTestLead(t)
		err := lead.ChangeStatus(LeadStatus("LOST"), "", nil)
		assert.Error(t, err)
	})

	t.Run("rejects transition out of terminal status", func(t *testing.T) {
		lead := createTestLead(t)
		require.NoError(t, lead.ChangeStatus(LeadStatusTrash, "duplicate", nil))

		err := lead.ChangeStatus(LeadStatusNew, "", nil)
		assert.Error(t, err)
		assert.Equal(t, LeadStatusTrash, lead.Status)
	})

	t.Run("walks the full happy path and stamps PaidAt", func(t *testing.T) {
		lead := createTestLead(t)

		require.NoError(t, lead.ChangeStatus(LeadStatusCallback, "no answer", nil))
		require.NoError(t, lead.ChangeStatus(LeadStatusConfirmed, "", nil))
		require.NoError(t, lead.ChangeStatus(LeadStatusShipped, "", nil))
		require.NoError(t, lead.ChangeStatus(LeadStatusDelivered, "", nil))
		assert.Nil(t, lead.PaidAt)
		require.NoError(t, lead.ChangeStatus(LeadStatusPaid, "", nil))

		assert.Equal(t, LeadStatusPaid, lead.Status)
		require.NotNil(t, lead.PaidAt)
		assert.Len(t, lead.StatusHistory, 5)
	})

	t.Run("increments version on each transition", func(t *testing.T) {
		lead := createTestLead(t)
		initial := lead.Version

		require.NoError(t, lead.ChangeStatus(LeadStatusConfirmed, "", nil))
		assert.Equal(t, initial+1, lead.Version)

		require.NoError(t, lead.ChangeStatus(LeadStatusShipped, "", nil))
		assert.Equal(t, initial+2, lead.Version)
	})
}

// ============================================
// Customer Update Tests
// ============================================

func TestLead_UpdateCustomer(t *testing.T) {
	t.Run("updates customer details", func(t *testing.T) {
		lead := createTestLead(t)

		err := lead.UpdateCustomer("John Doe", "555-0100", "de", "Berlin", "Hauptstr. 1")
		require.NoError(t, err)
		assert.Equal(t, "John Doe", lead.CustomerName)
		assert.Equal(t, "555-0100", lead.CustomerPhone)
		assert.Equal(t, "DE", lead.Country)
		assert.Equal(t, "Berlin", lead.City)
	})

	t.Run("rejects update of trashed lead", func(t *testing.T) {
		lead := createTestLead(t)
		require.NoError(t, lead.ChangeStatus(LeadStatusTrash, "junk", nil))

		err := lead.UpdateCustomer("John Doe", "555-0100", "DE", "Berlin", "Hauptstr. 1")
		assert.Error(t, err)
	})

	t.Run("rejects invalid phone", func(t *testing.T) {
		lead := createTestLead(t)
		err := lead.UpdateCustomer("John Doe", "123", "DE", "Berlin", "Hauptstr. 1")
		assert.Error(t, err)
	})
}

// ============================================
// Payout Tests
// ============================================

func TestLead_PayoutTotal(t *testing.T) {
	input := validLeadInput()
	input.Quantity = 3
	input.Payout = valueobject.NewMoneyUSDFromFloat(8.50)
	lead, err := NewLead(input)
	require.NoError(t, err)

	assert.True(t, lead.PayoutTotal().Equal(decimal.NewFromFloat(25.50)),
		"payout total should be 25.50, got %s", lead.PayoutTotal())
}
