package trade

import (
	"context"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// LeadRepository defines the interface for lead persistence
type LeadRepository interface {
	// FindByID finds a lead by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Lead, error)

	// FindByIDForTenant finds a lead by ID for a specific tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Lead, error)

	// FindByNumber finds a lead by its human-readable number for a tenant
	FindByNumber(ctx context.Context, tenantID uuid.UUID, number string) (*Lead, error)

	// FindByExternalID finds a lead by the caller-supplied external ID for a tenant
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Lead, error)

	// FindAllForTenant finds all leads for a tenant with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Lead, error)

	// FindBySeller finds leads owned by a seller
	FindBySeller(ctx context.Context, tenantID, sellerID uuid.UUID, filter shared.Filter) ([]Lead, error)

	// FindByStatus finds leads by status for a tenant
	FindByStatus(ctx context.Context, tenantID uuid.UUID, status LeadStatus, filter shared.Filter) ([]Lead, error)

	// FindByProduct finds leads for a product
	FindByProduct(ctx context.Context, tenantID, productID uuid.UUID, filter shared.Filter) ([]Lead, error)

	// FindByIDs finds leads by a set of IDs for a tenant (bulk status changes)
	FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]Lead, error)

	// Save creates or updates a lead
	Save(ctx context.Context, lead *Lead) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, lead *Lead) error

	// SaveWithLockAndEvents saves with optimistic locking and persists domain events atomically
	// This implements the transactional outbox pattern - events are saved to the outbox table
	// in the same transaction as the aggregate, ensuring guaranteed event delivery
	SaveWithLockAndEvents(ctx context.Context, lead *Lead, events []shared.DomainEvent) error

	// Delete deletes a lead (soft delete)
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteForTenant deletes a lead for a tenant
	DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error

	// CountForTenant counts leads for a tenant with optional filters
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByStatus counts leads by status for a tenant
	CountByStatus(ctx context.Context, tenantID uuid.UUID, status LeadStatus) (int64, error)

	// CountBySeller counts leads owned by a seller
	CountBySeller(ctx context.Context, tenantID, sellerID uuid.UUID) (int64, error)

	// CountByProduct counts leads referencing a product
	// Used for validation before product deletion
	CountByProduct(ctx context.Context, tenantID, productID uuid.UUID) (int64, error)

	// ExistsByExternalID checks if an external ID is already taken for a tenant
	ExistsByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (bool, error)

	// GenerateNumber generates a unique lead number for a tenant
	GenerateNumber(ctx context.Context, tenantID uuid.UUID) (string, error)

	// CountsByDay returns per-day per-status lead counts and sums for the
	// statistics endpoint. Rows are grouped by capture date and status.
	CountsByDay(ctx context.Context, tenantID uuid.UUID, query StatsQuery) ([]StatusDayCount, error)

	// FindStatusHistory returns the transition history for a lead, oldest first
	FindStatusHistory(ctx context.Context, tenantID, leadID uuid.UUID) ([]StatusChange, error)
}

// StatsQuery narrows the lead statistics aggregation
type StatsQuery struct {
	From      time.Time
	To        time.Time
	SellerID  *uuid.UUID
	ProductID *uuid.UUID
	Country   string
}
