package bulk

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ImportSessionFilter defines the filters for querying import sessions
type ImportSessionFilter struct {
	Status      *ImportStatus // Filter by status
	UserID      *uuid.UUID    // Filter by uploading user
	StartedFrom *time.Time    // Filter by start time (from)
	StartedTo   *time.Time    // Filter by start time (to)
}

// ImportSessionListResult represents a paginated list of import sessions
type ImportSessionListResult struct {
	Items      []*ImportSession
	TotalCount int64
	Page       int
	PageSize   int
}

// ImportSessionRepository defines the interface for import session persistence
type ImportSessionRepository interface {
	// FindByID finds an import session by ID
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*ImportSession, error)

	// FindAll returns all import sessions for a tenant with pagination and filtering
	FindAll(ctx context.Context, tenantID uuid.UUID, filter ImportSessionFilter, page, pageSize int) (*ImportSessionListResult, error)

	// FindRunning finds sessions still in a non-terminal state after a
	// restart, so they can be marked failed
	FindRunning(ctx context.Context, tenantID uuid.UUID) ([]*ImportSession, error)

	// Save saves an import session (create or update)
	Save(ctx context.Context, session *ImportSession) error

	// Delete deletes an import session by ID
	Delete(ctx context.Context, tenantID, id uuid.UUID) error
}
