package importapp

import (
	"time"

	"github.com/dropship/backoffice/internal/domain/bulk"
	"github.com/google/uuid"
)

// UploadRequest carries the form fields accompanying a spreadsheet upload
type UploadRequest struct {
	ConflictMode         string `form:"conflict_mode" binding:"omitempty,oneof=SKIP UPDATE FAIL"`
	DryRun               bool   `form:"dry_run"`
	AutoCreateCategories bool   `form:"auto_create_categories"`
}

// SessionListFilter defines query parameters for listing import sessions
type SessionListFilter struct {
	Status   string     `form:"status" binding:"omitempty,oneof=PENDING VALIDATING IMPORTING COMPLETED FAILED CANCELLED"`
	UserID   *uuid.UUID `form:"user_id" binding:"omitempty"`
	Page     int        `form:"page" binding:"omitempty,min=1"`
	PageSize int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// RowErrorResponse describes one rejected spreadsheet row
type RowErrorResponse struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// SessionResponse is the full import session report including row errors
type SessionResponse struct {
	ID            uuid.UUID          `json:"id"`
	UserID        uuid.UUID          `json:"user_id"`
	Filename      string             `json:"filename"`
	FileSize      int64              `json:"file_size"`
	Format        string             `json:"format"`
	ConflictMode  string             `json:"conflict_mode"`
	DryRun        bool               `json:"dry_run"`
	Status        string             `json:"status"`
	TotalRows     int                `json:"total_rows"`
	ProcessedRows int                `json:"processed_rows"`
	SuccessCount  int                `json:"success_count"`
	SkippedCount  int                `json:"skipped_count"`
	ErrorCount    int                `json:"error_count"`
	Errors        []RowErrorResponse `json:"errors"`
	FailReason    string             `json:"fail_reason,omitempty"`
	StartedAt     *time.Time         `json:"started_at,omitempty"`
	CompletedAt   *time.Time         `json:"completed_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}

// SessionListItem summarizes a session for list endpoints. Row error
// detail is only returned by the single-session report.
type SessionListItem struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	Filename      string     `json:"filename"`
	Format        string     `json:"format"`
	ConflictMode  string     `json:"conflict_mode"`
	DryRun        bool       `json:"dry_run"`
	Status        string     `json:"status"`
	TotalRows     int        `json:"total_rows"`
	ProcessedRows int        `json:"processed_rows"`
	SuccessCount  int        `json:"success_count"`
	SkippedCount  int        `json:"skipped_count"`
	ErrorCount    int        `json:"error_count"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// ToSessionResponse converts an ImportSession to a full report response
func ToSessionResponse(s *bulk.ImportSession) SessionResponse {
	errors := make([]RowErrorResponse, 0, len(s.Errors))
	for _, e := range s.Errors {
		errors = append(errors, RowErrorResponse{
			Line:    e.Line,
			Column:  e.Column,
			Message: e.Message,
			Value:   e.Value,
		})
	}

	return SessionResponse{
		ID:            s.ID,
		UserID:        s.UserID,
		Filename:      s.Filename,
		FileSize:      s.FileSize,
		Format:        string(s.Format),
		ConflictMode:  string(s.ConflictMode),
		DryRun:        s.DryRun,
		Status:        string(s.Status),
		TotalRows:     s.TotalRows,
		ProcessedRows: s.ProcessedRows(),
		SuccessCount:  s.SuccessCount,
		SkippedCount:  s.SkippedCount,
		ErrorCount:    s.ErrorCount,
		Errors:        errors,
		FailReason:    s.FailReason,
		StartedAt:     s.StartedAt,
		CompletedAt:   s.CompletedAt,
		CreatedAt:     s.CreatedAt,
	}
}

// ToSessionListItem converts an ImportSession to a list summary
func ToSessionListItem(s *bulk.ImportSession) SessionListItem {
	return SessionListItem{
		ID:            s.ID,
		UserID:        s.UserID,
		Filename:      s.Filename,
		Format:        string(s.Format),
		ConflictMode:  string(s.ConflictMode),
		DryRun:        s.DryRun,
		Status:        string(s.Status),
		TotalRows:     s.TotalRows,
		ProcessedRows: s.ProcessedRows(),
		SuccessCount:  s.SuccessCount,
		SkippedCount:  s.SkippedCount,
		ErrorCount:    s.ErrorCount,
		StartedAt:     s.StartedAt,
		CompletedAt:   s.CompletedAt,
		CreatedAt:     s.CreatedAt,
	}
}

// ToSessionListItems converts a slice of sessions to list summaries
func ToSessionListItems(sessions []*bulk.ImportSession) []SessionListItem {
	items := make([]SessionListItem, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, ToSessionListItem(s))
	}
	return items
}
