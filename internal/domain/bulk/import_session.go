package bulk

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// ImportFormat represents the spreadsheet format of an uploaded file
type ImportFormat string

const (
	ImportFormatCSV  ImportFormat = "CSV"
	ImportFormatXLSX ImportFormat = "XLSX"
)

// IsValid checks if the format is supported
func (f ImportFormat) IsValid() bool {
	return f == ImportFormatCSV || f == ImportFormatXLSX
}

// FormatFromFilename infers the spreadsheet format from the file extension
func FormatFromFilename(filename string) (ImportFormat, error) {
	lower := strings.ToLower(filename)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return ImportFormatCSV, nil
	case strings.HasSuffix(lower, ".xlsx"):
		return ImportFormatXLSX, nil
	default:
		return "", shared.NewDomainError("UNSUPPORTED_FORMAT", "File must be .csv or .xlsx")
	}
}

// ImportStatus represents the lifecycle state of an import session
type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "PENDING"
	ImportStatusValidating ImportStatus = "VALIDATING"
	ImportStatusImporting  ImportStatus = "IMPORTING"
	ImportStatusCompleted  ImportStatus = "COMPLETED"
	ImportStatusFailed     ImportStatus = "FAILED"
	ImportStatusCancelled  ImportStatus = "CANCELLED"
)

// IsValid checks if the status is valid
func (s ImportStatus) IsValid() bool {
	switch s {
	case ImportStatusPending, ImportStatusValidating, ImportStatusImporting,
		ImportStatusCompleted, ImportStatusFailed, ImportStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s ImportStatus) IsTerminal() bool {
	return s == ImportStatusCompleted || s == ImportStatusFailed || s == ImportStatusCancelled
}

// IsRunning returns true while the session still occupies a worker
func (s ImportStatus) IsRunning() bool {
	return s == ImportStatusValidating || s == ImportStatusImporting
}

// ConflictMode defines how rows whose SKU already exists are handled
type ConflictMode string

const (
	ConflictModeSkip   ConflictMode = "SKIP"
	ConflictModeUpdate ConflictMode = "UPDATE"
	ConflictModeFail   ConflictMode = "FAIL"
)

// IsValid checks if the conflict mode is valid
func (c ConflictMode) IsValid() bool {
	switch c {
	case ConflictModeSkip, ConflictModeUpdate, ConflictModeFail:
		return true
	}
	return false
}

// MaxRowErrors caps how many row errors a session retains. Rows past the
// cap still count, only the detail is dropped.
const MaxRowErrors = 100

// RowError describes why a single spreadsheet row was rejected
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportSession tracks one bulk product import from upload to report
type ImportSession struct {
	shared.TenantAggregateRoot
	UserID       uuid.UUID    `json:"user_id"`
	Filename     string       `json:"filename"`
	StorageKey   string       `json:"storage_key"`
	FileSize     int64        `json:"file_size"`
	Format       ImportFormat `json:"format"`
	ConflictMode ConflictMode `json:"conflict_mode"`
	DryRun       bool         `json:"dry_run"`
	Status       ImportStatus `json:"status"`
	TotalRows    int          `json:"total_rows"`
	SuccessCount int          `json:"success_count"`
	SkippedCount int          `json:"skipped_count"`
	ErrorCount   int          `json:"error_count"`
	Errors       []RowError   `json:"errors,omitempty"`
	FailReason   string       `json:"fail_reason,omitempty"`
	StartedAt    *time.Time   `json:"started_at,omitempty"`
	CompletedAt  *time.Time   `json:"completed_at,omitempty"`
}

// NewImportSession creates a pending import session for an uploaded file
func NewImportSession(
	tenantID uuid.UUID,
	userID uuid.UUID,
	filename string,
	storageKey string,
	fileSize int64,
	format ImportFormat,
	conflictMode ConflictMode,
	dryRun bool,
) (*ImportSession, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if filename == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if storageKey == "" {
		return nil, shared.NewDomainError("INVALID_STORAGE_KEY", "Storage key cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}
	if !format.IsValid() {
		return nil, shared.NewDomainError("UNSUPPORTED_FORMAT", fmt.Sprintf("Unsupported format: %s", format))
	}
	if !conflictMode.IsValid() {
		return nil, shared.NewDomainError("INVALID_CONFLICT_MODE", fmt.Sprintf("Invalid conflict mode: %s", conflictMode))
	}

	session := &ImportSession{
		TenantAggregateRoot: shared.NewTenantAggregateRootWithCreator(tenantID, userID),
		UserID:              userID,
		Filename:            filename,
		StorageKey:          storageKey,
		FileSize:            fileSize,
		Format:              format,
		ConflictMode:        conflictMode,
		DryRun:              dryRun,
		Status:              ImportStatusPending,
		Errors:              make([]RowError, 0),
	}

	return session, nil
}

// StartValidation marks the session as parsing and validating the file
func (s *ImportSession) StartValidation() error {
	if s.Status != ImportStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start validation from state: %s", s.Status))
	}

	s.Status = ImportStatusValidating
	now := time.Now()
	s.StartedAt = &now
	s.touch()

	return nil
}

// StartImporting marks the session as writing validated rows
func (s *ImportSession) StartImporting(totalRows int) error {
	if s.Status != ImportStatusValidating {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start importing from state: %s", s.Status))
	}
	if totalRows < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Total rows cannot be negative")
	}

	s.Status = ImportStatusImporting
	s.TotalRows = totalRows
	s.touch()

	return nil
}

// SetTotalRows records the data row count discovered during validation
func (s *ImportSession) SetTotalRows(totalRows int) error {
	if totalRows < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Total rows cannot be negative")
	}
	s.TotalRows = totalRows
	return nil
}

// RecordSuccess counts one row that was created or updated
func (s *ImportSession) RecordSuccess() {
	s.SuccessCount++
}

// RecordSkip counts one row skipped by the conflict mode
func (s *ImportSession) RecordSkip() {
	s.SkippedCount++
}

// RecordError counts one rejected row, retaining detail up to MaxRowErrors
func (s *ImportSession) RecordError(line int, column, message, value string) {
	s.ErrorCount++
	if len(s.Errors) < MaxRowErrors {
		s.Errors = append(s.Errors, RowError{
			Line:    line,
			Column:  column,
			Message: message,
			Value:   value,
		})
	}
}

// ProcessedRows returns how many rows have been handled so far
func (s *ImportSession) ProcessedRows() int {
	return s.SuccessCount + s.SkippedCount + s.ErrorCount
}

// Complete closes the session. A session where every processed row
// errored counts as failed; dry-run sessions complete straight from
// validation.
func (s *ImportSession) Complete() error {
	if s.Status != ImportStatusImporting && !(s.DryRun && s.Status == ImportStatusValidating) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", s.Status))
	}

	status := ImportStatusCompleted
	if s.ErrorCount > 0 && s.SuccessCount == 0 && s.SkippedCount == 0 {
		status = ImportStatusFailed
	}

	s.Status = status
	now := time.Now()
	s.CompletedAt = &now
	s.touch()

	return nil
}

// Fail aborts the session, typically for an invalid header or an IO error
func (s *ImportSession) Fail(reason string) error {
	if s.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", s.Status))
	}

	s.Status = ImportStatusFailed
	s.FailReason = reason
	now := time.Now()
	s.CompletedAt = &now
	s.touch()

	return nil
}

// Cancel stops the session between rows
func (s *ImportSession) Cancel() error {
	if s.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel from terminal state: %s", s.Status))
	}

	s.Status = ImportStatusCancelled
	now := time.Now()
	s.CompletedAt = &now
	s.touch()

	return nil
}

// IsCompleted returns true if the import completed, possibly with row errors
func (s *ImportSession) IsCompleted() bool {
	return s.Status == ImportStatusCompleted
}

// IsFailed returns true if the import failed outright
func (s *ImportSession) IsFailed() bool {
	return s.Status == ImportStatusFailed
}

// HasErrors returns true if any rows were rejected
func (s *ImportSession) HasErrors() bool {
	return s.ErrorCount > 0
}

// ErrorsJSON returns the retained row errors as a JSON string
func (s *ImportSession) ErrorsJSON() (string, error) {
	if len(s.Errors) == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(s.Errors)
	if err != nil {
		return "", fmt.Errorf("failed to marshal row errors: %w", err)
	}
	return string(data), nil
}

// SetErrorsFromJSON parses retained row errors from a JSON string
func (s *ImportSession) SetErrorsFromJSON(jsonStr string) error {
	if jsonStr == "" || jsonStr == "[]" {
		s.Errors = make([]RowError, 0)
		return nil
	}
	var errors []RowError
	if err := json.Unmarshal([]byte(jsonStr), &errors); err != nil {
		return fmt.Errorf("failed to unmarshal row errors: %w", err)
	}
	s.Errors = errors
	return nil
}

// SuccessRate returns the success rate as a percentage (0-100)
func (s *ImportSession) SuccessRate() float64 {
	if s.TotalRows == 0 {
		return 0
	}
	return float64(s.SuccessCount) / float64(s.TotalRows) * 100
}

// Duration returns how long the session has been running, or took to finish
func (s *ImportSession) Duration() time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	endTime := s.CompletedAt
	if endTime == nil {
		now := time.Now()
		endTime = &now
	}
	return endTime.Sub(*s.StartedAt)
}

func (s *ImportSession) touch() {
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}
