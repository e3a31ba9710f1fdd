package media

import (
	"context"
	"time"
)

// AllowedContentTypes defines the whitelist of allowed content types for uploads
// This prevents uploading potentially dangerous file types (executables, scripts, etc.)
// SECURITY: SVG files are explicitly NOT allowed due to XSS risk (can contain <script> tags
// and inline event handlers like onload, onerror, etc.)
var AllowedContentTypes = map[string]bool{
	// Images (SVG excluded - XSS risk)
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	"image/bmp":  true,
	"image/tiff": true,
	// Documents
	"application/pdf": true,
	// Spreadsheets (bulk import uploads)
	"text/csv": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	// Text
	"text/plain": true,
}

// ObjectStorageService defines the interface for object storage operations
// This interface is implemented by the infrastructure layer (S3-compatible
// backends and the in-memory stub)
type ObjectStorageService interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	// Returns the upload URL and expiration time
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	// Returns the download URL and expiration time
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// Upload writes data directly to storage, bypassing the presign flow.
	// Used for server-side writes such as raw import files.
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// Download reads an object back from storage
	Download(ctx context.Context, storageKey string) ([]byte, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
