package media

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MediaServiceConfig holds presign expirations for the media endpoints
type MediaServiceConfig struct {
	// UploadURLExpiry is the duration for which upload URLs are valid
	UploadURLExpiry time.Duration
	// DownloadURLExpiry is the duration for which download URLs are valid
	DownloadURLExpiry time.Duration
}

// DefaultMediaServiceConfig returns the default configuration
func DefaultMediaServiceConfig() MediaServiceConfig {
	return MediaServiceConfig{
		UploadURLExpiry:   15 * time.Minute,
		DownloadURLExpiry: 1 * time.Hour,
	}
}

// MediaService hands out presigned URLs for product images and other
// tenant media. Objects live under a per-tenant key prefix; a tenant can
// only presign keys inside its own prefix.
type MediaService struct {
	storage ObjectStorageService
	config  MediaServiceConfig
	logger  *zap.Logger
}

// NewMediaService creates a new MediaService
func NewMediaService(storage ObjectStorageService, config MediaServiceConfig, logger *zap.Logger) *MediaService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.UploadURLExpiry <= 0 {
		config.UploadURLExpiry = DefaultMediaServiceConfig().UploadURLExpiry
	}
	if config.DownloadURLExpiry <= 0 {
		config.DownloadURLExpiry = DefaultMediaServiceConfig().DownloadURLExpiry
	}
	return &MediaService{
		storage: storage,
		config:  config,
		logger:  logger,
	}
}

// PresignUpload returns a presigned PUT URL for a new media object
func (s *MediaService) PresignUpload(ctx context.Context, tenantID uuid.UUID, req PresignUploadRequest) (*PresignUploadResponse, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	if !AllowedContentTypes[contentType] {
		return nil, shared.NewDomainError("UNSUPPORTED_MEDIA_TYPE", fmt.Sprintf("Content type '%s' is not allowed", contentType))
	}

	ext := strings.ToLower(filepath.Ext(req.FileName))
	if len(ext) > 10 {
		ext = ""
	}

	storageKey := MediaKey(tenantID, ext)

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, storageKey, contentType, s.config.UploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate upload url: %w", err)
	}

	s.logger.Debug("media upload presigned",
		zap.String("tenant_id", tenantID.String()),
		zap.String("storage_key", storageKey),
		zap.String("content_type", contentType),
	)

	return &PresignUploadResponse{
		StorageKey: storageKey,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// PresignDownload returns a presigned GET URL for an existing object.
// Keys outside the tenant's prefix surface as not-found.
func (s *MediaService) PresignDownload(ctx context.Context, tenantID uuid.UUID, storageKey string) (*PresignDownloadResponse, error) {
	if !KeyOwnedByTenant(storageKey, tenantID) {
		return nil, shared.ErrNotFound
	}

	exists, err := s.storage.ObjectExists(ctx, storageKey)
	if err != nil {
		return nil, fmt.Errorf("check object: %w", err)
	}
	if !exists {
		return nil, shared.ErrNotFound
	}

	downloadURL, expiresAt, err := s.storage.GenerateDownloadURL(ctx, storageKey, s.config.DownloadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate download url: %w", err)
	}

	return &PresignDownloadResponse{
		StorageKey:  storageKey,
		DownloadURL: downloadURL,
		ExpiresAt:   expiresAt,
	}, nil
}

// Delete removes an object inside the tenant's prefix
func (s *MediaService) Delete(ctx context.Context, tenantID uuid.UUID, storageKey string) error {
	if !KeyOwnedByTenant(storageKey, tenantID) {
		return shared.ErrNotFound
	}

	if err := s.storage.DeleteObject(ctx, storageKey); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	s.logger.Info("media object deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("storage_key", storageKey),
	)

	return nil
}

// MediaKey builds the storage key for a freshly uploaded media object
func MediaKey(tenantID uuid.UUID, ext string) string {
	return fmt.Sprintf("media/%s/%s/%s%s", tenantID, time.Now().UTC().Format("2006/01"), uuid.New(), ext)
}

// ImportKey builds the storage key for a raw bulk-import upload
func ImportKey(tenantID uuid.UUID, filename string) string {
	return fmt.Sprintf("imports/%s/%s/%s", tenantID, uuid.New(), SanitizeFilename(filename))
}

// KeyOwnedByTenant reports whether a storage key sits inside one of the
// tenant's prefixes
func KeyOwnedByTenant(storageKey string, tenantID uuid.UUID) bool {
	id := tenantID.String()
	return strings.HasPrefix(storageKey, "media/"+id+"/") ||
		strings.HasPrefix(storageKey, "imports/"+id+"/") ||
		strings.HasPrefix(storageKey, "products/"+id+"/")
}

// SanitizeFilename strips path separators and control characters so user
// filenames are safe to embed in storage keys
func SanitizeFilename(filename string) string {
	base := filepath.Base(filename)
	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	name := b.String()
	if name == "" || name == "." || name == ".." {
		name = "upload"
	}
	if len(name) > 120 {
		name = name[len(name)-120:]
	}
	return name
}
