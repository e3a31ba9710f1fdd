package catalog

import (
	"strings"
	"time"

	"github.com/dropship/backoffice/internal/domain/shared"
	"github.com/google/uuid"
)

// MaxAttachmentFileSize caps uploads at 100MB. Anything larger is
// rejected before a presigned upload URL is ever issued.
const MaxAttachmentFileSize = 100 * 1024 * 1024

// AttachmentType classifies a file hung off a product listing: the
// cover photo buyers see first, extra gallery photos, and supplier
// paperwork such as spec sheets or customs documents.
type AttachmentType string

const (
	AttachmentTypeMainImage    AttachmentType = "main_image"
	AttachmentTypeGalleryImage AttachmentType = "gallery_image"
	AttachmentTypeDocument     AttachmentType = "document"
	AttachmentTypeOther        AttachmentType = "other"
)

// IsValid reports whether t is one of the known attachment types.
func (t AttachmentType) IsValid() bool {
	switch t {
	case AttachmentTypeMainImage, AttachmentTypeGalleryImage,
		AttachmentTypeDocument, AttachmentTypeOther:
		return true
	default:
		return false
	}
}

// IsImage reports whether t is a photo type (cover or gallery).
func (t AttachmentType) IsImage() bool {
	return t == AttachmentTypeMainImage || t == AttachmentTypeGalleryImage
}

// AttachmentStatus tracks an attachment through the two-phase upload:
// pending while the client holds a presigned URL, active once the
// upload is confirmed, deleted after removal.
type AttachmentStatus string

const (
	AttachmentStatusPending AttachmentStatus = "pending"
	AttachmentStatusActive  AttachmentStatus = "active"
	AttachmentStatusDeleted AttachmentStatus = "deleted"
)

// IsValid reports whether s is one of the known statuses.
func (s AttachmentStatus) IsValid() bool {
	switch s {
	case AttachmentStatusPending, AttachmentStatusActive, AttachmentStatusDeleted:
		return true
	default:
		return false
	}
}

// ProductAttachment is a file tied to a listing. The row is created in
// pending state when a seller requests an upload slot and only becomes
// active once the upload is confirmed, so an abandoned upload never
// leaves a live attachment pointing at a missing object.
type ProductAttachment struct {
	shared.TenantAggregateRoot
	ProductID    uuid.UUID
	Type         AttachmentType
	Status       AttachmentStatus
	FileName     string // name the seller uploaded it under
	FileSize     int64  // bytes
	ContentType  string // MIME type reported at upload time
	StorageKey   string // object key in the media bucket
	ThumbnailKey string // derived thumbnail object key, photos only
	SortOrder    int    // gallery position, 0-based
	UploadedBy   *uuid.UUID
}

// NewProductAttachment registers a pending upload slot for a listing
// file. The attachment stays pending until Confirm is called.
func NewProductAttachment(
	tenantID uuid.UUID,
	productID uuid.UUID,
	attachmentType AttachmentType,
	fileName string,
	fileSize int64,
	contentType string,
	storageKey string,
	uploadedBy *uuid.UUID,
) (*ProductAttachment, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT_ID", "Tenant ID is required")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT_ID", "Product ID is required")
	}
	if err := validateAttachmentType(attachmentType); err != nil {
		return nil, err
	}
	if err := validateFileName(fileName); err != nil {
		return nil, err
	}
	if err := validateFileSize(fileSize); err != nil {
		return nil, err
	}
	if err := validateContentType(contentType); err != nil {
		return nil, err
	}
	if err := validateStorageKey(storageKey); err != nil {
		return nil, err
	}

	attachment := &ProductAttachment{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ProductID:           productID,
		Type:                attachmentType,
		Status:              AttachmentStatusPending,
		FileName:            fileName,
		FileSize:            fileSize,
		ContentType:         contentType,
		StorageKey:          storageKey,
		SortOrder:           0,
		UploadedBy:          uploadedBy,
	}

	attachment.AddDomainEvent(NewProductAttachmentCreatedEvent(attachment))

	return attachment, nil
}

// Confirm activates the attachment after the client reports that the
// upload to the media bucket finished.
func (a *ProductAttachment) Confirm() error {
	if a.Status == AttachmentStatusActive {
		return shared.NewDomainError("ALREADY_CONFIRMED", "Upload is already confirmed")
	}
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError("CANNOT_CONFIRM_DELETED", "A removed attachment cannot be confirmed")
	}

	a.Status = AttachmentStatusActive
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewProductAttachmentConfirmedEvent(a))

	return nil
}

// Delete soft-removes the attachment. The object itself is cleaned up
// asynchronously from the deletion event.
func (a *ProductAttachment) Delete() error {
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError("ALREADY_DELETED", "Attachment is already removed")
	}

	oldStatus := a.Status
	a.Status = AttachmentStatusDeleted
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewProductAttachmentDeletedEvent(a, oldStatus))

	return nil
}

// SetAsMainImage promotes a gallery photo to the listing's cover image.
func (a *ProductAttachment) SetAsMainImage() error {
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "A removed attachment cannot be changed")
	}
	if !a.Type.IsImage() {
		return shared.NewDomainError("NOT_AN_IMAGE", "Only photos can serve as the cover image")
	}
	if a.Type == AttachmentTypeMainImage {
		return shared.NewDomainError("ALREADY_MAIN_IMAGE", "Attachment is already the cover image")
	}

	oldType := a.Type
	a.Type = AttachmentTypeMainImage
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewProductAttachmentTypeChangedEvent(a, oldType))

	return nil
}

// SetAsGalleryImage demotes the cover image back to the gallery,
// typically when another photo takes its place.
func (a *ProductAttachment) SetAsGalleryImage() error {
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "A removed attachment cannot be changed")
	}
	if !a.Type.IsImage() {
		return shared.NewDomainError("NOT_AN_IMAGE", "Only photos can go in the gallery")
	}
	if a.Type == AttachmentTypeGalleryImage {
		return shared.NewDomainError("ALREADY_GALLERY_IMAGE", "Attachment is already in the gallery")
	}

	oldType := a.Type
	a.Type = AttachmentTypeGalleryImage
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	a.AddDomainEvent(NewProductAttachmentTypeChangedEvent(a, oldType))

	return nil
}

// SetSortOrder moves the attachment within the listing gallery.
func (a *ProductAttachment) SetSortOrder(order int) error {
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "A removed attachment cannot be changed")
	}
	if order < 0 {
		return shared.NewDomainError("INVALID_SORT_ORDER", "Sort order must not be negative")
	}

	a.SortOrder = order
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// SetThumbnailKey records the object key of the derived thumbnail.
func (a *ProductAttachment) SetThumbnailKey(key string) error {
	if a.Status == AttachmentStatusDeleted {
		return shared.NewDomainError("CANNOT_UPDATE_DELETED", "A removed attachment cannot be changed")
	}
	if !a.Type.IsImage() {
		return shared.NewDomainError("NOT_AN_IMAGE", "Thumbnails only apply to photos")
	}

	a.ThumbnailKey = key
	a.UpdatedAt = time.Now()
	a.IncrementVersion()

	return nil
}

// IsPending reports whether the upload has not been confirmed yet.
func (a *ProductAttachment) IsPending() bool {
	return a.Status == AttachmentStatusPending
}

// IsActive reports whether the attachment is live on the listing.
func (a *ProductAttachment) IsActive() bool {
	return a.Status == AttachmentStatusActive
}

// IsDeleted reports whether the attachment was removed.
func (a *ProductAttachment) IsDeleted() bool {
	return a.Status == AttachmentStatusDeleted
}

// IsMainImage reports whether this is the listing's cover image.
func (a *ProductAttachment) IsMainImage() bool {
	return a.Type == AttachmentTypeMainImage
}

// IsImage reports whether the attachment is a photo of any kind.
func (a *ProductAttachment) IsImage() bool {
	return a.Type.IsImage()
}

func validateAttachmentType(t AttachmentType) error {
	if !t.IsValid() {
		return shared.NewDomainError("INVALID_ATTACHMENT_TYPE", "Unknown attachment type")
	}
	return nil
}

func validateFileName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name is required")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name is longer than 255 characters")
	}
	for _, r := range name {
		if r < 32 || r == 127 {
			return shared.NewDomainError("INVALID_FILE_NAME", "File name contains control characters")
		}
	}
	// The name is a display label, never a path.
	if strings.ContainsAny(name, `/\`) {
		return shared.NewDomainError("INVALID_FILE_NAME", "File name must not contain path separators")
	}
	return nil
}

func validateFileSize(size int64) error {
	if size <= 0 {
		return shared.NewDomainError("INVALID_FILE_SIZE", "File size must be positive")
	}
	if size > MaxAttachmentFileSize {
		return shared.NewDomainError("FILE_TOO_LARGE", "File exceeds the 100MB upload limit")
	}
	return nil
}

func validateContentType(contentType string) error {
	if contentType == "" {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type is required")
	}
	if len(contentType) > 100 {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type is longer than 100 characters")
	}
	// A MIME type has the shape type/subtype; anything else is garbage
	// from the client.
	if !strings.Contains(contentType, "/") ||
		strings.HasPrefix(contentType, "/") || strings.HasSuffix(contentType, "/") {
		return shared.NewDomainError("INVALID_CONTENT_TYPE", "Content type is not a valid MIME type")
	}
	return nil
}

func validateStorageKey(key string) error {
	if key == "" {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Object key is required")
	}
	if len(key) > 500 {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Object key is longer than 500 characters")
	}
	// Keys address objects inside the media bucket only. No traversal,
	// no absolute paths.
	if strings.Contains(key, "..") {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Object key must not contain '..'")
	}
	if strings.HasPrefix(key, "/") {
		return shared.NewDomainError("INVALID_STORAGE_KEY", "Object key must not start with '/'")
	}
	return nil
}
