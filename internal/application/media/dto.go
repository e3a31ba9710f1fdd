package media

import "time"

// PresignUploadRequest represents a request for a presigned upload URL
type PresignUploadRequest struct {
	FileName    string `json:"file_name" binding:"required,min=1,max=255"`
	ContentType string `json:"content_type" binding:"required,min=1,max=100"`
}

// PresignUploadResponse carries the presigned PUT URL the client uploads to
type PresignUploadResponse struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// PresignDownloadRequest represents a request for a presigned download URL
type PresignDownloadRequest struct {
	StorageKey string `json:"storage_key" binding:"required,min=1,max=500"`
}

// PresignDownloadResponse carries the presigned GET URL
type PresignDownloadResponse struct {
	StorageKey  string    `json:"storage_key"`
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}
