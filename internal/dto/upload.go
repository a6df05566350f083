package dto

import "time"

// UploadResponse returns the opaque reference for a stored document.
type UploadResponse struct {
	Ref string `json:"ref"`
}

// SignedDownloadResponse carries a short-lived token for fetching a stored
// document through the download endpoint.
type SignedDownloadResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
