package storage

import (
	"context"
	"time"
)

// ReportRepository stores exported report files
type ReportRepository interface {
	// Upload stores data under objectPath and returns the object path
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	// GeneratePresignedURL returns a temporary download URL
	GeneratePresignedURL(ctx context.Context, objectPath string, expiry time.Duration) (string, error)
	// Delete removes an object
	Delete(ctx context.Context, objectPath string) error
}
