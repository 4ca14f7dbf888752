package object

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when no object exists under the key.
var ErrNotFound = errors.New("object not found")

// ErrPresignUnsupported is returned by stores that cannot mint upload URLs.
var ErrPresignUnsupported = errors.New("presigned uploads not supported by this store")

// Store defines the contract for saving and retrieving binary objects by key.
type Store interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) (sizeBytes int64, err error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// PresignedUpload is a short-lived URL the client can PUT an object to.
type PresignedUpload struct {
	URL       string            `json:"uploadUrl"`
	Key       string            `json:"key"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresIn time.Duration     `json:"-"`
}

// Presigner mints direct-upload URLs.
type Presigner interface {
	PresignPut(ctx context.Context, key, contentType string, sizeBytes int64, ttl time.Duration) (PresignedUpload, error)
}

// ReadAll opens key and reads it fully, refusing objects larger than limit bytes.
func ReadAll(ctx context.Context, store Store, key string, limit int64) ([]byte, error) {
	rc, err := store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(io.LimitReader(rc, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errors.New("object exceeds size limit")
	}
	return data, nil
}
