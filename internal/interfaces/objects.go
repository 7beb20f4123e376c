package interfaces

import (
	"context"
	"io"
)

// ObjectStorage stores media binaries and produced artifacts. Keys are
// generated from the hint so repeated puts never collide.
type ObjectStorage interface {
	// Put stores the stream and returns the assigned storage key.
	Put(ctx context.Context, r io.Reader, keyHint string) (string, error)
	// Open streams a stored object.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	// GetURL returns a public URL for a stored object.
	GetURL(key string) string
	Delete(ctx context.Context, key string) error
}

// Mailer sends transactional mail.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
