package storage

import (
	"context"
	"io"
)

// Provider sube archivos (avatars) y devuelve una URL publica.
type Provider interface {
	Upload(ctx context.Context, file io.Reader, filename string) (string, error)
}
