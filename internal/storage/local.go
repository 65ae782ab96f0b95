package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalProvider guarda archivos en disco y los sirve bajo baseURL.
type LocalProvider struct {
	dir     string
	baseURL string
}

func NewLocalProvider(dir, baseURL string) (*LocalProvider, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, fmt.Errorf("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalProvider{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (p *LocalProvider) Upload(_ context.Context, file io.Reader, filename string) (string, error) {
	name := uuid.NewString() + strings.ToLower(filepath.Ext(filename))
	path := filepath.Join(p.dir, name)

	out, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	return p.baseURL + "/" + name, nil
}
