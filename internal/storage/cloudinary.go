package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryProvider sube archivos a Cloudinary.
type CloudinaryProvider struct {
	cld *cloudinary.Cloudinary
}

func NewCloudinaryProvider(cloudinaryURL string) (*CloudinaryProvider, error) {
	if cloudinaryURL == "" {
		return nil, fmt.Errorf("cloudinary url is required")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, err
	}
	return &CloudinaryProvider{cld: cld}, nil
}

func (p *CloudinaryProvider) Upload(ctx context.Context, file io.Reader, filename string) (string, error) {
	publicID := filenameWithoutExt(filename)

	// Overwrite es *bool en el SDK.
	overwrite := true
	resp, err := p.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:  publicID,
		Overwrite: &overwrite,
	})
	if err != nil {
		return "", err
	}
	if resp.SecureURL != "" {
		return resp.SecureURL, nil
	}
	if resp.URL != "" {
		return resp.URL, nil
	}
	return "", fmt.Errorf("cloudinary upload returned empty url")
}

func filenameWithoutExt(fn string) string {
	ext := filepath.Ext(fn)
	if ext == "" {
		return fn
	}
	return fn[:len(fn)-len(ext)]
}
