// Package loader resolves source references into images for the generation
// backend. Local paths and s3://bucket/key references are supported.
package loader

import (
	"context"
	"fmt"
	"os"

	"github.com/gabriel-vasile/mimetype"

	"docvision/internal/domain"
	"docvision/internal/port"
	"docvision/internal/storage/s3"
)

// SupportedTypes lists the content types the backends accept.
var SupportedTypes = []string{
	"image/png",
	"image/jpeg",
	"image/gif",
	"image/webp",
	"image/tiff",
	"application/pdf",
}

// Loader implements port.ImageLoader.
type Loader struct {
	storage  port.ObjectStorage
	maxBytes int64
}

// New creates a Loader. storage may be nil, in which case s3:// references
// fail with domain.ErrStorageNotConfigured. maxBytes <= 0 disables the size cap.
func New(storage port.ObjectStorage, maxBytes int64) *Loader {
	return &Loader{storage: storage, maxBytes: maxBytes}
}

func (l *Loader) Load(ctx context.Context, sourceRef string) (port.ImageRef, error) {
	if bucket, key, ok := s3.ParseURI(sourceRef); ok {
		if l.storage == nil {
			return port.ImageRef{}, fmt.Errorf("loading %s: %w", sourceRef, domain.ErrStorageNotConfigured)
		}
		data, err := l.storage.Download(ctx, bucket, key)
		if err != nil {
			return port.ImageRef{}, fmt.Errorf("loading %s: %w", sourceRef, err)
		}
		return l.FromBytes(sourceRef, data)
	}

	info, err := os.Stat(sourceRef)
	if err != nil {
		return port.ImageRef{}, fmt.Errorf("loading %s: %w", sourceRef, err)
	}
	if info.IsDir() {
		return port.ImageRef{}, fmt.Errorf("loading %s: is a directory", sourceRef)
	}
	if l.maxBytes > 0 && info.Size() > l.maxBytes {
		return port.ImageRef{}, fmt.Errorf("loading %s: %w (%d > %d bytes)", sourceRef, domain.ErrFileTooLarge, info.Size(), l.maxBytes)
	}

	data, err := os.ReadFile(sourceRef)
	if err != nil {
		return port.ImageRef{}, fmt.Errorf("loading %s: %w", sourceRef, err)
	}
	return l.FromBytes(sourceRef, data)
}

// FromBytes wraps already-read content, sniffing its type.
func (l *Loader) FromBytes(source string, data []byte) (port.ImageRef, error) {
	if len(data) == 0 {
		return port.ImageRef{}, fmt.Errorf("loading %s: empty file", source)
	}
	if l.maxBytes > 0 && int64(len(data)) > l.maxBytes {
		return port.ImageRef{}, fmt.Errorf("loading %s: %w", source, domain.ErrFileTooLarge)
	}

	contentType, err := DetectContentType(data)
	if err != nil {
		return port.ImageRef{}, fmt.Errorf("loading %s: %w", source, err)
	}
	return port.ImageRef{Data: data, ContentType: contentType, Source: source}, nil
}

// DetectContentType sniffs data and returns its canonical supported type.
func DetectContentType(data []byte) (string, error) {
	mt := mimetype.Detect(data)
	for _, t := range SupportedTypes {
		if mt.Is(t) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnsupportedContentType, mt.String())
}
