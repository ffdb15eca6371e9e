package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrInvalidFileFormat = errors.New("invalid file format. only .jpg, .jpeg, .png, .gif, .webp are allowed")
	ErrFileSizeExceeded  = errors.New("file size exceeds limit")
)

// UploadsURLPrefix is the public path uploaded images are served under
const UploadsURLPrefix = "/uploads/"

var allowedImageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// ImageStore writes listing images to a local directory served as static files
type ImageStore struct {
	dir      string
	maxBytes int64
}

// NewImageStore creates an ImageStore rooted at dir
func NewImageStore(dir string, maxBytes int64) *ImageStore {
	return &ImageStore{dir: dir, maxBytes: maxBytes}
}

// Save validates and stores an uploaded image, returning its public URL.
// Names combine a millisecond timestamp with a random suffix so uploads
// landing in the same millisecond do not collide.
func (s *ImageStore) Save(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > s.maxBytes {
		return "", ErrFileSizeExceeded
	}
	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExts[ext] {
		return "", ErrInvalidFileFormat
	}

	if err := os.MkdirAll(s.dir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create upload directory: %w", err)
	}

	fileName := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	filePath := filepath.Join(s.dir, fileName)

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	dst, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("failed to create file on server: %w", err)
	}

	// fileHeader.Size is client supplied
	n, err := io.Copy(dst, io.LimitReader(src, s.maxBytes+1))
	if closeErr := dst.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to save file: %w", err)
	}
	if n > s.maxBytes {
		os.Remove(filePath)
		return "", ErrFileSizeExceeded
	}

	return UploadsURLPrefix + fileName, nil
}

// Remove deletes the file behind a public URL; failures are only logged
func (s *ImageStore) Remove(publicURL string) {
	if !strings.HasPrefix(publicURL, UploadsURLPrefix) {
		return
	}
	name := filepath.Base(strings.TrimPrefix(publicURL, UploadsURLPrefix))
	if name == "." || name == string(filepath.Separator) {
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("image", publicURL).Msg("failed to remove image file")
	}
}
