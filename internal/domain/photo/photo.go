// Package photo turns uploaded employee photos into square JPEG thumbnails.
package photo

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"

	"kpiteam/internal/platform/blob"
)

const (
	DefaultSize = 200
	jpegQuality = 85
	contentType = "image/jpeg"
)

var (
	ErrInvalidDataURI = errors.New("photo is not a valid base64 data URI")
	ErrNotAnImage     = errors.New("photo could not be decoded as an image")
)

type Service struct {
	store blob.Store
	size  int
}

func New(store blob.Store, size int) *Service {
	if size <= 0 {
		size = DefaultSize
	}
	return &Service{store: store, size: size}
}

// Normalize returns the URL to persist for an employee photo. Data URIs are
// center-cropped, resized, re-encoded as JPEG and stored; anything else is
// returned unchanged.
func (s *Service) Normalize(ctx context.Context, employeeID, photoURL string) (string, error) {
	photoURL = strings.TrimSpace(photoURL)
	if !strings.HasPrefix(photoURL, "data:") {
		return photoURL, nil
	}
	raw, err := decodeDataURI(photoURL)
	if err != nil {
		return "", err
	}
	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotAnImage, err)
	}
	thumb := imaging.Fill(img, s.size, s.size, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return "", fmt.Errorf("encode photo: %w", err)
	}
	stored, err := s.store.Put(ctx, objectKey(employeeID), buf.Bytes(), contentType)
	if err != nil {
		return "", fmt.Errorf("store photo: %w", err)
	}
	return stored, nil
}

func objectKey(employeeID string) string {
	if employeeID == "" {
		employeeID = "unassigned"
	}
	return "employees/" + url.PathEscape(employeeID) + ".jpg"
}

// decodeDataURI accepts data:<mime>;base64,<payload>.
func decodeDataURI(uri string) ([]byte, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, ErrInvalidDataURI
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(payload)
		if err != nil {
			return nil, ErrInvalidDataURI
		}
	}
	return raw, nil
}
