package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"mediawall/internal/storage"
)

const (
	// A freshly uploaded cover is signed for a year so the session that
	// uploaded it can render it without another round trip.
	sessionSignTTL = 365 * 24 * time.Hour

	// Listing and edit views get short-lived URLs, recomputed per read.
	displaySignTTL = time.Hour
)

// CoverService owns the cover-image lifecycle: validated upload into a
// per-user namespace, signed-URL minting, and removal of replaced objects.
type CoverService struct {
	store storage.ObjectStore
}

func NewCoverService(store storage.ObjectStore) *CoverService {
	return &CoverService{store: store}
}

type CoverUpload struct {
	Path      string `json:"path"`
	SignedURL string `json:"signed_url"`
}

// Upload validates the image, writes it under ownerID/<token><ext> and
// returns the durable path plus a long-horizon signed URL. declaredSize is
// the client-reported byte size; the payload may be truncated below it,
// validation rejects on the declared value. On any failure nothing is
// returned for the caller to persist.
func (s *CoverService) Upload(ctx context.Context, data []byte, declaredSize int64, filename, ownerID string) (*CoverUpload, error) {
	if declaredSize < int64(len(data)) {
		declaredSize = int64(len(data))
	}
	if err := ValidateCoverImage(data, declaredSize); err != nil {
		return nil, err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	path := fmt.Sprintf("%s/%s%s", ownerID, uuid.New().String(), ext)

	if err := s.store.Upload(ctx, path, bytes.NewReader(data)); err != nil {
		return nil, &UploadError{Path: path, Err: err}
	}

	url, err := s.store.SignedURL(ctx, path, sessionSignTTL)
	if err != nil {
		return nil, &SignError{Path: path, Err: err}
	}

	return &CoverUpload{Path: path, SignedURL: url}, nil
}

// Sign mints a short-horizon display URL for one persisted reference.
// External URLs are returned unchanged; legacy public URLs are rewritten
// to their storage path before signing.
func (s *CoverService) Sign(ctx context.Context, ref string) (string, error) {
	cover := ClassifyCover(ref)
	if cover.Kind == CoverKindExternal {
		return cover.Value, nil
	}

	url, err := s.store.SignedURL(ctx, cover.Value, displaySignTTL)
	if err != nil {
		return "", &SignError{Path: cover.Value, Err: err}
	}
	return url, nil
}

// SignBatch signs many storage paths in one backend call. Paths the
// backend cannot sign are absent from the result.
func (s *CoverService) SignBatch(ctx context.Context, paths []string) (map[string]string, error) {
	if len(paths) == 0 {
		return map[string]string{}, nil
	}

	urls, err := s.store.SignedURLBatch(ctx, paths, displaySignTTL)
	if err != nil {
		return nil, &SignError{Err: err}
	}
	return urls, nil
}

// Remove deletes the stored object behind a reference. External URLs are
// not ours to delete; removing an already-gone object is fine.
func (s *CoverService) Remove(ctx context.Context, ref string) error {
	cover := ClassifyCover(ref)
	if cover.Kind == CoverKindExternal {
		return nil
	}
	return s.store.Remove(ctx, cover.Value)
}
