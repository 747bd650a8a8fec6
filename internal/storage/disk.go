package storage

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DiskStore keeps objects on the local filesystem under a root directory
// and mints HMAC-signed expiring URLs served by the application's own
// /covers route. The signature covers the object path and the expiry
// timestamp, so a URL for one object cannot be replayed for another.
type DiskStore struct {
	root    string
	baseURL string
	secret  []byte
}

func NewDiskStore(root, baseURL string, secret []byte) (*DiskStore, error) {
	if len(secret) == 0 {
		return nil, errors.New("disk store: signing secret is required")
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("disk store: create root: %w", err)
	}
	return &DiskStore{
		root:    root,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		secret:  secret,
	}, nil
}

// cleanPath rejects anything that could escape the root directory.
func (s *DiskStore) cleanPath(p string) (string, error) {
	if p == "" {
		return "", errors.New("empty object path")
	}
	cleaned := path.Clean(p)
	if strings.HasPrefix(cleaned, "/") || strings.HasPrefix(cleaned, "..") || strings.Contains(cleaned, "\\") {
		return "", fmt.Errorf("invalid object path %q", p)
	}
	return cleaned, nil
}

func (s *DiskStore) Upload(ctx context.Context, objectPath string, reader io.Reader) error {
	cleaned, err := s.cleanPath(objectPath)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.root, filepath.FromSlash(cleaned))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create object: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, reader); err != nil {
		os.Remove(fullPath)
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

func (s *DiskStore) Remove(ctx context.Context, objectPath string) error {
	cleaned, err := s.cleanPath(objectPath)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(cleaned)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

func (s *DiskStore) SignedURL(ctx context.Context, objectPath string, ttl time.Duration) (string, error) {
	cleaned, err := s.cleanPath(objectPath)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(filepath.Join(s.root, filepath.FromSlash(cleaned))); err != nil {
		return "", fmt.Errorf("stat object %q: %w", cleaned, err)
	}

	exp := time.Now().Add(ttl).Unix()
	sig := s.signature(cleaned, exp)
	return fmt.Sprintf("%s/covers/%s?exp=%d&sig=%s", s.baseURL, cleaned, exp, sig), nil
}

func (s *DiskStore) SignedURLBatch(ctx context.Context, paths []string, ttl time.Duration) (map[string]string, error) {
	urls := make(map[string]string, len(paths))
	for _, p := range paths {
		url, err := s.SignedURL(ctx, p, ttl)
		if err != nil {
			// Partial success: unsignable paths are omitted.
			continue
		}
		urls[p] = url
	}
	return urls, nil
}

// Verify checks a signed URL's signature and expiry. Used by the route
// that serves object bytes.
func (s *DiskStore) Verify(objectPath, expStr, sig string) bool {
	cleaned, err := s.cleanPath(objectPath)
	if err != nil {
		return false
	}

	exp, err := strconv.ParseInt(expStr, 10, 64)
	if err != nil || time.Now().Unix() > exp {
		return false
	}

	expected := s.signature(cleaned, exp)
	return hmac.Equal([]byte(expected), []byte(sig))
}

// FilePath maps an object path to its location on disk for serving.
func (s *DiskStore) FilePath(objectPath string) (string, error) {
	cleaned, err := s.cleanPath(objectPath)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

func (s *DiskStore) signature(objectPath string, exp int64) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(objectPath))
	mac.Write([]byte("\n"))
	mac.Write([]byte(strconv.FormatInt(exp, 10)))
	return hex.EncodeToString(mac.Sum(nil))
}
