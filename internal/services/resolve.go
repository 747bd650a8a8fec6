package services

import (
	"context"
	"log"
	"strings"
)

type CoverKind string

const (
	// CoverKindPath is the canonical durable form: a storage path with no
	// URL scheme, namespaced by the owning user id.
	CoverKindPath CoverKind = "path"

	// CoverKindLegacy is an absolute URL from the former public-bucket
	// configuration; its storage path is the substring after the marker.
	CoverKindLegacy CoverKind = "legacy"

	// CoverKindExternal is a third-party URL used as-is, never signed.
	CoverKindExternal CoverKind = "external"
)

// LegacyPublicMarker is the public-bucket URL segment older records carry.
const LegacyPublicMarker = "/storage/v1/object/public/covers/"

// CoverRef is the classified form of a persisted cover reference. For
// path and legacy kinds Value is the storage path; for external it is the
// full URL.
type CoverRef struct {
	Kind  CoverKind
	Value string
}

// ClassifyCover maps a raw cover_reference to its tagged form. The match
// is total: every non-empty string lands in exactly one kind.
func ClassifyCover(raw string) CoverRef {
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if idx := strings.Index(raw, LegacyPublicMarker); idx >= 0 {
			return CoverRef{Kind: CoverKindLegacy, Value: raw[idx+len(LegacyPublicMarker):]}
		}
		return CoverRef{Kind: CoverKindExternal, Value: raw}
	}
	return CoverRef{Kind: CoverKindPath, Value: raw}
}

// ResolveCovers turns raw cover references into display URLs using a
// single batch signing call for the whole set. The result maps each input
// reference to its URL; references that could not be signed are absent,
// and callers render a placeholder for them. External URLs pass through
// untouched and never count against the signing call.
func (s *CoverService) ResolveCovers(ctx context.Context, refs []string) map[string]string {
	resolved := make(map[string]string, len(refs))
	pathForRef := make(map[string]string)
	seen := make(map[string]bool)
	var toSign []string

	for _, ref := range refs {
		if ref == "" {
			continue
		}
		cover := ClassifyCover(ref)
		if cover.Kind == CoverKindExternal {
			resolved[ref] = cover.Value
			continue
		}
		pathForRef[ref] = cover.Value
		if !seen[cover.Value] {
			seen[cover.Value] = true
			toSign = append(toSign, cover.Value)
		}
	}

	if len(toSign) == 0 {
		return resolved
	}

	urls, err := s.SignBatch(ctx, toSign)
	if err != nil {
		// Degrade to placeholders rather than failing the listing.
		log.Printf("Cover batch signing failed: %v", err)
		return resolved
	}

	for ref, path := range pathForRef {
		if url, ok := urls[path]; ok {
			resolved[ref] = url
		}
	}
	return resolved
}
