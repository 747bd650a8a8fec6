package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mediawall/internal/models"
)

const (
	openLibrarySearchURL = "https://openlibrary.org/search.json"
	openLibraryCoversURL = "https://covers.openlibrary.org"
	itunesSearchURL      = "https://itunes.apple.com/search"

	searchResultLimit = 5
)

type SearchResult struct {
	ID       string           `json:"id"`
	Title    string           `json:"title"`
	Year     string           `json:"year,omitempty"`
	CoverURL string           `json:"cover_url,omitempty"`
	Type     models.MediaType `json:"type"`
}

// SearchService queries the keyless metadata APIs used for autofill:
// OpenLibrary for books, the iTunes search API for movies and TV shows.
// Both are best-effort with no SLA; every failure yields an empty result
// list, never an error.
type SearchService struct {
	client    *http.Client
	booksURL  string
	coversURL string
	itunesURL string
}

func NewSearchService() *SearchService {
	return &SearchService{
		client:    &http.Client{Timeout: 10 * time.Second},
		booksURL:  openLibrarySearchURL,
		coversURL: openLibraryCoversURL,
		itunesURL: itunesSearchURL,
	}
}

func (s *SearchService) Search(ctx context.Context, query string, mediaType models.MediaType) []SearchResult {
	if query == "" {
		return []SearchResult{}
	}

	var results []SearchResult
	var err error
	switch mediaType {
	case models.MediaTypeBook:
		results, err = s.searchBooks(ctx, query)
	case models.MediaTypeMovie, models.MediaTypeTV:
		results, err = s.searchItunes(ctx, query, mediaType)
	default:
		return []SearchResult{}
	}
	if err != nil {
		log.Printf("Search failed for %q (%s): %v", query, mediaType, err)
		return []SearchResult{}
	}
	return results
}

type openLibraryDoc struct {
	Key              string `json:"key"`
	Title            string `json:"title"`
	FirstPublishYear int    `json:"first_publish_year"`
	CoverID          int64  `json:"cover_i"`
}

func (s *SearchService) searchBooks(ctx context.Context, query string) ([]SearchResult, error) {
	endpoint := fmt.Sprintf("%s?q=%s&limit=%d", s.booksURL, url.QueryEscape(query), searchResultLimit)

	var payload struct {
		Docs []openLibraryDoc `json:"docs"`
	}
	if err := s.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(payload.Docs))
	for _, doc := range payload.Docs {
		result := SearchResult{
			ID:    doc.Key,
			Title: doc.Title,
			Type:  models.MediaTypeBook,
		}
		if doc.FirstPublishYear > 0 {
			result.Year = fmt.Sprintf("%d", doc.FirstPublishYear)
		}
		if doc.CoverID > 0 {
			result.CoverURL = fmt.Sprintf("%s/b/id/%d-M.jpg", s.coversURL, doc.CoverID)
		}
		results = append(results, result)
	}
	return results, nil
}

type itunesResult struct {
	TrackID        int64  `json:"trackId"`
	CollectionID   int64  `json:"collectionId"`
	TrackName      string `json:"trackName"`
	CollectionName string `json:"collectionName"`
	ReleaseDate    string `json:"releaseDate"`
	ArtworkURL100  string `json:"artworkUrl100"`
}

func (s *SearchService) searchItunes(ctx context.Context, query string, mediaType models.MediaType) ([]SearchResult, error) {
	media, entity := "movie", "movie"
	if mediaType == models.MediaTypeTV {
		media, entity = "tvShow", "tvSeason"
	}
	endpoint := fmt.Sprintf("%s?term=%s&media=%s&entity=%s&limit=%d",
		s.itunesURL, url.QueryEscape(query), media, entity, searchResultLimit)

	var payload struct {
		Results []itunesResult `json:"results"`
	}
	if err := s.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(payload.Results))
	for _, item := range payload.Results {
		result := SearchResult{
			Title: item.TrackName,
			Type:  mediaType,
		}
		if result.Title == "" {
			result.Title = item.CollectionName
		}
		if item.TrackID != 0 {
			result.ID = fmt.Sprintf("%d", item.TrackID)
		} else if item.CollectionID != 0 {
			result.ID = fmt.Sprintf("%d", item.CollectionID)
		}
		if len(item.ReleaseDate) >= 4 {
			result.Year = item.ReleaseDate[:4]
		}
		if item.ArtworkURL100 != "" {
			// The 100x100 thumbnail URL doubles as a template for
			// higher resolutions.
			result.CoverURL = strings.Replace(item.ArtworkURL100, "100x100", "600x600", 1)
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *SearchService) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	// Limit response size to 1MB
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return err
	}
	return json.Unmarshal(body, out)
}
