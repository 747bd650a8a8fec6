package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"mediawall/internal/models"
)

func newStubSearchService(booksHandler, itunesHandler http.HandlerFunc) (*SearchService, func()) {
	books := httptest.NewServer(booksHandler)
	itunes := httptest.NewServer(itunesHandler)

	svc := &SearchService{
		client:    &http.Client{Timeout: 2 * time.Second},
		booksURL:  books.URL,
		coversURL: "https://covers.openlibrary.org",
		itunesURL: itunes.URL,
	}
	return svc, func() {
		books.Close()
		itunes.Close()
	}
}

func TestSearchService_UnsupportedType(t *testing.T) {
	svc, teardown := newStubSearchService(
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("Unsupported type must not hit the book endpoint")
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("Unsupported type must not hit the movie endpoint")
		},
	)
	defer teardown()

	if results := svc.Search(context.Background(), "zelda", models.MediaTypeGame); len(results) != 0 {
		t.Errorf("Expected no results for a type without a provider, got %v", results)
	}
}

func TestSearchService_Books(t *testing.T) {
	svc, teardown := newStubSearchService(
		func(w http.ResponseWriter, r *http.Request) {
			if q := r.URL.Query().Get("q"); q != "dune" {
				t.Errorf("Expected query 'dune', got %q", q)
			}
			w.Write([]byte(`{"docs":[
				{"key":"/works/OL893415W","title":"Dune","first_publish_year":1965,"cover_i":11481354},
				{"key":"/works/OL893416W","title":"Dune Messiah"}
			]}`))
		},
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("Book search must not hit the movie endpoint")
		},
	)
	defer teardown()

	results := svc.Search(context.Background(), "dune", models.MediaTypeBook)

	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}
	if results[0].Title != "Dune" || results[0].Year != "1965" {
		t.Errorf("Unexpected first result: %+v", results[0])
	}
	if results[0].CoverURL != "https://covers.openlibrary.org/b/id/11481354-M.jpg" {
		t.Errorf("Unexpected cover URL: %s", results[0].CoverURL)
	}
	if results[1].CoverURL != "" {
		t.Error("Result without cover_i should have no cover URL")
	}
}

func TestSearchService_Movies(t *testing.T) {
	svc, teardown := newStubSearchService(
		func(w http.ResponseWriter, r *http.Request) {
			t.Error("Movie search must not hit the book endpoint")
		},
		func(w http.ResponseWriter, r *http.Request) {
			if media := r.URL.Query().Get("media"); media != "movie" {
				t.Errorf("Expected media=movie, got %q", media)
			}
			w.Write([]byte(`{"results":[
				{"trackId":1375,"trackName":"Inception","releaseDate":"2010-07-16T07:00:00Z","artworkUrl100":"https://a.example/img/100x100bb.jpg"}
			]}`))
		},
	)
	defer teardown()

	results := svc.Search(context.Background(), "inception", models.MediaTypeMovie)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Inception" || results[0].Year != "2010" {
		t.Errorf("Unexpected result: %+v", results[0])
	}
	if results[0].CoverURL != "https://a.example/img/600x600bb.jpg" {
		t.Errorf("Artwork should be upscaled to 600x600, got %s", results[0].CoverURL)
	}
}

func TestSearchService_TVUsesSeasonEntity(t *testing.T) {
	svc, teardown := newStubSearchService(
		func(w http.ResponseWriter, r *http.Request) {},
		func(w http.ResponseWriter, r *http.Request) {
			if entity := r.URL.Query().Get("entity"); entity != "tvSeason" {
				t.Errorf("Expected entity=tvSeason, got %q", entity)
			}
			w.Write([]byte(`{"results":[
				{"collectionId":9,"collectionName":"Breaking Bad, Season 1","releaseDate":"2008-01-20T08:00:00Z"}
			]}`))
		},
	)
	defer teardown()

	results := svc.Search(context.Background(), "breaking bad", models.MediaTypeTV)

	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if results[0].Title != "Breaking Bad, Season 1" {
		t.Errorf("Collection name should back the title, got %s", results[0].Title)
	}
	if results[0].ID != "9" {
		t.Errorf("Collection id should back the id, got %s", results[0].ID)
	}
}

func TestSearchService_FailuresYieldEmpty(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		svc, teardown := newStubSearchService(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
			func(w http.ResponseWriter, r *http.Request) {},
		)
		defer teardown()

		results := svc.Search(context.Background(), "dune", models.MediaTypeBook)
		if len(results) != 0 {
			t.Errorf("Expected empty results on provider failure, got %v", results)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		svc, teardown := newStubSearchService(
			func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>not json</html>"))
			},
			func(w http.ResponseWriter, r *http.Request) {},
		)
		defer teardown()

		results := svc.Search(context.Background(), "dune", models.MediaTypeBook)
		if len(results) != 0 {
			t.Errorf("Expected empty results on malformed body, got %v", results)
		}
	})

	t.Run("empty query", func(t *testing.T) {
		svc := NewSearchService()
		results := svc.Search(context.Background(), "", models.MediaTypeMovie)
		if len(results) != 0 {
			t.Errorf("Empty query should short-circuit, got %v", results)
		}
	})
}
