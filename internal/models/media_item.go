package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
	MediaTypeBook  MediaType = "book"
	MediaTypeGame  MediaType = "game"
)

type MediaStatus string

const (
	MediaStatusBacklog    MediaStatus = "backlog"
	MediaStatusInProgress MediaStatus = "in_progress"
	MediaStatusFinished   MediaStatus = "finished"
	MediaStatusDropped    MediaStatus = "dropped"
)

const DefaultLanguage = "English"

// MediaItem is one entry on a user's wall. CoverReference holds a durable
// storage path or an external URL, never a signed URL; display URLs are
// minted per read and attached in ToResponse.
type MediaItem struct {
	ID              string                     `gorm:"primaryKey" json:"id"`
	UserID          string                     `gorm:"not null;index" json:"user_id"`
	Title           string                     `gorm:"not null" json:"title"`
	Type            MediaType                  `gorm:"not null;index" json:"type"`
	Status          MediaStatus                `gorm:"default:backlog;index" json:"status"`
	CoverReference  *string                    `json:"-"`
	DateFinished    *datatypes.Date            `json:"-"`
	Review          *string                    `json:"review,omitempty"`
	Tags            datatypes.JSONSlice[string] `json:"tags"`
	RatingScore     *int                       `json:"-"`
	RatingSentiment *string                    `json:"-"`
	Seasons         *int                       `json:"seasons,omitempty"`
	Language        string                     `gorm:"default:English" json:"language"`
	CreatedAt       time.Time                  `json:"created_at"`
	UpdatedAt       time.Time                  `json:"updated_at"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (m *MediaItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if m.Status == "" {
		m.Status = MediaStatusBacklog
	}
	if m.Language == "" {
		m.Language = DefaultLanguage
	}
	return nil
}

// Rating reconstructs the tagged variant from the two rating columns.
// A row carrying both columns (should not happen) prefers the score.
func (m *MediaItem) Rating() Rating {
	if m.RatingScore != nil {
		return Rating{Kind: RatingScore, Score: *m.RatingScore}
	}
	if m.RatingSentiment != nil {
		switch *m.RatingSentiment {
		case string(RatingLike):
			return Rating{Kind: RatingLike}
		case string(RatingDislike):
			return Rating{Kind: RatingDislike}
		}
	}
	return Rating{Kind: RatingUnset}
}

func (m *MediaItem) SetRating(r Rating) {
	m.RatingScore = nil
	m.RatingSentiment = nil
	switch r.Kind {
	case RatingScore:
		score := r.Score
		m.RatingScore = &score
	case RatingLike, RatingDislike:
		sentiment := string(r.Kind)
		m.RatingSentiment = &sentiment
	}
}

func ValidMediaType(t MediaType) bool {
	switch t {
	case MediaTypeMovie, MediaTypeTV, MediaTypeBook, MediaTypeGame:
		return true
	}
	return false
}

func ValidMediaStatus(s MediaStatus) bool {
	switch s {
	case MediaStatusBacklog, MediaStatusInProgress, MediaStatusFinished, MediaStatusDropped:
		return true
	}
	return false
}

// NormalizeTags deduplicates tags preserving first-seen order. Storage
// treats tags as a set; display order is whatever the user entered.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		result = append(result, tag)
	}
	return result
}

type MediaItemResponse struct {
	ID             string      `json:"id"`
	UserID         string      `json:"user_id"`
	Title          string      `json:"title"`
	Type           MediaType   `json:"type"`
	Status         MediaStatus `json:"status"`
	CoverReference string      `json:"cover_reference,omitempty"`
	CoverURL       string      `json:"cover_url,omitempty"`
	DateFinished   string      `json:"date_finished,omitempty"`
	Review         string      `json:"review,omitempty"`
	Tags           []string    `json:"tags"`
	Rating         *Rating     `json:"rating"`
	Seasons        *int        `json:"seasons,omitempty"`
	Language       string      `json:"language"`
	CreatedAt      time.Time   `json:"created_at"`
}

// ToResponse builds the wire form of an item. coverURL is the resolved
// display URL (empty when unresolvable, rendering a placeholder client-side).
func (m *MediaItem) ToResponse(coverURL string) MediaItemResponse {
	resp := MediaItemResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Type:      m.Type,
		Status:    m.Status,
		CoverURL:  coverURL,
		Tags:      m.Tags,
		Seasons:   m.Seasons,
		Language:  m.Language,
		CreatedAt: m.CreatedAt,
	}
	if resp.Tags == nil {
		resp.Tags = []string{}
	}
	if m.CoverReference != nil {
		resp.CoverReference = *m.CoverReference
	}
	if m.DateFinished != nil {
		resp.DateFinished = time.Time(*m.DateFinished).Format("2006-01-02")
	}
	if m.Review != nil {
		resp.Review = *m.Review
	}
	if rating := m.Rating(); !rating.IsUnset() {
		resp.Rating = &rating
	}
	return resp
}
