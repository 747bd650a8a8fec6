package models

import "fmt"

type RatingKind string

const (
	RatingUnset   RatingKind = "unset"
	RatingScore   RatingKind = "score"
	RatingLike    RatingKind = "like"
	RatingDislike RatingKind = "dislike"
)

// Rating is a tagged variant covering both historical rating schemes:
// a numeric 1-5 score and a like/dislike sentiment. The two schemes are
// persisted in separate nullable columns (rating_score, rating_sentiment)
// so neither is coerced into the other. Records imported from the numeric
// scheme populate rating_score only; records from the sentiment scheme
// populate rating_sentiment only.
type Rating struct {
	Kind  RatingKind `json:"kind"`
	Score int        `json:"score,omitempty"`
}

func (r Rating) Validate() error {
	switch r.Kind {
	case RatingUnset, RatingLike, RatingDislike:
		return nil
	case RatingScore:
		if r.Score < 1 || r.Score > 5 {
			return fmt.Errorf("rating score must be between 1 and 5, got %d", r.Score)
		}
		return nil
	default:
		return fmt.Errorf("unknown rating kind %q", r.Kind)
	}
}

func (r Rating) IsUnset() bool {
	return r.Kind == "" || r.Kind == RatingUnset
}
