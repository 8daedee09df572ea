package subsonic

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// AnnotationService covers scrobbling, starring and rating.
type AnnotationService struct {
	client *Client
}

// Scrobble registers a play. With submission false the server only
// records the song as now playing.
func (s *AnnotationService) Scrobble(ctx context.Context, id string, submission bool) error {
	params := url.Values{}
	params.Set("id", id)
	params.Set("submission", strconv.FormatBool(submission))
	return s.client.callInto(ctx, "scrobble", params, nil)
}

// Star marks a song as starred.
func (s *AnnotationService) Star(ctx context.Context, id string) error {
	params := url.Values{}
	params.Set("id", id)
	return s.client.callInto(ctx, "star", params, nil)
}

// Unstar removes the star from a song.
func (s *AnnotationService) Unstar(ctx context.Context, id string) error {
	params := url.Values{}
	params.Set("id", id)
	return s.client.callInto(ctx, "unstar", params, nil)
}

// SetRating sets a 1-5 rating, or 0 to clear it.
func (s *AnnotationService) SetRating(ctx context.Context, id string, rating int) error {
	if rating < 0 || rating > 5 {
		return fmt.Errorf("subsonic: rating %d out of range 0-5", rating)
	}
	params := url.Values{}
	params.Set("id", id)
	params.Set("rating", strconv.Itoa(rating))
	return s.client.callInto(ctx, "setRating", params, nil)
}
