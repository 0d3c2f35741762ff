// Package types defines the image library's domain model: content records,
// per-user ownership claims and time-limited share tokens.
package types

import (
	"fmt"
	"time"
)

// Rating is the content-sensitivity classification of an image, ordered from
// harmless to explicit.
type Rating int16

const (
	RatingGeneral Rating = iota
	RatingSensitive
	RatingQuestionable
	RatingExplicit
)

var ratingNames = map[Rating]string{
	RatingGeneral:      "general",
	RatingSensitive:    "sensitive",
	RatingQuestionable: "questionable",
	RatingExplicit:     "explicit",
}

func (r Rating) String() string {
	if name, ok := ratingNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rating(%d)", int16(r))
}

// ParseRating converts a classifier rating name into a Rating.
func ParseRating(s string) (Rating, error) {
	for r, name := range ratingNames {
		if name == s {
			return r, nil
		}
	}
	return RatingGeneral, fmt.Errorf("unknown rating %q", s)
}

// Publicity controls who may see an ownership's image beyond its owner.
type Publicity int16

const (
	// PublicityOpen makes the image visible according to the rating rules.
	PublicityOpen Publicity = iota
	// PublicityRestricted limits visibility to the owner and share-token holders.
	PublicityRestricted
)

func (p Publicity) String() string {
	if p == PublicityRestricted {
		return "restricted"
	}
	return "open"
}

// ParsePublicity converts a publicity name into a Publicity.
func ParsePublicity(s string) (Publicity, error) {
	switch s {
	case "open":
		return PublicityOpen, nil
	case "restricted":
		return PublicityRestricted, nil
	}
	return PublicityOpen, fmt.Errorf("unknown publicity %q", s)
}

// Image is an immutable content record. At most one Image exists per
// perceptual hash value; users attach to it through Ownership rows.
type Image struct {
	ID           string
	Hash         uint64
	Rating       Rating
	Tags         []string
	Characters   []string
	HasThumbnail bool
	CreatedAt    time.Time
}

// Ownership is one user's claim on an Image, with its own publicity setting.
// At most one Ownership exists per (user, image) pair.
type Ownership struct {
	ID        string
	UserID    string
	ImageID   string
	Publicity Publicity
	CreatedAt time.Time
}

// ShareToken is a bearer capability granting access to one Ownership's image
// until it expires. Expiry is not retroactively extendable.
type ShareToken struct {
	ID          string
	UserID      string
	OwnershipID string
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// Expired reports whether the token is no longer valid at the given instant.
func (t *ShareToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// NameCount pairs a tag or character name with the number of images using it.
type NameCount struct {
	Name  string
	Count int64
}
