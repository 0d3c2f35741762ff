package biz

import (
	"strings"
	"time"

	"github.com/ashmara/imagevault/internal/image/types"
)

// OwnershipVisible decides whether a viewer may see an image through one
// ownership row. It is the single source of truth for the visibility policy;
// the store-side accessible-set predicate mirrors these clauses exactly.
//
// A viewer passes if any clause matches:
//  1. the viewer owns the row;
//  2. the row is Open and the rating is General, or the rating is above
//     General and the viewer is authenticated;
//  3. the supplied share token references the row and has not expired.
//
// Restricted rows are reachable only through clauses 1 and 3: an
// authenticated non-owner without a valid token never sees them.
func OwnershipVisible(viewerID string, o *types.Ownership, rating types.Rating, token *types.ShareToken, now time.Time) bool {
	if viewerID != "" && o.UserID == viewerID {
		return true
	}

	if o.Publicity == types.PublicityOpen {
		if rating == types.RatingGeneral {
			return true
		}
		if viewerID != "" {
			return true
		}
	}

	if token != nil && token.OwnershipID == o.ID && !token.Expired(now) {
		return true
	}

	return false
}

// NormalizeNames trims, lowercases and deduplicates tag or character names,
// dropping entries that are empty after trimming. Order of first appearance
// is preserved.
func NormalizeNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
