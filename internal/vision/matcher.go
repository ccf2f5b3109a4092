// Package vision identifies a medicine on a photo by zero-shot
// matching the image against the catalog's name list. An absent
// classifier is a valid operating mode: identification then always
// reports no match instead of failing the request.
package vision

import (
	"context"

	"github.com/housseynatou/jules-gateway/internal/catalog"
)

// Identification is the outcome of one photo lookup. Both fields are
// nil when no classifier is configured or no confident match exists.
type Identification struct {
	Product *string  `json:"produit"`
	Price   *float64 `json:"prix"`
}

// Matcher scores an image against candidate labels and returns the
// index of the best-scoring label.
type Matcher interface {
	BestMatch(ctx context.Context, image []byte, labels []string) (int, float64, error)
	Name() string
}

// Identifier resolves a photo to a catalog item through a Matcher.
type Identifier struct {
	matcher  Matcher // nil when identification is disabled
	items    []catalog.Item
	minScore float64
}

// NewIdentifier builds an Identifier over the given catalog. matcher
// may be nil (feature disabled). minScore below which a match is
// discarded; zero accepts any best match.
func NewIdentifier(matcher Matcher, items []catalog.Item, minScore float64) *Identifier {
	return &Identifier{matcher: matcher, items: items, minScore: minScore}
}

// Identify returns the best catalog match for the image. The returned
// error is informational: the Identification is always usable and
// reports no match on any failure.
func (s *Identifier) Identify(ctx context.Context, image []byte) (Identification, error) {
	if s.matcher == nil || len(s.items) == 0 {
		return Identification{}, nil
	}

	idx, score, err := s.matcher.BestMatch(ctx, image, catalog.Names(s.items))
	if err != nil {
		return Identification{}, err
	}
	if idx < 0 || idx >= len(s.items) || score < s.minScore {
		return Identification{}, nil
	}

	item := s.items[idx]
	name := item.Name
	return Identification{Product: &name, Price: item.Price}, nil
}
