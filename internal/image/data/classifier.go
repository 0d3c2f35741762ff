package data

import (
	"context"

	"github.com/ashmara/imagevault/internal/image/biz"
	"github.com/ashmara/imagevault/internal/tagger"
)

type taggerClassifier struct {
	client *tagger.Client
}

// NewClassifier adapts the tagger client to the ingestion pipeline's
// classifier boundary.
func NewClassifier(client *tagger.Client) biz.Classifier {
	return &taggerClassifier{client: client}
}

func (t *taggerClassifier) Classify(ctx context.Context, image []byte) (*biz.Classification, error) {
	result, err := t.client.Classify(ctx, image)
	if err != nil {
		return nil, err
	}
	return &biz.Classification{
		Rating:        result.Rating,
		GeneralTags:   result.GeneralTags,
		CharacterTags: result.CharacterTags,
	}, nil
}
