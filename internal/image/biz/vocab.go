package biz

import (
	"context"

	"github.com/ashmara/imagevault/internal/image/types"
)

// VocabUseCase lists the known tag and character vocabularies.
type VocabUseCase struct {
	tags       NameRepo
	characters NameRepo
}

// NewVocabUseCase creates the vocabulary use case.
func NewVocabUseCase(tags, characters NameRepo) *VocabUseCase {
	return &VocabUseCase{tags: tags, characters: characters}
}

// ListTags returns all known tags with usage counts.
func (uc *VocabUseCase) ListTags(ctx context.Context) ([]types.NameCount, error) {
	return uc.tags.ListWithCounts(ctx)
}

// ListCharacters returns all known characters with usage counts.
func (uc *VocabUseCase) ListCharacters(ctx context.Context) ([]types.NameCount, error) {
	return uc.characters.ListWithCounts(ctx)
}
