package service

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/image/biz"
	"github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/pkg/response"
)

// VocabService serves the tag and character vocabularies.
type VocabService struct {
	uc     *biz.VocabUseCase
	logger *zap.Logger
}

func NewVocabService(uc *biz.VocabUseCase, logger *zap.Logger) *VocabService {
	return &VocabService{uc: uc, logger: logger}
}

// ListTags returns all known tags with usage counts.
func (s *VocabService) ListTags(c *gin.Context) {
	counts, err := s.uc.ListTags(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list tags", zap.Error(err))
		response.InternalError(c, "failed to list tags")
		return
	}
	response.Success(c, toNameCounts(counts))
}

// ListCharacters returns all known characters with usage counts.
func (s *VocabService) ListCharacters(c *gin.Context) {
	counts, err := s.uc.ListCharacters(c.Request.Context())
	if err != nil {
		s.logger.Error("failed to list characters", zap.Error(err))
		response.InternalError(c, "failed to list characters")
		return
	}
	response.Success(c, toNameCounts(counts))
}

func toNameCounts(counts []types.NameCount) []*NameCountResponse {
	out := make([]*NameCountResponse, len(counts))
	for i, nc := range counts {
		out[i] = &NameCountResponse{Name: nc.Name, Count: nc.Count}
	}
	return out
}
