package service

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	imagetypes "github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/pkg/response"
	"github.com/ashmara/imagevault/internal/platform/biz"
	"github.com/ashmara/imagevault/internal/platform/types"
)

// CredentialService is the HTTP surface for linking platform accounts.
type CredentialService struct {
	uc     *biz.CredentialUseCase
	logger *zap.Logger
}

func NewCredentialService(uc *biz.CredentialUseCase, logger *zap.Logger) *CredentialService {
	return &CredentialService{uc: uc, logger: logger}
}

// LinkCredential stores a new platform credential for the signed-in user.
func (s *CredentialService) LinkCredential(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req LinkCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	platform, err := types.ParsePlatform(req.Platform)
	if err != nil {
		response.BadRequest(c, "unknown platform: "+req.Platform)
		return
	}

	publicity := imagetypes.PublicityRestricted
	if req.DefaultPublicity != "" {
		publicity, err = imagetypes.ParsePublicity(req.DefaultPublicity)
		if err != nil {
			response.BadRequest(c, "unknown publicity: "+req.DefaultPublicity)
			return
		}
	}

	if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
		response.BadRequest(c, "expires_at must be in the future")
		return
	}

	cred, err := s.uc.Link(
		c.Request.Context(),
		userID,
		platform,
		req.RemoteUserID,
		req.AccessToken,
		req.IncludePrivate,
		publicity,
		req.ExpiresAt,
	)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Created(c, toCredentialResponse(cred))
}

// ListCredentials returns the signed-in user's linked credentials.
func (s *CredentialService) ListCredentials(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	creds, err := s.uc.List(c.Request.Context(), userID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	items := make([]*CredentialResponse, len(creds))
	for i, cred := range creds {
		items[i] = toCredentialResponse(cred)
	}
	response.Success(c, gin.H{"items": items})
}

// UnlinkCredential removes one of the signed-in user's credentials.
func (s *CredentialService) UnlinkCredential(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := s.uc.Unlink(c.Request.Context(), userID, c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "credential unlinked"})
}

func (s *CredentialService) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, biz.ErrNotFound):
		response.NotFound(c, "credential not found")
	case errors.Is(err, biz.ErrForbidden):
		response.Forbidden(c, "not your credential")
	default:
		s.logger.Error("internal error", zap.Error(err))
		response.InternalError(c, "internal server error")
	}
}
