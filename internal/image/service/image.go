package service

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/image/biz"
	"github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/pkg/response"
)

// maxUploadBytes bounds multipart uploads read into memory.
const maxUploadBytes = 32 << 20

// ImageService is the HTTP surface of the image domain.
type ImageService struct {
	importUC *biz.ImportUseCase
	queryUC  *biz.QueryUseCase
	deleteUC *biz.DeleteUseCase
	shareUC  *biz.ShareTokenUseCase
	logger   *zap.Logger
}

func NewImageService(
	importUC *biz.ImportUseCase,
	queryUC *biz.QueryUseCase,
	deleteUC *biz.DeleteUseCase,
	shareUC *biz.ShareTokenUseCase,
	logger *zap.Logger,
) *ImageService {
	return &ImageService{
		importUC: importUC,
		queryUC:  queryUC,
		deleteUC: deleteUC,
		shareUC:  shareUC,
		logger:   logger,
	}
}

// ListImages returns one page of the viewer's accessible set.
func (s *ImageService) ListImages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(biz.DefaultPageSize)))

	result, err := s.queryUC.ListImages(c.Request.Context(), s.accessibleQuery(c), page, pageSize)
	if err != nil {
		s.logger.Error("failed to list images", zap.Error(err))
		response.InternalError(c, "failed to list images")
		return
	}

	response.Success(c, toListImagesResponse(result))
}

// SearchImages narrows the accessible set by tags, characters and ratings.
// Filters are comma-separated query parameters; unknown rating names are
// rejected.
func (s *ImageService) SearchImages(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(biz.DefaultPageSize)))

	filter := biz.SearchFilter{
		Tags:       splitList(c.Query("tags")),
		Characters: splitList(c.Query("characters")),
	}
	for _, name := range splitList(c.Query("ratings")) {
		rating, err := types.ParseRating(name)
		if err != nil {
			response.BadRequest(c, "unknown rating: "+name)
			return
		}
		filter.Ratings = append(filter.Ratings, rating)
	}

	result, err := s.queryUC.SearchImages(c.Request.Context(), s.accessibleQuery(c), filter, page, pageSize)
	if err != nil {
		s.logger.Error("failed to search images", zap.Error(err))
		response.InternalError(c, "failed to search images")
		return
	}

	response.Success(c, toListImagesResponse(result))
}

// GetImage returns image metadata if the viewer may access it.
func (s *ImageService) GetImage(c *gin.Context) {
	q := s.accessibleQuery(c)

	img, err := s.queryUC.GetImage(c.Request.Context(), q.ViewerID, c.Param("id"), q.TokenID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, toImageResponse(img))
}

// GetImageFile streams the original bytes if the viewer may access the image.
func (s *ImageService) GetImageFile(c *gin.Context) {
	q := s.accessibleQuery(c)

	data, err := s.queryUC.LoadOriginal(c.Request.Context(), q.ViewerID, c.Param("id"), q.TokenID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/png", data)
}

// GetImageThumbnail streams the thumbnail if the viewer may access the image.
func (s *ImageService) GetImageThumbnail(c *gin.Context) {
	q := s.accessibleQuery(c)

	data, err := s.queryUC.LoadThumbnail(c.Request.Context(), q.ViewerID, c.Param("id"), q.TokenID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}

// UploadImage ingests a multipart upload for the signed-in user. The optional
// publicity form field defaults to open.
func (s *ImageService) UploadImage(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	publicity := types.PublicityOpen
	if v := c.PostForm("publicity"); v != "" {
		parsed, err := types.ParsePublicity(v)
		if err != nil {
			response.BadRequest(c, "unknown publicity: "+v)
			return
		}
		publicity = parsed
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "missing file")
		return
	}
	if fileHeader.Size > maxUploadBytes {
		response.BadRequest(c, "file too large")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "unreadable file")
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		response.BadRequest(c, "unreadable file")
		return
	}

	id, err := s.importUC.Import(c.Request.Context(), raw, publicity, userID)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Created(c, &UploadImageResponse{ID: id})
}

// DeleteImage removes the signed-in user's claim on the image.
func (s *ImageService) DeleteImage(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	if err := s.deleteUC.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		s.handleError(c, err)
		return
	}

	response.Success(c, gin.H{"message": "image deleted"})
}

// CreateShareToken issues a bearer token for the signed-in user's ownership
// of the image.
func (s *ImageService) CreateShareToken(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req CreateShareTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err.Error())
		return
	}

	var expiresAt time.Time
	if req.ExpiresAt != nil {
		expiresAt = *req.ExpiresAt
		if !expiresAt.After(time.Now()) {
			response.BadRequest(c, "expires_at must be in the future")
			return
		}
	}

	token, err := s.shareUC.Create(c.Request.Context(), userID, c.Param("id"), expiresAt)
	if err != nil {
		s.handleError(c, err)
		return
	}

	response.Created(c, &ShareTokenResponse{
		Token:     token.ID,
		ImageID:   c.Param("id"),
		ExpiresAt: token.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// accessibleQuery derives the viewer identity set by the auth middleware and
// the optional share token query parameter.
func (s *ImageService) accessibleQuery(c *gin.Context) biz.AccessibleQuery {
	return biz.AccessibleQuery{
		ViewerID: c.GetString("user_id"),
		TokenID:  c.Query("token"),
	}
}

func (s *ImageService) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, biz.ErrEmptyImage):
		response.BadRequest(c, "empty image")
	case errors.Is(err, biz.ErrInvalidImage):
		response.BadRequest(c, "undecodable image")
	case errors.Is(err, biz.ErrEmptyOwner):
		response.Unauthorized(c, "unauthorized")
	case errors.Is(err, biz.ErrTaggingFailed):
		response.UnprocessableEntity(c, "tagging failed")
	case errors.Is(err, biz.ErrStorageFailed):
		s.logger.Error("blob storage failure", zap.Error(err))
		response.InternalError(c, "storage failed")
	case errors.Is(err, biz.ErrImportFailed):
		s.logger.Error("import failure", zap.Error(err))
		response.InternalError(c, "import failed")
	case errors.Is(err, biz.ErrNotFound):
		response.NotFound(c, "image not found")
	case errors.Is(err, biz.ErrForbidden):
		response.Forbidden(c, "not your image")
	default:
		s.logger.Error("internal error", zap.Error(err))
		response.InternalError(c, "internal server error")
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
