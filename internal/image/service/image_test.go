package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/ashmara/imagevault/internal/image/biz"
	"github.com/ashmara/imagevault/internal/image/types"
)

// accessRecorder captures the pagination the handlers hand to the query side.
type accessRecorder struct {
	page, pageSize int
}

func (r *accessRecorder) Create(context.Context, *types.Ownership) error { return nil }

func (r *accessRecorder) GetByUserAndImage(context.Context, string, string) (*types.Ownership, error) {
	return nil, biz.ErrNotFound
}

func (r *accessRecorder) ListByImage(context.Context, string) ([]*types.Ownership, error) {
	return nil, nil
}

func (r *accessRecorder) CountByImage(context.Context, string) (int64, error) { return 0, nil }

func (r *accessRecorder) Delete(context.Context, string) error { return nil }

func (r *accessRecorder) ListAccessible(ctx context.Context, q biz.AccessibleQuery, page, pageSize int) ([]*types.Image, int64, error) {
	r.page, r.pageSize = page, pageSize
	return nil, 0, nil
}

func (r *accessRecorder) SearchAccessible(ctx context.Context, q biz.AccessibleQuery, f biz.SearchFilter, page, pageSize int) ([]*types.Image, int64, error) {
	r.page, r.pageSize = page, pageSize
	return nil, 0, nil
}

func newListFixture() (*ImageService, *accessRecorder) {
	gin.SetMode(gin.TestMode)
	rec := &accessRecorder{}
	queryUC := biz.NewQueryUseCase(nil, rec, nil, nil, zap.NewNop())
	return NewImageService(nil, queryUC, nil, nil, zap.NewNop()), rec
}

func TestListImagesPagination(t *testing.T) {
	tests := []struct {
		name         string
		url          string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "/api/v1/images", 1, biz.DefaultPageSize},
		{"explicit", "/api/v1/images?page=3&page_size=25", 3, 25},
		{"oversized clamped", "/api/v1/images?page_size=9999", 1, biz.MaxPageSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, rec := newListFixture()

			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, tt.url, nil)

			svc.ListImages(c)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.wantPage, rec.page)
			assert.Equal(t, tt.wantPageSize, rec.pageSize)
		})
	}
}

func TestSearchImagesDefaultsPageSize(t *testing.T) {
	svc, rec := newListFixture()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/images/search?tags=sky", nil)

	svc.SearchImages(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, biz.DefaultPageSize, rec.pageSize)
}
