package service

import (
	"time"

	"github.com/ashmara/imagevault/internal/image/biz"
	"github.com/ashmara/imagevault/internal/image/types"
)

type ImageResponse struct {
	ID           string   `json:"id"`
	Rating       string   `json:"rating"`
	Tags         []string `json:"tags"`
	Characters   []string `json:"characters"`
	HasThumbnail bool     `json:"has_thumbnail"`
	CreatedAt    string   `json:"created_at"`
}

type PaginationResponse struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

type ListImagesResponse struct {
	Items      []*ImageResponse    `json:"items"`
	Pagination *PaginationResponse `json:"pagination"`
}

type UploadImageResponse struct {
	ID string `json:"id"`
}

type CreateShareTokenRequest struct {
	ExpiresAt *time.Time `json:"expires_at"`
}

type ShareTokenResponse struct {
	Token     string `json:"token"`
	ImageID   string `json:"image_id"`
	ExpiresAt string `json:"expires_at"`
}

type NameCountResponse struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

func toImageResponse(img *types.Image) *ImageResponse {
	return &ImageResponse{
		ID:           img.ID,
		Rating:       img.Rating.String(),
		Tags:         img.Tags,
		Characters:   img.Characters,
		HasThumbnail: img.HasThumbnail,
		CreatedAt:    img.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toListImagesResponse(page *biz.Page) *ListImagesResponse {
	items := make([]*ImageResponse, len(page.Images))
	for i, img := range page.Images {
		items[i] = toImageResponse(img)
	}
	return &ListImagesResponse{
		Items: items,
		Pagination: &PaginationResponse{
			Page:       page.Page,
			PageSize:   page.PageSize,
			TotalItems: page.TotalItems,
			TotalPages: page.TotalPages,
		},
	}
}
