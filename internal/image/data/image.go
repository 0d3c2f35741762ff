package data

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/ashmara/imagevault/internal/image/biz"
	"github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/pkg/database"
)

type imageRepo struct {
	db     *database.DB
	logger *zap.Logger
}

// NewImageRepo creates a postgres-backed content record repository.
func NewImageRepo(db *database.DB, logger *zap.Logger) biz.ImageRepo {
	return &imageRepo{
		db:     db,
		logger: logger.Named("data.image"),
	}
}

// Create inserts the content record and its vocabulary links. The vocabulary
// rows must already exist (NameRepo.Ensure); only join rows are written here.
// A concurrent insert of the same hash surfaces as ErrAlreadyExists. The
// insert uses ON CONFLICT DO NOTHING instead of letting the constraint fire:
// a raised unique violation would abort the surrounding transaction and the
// caller could no longer re-read the winning row on it.
func (r *imageRepo) Create(ctx context.Context, img *types.Image) error {
	po := &ImagePO{
		ID:           img.ID,
		Hash:         int64(img.Hash),
		Rating:       int16(img.Rating),
		HasThumbnail: img.HasThumbnail,
		CreatedAt:    img.CreatedAt,
	}

	handle := r.db.Handle(ctx)

	res := handle.Clauses(clause.OnConflict{DoNothing: true}).Create(po)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return biz.ErrAlreadyExists
	}

	if len(img.Tags) > 0 {
		var tags []TagPO
		if err := handle.Where("name IN ?", img.Tags).Find(&tags).Error; err != nil {
			return err
		}
		if err := handle.Model(po).Association("Tags").Append(&tags); err != nil {
			return err
		}
	}
	if len(img.Characters) > 0 {
		var characters []CharacterPO
		if err := handle.Where("name IN ?", img.Characters).Find(&characters).Error; err != nil {
			return err
		}
		if err := handle.Model(po).Association("Characters").Append(&characters); err != nil {
			return err
		}
	}
	return nil
}

func (r *imageRepo) GetByID(ctx context.Context, id string) (*types.Image, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, biz.ErrNotFound
	}

	var po ImagePO
	err := r.db.Handle(ctx).
		Preload("Tags").
		Preload("Characters").
		First(&po, "id = ?", id).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, biz.ErrNotFound
		}
		return nil, err
	}
	return toImage(&po), nil
}

func (r *imageRepo) GetByHash(ctx context.Context, hash uint64) (*types.Image, error) {
	var po ImagePO
	err := r.db.Handle(ctx).
		Preload("Tags").
		Preload("Characters").
		First(&po, "hash = ?", int64(hash)).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, biz.ErrNotFound
		}
		return nil, err
	}
	return toImage(&po), nil
}

// Delete removes the content record together with its vocabulary join rows.
// The vocabulary entries themselves stay.
func (r *imageRepo) Delete(ctx context.Context, id string) error {
	return r.db.Handle(ctx).
		Select(clause.Associations).
		Delete(&ImagePO{ID: id}).Error
}
