package data

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ashmara/imagevault/internal/image/biz"
	"github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/pkg/database"
)

// accessibleCond is the SQL form of biz.OwnershipVisible, evaluated against
// the joined ownerships+images rows. The three clauses must stay in lockstep
// with the predicate: ownership, open publicity (general rating or signed-in
// viewer), unexpired share token for this ownership.
const accessibleCond = `(@viewer <> '' AND ownerships.user_id = @viewer)
	OR (ownerships.publicity = @open AND (images.rating = @general OR @viewer <> ''))
	OR (@token <> '' AND EXISTS (
		SELECT 1 FROM share_tokens st
		WHERE st.id = @token
		  AND st.ownership_id = ownerships.id
		  AND st.expires_at > @now))`

type ownershipRepo struct {
	db     *database.DB
	logger *zap.Logger
}

// NewOwnershipRepo creates a postgres-backed ownership repository.
func NewOwnershipRepo(db *database.DB, logger *zap.Logger) biz.OwnershipRepo {
	return &ownershipRepo{
		db:     db,
		logger: logger.Named("data.ownership"),
	}
}

// Create inserts an ownership claim. An existing (user, image) pair is
// reported as ErrAlreadyExists via ON CONFLICT DO NOTHING so the surrounding
// transaction stays usable and commits.
func (r *ownershipRepo) Create(ctx context.Context, o *types.Ownership) error {
	po := &OwnershipPO{
		ID:        o.ID,
		UserID:    o.UserID,
		ImageID:   o.ImageID,
		Publicity: int16(o.Publicity),
		CreatedAt: o.CreatedAt,
	}
	res := r.db.Handle(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(po)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return biz.ErrAlreadyExists
	}
	return nil
}

func (r *ownershipRepo) GetByUserAndImage(ctx context.Context, userID, imageID string) (*types.Ownership, error) {
	if _, err := uuid.Parse(imageID); err != nil {
		return nil, biz.ErrNotFound
	}

	var po OwnershipPO
	err := r.db.Handle(ctx).
		First(&po, "user_id = ? AND image_id = ?", userID, imageID).Error
	if err != nil {
		if database.IsRecordNotFound(err) {
			return nil, biz.ErrNotFound
		}
		return nil, err
	}
	return toOwnership(&po), nil
}

func (r *ownershipRepo) ListByImage(ctx context.Context, imageID string) ([]*types.Ownership, error) {
	if _, err := uuid.Parse(imageID); err != nil {
		return nil, nil
	}

	var pos []OwnershipPO
	err := r.db.Handle(ctx).
		Where("image_id = ?", imageID).
		Find(&pos).Error
	if err != nil {
		return nil, err
	}

	ownerships := make([]*types.Ownership, len(pos))
	for i := range pos {
		ownerships[i] = toOwnership(&pos[i])
	}
	return ownerships, nil
}

func (r *ownershipRepo) CountByImage(ctx context.Context, imageID string) (int64, error) {
	var count int64
	err := r.db.Handle(ctx).
		Model(&OwnershipPO{}).
		Where("image_id = ?", imageID).
		Count(&count).Error
	return count, err
}

func (r *ownershipRepo) Delete(ctx context.Context, id string) error {
	return r.db.Handle(ctx).Delete(&OwnershipPO{}, "id = ?", id).Error
}

func (r *ownershipRepo) ListAccessible(ctx context.Context, q biz.AccessibleQuery, page, pageSize int) ([]*types.Image, int64, error) {
	return r.pageImages(r.accessibleImages(ctx, q), page, pageSize)
}

func (r *ownershipRepo) SearchAccessible(ctx context.Context, q biz.AccessibleQuery, filter biz.SearchFilter, page, pageSize int) ([]*types.Image, int64, error) {
	query := r.accessibleImages(ctx, q)

	if len(filter.Tags) > 0 {
		query = query.
			Joins("JOIN image_tags it ON it.image_id = images.id").
			Joins("JOIN tags t ON t.id = it.tag_id").
			Where("t.name IN ?", filter.Tags)
	}
	if len(filter.Characters) > 0 {
		query = query.
			Joins("JOIN image_characters ic ON ic.image_id = images.id").
			Joins("JOIN characters c ON c.id = ic.character_id").
			Where("c.name IN ?", filter.Characters)
	}
	if len(filter.Ratings) > 0 {
		ratings := make([]int16, len(filter.Ratings))
		for i, rt := range filter.Ratings {
			ratings[i] = int16(rt)
		}
		query = query.Where("images.rating IN ?", ratings)
	}

	return r.pageImages(query, page, pageSize)
}

// accessibleImages builds the joined images query restricted to rows the
// viewer may see. A token that is not a valid uuid is treated as absent
// rather than handed to postgres as a malformed uuid literal.
func (r *ownershipRepo) accessibleImages(ctx context.Context, q biz.AccessibleQuery) *gorm.DB {
	token := q.TokenID
	if token != "" {
		if _, err := uuid.Parse(token); err != nil {
			token = ""
		}
	}

	return r.db.Handle(ctx).
		Model(&ImagePO{}).
		Joins("JOIN ownerships ON ownerships.image_id = images.id").
		Where(accessibleCond, map[string]interface{}{
			"viewer":  q.ViewerID,
			"open":    int16(types.PublicityOpen),
			"general": int16(types.RatingGeneral),
			"token":   token,
			"now":     time.Now().UTC(),
		})
}

func (r *ownershipRepo) pageImages(query *gorm.DB, page, pageSize int) ([]*types.Image, int64, error) {
	base := query.Session(&gorm.Session{})

	var total int64
	if err := base.Distinct("images.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var pos []*ImagePO
	err := base.
		Distinct("images.*").
		Order("images.created_at DESC, images.id DESC").
		Limit(pageSize).
		Offset((page - 1) * pageSize).
		Preload("Tags").
		Preload("Characters").
		Find(&pos).Error
	if err != nil {
		return nil, 0, err
	}

	images := make([]*types.Image, len(pos))
	for i, po := range pos {
		images[i] = toImage(po)
	}
	return images, total, nil
}
