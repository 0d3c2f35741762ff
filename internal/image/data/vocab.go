package data

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm/clause"

	"github.com/ashmara/imagevault/internal/image/biz"
	"github.com/ashmara/imagevault/internal/image/types"
	"github.com/ashmara/imagevault/internal/pkg/database"
)

const tagCountsSQL = `SELECT t.name AS name, COUNT(it.image_id) AS count
	FROM tags t
	LEFT JOIN image_tags it ON it.tag_id = t.id
	GROUP BY t.name
	ORDER BY count DESC, t.name ASC`

const characterCountsSQL = `SELECT c.name AS name, COUNT(ic.image_id) AS count
	FROM characters c
	LEFT JOIN image_characters ic ON ic.character_id = c.id
	GROUP BY c.name
	ORDER BY count DESC, c.name ASC`

// nameRepo backs one vocabulary (tags or characters). The two only differ in
// their row type and count query.
type nameRepo struct {
	db        *database.DB
	logger    *zap.Logger
	makeRows  func(names []string) interface{}
	countsSQL string
}

// NewTagRepo creates the tag vocabulary repository.
func NewTagRepo(db *database.DB, logger *zap.Logger) biz.NameRepo {
	return &nameRepo{
		db:     db,
		logger: logger.Named("data.tag"),
		makeRows: func(names []string) interface{} {
			rows := make([]TagPO, len(names))
			for i, n := range names {
				rows[i] = TagPO{Name: n}
			}
			return &rows
		},
		countsSQL: tagCountsSQL,
	}
}

// NewCharacterRepo creates the character vocabulary repository.
func NewCharacterRepo(db *database.DB, logger *zap.Logger) biz.NameRepo {
	return &nameRepo{
		db:     db,
		logger: logger.Named("data.character"),
		makeRows: func(names []string) interface{} {
			rows := make([]CharacterPO, len(names))
			for i, n := range names {
				rows[i] = CharacterPO{Name: n}
			}
			return &rows
		},
		countsSQL: characterCountsSQL,
	}
}

// Ensure inserts any missing vocabulary rows. Concurrent writers introducing
// the same name race on the unique index; the losing insert is a no-op.
func (r *nameRepo) Ensure(ctx context.Context, names []string) error {
	if len(names) == 0 {
		return nil
	}
	return r.db.Handle(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(r.makeRows(names)).Error
}

func (r *nameRepo) ListWithCounts(ctx context.Context) ([]types.NameCount, error) {
	var counts []types.NameCount
	err := r.db.Handle(ctx).Raw(r.countsSQL).Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return counts, nil
}
