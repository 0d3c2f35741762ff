package data

import (
	"time"

	"github.com/ashmara/imagevault/internal/image/types"
)

// ImagePO is the content record. The perceptual hash is stored as a signed
// 64-bit column (postgres has no unsigned bigint); conversion is lossless.
type ImagePO struct {
	ID           string        `gorm:"type:uuid;primaryKey"`
	Hash         int64         `gorm:"not null;uniqueIndex:idx_images_hash"`
	Rating       int16         `gorm:"not null"`
	HasThumbnail bool          `gorm:"not null;default:true"`
	CreatedAt    time.Time     `gorm:"not null"`
	Tags         []TagPO       `gorm:"many2many:image_tags;joinForeignKey:ImageID;joinReferences:TagID"`
	Characters   []CharacterPO `gorm:"many2many:image_characters;joinForeignKey:ImageID;joinReferences:CharacterID"`
}

func (ImagePO) TableName() string {
	return "images"
}

// TagPO is one entry of the general tag vocabulary. Names are stored
// normalized (trimmed, lowercased) and unique.
type TagPO struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null;uniqueIndex:idx_tags_name"`
}

func (TagPO) TableName() string {
	return "tags"
}

// CharacterPO is one entry of the character vocabulary.
type CharacterPO struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:255;not null;uniqueIndex:idx_characters_name"`
}

func (CharacterPO) TableName() string {
	return "characters"
}

// OwnershipPO links a user to an image at a publicity level. The (user,
// image) pair is unique; concurrent duplicate inserts surface as conflict.
type OwnershipPO struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	UserID    string    `gorm:"size:255;not null;index;uniqueIndex:idx_ownerships_user_image"`
	ImageID   string    `gorm:"type:uuid;not null;index;uniqueIndex:idx_ownerships_user_image"`
	Publicity int16     `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`
}

func (OwnershipPO) TableName() string {
	return "ownerships"
}

// ShareTokenPO is a time-limited bearer capability for one ownership.
type ShareTokenPO struct {
	ID          string    `gorm:"type:uuid;primaryKey"`
	UserID      string    `gorm:"size:255;not null"`
	OwnershipID string    `gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `gorm:"not null"`
	ExpiresAt   time.Time `gorm:"not null"`
}

func (ShareTokenPO) TableName() string {
	return "share_tokens"
}

// Models returns all persistence models of the image domain for migration.
func Models() []interface{} {
	return []interface{}{
		&ImagePO{},
		&TagPO{},
		&CharacterPO{},
		&OwnershipPO{},
		&ShareTokenPO{},
	}
}

func toImage(po *ImagePO) *types.Image {
	tags := make([]string, len(po.Tags))
	for i, t := range po.Tags {
		tags[i] = t.Name
	}
	characters := make([]string, len(po.Characters))
	for i, c := range po.Characters {
		characters[i] = c.Name
	}
	return &types.Image{
		ID:           po.ID,
		Hash:         uint64(po.Hash),
		Rating:       types.Rating(po.Rating),
		Tags:         tags,
		Characters:   characters,
		HasThumbnail: po.HasThumbnail,
		CreatedAt:    po.CreatedAt,
	}
}

func toOwnership(po *OwnershipPO) *types.Ownership {
	return &types.Ownership{
		ID:        po.ID,
		UserID:    po.UserID,
		ImageID:   po.ImageID,
		Publicity: types.Publicity(po.Publicity),
		CreatedAt: po.CreatedAt,
	}
}

func toShareToken(po *ShareTokenPO) *types.ShareToken {
	return &types.ShareToken{
		ID:          po.ID,
		UserID:      po.UserID,
		OwnershipID: po.OwnershipID,
		CreatedAt:   po.CreatedAt,
		ExpiresAt:   po.ExpiresAt,
	}
}
