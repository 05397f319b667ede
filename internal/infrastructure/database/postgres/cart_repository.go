package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alma-store/storefront-api/internal/domain/cart"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CartRecord is the persisted line-item collection of one cart owner
type CartRecord struct {
	Namespace string    `gorm:"primaryKey;size:64"`
	Owner     string    `gorm:"primaryKey;size:128"`
	Items     string    `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time `gorm:"index"`
}

// TableName overrides the table name
func (CartRecord) TableName() string {
	return "cart_records"
}

// CartRepository stores carts in Postgres
type CartRepository struct {
	db        *gorm.DB
	namespace string
}

// NewCartRepository creates a Postgres-backed cart repository
func NewCartRepository(db *gorm.DB, namespace string) *CartRepository {
	return &CartRepository{
		db:        db,
		namespace: namespace,
	}
}

var _ cart.Repository = (*CartRepository)(nil)

func (r *CartRepository) Load(ctx context.Context, owner string) ([]cart.LineItem, error) {
	if owner == "" {
		return nil, cart.ErrOwnerRequired
	}

	var record CartRecord
	err := r.db.WithContext(ctx).
		Where("namespace = ? AND owner = ?", r.namespace, owner).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart record: %w", err)
	}

	return cart.UnmarshalItems([]byte(record.Items))
}

func (r *CartRepository) Save(ctx context.Context, owner string, items []cart.LineItem) error {
	if owner == "" {
		return cart.ErrOwnerRequired
	}

	data, err := cart.MarshalItems(items)
	if err != nil {
		return err
	}

	record := CartRecord{
		Namespace: r.namespace,
		Owner:     owner,
		Items:     string(data),
		UpdatedAt: time.Now().UTC(),
	}

	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "owner"}},
			DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to save cart record: %w", err)
	}
	return nil
}

func (r *CartRepository) Delete(ctx context.Context, owner string) error {
	if owner == "" {
		return cart.ErrOwnerRequired
	}

	err := r.db.WithContext(ctx).
		Where("namespace = ? AND owner = ?", r.namespace, owner).
		Delete(&CartRecord{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete cart record: %w", err)
	}
	return nil
}
