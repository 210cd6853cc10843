package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/lzscott112ncdm-cmyk/domain-sales-backend/internal/domain"
)

type ListingRepo struct{ db *gorm.DB }

func NewListingRepo(db *gorm.DB) *ListingRepo { return &ListingRepo{db: db} }

func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	return translate(r.db.WithContext(ctx).Create(l).Error)
}

// Update looks the row up, applies the supplied columns and reloads it, all in
// one transaction.
func (r *ListingRepo) Update(ctx context.Context, id uint64, ch domain.ListingChanges) (*domain.Listing, error) {
	var out domain.Listing
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "id = ?", id).Error; err != nil {
			return err
		}
		if ch.Empty() {
			return nil
		}
		if err := tx.Model(&domain.Listing{}).Where("id = ?", id).Updates(ch.Columns()).Error; err != nil {
			return err
		}
		return tx.First(&out, "id = ?", id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &out, nil
}

func (r *ListingRepo) ListActive(ctx context.Context) ([]domain.Listing, error) {
	var ls []domain.Listing
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at DESC").Order("id DESC").
		Find(&ls).Error
	return ls, translate(err)
}

func (r *ListingRepo) FindActiveByName(ctx context.Context, name string) (*domain.Listing, error) {
	var l domain.Listing
	if err := r.db.WithContext(ctx).First(&l, "domain_name = ? AND active = ?", name, true).Error; err != nil {
		return nil, translate(err)
	}
	return &l, nil
}

func (r *ListingRepo) FindAll(ctx context.Context) ([]domain.Listing, error) {
	var ls []domain.Listing
	err := r.db.WithContext(ctx).Order("id ASC").Find(&ls).Error
	return ls, translate(err)
}

// translate maps driver errors onto the domain errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.ErrListingNotFound
	case isDupKey(err):
		return errors.Join(domain.ErrDuplicateListing, err)
	}
	return err
}

func isDupKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == 1062 {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation")
}
