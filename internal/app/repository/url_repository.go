package repository

import (
	"context"
	"errors"

	"github.com/snapurl/snapurl/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrURLNotFound signals that no matching URL record exists.
	ErrURLNotFound = errors.New("url mapping not found")
)

// URLRepository defines the data access contract for URL mappings.
// Save assigns the identifier on first persistence of a record without
// one; re-saving an identified record updates its fields in place.
type URLRepository interface {
	FindByLongURL(ctx context.Context, longURL string) (*model.URLMapping, error)
	FindActiveByShortCode(ctx context.Context, code string) (*model.URLMapping, error)
	Save(ctx context.Context, mapping *model.URLMapping) error
	ActiveShortCodes(ctx context.Context) ([]string, error)
}

type urlRepository struct {
	db *gorm.DB
}

// NewURLRepository returns a GORM-backed URLRepository.
func NewURLRepository(db *gorm.DB) URLRepository {
	return &urlRepository{db: db}
}

func (r *urlRepository) FindByLongURL(ctx context.Context, longURL string) (*model.URLMapping, error) {
	var mapping model.URLMapping
	if err := r.db.WithContext(ctx).Where("long_url = ?", longURL).First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrURLNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *urlRepository) FindActiveByShortCode(ctx context.Context, code string) (*model.URLMapping, error) {
	var mapping model.URLMapping
	if err := r.db.WithContext(ctx).
		Where("short_code = ? AND active = ?", code, true).
		First(&mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrURLNotFound
		}
		return nil, err
	}
	return &mapping, nil
}

func (r *urlRepository) Save(ctx context.Context, mapping *model.URLMapping) error {
	if mapping.ID == 0 {
		return r.db.WithContext(ctx).Create(mapping).Error
	}
	return r.db.WithContext(ctx).Save(mapping).Error
}

func (r *urlRepository) ActiveShortCodes(ctx context.Context) ([]string, error) {
	var codes []string
	if err := r.db.WithContext(ctx).
		Model(&model.URLMapping{}).
		Where("active = ? AND short_code IS NOT NULL", true).
		Pluck("short_code", &codes).Error; err != nil {
		return nil, err
	}
	return codes, nil
}
