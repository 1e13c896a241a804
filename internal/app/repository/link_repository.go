package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jianyuhu/TinyLink/internal/app/model"
	"gorm.io/gorm"
)

var (
	// ErrLinkNotFound signals that no link exists for the short code.
	ErrLinkNotFound = errors.New("link not found")

	// ErrShortCodeTaken signals that the insert lost against the unique
	// constraint on short_code. The generator treats it as a collision
	// and retries with a fresh counter value.
	ErrShortCodeTaken = errors.New("short code already taken")
)

// LinkRepository is the durable-store contract for links. The store's
// unique constraint on short_code is the single source of truth for code
// uniqueness; the repository only translates its violation into a typed
// error.
type LinkRepository interface {
	Insert(ctx context.Context, link *model.Link) error
	GetByShortCode(ctx context.Context, code string) (*model.Link, error)
}

type linkRepository struct {
	db *gorm.DB
}

// NewLinkRepository returns a GORM-backed LinkRepository.
func NewLinkRepository(db *gorm.DB) LinkRepository {
	return &linkRepository{db: db}
}

func (r *linkRepository) Insert(ctx context.Context, link *model.Link) error {
	if err := r.db.WithContext(ctx).Create(link).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrShortCodeTaken
		}
		return err
	}
	return nil
}

func (r *linkRepository) GetByShortCode(ctx context.Context, code string) (*model.Link, error) {
	var link model.Link
	if err := r.db.WithContext(ctx).Where("short_code = ?", code).First(&link).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLinkNotFound
		}
		return nil, err
	}
	return &link, nil
}

// isUniqueViolation matches Postgres SQLSTATE 23505.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
