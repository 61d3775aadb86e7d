package database

import (
	"context"
	"strings"

	"github.com/epitaphe360/cms-backend/models"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// ListQuery is the common list filter. Filters is keyed by query parameter
// name; only the names the model's Listing declares are applied.
type ListQuery struct {
	Status  string
	Search  string
	Filters map[string]string
	Limit   int
	Offset  int
}

// Bounded returns q with limit and offset clamped.
func (q ListQuery) Bounded() ListQuery {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}
	return q
}

// Repo is the gorm store for one model type.
type Repo[T any, P interface {
	*T
	models.Entity
}] struct {
	db *gorm.DB
}

func NewRepo[T any, P interface {
	*T
	models.Entity
}](db *gorm.DB) *Repo[T, P] {
	return &Repo[T, P]{db}
}

// GetDB returns the underlying database connection for debugging purposes
func (r *Repo[T, P]) GetDB() *gorm.DB {
	return r.db
}

// List returns one page of rows and the total number of matching rows.
func (r *Repo[T, P]) List(ctx context.Context, q ListQuery) ([]T, int64, error) {
	q = q.Bounded()
	listing := P(new(T)).Listing()

	order := listing.OrderBy
	if order == "" {
		order = "created_at DESC"
	}

	var (
		rows  []T
		total int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.filtered(gctx, listing, q).Order(order).Limit(q.Limit).Offset(q.Offset).Find(&rows).Error
	})
	g.Go(func() error {
		return r.filtered(gctx, listing, q).Count(&total).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, total, nil
}

func (r *Repo[T, P]) filtered(ctx context.Context, listing models.Listing, q ListQuery) *gorm.DB {
	tx := r.db.WithContext(ctx).Model(new(T))

	if listing.HasStatus && q.Status != "" {
		tx = tx.Where("status = ?", strings.ToUpper(strings.TrimSpace(q.Status)))
	}

	if term := strings.TrimSpace(q.Search); term != "" && len(listing.SearchColumns) > 0 {
		pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
		conds := make([]string, 0, len(listing.SearchColumns))
		args := make([]any, 0, len(listing.SearchColumns))
		for _, column := range listing.SearchColumns {
			conds = append(conds, "LOWER("+column+`) LIKE ? ESCAPE '\'`)
			args = append(args, pattern)
		}
		tx = tx.Where("("+strings.Join(conds, " OR ")+")", args...)
	}

	for param, column := range listing.Filters {
		if value := strings.TrimSpace(q.Filters[param]); value != "" {
			tx = tx.Where(column+" = ?", value)
		}
	}

	return tx
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// FindByID returns gorm.ErrRecordNotFound when no row matches.
func (r *Repo[T, P]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// FindBy returns the first row whose column equals value.
func (r *Repo[T, P]) FindBy(ctx context.Context, column string, value any) (*T, error) {
	var record T
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// Add inserts a new row. Unique violations surface as gorm.ErrDuplicatedKey.
func (r *Repo[T, P]) Add(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error
}

// Update writes every column of record in one statement inside a
// transaction. A row that vanished meanwhile yields gorm.ErrRecordNotFound.
func (r *Repo[T, P]) Update(ctx context.Context, record *T) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(record).Select("*").Omit(clause.Associations).Updates(record)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// Delete hard-deletes a row by id.
func (r *Repo[T, P]) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
