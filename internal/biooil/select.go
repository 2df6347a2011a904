package biooil

import (
	"context"

	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/pkg/db"
	"gorm.io/gorm"
)

const (
	// Fraction sums outside this band indicate a partially characterized
	// oil; those records are excluded from matrix generation.
	MinFractionSum = 60.0
	MaxFractionSum = 120.0

	// DefaultLimit caps how many oils one batch covers.
	DefaultLimit = 30
)

type Biooil interface {
	WithDatabase(*gorm.DB) Biooil
	Select(*SelectRequest) ([]models.Biooil, error)
	Get(int64) (*models.Biooil, error)
}

type biooilService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Biooil {
	return &biooilService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (b *biooilService) WithDatabase(conn *gorm.DB) Biooil {
	b.db = conn
	return b
}

type SelectRequest struct {
	Limit int
}

// Select returns the oils eligible for matrix generation: all six
// composition fractions present and the fraction sum inside the accepted
// band, ordered by id.
func (b *biooilService) Select(req *SelectRequest) ([]models.Biooil, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	var candidates []models.Biooil
	q := b.db.WithContext(b.ctx).
		Where("Aromatics_wt IS NOT NULL").
		Where("Acids_wt IS NOT NULL").
		Where("Alcohols_wt IS NOT NULL").
		Where("Furans_wt IS NOT NULL").
		Where("Phenols_wt IS NOT NULL").
		Where("AldehydeKetone_wt IS NOT NULL").
		Order("Biooil_Id")

	if err := q.Find(&candidates).Error; err != nil {
		return nil, err
	}

	out := make([]models.Biooil, 0, limit)
	for _, oil := range candidates {
		sum := oil.FractionSum()
		if sum < MinFractionSum || sum > MaxFractionSum {
			continue
		}
		out = append(out, oil)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (b *biooilService) Get(id int64) (*models.Biooil, error) {
	var (
		oil = &models.Biooil{ID: id}
		q   = b.db.WithContext(b.ctx)
	)

	return oil, q.First(oil).Error
}
