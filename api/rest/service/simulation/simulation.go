package simulation

import (
	"context"

	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/pkg/db"
	"gorm.io/gorm"
)

// Simulation serves read access to persisted runs.
type Simulation interface {
	WithDatabase(*gorm.DB) Simulation
	List(*ListRequest) ([]models.Simulation, error)
	Get(int64) (*models.Simulation, error)
}

type simulationService struct {
	ctx context.Context
	db  *gorm.DB
}

func Service(ctx context.Context) Simulation {
	return &simulationService{
		ctx: ctx,
		db:  db.Connection(),
	}
}

func (s *simulationService) WithDatabase(conn *gorm.DB) Simulation {
	s.db = conn
	return s
}

type ListRequest struct {
	Limit    uint64
	Offset   uint64
	OrderBy  []string
	BiooilID int64
	Status   string
}

func (s *simulationService) List(req *ListRequest) ([]models.Simulation, error) {
	var (
		sims = make([]models.Simulation, 0)
		q    = s.db.WithContext(s.ctx)
	)

	if req.BiooilID != 0 {
		q = q.Where("Biooil_Id = ?", req.BiooilID)
	}

	if req.Status != "" {
		q = q.Where("ConvergenceStatus = ?", req.Status)
	}

	for _, orderBy := range req.OrderBy {
		q = q.Order(orderBy)
	}

	if req.Limit > 0 {
		q = q.Limit(int(req.Limit))
	}

	if req.Offset > 0 {
		q = q.Offset(int(req.Offset))
	}

	return sims, q.Find(&sims).Error
}

// Get loads one run with its condition, product, energy, and syngas rows.
func (s *simulationService) Get(id int64) (*models.Simulation, error) {
	var (
		sim models.Simulation
		q   = s.db.WithContext(s.ctx)
	)

	err := q.
		Preload("Conditions").
		Preload("Product").
		Preload("Energy").
		Preload("Syngas").
		First(&sim, id).Error
	if err != nil {
		return nil, err
	}

	return &sim, nil
}
