package batch

import (
	"context"

	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/internal/run"
	"github.com/reformlab/reformer/pkg/db"
	"gorm.io/gorm"
)

// Batch serves read access to batch passes, joining the durable
// BatchPass row with the live in-process view when one exists.
type Batch interface {
	WithDatabase(*gorm.DB) Batch
	WithStore(*run.Store) Batch
	List(*ListRequest) ([]models.BatchPass, error)
	Get(string) (*GetResponse, error)
}

type batchService struct {
	ctx   context.Context
	db    *gorm.DB
	store *run.Store
}

func Service(ctx context.Context) Batch {
	return &batchService{
		ctx:   ctx,
		db:    db.Connection(),
		store: run.Default(),
	}
}

func (b *batchService) WithDatabase(conn *gorm.DB) Batch {
	b.db = conn
	return b
}

func (b *batchService) WithStore(store *run.Store) Batch {
	b.store = store
	return b
}

type ListRequest struct {
	Limit   uint64
	Offset  uint64
	OrderBy []string
	Status  string
}

func (b *batchService) List(req *ListRequest) ([]models.BatchPass, error) {
	var (
		passes = make([]models.BatchPass, 0)
		q      = b.db.WithContext(b.ctx)
	)

	if req.Status != "" {
		q = q.Where("status = ?", req.Status)
	}

	if len(req.OrderBy) == 0 {
		q = q.Order("started_at DESC")
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

	return passes, q.Find(&passes).Error
}

// GetResponse pairs the durable pass record with per-case live state.
// Live is nil for passes run by another process or before a restart.
type GetResponse struct {
	*models.BatchPass
	Live *run.Pass `json:"live,omitempty"`
}

func (b *batchService) Get(id string) (*GetResponse, error) {
	var (
		pass models.BatchPass
		q    = b.db.WithContext(b.ctx)
	)

	if err := q.First(&pass, "id = ?", id).Error; err != nil {
		return nil, err
	}

	resp := &GetResponse{BatchPass: &pass}
	if b.store != nil {
		if live, ok := b.store.Get(id); ok {
			resp.Live = live
		}
	}

	return resp, nil
}
