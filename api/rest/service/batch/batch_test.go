package batch

import (
	"context"
	"testing"
	"time"

	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/internal/run"
	"github.com/reformlab/reformer/internal/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type BatchServiceSuite struct {
	suite.Suite
	db    *gorm.DB
	store *run.Store
	svc   Batch
}

func TestBatchServiceSuite(t *testing.T) {
	suite.Run(t, new(BatchServiceSuite))
}

func (s *BatchServiceSuite) SetupTest() {
	s.db = testutil.OpenTestDB(s.T())
	s.store = run.NewStore()
	s.svc = (&batchService{ctx: context.Background()}).
		WithDatabase(s.db).
		WithStore(s.store)
}

func (s *BatchServiceSuite) TearDownTest() {
	testutil.CloseDB(s.db)
}

func (s *BatchServiceSuite) seed(id string, status models.BatchStatus, started time.Time) {
	s.Require().NoError(s.db.Create(&models.BatchPass{
		ID:        id,
		Source:    "matrix.csv",
		Model:     "steam-reforming-pilot",
		Engine:    "equilib",
		Status:    status,
		Total:     45,
		StartedAt: started,
	}).Error)
}

func (s *BatchServiceSuite) TestListNewestFirst() {
	now := time.Now().UTC()
	s.seed("pass-old", models.BatchCompleted, now.Add(-2*time.Hour))
	s.seed("pass-new", models.BatchRunning, now)

	passes, err := s.svc.List(&ListRequest{})
	s.Require().NoError(err)
	s.Require().Len(passes, 2)
	s.Equal("pass-new", passes[0].ID)
}

func (s *BatchServiceSuite) TestListFiltersByStatus() {
	now := time.Now().UTC()
	s.seed("pass-a", models.BatchCompleted, now)
	s.seed("pass-b", models.BatchRunning, now)

	passes, err := s.svc.List(&ListRequest{Status: string(models.BatchRunning)})
	s.Require().NoError(err)
	s.Require().Len(passes, 1)
	s.Equal("pass-b", passes[0].ID)
}

func (s *BatchServiceSuite) TestGetJoinsLiveState() {
	s.seed("pass-live", models.BatchRunning, time.Now().UTC())
	s.store.Start("pass-live", "matrix.csv", "steam-reforming-pilot", "equilib", 45)
	s.store.StartCase("pass-live", run.Case{Index: 0, BiooilID: 2, TemperatureC: 800})

	resp, err := s.svc.Get("pass-live")
	s.Require().NoError(err)
	s.Equal("pass-live", resp.ID)
	s.Require().NotNil(resp.Live)
	s.Len(resp.Live.Cases, 1)
}

func (s *BatchServiceSuite) TestGetWithoutLiveState() {
	s.seed("pass-done", models.BatchCompleted, time.Now().UTC())

	resp, err := s.svc.Get("pass-done")
	s.Require().NoError(err)
	s.Nil(resp.Live)
}

func (s *BatchServiceSuite) TestGetNotFound() {
	_, err := s.svc.Get("missing")
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}
