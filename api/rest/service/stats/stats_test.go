package stats

import (
	"context"
	"testing"
	"time"

	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/internal/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type StatsServiceSuite struct {
	suite.Suite
	db  *gorm.DB
	svc *Service
}

func TestStatsServiceSuite(t *testing.T) {
	suite.Run(t, new(StatsServiceSuite))
}

func (s *StatsServiceSuite) SetupTest() {
	s.db = testutil.OpenTestDB(s.T())
	testutil.SeedBiooils(s.T(), s.db)
	s.svc = (&Service{ctx: context.Background()}).WithDatabase(s.db)
}

func (s *StatsServiceSuite) TearDownTest() {
	testutil.CloseDB(s.db)
}

func (s *StatsServiceSuite) seedRun(biooilID int64, status models.ConvergenceStatus, h2Yield float64, when time.Time) {
	sim := &models.Simulation{
		BiooilID:                biooilID,
		SimulationDate:          when,
		ConvergenceStatus:       status,
		MassBalanceErrorPercent: 0.05,
	}
	s.Require().NoError(s.db.Create(sim).Error)

	s.Require().NoError(s.db.Create(&models.ReformingCondition{
		SimulationID:         sim.ID,
		ReformerTemperatureC: 800,
		ReformerPressureBar:  15,
		SteamToCarbonRatio:   3.5,
	}).Error)

	if status == models.StatusConverged {
		s.Require().NoError(s.db.Create(&models.HydrogenProduct{
			SimulationID: sim.ID,
			H2YieldKg:    h2Yield,
		}).Error)
	}
}

func (s *StatsServiceSuite) TestGetCountsByStatus() {
	now := time.Now().UTC()
	s.seedRun(1, models.StatusConverged, 10, now)
	s.seedRun(1, models.StatusConverged, 12, now)
	s.seedRun(2, models.StatusFailed, 0, now)
	s.seedRun(2, models.StatusWarning, 0, now)

	resp, err := s.svc.Get()
	s.Require().NoError(err)

	s.Equal(int64(4), resp.Simulations.Total)
	s.Equal(int64(2), resp.Simulations.Converged)
	s.Equal(int64(1), resp.Simulations.Failed)
	s.Equal(int64(1), resp.Simulations.Warning)
	s.InDelta(0.5, resp.Simulations.ConvergenceRate, 1e-9)
	s.InDelta(11, resp.Simulations.AvgH2YieldKg, 1e-9)
}

func (s *StatsServiceSuite) TestGetRecentWindow() {
	now := time.Now().UTC()
	s.seedRun(1, models.StatusConverged, 10, now)
	s.seedRun(1, models.StatusConverged, 10, now.Add(-48*time.Hour))

	resp, err := s.svc.Get()
	s.Require().NoError(err)
	s.Equal(int64(1), resp.Simulations.Recent24h)
}

func (s *StatsServiceSuite) TestGetBatchCounts() {
	s.Require().NoError(s.db.Create(&models.BatchPass{
		ID: "pass-1", Status: models.BatchRunning, StartedAt: time.Now().UTC(),
	}).Error)
	s.Require().NoError(s.db.Create(&models.BatchPass{
		ID: "pass-2", Status: models.BatchCompleted, StartedAt: time.Now().UTC(),
	}).Error)

	resp, err := s.svc.Get()
	s.Require().NoError(err)
	s.Equal(int64(2), resp.Batches.Total)
	s.Equal(int64(1), resp.Batches.Running)
	s.Equal(int64(1), resp.Batches.Completed)
}

func (s *StatsServiceSuite) TestGetByBiooilBreakdown() {
	now := time.Now().UTC()
	s.seedRun(1, models.StatusConverged, 10, now)
	s.seedRun(2, models.StatusFailed, 0, now)
	s.seedRun(2, models.StatusConverged, 8, now)

	resp, err := s.svc.Get()
	s.Require().NoError(err)
	s.Require().Len(resp.ByBiooil, 2)

	byID := map[int64]BiooilConvergence{}
	for _, row := range resp.ByBiooil {
		byID[row.BiooilID] = row
	}
	s.Equal(int64(1), byID[1].Converged)
	s.Equal(int64(2), byID[2].Runs)
	s.Equal(int64(1), byID[2].Converged)
}

func (s *StatsServiceSuite) TestGetBestYields() {
	now := time.Now().UTC()
	s.seedRun(1, models.StatusConverged, 9, now)
	s.seedRun(2, models.StatusConverged, 13, now)

	resp, err := s.svc.Get()
	s.Require().NoError(err)
	s.Require().NotEmpty(resp.BestYields)
	s.Equal(13.0, resp.BestYields[0].H2YieldKg)
	s.Equal(800.0, resp.BestYields[0].TemperatureC)
}

func (s *StatsServiceSuite) TestGetEmptyDatabase() {
	resp, err := s.svc.Get()
	s.Require().NoError(err)
	s.Zero(resp.Simulations.Total)
	s.Zero(resp.Simulations.ConvergenceRate)
	s.Empty(resp.BestYields)
}
