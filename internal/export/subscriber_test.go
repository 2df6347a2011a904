package export

import (
	"context"
	"testing"
	"time"

	"github.com/reformlab/reformer/internal/event"
	"github.com/reformlab/reformer/internal/models"
	"github.com/reformlab/reformer/internal/testutil"
	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"
)

type SubscriberSuite struct {
	suite.Suite
	db *gorm.DB
}

func TestSubscriberSuite(t *testing.T) {
	suite.Run(t, new(SubscriberSuite))
}

func (s *SubscriberSuite) SetupTest() {
	s.db = testutil.OpenTestDB(s.T())
	testutil.SeedBiooils(s.T(), s.db)
}

func (s *SubscriberSuite) TearDownTest() {
	testutil.CloseDB(s.db)
}

func (s *SubscriberSuite) seedRun() (*models.Simulation, *models.BatchPass) {
	sim := &models.Simulation{
		BiooilID:                2,
		SimulationDate:          time.Now().UTC(),
		AspenVersion:            "V8.8",
		ConvergenceStatus:       models.StatusConverged,
		ConvergenceIterations:   24,
		MassBalanceErrorPercent: 0.02,
	}
	s.Require().NoError(s.db.Create(sim).Error)

	s.Require().NoError(s.db.Create(&models.ReformingCondition{
		SimulationID:         sim.ID,
		ReformerTemperatureC: 750,
		ReformerPressureBar:  5,
		SteamToCarbonRatio:   3.5,
	}).Error)

	s.Require().NoError(s.db.Create(&models.HydrogenProduct{
		SimulationID: sim.ID,
		H2YieldKg:    11.2,
	}).Error)

	s.Require().NoError(s.db.Create(&models.EnergyBalance{
		SimulationID:       sim.ID,
		TotalEnergyInputMJ: 2100,
	}).Error)

	s.Require().NoError(s.db.Create(&models.SyngasComposition{
		SimulationID:   sim.ID,
		StreamLocation: models.StreamReformerOut,
		H2MolPercent:   48.1,
	}).Error)

	pass := &models.BatchPass{
		ID:        "pass-export",
		Source:    "matrix.csv",
		Model:     "steam-reforming-base",
		Engine:    "equilib",
		Status:    models.BatchRunning,
		StartedAt: time.Now().UTC(),
	}
	s.Require().NoError(s.db.Create(pass).Error)

	return sim, pass
}

func (s *SubscriberSuite) TestBuilderFlattensRun() {
	sim, pass := s.seedRun()

	builder := NewBuilder(s.db)
	record, err := builder.Build(context.Background(), sim.ID, pass.ID)
	s.Require().NoError(err)

	s.Equal(sim.ID, record.SimulationID)
	s.Equal(int64(2), record.BiooilID)
	s.Equal(models.StatusConverged, record.Status)
	s.Equal("steam-reforming-base", record.Model)
	s.Equal("equilib", record.Engine)
	s.Require().NotNil(record.Conditions)
	s.InDelta(750.0, record.Conditions.ReformerTemperatureC, 1e-9)
	s.Require().NotNil(record.Product)
	s.InDelta(11.2, record.Product.H2YieldKg, 1e-9)
	s.Require().NotNil(record.Energy)
	s.Require().Contains(record.Syngas, string(models.StreamReformerOut))
}

func (s *SubscriberSuite) TestBuilderMissingSimulation() {
	builder := NewBuilder(s.db)
	_, err := builder.Build(context.Background(), 9999, "")
	s.Require().Error(err)
}

func (s *SubscriberSuite) TestBuilderCachesBatchMetadata() {
	sim, pass := s.seedRun()

	builder := NewBuilder(s.db)
	_, err := builder.Build(context.Background(), sim.ID, pass.ID)
	s.Require().NoError(err)

	// remove the pass; the cached metadata should still resolve
	s.Require().NoError(s.db.Delete(&models.BatchPass{}, "id = ?", pass.ID).Error)

	record, err := builder.Build(context.Background(), sim.ID, pass.ID)
	s.Require().NoError(err)
	s.Equal("equilib", record.Engine)
}

func (s *SubscriberSuite) TestSubscriberEmitsTerminalRuns() {
	sim, pass := s.seedRun()

	bus := event.New()
	sink := &recordingTransport{}
	sub := NewSubscriber(bus, sink, "test", s.db)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sub.Start(ctx) }()

	// let the subscriber register before publishing
	time.Sleep(50 * time.Millisecond)

	bus.Publish(event.Event{
		Type:         event.TypeRunConverged,
		BatchID:      pass.ID,
		SimulationID: sim.ID,
		BiooilID:     sim.BiooilID,
		Timestamp:    time.Now().UTC(),
	})
	bus.Publish(event.Event{
		Type:      event.TypeRunSkipped,
		BatchID:   pass.ID,
		Timestamp: time.Now().UTC(),
	})

	s.Require().Eventually(func() bool {
		return len(sink.records) == 1
	}, time.Second, 10*time.Millisecond)

	cancel()
	s.Require().NoError(<-done)

	s.Equal(sim.ID, sink.records[0].SimulationID)
	s.Equal(pass.ID, sink.records[0].BatchID)
}
