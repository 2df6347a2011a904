package export

import (
	"context"
	"fmt"
	"time"

	"github.com/reformlab/reformer/internal/models"
	"gorm.io/gorm"
)

// Record is one terminal run flattened for downstream consumers. Product,
// syngas and energy sections are nil for failed runs.
type Record struct {
	SimulationID      int64                              `json:"simulation_id"`
	BatchID           string                             `json:"batch_id,omitempty"`
	BiooilID          int64                              `json:"biooil_id"`
	Model             string                             `json:"model,omitempty"`
	Engine            string                             `json:"engine,omitempty"`
	Status            models.ConvergenceStatus           `json:"status"`
	ValidationFlag    int                                `json:"validation_flag"`
	MassErrorPercent  float64                            `json:"mass_balance_error_percent"`
	EnergyErrPercent  float64                            `json:"energy_balance_error_percent"`
	Warnings          string                             `json:"warnings,omitempty"`
	SimulationDate    time.Time                          `json:"simulation_date"`
	Conditions        *models.ReformingCondition         `json:"conditions,omitempty"`
	Product           *models.HydrogenProduct            `json:"product,omitempty"`
	Energy            *models.EnergyBalance              `json:"energy,omitempty"`
	Syngas            map[string]models.SyngasComposition `json:"syngas,omitempty"`
	EmittedAt         time.Time                          `json:"emitted_at"`
}

// Builder assembles records from persisted runs. Batch metadata is cached
// because every run in a pass shares it.
type Builder struct {
	db      *gorm.DB
	batches *batchCache
}

// NewBuilder returns a Builder reading from the given database.
func NewBuilder(db *gorm.DB) *Builder {
	return &Builder{
		db:      db,
		batches: newBatchCache(5 * time.Minute),
	}
}

// Build loads the simulation and its child rows and flattens them into a
// Record. The run must already be persisted.
func (b *Builder) Build(ctx context.Context, simulationID int64, batchID string) (*Record, error) {
	var sim models.Simulation
	err := b.db.WithContext(ctx).
		Preload("Conditions").
		Preload("Product").
		Preload("Energy").
		Preload("Syngas").
		First(&sim, simulationID).Error
	if err != nil {
		return nil, fmt.Errorf("export: load simulation %d: %w", simulationID, err)
	}

	record := &Record{
		SimulationID:     sim.ID,
		BatchID:          batchID,
		BiooilID:         sim.BiooilID,
		Status:           sim.ConvergenceStatus,
		ValidationFlag:   sim.ValidationFlag,
		MassErrorPercent: sim.MassBalanceErrorPercent,
		EnergyErrPercent: sim.EnergyBalanceErrorPercent,
		Warnings:         sim.Warnings,
		SimulationDate:   sim.SimulationDate,
		Conditions:       sim.Conditions,
		Product:          sim.Product,
		Energy:           sim.Energy,
		EmittedAt:        time.Now().UTC(),
	}

	if len(sim.Syngas) > 0 {
		record.Syngas = make(map[string]models.SyngasComposition, len(sim.Syngas))
		for _, stream := range sim.Syngas {
			record.Syngas[string(stream.StreamLocation)] = *stream
		}
	}

	if batchID != "" {
		if meta, ok := b.batchMeta(ctx, batchID); ok {
			record.Model = meta.model
			record.Engine = meta.engine
		}
	}

	return record, nil
}

func (b *Builder) batchMeta(ctx context.Context, batchID string) (batchCacheEntry, bool) {
	if entry, ok := b.batches.Get(batchID); ok {
		return entry, true
	}

	var pass models.BatchPass
	if err := b.db.WithContext(ctx).First(&pass, "id = ?", batchID).Error; err != nil {
		return batchCacheEntry{}, false
	}

	entry := batchCacheEntry{model: pass.Model, engine: pass.Engine}
	b.batches.Set(batchID, entry)
	return entry, true
}
