package clone

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/models"
)

// Orchestrator walks the plan's tiers and clones every entity type from a
// source organization into a new one. Types within a tier run
// concurrently; the orchestrator waits for a whole tier before starting
// the next, because later tiers rewrite references through the remap
// entries the earlier tiers produced.
//
// The operation is deliberately best-effort: one type's failure is
// recorded in the report and isolates there, it neither aborts the
// operation nor rolls back already-cloned types.
type Orchestrator struct {
	plan   *Plan
	cloner TypeCloner
	logger *zap.Logger
}

// NewOrchestrator creates an orchestrator over a validated plan.
func NewOrchestrator(plan *Plan, cloner TypeCloner, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		plan:   plan,
		cloner: cloner,
		logger: logger.Named("clone"),
	}
}

// Run executes one full clone operation and returns the per-type report.
// It always returns a report covering every registered type; Run itself
// never fails.
func (o *Orchestrator) Run(ctx context.Context, sourceOrg, newOrg uuid.UUID) *models.CloneReport {
	report := models.NewCloneReport()
	remap := NewRemapStore(o.plan.Types())

	var mu sync.Mutex

	o.logger.Info("Starting organization clone",
		zap.String("source_org", sourceOrg.String()),
		zap.String("new_org", newOrg.String()),
		zap.Int("tiers", len(o.plan.Tiers())))

	for tierNum, tier := range o.plan.Tiers() {
		var wg sync.WaitGroup
		for _, entityType := range tier {
			desc, ok := o.plan.Descriptor(entityType)
			if !ok {
				// Plan construction guarantees this; guard anyway.
				mu.Lock()
				report.Outcomes[string(entityType)] = models.EntityOutcome{
					Attempted: true,
					Note:      "no descriptor registered",
				}
				mu.Unlock()
				continue
			}

			wg.Add(1)
			go func(desc Descriptor) {
				defer wg.Done()
				outcome := o.cloneOne(ctx, desc, sourceOrg, newOrg, remap)
				mu.Lock()
				report.Outcomes[string(desc.Type)] = outcome
				mu.Unlock()
			}(desc)
		}
		// Tier barrier: every later tier reads this tier's remap entries.
		wg.Wait()

		o.logger.Debug("Tier complete",
			zap.Int("tier", tierNum),
			zap.Int("types", len(tier)))
	}

	o.logger.Info("Organization clone finished",
		zap.String("new_org", newOrg.String()),
		zap.Int("rows_cloned", report.TotalRows()),
		zap.Bool("all_succeeded", report.Succeeded()))

	return report
}

// cloneOne runs a single type's clone and converts any failure into a
// report outcome. Errors never escape past this boundary.
func (o *Orchestrator) cloneOne(ctx context.Context, desc Descriptor, sourceOrg, newOrg uuid.UUID, remap *RemapStore) models.EntityOutcome {
	res, err := o.cloner.CloneType(ctx, desc, sourceOrg, newOrg, remap)
	if err != nil {
		o.logger.Error("Entity type clone failed",
			zap.String("entity_type", string(desc.Type)),
			zap.Error(err))
		return models.EntityOutcome{
			Attempted: true,
			Note:      err.Error(),
		}
	}

	outcome := models.EntityOutcome{
		Attempted:  true,
		Succeeded:  true,
		RowsCloned: res.Rows,
	}
	if res.Skipped > 0 {
		outcome.Note = fmt.Sprintf("%d row(s) skipped: required reference could not be remapped", res.Skipped)
	}
	return outcome
}
