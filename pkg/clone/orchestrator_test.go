package clone

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// fakeTypeCloner returns canned results per entity type and records the
// order types were started in.
type fakeTypeCloner struct {
	mu      sync.Mutex
	results map[EntityType]TypeResult
	errs    map[EntityType]error
	started []EntityType
}

func (f *fakeTypeCloner) CloneType(_ context.Context, desc Descriptor, _, _ uuid.UUID, _ *RemapStore) (TypeResult, error) {
	f.mu.Lock()
	f.started = append(f.started, desc.Type)
	f.mu.Unlock()

	if err := f.errs[desc.Type]; err != nil {
		return TypeResult{}, err
	}
	return f.results[desc.Type], nil
}

func TestOrchestratorReportsEveryType(t *testing.T) {
	plan := MustBuildPlan()
	fake := &fakeTypeCloner{
		results: map[EntityType]TypeResult{
			EntityBanner: {Rows: 3},
		},
	}
	orch := NewOrchestrator(plan, fake, zap.NewNop())

	report := orch.Run(context.Background(), uuid.New(), uuid.New())

	if len(report.Outcomes) != len(plan.Types()) {
		t.Fatalf("report covers %d types, want %d", len(report.Outcomes), len(plan.Types()))
	}
	for _, et := range plan.Types() {
		outcome, ok := report.Outcomes[string(et)]
		if !ok {
			t.Errorf("no outcome for %s", et)
			continue
		}
		if !outcome.Attempted {
			t.Errorf("%s not attempted", et)
		}
		if !outcome.Succeeded {
			t.Errorf("%s did not succeed: %s", et, outcome.Note)
		}
	}
	if got := report.Outcomes[string(EntityBanner)].RowsCloned; got != 3 {
		t.Errorf("banner rows = %d, want 3", got)
	}
	if !report.Succeeded() {
		t.Error("report should be fully successful")
	}
	if report.TotalRows() != 3 {
		t.Errorf("TotalRows = %d, want 3", report.TotalRows())
	}
}

func TestOrchestratorIsolatesTypeFailures(t *testing.T) {
	plan := MustBuildPlan()
	fake := &fakeTypeCloner{
		results: map[EntityType]TypeResult{
			EntityPricingPlan: {Rows: 2},
		},
		errs: map[EntityType]error{
			EntityPricingPlanFeature: cloneErrorf(EntityPricingPlanFeature, "insert rows: deadlock detected"),
		},
	}
	orch := NewOrchestrator(plan, fake, zap.NewNop())

	report := orch.Run(context.Background(), uuid.New(), uuid.New())

	plans := report.Outcomes[string(EntityPricingPlan)]
	if !plans.Succeeded || plans.RowsCloned != 2 {
		t.Errorf("pricing_plan outcome = %+v, want success with 2 rows", plans)
	}

	features := report.Outcomes[string(EntityPricingPlanFeature)]
	if features.Succeeded {
		t.Error("pricing_plan_feature should have failed")
	}
	if !features.Attempted {
		t.Error("pricing_plan_feature should still be attempted")
	}
	if !strings.Contains(features.Note, "deadlock") {
		t.Errorf("failure note %q should carry the cause", features.Note)
	}

	// The failure must not leak into any sibling.
	for _, et := range plan.Types() {
		if et == EntityPricingPlanFeature {
			continue
		}
		if !report.Outcomes[string(et)].Succeeded {
			t.Errorf("%s affected by sibling failure", et)
		}
	}
	if report.Succeeded() {
		t.Error("report should not be fully successful")
	}
}

func TestOrchestratorRespectsTierOrder(t *testing.T) {
	plan := MustBuildPlan()
	fake := &fakeTypeCloner{}
	orch := NewOrchestrator(plan, fake, zap.NewNop())

	orch.Run(context.Background(), uuid.New(), uuid.New())

	if len(fake.started) != len(plan.Types()) {
		t.Fatalf("started %d types, want %d", len(fake.started), len(plan.Types()))
	}

	startPos := make(map[EntityType]int, len(fake.started))
	for i, et := range fake.started {
		startPos[et] = i
	}

	// FK targets sit in earlier tiers, and the tier barrier means every
	// earlier tier's types started (and finished) before this one began.
	for _, desc := range Descriptors() {
		for _, fk := range desc.FKs {
			if fk.Ref == "" {
				continue
			}
			if startPos[fk.Ref] >= startPos[desc.Type] {
				t.Errorf("%s started before its dependency %s", desc.Type, fk.Ref)
			}
		}
	}
}

func TestOrchestratorRecordsSkipNote(t *testing.T) {
	plan := MustBuildPlan()
	fake := &fakeTypeCloner{
		results: map[EntityType]TypeResult{
			EntityInventory: {Rows: 4, Skipped: 2},
		},
	}
	orch := NewOrchestrator(plan, fake, zap.NewNop())

	report := orch.Run(context.Background(), uuid.New(), uuid.New())

	outcome := report.Outcomes[string(EntityInventory)]
	if !outcome.Succeeded {
		t.Fatalf("inventory outcome = %+v, want success", outcome)
	}
	if !strings.Contains(outcome.Note, "2 row(s) skipped") {
		t.Errorf("note = %q, want skip count", outcome.Note)
	}
}
