package clone

import (
	"testing"
)

func TestBuildPlanOrdersDependenciesFirst(t *testing.T) {
	plan, err := BuildPlan(Descriptors())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	tierOf := make(map[EntityType]int)
	total := 0
	for i, tier := range plan.Tiers() {
		for _, et := range tier {
			tierOf[et] = i
			total++
		}
	}

	if total != len(Descriptors()) {
		t.Errorf("plan places %d types, registry has %d", total, len(Descriptors()))
	}

	// Every FK target must land in a strictly earlier tier than the type
	// referencing it, otherwise the remap store cannot have its entries yet.
	for _, desc := range Descriptors() {
		for _, fk := range desc.FKs {
			if fk.Ref == "" {
				continue
			}
			if tierOf[fk.Ref] >= tierOf[desc.Type] {
				t.Errorf("%s (tier %d) references %s (tier %d); reference target must come first",
					desc.Type, tierOf[desc.Type], fk.Ref, tierOf[fk.Ref])
			}
		}
	}
}

func TestBuildPlanTierShape(t *testing.T) {
	plan, err := BuildPlan(Descriptors())
	if err != nil {
		t.Fatalf("BuildPlan failed: %v", err)
	}

	tiers := plan.Tiers()
	if len(tiers) != 4 {
		t.Fatalf("expected 4 tiers, got %d", len(tiers))
	}

	wantLast := map[EntityType]bool{
		EntityPricingPlanFeature: true,
		EntityInventory:          true,
		EntityPricingComparison:  true,
	}
	last := tiers[len(tiers)-1]
	if len(last) != len(wantLast) {
		t.Fatalf("final tier has %d types, want %d: %v", len(last), len(wantLast), last)
	}
	for _, et := range last {
		if !wantLast[et] {
			t.Errorf("unexpected type %s in final tier", et)
		}
	}
}

func TestBuildPlanRejectsCycle(t *testing.T) {
	descs := []Descriptor{
		{Type: "a", FKs: []FKField{{Column: "b_id", Ref: "b"}}},
		{Type: "b", FKs: []FKField{{Column: "a_id", Ref: "a"}}},
	}
	for i := range descs {
		descs[i] = descs[i].normalize()
	}

	if _, err := BuildPlan(descs); err == nil {
		t.Fatal("expected error for cyclic dependency, got nil")
	}
}

func TestBuildPlanRejectsUnregisteredReference(t *testing.T) {
	descs := []Descriptor{
		{Type: "a", FKs: []FKField{{Column: "ghost_id", Ref: "ghost"}}},
	}
	for i := range descs {
		descs[i] = descs[i].normalize()
	}

	if _, err := BuildPlan(descs); err == nil {
		t.Fatal("expected error for unregistered reference, got nil")
	}
}

func TestBuildPlanRejectsDuplicateType(t *testing.T) {
	descs := []Descriptor{
		{Type: "a"},
		{Type: "a"},
	}
	for i := range descs {
		descs[i] = descs[i].normalize()
	}

	if _, err := BuildPlan(descs); err == nil {
		t.Fatal("expected error for duplicate descriptor, got nil")
	}
}

func TestBuildPlanRejectsSelfReference(t *testing.T) {
	descs := []Descriptor{
		{Type: "a", FKs: []FKField{{Column: "parent_id", Ref: "a"}}},
	}
	for i := range descs {
		descs[i] = descs[i].normalize()
	}

	if _, err := BuildPlan(descs); err == nil {
		t.Fatal("expected error for self reference, got nil")
	}
}

func TestPlanTypesCoversRegistry(t *testing.T) {
	plan := MustBuildPlan()

	types := plan.Types()
	seen := make(map[EntityType]bool, len(types))
	for _, et := range types {
		seen[et] = true
	}
	for _, desc := range Descriptors() {
		if !seen[desc.Type] {
			t.Errorf("Types() is missing %s", desc.Type)
		}
	}
}
