package clone

import (
	"fmt"
	"sort"
)

// Plan is the validated processing order for a clone operation: a list of
// tiers, each a set of entity types that depend only on strictly earlier
// tiers. Types within a tier are independent and may clone concurrently.
type Plan struct {
	tiers  [][]EntityType
	byType map[EntityType]Descriptor
}

// BuildPlan validates the descriptor registry and derives tiers by
// topological leveling over the declared FK references. A cycle or a
// reference to an unregistered type is a configuration error; callers
// treat it as fatal at startup.
func BuildPlan(descs []Descriptor) (*Plan, error) {
	byType := make(map[EntityType]Descriptor, len(descs))
	for _, d := range descs {
		if _, dup := byType[d.Type]; dup {
			return nil, fmt.Errorf("duplicate descriptor for entity type %q", d.Type)
		}
		byType[d.Type] = d
	}

	deps := make(map[EntityType][]EntityType, len(descs))
	for _, d := range descs {
		for _, fk := range d.FKs {
			if fk.Ref == "" {
				// Shared-table reference; not part of the clone graph.
				continue
			}
			if _, ok := byType[fk.Ref]; !ok {
				return nil, fmt.Errorf("entity type %q references unregistered type %q", d.Type, fk.Ref)
			}
			if fk.Ref == d.Type {
				return nil, fmt.Errorf("entity type %q references itself", d.Type)
			}
			deps[d.Type] = append(deps[d.Type], fk.Ref)
		}
	}

	// Kahn leveling: level(t) = 1 + max(level of deps), level 0 for types
	// with no dependencies.
	level := make(map[EntityType]int, len(descs))
	placed := 0
	for placed < len(descs) {
		progressed := false
		for _, d := range descs {
			if _, done := level[d.Type]; done {
				continue
			}
			lvl := 0
			ready := true
			for _, dep := range deps[d.Type] {
				depLvl, done := level[dep]
				if !done {
					ready = false
					break
				}
				if depLvl+1 > lvl {
					lvl = depLvl + 1
				}
			}
			if ready {
				level[d.Type] = lvl
				placed++
				progressed = true
			}
		}
		if !progressed {
			return nil, fmt.Errorf("cyclic dependency among entity types")
		}
	}

	maxLevel := 0
	for _, lvl := range level {
		if lvl > maxLevel {
			maxLevel = lvl
		}
	}

	tiers := make([][]EntityType, maxLevel+1)
	for _, d := range descs {
		lvl := level[d.Type]
		tiers[lvl] = append(tiers[lvl], d.Type)
	}
	for _, tier := range tiers {
		sort.Slice(tier, func(i, j int) bool { return tier[i] < tier[j] })
	}

	return &Plan{tiers: tiers, byType: byType}, nil
}

// MustBuildPlan builds the default plan from the registry and panics on a
// misdeclared registry. Used at startup wiring only.
func MustBuildPlan() *Plan {
	plan, err := BuildPlan(Descriptors())
	if err != nil {
		panic(err)
	}
	return plan
}

// Tiers returns the tiers in processing order. The returned slices are
// shared; callers must not mutate them.
func (p *Plan) Tiers() [][]EntityType {
	return p.tiers
}

// Descriptor returns the descriptor for an entity type.
func (p *Plan) Descriptor(t EntityType) (Descriptor, bool) {
	d, ok := p.byType[t]
	return d, ok
}

// Types returns every registered entity type.
func (p *Plan) Types() []EntityType {
	types := make([]EntityType, 0, len(p.byType))
	for _, tier := range p.tiers {
		types = append(types, tier...)
	}
	return types
}
