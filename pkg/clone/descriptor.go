// Package clone implements the organization replication engine: a
// table-driven clone of every site entity type owned by a source
// organization into a newly created one, with fresh primary keys and
// rewritten cross-entity references.
package clone

import (
	"github.com/jinzhu/inflection"
)

// EntityType tags one organization-scoped record kind.
type EntityType string

const (
	EntitySettings               EntityType = "settings"
	EntityHero                   EntityType = "hero"
	EntityMenuItem               EntityType = "menu_item"
	EntitySubmenuItem            EntityType = "submenu_item"
	EntityBanner                 EntityType = "banner"
	EntityBlogPost               EntityType = "blog_post"
	EntityProductSubType         EntityType = "product_sub_type"
	EntityProduct                EntityType = "product"
	EntityFeature                EntityType = "feature"
	EntityFAQ                    EntityType = "faq"
	EntityWebsiteMenuItem        EntityType = "website_menu_item"
	EntityWebsiteSubmenuItem     EntityType = "website_submenu_item"
	EntityTemplateSection        EntityType = "template_section"
	EntityTemplateHeadingSection EntityType = "template_heading_section"
	EntityPage                   EntityType = "page"
	EntityWebsiteBrand           EntityType = "website_brand"
	EntityPricingPlan            EntityType = "pricing_plan"
	EntityPricingPlanFeature     EntityType = "pricing_plan_feature"
	EntityInventory              EntityType = "inventory"
	EntityPricingComparison      EntityType = "pricing_comparison"
	EntityWebsiteMetric          EntityType = "website_metric"
	EntityTemplateSectionMetric  EntityType = "template_section_metric"
)

// FKPolicy controls how a foreign-key field is rewritten when the remap
// store has no entry for its source value.
type FKPolicy int

const (
	// FKNullOnMiss nulls the field when the referenced row was not cloned.
	FKNullOnMiss FKPolicy = iota

	// FKValidateFirst re-checks that the referenced row exists under the
	// source organization before attempting a remap; a dangling reference
	// is nulled outright. Used for optional cross-cutting references.
	FKValidateFirst

	// FKRequireRemap marks a reference that must resolve. A row whose
	// reference cannot be remapped is skipped entirely, never inserted
	// with a stale source-organization id.
	FKRequireRemap
)

// FKField declares one foreign-key column of an entity type.
type FKField struct {
	Column string

	// Ref is the entity type the column references. Empty for references
	// into shared tables outside the clone set; those set RefTable.
	Ref      EntityType
	RefTable string

	Policy FKPolicy
}

// ScrubField declares a column whose source value must never be copied
// into the clone (billing references, domain bindings, deployment ids).
type ScrubField struct {
	Column string
	Value  any
}

// Descriptor is the static metadata the clone engine needs for one
// entity type. Table and TenantColumn are derived when empty.
type Descriptor struct {
	Type         EntityType
	Table        string
	TenantColumn string
	FKs          []FKField
	Scrub        []ScrubField
}

// DefaultTenantColumn is the ownership column on every entity table.
const DefaultTenantColumn = "organization_id"

// normalize fills derived fields on a descriptor.
func (d Descriptor) normalize() Descriptor {
	if d.Table == "" {
		d.Table = inflection.Plural(string(d.Type))
	}
	if d.TenantColumn == "" {
		d.TenantColumn = DefaultTenantColumn
	}
	return d
}

// Descriptors returns the full registry of cloneable entity types. The
// dependency order is not encoded here; the planner derives it from the
// FK declarations.
func Descriptors() []Descriptor {
	descs := []Descriptor{
		{
			Type: EntitySettings,
			Scrub: []ScrubField{
				{Column: "domain"},
				{Column: "billing_customer_ref"},
				{Column: "deployment_id"},
			},
		},
		// Pluralization gets "hero" wrong, so the table is explicit.
		{Type: EntityHero, Table: "heroes"},
		{Type: EntityMenuItem},
		{
			Type: EntitySubmenuItem,
			FKs: []FKField{
				// Column name is historical; it references menu_items.
				{Column: "website_menuitem_id", Ref: EntityMenuItem},
			},
		},
		{Type: EntityBanner},
		{Type: EntityBlogPost},
		{Type: EntityProductSubType},
		{
			Type: EntityProduct,
			FKs: []FKField{
				{Column: "product_sub_type_id", Ref: EntityProductSubType},
				{Column: "course_connected_id", RefTable: "courses", Policy: FKValidateFirst},
			},
		},
		{Type: EntityFeature},
		{Type: EntityFAQ},
		{Type: EntityWebsiteMenuItem},
		{
			Type: EntityWebsiteSubmenuItem,
			FKs: []FKField{
				{Column: "website_menu_item_id", Ref: EntityWebsiteMenuItem},
			},
		},
		{Type: EntityTemplateSection},
		{
			Type: EntityTemplateHeadingSection,
			FKs: []FKField{
				{Column: "template_section_id", Ref: EntityTemplateSection},
			},
		},
		{Type: EntityPage},
		{Type: EntityWebsiteBrand},
		{
			Type: EntityPricingPlan,
			FKs: []FKField{
				{Column: "product_id", Ref: EntityProduct},
			},
		},
		{
			Type: EntityPricingPlanFeature,
			FKs: []FKField{
				{Column: "pricing_plan_id", Ref: EntityPricingPlan},
				{Column: "feature_id", Ref: EntityFeature},
			},
		},
		{
			Type: EntityInventory,
			FKs: []FKField{
				{Column: "pricing_plan_id", Ref: EntityPricingPlan, Policy: FKRequireRemap},
			},
		},
		{
			Type: EntityPricingComparison,
			FKs: []FKField{
				{Column: "pricing_plan_id", Ref: EntityPricingPlan},
			},
		},
		{Type: EntityWebsiteMetric},
		{
			Type: EntityTemplateSectionMetric,
			FKs: []FKField{
				{Column: "template_section_id", Ref: EntityTemplateSection},
				{Column: "website_metric_id", Ref: EntityWebsiteMetric},
			},
		},
	}

	for i := range descs {
		descs[i] = descs[i].normalize()
	}
	return descs
}
