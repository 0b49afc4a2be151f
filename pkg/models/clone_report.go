package models

// EntityOutcome is the result of cloning one entity type.
type EntityOutcome struct {
	Attempted  bool   `json:"attempted"`
	Succeeded  bool   `json:"succeeded"`
	RowsCloned int    `json:"rows_cloned"`
	Note       string `json:"note,omitempty"`
}

// CloneReport maps entity type names to their clone outcomes. It is
// assembled once by the orchestrator and read-only afterward; the
// operation as a whole has no failed state, only per-type outcomes.
type CloneReport struct {
	Outcomes map[string]EntityOutcome `json:"outcomes"`
}

// NewCloneReport creates an empty report.
func NewCloneReport() *CloneReport {
	return &CloneReport{Outcomes: make(map[string]EntityOutcome)}
}

// Succeeded reports whether every attempted entity type cloned cleanly.
func (r *CloneReport) Succeeded() bool {
	for _, o := range r.Outcomes {
		if !o.Succeeded {
			return false
		}
	}
	return true
}

// TotalRows returns the number of rows cloned across all entity types.
func (r *CloneReport) TotalRows() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.RowsCloned
	}
	return total
}

// DeploymentResult describes the outcome of post-clone provisioning.
type DeploymentResult struct {
	HostingProjectID string `json:"hosting_project_id"`
	DeploymentID     string `json:"deployment_id"`
	URL              string `json:"url,omitempty"`
}
