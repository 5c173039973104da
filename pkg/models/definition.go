package models

// StageDefinition is one stage of a submitted pipeline definition. Context is
// free-form configuration interpreted by the stage's task handler; well-known
// keys for bake stages are cloudProviderType, region, regions, and amiSuffix.
type StageDefinition struct {
	RefID                string         `json:"refId"`
	Type                 string         `json:"type"`
	Name                 string         `json:"name"`
	RequisiteStageRefIDs []string       `json:"requisiteStageRefIds,omitempty"`
	Context              map[string]any `json:"context,omitempty"`
}

// PipelineDefinition is the wire format accepted by the API and stored as the
// pipeline's definition column. Stage order is preserved; it determines
// traversal order during region collection.
type PipelineDefinition struct {
	Stages []StageDefinition `json:"stages"`
}

// StageByRefID returns the first stage carrying refID, or nil.
func (d PipelineDefinition) StageByRefID(refID string) *StageDefinition {
	for i := range d.Stages {
		if d.Stages[i].RefID == refID {
			return &d.Stages[i]
		}
	}
	return nil
}
