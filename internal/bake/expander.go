package bake

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/maraichr/conveyor/internal/pipeline"
)

// Expand appends one child bake stage per resolved region to the execution's
// stage graph. Each child copies the parent's type and refId — children share
// the parent's refId so downstream dependency edges resolve to the whole
// group — and carries the per-child region plus the shared amiSuffix. The
// parent stage is left in place and no requisiteStageRefIds are set on
// children.
//
// Expand is NOT idempotent: calling it twice for the same parent duplicates
// the children. Callers track expansion state.
func Expand(exec *pipeline.Execution, parent *pipeline.Stage, res Resolution) []*pipeline.Stage {
	children := make([]*pipeline.Stage, 0, len(res.Regions))
	for _, region := range res.Regions {
		child := &pipeline.Stage{
			ID:     uuid.New(),
			RefID:  parent.RefID,
			Type:   parent.Type,
			Name:   "Bake in " + region,
			Status: pipeline.StatusPending,
			Context: map[string]any{
				ContextCloudProvider: res.CloudProvider,
				ContextRegion:        region,
				ContextAmiSuffix:     res.AmiSuffix,
			},
		}
		// Forward bake configuration the task handler needs.
		for _, key := range []string{ContextPackageName, ContextBaseOS} {
			if v, ok := parent.Context[key]; ok {
				child.Context[key] = v
			}
		}
		children = append(children, child)
	}
	exec.AppendStages(children...)
	return children
}

// FanOut runs the full expansion step for one bake parent: collect deploy
// regions, resolve, record the canonical regions list and amiSuffix on the
// parent context (the join reads them back later), then append the children.
func FanOut(exec *pipeline.Execution, parent *pipeline.Stage, clock Clock) ([]*pipeline.Stage, error) {
	if parent.ContextString(ContextCloudProvider) == "" {
		return nil, fmt.Errorf("bake stage %q: cloudProviderType is required", parent.RefID)
	}

	collected := CollectDeployRegions(exec, parent)
	res := Resolve(parent, collected, clock)
	if len(res.Regions) == 0 {
		return nil, fmt.Errorf("bake stage %q: no regions resolved from context or deploy stages", parent.RefID)
	}

	parent.Context[ContextRegions] = res.Regions
	parent.Context[ContextAmiSuffix] = res.AmiSuffix

	return Expand(exec, parent, res), nil
}
