package bake

import (
	"fmt"

	"github.com/maraichr/conveyor/internal/pipeline"
)

// Well-known stage output keys.
const (
	OutputRegion            = "region"
	OutputAmi               = "ami"
	OutputImageName         = "imageName"
	OutputDeploymentDetails = "deploymentDetails"
)

// AggregateDeploymentDetails is the fan-in step. It assumes the engine's
// barrier already held: every stage sharing the parent's refId and type is
// terminal when this runs — no polling or waiting happens here.
//
// The parent's context "regions" list is the ordering key: for each listed
// region, the sibling whose output region matches contributes its full output
// map, in list order, independent of completion order. A listed region with
// no matching completed sibling fails the join; silently truncating would
// hand downstream deploy stages a shorter artifact list than they expect.
//
// The sole side effect is setting deploymentDetails on the parent's outputs.
func AggregateDeploymentDetails(exec *pipeline.Execution, parent *pipeline.Stage) error {
	regions := parent.ContextStrings(ContextRegions)

	byRegion := make(map[string]map[string]any)
	for _, sibling := range exec.StagesByRefID(parent.RefID) {
		if sibling.ID == parent.ID || sibling.Type != parent.Type {
			continue
		}
		if region := sibling.OutputString(OutputRegion); region != "" {
			byRegion[region] = sibling.Outputs
		}
	}

	details := make([]map[string]any, 0, len(regions))
	for _, region := range regions {
		outputs, ok := byRegion[region]
		if !ok {
			return fmt.Errorf("bake stage %q: no completed bake output for region %q", parent.RefID, region)
		}
		details = append(details, outputs)
	}

	parent.SetOutput(OutputDeploymentDetails, details)
	return nil
}
