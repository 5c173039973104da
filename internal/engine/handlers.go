package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/maraichr/conveyor/internal/bake"
	"github.com/maraichr/conveyor/internal/bakery"
	"github.com/maraichr/conveyor/internal/pipeline"
)

// Built-in stage types.
const (
	StageTypeBake   = "bake"
	StageTypeDeploy = "deploy"
	StageTypeWait   = "wait"
)

// NewDefault returns an Engine with the built-in stage types registered:
// bake (region fan-out/fan-in backed by b), deploy, and wait.
func NewDefault(logger *slog.Logger, clock bake.Clock, b bakery.Bakery) *Engine {
	e := New(logger, clock)
	e.RegisterExpander(StageTypeBake, BakeExpansion{Clock: clock})
	e.Register(StageTypeBake, BakeHandler{Bakery: b})
	e.Register(StageTypeDeploy, DeployHandler{})
	e.Register(StageTypeWait, WaitHandler{})
	return e
}

// BakeExpansion wires the region fan-out and deployment-details join into the
// engine's expansion hooks.
type BakeExpansion struct {
	Clock bake.Clock
}

func (x BakeExpansion) Expand(exec *pipeline.Execution, parent *pipeline.Stage) ([]*pipeline.Stage, error) {
	return bake.FanOut(exec, parent, x.Clock)
}

func (x BakeExpansion) Join(exec *pipeline.Execution, parent *pipeline.Stage) error {
	return bake.AggregateDeploymentDetails(exec, parent)
}

// BakeHandler runs one per-region child bake against the configured Bakery
// and records the bakery's response as the child's outputs.
type BakeHandler struct {
	Bakery bakery.Bakery
}

func (h BakeHandler) Execute(ctx context.Context, _ *pipeline.Execution, stage *pipeline.Stage) error {
	req := bakery.BakeRequest{
		CloudProvider: stage.ContextString(bake.ContextCloudProvider),
		Region:        stage.ContextString(bake.ContextRegion),
		AmiSuffix:     stage.ContextString(bake.ContextAmiSuffix),
		PackageName:   stage.ContextString(bake.ContextPackageName),
		BaseOS:        stage.ContextString(bake.ContextBaseOS),
	}

	res, err := h.Bakery.Bake(ctx, req)
	if err != nil {
		return fmt.Errorf("bake in %s: %w", req.Region, err)
	}

	stage.SetOutput(bake.OutputRegion, res.Region)
	stage.SetOutput(bake.OutputAmi, res.Ami)
	stage.SetOutput(bake.OutputImageName, res.ImageName)
	stage.SetOutput(bake.ContextCloudProvider, req.CloudProvider)
	return nil
}

// DeployHandler consumes the deploymentDetails produced by requisite bake
// groups and records which image was rolled out to each of its own target
// regions.
type DeployHandler struct{}

func (DeployHandler) Execute(_ context.Context, exec *pipeline.Execution, stage *pipeline.Stage) error {
	images := make(map[string]string)
	for _, refID := range stage.RequisiteStageRefIDs {
		for _, upstream := range exec.StagesByRefID(refID) {
			for _, detail := range deploymentDetails(upstream.Outputs[bake.OutputDeploymentDetails]) {
				region, _ := detail[bake.OutputRegion].(string)
				ami, _ := detail[bake.OutputAmi].(string)
				if region != "" && ami != "" {
					images[region] = ami
				}
			}
		}
	}

	var deployed []map[string]any
	for _, src := range bake.StageRegionSources(stage) {
		ami, ok := images[src.Region]
		if !ok {
			return fmt.Errorf("no baked image for region %q", src.Region)
		}
		deployed = append(deployed, map[string]any{
			bake.OutputRegion: src.Region,
			bake.OutputAmi:    ami,
		})
	}

	stage.SetOutput("deployedArtifacts", deployed)
	return nil
}

// deploymentDetails normalizes a deploymentDetails output value. In-memory
// runs hold []map[string]any; values read back from persisted JSON decode to
// []any.
func deploymentDetails(v any) []map[string]any {
	switch details := v.(type) {
	case []map[string]any:
		return details
	case []any:
		var out []map[string]any
		for _, item := range details {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
		return out
	}
	return nil
}

// WaitHandler pauses for the context's waitTime seconds. Used to stagger
// fixtures and smoke-test executions.
type WaitHandler struct{}

func (WaitHandler) Execute(ctx context.Context, _ *pipeline.Execution, stage *pipeline.Stage) error {
	seconds, _ := stage.Context["waitTime"].(float64)
	if seconds <= 0 {
		return nil
	}
	select {
	case <-time.After(time.Duration(seconds * float64(time.Second))):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
