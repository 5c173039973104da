package bake

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/maraichr/conveyor/internal/pipeline"
)

func newStage(stageType, refID string, ctx map[string]any) *pipeline.Stage {
	return &pipeline.Stage{
		ID:      uuid.New(),
		RefID:   refID,
		Type:    stageType,
		Context: ctx,
	}
}

func TestCollectDeployRegions_TopLevelShape(t *testing.T) {
	deploy := newStage("deploy", "2", map[string]any{
		"cloudProvider": "aws",
		"availabilityZones": map[string]any{
			"us-east-1": []any{"us-east-1a", "us-east-1b"},
		},
	})
	bakeStage := newStage("bake", "1", map[string]any{"cloudProviderType": "aws"})
	exec := &pipeline.Execution{Stages: []*pipeline.Stage{bakeStage, deploy}}

	got := CollectDeployRegions(exec, bakeStage)
	want := []RegionSource{{CloudProvider: "aws", Region: "us-east-1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCollectDeployRegions_ClusterShape(t *testing.T) {
	deploy := newStage("deploy", "2", map[string]any{
		"cluster": map[string]any{
			"cloudProvider": "gce",
			"availabilityZones": map[string]any{
				"europe-west1": []any{"europe-west1-b"},
			},
		},
	})
	exec := &pipeline.Execution{Stages: []*pipeline.Stage{deploy}}

	got := CollectDeployRegions(exec, nil)
	want := []RegionSource{{CloudProvider: "gce", Region: "europe-west1"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCollectDeployRegions_ClustersShape(t *testing.T) {
	deploy := newStage("deploy", "2", map[string]any{
		"clusters": []any{
			map[string]any{
				"cloudProvider": "aws",
				"availabilityZones": map[string]any{
					"us-west-2": []any{"us-west-2a"},
				},
			},
			map[string]any{
				"cloudProvider": "aws",
				"availabilityZones": map[string]any{
					"eu-west-1": []any{"eu-west-1a"},
				},
			},
		},
	})
	exec := &pipeline.Execution{Stages: []*pipeline.Stage{deploy}}

	got := CollectDeployRegions(exec, nil)
	want := []RegionSource{
		{CloudProvider: "aws", Region: "us-west-2"},
		{CloudProvider: "aws", Region: "eu-west-1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCollectDeployRegions_DeduplicatesFirstSeen(t *testing.T) {
	first := newStage("deploy", "2", map[string]any{
		"cloudProvider": "aws",
		"availabilityZones": map[string]any{
			"us-east-1": []any{}, "us-west-2": []any{},
		},
	})
	second := newStage("deploy", "3", map[string]any{
		"cloudProvider": "aws",
		"availabilityZones": map[string]any{
			"us-west-2": []any{}, "eu-west-1": []any{},
		},
	})
	exec := &pipeline.Execution{Stages: []*pipeline.Stage{first, second}}

	got := CollectDeployRegions(exec, nil)
	// Zone map keys within one stage are sorted; stage order is preserved.
	want := []RegionSource{
		{CloudProvider: "aws", Region: "us-east-1"},
		{CloudProvider: "aws", Region: "us-west-2"},
		{CloudProvider: "aws", Region: "eu-west-1"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCollectDeployRegions_KeepsCrossProviderDescriptors(t *testing.T) {
	// Provider filtering is the resolver's job; the collector keeps
	// descriptors from every provider.
	aws := newStage("deploy", "2", map[string]any{
		"cloudProvider":     "aws",
		"availabilityZones": map[string]any{"us-east-1": []any{}},
	})
	gce := newStage("deploy", "3", map[string]any{
		"cloudProvider":     "gce",
		"availabilityZones": map[string]any{"us-east-1": []any{}},
	})
	exec := &pipeline.Execution{Stages: []*pipeline.Stage{aws, gce}}

	got := CollectDeployRegions(exec, nil)
	if len(got) != 2 {
		t.Fatalf("got %v, want descriptors from both providers", got)
	}
}

func TestCollectDeployRegions_IgnoresStagesWithoutRegions(t *testing.T) {
	wait := newStage("wait", "2", map[string]any{"waitTime": 5.0})
	exec := &pipeline.Execution{Stages: []*pipeline.Stage{wait}}

	if got := CollectDeployRegions(exec, nil); len(got) != 0 {
		t.Fatalf("expected empty set, got %v", got)
	}
}

func TestCollectDeployRegions_ExcludesReferenceStage(t *testing.T) {
	ref := newStage("deploy", "2", map[string]any{
		"cloudProvider":     "aws",
		"availabilityZones": map[string]any{"us-east-1": []any{}},
	})
	exec := &pipeline.Execution{Stages: []*pipeline.Stage{ref}}

	if got := CollectDeployRegions(exec, ref); len(got) != 0 {
		t.Fatalf("expected reference stage to be excluded, got %v", got)
	}
}

func TestCollectDeployRegions_DoesNotMutateContexts(t *testing.T) {
	deploy := newStage("deploy", "2", map[string]any{
		"cloudProvider":     "aws",
		"availabilityZones": map[string]any{"us-east-1": []any{}},
	})
	exec := &pipeline.Execution{Stages: []*pipeline.Stage{deploy}}

	before := len(deploy.Context)
	CollectDeployRegions(exec, nil)
	if len(deploy.Context) != before {
		t.Fatal("collector mutated a stage context")
	}
}
