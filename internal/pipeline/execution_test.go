package pipeline

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/maraichr/conveyor/pkg/models"
)

func TestNewExecution_FreshIDsAndPendingStages(t *testing.T) {
	def := models.PipelineDefinition{Stages: []models.StageDefinition{
		{RefID: "1", Type: "bake", Name: "Bake", Context: map[string]any{"region": "us-east-1"}},
		{RefID: "2", Type: "deploy", Name: "Deploy", RequisiteStageRefIDs: []string{"1"}},
	}}

	first := NewExecution(uuid.New(), def, "manual")
	second := NewExecution(uuid.New(), def, "manual")

	if first.Status != StatusPending {
		t.Fatalf("execution status = %s, want pending", first.Status)
	}
	if len(first.Stages) != 2 {
		t.Fatalf("got %d stages, want 2", len(first.Stages))
	}
	for i, s := range first.Stages {
		if s.Status != StatusPending {
			t.Errorf("stage %d status = %s, want pending", i, s.Status)
		}
		if s.ID == second.Stages[i].ID {
			t.Errorf("stage %d shares its physical ID across executions", i)
		}
	}
}

func TestNewExecution_ContextMutationsDoNotLeakIntoDefinition(t *testing.T) {
	def := models.PipelineDefinition{Stages: []models.StageDefinition{
		{RefID: "1", Type: "bake", Name: "Bake", Context: map[string]any{"region": "us-east-1"}},
	}}

	exec := NewExecution(uuid.New(), def, "api")
	exec.Stages[0].Context["amiSuffix"] = "20260830120000"

	if _, leaked := def.Stages[0].Context["amiSuffix"]; leaked {
		t.Fatal("stage context mutation leaked into the pipeline definition")
	}
}

func TestStagesByRefID_ReturnsWholeGroupInOrder(t *testing.T) {
	exec := &Execution{Stages: []*Stage{
		{ID: uuid.New(), RefID: "1", Name: "parent"},
		{ID: uuid.New(), RefID: "2", Name: "other"},
		{ID: uuid.New(), RefID: "1", Name: "child-a"},
		{ID: uuid.New(), RefID: "1", Name: "child-b"},
	}}

	group := exec.StagesByRefID("1")
	if len(group) != 3 {
		t.Fatalf("got %d stages, want 3", len(group))
	}
	if group[0].Name != "parent" || group[1].Name != "child-a" || group[2].Name != "child-b" {
		t.Fatalf("group out of graph order: %s, %s, %s", group[0].Name, group[1].Name, group[2].Name)
	}
}

func TestRefIDs_FirstSeenOrderWithoutDuplicates(t *testing.T) {
	exec := &Execution{Stages: []*Stage{
		{RefID: "2"},
		{RefID: "1"},
		{RefID: "2"},
		{RefID: "3"},
	}}

	if got, want := exec.RefIDs(), []string{"2", "1", "3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestStageByID(t *testing.T) {
	target := &Stage{ID: uuid.New(), Name: "wanted"}
	exec := &Execution{Stages: []*Stage{{ID: uuid.New()}, target}}

	if got := exec.StageByID(target.ID); got != target {
		t.Fatalf("got %v, want the matching stage", got)
	}
	if got := exec.StageByID(uuid.New()); got != nil {
		t.Fatalf("got %v for unknown ID, want nil", got)
	}
}
