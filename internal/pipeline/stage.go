package pipeline

import (
	"github.com/google/uuid"
)

// Stage is one physical node of an execution's stage graph. RefID is NOT
// unique per physical stage: all children fanned out from a parent stage share
// the parent's RefID, so dependency edges referencing that RefID resolve to
// the whole group.
type Stage struct {
	ID                   uuid.UUID      `json:"id"`
	RefID                string         `json:"refId"`
	Type                 string         `json:"type"`
	Name                 string         `json:"name"`
	RequisiteStageRefIDs []string       `json:"requisiteStageRefIds,omitempty"`
	Context              map[string]any `json:"context,omitempty"`
	Status               Status         `json:"status"`
	Outputs              map[string]any `json:"outputs,omitempty"`
}

// ContextString returns the string value stored under key, or "" when the key
// is absent or holds a non-string.
func (s *Stage) ContextString(key string) string {
	v, _ := s.Context[key].(string)
	return v
}

// ContextStrings returns the string entries of the list stored under key.
// JSON-decoded contexts hold []any; both that and []string are accepted.
// Null and empty entries are dropped.
func (s *Stage) ContextStrings(key string) []string {
	var out []string
	switch list := s.Context[key].(type) {
	case []string:
		for _, v := range list {
			if v != "" {
				out = append(out, v)
			}
		}
	case []any:
		for _, item := range list {
			if v, ok := item.(string); ok && v != "" {
				out = append(out, v)
			}
		}
	}
	return out
}

// ContextMap returns the nested map stored under key, or nil.
func (s *Stage) ContextMap(key string) map[string]any {
	v, _ := s.Context[key].(map[string]any)
	return v
}

// ContextMaps returns the list of nested maps stored under key.
func (s *Stage) ContextMaps(key string) []map[string]any {
	var out []map[string]any
	switch list := s.Context[key].(type) {
	case []map[string]any:
		return list
	case []any:
		for _, item := range list {
			if m, ok := item.(map[string]any); ok {
				out = append(out, m)
			}
		}
	}
	return out
}

// SetOutput records a single output value, allocating the map on first use.
func (s *Stage) SetOutput(key string, value any) {
	if s.Outputs == nil {
		s.Outputs = make(map[string]any)
	}
	s.Outputs[key] = value
}

// OutputString returns the string output stored under key, or "".
func (s *Stage) OutputString(key string) string {
	v, _ := s.Outputs[key].(string)
	return v
}
