package handler

import (
	"regexp"

	"github.com/maraichr/conveyor/internal/bake"
	"github.com/maraichr/conveyor/internal/engine"
	"github.com/maraichr/conveyor/pkg/apierr"
	"github.com/maraichr/conveyor/pkg/models"
)

var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,61}[a-z0-9]$`)

func validateSlug(slug string) *apierr.Error {
	if slug == "" {
		return apierr.SlugRequired()
	}
	if !slugRegex.MatchString(slug) {
		return apierr.SlugInvalid()
	}
	return nil
}

func validateName(name string) *apierr.Error {
	if name == "" {
		return apierr.NameRequired()
	}
	if len(name) > 255 {
		return apierr.NameTooLong()
	}
	return nil
}

// validateDefinition rejects malformed pipeline definitions before anything
// is stored or executed. Bake stages must declare cloudProviderType here —
// region resolution assumes it is present and never re-checks.
func validateDefinition(def models.PipelineDefinition) *apierr.Error {
	if len(def.Stages) == 0 {
		return apierr.StagesRequired()
	}

	refIDs := make(map[string]bool, len(def.Stages))
	for _, sd := range def.Stages {
		if sd.RefID == "" {
			return apierr.StageRefIDRequired()
		}
		if refIDs[sd.RefID] {
			return apierr.DuplicateStageRefID(sd.RefID)
		}
		refIDs[sd.RefID] = true

		if sd.Type == "" {
			return apierr.StageTypeRequired(sd.RefID)
		}
		if sd.Type == engine.StageTypeBake {
			provider, _ := sd.Context[bake.ContextCloudProvider].(string)
			if provider == "" {
				return apierr.CloudProviderRequired(sd.RefID)
			}
		}
	}

	for _, sd := range def.Stages {
		for _, req := range sd.RequisiteStageRefIDs {
			if !refIDs[req] {
				return apierr.UnknownRequisiteRefID(sd.RefID, req)
			}
		}
	}

	return nil
}
