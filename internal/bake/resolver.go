package bake

import (
	"github.com/maraichr/conveyor/internal/pipeline"
)

// Well-known bake stage context keys.
const (
	ContextCloudProvider = "cloudProviderType"
	ContextRegion        = "region"
	ContextRegions       = "regions"
	ContextAmiSuffix     = "amiSuffix"
	ContextPackageName   = "package"
	ContextBaseOS        = "baseOs"
)

// GlobalRegion marks a provider-global bake; such bakes ignore per-zone
// deploy targets entirely.
const GlobalRegion = "global"

// amiTimestampLayout renders the clock instant as a fixed-width 14-digit
// UTC timestamp, e.g. "19700101011512".
const amiTimestampLayout = "20060102150405"

// Resolution is the resolver's output: the canonical ordered region list and
// the version token shared by every child of the expansion.
type Resolution struct {
	CloudProvider string
	Regions       []string
	AmiSuffix     string
}

// Resolve computes the final region set and amiSuffix for one bake stage.
//
// Seed precedence: the context "regions" list (null/empty entries dropped,
// listed order kept) wins over the singular "region" field. The seed is then
// unioned with the collected descriptors whose originating provider equals
// this bake's cloudProviderType; cross-provider descriptors are dropped.
// First-seen order wins, seed entries first, so the collector never reorders
// an explicit list. A singular region of "global" suppresses the union.
//
// An explicitly set, non-empty amiSuffix passes through verbatim — degenerate
// values such as punctuation-only strings are deliberate cache-busters. An
// absent or empty suffix falls back to the injected clock.
//
// Resolve assumes cloudProviderType is present (validated by the caller
// before resolution), performs no side effects, and is idempotent for a
// fixed clock reading.
func Resolve(bakeStage *pipeline.Stage, collected []RegionSource, clock Clock) Resolution {
	provider := bakeStage.ContextString(ContextCloudProvider)

	seed := bakeStage.ContextStrings(ContextRegions)
	global := false
	if len(seed) == 0 {
		if region := bakeStage.ContextString(ContextRegion); region != "" {
			seed = []string{region}
			global = region == GlobalRegion
		}
	}

	regions := make([]string, 0, len(seed)+len(collected))
	seen := make(map[string]bool, len(seed)+len(collected))
	for _, region := range seed {
		if !seen[region] {
			seen[region] = true
			regions = append(regions, region)
		}
	}
	if !global {
		for _, src := range collected {
			if src.CloudProvider != provider {
				continue
			}
			if !seen[src.Region] {
				seen[src.Region] = true
				regions = append(regions, src.Region)
			}
		}
	}

	suffix := bakeStage.ContextString(ContextAmiSuffix)
	if suffix == "" {
		suffix = clock.Now().UTC().Format(amiTimestampLayout)
	}

	return Resolution{
		CloudProvider: provider,
		Regions:       regions,
		AmiSuffix:     suffix,
	}
}
