package bake

import (
	"sort"

	"github.com/maraichr/conveyor/internal/pipeline"
)

// RegionSource is a (cloudProvider, region) descriptor derived from a
// deploy-style stage context. Descriptors are computed fresh on every
// collection; they are never stored.
type RegionSource struct {
	CloudProvider string
	Region        string
}

// sourceShapes enumerates the context shapes a stage may use to declare
// target regions: a bare cloudProvider+availabilityZones map at the top
// level, the same map nested under "cluster", or a "clusters" list of such
// maps. One extractor per shape; adding a shape means adding an entry here.
var sourceShapes = []func(*pipeline.Stage) []RegionSource{
	topLevelSource,
	clusterSource,
	clustersSource,
}

// CollectDeployRegions scans every stage of exec except the reference stage
// and returns the distinct region descriptors their contexts express.
// First-seen order is preserved and duplicates are suppressed. Provider
// filtering is intentionally NOT applied here; the resolver filters against
// the bake stage's provider. The collection is read-only.
func CollectDeployRegions(exec *pipeline.Execution, ref *pipeline.Stage) []RegionSource {
	var out []RegionSource
	seen := make(map[RegionSource]bool)
	for _, stage := range exec.Stages {
		if ref != nil && stage.ID == ref.ID {
			continue
		}
		for _, src := range StageRegionSources(stage) {
			if !seen[src] {
				seen[src] = true
				out = append(out, src)
			}
		}
	}
	return out
}

// StageRegionSources extracts the region descriptors a single stage's context
// expresses under any of the recognized shapes.
func StageRegionSources(stage *pipeline.Stage) []RegionSource {
	var out []RegionSource
	for _, extract := range sourceShapes {
		out = append(out, extract(stage)...)
	}
	return out
}

func topLevelSource(stage *pipeline.Stage) []RegionSource {
	return zoneRegions(stage.Context)
}

func clusterSource(stage *pipeline.Stage) []RegionSource {
	if cluster := stage.ContextMap("cluster"); cluster != nil {
		return zoneRegions(cluster)
	}
	return nil
}

func clustersSource(stage *pipeline.Stage) []RegionSource {
	var out []RegionSource
	for _, cluster := range stage.ContextMaps("clusters") {
		out = append(out, zoneRegions(cluster)...)
	}
	return out
}

// zoneRegions reads the cloudProvider+availabilityZones shape from one map.
// availabilityZones maps region name to a zone list; the regions are its
// keys. Keys are sorted so JSON-decoded contexts yield a stable order.
func zoneRegions(m map[string]any) []RegionSource {
	zones, ok := m["availabilityZones"].(map[string]any)
	if !ok || len(zones) == 0 {
		return nil
	}
	provider, _ := m["cloudProvider"].(string)

	regions := make([]string, 0, len(zones))
	for region := range zones {
		regions = append(regions, region)
	}
	sort.Strings(regions)

	out := make([]RegionSource, 0, len(regions))
	for _, region := range regions {
		out = append(out, RegionSource{CloudProvider: provider, Region: region})
	}
	return out
}
