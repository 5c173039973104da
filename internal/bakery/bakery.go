package bakery

import (
	"context"
	"fmt"
	"hash/fnv"
)

// BakeRequest describes one machine image to produce.
type BakeRequest struct {
	CloudProvider string
	Region        string
	AmiSuffix     string
	PackageName   string
	BaseOS        string
}

// BakeResult is the bakery's response contract: at minimum the region baked
// in and the resulting image identifier.
type BakeResult struct {
	Region    string
	Ami       string
	ImageName string
}

// Bakery produces immutable machine images. Implementations talk to an
// external image-bakery service; how they do so is outside this package.
type Bakery interface {
	Bake(ctx context.Context, req BakeRequest) (BakeResult, error)
}

// Stub is an in-process Bakery producing deterministic image IDs. It backs
// the default worker wiring and tests; two identical requests always yield
// the same ami.
type Stub struct{}

func NewStub() *Stub { return &Stub{} }

func (s *Stub) Bake(_ context.Context, req BakeRequest) (BakeResult, error) {
	if req.Region == "" {
		return BakeResult{}, fmt.Errorf("bake request missing region")
	}

	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%s|%s|%s", req.CloudProvider, req.Region, req.PackageName, req.BaseOS, req.AmiSuffix)

	name := req.PackageName
	if name == "" {
		name = "all"
	}
	if req.AmiSuffix != "" {
		name = name + "-" + req.AmiSuffix
	}

	return BakeResult{
		Region:    req.Region,
		Ami:       fmt.Sprintf("ami-%012x", h.Sum64()&0xffffffffffff),
		ImageName: name,
	}, nil
}
