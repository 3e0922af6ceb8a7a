package fabricmeta

import (
	"context"
	"fmt"
)

// LoaderLookup is the narrow dependency the resolver needs from the metadata client.
type LoaderLookup interface {
	LatestLoader(ctx context.Context) (string, error)
}

// VersionSpec is the immutable pair of pack versions: the game version and
// the loader version that boots it.
type VersionSpec struct {
	// Minecraft is the primary version, e.g. "1.21.11".
	Minecraft string
	// Loader is the secondary (Fabric loader) version, e.g. "0.18.4".
	Loader string
}

// Tag renders the version folder name used by the launcher,
// e.g. "fabric-loader-0.18.4-1.21.11".
func (s VersionSpec) Tag() string {
	return fmt.Sprintf("fabric-loader-%s-%s", s.Loader, s.Minecraft)
}

// Resolve determines the target version pair for an upgrade.
//
// An explicit primary version wins over the current one; the loader version is
// always re-derived from the metadata service. A lookup failure is not fatal:
// the current loader version is kept and a warning is returned instead of an
// error, so the pipeline continues with the previous-known-good value.
func Resolve(ctx context.Context, explicitPrimary string, current VersionSpec, lookup LoaderLookup) (VersionSpec, string) {
	next := current
	if explicitPrimary != "" {
		next.Minecraft = explicitPrimary
	}

	loader, err := lookup.LatestLoader(ctx)
	if err != nil || loader == "" {
		warning := fmt.Sprintf("loader version lookup failed, keeping %q: %v", current.Loader, err)
		return next, warning
	}

	next.Loader = loader

	return next, ""
}
