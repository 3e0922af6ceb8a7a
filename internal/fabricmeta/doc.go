// Package fabricmeta resolves the target version pair for a release.
//
// It queries the Fabric loader metadata service for the latest stable loader
// version with bounded timeout and retry, and combines the result with the
// currently recorded pair. Lookup failures degrade to the previous loader
// version with a warning instead of aborting the pipeline.
package fabricmeta
