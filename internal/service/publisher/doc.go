// Package publisher decides whether a staged release needs publishing and
// pushes it to its channel.
//
// Two modes exist: a diff-aware direct publish of a mirror working copy
// (clean tree means NoChanges, never an empty commit), and a branch promotion
// workflow that commits the working branch, merges it into the primary
// branch, pushes, and always restores the original branch, best effort, no
// matter where the sequence failed.
package publisher
