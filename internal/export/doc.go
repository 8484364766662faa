// Package export flattens a review session's annotation state into the
// tabular CSV dump handed back to the dataset pipeline.
package export
