// Package cadobr consolidates the documents extracted from the CAD-OBR land
// registry archives: property deeds, bank contracts, debt instruments and
// company charters.
//
// The consolidation runs as a pipeline of stages, each reading a tree of JSON
// documents and writing another:
//   - Normalization: rewrites amounts, dates, tax ids and document numbers in a
//     single canonical form, keeping every other field untouched.
//   - Valuation: adds to every lien of a property deed its present value,
//     see package monetary.
//   - Reconciliation: resolves parties, properties and operations into stable
//     identities and links them, see package reconcile.
//
// This package holds what the stages share: the document model and its lenient
// decoding, the canonical amount format, and the walking of document trees.
package cadobr
