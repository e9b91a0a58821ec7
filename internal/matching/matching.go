// Package matching pairs equivalent products across two retailer catalogs.
// Two independent strategies are provided behind the Matcher interface: an
// embedding-based greedy matcher blending title and spec similarity, and a
// two-phase field matcher keyed on exact model name and category. Both are
// greedy and order-dependent on purpose: catalog A's iteration order steers
// traversal, and earlier A records get first claim on B candidates. Matched
// records are claimed exclusively, so no record appears in more than one
// committed pair per run.
package matching

import (
	"context"

	"github.com/stefan/catalog-agent/internal/types"
)

// MatchType tags which strategy committed a pair.
type MatchType string

const (
	// MatchEmbeddingBlend marks a pair committed on blended title/spec
	// embedding similarity.
	MatchEmbeddingBlend MatchType = "embedding-blend"
	// MatchExactModelAndCategory marks a phase-1 field match on identical
	// normalized model name and category.
	MatchExactModelAndCategory MatchType = "exact-model-and-category"
	// MatchCategoryAndSpecs marks a phase-2 field match on shared category
	// and spec overlap above threshold.
	MatchCategoryAndSpecs MatchType = "category-and-specs"
)

// Match is one committed cross-catalog pair.
type Match struct {
	A *types.NormalizedRecord
	B *types.NormalizedRecord

	// TitleScore and SpecScore hold the component similarities on the
	// embedding path; the field path reports only SpecScore (spec overlap).
	TitleScore float64
	SpecScore  float64

	// Score is the combined score: mean of title and spec similarity for
	// the embedding path, the spec-overlap fraction for the field path.
	Score float64

	Type MatchType
}

// Matcher produces a best-effort 1:1 correspondence between two catalogs.
// Catalogs are read-only for the duration of a run; the result is a fresh
// slice with no ordering guarantee beyond catalog A steering traversal.
type Matcher interface {
	Match(ctx context.Context, a, b *types.Catalog) ([]Match, error)
}
