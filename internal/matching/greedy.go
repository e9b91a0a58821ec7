package matching

import (
	"context"
	"fmt"
	"log"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/stefan/catalog-agent/internal/normalize"
	"github.com/stefan/catalog-agent/internal/similarity"
	"github.com/stefan/catalog-agent/internal/types"
)

// Default greedy-matcher parameters.
const (
	DefaultTopK           = 5
	DefaultTitleThreshold = 0.5
	DefaultSpecThreshold  = 0.8
)

// progressInterval controls how often the greedy matcher logs progress in
// verbose mode.
const progressInterval = 500

// minSpecTextLength is the spec-text length both sides must exceed before
// the token-overlap guard applies.
const minSpecTextLength = 10

// GreedyMatcher matches on blended embedding similarity. For each A record
// it restricts candidates to the TopK most title-similar B records, applies
// thresholds and the token-overlap guard, and commits the highest
// combined-score survivor exclusively. Given a deterministic Embedder the
// output is fully deterministic.
type GreedyMatcher struct {
	Embedder       similarity.Embedder
	TopK           int
	TitleThreshold float64
	SpecThreshold  float64
	Verbose        bool
}

// NewGreedyMatcher returns a GreedyMatcher with default parameters.
func NewGreedyMatcher(embedder similarity.Embedder) *GreedyMatcher {
	return &GreedyMatcher{
		Embedder:       embedder,
		TopK:           DefaultTopK,
		TitleThreshold: DefaultTitleThreshold,
		SpecThreshold:  DefaultSpecThreshold,
	}
}

// Match implements Matcher.
func (m *GreedyMatcher) Match(ctx context.Context, a, b *types.Catalog) ([]Match, error) {
	if a.Len() == 0 || b.Len() == 0 {
		return nil, nil
	}
	if m.Embedder == nil {
		return nil, fmt.Errorf("greedy matcher requires an embedder")
	}

	titleA, titleB, err := similarity.EmbedBoth(ctx, m.Embedder, a.Titles(), b.Titles())
	if err != nil {
		return nil, fmt.Errorf("embedding titles: %w", err)
	}
	titleSim, err := similarity.Matrix(titleA, titleB)
	if err != nil {
		return nil, fmt.Errorf("title similarity matrix: %w", err)
	}

	specA, specB, err := similarity.EmbedBoth(ctx, m.Embedder, a.Specs(), b.Specs())
	if err != nil {
		return nil, fmt.Errorf("embedding specs: %w", err)
	}
	specVecsA := make([]*mat.VecDense, len(specA))
	for i, v := range specA {
		specVecsA[i] = similarity.Vec(v)
	}
	specVecsB := make([]*mat.VecDense, len(specB))
	for j, v := range specB {
		specVecsB[j] = similarity.Vec(v)
	}

	claimed := make(map[int]bool, b.Len())
	var matches []Match

	for i := range a.Records {
		recA := &a.Records[i]
		candidates := topKByRow(titleSim, i, m.TopK)

		bestJ := -1
		var bestTitle, bestSpec float64
		bestCombined := -1.0

		for _, j := range candidates {
			if claimed[j] {
				continue
			}

			titleScore := titleSim.At(i, j)
			// Candidates are sorted by descending title similarity, so
			// everything after the first sub-threshold one is worse too.
			if titleScore < m.TitleThreshold {
				break
			}

			specScore := similarity.Cosine(specVecsA[i], specVecsB[j])
			if specScore < m.SpecThreshold {
				continue
			}

			recB := &b.Records[j]
			if len(recA.SpecsClean) > minSpecTextLength && len(recB.SpecsClean) > minSpecTextLength &&
				normalize.SharesNoModelToken(recA.SpecsClean, recB.SpecsClean) {
				continue
			}

			combined := (titleScore + specScore) / 2.0
			if combined > bestCombined {
				bestCombined = combined
				bestJ = j
				bestTitle = titleScore
				bestSpec = specScore
			}
		}

		if bestJ >= 0 {
			claimed[bestJ] = true
			matches = append(matches, Match{
				A:          recA,
				B:          &b.Records[bestJ],
				TitleScore: bestTitle,
				SpecScore:  bestSpec,
				Score:      bestCombined,
				Type:       MatchEmbeddingBlend,
			})
		}

		if m.Verbose && (i+1)%progressInterval == 0 {
			log.Printf("[MATCH] processed %d/%d records from %s, %d matches so far", i+1, a.Len(), a.Name, len(matches))
		}
	}

	return matches, nil
}

// topKByRow returns the column indices of the k largest entries in row i,
// in descending value order. Ties keep ascending column order so the
// traversal is stable regardless of map or sort internals.
func topKByRow(m *mat.Dense, i, k int) []int {
	_, cols := m.Dims()
	idx := make([]int, cols)
	for j := range idx {
		idx[j] = j
	}
	sort.SliceStable(idx, func(x, y int) bool {
		return m.At(i, idx[x]) > m.At(i, idx[y])
	})
	if k < len(idx) {
		idx = idx[:k]
	}
	return idx
}
