package matching

import (
	"context"
	"strings"

	"github.com/stefan/catalog-agent/internal/types"
)

// DefaultOverlapThreshold is the phase-2 spec-overlap bar.
const DefaultOverlapThreshold = 0.8

// TwoPhaseMatcher matches on normalized identity fields instead of
// embeddings. Phase 1 pairs records with an identical normalized model name
// and category, taking the best spec overlap among ties. Phase 2 pairs the
// remainder by category alone when spec overlap strictly clears the
// threshold. Precision-first: the cheap, unambiguous key is exhausted before
// any fuzzy comparison runs.
type TwoPhaseMatcher struct {
	SpecThreshold float64
}

// NewTwoPhaseMatcher returns a TwoPhaseMatcher with the default threshold.
func NewTwoPhaseMatcher() *TwoPhaseMatcher {
	return &TwoPhaseMatcher{SpecThreshold: DefaultOverlapThreshold}
}

// SpecOverlapScore scores two structured spec maps by the fraction of keys,
// over the union of both key sets, whose values compare equal
// case-insensitively after trimming. A key missing on one side counts as a
// non-match for that key. Either map empty scores 0; an empty union scores 1.
func SpecOverlapScore(specs1, specs2 map[string]string) float64 {
	if len(specs1) == 0 || len(specs2) == 0 {
		return 0
	}
	union := make(map[string]struct{}, len(specs1)+len(specs2))
	for k := range specs1 {
		union[k] = struct{}{}
	}
	for k := range specs2 {
		union[k] = struct{}{}
	}
	if len(union) == 0 {
		return 1
	}
	matching := 0
	for k := range union {
		v1, ok1 := specs1[k]
		v2, ok2 := specs2[k]
		if !ok1 || !ok2 {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(v1), strings.TrimSpace(v2)) {
			matching++
		}
	}
	return float64(matching) / float64(len(union))
}

// Match implements Matcher. Records transition unclaimed to claimed exactly
// once across both phases.
func (m *TwoPhaseMatcher) Match(_ context.Context, a, b *types.Catalog) ([]Match, error) {
	threshold := m.SpecThreshold
	if threshold == 0 {
		threshold = DefaultOverlapThreshold
	}

	// Phase 1: exact normalized model name, same normalized category.
	modelGroups := make(map[string][]int)
	for j := range b.Records {
		key := b.Records[j].NormModelName
		modelGroups[key] = append(modelGroups[key], j)
	}

	var matches []Match
	var leftoverA []int
	claimedB := make(map[int]bool, b.Len())

	for i := range a.Records {
		recA := &a.Records[i]
		group := modelGroups[recA.NormModelName]
		if recA.NormModelName == "" || len(group) == 0 {
			leftoverA = append(leftoverA, i)
			continue
		}

		bestJ := -1
		bestScore := -1.0
		for _, j := range group {
			if a.Records[i].NormCategory != b.Records[j].NormCategory {
				continue
			}
			// First encountered wins ties: only a strict improvement
			// replaces the running best.
			score := SpecOverlapScore(recA.SpecsMap, b.Records[j].SpecsMap)
			if score > bestScore {
				bestScore = score
				bestJ = j
			}
		}

		if bestJ < 0 {
			leftoverA = append(leftoverA, i)
			continue
		}

		claimedB[bestJ] = true
		modelGroups[recA.NormModelName] = remove(group, bestJ)
		matches = append(matches, Match{
			A:         recA,
			B:         &b.Records[bestJ],
			SpecScore: bestScore,
			Score:     bestScore,
			Type:      MatchExactModelAndCategory,
		})
	}

	// Phase 2: same category, spec overlap strictly above threshold,
	// over the records neither phase has consumed.
	categoryGroups := make(map[string][]int)
	for j := range b.Records {
		if claimedB[j] {
			continue
		}
		key := b.Records[j].NormCategory
		categoryGroups[key] = append(categoryGroups[key], j)
	}

	for _, i := range leftoverA {
		recA := &a.Records[i]
		group := categoryGroups[recA.NormCategory]

		bestJ := -1
		// The running best starts at the threshold itself, so only a score
		// strictly above it can commit and a later tie never overrides.
		bestScore := threshold
		for _, j := range group {
			if claimedB[j] {
				continue
			}
			score := SpecOverlapScore(recA.SpecsMap, b.Records[j].SpecsMap)
			if score > bestScore {
				bestScore = score
				bestJ = j
			}
		}

		if bestJ < 0 {
			continue
		}
		claimedB[bestJ] = true
		matches = append(matches, Match{
			A:         recA,
			B:         &b.Records[bestJ],
			SpecScore: bestScore,
			Score:     bestScore,
			Type:      MatchCategoryAndSpecs,
		})
	}

	return matches, nil
}

// remove returns group without the first occurrence of j.
func remove(group []int, j int) []int {
	for i, v := range group {
		if v == j {
			return append(group[:i:i], group[i+1:]...)
		}
	}
	return group
}
