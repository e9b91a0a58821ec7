package matching

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stefan/catalog-agent/internal/types"
)

func TestSpecOverlapScore(t *testing.T) {
	tests := []struct {
		name   string
		specs1 map[string]string
		specs2 map[string]string
		want   float64
	}{
		{
			name:   "identical",
			specs1: map[string]string{"a": "1", "b": "2"},
			specs2: map[string]string{"a": "1", "b": "2"},
			want:   1.0,
		},
		{
			name:   "case and whitespace insensitive",
			specs1: map[string]string{"color": " Black "},
			specs2: map[string]string{"color": "black"},
			want:   1.0,
		},
		{
			name:   "half overlap",
			specs1: map[string]string{"a": "1", "b": "2"},
			specs2: map[string]string{"a": "1", "b": "3"},
			want:   0.5,
		},
		{
			name:   "missing key counts against union",
			specs1: map[string]string{"a": "1"},
			specs2: map[string]string{"a": "1", "b": "2"},
			want:   0.5,
		},
		{
			name:   "fully disjoint values",
			specs1: map[string]string{"color": "black"},
			specs2: map[string]string{"color": "white"},
			want:   0.0,
		},
		{
			name:   "either side empty",
			specs1: map[string]string{},
			specs2: map[string]string{"a": "1"},
			want:   0.0,
		},
		{
			name:   "both nil",
			specs1: nil,
			specs2: nil,
			want:   0.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, SpecOverlapScore(tt.specs1, tt.specs2), 1e-9)
		})
	}
}

func TestTwoPhaseMatcher_ModelNameWinsRegardlessOfSpecScore(t *testing.T) {
	// Same model name and category pair up in phase 1 even when the spec
	// maps disagree on every key.
	a := testCatalog("store1", types.CatalogRecord{
		ID: "a0", Title: "RTX 4070 Gaming OC",
		ModelName: "RTX 4070", Category: "Graphics Card",
		RawSpecs: `{"memory":"12GB","boost":"2565MHz"}`,
	})
	b := testCatalog("store2", types.CatalogRecord{
		ID: "b0", Title: "Gigabyte RTX4070",
		ModelName: "rtx-4070", Category: "Graphics Card",
		RawSpecs: `{"memory":"12 GB GDDR6X","boost":"2490 MHz"}`,
	})

	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchExactModelAndCategory, matches[0].Type)
	assert.InDelta(t, 0.0, matches[0].Score, 1e-9)
}

func TestTwoPhaseMatcher_ModelNameRequiresSameCategory(t *testing.T) {
	a := testCatalog("store1", types.CatalogRecord{
		ID: "a0", ModelName: "X100", Category: "Monitor",
		RawSpecs: `{"size":"27"}`,
	})
	b := testCatalog("store2", types.CatalogRecord{
		ID: "b0", ModelName: "X100", Category: "Television",
		RawSpecs: `{"size":"27"}`,
	})

	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTwoPhaseMatcher_EmptyModelNameSkipsPhaseOne(t *testing.T) {
	// Records without a model name never pair in phase 1, even against
	// other empty-model-name records.
	a := testCatalog("store1", types.CatalogRecord{
		ID: "a0", Category: "Mouse",
		RawSpecs: `{"dpi":"1600","buttons":"6"}`,
	})
	b := testCatalog("store2", types.CatalogRecord{
		ID: "b0", Category: "Mouse",
		RawSpecs: `{"dpi":"1600","buttons":"6"}`,
	})

	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, MatchCategoryAndSpecs, matches[0].Type, "identical specs pair in phase 2, not phase 1")
}

func TestTwoPhaseMatcher_BestOverlapAmongModelGroup(t *testing.T) {
	a := testCatalog("store1", types.CatalogRecord{
		ID: "a0", ModelName: "K500", Category: "Keyboard",
		RawSpecs: `{"layout":"US","switch":"red","backlight":"rgb"}`,
	})
	b := testCatalog("store2",
		types.CatalogRecord{
			ID: "b0", ModelName: "K500", Category: "Keyboard",
			RawSpecs: `{"layout":"US","switch":"blue","backlight":"none"}`,
		},
		types.CatalogRecord{
			ID: "b1", ModelName: "K500", Category: "Keyboard",
			RawSpecs: `{"layout":"US","switch":"red","backlight":"rgb"}`,
		},
	)

	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "b1", matches[0].B.ID)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestTwoPhaseMatcher_PhaseOneConsumesCandidates(t *testing.T) {
	spec := `{"layout":"US"}`
	a := testCatalog("store1",
		types.CatalogRecord{ID: "a0", ModelName: "K500", Category: "Keyboard", RawSpecs: spec},
		types.CatalogRecord{ID: "a1", ModelName: "K500", Category: "Keyboard", RawSpecs: spec},
	)
	b := testCatalog("store2",
		types.CatalogRecord{ID: "b0", ModelName: "K500", Category: "Keyboard", RawSpecs: spec},
		types.CatalogRecord{ID: "b1", ModelName: "K500", Category: "Keyboard", RawSpecs: spec},
	)

	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.NotEqual(t, matches[0].B.ID, matches[1].B.ID)
	assert.Equal(t, "b0", matches[0].B.ID, "ties resolve to the first candidate in catalog order")
}

func TestTwoPhaseMatcher_PhaseTwoStrictThreshold(t *testing.T) {
	// 4 of 5 union keys agree: overlap exactly 0.8. The phase-2 bar is
	// strict, so the pair must not commit at the default threshold.
	specsA := `{"a":"1","b":"2","c":"3","d":"4","e":"5"}`
	atBar := `{"a":"1","b":"2","c":"3","d":"4","e":"x"}`
	aboveBar := `{"a":"1","b":"2","c":"3","d":"4","e":"5"}`

	a := testCatalog("store1", types.CatalogRecord{ID: "a0", Category: "SSD", RawSpecs: specsA})

	b := testCatalog("store2", types.CatalogRecord{ID: "b0", Category: "SSD", RawSpecs: atBar})
	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	assert.Empty(t, matches)

	b = testCatalog("store2", types.CatalogRecord{ID: "b0", Category: "SSD", RawSpecs: aboveBar})
	matches, err = NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].Score, 1e-9)
}

func TestTwoPhaseMatcher_DivergentSingleKeyNeverMatches(t *testing.T) {
	// One shared key with different values scores 0 of 1, far below the
	// phase-2 bar.
	a := testCatalog("store1", types.CatalogRecord{ID: "a0", Category: "Case", RawSpecs: `{"color":"black"}`})
	b := testCatalog("store2", types.CatalogRecord{ID: "b0", Category: "Case", RawSpecs: `{"color":"white"}`})

	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTwoPhaseMatcher_PhaseTwoRequiresSameCategory(t *testing.T) {
	spec := `{"size":"27"}`
	a := testCatalog("store1", types.CatalogRecord{ID: "a0", Category: "Monitor", RawSpecs: spec})
	b := testCatalog("store2", types.CatalogRecord{ID: "b0", Category: "Television", RawSpecs: spec})

	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestTwoPhaseMatcher_ClaimedRecordsStayClaimed(t *testing.T) {
	spec := `{"dpi":"1600"}`
	a := testCatalog("store1",
		types.CatalogRecord{ID: "a0", ModelName: "M1", Category: "Mouse", RawSpecs: spec},
		types.CatalogRecord{ID: "a1", Category: "Mouse", RawSpecs: spec},
	)
	// Single B record: phase 1 consumes it for a0, so a1 finds nothing in
	// phase 2 despite a perfect spec overlap.
	b := testCatalog("store2",
		types.CatalogRecord{ID: "b0", ModelName: "M1", Category: "Mouse", RawSpecs: spec},
	)

	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "a0", matches[0].A.ID)
	assert.Equal(t, MatchExactModelAndCategory, matches[0].Type)
}

func TestTwoPhaseMatcher_UnparsableSpecsNeverMatchPhaseTwo(t *testing.T) {
	a := testCatalog("store1", types.CatalogRecord{ID: "a0", Category: "Mouse", RawSpecs: "free text"})
	b := testCatalog("store2", types.CatalogRecord{ID: "b0", Category: "Mouse", RawSpecs: "free text"})

	matches, err := NewTwoPhaseMatcher().Match(context.Background(), a, b)
	require.NoError(t, err)
	assert.Empty(t, matches, "opaque spec text has no key map, so overlap is 0")
}

func TestRemove(t *testing.T) {
	assert.Equal(t, []int{1, 3}, remove([]int{1, 2, 3}, 2))
	assert.Equal(t, []int{1, 2, 3}, remove([]int{1, 2, 3}, 9))
	assert.Empty(t, remove([]int{5}, 5))
}
