package ranking

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"

	"github.com/mr1hm/siting-dashboard/internal/models"
)

func scored(id string, score int) models.Site {
	return models.Site{ID: id, Name: id, ViabilityScore: score}
}

func ids(sites []models.Site) []string {
	out := make([]string, 0, len(sites))
	for _, s := range sites {
		out = append(out, s.ID)
	}
	return out
}

func TestScoreColorClass_Boundaries(t *testing.T) {
	cases := []struct {
		score int
		want  ColorClass
	}{
		{100, ColorHigh},
		{80, ColorHigh},
		{79, ColorMedium},
		{60, ColorMedium},
		{59, ColorLow},
		{0, ColorLow},
		{-5, ColorLow},
		{120, ColorHigh},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprint(tc.score), func(t *testing.T) {
			assert.Equal(t, tc.want, ScoreColorClass(tc.score))
		})
	}
}

func TestHotOpportunities_DefaultThreshold(t *testing.T) {
	sites := []models.Site{scored("A", 90), scored("B", 82), scored("C", 75)}

	got := HotOpportunities(sites, DefaultHotThreshold)
	assert.Equal(t, []string{"A", "B"}, ids(got))
}

func TestHotOpportunities_SortsDescendingWithStableTies(t *testing.T) {
	sites := []models.Site{
		scored("low", 81),
		scored("tie1", 90),
		scored("top", 99),
		scored("tie2", 90),
		scored("skip", 40),
		scored("tie3", 90),
	}

	got := HotOpportunities(sites, 80)
	assert.Equal(t, []string{"top", "tie1", "tie2", "tie3", "low"}, ids(got))
}

func TestHotOpportunities_CustomThreshold(t *testing.T) {
	sites := []models.Site{scored("A", 65), scored("B", 59), scored("C", 70)}

	assert.Equal(t, []string{"C", "A"}, ids(HotOpportunities(sites, 60)))
	assert.Empty(t, HotOpportunities(sites, 95))
}

func TestHotOpportunities_LeavesInputUntouched(t *testing.T) {
	sites := []models.Site{scored("A", 81), scored("B", 95)}

	_ = HotOpportunities(sites, 80)
	assert.Equal(t, []string{"A", "B"}, ids(sites))
}

func TestHotOpportunities_Empty(t *testing.T) {
	got := HotOpportunities(nil, DefaultHotThreshold)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAnnotate(t *testing.T) {
	got := Annotate([]models.Site{scored("A", 59), scored("B", 80), scored("C", 60)})

	assert.Len(t, got, 3)
	assert.Equal(t, "A", got[0].Site.ID)
	assert.Equal(t, ColorLow, got[0].ColorClass)
	assert.Equal(t, ColorHigh, got[1].ColorClass)
	assert.Equal(t, ColorMedium, got[2].ColorClass)
}

func TestHotOpportunities_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	// Scores come from a narrow range so ties are common.
	toSites := func(scores []int) []models.Site {
		sites := make([]models.Site, len(scores))
		for i, s := range scores {
			sites[i] = scored(fmt.Sprintf("s%03d", i), s)
		}
		return sites
	}

	properties.Property("only scores at or above the threshold", prop.ForAll(
		func(scores []int, threshold int) bool {
			for _, s := range HotOpportunities(toSites(scores), threshold) {
				if s.ViabilityScore < threshold {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(70, 100)),
		gen.IntRange(0, 100),
	))

	properties.Property("nothing at or above the threshold is dropped", prop.ForAll(
		func(scores []int, threshold int) bool {
			want := 0
			for _, s := range scores {
				if s >= threshold {
					want++
				}
			}
			return len(HotOpportunities(toSites(scores), threshold)) == want
		},
		gen.SliceOf(gen.IntRange(70, 100)),
		gen.IntRange(0, 100),
	))

	properties.Property("descending by score, ties in input order", prop.ForAll(
		func(scores []int, threshold int) bool {
			got := HotOpportunities(toSites(scores), threshold)
			for i := 1; i < len(got); i++ {
				prev, cur := got[i-1], got[i]
				if prev.ViabilityScore < cur.ViabilityScore {
					return false
				}
				// ids are zero-padded input positions
				if prev.ViabilityScore == cur.ViabilityScore && prev.ID > cur.ID {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(70, 100)),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
