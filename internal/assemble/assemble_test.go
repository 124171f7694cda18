package assemble

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listing-tracker/internal/entity"
)

func strptr(s string) *string { return &s }

func TestParsePrice(t *testing.T) {
	assert.Equal(t, 850000.0, ParsePrice(strptr("$850,000")))
	assert.Equal(t, 1250000.5, ParsePrice(strptr("$1,250,000.50")))
	assert.Equal(t, 0.0, ParsePrice(nil))
	assert.Equal(t, 0.0, ParsePrice(strptr("Contact agent")))
}

func TestResolveLotSqft(t *testing.T) {
	t.Run("explicit sqft wins over acres", func(t *testing.T) {
		got := ResolveLotSqft(entity.ExtractedFields{
			SqftLot:  strptr("8,500"),
			LotAcres: strptr("2.0"),
		})
		require.NotNil(t, got)
		assert.Equal(t, int64(8500), *got)
	})

	t.Run("acreage converts exactly", func(t *testing.T) {
		got := ResolveLotSqft(entity.ExtractedFields{LotAcres: strptr("0.33")})
		require.NotNil(t, got)
		// round(0.33 * 43560) = 14375
		assert.Equal(t, int64(14375), *got)
	})

	t.Run("neither present", func(t *testing.T) {
		assert.Nil(t, ResolveLotSqft(entity.ExtractedFields{}))
	})
}

func TestSampleImages(t *testing.T) {
	t.Run("zero images yields placeholder", func(t *testing.T) {
		got := SampleImages(nil, 5)
		assert.Equal(t, []string{PlaceholderImage}, got)
	})

	t.Run("one or two images pass through unchanged", func(t *testing.T) {
		in := []string{"https://x.test/a.jpg", "https://x.test/b.jpg"}
		assert.Equal(t, in, SampleImages(in, 5))
	})

	t.Run("large sets sample down to the cap without duplicates", func(t *testing.T) {
		in := make([]string, 9)
		for i := range in {
			in[i] = "https://x.test/" + string(rune('a'+i)) + ".jpg"
		}
		inSet := map[string]bool{}
		for _, u := range in {
			inSet[u] = true
		}

		got := SampleImages(in, 5)
		require.Len(t, got, 5)
		seen := map[string]bool{}
		for _, u := range got {
			assert.True(t, inSet[u], "sampled URL not drawn from input: %s", u)
			assert.False(t, seen[u], "duplicate in sample: %s", u)
			seen[u] = true
		}
	})

	t.Run("three images with cap five keeps all three", func(t *testing.T) {
		in := []string{"https://x.test/a.jpg", "https://x.test/b.jpg", "https://x.test/c.jpg"}
		got := SampleImages(in, 5)
		assert.ElementsMatch(t, in, got)
	})
}

func TestGenerateDisplayID(t *testing.T) {
	re := regexp.MustCompile(`^REF-[A-Z0-9]{5}$`)
	for i := 0; i < 50; i++ {
		id := GenerateDisplayID()
		assert.Regexp(t, re, id)
	}
}

func TestAssemble(t *testing.T) {
	fields := entity.ExtractedFields{
		Price:       strptr("$425,000"),
		Address:     strptr("12 Palm Ln, Gilbert, AZ 85234"),
		Region:      strptr("Gilbert"),
		Beds:        strptr("3"),
		LotAcres:    strptr("0.25"),
		Description: strptr("Cozy starter home near parks."),
	}

	l := Assemble(fields, "https://example.com/listing/12-palm-ln", Config{})

	assert.Regexp(t, `^REF-[A-Z0-9]{5}$`, l.DisplayID)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, l.CreatedAt)
	assert.Equal(t, 425000.0, l.PriceValue)
	require.NotNil(t, l.SqftLot)
	assert.Equal(t, int64(10890), *l.SqftLot)
	assert.Equal(t, []string{PlaceholderImage}, l.Images)
	assert.False(t, l.Reviewed)
	assert.NotZero(t, l.LastUpdated)
	require.NotNil(t, l.Description)
	assert.Equal(t, "Cozy starter home near parks.", *l.Description)
}

func TestAssemble_LuxuryGuardReplacesDescription(t *testing.T) {
	fields := entity.ExtractedFields{
		Price:       strptr("$12,500,000"),
		Description: strptr("An endless ode to desert modernism across four wings..."),
	}

	l := Assemble(fields, "https://example.com/listing/estate", Config{})

	require.NotNil(t, l.Description)
	assert.Equal(t, LuxuryDescription, *l.Description)

	// at or below the threshold the extracted copy survives
	fields.Price = strptr("$10,000,000")
	l = Assemble(fields, "https://example.com/listing/estate", Config{})
	require.NotNil(t, l.Description)
	assert.Contains(t, *l.Description, "desert modernism")
}
