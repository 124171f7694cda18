package heuristic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleListing = `
# 4847 E Desert Cove Ave, Scottsdale, AZ 85254

Listed at $849,900. This home offers 4 beds and 2.5 baths across
2,356 sqft of living space. Built in 1998. Lot size: 9,148 sqft.
21 days on market. MLS # 6501234.

https://photos.example.com/front.jpg
https://photos.example.com/kitchen.jpg
https://photos.example.com/front.jpg
`

func TestExtract_FullSample(t *testing.T) {
	got := Extract(sampleListing)

	require.NotNil(t, got.Price)
	assert.Equal(t, "$849,900", *got.Price)

	require.NotNil(t, got.Address)
	assert.Equal(t, "4847 E Desert Cove Ave, Scottsdale, AZ 85254", *got.Address)
	require.NotNil(t, got.Region)
	assert.Equal(t, "Scottsdale", *got.Region)

	require.NotNil(t, got.Beds)
	assert.Equal(t, "4", *got.Beds)
	require.NotNil(t, got.Baths)
	assert.Equal(t, "2.5", *got.Baths)

	require.NotNil(t, got.Sqft)
	assert.Equal(t, "2356", *got.Sqft)

	require.NotNil(t, got.YearBuilt)
	assert.Equal(t, "1998", *got.YearBuilt)

	require.NotNil(t, got.SqftLot)
	assert.Equal(t, "9148", *got.SqftLot)

	require.NotNil(t, got.DaysOnMarket)
	assert.Equal(t, "21", *got.DaysOnMarket)

	require.NotNil(t, got.ARMLS)
	assert.Equal(t, "6501234", *got.ARMLS)

	// deduplicated
	assert.Equal(t, []string{
		"https://photos.example.com/front.jpg",
		"https://photos.example.com/kitchen.jpg",
	}, got.Images)
}

func TestExtract_AcreageConversion(t *testing.T) {
	got := Extract("Beautiful ranch on 0.25 acres of land")

	require.NotNil(t, got.LotAcres)
	assert.Equal(t, "0.25", *got.LotAcres)
	require.NotNil(t, got.SqftLot)
	// 0.25 * 43560 = 10890, exactly
	assert.Equal(t, "10890", *got.SqftLot)
}

func TestExtract_ExplicitLotWinsOverAcres(t *testing.T) {
	got := Extract("8,000 sqft lot on roughly 0.5 acres")

	require.NotNil(t, got.SqftLot)
	assert.Equal(t, "8000", *got.SqftLot)
	assert.Nil(t, got.LotAcres)
}

func TestExtract_ListingIDLabelVariants(t *testing.T) {
	for label, want := range map[string]string{
		"ARMLS: 6329001":     "6329001",
		"MLS Number 22-451":  "22-451",
		"Listing ID: A99120": "A99120",
		"mls # 7100456":      "7100456",
	} {
		got := Extract(label)
		require.NotNil(t, got.ARMLS, "input %q", label)
		assert.Equal(t, want, *got.ARMLS, "input %q", label)
	}
}

func TestExtract_ImageCap(t *testing.T) {
	var text string
	for i := 0; i < 25; i++ {
		text += "https://photos.example.com/img" + string(rune('a'+i)) + ".jpg\n"
	}
	got := Extract(text)
	assert.Len(t, got.Images, MaxImages)
}

func TestExtract_NothingFound(t *testing.T) {
	got := Extract("this page is a cooking blog about sourdough")

	assert.Nil(t, got.Price)
	assert.Nil(t, got.Address)
	assert.Nil(t, got.Beds)
	assert.Nil(t, got.SqftLot)
	assert.Nil(t, got.ARMLS)
	assert.Empty(t, got.Images)
}
