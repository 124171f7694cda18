// Package assemble converts extracted raw fields into a normalized, typed
// listing record. Every transform here is side-effect free.
package assemble

import (
	"math"
	"math/rand"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"

	"listing-tracker/internal/entity"
	"listing-tracker/internal/heuristic"
)

const (
	displayIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	displayIDLength   = 5

	// PlaceholderImage substitutes for listings with no usable photos.
	PlaceholderImage = "https://images.unsplash.com/photo-1564013799919-ab600027ffc6?auto=format&fit=crop&q=80&w=800"

	// LuxuryDescription replaces extracted marketing copy above the price
	// threshold; very expensive listings tend to carry unusually long copy.
	LuxuryDescription = "Luxury property. Contact agent for details."
)

// Config holds assembly policy knobs.
type Config struct {
	ImageSampleSize      int
	LuxuryPriceThreshold float64
}

func (c Config) withDefaults() Config {
	if c.ImageSampleSize <= 0 {
		c.ImageSampleSize = 5
	}
	if c.LuxuryPriceThreshold <= 0 {
		c.LuxuryPriceThreshold = 10_000_000
	}
	return c
}

// Assemble builds the persistent listing record from merged extraction
// fields. Workflow fields start at their unreviewed defaults.
func Assemble(fields entity.ExtractedFields, url string, cfg Config) *entity.Listing {
	cfg = cfg.withDefaults()
	now := time.Now().UTC()

	priceValue := ParsePrice(fields.Price)
	description := fields.Description
	if priceValue > cfg.LuxuryPriceThreshold {
		d := LuxuryDescription
		description = &d
	}

	return &entity.Listing{
		ID:              uuid.New(),
		DisplayID:       GenerateDisplayID(),
		URL:             url,
		CreatedAt:       now.Format("2006-01-02"),
		Price:           fields.Price,
		PriceValue:      priceValue,
		Address:         fields.Address,
		Region:          fields.Region,
		Beds:            fields.Beds,
		Baths:           fields.Baths,
		Sqft:            fields.Sqft,
		SqftLot:         ResolveLotSqft(fields),
		YearBuilt:       fields.YearBuilt,
		DaysOnMarket:    fields.DaysOnMarket,
		ARMLS:           fields.ARMLS,
		Description:     description,
		Images:          SampleImages(fields.Images, cfg.ImageSampleSize),
		PriceTrend:      fields.PriceTrend,
		PriceDropAmount: fields.PriceDropAmount,
		OriginalPrice:   fields.OriginalPrice,
		Reviewed:        false,
		LastUpdated:     now.UnixMilli(),
	}
}

var reNonNumeric = regexp.MustCompile(`[^0-9.]`)

// ParsePrice strips everything but digits and decimal points, then parses.
// Absence parses to zero, not null.
func ParsePrice(price *string) float64 {
	if price == nil {
		return 0
	}
	cleaned := reNonNumeric.ReplaceAllString(*price, "")
	if cleaned == "" {
		return 0
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return v
}

// ResolveLotSqft prefers an explicit square-foot figure; otherwise an acreage
// figure converted at 43,560 sqft per acre; otherwise nil.
func ResolveLotSqft(fields entity.ExtractedFields) *int64 {
	if fields.SqftLot != nil {
		if v, err := strconv.ParseFloat(reNonNumeric.ReplaceAllString(*fields.SqftLot, ""), 64); err == nil && v > 0 {
			n := int64(math.Round(v))
			return &n
		}
	}
	if fields.LotAcres != nil {
		if acres, err := strconv.ParseFloat(reNonNumeric.ReplaceAllString(*fields.LotAcres, ""), 64); err == nil && acres > 0 {
			n := int64(math.Round(acres * heuristic.SqftPerAcre))
			return &n
		}
	}
	return nil
}

// SampleImages bounds storage cost while keeping visual variety: zero images
// get the placeholder, small sets pass through, larger sets are randomly
// sampled down to max without duplicates.
func SampleImages(images []string, max int) []string {
	if len(images) == 0 {
		return []string{PlaceholderImage}
	}
	if len(images) < 3 {
		out := make([]string, len(images))
		copy(out, images)
		return out
	}
	shuffled := make([]string, len(images))
	copy(shuffled, images)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > max {
		shuffled = shuffled[:max]
	}
	return shuffled
}

// GenerateDisplayID returns a short human-shareable id like REF-A1B2C. No
// uniqueness guarantee; collision handling belongs to the store.
func GenerateDisplayID() string {
	b := make([]byte, displayIDLength)
	for i := range b {
		b[i] = displayIDAlphabet[rand.Intn(len(displayIDAlphabet))]
	}
	return "REF-" + string(b)
}
