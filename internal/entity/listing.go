package entity

import (
	"reflect"

	"github.com/google/uuid"
)

// ExtractedFields is the normalized shape we want from the extraction engine.
// Every field is independently nullable; a nil pointer (or empty slice) means
// the source did not supply the field.
type ExtractedFields struct {
	Price           *string  `json:"price"`
	Address         *string  `json:"address"`
	Region          *string  `json:"region"`
	Beds            *string  `json:"beds"`
	Baths           *string  `json:"baths"`
	Sqft            *string  `json:"sqft"`
	SqftLot         *string  `json:"sqftLot"`
	LotAcres        *string  `json:"lotAcres"`
	YearBuilt       *string  `json:"yearBuilt"`
	DaysOnMarket    *string  `json:"daysOnMarket"`
	ARMLS           *string  `json:"armls"`
	Description     *string  `json:"description"`
	Images          []string `json:"images"`
	PriceTrend      *string  `json:"priceTrend"`      // "up" | "down" | "stable"
	PriceDropAmount *string  `json:"priceDropAmount"`
	OriginalPrice   *string  `json:"originalPrice"`
}

// Coalesce fills every nil (or empty-slice) field of primary with the
// corresponding value from fallback. Non-nil primary values are never
// overwritten. Iterating the declared field set keeps the merge correct when
// fields are added later.
func Coalesce(primary, fallback ExtractedFields) ExtractedFields {
	out := primary
	ov := reflect.ValueOf(&out).Elem()
	fv := reflect.ValueOf(fallback)
	for i := 0; i < ov.NumField(); i++ {
		f := ov.Field(i)
		switch f.Kind() {
		case reflect.Pointer:
			if f.IsNil() {
				f.Set(fv.Field(i))
			}
		case reflect.Slice:
			if f.Len() == 0 {
				f.Set(fv.Field(i))
			}
		}
	}
	return out
}

// Listing represents a fully assembled listing record for data transfer
// between layers. The pipeline creates it exactly once; later mutations come
// only from user edits through the API surface.
type Listing struct {
	ID              uuid.UUID `json:"id"`
	DisplayID       string    `json:"displayId"` // e.g. REF-A1B2C
	URL             string    `json:"url"`
	CreatedAt       string    `json:"createdAt"` // YYYY-MM-DD
	Price           *string   `json:"price"`
	PriceValue      float64   `json:"priceValue"`
	Address         *string   `json:"address"`
	Region          *string   `json:"region"`
	Beds            *string   `json:"beds"`
	Baths           *string   `json:"baths"`
	Sqft            *string   `json:"sqft"`
	SqftLot         *int64    `json:"sqftLot"`
	YearBuilt       *string   `json:"yearBuilt"`
	DaysOnMarket    *string   `json:"daysOnMarket"`
	ARMLS           *string   `json:"armls"`
	Description     *string   `json:"description"`
	Images          []string  `json:"images"`
	PriceTrend      *string   `json:"priceTrend"`
	PriceDropAmount *string   `json:"priceDropAmount"`
	OriginalPrice   *string   `json:"originalPrice"`
	Reviewed        bool      `json:"reviewed"`
	LastUpdated     int64     `json:"lastUpdated"` // epoch millis
}
