package llm

// BuildListingJSONSchema returns a JSON-Schema (draft 2020-12 subset) for the
// extraction output, as a generic map. Every field is independently nullable;
// the schema guards shape, not completeness.
func BuildListingJSONSchema() map[string]any {
	props := map[string]any{
		"price":           nullableString(),
		"address":         nullableString(),
		"region":          nullableString(),
		"beds":            nullableString(),
		"baths":           nullableString(),
		"sqft":            nullableString(),
		"sqftLot":         nullableString(),
		"lotAcres":        nullableString(),
		"yearBuilt":       nullableString(),
		"daysOnMarket":    nullableString(),
		"armls":           nullableString(),
		"description":     map[string]any{"type": []string{"string", "null"}, "maxLength": MaxDescriptionChars},
		"images":          map[string]any{"type": []string{"array", "null"}, "items": map[string]any{"type": "string"}, "maxItems": MaxImageURLs},
		"priceTrend":      map[string]any{"type": []string{"string", "null"}, "enum": []any{"up", "down", "stable", nil}},
		"priceDropAmount": nullableString(),
		"originalPrice":   nullableString(),
	}

	return map[string]any{
		"type":       "object",
		"properties": props,
	}
}

func nullableString() map[string]any {
	return map[string]any{"type": []string{"string", "null"}}
}
