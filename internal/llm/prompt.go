package llm

import "strings"

// MaxDescriptionChars caps the free-text description the model may return.
const MaxDescriptionChars = 500

// MaxImageURLs caps how many image URLs the model may return.
const MaxImageURLs = 10

// BuildExtractionPrompt composes the single-turn extraction prompt for a
// normalized listing page.
func BuildExtractionPrompt(markdown string) string {
	var b strings.Builder
	b.WriteString(`You are a real estate data extraction assistant. Extract property information from the following markdown content of a real estate listing page.

Return ONLY a valid JSON object with these fields (use null if not found):
{
  "price": "string - the listing price (e.g., '$850,000')",
  "address": "string - full property address",
  "region": "string - city or locality the property is in",
  "beds": "string - number of bedrooms",
  "baths": "string - number of bathrooms",
  "sqft": "string - interior square footage",
  "sqftLot": "string - lot size in square feet",
  "lotAcres": "string - lot size in acres",
  "yearBuilt": "string - year the property was built",
  "daysOnMarket": "string - days on market",
  "armls": "string - MLS or ARMLS listing number",
  "description": "string - property description (max 500 chars)",
  "images": ["array of image URLs - only property photos, not logos or icons, max 10"],
  "priceTrend": "string - one of 'up', 'down', 'stable' if a price history is shown",
  "priceDropAmount": "string - amount of the most recent price drop, if any",
  "originalPrice": "string - original listing price before any drops, if shown"
}

IMPORTANT: Return ONLY the JSON object, no markdown formatting, no code blocks, no explanation.

Markdown content:
`)
	b.WriteString(markdown)
	return b.String()
}

// StripCodeFence removes a wrapping markdown code fence from model output,
// tolerating a language tag after the opening backticks.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		// drop the language tag line (e.g. "json")
		first := strings.TrimSpace(s[:i])
		if len(first) <= 10 && !strings.ContainsAny(first, "{}") {
			s = s[i+1:]
		}
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
