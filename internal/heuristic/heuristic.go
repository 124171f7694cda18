// Package heuristic is the deterministic pattern-matching fallback for field
// extraction. It makes no external calls and cannot fail; at worst it returns
// a result with every field nil.
package heuristic

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"listing-tracker/internal/entity"
)

// SqftPerAcre converts acreage figures to square feet.
const SqftPerAcre = 43560

// MaxImages caps how many image URLs the fallback will collect.
const MaxImages = 10

var (
	rePrice = regexp.MustCompile(`\$\s?([\d,]+(?:\.\d+)?)`)

	// street number + street, locality, two-letter state, ZIP
	reAddress = regexp.MustCompile(`(\d+[^,\n]{2,60}),\s*([A-Za-z .'-]{2,40}),\s*([A-Z]{2})\s*(\d{5})`)

	reBeds  = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:bed(?:room)?s?|bds?|br)\b`)
	reBaths = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:bath(?:room)?s?|ba)\b`)

	reSqft = regexp.MustCompile(`(?i)([\d,]{3,})\s*(?:sq\.?\s?ft|sqft|square\s+feet)`)

	reYearBuilt = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:built|constructed)(?:\s+in)?\s*:?\s*(\d{4})`),
		regexp.MustCompile(`(?i)year\s+built\s*:?\s*(\d{4})`),
	}

	reLotSqft = []*regexp.Regexp{
		regexp.MustCompile(`(?i)([\d,]{3,})\s*(?:sq\.?\s?ft|sqft)\s*lot`),
		regexp.MustCompile(`(?i)lot\s*(?:size)?\s*:?\s*([\d,]{3,})\s*(?:sq\.?\s?ft|sqft)`),
	}
	reLotAcres = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*acres?\b`)

	reDaysOnMarket = regexp.MustCompile(`(?i)(\d+)\s*days?\s+on\s+(?:market|site)`)

	// listing id behind the common label variants
	reARMLS = regexp.MustCompile(`(?i)(?:armls|mls\s*(?:#|number|id)?|listing\s*(?:#|number|id))\s*:?\s*#?\s*([A-Z0-9][A-Z0-9-]{3,14})`)

	reImageURL = regexp.MustCompile(`https?://[^\s"'()\[\]]+\.(?:jpe?g|png|webp)`)
)

// Extract applies the ordered pattern rules per field, first match wins.
func Extract(text string) entity.ExtractedFields {
	var out entity.ExtractedFields

	if m := rePrice.FindStringSubmatch(text); m != nil {
		out.Price = strptr("$" + m[1])
	}
	if m := reAddress.FindStringSubmatch(text); m != nil {
		out.Address = strptr(fmt.Sprintf("%s, %s, %s %s", strings.TrimSpace(m[1]), strings.TrimSpace(m[2]), m[3], m[4]))
		out.Region = strptr(strings.TrimSpace(m[2]))
	}
	if m := reBeds.FindStringSubmatch(text); m != nil {
		out.Beds = strptr(m[1])
	}
	if m := reBaths.FindStringSubmatch(text); m != nil {
		out.Baths = strptr(m[1])
	}
	if m := reSqft.FindStringSubmatch(text); m != nil {
		out.Sqft = strptr(stripCommas(m[1]))
	}
	for _, re := range reYearBuilt {
		if m := re.FindStringSubmatch(text); m != nil {
			out.YearBuilt = strptr(m[1])
			break
		}
	}
	extractLot(text, &out)
	if m := reDaysOnMarket.FindStringSubmatch(text); m != nil {
		out.DaysOnMarket = strptr(m[1])
	}
	if m := reARMLS.FindStringSubmatch(text); m != nil {
		out.ARMLS = strptr(m[1])
	}
	out.Images = extractImages(text)

	return out
}

// extractLot prefers an explicit square-foot figure; an acreage figure is
// converted at 43,560 sqft per acre and also recorded as acres.
func extractLot(text string, out *entity.ExtractedFields) {
	for _, re := range reLotSqft {
		if m := re.FindStringSubmatch(text); m != nil {
			out.SqftLot = strptr(stripCommas(m[1]))
			return
		}
	}
	if m := reLotAcres.FindStringSubmatch(text); m != nil {
		out.LotAcres = strptr(m[1])
		if acres, err := strconv.ParseFloat(m[1], 64); err == nil {
			out.SqftLot = strptr(strconv.FormatInt(int64(math.Round(acres*SqftPerAcre)), 10))
		}
	}
}

func extractImages(text string) []string {
	matches := reImageURL.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, u := range matches {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
		if len(out) == MaxImages {
			break
		}
	}
	return out
}

func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

func strptr(s string) *string {
	return &s
}
