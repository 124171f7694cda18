// Package normalize cleans raw fetched markdown into a bounded,
// noise-reduced text window for the extraction engine.
package normalize

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars keeps the most information-dense part of a listing page
// inside the generation input budget.
const DefaultMaxChars = 6000

var (
	reMDImage   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reHTMLImage = regexp.MustCompile(`(?i)<img[^>]*>`)
	reMDLink    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`) // keep anchor text, drop target
	reComment   = regexp.MustCompile(`(?s)<!--.*?-->`)
	// truncated pages can leave an img tag or comment with no closing
	// delimiter; anything still open at this point runs to end of input
	reDanglingImage   = regexp.MustCompile(`(?i)<img[^>]*$`)
	reDanglingComment = regexp.MustCompile(`(?s)<!--.*$`)
	reAttrBlock       = regexp.MustCompile(`\{[^{}\n]*\}`) // pandoc-style presentation attributes
	reHeading         = regexp.MustCompile(`^#{1,6}\s`)
	reNewlines        = regexp.MustCompile(`\n{3,}`)
	reSpaces          = regexp.MustCompile(` {2,}`)
)

// noiseHeadings marks sections that never carry listing facts. Matching is a
// case-insensitive substring test against the heading line.
var noiseHeadings = []string{
	"similar listings",
	"similar homes",
	"payment calculator",
	"monthly payment",
	"mortgage calculator",
	"nearby schools",
	"schools",
	"navigation",
	"share this",
	"social share",
}

// Config holds normalizer knobs.
type Config struct {
	MaxChars int
}

// Normalizer is a pure text transform; it cannot fail. An empty result is a
// valid (if low-value) output the caller must reject via its own
// minimum-length check.
type Normalizer struct {
	cfg Config
}

func New(cfg Config) *Normalizer {
	if cfg.MaxChars <= 0 {
		cfg.MaxChars = DefaultMaxChars
	}
	return &Normalizer{cfg: cfg}
}

// Normalize applies the cleanup stages in order: strip images and link
// targets, drop presentation attributes and comments, remove noise sections,
// collapse whitespace, truncate to the character budget.
func (n *Normalizer) Normalize(raw string) string {
	s := reMDImage.ReplaceAllString(raw, "")
	s = reHTMLImage.ReplaceAllString(s, "")
	s = reDanglingImage.ReplaceAllString(s, "")
	s = reMDLink.ReplaceAllString(s, "$1")
	s = reComment.ReplaceAllString(s, "")
	s = reDanglingComment.ReplaceAllString(s, "")
	s = reAttrBlock.ReplaceAllString(s, "")
	s = dropNoiseSections(s)
	s = reNewlines.ReplaceAllString(s, "\n\n")
	s = reSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	if len(s) > n.cfg.MaxChars {
		cut := n.cfg.MaxChars
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		s = strings.TrimSpace(s[:cut])
	}
	return s
}

// dropNoiseSections removes a matched heading and everything until the next
// heading (or end of input).
func dropNoiseSections(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	skipping := false
	for _, line := range lines {
		if reHeading.MatchString(line) {
			skipping = isNoiseHeading(line)
			if skipping {
				continue
			}
		}
		if skipping {
			continue
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n")
}

func isNoiseHeading(line string) bool {
	l := strings.ToLower(line)
	for _, h := range noiseHeadings {
		if strings.Contains(l, h) {
			return true
		}
	}
	return false
}
