// Package textutil provides text normalization helpers for feed content.
//
// Feed titles and descriptions arrive with HTML markup and entity escapes;
// everything here is a pure function with no dependencies so the parser
// packages can share one set of rules.
package textutil

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// namedEntities is the fixed set of entities we decode. Unrecognized
// entities pass through unchanged.
var namedEntities = map[string]string{
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   `"`,
	"&apos;":   "'",
	"&nbsp;":   " ",
	"&ndash;":  "–",
	"&mdash;":  "—",
	"&lsquo;":  "'",
	"&rsquo;":  "'",
	"&ldquo;":  "“",
	"&rdquo;":  "”",
	"&hellip;": "…",
	"&copy;":   "©",
	"&reg;":    "®",
	"&trade;":  "™",
}

// numericEntityRe matches decimal and hex numeric character references.
var numericEntityRe = regexp.MustCompile(`&#(x?[0-9a-fA-F]+);`)

// htmlTagRe matches HTML tags.
var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// DecodeEntities replaces known named and numeric HTML entities with their
// literal characters. &amp; is decoded last so double-escaped sequences like
// &amp;lt; do not turn into markup.
func DecodeEntities(s string) string {
	s = numericEntityRe.ReplaceAllStringFunc(s, func(m string) string {
		ref := m[2 : len(m)-1]
		base := 10
		if ref[0] == 'x' || ref[0] == 'X' {
			ref = ref[1:]
			base = 16
		}
		n, err := strconv.ParseInt(ref, base, 32)
		if err != nil || n <= 0 {
			return m
		}
		return string(rune(n))
	})

	for entity, repl := range namedEntities {
		if entity == "&amp;" {
			continue
		}
		s = strings.ReplaceAll(s, entity, repl)
	}
	return strings.ReplaceAll(s, "&amp;", "&")
}

// StripTags removes HTML markup, decodes entities, and trims whitespace.
func StripTags(s string) string {
	s = htmlTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(DecodeEntities(s))
}

// ExtractDomain returns the hostname of rawURL with a leading "www."
// stripped. Returns "" if the URL cannot be parsed; never panics.
func ExtractDomain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

// Hash returns a deterministic 32-bit rolling hash of s rendered in
// base-36. Used to build stable key-safe cache identifiers from URLs;
// collisions are tolerable (worst case two URLs alias one cache slot),
// so this is not a cryptographic hash.
func Hash(s string) string {
	var h int32
	for _, r := range s {
		h = h<<5 - h + r
	}
	return strconv.FormatInt(int64(uint32(h)), 36)
}
