package product

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rohmanhakim/product-aggregator/pkg/urlutil"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// imageJunk holds the characters some providers leave around image URLs,
// e.g. a JSON array rendered as `["https://..."]`.
var imageJunk = strings.NewReplacer("[", "", "]", "", `"`, "", "'", "")

// tagPattern matches tag-shaped runs; only known HTML element names count.
var tagPattern = regexp.MustCompile(`</?([A-Za-z][A-Za-z0-9]*)[^<>]*>`)

// CleanName reduces a provider title to plain text: markup is dropped,
// entities decoded, whitespace collapsed. A '<' that does not open an HTML
// element is kept as text, so "Kids 3<5yrs" survives. Blank titles become
// DefaultName.
func CleanName(raw string) string {
	text := raw
	if escaped, ok := escapeStrayAngles(raw); ok {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(escaped)); err == nil {
			text = doc.Text()
		}
	} else if strings.Contains(raw, "&") {
		text = html.UnescapeString(raw)
	}
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return DefaultName
	}
	return text
}

// escapeStrayAngles entity-encodes every '<' outside a real HTML tag.
// ok is false when raw holds no tag at all.
func escapeStrayAngles(raw string) (string, bool) {
	var b strings.Builder
	found := false
	last := 0
	for _, m := range tagPattern.FindAllStringSubmatchIndex(raw, -1) {
		name := strings.ToLower(raw[m[2]:m[3]])
		if atom.Lookup([]byte(name)) == 0 {
			continue
		}
		found = true
		b.WriteString(strings.ReplaceAll(raw[last:m[0]], "<", "&lt;"))
		b.WriteString(raw[m[0]:m[1]])
		last = m[1]
	}
	if !found {
		return "", false
	}
	b.WriteString(strings.ReplaceAll(raw[last:], "<", "&lt;"))
	return b.String(), true
}

func CleanCategory(raw string) string {
	category := strings.TrimSpace(raw)
	if category == "" {
		return DefaultCategory
	}
	return category
}

// CleanImage strips stray quoting and brackets and falls back to
// PlaceholderImage unless the result is an absolute http(s) URL.
func CleanImage(raw string) string {
	image := strings.TrimSpace(imageJunk.Replace(raw))
	if !urlutil.IsHTTP(image) {
		return PlaceholderImage
	}
	return image
}
