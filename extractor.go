package main

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

const (
	canonicalDateFormat = "2006-01-02"
	maxFilenameTitleLen = 40
)

// Extractor turns one discovered item into the structured fields needed
// to render and record it.
type Extractor struct {
	fetcher         *Fetcher
	contentSelector string
	embedSelector   string
	dateFormat      string
}

// NewExtractor creates an extractor for one source's markup conventions.
func NewExtractor(fetcher *Fetcher, cfg *SourceConfig) *Extractor {
	return &Extractor{
		fetcher:         fetcher,
		contentSelector: cfg.ContentSelector,
		embedSelector:   cfg.EmbedSelector,
		dateFormat:      cfg.DateFormat,
	}
}

// Extract fetches the item's detail page and extracts title, normalized
// date, body text, and the optional embedded document link. Every failure
// is scoped to this item; the caller records it and moves on.
func (e *Extractor) Extract(item ListingItem) (*Extraction, error) {
	body, err := e.fetcher.Get(item.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing detail page %s: %w", item.URL, err)
	}

	// Sitemap-discovered items carry the URL only; title and date come
	// from the detail page itself.
	title := item.RawTitle
	if title == "" {
		title = pageTitle(doc)
		if title == "" {
			return nil, &ContentError{URL: item.URL, Field: "title"}
		}
	}

	var date string
	if item.RawDate != "" {
		date, err = NormalizeDate(item.RawDate, e.dateFormat)
	} else {
		date, err = pageDate(doc, e.dateFormat)
	}
	if err != nil {
		if ce, ok := err.(*ContentError); ok {
			ce.URL = item.URL
		}
		return nil, err
	}

	region := doc.Find(e.contentSelector).First()
	if region.Length() == 0 {
		return nil, &ContentError{URL: item.URL, Field: "content region (" + e.contentSelector + ")"}
	}

	text := collectText(region)
	header := fmt.Sprintf("Source: %s\nTitle: %s\nDate: %s\n", item.URL, title, date)

	embedURL := ""
	if embed := region.Find(e.embedSelector).First(); embed.Length() > 0 {
		if data, ok := embed.Attr("data"); ok {
			embedURL = data
		}
	}

	return &Extraction{
		Title:    title,
		Date:     date,
		URL:      item.URL,
		Body:     header + text,
		EmbedURL: embedURL,
		Filename: DeriveFilename(title, date),
	}, nil
}

// pageTitle takes the detail page's own heading as the item title,
// falling back to the document title.
func pageTitle(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// pageDate reads the publication date from the detail page's first time
// element: the machine-readable datetime attribute when present, else the
// element text in the source's date layout.
func pageDate(doc *goquery.Document, layout string) (string, error) {
	sel := doc.Find("time").First()
	if sel.Length() == 0 {
		return "", &ContentError{Field: "publication date (no time element)"}
	}
	if dt, ok := sel.Attr("datetime"); ok {
		dt = strings.TrimSpace(dt)
		if len(dt) >= len(canonicalDateFormat) {
			return NormalizeDate(dt[:len(canonicalDateFormat)], canonicalDateFormat)
		}
	}
	return NormalizeDate(sel.Text(), layout)
}

// collectText gathers text from the paragraph and list elements of the
// content region, in document order.
func collectText(region *goquery.Selection) string {
	var sb strings.Builder
	region.Find("p, ol, ul, li").Each(func(_ int, sel *goquery.Selection) {
		if text := strings.TrimSpace(sel.Text()); text != "" {
			sb.WriteString(text)
			sb.WriteString(" ")
		}
	})
	return sb.String()
}

// NormalizeDate parses raw with the source's date layout and re-emits it
// in the canonical YYYY-MM-DD form. An unparseable date is a content
// failure for the item, never a crash.
func NormalizeDate(raw, layout string) (string, error) {
	t, err := time.Parse(layout, strings.TrimSpace(raw))
	if err != nil {
		return "", &ContentError{Field: fmt.Sprintf("date in %q layout (got %q)", layout, raw)}
	}
	return t.Format(canonicalDateFormat), nil
}

// DeriveFilename builds the artifact base name from title and normalized
// date. It is a pure function: identical inputs always yield the same
// name, which keeps reruns and crash-restarts idempotent.
func DeriveFilename(title, date string) string {
	part := title
	if idx := strings.LastIndex(title, ":"); idx >= 0 {
		part = title[idx+1:]
	}
	part = strings.TrimSpace(part)

	if runes := []rune(part); len(runes) > maxFilenameTitleLen {
		part = string(runes[:maxFilenameTitleLen])
	}

	part = strings.ReplaceAll(part, "/", "-")
	part = strings.ReplaceAll(part, `\`, "-")

	return fmt.Sprintf("%s_%s.pdf", date, part)
}

// SlugFromURL derives a fallback title for URL-only records from the last
// path segment of the item URL.
func SlugFromURL(url string) string {
	trimmed := strings.TrimRight(url, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	if trimmed == "" {
		return url
	}
	return trimmed
}
