package main

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ListingResolver discovers candidate item URLs for one source. Both
// strategies produce the same shape so the driver does not care where
// the items came from.
type ListingResolver interface {
	Resolve() ([]ListingItem, error)
}

// TableListing scrapes a single HTML page that enumerates items as table
// rows: first cell holds the item anchor and title, second cell the date.
type TableListing struct {
	fetcher *Fetcher
	url     string
}

// NewTableListing creates a table-page resolver.
func NewTableListing(fetcher *Fetcher, url string) *TableListing {
	return &TableListing{fetcher: fetcher, url: url}
}

// Resolve fetches the listing page and extracts one item per table row.
// The first row is the header and is discarded. A malformed row is logged
// and skipped; it never aborts the rest of the listing.
func (l *TableListing) Resolve() ([]ListingItem, error) {
	body, err := l.fetcher.Get(l.url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parsing listing page %s: %w", l.url, err)
	}

	var items []ListingItem
	doc.Find("tr").Each(func(i int, row *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		item, err := parseListingRow(row)
		if err != nil {
			log.Printf("listing %s: row %d skipped: %v", l.url, i, err)
			return
		}
		items = append(items, item)
	})

	return items, nil
}

func parseListingRow(row *goquery.Selection) (ListingItem, error) {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return ListingItem{}, fmt.Errorf("expected at least 2 cells, got %d", cells.Length())
	}

	anchor := cells.Eq(0).Find("a").First()
	href, ok := anchor.Attr("href")
	if !ok || href == "" {
		return ListingItem{}, fmt.Errorf("first cell has no anchor")
	}

	title := strings.TrimSpace(cells.Eq(0).Text())
	date := strings.TrimSpace(cells.Eq(1).Text())
	if date == "" {
		return ListingItem{}, fmt.Errorf("second cell has no date")
	}

	return ListingItem{URL: href, RawTitle: title, RawDate: date}, nil
}

// SitemapListing walks a paginated sitemap-style feed, collecting the
// <loc> entries of each page until a page fetch fails. Items carry the
// URL only; title and date are discovered later from the detail page, if
// at all.
type SitemapListing struct {
	fetcher  *Fetcher
	template string // printf template with one %d page index
}

// NewSitemapListing creates a paginated-feed resolver.
func NewSitemapListing(fetcher *Fetcher, template string) *SitemapListing {
	return &SitemapListing{fetcher: fetcher, template: template}
}

// Resolve fetches pages 1, 2, ... until the first non-success response.
// A missing page is the crawl boundary, not an error, so the URLs
// gathered so far are returned.
func (l *SitemapListing) Resolve() ([]ListingItem, error) {
	var items []ListingItem
	for page := 1; ; page++ {
		body, err := l.fetcher.Get(fmt.Sprintf(l.template, page))
		if err != nil {
			if page == 1 {
				// An empty feed on the very first page is worth surfacing.
				return nil, err
			}
			log.Printf("sitemap page %d unavailable, stopping at page %d", page, page-1)
			break
		}

		urls, err := extractLocEntries(body)
		if err != nil {
			return nil, fmt.Errorf("parsing sitemap page %d: %w", page, err)
		}
		log.Printf("sitemap page %d: %d links", page, len(urls))
		for _, u := range urls {
			items = append(items, ListingItem{URL: u})
		}
	}
	return items, nil
}

// extractLocEntries pulls <loc> values out of a sitemap body. The lenient
// html parser underneath goquery tolerates the XML declaration and any
// namespace noise real-world sitemaps carry.
func extractLocEntries(body []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var urls []string
	doc.Find("loc").Each(func(_ int, sel *goquery.Selection) {
		if u := strings.TrimSpace(sel.Text()); u != "" {
			urls = append(urls, u)
		}
	})
	return urls, nil
}
