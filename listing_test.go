package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const listingPage = `<html><body><table>
<tr><th>Title</th><th>Date</th></tr>
<tr><td><a href="https://example.gov/speech/budget">Speech: Budget-Announcement</a></td><td>1 May 2023</td></tr>
<tr><td><a href="https://example.gov/speech/opening">Opening Address</a></td><td>12 Apr 2023</td></tr>
</table></body></html>`

func TestTableListingResolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage)
	}))
	defer server.Close()

	resolver := NewTableListing(NewFetcher(false), server.URL)

	items, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Resolve() items = %d, want 2 (header row discarded)", len(items))
	}

	if items[0].URL != "https://example.gov/speech/budget" {
		t.Errorf("items[0].URL = %q", items[0].URL)
	}
	if items[0].RawTitle != "Speech: Budget-Announcement" {
		t.Errorf("items[0].RawTitle = %q", items[0].RawTitle)
	}
	if items[0].RawDate != "1 May 2023" {
		t.Errorf("items[0].RawDate = %q", items[0].RawDate)
	}
	if items[1].RawTitle != "Opening Address" {
		t.Errorf("items[1].RawTitle = %q", items[1].RawTitle)
	}
}

func TestTableListingMalformedRowSkipped(t *testing.T) {
	page := `<html><body><table>
<tr><th>Title</th><th>Date</th></tr>
<tr><td>No anchor here</td><td>1 May 2023</td></tr>
<tr><td><a href="https://example.gov/ok">Valid</a></td><td>2 May 2023</td></tr>
<tr><td><a href="https://example.gov/nodate">No date</a></td><td></td></tr>
</table></body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer server.Close()

	resolver := NewTableListing(NewFetcher(false), server.URL)

	items, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("Resolve() items = %d, want 1 (malformed rows skipped, not fatal)", len(items))
	}
	if items[0].URL != "https://example.gov/ok" {
		t.Errorf("items[0].URL = %q, want the valid row", items[0].URL)
	}
}

func TestTableListingFetchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	resolver := NewTableListing(NewFetcher(false), server.URL)

	if _, err := resolver.Resolve(); err == nil {
		t.Fatal("Resolve() expected error when the listing page is unavailable")
	}
}

func TestSitemapListingPagination(t *testing.T) {
	var maxPage atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var page int32
		fmt.Sscanf(r.URL.Path, "/sitemap-%d.xml", &page)
		if page > maxPage.Load() {
			maxPage.Store(page)
		}
		if page != 1 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc>https://example.my/post-1/</loc></url>
<url><loc>https://example.my/post-2/</loc></url>
<url><loc>https://example.my/post-3/</loc></url>
<url><loc>https://example.my/post-4/</loc></url>
<url><loc>https://example.my/post-5/</loc></url>
</urlset>`)
	}))
	defer server.Close()

	resolver := NewSitemapListing(NewFetcher(false), server.URL+"/sitemap-%d.xml")

	items, err := resolver.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(items) != 5 {
		t.Fatalf("Resolve() items = %d, want the 5 URLs of page 1", len(items))
	}
	for i, item := range items {
		want := fmt.Sprintf("https://example.my/post-%d/", i+1)
		if item.URL != want {
			t.Errorf("items[%d].URL = %q, want %q", i, item.URL, want)
		}
		if item.RawTitle != "" || item.RawDate != "" {
			t.Errorf("items[%d] should carry the URL only", i)
		}
	}

	// The 404 on page 2 is the crawl boundary: page 3 must never be requested.
	if got := maxPage.Load(); got != 2 {
		t.Errorf("highest page requested = %d, want 2", got)
	}
}

func TestSitemapListingFirstPageUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	resolver := NewSitemapListing(NewFetcher(false), server.URL+"/sitemap-%d.xml")

	if _, err := resolver.Resolve(); err == nil {
		t.Fatal("Resolve() expected error when even page 1 is unavailable")
	}
}

func TestExtractLocEntriesTolerant(t *testing.T) {
	// Real sitemaps carry stylesheet directives and namespaces; the
	// lenient parser must still find the loc values.
	body := []byte(`<?xml version="1.0"?><?xml-stylesheet type="text/xsl" href="/s.xsl"?>
<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
<url><loc> https://example.my/a </loc><lastmod>2024-01-01</lastmod></url>
<url><loc>https://example.my/b</loc></url>
</urlset>`)

	urls, err := extractLocEntries(body)
	if err != nil {
		t.Fatalf("extractLocEntries() error = %v", err)
	}
	if len(urls) != 2 {
		t.Fatalf("extractLocEntries() = %d entries, want 2", len(urls))
	}
	if urls[0] != "https://example.my/a" {
		t.Errorf("urls[0] = %q (whitespace should be trimmed)", urls[0])
	}
}
