package main

import (
	"errors"
	"fmt"
	"log"
	"time"
)

// Driver runs the ingestion pipeline for one source: discover candidate
// items, skip the ones already recorded, and push the rest through
// extraction, rendering and recording, strictly in listing order.
type Driver struct {
	cfg       *SourceConfig
	store     *Store
	resolver  ListingResolver
	extractor *Extractor // nil for URL-only sources
	renderer  *Renderer  // nil for URL-only sources

	now func() time.Time
}

// NewDriver wires up the pipeline components for one source
// configuration. The store schema is created on first use.
func NewDriver(cfg *SourceConfig) (*Driver, error) {
	store, err := OpenStore(cfg.StorePath)
	if err != nil {
		return nil, err
	}

	fetcher := NewFetcher(cfg.InsecureSkipVerify)

	var resolver ListingResolver
	switch cfg.Strategy {
	case StrategyTable:
		resolver = NewTableListing(fetcher, cfg.ListingURL)
	case StrategySitemap:
		resolver = NewSitemapListing(fetcher, cfg.SitemapTemplate)
	default:
		store.Close()
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy)
	}

	d := &Driver{
		cfg:      cfg,
		store:    store,
		resolver: resolver,
		now:      time.Now,
	}

	// A sitemap source without a content selector only tracks URLs; it
	// needs neither extraction nor rendering.
	if cfg.ContentSelector != "" {
		d.extractor = NewExtractor(fetcher, cfg)
		d.renderer, err = NewRenderer(fetcher, cfg.ArtifactDir)
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	return d, nil
}

// Close releases the driver's store connection.
func (d *Driver) Close() error {
	return d.store.Close()
}

// Run performs one full ingestion pass. Per-item failures are logged and
// counted, never propagated; the returned error is non-nil only for
// run-level faults (listing unavailable, record insertion failing after
// an artifact was written).
func (d *Driver) Run() (RunSummary, error) {
	summary := RunSummary{Source: d.cfg.Name}

	items, err := d.resolver.Resolve()
	if err != nil {
		return summary, fmt.Errorf("resolving listing: %w", err)
	}
	log.Printf("[%s] %d items discovered", d.cfg.Name, len(items))

	var latest *Record
	if d.cfg.StopAtLatest {
		latest = d.latestRecord()
	}

	for i, item := range items {
		if latest != nil && d.matchesLatest(item, latest) {
			log.Printf("[%s] reached newest stored item at position %d, stopping early", d.cfg.Name, i+1)
			break
		}

		if d.store.Exists(item.URL) {
			log.Printf("[%d/%d] already recorded: %s", i+1, len(items), item.URL)
			summary.Skipped++
			continue
		}

		log.Printf("[%d/%d] processing: %s", i+1, len(items), item.URL)
		result := d.processItem(item)
		switch result.Status {
		case StatusRecorded:
			log.Printf("✓ recorded: %s", result.ArtifactPath)
			summary.Recorded++
		case StatusFailed:
			log.Printf("✗ failed %s: %v", result.URL, result.Err)
			summary.Failed++
			// A store insert failure would orphan the artifact just
			// written; that is the one per-item fault that stops the run.
			var storeErr *StoreError
			if errors.As(result.Err, &storeErr) {
				return summary, result.Err
			}
		}
	}

	log.Printf("[%s] run complete: %d recorded, %d skipped, %d failed",
		d.cfg.Name, summary.Recorded, summary.Skipped, summary.Failed)
	return summary, nil
}

// processItem takes one not-yet-recorded item to a terminal state. The
// record is inserted only after the artifact file is confirmed written,
// so a crash mid-item leaves the store unchanged and the next run retries
// from the top.
func (d *Driver) processItem(item ListingItem) ItemResult {
	if d.extractor == nil {
		return d.recordURLOnly(item)
	}

	ex, err := d.extractor.Extract(item)
	if err != nil {
		return ItemResult{URL: item.URL, Status: StatusFailed, Err: err}
	}

	path, err := d.renderer.Render(ex)
	if err != nil {
		return ItemResult{URL: item.URL, Status: StatusFailed, Err: err}
	}

	if _, err := d.store.Insert(ex.Title, ex.Date, ex.URL, path); err != nil {
		return ItemResult{URL: item.URL, Status: StatusFailed, Err: err}
	}

	return ItemResult{URL: item.URL, Status: StatusRecorded, ArtifactPath: path}
}

// recordURLOnly persists a sitemap item without extraction or rendering.
// Title falls back to the URL's last path segment and the date to the run
// date, keeping the store's not-null columns honest.
func (d *Driver) recordURLOnly(item ListingItem) ItemResult {
	title := SlugFromURL(item.URL)
	date := d.now().Format(canonicalDateFormat)

	if _, err := d.store.Insert(title, date, item.URL, ""); err != nil {
		return ItemResult{URL: item.URL, Status: StatusFailed, Err: err}
	}
	return ItemResult{URL: item.URL, Status: StatusRecorded}
}

// latestRecord loads the newest stored record for the early-exit
// comparison. Store trouble here only disables the optimization.
func (d *Driver) latestRecord() *Record {
	recs, err := d.store.Latest(1)
	if err != nil {
		log.Printf("[%s] could not load latest record, early exit disabled: %v", d.cfg.Name, err)
		return nil
	}
	if len(recs) == 0 {
		return nil
	}
	return &recs[0]
}

// matchesLatest reports whether a scraped item is the newest stored
// record. The comparison is on title plus normalized date; an item whose
// date cannot be normalized never matches.
func (d *Driver) matchesLatest(item ListingItem, latest *Record) bool {
	if item.RawTitle != latest.Title {
		return false
	}
	date, err := NormalizeDate(item.RawDate, d.cfg.DateFormat)
	if err != nil {
		return false
	}
	return date == latest.Date
}
