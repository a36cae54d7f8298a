package main

import "fmt"

// FetchError represents a network failure or non-2xx response for a URL.
// Items that fail to fetch are simply not recorded, so the next run
// rediscovers and retries them.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: HTTP %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ContentError represents expected markup or a field missing from a page.
type ContentError struct {
	URL   string
	Field string
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content %s: missing %s", e.URL, e.Field)
}

// RenderError represents a PDF generation or merge failure.
type RenderError struct {
	Path string
	Err  error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Path, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// StoreError represents a persistence failure. Unlike the other error
// kinds it is escalated: a swallowed insert failure would leave a rendered
// artifact with no record.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
