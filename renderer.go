package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// Renderer produces the final PDF artifact for an extracted item.
type Renderer struct {
	fetcher     *Fetcher
	artifactDir string
}

// NewRenderer creates a renderer writing into artifactDir, creating the
// directory if it does not exist.
func NewRenderer(fetcher *Fetcher, artifactDir string) (*Renderer, error) {
	if err := os.MkdirAll(artifactDir, 0755); err != nil {
		return nil, fmt.Errorf("creating artifact directory %s: %w", artifactDir, err)
	}
	return &Renderer{fetcher: fetcher, artifactDir: artifactDir}, nil
}

// Render produces the artifact for ex and returns its path. Items with an
// embedded document get that document's pages first, followed by the
// extracted text; items without get a text-only PDF.
func (r *Renderer) Render(ex *Extraction) (string, error) {
	target := filepath.Join(r.artifactDir, ex.Filename)

	if ex.EmbedURL == "" {
		if err := textToPDF(ex.Body, target); err != nil {
			return "", &RenderError{Path: target, Err: err}
		}
		return target, nil
	}

	if err := r.renderMerged(ex, target); err != nil {
		return "", &RenderError{Path: target, Err: err}
	}
	return target, nil
}

// renderMerged downloads the embedded document and concatenates it with
// the rendered body text. The two temporaries are removed on every exit
// path so partial failures never accumulate files across runs.
func (r *Renderer) renderMerged(ex *Extraction, target string) error {
	embedTmp := filepath.Join(r.artifactDir, "tmp_embed_"+ex.Filename)
	textTmp := filepath.Join(r.artifactDir, "tmp_text_"+ex.Filename)
	defer removeTempFiles(embedTmp, textTmp)

	if err := r.fetcher.Download(ex.EmbedURL, embedTmp); err != nil {
		return fmt.Errorf("downloading embedded document: %w", err)
	}
	if err := textToPDF(ex.Body, textTmp); err != nil {
		return err
	}
	if err := api.MergeCreateFile([]string{embedTmp, textTmp}, target, false, nil); err != nil {
		return fmt.Errorf("merging pages: %w", err)
	}
	return nil
}

// textToPDF renders text into a single-column PDF. The core fonts only
// cover a single-byte codepage, so the text is transcoded with a
// substitution character for anything unmappable rather than failing.
func textToPDF(text, path string) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.MultiCell(190, 10, tr(text), "", "L", false)

	return pdf.OutputFileAndClose(path)
}

func removeTempFiles(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			log.Printf("removing temp file %s: %v", p, err)
		}
	}
}
