// Package document provides a lazy, multi-representation view over one input
// file: raw bytes, derived plain text, and derived page images. Derivations
// are pure functions of the raw bytes and are computed at most once per
// Document; the cached values may be read concurrently.
package document

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/entityxtract/entityxtract/constants"
	"github.com/entityxtract/entityxtract/internal/common"
	"github.com/entityxtract/entityxtract/internal/convert"
)

// Converter is the format-conversion collaborator: raw bytes in, derived
// representation out. convert.Service is the default implementation.
type Converter interface {
	Text(ctx context.Context, data []byte, kind constants.DocKind) (string, error)
	PageImages(ctx context.Context, data []byte, kind constants.DocKind) ([]convert.PageImage, error)
}

// Document holds one input file and its lazily derived representations.
// Immutable after construction.
type Document struct {
	name string
	kind constants.DocKind
	raw  []byte
	conv Converter

	textOnce sync.Once
	text     string
	textErr  error

	pagesOnce sync.Once
	pages     []convert.PageImage
	pagesErr  error
}

// New loads a document from disk, detecting its kind from the extension.
func New(path string, conv Converter, logger *slog.Logger) (*Document, error) {
	if logger == nil {
		logger = slog.Default()
	}

	st, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.IsDir() {
		return nil, fmt.Errorf("path is not a file: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := FromBytes(filepath.Base(path), data, conv)
	if err != nil {
		return nil, err
	}
	logger.Info("document.loaded", "path", path, "kind", doc.kind, "bytes", len(data))
	return doc, nil
}

// FromBytes builds a document from an in-memory payload. The name is only
// used for kind detection and attachment metadata.
func FromBytes(name string, data []byte, conv Converter) (*Document, error) {
	kind, ok := constants.KindForExt(filepath.Ext(name))
	if !ok {
		return nil, common.WrapError(common.ErrUnsupportedFormat,
			fmt.Sprintf("unknown file extension %q", filepath.Ext(name)))
	}
	return &Document{name: name, kind: kind, raw: data, conv: conv}, nil
}

func (d *Document) Name() string            { return d.name }
func (d *Document) Kind() constants.DocKind { return d.kind }

// Raw returns the original attachment payload, used for FILE mode.
func (d *Document) Raw() []byte { return d.raw }

// MIME returns the MIME type of the raw payload.
func (d *Document) MIME() string {
	return constants.MIMEForExt(filepath.Ext(d.name))
}

// Text returns the plain-text rendering. The conversion runs on the first
// call only; later calls return the cached result, including a cached error.
func (d *Document) Text(ctx context.Context) (string, error) {
	d.textOnce.Do(func() {
		d.text, d.textErr = d.conv.Text(ctx, d.raw, d.kind)
	})
	return d.text, d.textErr
}

// PageImages returns the ordered page image sequence, computed once.
func (d *Document) PageImages(ctx context.Context) ([]convert.PageImage, error) {
	d.pagesOnce.Do(func() {
		d.pages, d.pagesErr = d.conv.PageImages(ctx, d.raw, d.kind)
	})
	return d.pages, d.pagesErr
}
