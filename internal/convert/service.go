// Package convert turns raw document bytes into derived representations:
// plain text and page images. It is the format-conversion collaborator for
// the extraction engine; documents own the memoization, this package stays
// stateless.
package convert

import (
	"context"
	"log/slog"

	"github.com/entityxtract/entityxtract/constants"
	"github.com/entityxtract/entityxtract/internal/common"
)

// Config for the conversion service.
type Config struct {
	Pdftoppm    string
	DPI         int
	MaxPages    int
	MaxImageDim int // bound on attached page image dimensions, default 2048
}

type Service struct {
	cfg    Config
	raster *Rasterizer
	logger *slog.Logger
}

func NewService(cfg Config, runner Runner, logger *slog.Logger) *Service {
	if cfg.MaxImageDim <= 0 {
		cfg.MaxImageDim = 2048
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		cfg:    cfg,
		raster: NewRasterizer(RasterConfig{Pdftoppm: cfg.Pdftoppm, DPI: cfg.DPI, MaxPages: cfg.MaxPages}, runner),
		logger: logger,
	}
}

// Text produces the best-effort plain-text rendering for the document kind.
// Pure images have no text layer and fail with ErrUnsupportedFormat.
func (s *Service) Text(ctx context.Context, data []byte, kind constants.DocKind) (string, error) {
	switch kind {
	case constants.PDF:
		text, pages, err := PDFText(data)
		if err != nil {
			return "", err
		}
		s.logger.Debug("convert.text.ok", "kind", kind, "pages", pages, "bytes", len(text))
		return text, nil
	case constants.TEXT:
		return PlainText(data)
	case constants.DOCX:
		return DOCXText(data)
	case constants.IMAGE:
		return "", common.WrapError(common.ErrUnsupportedFormat, "image documents have no text layer")
	default:
		return "", common.WrapError(common.ErrUnsupportedFormat, "unknown document kind "+string(kind))
	}
}

// PageImages produces the ordered page image sequence for the document kind.
// Single images become a one-element sequence; PDFs are rasterized per page.
func (s *Service) PageImages(ctx context.Context, data []byte, kind constants.DocKind) ([]PageImage, error) {
	switch kind {
	case constants.PDF:
		return s.raster.PDFPages(ctx, data, s.cfg.MaxImageDim)
	case constants.IMAGE:
		page, err := NormalizeImage(data, s.cfg.MaxImageDim)
		if err != nil {
			return nil, err
		}
		return []PageImage{page}, nil
	default:
		return nil, common.WrapError(common.ErrUnsupportedFormat, "no page images for document kind "+string(kind))
	}
}
