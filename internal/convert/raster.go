package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/entityxtract/entityxtract/internal/common"
)

// RasterConfig controls PDF page rendering.
type RasterConfig struct {
	Pdftoppm string // rasterizer binary, default "pdftoppm"
	DPI      int    // render resolution, default 200
	MaxPages int    // 0 = no limit
}

// Rasterizer renders PDF pages to images by shelling out to pdftoppm.
type Rasterizer struct {
	cfg    RasterConfig
	runner Runner
}

func NewRasterizer(cfg RasterConfig, runner Runner) *Rasterizer {
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &Rasterizer{cfg: cfg, runner: runner}
}

// PDFPages renders every page of the PDF as a normalized image.
func (r *Rasterizer) PDFPages(ctx context.Context, data []byte, maxDim int) ([]PageImage, error) {
	tmpDir, err := os.MkdirTemp("", "ex-raster-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(tmpDir)

	src := filepath.Join(tmpDir, "doc.pdf")
	if err := os.WriteFile(src, data, 0o600); err != nil {
		return nil, err
	}

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r <dpi> -png <in.pdf> <tmp/page>
	_, errb, err := r.runner.Run(ctx, r.cfg.Pdftoppm, "-r", fmt.Sprintf("%d", r.cfg.DPI), "-png", src, prefix)
	if err != nil {
		return nil, common.WrapError(common.ErrUnsupportedFormat,
			fmt.Sprintf("rasterize pdf: %v: %s", err, truncate(string(errb), 1<<10)))
	}

	// collect generated pngs (prefix-1.png, prefix-2.png, ...)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if r.cfg.MaxPages > 0 && len(matches) > r.cfg.MaxPages {
		matches = matches[:r.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, common.WrapError(common.ErrUnsupportedFormat, "pdftoppm produced no pages")
	}

	pages := make([]PageImage, 0, len(matches))
	for _, path := range matches {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		page, err := NormalizeImage(raw, maxDim)
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}
