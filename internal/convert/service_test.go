package convert

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entityxtract/entityxtract/constants"
	"github.com/entityxtract/entityxtract/internal/common"
)

// fakeRasterRunner emulates pdftoppm by writing pre-built PNGs next to the
// output prefix it is given.
type fakeRasterRunner struct {
	t     *testing.T
	pages int
	calls int
	fail  bool
}

func (r *fakeRasterRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.calls++
	if r.fail {
		return nil, []byte("boom"), errors.New("exit status 1")
	}
	require.NotEmpty(r.t, args)
	prefix := args[len(args)-1]
	for i := 1; i <= r.pages; i++ {
		path := prefix + "-" + string(rune('0'+i)) + ".png"
		require.NoError(r.t, os.WriteFile(path, buildPNG(r.t, 40, 30), 0o600))
	}
	return nil, nil, nil
}

func TestServiceTextByKind(t *testing.T) {
	svc := NewService(Config{}, nil, nil)
	ctx := context.Background()

	got, err := svc.Text(ctx, []byte("plain content"), constants.TEXT)
	require.NoError(t, err)
	assert.Equal(t, "plain content", got)

	_, err = svc.Text(ctx, []byte("fake"), constants.IMAGE)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)

	_, err = svc.Text(ctx, []byte("fake"), constants.DocKind("weird"))
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestServicePageImagesForImage(t *testing.T) {
	svc := NewService(Config{MaxImageDim: 64}, nil, nil)

	pages, err := svc.PageImages(context.Background(), buildPNG(t, 200, 100), constants.IMAGE)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Equal(t, 64, pages[0].Width)
	assert.Equal(t, 32, pages[0].Height)
}

func TestServicePageImagesForText(t *testing.T) {
	svc := NewService(Config{}, nil, nil)
	_, err := svc.PageImages(context.Background(), []byte("text"), constants.TEXT)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestRasterizerPDFPages(t *testing.T) {
	runner := &fakeRasterRunner{t: t, pages: 3}
	r := NewRasterizer(RasterConfig{DPI: 150}, runner)

	pages, err := r.PDFPages(context.Background(), []byte("%PDF-1.4 fake"), 2048)
	require.NoError(t, err)
	assert.Len(t, pages, 3)
	assert.Equal(t, 1, runner.calls)
	for _, page := range pages {
		assert.Equal(t, "image/jpeg", page.MIME)
		assert.Equal(t, 40, page.Width)
	}
}

func TestRasterizerPDFPagesMaxPages(t *testing.T) {
	runner := &fakeRasterRunner{t: t, pages: 5}
	r := NewRasterizer(RasterConfig{MaxPages: 2}, runner)

	pages, err := r.PDFPages(context.Background(), []byte("%PDF-1.4 fake"), 2048)
	require.NoError(t, err)
	assert.Len(t, pages, 2)
}

func TestRasterizerPDFPagesToolFailure(t *testing.T) {
	runner := &fakeRasterRunner{t: t, fail: true}
	r := NewRasterizer(RasterConfig{}, runner)

	_, err := r.PDFPages(context.Background(), []byte("junk"), 2048)
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}
