// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package presentation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/convert-master/internal/office"
)

func TestHandoutLayout(t *testing.T) {
	tests := []struct {
		perPage int
		want    int
		wantErr bool
	}{
		{perPage: 1, want: 1},
		{perPage: 2, want: 2},
		{perPage: 4, want: 4},
		{perPage: 5, want: 6},
		{perPage: 7, want: 9},
		{perPage: 9, want: 9},
		{perPage: 10, wantErr: true},
		{perPage: 0, wantErr: true},
	}
	for _, tt := range tests {
		got, err := HandoutLayout(tt.perPage)
		if tt.wantErr {
			assert.Error(t, err, "perPage=%d", tt.perPage)
			continue
		}
		require.NoError(t, err, "perPage=%d", tt.perPage)
		assert.Equal(t, tt.want, got, "perPage=%d", tt.perPage)
	}
}

// pdfRuntime writes a placeholder PDF for every conversion.
type pdfRuntime struct {
	inputs []string
	err    error
}

func (r *pdfRuntime) Name() string    { return "fake" }
func (r *pdfRuntime) Available() bool { return true }

func (r *pdfRuntime) Convert(_ context.Context, input, outDir string, target office.Target) error {
	r.inputs = append(r.inputs, input)
	if r.err != nil {
		return r.err
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return os.WriteFile(filepath.Join(outDir, base+"."+target.Format), []byte("%PDF-1.4"), 0o644)
}

func TestOfficePresenter(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.pptx")
	require.NoError(t, os.WriteFile(deck, []byte("pptx"), 0o644))
	out := filepath.Join(dir, "deck.pdf")

	rt := &pdfRuntime{}
	p, err := OfficeFactory(rt)()
	require.NoError(t, err)
	defer p.Close()

	ctx := context.Background()
	require.NoError(t, p.Open(ctx, deck))
	require.NoError(t, p.ComposeSlides(ctx, 1))
	assert.ErrorIs(t, p.ComposeSlides(ctx, 4), ErrCompositionUnsupported)
	require.NoError(t, p.Export(ctx, out))

	assert.Equal(t, []string{deck}, rt.inputs)
	assert.FileExists(t, out)
}

func TestOfficePresenter_ExportWithoutOpen(t *testing.T) {
	p := NewOfficePresenter(&pdfRuntime{})
	err := p.Export(context.Background(), filepath.Join(t.TempDir(), "x.pdf"))
	assert.Error(t, err)
}

func TestOfficePresenter_RuntimeFailure(t *testing.T) {
	dir := t.TempDir()
	deck := filepath.Join(dir, "deck.ppt")
	require.NoError(t, os.WriteFile(deck, []byte("ppt"), 0o644))

	p := NewOfficePresenter(&pdfRuntime{err: errors.New("soffice crashed")})
	require.NoError(t, p.Open(context.Background(), deck))
	err := p.Export(context.Background(), filepath.Join(dir, "deck.pdf"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "soffice crashed")
}

func TestOfficeFactory_NilRuntime(t *testing.T) {
	_, err := OfficeFactory(nil)()
	assert.Error(t, err)
}
