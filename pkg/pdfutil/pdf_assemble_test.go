package pdfutil

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFixture(t *testing.T, name, title string, pages int, size PageSize) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, WriteSampleDocument(path, title, pages, size))
	return path
}

func TestDocumentAssembler_OpenSource(t *testing.T) {
	path := writeFixture(t, "three.pdf", "Three Pages", 3, A4)

	asm := NewDocumentAssembler()
	pages, err := asm.OpenSource(path)
	require.NoError(t, err)
	assert.Equal(t, 3, pages)
}

func TestDocumentAssembler_OpenSourceMissing(t *testing.T) {
	asm := NewDocumentAssembler()
	_, err := asm.OpenSource(filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Error(t, err)
}

func TestDocumentAssembler_ImportPage(t *testing.T) {
	path := writeFixture(t, "doc.pdf", "Doc", 2, A4)

	asm := NewDocumentAssembler()
	tpl, err := asm.ImportPage(path, 2)
	require.NoError(t, err)
	assert.InDelta(t, A4.Width, tpl.Size.Width, 0.01)
	assert.InDelta(t, A4.Height, tpl.Size.Height, 0.01)
	assert.Equal(t, Portrait, tpl.Size.Orientation())
}

func TestDocumentAssembler_ImportPageOutOfRange(t *testing.T) {
	path := writeFixture(t, "doc.pdf", "Doc", 2, A4)

	asm := NewDocumentAssembler()
	_, err := asm.ImportPage(path, 3)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no page 3")
}

func TestDocumentAssembler_Combine(t *testing.T) {
	landscape := PageSize{Width: A4.Height, Height: A4.Width}
	first := writeFixture(t, "first.pdf", "First", 2, A4)
	second := writeFixture(t, "second.pdf", "Second", 1, landscape)

	asm := NewDocumentAssembler()
	for _, src := range []struct {
		path  string
		pages int
	}{{first, 2}, {second, 1}} {
		count, err := asm.OpenSource(src.path)
		require.NoError(t, err)
		require.Equal(t, src.pages, count)

		for page := 1; page <= count; page++ {
			tpl, err := asm.ImportPage(src.path, page)
			require.NoError(t, err)
			require.NoError(t, asm.AddPage(OrientationAuto, tpl.Size))
			require.NoError(t, asm.UseTemplate(tpl))
		}
	}
	assert.Equal(t, 3, asm.PageCount())

	out := filepath.Join(t.TempDir(), "combined.pdf")
	require.NoError(t, asm.OutputFile(out))

	info, err := Inspect(out)
	require.NoError(t, err)
	assert.Equal(t, 3, info.PageCount)
	assert.Greater(t, info.PageSizes[3].Width, info.PageSizes[3].Height, "third page keeps its landscape layout")
}

func TestDocumentAssembler_OutputRepeats(t *testing.T) {
	path := writeFixture(t, "doc.pdf", "Doc", 1, A4)

	asm := NewDocumentAssembler()
	tpl, err := asm.ImportPage(path, 1)
	require.NoError(t, err)
	require.NoError(t, asm.AddPage(OrientationAuto, tpl.Size))
	require.NoError(t, asm.UseTemplate(tpl))

	b, err := asm.Bytes()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, asm.Output(&buf))
	assert.Equal(t, len(b), buf.Len(), "later writes reuse the finalized document")
}

func TestParseOrientation(t *testing.T) {
	cases := []struct {
		in      string
		want    Orientation
		wantErr bool
	}{
		{"", OrientationAuto, false},
		{"p", Portrait, false},
		{"Portrait", Portrait, false},
		{"L", Landscape, false},
		{"LANDSCAPE", Landscape, false},
		{" l ", Landscape, false},
		{"sideways", OrientationAuto, true},
	}
	for _, tc := range cases {
		got, err := ParseOrientation(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		assert.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestPageSize_Orientation(t *testing.T) {
	assert.Equal(t, Portrait, PageSize{Width: 100, Height: 200}.Orientation())
	assert.Equal(t, Landscape, PageSize{Width: 200, Height: 100}.Orientation())
	assert.Equal(t, Landscape, PageSize{Width: 100, Height: 100}.Orientation(), "square pages count as landscape")
}

func TestSampleDocument(t *testing.T) {
	b, err := SampleDocument("Sample", 2, A4)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))

	_, err = SampleDocument("Sample", 0, A4)
	assert.Error(t, err)
}

func TestInspect(t *testing.T) {
	path := writeFixture(t, "doc.pdf", "Doc", 2, A4)

	info, err := Inspect(path)
	require.NoError(t, err)
	assert.Equal(t, 2, info.PageCount)
	assert.InDelta(t, A4.Width, info.PageSizes[1].Width, 0.01)

	_, err = Inspect(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
