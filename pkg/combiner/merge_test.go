package combiner

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/pdf-combine-kit/pkg/pdfutil"
)

// These tests drive the real gofpdf-backed assembler against fixture
// documents generated on the fly.

func writeFixtures(t *testing.T) (first, second string) {
	t.Helper()
	dir := t.TempDir()
	first = filepath.Join(dir, "first.pdf")
	second = filepath.Join(dir, "second.pdf")

	landscape := pdfutil.PageSize{Width: pdfutil.A4.Height, Height: pdfutil.A4.Width}
	require.NoError(t, pdfutil.WriteSampleDocument(first, "First", 3, pdfutil.A4))
	require.NoError(t, pdfutil.WriteSampleDocument(second, "Second", 2, landscape))
	return first, second
}

func TestSession_EndToEndFile(t *testing.T) {
	first, second := writeFixtures(t)

	sess := NewSession()
	require.NoError(t, sess.AddDocumentRange(first, "1-3", OrientationAuto))
	require.NoError(t, sess.AddDocument(second, nil, OrientationAuto))
	require.NoError(t, sess.Merge(MergeOptions{
		Duplex: true,
		Metadata: map[string]string{
			"title":   "Combined Pack",
			"creator": "pdf-combine-kit",
		},
	}))

	out := filepath.Join(t.TempDir(), "combined.pdf")
	b, err := sess.Save(out, ModeFile)
	require.NoError(t, err)
	assert.Nil(t, b)

	info, err := pdfutil.Inspect(out)
	require.NoError(t, err)
	require.Equal(t, 6, info.PageCount, "three portrait pages, one filler, two landscape pages")

	assert.Less(t, info.PageSizes[4].Width, info.PageSizes[4].Height, "filler page keeps the portrait layout")
	assert.Greater(t, info.PageSizes[5].Width, info.PageSizes[5].Height, "second document keeps its landscape layout")
	assert.Equal(t, 6, sess.PageCount())
}

func TestSession_EndToEndString(t *testing.T) {
	first, _ := writeFixtures(t)

	sess := NewSession()
	require.NoError(t, sess.AddDocumentRange(first, "2", OrientationAuto))
	require.NoError(t, sess.Merge(MergeOptions{}))

	b, err := sess.Save("ignored.pdf", ModeString)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("%PDF-")))
	assert.Equal(t, 1, sess.PageCount())
}

func TestSession_EndToEndBrowser(t *testing.T) {
	first, _ := writeFixtures(t)

	var buf bytes.Buffer
	sess := NewSession(WithInlineWriter(&buf))
	require.NoError(t, sess.AddDocument(first, nil, OrientationAuto))
	require.NoError(t, sess.Merge(MergeOptions{}))

	_, err := sess.Save("pack.pdf", ModeBrowser)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestSession_EndToEndPageNotFound(t *testing.T) {
	first, _ := writeFixtures(t)

	sess := NewSession()
	require.NoError(t, sess.AddDocumentRange(first, "1-9", OrientationAuto))

	err := sess.Merge(MergeOptions{})
	var pageErr *PageNotFoundError
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, 4, pageErr.Page, "the first page past the end is reported")
	assert.Equal(t, first, pageErr.Path)
}

func TestSession_EndToEndForcedOrientation(t *testing.T) {
	first, _ := writeFixtures(t)

	sess := NewSession()
	require.NoError(t, sess.AddDocument(first, []int{1}, OrientationAuto))
	require.NoError(t, sess.Merge(MergeOptions{Orientation: Landscape}))

	out := filepath.Join(t.TempDir(), "forced.pdf")
	_, err := sess.Save(out, ModeFile)
	require.NoError(t, err)

	info, err := pdfutil.Inspect(out)
	require.NoError(t, err)
	assert.Greater(t, info.PageSizes[1].Width, info.PageSizes[1].Height, "forced landscape swaps the page layout")
}
