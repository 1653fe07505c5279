package combiner

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/pdf-combine-kit/pkg/pagerange"
	"github.com/yourorg/pdf-combine-kit/pkg/pdfutil"
)

// fakeAssembler scripts the engine side of a merge so the session's
// orchestration can be tested without real PDF work.
type fakeAssembler struct {
	counts  map[string]int
	sizes   map[string]pdfutil.PageSize
	imports []fakeImport
	emitted []fakePage
	info    map[pdfutil.InfoField]string
	saved   string
	payload []byte
	openErr error
}

type fakeImport struct {
	path string
	page int
}

type fakePage struct {
	orient pdfutil.Orientation
	size   pdfutil.PageSize
	blank  bool
}

func newFakeAssembler() *fakeAssembler {
	return &fakeAssembler{
		counts:  map[string]int{},
		sizes:   map[string]pdfutil.PageSize{},
		info:    map[pdfutil.InfoField]string{},
		payload: []byte("%PDF-fake"),
	}
}

func (f *fakeAssembler) addSource(path string, pages int, size pdfutil.PageSize) {
	f.counts[path] = pages
	f.sizes[path] = size
}

func (f *fakeAssembler) OpenSource(path string) (int, error) {
	if f.openErr != nil {
		return 0, f.openErr
	}
	count, ok := f.counts[path]
	if !ok {
		return 0, fmt.Errorf("fake: unknown source %s", path)
	}
	return count, nil
}

func (f *fakeAssembler) ImportPage(path string, page int) (pdfutil.Template, error) {
	if page < 1 || page > f.counts[path] {
		return pdfutil.Template{}, fmt.Errorf("fake: %s has no page %d", path, page)
	}
	f.imports = append(f.imports, fakeImport{path: path, page: page})
	return pdfutil.Template{Size: f.sizes[path]}, nil
}

func (f *fakeAssembler) AddPage(o pdfutil.Orientation, size pdfutil.PageSize) error {
	f.emitted = append(f.emitted, fakePage{orient: o, size: size, blank: true})
	return nil
}

func (f *fakeAssembler) UseTemplate(t pdfutil.Template) error {
	f.emitted[len(f.emitted)-1].blank = false
	return nil
}

func (f *fakeAssembler) PageCount() int { return len(f.emitted) }

func (f *fakeAssembler) SetInfoField(field pdfutil.InfoField, value string) error {
	f.info[field] = value
	return nil
}

func (f *fakeAssembler) Output(w io.Writer) error {
	_, err := w.Write(f.payload)
	return err
}

func (f *fakeAssembler) OutputFile(path string) error {
	f.saved = path
	return nil
}

func (f *fakeAssembler) Bytes() ([]byte, error) { return f.payload, nil }

// touch creates a stub file so registration-time readability checks
// pass for sources the fake assembler handles.
func touch(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))
	return path
}

var (
	portraitSize  = pdfutil.PageSize{Width: 595, Height: 842}
	landscapeSize = pdfutil.PageSize{Width: 842, Height: 595}
)

func TestSession_MergeOrder(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")
	b := touch(t, dir, "b.pdf")

	fake := newFakeAssembler()
	fake.addSource(a, 3, portraitSize)
	fake.addSource(b, 2, landscapeSize)

	sess := NewSession(WithAssembler(fake))
	require.NoError(t, sess.AddDocument(a, []int{3, 1}, OrientationAuto))
	require.NoError(t, sess.AddDocument(b, nil, OrientationAuto))
	require.NoError(t, sess.Merge(MergeOptions{}))

	want := []fakeImport{{a, 3}, {a, 1}, {b, 1}, {b, 2}}
	assert.Equal(t, want, fake.imports, "selected pages come out in registration order")
	assert.Equal(t, 4, sess.PageCount())
}

func TestSession_MergeNoDocuments(t *testing.T) {
	sess := NewSession(WithAssembler(newFakeAssembler()))
	err := sess.Merge(MergeOptions{})
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestSession_PageNotFound(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")

	fake := newFakeAssembler()
	fake.addSource(a, 2, portraitSize)

	sess := NewSession(WithAssembler(fake))
	require.NoError(t, sess.AddDocument(a, []int{1, 5}, OrientationAuto))

	err := sess.Merge(MergeOptions{})
	var pageErr *PageNotFoundError
	require.ErrorAs(t, err, &pageErr)
	assert.Equal(t, 5, pageErr.Page)
	assert.Equal(t, a, pageErr.Path)
	assert.Len(t, fake.imports, 1, "merge stops at the missing page")
}

func TestSession_DuplexPadding(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")
	b := touch(t, dir, "b.pdf")

	fake := newFakeAssembler()
	fake.addSource(a, 3, portraitSize)
	fake.addSource(b, 2, landscapeSize)

	sess := NewSession(WithAssembler(fake))
	require.NoError(t, sess.AddDocument(a, nil, OrientationAuto))
	require.NoError(t, sess.AddDocument(b, nil, OrientationAuto))
	require.NoError(t, sess.Merge(MergeOptions{Duplex: true}))

	require.Equal(t, 6, sess.PageCount(), "odd first document gets one filler page")
	filler := fake.emitted[3]
	assert.True(t, filler.blank)
	assert.Equal(t, portraitSize, filler.size, "filler inherits the last emitted size")
	assert.Equal(t, Portrait, filler.orient)
	for i, page := range fake.emitted {
		if i != 3 {
			assert.False(t, page.blank, "page %d should carry content", i)
		}
	}
}

func TestSession_DuplexPadsFinalDocument(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")

	fake := newFakeAssembler()
	fake.addSource(a, 1, landscapeSize)

	sess := NewSession(WithAssembler(fake))
	require.NoError(t, sess.AddDocument(a, nil, OrientationAuto))
	require.NoError(t, sess.Merge(MergeOptions{Duplex: true}))

	require.Equal(t, 2, sess.PageCount(), "the final document is padded too")
	assert.True(t, fake.emitted[1].blank)
	assert.Equal(t, Landscape, fake.emitted[1].orient)
}

func TestSession_DuplexEvenDocumentsUntouched(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")

	fake := newFakeAssembler()
	fake.addSource(a, 2, portraitSize)

	sess := NewSession(WithAssembler(fake))
	require.NoError(t, sess.AddDocument(a, nil, OrientationAuto))
	require.NoError(t, sess.Merge(MergeOptions{Duplex: true}))

	assert.Equal(t, 2, sess.PageCount())
}

func TestSession_OrientationPrecedence(t *testing.T) {
	dir := t.TempDir()

	cases := []struct {
		name   string
		doc    Orientation
		global Orientation
		size   pdfutil.PageSize
		want   Orientation
	}{
		{"auto from portrait page", OrientationAuto, OrientationAuto, portraitSize, Portrait},
		{"auto from landscape page", OrientationAuto, OrientationAuto, landscapeSize, Landscape},
		{"auto from square page", OrientationAuto, OrientationAuto, pdfutil.PageSize{Width: 500, Height: 500}, Landscape},
		{"global override beats auto", OrientationAuto, Landscape, portraitSize, Landscape},
		{"document override beats global", Portrait, Landscape, landscapeSize, Portrait},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := touch(t, dir, "doc-"+tc.name+".pdf")
			fake := newFakeAssembler()
			fake.addSource(path, 1, tc.size)

			sess := NewSession(WithAssembler(fake))
			require.NoError(t, sess.AddDocument(path, nil, tc.doc))
			require.NoError(t, sess.Merge(MergeOptions{Orientation: tc.global}))

			require.Len(t, fake.emitted, 1)
			assert.Equal(t, tc.want, fake.emitted[0].orient)
		})
	}
}

func TestSession_Metadata(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")

	fake := newFakeAssembler()
	fake.addSource(a, 1, portraitSize)

	sess := NewSession(WithAssembler(fake))
	require.NoError(t, sess.AddDocument(a, nil, OrientationAuto))
	require.NoError(t, sess.Merge(MergeOptions{Metadata: map[string]string{
		"title":    "Quarterly Pack",
		"Author":   "Finance",
		"x-custom": "dropped",
	}}))

	assert.Equal(t, "Quarterly Pack", fake.info[pdfutil.InfoTitle])
	assert.Equal(t, "Finance", fake.info[pdfutil.InfoAuthor], "keys match case-insensitively")
	assert.Len(t, fake.info, 2, "unknown keys are skipped")
}

func TestSession_SaveModes(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")

	newMerged := func(inline io.Writer) (*Session, *fakeAssembler) {
		fake := newFakeAssembler()
		fake.addSource(a, 1, portraitSize)
		opts := []Option{WithAssembler(fake)}
		if inline != nil {
			opts = append(opts, WithInlineWriter(inline))
		}
		sess := NewSession(opts...)
		require.NoError(t, sess.AddDocument(a, nil, OrientationAuto))
		require.NoError(t, sess.Merge(MergeOptions{}))
		return sess, fake
	}

	t.Run("string returns bytes", func(t *testing.T) {
		sess, fake := newMerged(nil)
		b, err := sess.Save("out.pdf", ModeString)
		require.NoError(t, err)
		assert.Equal(t, fake.payload, b)
	})

	t.Run("file writes to path", func(t *testing.T) {
		sess, fake := newMerged(nil)
		b, err := sess.Save("/tmp/out.pdf", ModeFile)
		require.NoError(t, err)
		assert.Nil(t, b)
		assert.Equal(t, "/tmp/out.pdf", fake.saved)
	})

	t.Run("browser streams inline", func(t *testing.T) {
		var buf bytes.Buffer
		sess, fake := newMerged(&buf)
		b, err := sess.Save("out.pdf", ModeBrowser)
		require.NoError(t, err)
		assert.Nil(t, b)
		assert.Equal(t, fake.payload, buf.Bytes())
	})

	t.Run("download streams inline", func(t *testing.T) {
		var buf bytes.Buffer
		sess, _ := newMerged(&buf)
		_, err := sess.Save("out.pdf", ModeDownload)
		require.NoError(t, err)
		assert.NotEmpty(t, buf.Bytes())
	})

	t.Run("save before merge", func(t *testing.T) {
		sess := NewSession(WithAssembler(newFakeAssembler()))
		_, err := sess.Save("out.pdf", ModeString)
		assert.ErrorIs(t, err, ErrNotMerged)
	})
}

func TestSession_AddDocumentValidation(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")
	missing := filepath.Join(dir, "missing.pdf")

	sess := NewSession(WithAssembler(newFakeAssembler()))

	var notFound *FileNotFoundError
	err := sess.AddDocument(missing, nil, OrientationAuto)
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.Path)

	var rangeErr *pagerange.InvalidRangeError
	err = sess.AddDocumentRange(a, "5-2", OrientationAuto)
	assert.ErrorAs(t, err, &rangeErr)

	err = sess.AddDocument(a, []int{0}, OrientationAuto)
	assert.ErrorAs(t, err, &rangeErr)

	// A missing file wins over a bad expression; sources are checked
	// before page selections.
	err = sess.AddDocumentRange(missing, "not-pages", OrientationAuto)
	assert.ErrorAs(t, err, &notFound)

	assert.Equal(t, 0, sess.DocumentCount())
}

func TestSession_DocumentsAreCopied(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")

	sess := NewSession(WithAssembler(newFakeAssembler()))
	pages := []int{1, 2}
	require.NoError(t, sess.AddDocument(a, pages, OrientationAuto))

	pages[0] = 99
	docs := sess.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, []int{1, 2}, docs[0].Pages, "registered entries are isolated from caller slices")

	docs[0].Pages[0] = 42
	assert.Equal(t, []int{1, 2}, sess.Documents()[0].Pages)
}

func TestSession_MergeOpenFailure(t *testing.T) {
	dir := t.TempDir()
	a := touch(t, dir, "a.pdf")

	fake := newFakeAssembler()
	fake.addSource(a, 1, portraitSize)
	fake.openErr = errors.New("fake: corrupt header")

	sess := NewSession(WithAssembler(fake))
	require.NoError(t, sess.AddDocument(a, nil, OrientationAuto))

	err := sess.Merge(MergeOptions{})
	var notFound *FileNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, a, notFound.Path)
}

func TestParseOutputMode(t *testing.T) {
	cases := []struct {
		in   string
		want OutputMode
	}{
		{"download", ModeDownload},
		{"DOWNLOAD", ModeDownload},
		{"file", ModeFile},
		{"string", ModeString},
		{"browser", ModeBrowser},
		{" Browser ", ModeBrowser},
		{"", ModeBrowser},
		{"carrier-pigeon", ModeBrowser},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ParseOutputMode(tc.in), "input %q", tc.in)
	}
}
