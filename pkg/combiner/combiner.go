// Package combiner merges pages from existing PDF files into a single
// output document. A Session collects source documents, each with an
// optional page selection and orientation override, merges them in
// registration order, and delivers the result to a file, a writer, or
// the caller.
package combiner

import (
	"io"
	"os"

	"github.com/yourorg/pdf-combine-kit/pkg/logging"
	"github.com/yourorg/pdf-combine-kit/pkg/pagerange"
	"github.com/yourorg/pdf-combine-kit/pkg/pdfutil"
)

// Orientation re-exports the engine orientation so most callers only
// need this package.
type Orientation = pdfutil.Orientation

const (
	OrientationAuto = pdfutil.OrientationAuto
	Portrait        = pdfutil.Portrait
	Landscape       = pdfutil.Landscape
)

// Document is one source entry registered with a session: the file it
// comes from, which pages to take (nil means all of them), and an
// optional orientation override.
type Document struct {
	Path        string
	Pages       []int
	Orientation Orientation
}

// Session accumulates source documents and merges them into one output
// PDF. A session owns a single assembler, so it is single-use: merge,
// save, discard. After a failed Merge the partially assembled output
// must not be saved. Sessions are not safe for concurrent use.
type Session struct {
	asm       pdfutil.Assembler
	log       logging.Logger
	inline    io.Writer
	documents []Document
	merged    bool
}

// Option configures a Session.
type Option func(*Session)

// WithAssembler injects the engine the session drives. Defaults to a
// fresh DocumentAssembler.
func WithAssembler(a pdfutil.Assembler) Option {
	return func(s *Session) { s.asm = a }
}

// WithLogger attaches a logger to the session.
func WithLogger(log logging.Logger) Option {
	return func(s *Session) { s.log = log }
}

// WithInlineWriter sets the destination for ModeDownload and
// ModeBrowser output. Defaults to standard output; HTTP handlers pass
// the response writer.
func WithInlineWriter(w io.Writer) Option {
	return func(s *Session) { s.inline = w }
}

// NewSession returns an empty merge session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		log:    logging.Nop(),
		inline: os.Stdout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.asm == nil {
		s.asm = pdfutil.NewDocumentAssembler()
	}
	return s
}

// AddDocument registers a source file. pages selects which pages to
// take, in order and 1-based; nil or empty means the whole document.
// The file must exist and be readable at registration time.
func (s *Session) AddDocument(path string, pages []int, orient Orientation) error {
	if err := checkReadable(path); err != nil {
		return err
	}
	if err := pagerange.ValidatePages(pages); err != nil {
		return err
	}

	doc := Document{Path: path, Orientation: orient}
	if len(pages) > 0 {
		doc.Pages = append([]int(nil), pages...)
	}
	s.documents = append(s.documents, doc)
	s.log.Debug("document registered",
		logging.NewField("path", path),
		logging.NewField("pages", len(pages)),
		logging.NewField("orientation", orient.String()))
	return nil
}

// AddDocumentRange registers a source file with a page selection
// expression such as "1,3,5-8".
func (s *Session) AddDocumentRange(path, pages string, orient Orientation) error {
	if err := checkReadable(path); err != nil {
		return err
	}
	list, err := pagerange.Parse(pages)
	if err != nil {
		return err
	}
	return s.AddDocument(path, list, orient)
}

// DocumentCount returns the number of registered source documents.
func (s *Session) DocumentCount() int {
	return len(s.documents)
}

// PageCount returns the number of output pages assembled so far.
func (s *Session) PageCount() int {
	return s.asm.PageCount()
}

// Documents returns a copy of the registered entries.
func (s *Session) Documents() []Document {
	docs := make([]Document, len(s.documents))
	for i, doc := range s.documents {
		docs[i] = Document{
			Path:        doc.Path,
			Pages:       append([]int(nil), doc.Pages...),
			Orientation: doc.Orientation,
		}
	}
	return docs
}

// checkReadable verifies the source exists and can be opened. Every
// registration runs this, including whole-document entries.
func checkReadable(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return &FileNotFoundError{Path: path, Err: err}
	}
	f.Close()
	return nil
}
