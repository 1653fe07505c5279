// Package pdfutil assembles PDF documents out of pages imported from
// existing files. It wraps gofpdf for the output document and gofpdi
// for reading source pages in as templates.
package pdfutil

import (
	"fmt"
	"io"
	"strings"
)

// Orientation selects how an output page is laid out.
type Orientation int

const (
	// OrientationAuto derives the orientation from the page's own
	// dimensions.
	OrientationAuto Orientation = iota
	Portrait
	Landscape
)

func (o Orientation) String() string {
	switch o {
	case Portrait:
		return "portrait"
	case Landscape:
		return "landscape"
	default:
		return "auto"
	}
}

// ParseOrientation maps user-facing orientation names onto the enum.
// Empty input means auto-detect.
func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return OrientationAuto, nil
	case "p", "portrait":
		return Portrait, nil
	case "l", "landscape":
		return Landscape, nil
	default:
		return OrientationAuto, fmt.Errorf("pdfutil: unknown orientation %q", s)
	}
}

// PageSize is a page's width and height in points.
type PageSize struct {
	Width  float64
	Height float64
}

// A4 is the portrait A4 size in points.
var A4 = PageSize{Width: 595.28, Height: 841.89}

// Orientation reports the page's natural orientation. Square pages
// count as landscape.
func (s PageSize) Orientation() Orientation {
	if s.Width < s.Height {
		return Portrait
	}
	return Landscape
}

// Template is a source page imported into an output document, ready to
// be stamped onto an output page.
type Template struct {
	id   int
	Size PageSize
}

// InfoField names a document information dictionary entry.
type InfoField int

const (
	InfoTitle InfoField = iota
	InfoAuthor
	InfoSubject
	InfoKeywords
	InfoCreator
)

// Assembler builds one output PDF from imported source pages. An
// assembler owns a single output document and is not safe for
// concurrent use; create a fresh one per combine run.
type Assembler interface {
	// OpenSource parses a source file and returns its page count.
	OpenSource(path string) (int, error)
	// ImportPage imports one page of a source as a template and
	// reports its natural size. Pages are 1-based.
	ImportPage(path string, page int) (Template, error)
	// AddPage starts a new output page of the given size.
	AddPage(o Orientation, size PageSize) error
	// UseTemplate stamps an imported page onto the current output
	// page at its natural size.
	UseTemplate(t Template) error
	// PageCount returns the number of output pages emitted so far.
	PageCount() int
	// SetInfoField writes one document information entry.
	SetInfoField(f InfoField, value string) error
	// Output writes the finished document to w.
	Output(w io.Writer) error
	// OutputFile writes the finished document to path.
	OutputFile(path string) error
	// Bytes returns the finished document.
	Bytes() ([]byte, error)
}
