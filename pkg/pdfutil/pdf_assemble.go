package pdfutil

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/jung-kurt/gofpdf"
	"github.com/phpdave11/gofpdi"
)

// DocumentAssembler is the gofpdf-backed Assembler. Source files are
// parsed once and cached on the importer, so pages of the same file can
// be imported repeatedly without re-reading it.
type DocumentAssembler struct {
	pdf      *gofpdf.Fpdf
	importer *gofpdi.Importer
	counts   map[string]int // page count per opened source
	source   string         // importer's current source file
	final    []byte         // serialized document, set on first output
}

var _ Assembler = (*DocumentAssembler)(nil)

// NewDocumentAssembler returns an assembler with an empty output
// document. The document uses point units; every page is emitted at a
// caller-supplied size.
func NewDocumentAssembler() *DocumentAssembler {
	return &DocumentAssembler{
		pdf:      gofpdf.New("P", "pt", "A4", ""),
		importer: gofpdi.NewImporter(),
		counts:   make(map[string]int),
	}
}

// catch converts the panics gofpdi uses for error reporting into
// ordinary returned errors.
func catch(err *error, op, path string) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("pdfutil: %s %s: %v", op, path, r)
	}
}

// OpenSource parses path and returns its page count.
func (a *DocumentAssembler) OpenSource(path string) (pages int, err error) {
	defer catch(&err, "opening", path)

	a.importer.SetSourceFile(path)
	a.source = path
	pages = a.importer.GetNumPages()
	a.counts[path] = pages
	return pages, nil
}

// ImportPage imports one page of path as a template. The source is
// opened on demand if OpenSource was not called first.
func (a *DocumentAssembler) ImportPage(path string, page int) (tpl Template, err error) {
	defer catch(&err, "importing from", path)

	if a.counts[path] == 0 {
		if _, err := a.OpenSource(path); err != nil {
			return Template{}, err
		}
	} else if a.source != path {
		a.importer.SetSourceFile(path)
		a.source = path
	}
	if page < 1 || page > a.counts[path] {
		return Template{}, fmt.Errorf("pdfutil: %s has no page %d", path, page)
	}

	id := a.importer.ImportPage(page, "/MediaBox")

	// Feed the imported objects through to the output document.
	a.pdf.ImportTemplates(a.importer.PutFormXobjectsUnordered())
	a.pdf.ImportObjects(a.importer.GetImportedObjectsUnordered())
	a.pdf.ImportObjPos(a.importer.GetImportedObjHashPos())

	size, err := a.pageSize(page)
	if err != nil {
		return Template{}, err
	}
	return Template{id: id, Size: size}, nil
}

func (a *DocumentAssembler) pageSize(page int) (PageSize, error) {
	boxes, ok := a.importer.GetPageSizes()[page]
	if !ok {
		return PageSize{}, fmt.Errorf("pdfutil: no size for page %d of %s", page, a.source)
	}
	box, ok := boxes["/MediaBox"]
	if !ok {
		return PageSize{}, fmt.Errorf("pdfutil: page %d of %s has no media box", page, a.source)
	}
	return PageSize{Width: box["w"], Height: box["h"]}, nil
}

// AddPage starts a new output page. AddPageFormat swaps the dimensions
// for landscape pages, so the size is normalized to portrait form and
// the orientation string alone decides the final layout.
func (a *DocumentAssembler) AddPage(o Orientation, size PageSize) error {
	if o == OrientationAuto {
		o = size.Orientation()
	}
	orient := "P"
	if o == Landscape {
		orient = "L"
	}
	a.pdf.AddPageFormat(orient, portraitForm(size))
	return a.err()
}

func portraitForm(size PageSize) gofpdf.SizeType {
	if size.Width > size.Height {
		return gofpdf.SizeType{Wd: size.Height, Ht: size.Width}
	}
	return gofpdf.SizeType{Wd: size.Width, Ht: size.Height}
}

// UseTemplate stamps an imported page onto the current output page at
// its natural size, anchored at the page origin.
func (a *DocumentAssembler) UseTemplate(t Template) (err error) {
	defer catch(&err, "placing page from", a.source)

	name, scaleX, scaleY, tX, tY := a.importer.UseTemplate(t.id, 0, 0, t.Size.Width, t.Size.Height)
	a.pdf.UseImportedTemplate(name, scaleX, scaleY, tX, tY)
	return a.err()
}

// PageCount returns the number of output pages emitted so far.
func (a *DocumentAssembler) PageCount() int {
	return a.pdf.PageNo()
}

// SetInfoField writes one document information entry. Values are
// treated as UTF-8.
func (a *DocumentAssembler) SetInfoField(f InfoField, value string) error {
	switch f {
	case InfoTitle:
		a.pdf.SetTitle(value, true)
	case InfoAuthor:
		a.pdf.SetAuthor(value, true)
	case InfoSubject:
		a.pdf.SetSubject(value, true)
	case InfoKeywords:
		a.pdf.SetKeywords(value, true)
	case InfoCreator:
		a.pdf.SetCreator(value, true)
	default:
		return fmt.Errorf("pdfutil: unknown info field %d", f)
	}
	return a.err()
}

// finalize closes the document and caches its bytes so the output can
// be written to more than one destination.
func (a *DocumentAssembler) finalize() ([]byte, error) {
	if a.final != nil {
		return a.final, nil
	}
	var buf bytes.Buffer
	if err := a.pdf.Output(&buf); err != nil {
		return nil, err
	}
	a.final = buf.Bytes()
	return a.final, nil
}

// Output writes the finished document to w. No pages can be added
// afterwards.
func (a *DocumentAssembler) Output(w io.Writer) error {
	b, err := a.finalize()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// OutputFile writes the finished document to path.
func (a *DocumentAssembler) OutputFile(path string) error {
	b, err := a.finalize()
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// Bytes returns the finished document.
func (a *DocumentAssembler) Bytes() ([]byte, error) {
	return a.finalize()
}

func (a *DocumentAssembler) err() error {
	if a.pdf.Err() {
		return a.pdf.Error()
	}
	return nil
}
