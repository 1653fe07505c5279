package pdfutil

import (
	"bytes"
	"fmt"
	"os"

	"github.com/jung-kurt/gofpdf"
)

// SampleDocument builds a simple multi-page PDF and returns its bytes.
// Each page carries a one-line label. It exists for demos and tests
// that need real input documents without shipping binary fixtures.
func SampleDocument(title string, pages int, size PageSize) ([]byte, error) {
	if pages < 1 {
		return nil, fmt.Errorf("pdfutil: sample document needs at least one page, got %d", pages)
	}

	orient := "P"
	if size.Orientation() == Landscape {
		orient = "L"
	}
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: orient,
		UnitStr:        "pt",
		Size:           portraitForm(size),
	})
	pdf.SetTitle(title, true)
	pdf.SetFont("Helvetica", "", 24)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.SetXY(36, 36)
		pdf.Cell(0, 24, fmt.Sprintf("%s page %d", title, i))
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteSampleDocument builds a sample document and writes it to path.
func WriteSampleDocument(path, title string, pages int, size PageSize) error {
	b, err := SampleDocument(title, pages, size)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
