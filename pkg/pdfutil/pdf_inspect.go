package pdfutil

import (
	"fmt"
	"os"

	"github.com/phpdave11/gofpdi"
)

// DocumentInfo describes an existing PDF file.
type DocumentInfo struct {
	Path      string
	PageCount int
	PageSizes map[int]PageSize // keyed by 1-based page number
}

// Inspect opens path with a throwaway importer and reports its page
// count and page sizes without producing any output document.
func Inspect(path string) (info *DocumentInfo, err error) {
	if _, statErr := os.Stat(path); statErr != nil {
		return nil, fmt.Errorf("pdfutil: inspecting %s: %w", path, statErr)
	}
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, fmt.Errorf("pdfutil: inspecting %s: %v", path, r)
		}
	}()

	imp := gofpdi.NewImporter()
	imp.SetSourceFile(path)

	info = &DocumentInfo{
		Path:      path,
		PageCount: imp.GetNumPages(),
		PageSizes: make(map[int]PageSize),
	}
	for page, boxes := range imp.GetPageSizes() {
		if box, ok := boxes["/MediaBox"]; ok {
			info.PageSizes[page] = PageSize{Width: box["w"], Height: box["h"]}
		}
	}
	return info, nil
}
