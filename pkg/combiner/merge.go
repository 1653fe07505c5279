package combiner

import (
	"fmt"
	"strings"

	"github.com/yourorg/pdf-combine-kit/pkg/logging"
	"github.com/yourorg/pdf-combine-kit/pkg/pdfutil"
)

// MergeOptions control one merge pass.
type MergeOptions struct {
	// Orientation forces the layout of every page that has no
	// per-document override. Auto derives it from each page's own
	// dimensions.
	Orientation Orientation
	// Metadata fills the output document information dictionary.
	// Recognized keys: title, author, subject, keywords, creator.
	// Unknown keys are skipped.
	Metadata map[string]string
	// Duplex pads with a blank page wherever a document would
	// otherwise leave the running page total odd, so every document
	// starts on a front side when printed double-sided.
	Duplex bool
}

// metadataFields is the closed table of recognized metadata keys.
var metadataFields = map[string]pdfutil.InfoField{
	"title":    pdfutil.InfoTitle,
	"author":   pdfutil.InfoAuthor,
	"subject":  pdfutil.InfoSubject,
	"keywords": pdfutil.InfoKeywords,
	"creator":  pdfutil.InfoCreator,
}

// Merge assembles every registered document, in registration order,
// into the session's output document. Metadata is applied first so a
// bad assembler state surfaces before any page work.
func (s *Session) Merge(opts MergeOptions) error {
	if len(s.documents) == 0 {
		return ErrNoDocuments
	}
	if err := s.applyMetadata(opts.Metadata); err != nil {
		return err
	}
	for _, doc := range s.documents {
		if err := s.mergeDocument(doc, opts); err != nil {
			return err
		}
	}
	s.merged = true
	s.log.Info("documents merged",
		logging.NewField("documents", len(s.documents)),
		logging.NewField("pages", s.asm.PageCount()),
		logging.NewField("duplex", opts.Duplex))
	return nil
}

func (s *Session) applyMetadata(meta map[string]string) error {
	for key, value := range meta {
		field, ok := metadataFields[strings.ToLower(key)]
		if !ok {
			continue
		}
		if err := s.asm.SetInfoField(field, value); err != nil {
			return fmt.Errorf("combiner: setting %s: %w", strings.ToLower(key), err)
		}
	}
	return nil
}

func (s *Session) mergeDocument(doc Document, opts MergeOptions) error {
	count, err := s.asm.OpenSource(doc.Path)
	if err != nil {
		return &FileNotFoundError{Path: doc.Path, Err: err}
	}

	pages := doc.Pages
	if pages == nil {
		pages = allPages(count)
	}

	var lastSize pdfutil.PageSize
	var lastOrient Orientation
	for _, page := range pages {
		if page > count {
			return &PageNotFoundError{Page: page, Path: doc.Path}
		}
		tpl, err := s.asm.ImportPage(doc.Path, page)
		if err != nil {
			return fmt.Errorf("combiner: importing page %d of %s: %w", page, doc.Path, err)
		}

		orient := effectiveOrientation(doc, opts, tpl.Size)
		if err := s.asm.AddPage(orient, tpl.Size); err != nil {
			return fmt.Errorf("combiner: adding page %d of %s: %w", page, doc.Path, err)
		}
		if err := s.asm.UseTemplate(tpl); err != nil {
			return fmt.Errorf("combiner: placing page %d of %s: %w", page, doc.Path, err)
		}
		lastSize, lastOrient = tpl.Size, orient
	}

	// The parity check runs against the running total, not this
	// document's own page count, and after every document including
	// the final one.
	if opts.Duplex && s.asm.PageCount()%2 == 1 {
		if err := s.asm.AddPage(lastOrient, lastSize); err != nil {
			return fmt.Errorf("combiner: adding duplex filler after %s: %w", doc.Path, err)
		}
		s.log.Debug("duplex filler page added", logging.NewField("after", doc.Path))
	}
	return nil
}

// effectiveOrientation picks the per-document override, then the
// merge-wide one, then falls back to the page's own shape.
func effectiveOrientation(doc Document, opts MergeOptions, size pdfutil.PageSize) Orientation {
	if doc.Orientation != OrientationAuto {
		return doc.Orientation
	}
	if opts.Orientation != OrientationAuto {
		return opts.Orientation
	}
	return size.Orientation()
}

func allPages(count int) []int {
	pages := make([]int, count)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}
