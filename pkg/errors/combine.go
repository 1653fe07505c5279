package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/yourorg/pdf-combine-kit/pkg/combiner"
	"github.com/yourorg/pdf-combine-kit/pkg/pagerange"
	"github.com/yourorg/pdf-combine-kit/pkg/storage"
)

// FromCombineError maps the combiner's typed failures onto application
// errors so handlers and workers can answer with actionable JSON
// without inspecting error kinds themselves.
func FromCombineError(err error) *AppError {
	if err == nil {
		return nil
	}

	var (
		rangeErr    *pagerange.InvalidRangeError
		notFound    *combiner.FileNotFoundError
		pageMissing *combiner.PageNotFoundError
		outputErr   *combiner.OutputError
	)
	switch {
	case stderrors.As(err, &rangeErr):
		details := map[string]interface{}{}
		if rangeErr.Expression != "" {
			details["expression"] = rangeErr.Expression
		}
		if rangeErr.Segment != "" {
			details["segment"] = rangeErr.Segment
		}
		if rangeErr.Start > 0 {
			details["start"] = rangeErr.Start
			details["end"] = rangeErr.End
		}
		return NewAppErrorWithErr(ErrorCodeValidation, "invalid page selection", http.StatusBadRequest, err).
			WithDetails(details)

	case stderrors.As(err, &pageMissing):
		return NewAppErrorWithErr(ErrorCodeValidation,
			fmt.Sprintf("page %d does not exist in the source document", pageMissing.Page),
			http.StatusBadRequest, err).
			WithDetails(map[string]interface{}{
				"page":   pageMissing.Page,
				"source": pageMissing.Path,
			})

	case stderrors.As(err, &notFound):
		return NewAppErrorWithErr(ErrorCodeNotFound, "source document not found", http.StatusNotFound, err).
			WithDetails(map[string]interface{}{"source": notFound.Path})

	case stderrors.Is(err, storage.ErrNotFound):
		return NewAppErrorWithErr(ErrorCodeNotFound, "document not found", http.StatusNotFound, err)

	case stderrors.Is(err, combiner.ErrNoDocuments):
		return NewAppErrorWithErr(ErrorCodeBadRequest, "no documents to combine", http.StatusBadRequest, err)

	case stderrors.As(err, &outputErr):
		return NewAppErrorWithErr(ErrorCodeInternal, "failed to write the combined document", http.StatusInternalServerError, err)

	default:
		return FromError(err)
	}
}
