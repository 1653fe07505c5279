package httputils

import (
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const pdfContentType = "application/pdf"

// SendPDF writes a combined document to the client. With inline set the
// browser is asked to render the PDF in place, otherwise it is offered
// as a download.
func SendPDF(c *gin.Context, data []byte, filename string, inline bool) {
	disposition := "attachment"
	if inline {
		disposition = "inline"
	}

	name := sanitizeFilename(filename)
	if name == "" {
		name = "combined.pdf"
	}

	c.Header("Content-Disposition", disposition+`; filename="`+name+`"`)
	c.Header("Content-Length", strconv.Itoa(len(data)))
	c.Data(http.StatusOK, pdfContentType, data)
}

// sanitizeFilename strips path segments, quotes and line breaks so the
// name is safe to embed in a Content-Disposition header.
func sanitizeFilename(filename string) string {
	name := filepath.Base(strings.TrimSpace(filename))
	name = strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(name)
	if name == "." || name == "/" {
		return ""
	}
	return name
}
