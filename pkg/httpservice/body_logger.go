package httpservice

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/pdf-combine-kit/pkg/logging"
)

// maxLoggedBody caps how much of a body is captured for logging.
const maxLoggedBody = 64 * 1024

// loggableContentType reports whether a body of this content type is
// worth capturing. PDF payloads, uploads, and other binary bodies are
// logged by size only.
func loggableContentType(contentType string) bool {
	return strings.HasPrefix(contentType, "application/json") ||
		strings.HasSuffix(contentType, "+json") ||
		strings.HasPrefix(contentType, "text/")
}

// responseWriter wraps gin.ResponseWriter to capture response bodies
// up to maxLoggedBody, and only for loggable content types.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
	size int64
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.size += int64(len(b))
	if loggableContentType(w.Header().Get("Content-Type")) && w.body.Len() < maxLoggedBody {
		room := maxLoggedBody - w.body.Len()
		if room > len(b) {
			room = len(b)
		}
		w.body.Write(b[:room])
	}
	return w.ResponseWriter.Write(b)
}

// BodyLoggingMiddleware logs request and response bodies for JSON and
// text endpoints. Binary traffic (combined PDFs, document uploads) is
// summarized as a byte count instead of being copied into the log.
func BodyLoggingMiddleware(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		// Read and log request body
		var requestBody []byte
		var requestBodyJSON interface{}

		captureRequest := c.Request.Body != nil &&
			loggableContentType(c.ContentType()) &&
			c.Request.ContentLength >= 0 &&
			c.Request.ContentLength <= maxLoggedBody
		if captureRequest {
			requestBody, _ = io.ReadAll(c.Request.Body)
			// Restore the body for handlers to read
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))

			// Try to parse as JSON for pretty logging
			if len(requestBody) > 0 {
				json.Unmarshal(requestBody, &requestBodyJSON)
			}
		}

		// Capture response body
		responseBodyWriter := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBufferString(""),
		}
		c.Writer = responseBodyWriter

		// Process request
		c.Next()

		// Calculate latency
		latency := time.Since(start)

		// Parse response body as JSON if possible
		var responseBodyJSON interface{}
		if responseBodyWriter.body.Len() > 0 && int64(responseBodyWriter.body.Len()) == responseBodyWriter.size {
			json.Unmarshal(responseBodyWriter.body.Bytes(), &responseBodyJSON)
		}

		fields := []logging.Field{
			logging.NewField("method", c.Request.Method),
			logging.NewField("path", c.Request.URL.Path),
			logging.NewField("status", c.Writer.Status()),
			logging.NewField("latency_ms", latency.Milliseconds()),
		}

		// Add request ID
		if requestID, exists := c.Get("request_id"); exists {
			fields = append(fields, logging.NewField("request_id", requestID))
		}

		// Add trace ID
		if traceID, exists := c.Get("trace_id"); exists {
			fields = append(fields, logging.NewField("trace_id", traceID))
		}

		// Add request body
		if requestBodyJSON != nil {
			fields = append(fields, logging.NewField("request_body", requestBodyJSON))
		} else if len(requestBody) > 0 {
			fields = append(fields, logging.NewField("request_body_raw", string(requestBody)))
		} else if !captureRequest && c.Request.ContentLength > 0 {
			fields = append(fields,
				logging.NewField("request_body_bytes", c.Request.ContentLength),
				logging.NewField("request_content_type", c.ContentType()),
			)
		}

		// Add response body
		if responseBodyJSON != nil {
			fields = append(fields, logging.NewField("response_body", responseBodyJSON))
		} else if responseBodyWriter.body.Len() > 0 {
			fields = append(fields, logging.NewField("response_body_raw", responseBodyWriter.body.String()))
			if int64(responseBodyWriter.body.Len()) < responseBodyWriter.size {
				fields = append(fields, logging.NewField("response_body_truncated", true))
			}
		} else if responseBodyWriter.size > 0 {
			fields = append(fields,
				logging.NewField("response_body_bytes", responseBodyWriter.size),
				logging.NewField("response_content_type", responseBodyWriter.Header().Get("Content-Type")),
			)
		}

		// Log based on status code
		if c.Writer.Status() >= 500 {
			logger.Error("HTTP Request/Response", fields...)
		} else if c.Writer.Status() >= 400 {
			logger.Warn("HTTP Request/Response", fields...)
		} else {
			logger.Info("HTTP Request/Response", fields...)
		}
	}
}
