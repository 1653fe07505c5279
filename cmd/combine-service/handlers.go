package main

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourorg/pdf-combine-kit/pkg/combiner"
	"github.com/yourorg/pdf-combine-kit/pkg/httputils"
	"github.com/yourorg/pdf-combine-kit/pkg/jobs"
	"github.com/yourorg/pdf-combine-kit/pkg/jwt"
	"github.com/yourorg/pdf-combine-kit/pkg/logging"
	"github.com/yourorg/pdf-combine-kit/pkg/manifest"
	"github.com/yourorg/pdf-combine-kit/pkg/middleware"
	"github.com/yourorg/pdf-combine-kit/pkg/pdfutil"
	"github.com/yourorg/pdf-combine-kit/pkg/storage"
)

// Register implements the httpservice.Handler interface.
func (a *App) Register(router *gin.Engine) {
	router.Use(middleware.TracingMiddleware(a.logger, a.config.AppName))
	router.Use(middleware.ServiceRequestIDMiddleware(""))
	router.Use(middleware.ContextLoggerMiddleware(a.logger, a.config.AppName))
	router.Use(middleware.ErrorHandlerMiddleware(a.logger))
	router.Use(middleware.SlowRequestMiddleware(int64(a.config.SlowRequestMS), a.telemetry, a.slack, a.logger))

	api := router.Group("/api/v1")
	if a.jwtService != nil {
		api.Use(jwt.JWTMiddleware(a.jwtService, a.logger))
	}

	combine := api.Group("/combine")
	documents := api.Group("/documents")
	if a.jwtService != nil {
		combine.Use(jwt.RequireScope(jwt.ScopeCombine, a.logger))
		documents.Use(jwt.RequireScope(jwt.ScopeDocuments, a.logger))
	}

	combine.POST("", a.handleCombine)
	combine.POST("/upload", a.handleCombineUpload)
	combine.POST("/manifest", a.handleCombineManifest)
	combine.POST("/jobs", a.handleEnqueueJob)

	documents.GET("", a.handleListDocuments)
	documents.POST("", a.handleUploadDocument)
	documents.DELETE("/*name", a.handleDeleteDocument)
}

// CombineDocument selects pages from one stored document.
type CombineDocument struct {
	Source      string `json:"source" binding:"required"`
	Pages       string `json:"pages"`
	Orientation string `json:"orientation"`
}

// CombineOutput names the combined artifact and how it is delivered.
type CombineOutput struct {
	Name string `json:"name"`
	Mode string `json:"mode"` // browser, download, file, string
}

// CombineRequest is the body of POST /api/v1/combine and
// POST /api/v1/combine/jobs.
type CombineRequest struct {
	Documents   []CombineDocument `json:"documents" binding:"required,min=1,dive"`
	Orientation string            `json:"orientation"`
	Duplex      bool              `json:"duplex"`
	Metadata    map[string]string `json:"metadata"`
	Output      CombineOutput     `json:"output"`
}

func (r CombineRequest) toJob() jobs.CombineJob {
	docs := make([]jobs.DocumentRequest, 0, len(r.Documents))
	for _, d := range r.Documents {
		docs = append(docs, jobs.DocumentRequest{
			Source:      d.Source,
			Pages:       d.Pages,
			Orientation: d.Orientation,
		})
	}
	return jobs.CombineJob{
		Documents:   docs,
		Orientation: r.Orientation,
		Duplex:      r.Duplex,
		Metadata:    r.Metadata,
		Output:      jobs.OutputSpec{Name: r.Output.Name},
	}
}

// handleCombine merges stored documents and answers in the requested
// output mode, all within the request.
func (a *App) handleCombine(c *gin.Context) {
	var req CombineRequest
	if !httputils.BindJSON(c, &req) {
		return
	}

	ctx := c.Request.Context()
	logger := logging.FromContext(ctx)

	names := make([]string, 0, len(req.Documents))
	for _, doc := range req.Documents {
		names = append(names, doc.Source)
	}

	paths, cleanup, err := storage.Stage(ctx, a.store, a.retry, a.config.WorkDir, names)
	if err != nil {
		httputils.HandleError(c, err)
		return
	}
	defer cleanup()

	session := combiner.NewSession(combiner.WithLogger(logger))
	for i, doc := range req.Documents {
		orient, err := pdfutil.ParseOrientation(doc.Orientation)
		if err != nil {
			httputils.BadRequest(c, fmt.Sprintf("document %d has an invalid orientation", i+1), err)
			return
		}
		if doc.Pages == "" {
			err = session.AddDocument(paths[i], nil, orient)
		} else {
			err = session.AddDocumentRange(paths[i], doc.Pages, orient)
		}
		if err != nil {
			httputils.HandleError(c, err)
			return
		}
	}

	orient, err := pdfutil.ParseOrientation(req.Orientation)
	if err != nil {
		httputils.BadRequest(c, "invalid orientation", err)
		return
	}

	if err := session.Merge(combiner.MergeOptions{
		Orientation: orient,
		Metadata:    req.Metadata,
		Duplex:      req.Duplex,
	}); err != nil {
		httputils.HandleError(c, err)
		return
	}

	data, err := session.Save("", combiner.ModeString)
	if err != nil {
		httputils.HandleError(c, err)
		return
	}

	logger.Info("Combine completed",
		logging.NewField("documents", len(req.Documents)),
		logging.NewField("pages", session.PageCount()),
	)

	a.respondCombined(c, data, session.PageCount(), req.Output.Name, combiner.ParseOutputMode(req.Output.Mode))
}

// handleCombineUpload merges PDFs sent with the request itself. Page
// selections and orientation overrides align with the files by
// position.
func (a *App) handleCombineUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		httputils.BadRequest(c, "Multipart form is required", err)
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		httputils.BadRequest(c, "At least one PDF file is required", nil)
		return
	}

	pages := form.Value["pages"]
	orientations := form.Value["orientations"]

	logger := logging.FromContext(c.Request.Context())

	dir, err := os.MkdirTemp(a.config.WorkDir, "upload-*")
	if err != nil {
		httputils.InternalServerError(c, "Failed to create scratch space", err)
		return
	}
	defer os.RemoveAll(dir)

	session := combiner.NewSession(combiner.WithLogger(logger))
	for i, file := range files {
		path := filepath.Join(dir, fmt.Sprintf("%03d-%s", i, filepath.Base(file.Filename)))
		if err := c.SaveUploadedFile(file, path); err != nil {
			httputils.InternalServerError(c, "Failed to save uploaded file", err)
			return
		}

		orient := combiner.OrientationAuto
		if i < len(orientations) && orientations[i] != "" {
			orient, err = pdfutil.ParseOrientation(orientations[i])
			if err != nil {
				httputils.BadRequest(c, fmt.Sprintf("file %d has an invalid orientation", i+1), err)
				return
			}
		}

		pageExpr := ""
		if i < len(pages) {
			pageExpr = pages[i]
		}
		if pageExpr == "" {
			err = session.AddDocument(path, nil, orient)
		} else {
			err = session.AddDocumentRange(path, pageExpr, orient)
		}
		if err != nil {
			httputils.HandleError(c, err)
			return
		}
	}

	orient, err := pdfutil.ParseOrientation(c.PostForm("orientation"))
	if err != nil {
		httputils.BadRequest(c, "invalid orientation", err)
		return
	}

	metadata := map[string]string{}
	for _, key := range []string{"title", "author", "subject", "keywords", "creator"} {
		if v := c.PostForm(key); v != "" {
			metadata[key] = v
		}
	}

	duplex, _ := strconv.ParseBool(c.PostForm("duplex"))

	if err := session.Merge(combiner.MergeOptions{
		Orientation: orient,
		Metadata:    metadata,
		Duplex:      duplex,
	}); err != nil {
		httputils.HandleError(c, err)
		return
	}

	data, err := session.Save("", combiner.ModeString)
	if err != nil {
		httputils.HandleError(c, err)
		return
	}

	logger.Info("Upload combine completed",
		logging.NewField("files", len(files)),
		logging.NewField("pages", session.PageCount()),
	)

	a.respondCombined(c, data, session.PageCount(), c.PostForm("output"), combiner.ParseOutputMode(c.PostForm("mode")))
}

// handleEnqueueJob queues a combine for the background workers. The
// artifact always lands in the document store, so the job must name
// its output.
func (a *App) handleEnqueueJob(c *gin.Context) {
	var req CombineRequest
	if !httputils.BindJSON(c, &req) {
		return
	}
	if req.Output.Name == "" {
		httputils.BadRequest(c, "Queued combines must name their output", nil)
		return
	}

	id, err := a.queue.Enqueue(c.Request.Context(), req.toJob(), jobs.WithProperty("origin", "api"))
	if err != nil {
		httputils.HandleError(c, err)
		return
	}

	httputils.Accepted(c, "Combine job queued", gin.H{
		"job_id": id,
		"output": jobs.OutputName(a.config.OutputPrefix, req.Output.Name),
	})
}

// handleCombineManifest queues a combine described by an uploaded CSV
// manifest of stored documents.
func (a *App) handleCombineManifest(c *gin.Context) {
	file, err := c.FormFile("manifest")
	if err != nil {
		httputils.BadRequest(c, "Manifest file is required", err)
		return
	}

	output := c.PostForm("output")
	if output == "" {
		httputils.BadRequest(c, "Output name is required", nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		httputils.InternalServerError(c, "Failed to open manifest", err)
		return
	}
	defer src.Close()

	entries, err := manifest.Load(src)
	if err != nil {
		httputils.BadRequest(c, "Invalid manifest", err)
		return
	}
	if len(entries) == 0 {
		httputils.BadRequest(c, "Manifest names no documents", nil)
		return
	}

	docs := make([]jobs.DocumentRequest, 0, len(entries))
	for _, entry := range entries {
		docs = append(docs, jobs.DocumentRequest{
			Source:      entry.File,
			Pages:       entry.Pages,
			Orientation: entry.Orientation,
		})
	}

	duplex, _ := strconv.ParseBool(c.PostForm("duplex"))
	job := jobs.CombineJob{
		Documents:   docs,
		Orientation: c.PostForm("orientation"),
		Duplex:      duplex,
		Output:      jobs.OutputSpec{Name: output},
	}

	id, err := a.queue.Enqueue(c.Request.Context(), job, jobs.WithProperty("origin", "manifest"))
	if err != nil {
		httputils.HandleError(c, err)
		return
	}

	httputils.Accepted(c, "Combine job queued", gin.H{
		"job_id":    id,
		"documents": len(docs),
		"output":    jobs.OutputName(a.config.OutputPrefix, output),
	})
}

// handleListDocuments lists stored documents, optionally under a name
// prefix.
func (a *App) handleListDocuments(c *gin.Context) {
	docs, err := a.store.List(c.Request.Context(), c.Query("prefix"))
	if err != nil {
		httputils.HandleError(c, err)
		return
	}

	httputils.OK(c, gin.H{
		"documents": docs,
		"count":     len(docs),
	})
}

// handleUploadDocument stores a source PDF for later combines.
func (a *App) handleUploadDocument(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		httputils.BadRequest(c, "PDF file is required", err)
		return
	}

	name := c.PostForm("name")
	if name == "" {
		name = file.Filename
	}
	name = strings.TrimPrefix(name, "/")
	if name == "" || strings.Contains(name, "..") {
		httputils.BadRequest(c, "Invalid document name", nil)
		return
	}

	src, err := file.Open()
	if err != nil {
		httputils.InternalServerError(c, "Failed to open uploaded file", err)
		return
	}
	defer src.Close()

	url, err := a.store.Upload(c.Request.Context(), name, src, "application/pdf")
	if err != nil {
		httputils.HandleError(c, err)
		return
	}

	httputils.Created(c, "Document stored", gin.H{
		"name": name,
		"size": file.Size,
		"url":  url,
	})
}

// handleDeleteDocument removes a stored document.
func (a *App) handleDeleteDocument(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("name"), "/")
	if name == "" {
		httputils.BadRequest(c, "Document name is required", nil)
		return
	}

	if err := a.store.Delete(c.Request.Context(), name); err != nil {
		httputils.HandleError(c, err)
		return
	}

	httputils.OK(c, gin.H{"name": name})
}

// respondCombined delivers merged bytes per the requested output mode:
// file mode uploads to the store, string mode returns base64 in the
// envelope, browser and download stream the document itself.
func (a *App) respondCombined(c *gin.Context, data []byte, pages int, name string, mode combiner.OutputMode) {
	if name == "" {
		name = "combined.pdf"
	}

	switch mode {
	case combiner.ModeFile:
		stored := jobs.OutputName(a.config.OutputPrefix, name)
		url, err := a.store.Upload(c.Request.Context(), stored, bytes.NewReader(data), "application/pdf")
		if err != nil {
			httputils.HandleError(c, err)
			return
		}
		httputils.OK(c, gin.H{
			"output": stored,
			"url":    url,
			"pages":  pages,
		})
	case combiner.ModeString:
		httputils.OK(c, gin.H{
			"document": base64.StdEncoding.EncodeToString(data),
			"pages":    pages,
		})
	default: // browser and download stream the document
		httputils.SendPDF(c, data, name, mode == combiner.ModeBrowser)
	}
}
