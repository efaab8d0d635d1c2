package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"docvision/internal/domain"
	"docvision/internal/port"
	"docvision/internal/service"
	"docvision/internal/task"
)

// ContentLoader wraps uploaded bytes into an image reference.
type ContentLoader interface {
	FromBytes(source string, data []byte) (port.ImageRef, error)
}

// ExtractHandler runs single-document extractions.
type ExtractHandler struct {
	extraction service.ExtractionService
	loader     ContentLoader
	maxBytes   int64
}

// NewExtractHandler creates a new ExtractHandler.
func NewExtractHandler(extraction service.ExtractionService, loader ContentLoader, maxBytes int64) *ExtractHandler {
	return &ExtractHandler{extraction: extraction, loader: loader, maxBytes: maxBytes}
}

// Extract handles POST /api/v1/extract/:task
// @Summary Extract from one document
// @Description Run one task over an uploaded image or PDF
// @Tags extract
// @Accept multipart/form-data
// @Produce json
// @Param task path string true "Task kind" Enums(ocr, layout, table, field_extraction, ner, form, invoice, contract)
// @Param file formData file true "Document image or PDF"
// @Param prompt formData string false "Prompt override"
// @Param preset formData string false "Schema preset for field_extraction"
// @Param schema formData string false "Custom schema JSON for field_extraction"
// @Param with_boxes formData bool false "OCR with bounding boxes"
// @Param layout_mode formData string false "Layout mode" Enums(elements, sections, reading_order)
// @Param output_format formData string false "Table output format (csv)"
// @Param entity_types formData string false "Comma-separated NER entity types"
// @Param document_type formData string false "invoice or receipt"
// @Success 200 {object} Response{data=service.ExtractionResult} "Extraction result"
// @Failure 400 {object} ErrorResponseBody "Invalid task or options"
// @Failure 413 {object} ErrorResponseBody "File too large"
// @Failure 415 {object} ErrorResponseBody "Unsupported content type"
// @Failure 429 {object} ErrorResponseBody "Backend rate limited"
// @Router /extract/{task} [post]
func (h *ExtractHandler) Extract(c *gin.Context) {
	kind, err := task.ParseKind(c.Param("task"))
	if err != nil {
		HandleError(c, err)
		return
	}

	header, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "file field is required")
		return
	}
	opts, err := formOptions(c)
	if err == nil {
		err = checkOptions(opts)
	}
	if err != nil {
		respondBadOptions(c, err)
		return
	}

	image, err := h.readUpload(header)
	if err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.extraction.Extract(c.Request.Context(), kind, image, opts)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

// ExtractPages handles POST /api/v1/extract/:task/pages
// @Summary Extract from a multi-page document
// @Description Run one task over ordered page images and merge the results
// @Tags extract
// @Accept multipart/form-data
// @Produce json
// @Param task path string true "Task kind"
// @Param files formData file true "Page images in order (repeat the field)"
// @Param merge formData string false "Merge strategy" Enums(concatenate, structured)
// @Success 200 {object} Response{data=service.PagesResult} "Merged document"
// @Failure 400 {object} ErrorResponseBody "Invalid task, options or no pages"
// @Router /extract/{task}/pages [post]
func (h *ExtractHandler) ExtractPages(c *gin.Context) {
	kind, err := task.ParseKind(c.Param("task"))
	if err != nil {
		HandleError(c, err)
		return
	}
	strategy, err := task.ParseMergeStrategy(c.PostForm("merge"))
	if err != nil {
		HandleError(c, err)
		return
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", "at least one files field is required")
		return
	}
	opts, err := formOptions(c)
	if err == nil {
		err = checkOptions(opts)
	}
	if err != nil {
		respondBadOptions(c, err)
		return
	}

	pages := make([]port.ImageRef, 0, len(form.File["files"]))
	for _, header := range form.File["files"] {
		image, err := h.readUpload(header)
		if err != nil {
			HandleError(c, err)
			return
		}
		pages = append(pages, image)
	}

	result, err := h.extraction.ExtractPages(c.Request.Context(), kind, pages, strategy, opts)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}

func (h *ExtractHandler) readUpload(header *multipart.FileHeader) (port.ImageRef, error) {
	if h.maxBytes > 0 && header.Size > h.maxBytes {
		return port.ImageRef{}, fmt.Errorf("%s: %w", header.Filename, domain.ErrFileTooLarge)
	}
	f, err := header.Open()
	if err != nil {
		return port.ImageRef{}, fmt.Errorf("opening upload %s: %w", header.Filename, err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if h.maxBytes > 0 {
		r = io.LimitReader(f, h.maxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return port.ImageRef{}, fmt.Errorf("reading upload %s: %w", header.Filename, err)
	}
	return h.loader.FromBytes(header.Filename, data)
}
