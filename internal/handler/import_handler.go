package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/goalie-roster-api/internal/dto"
	"github.com/noah-isme/goalie-roster-api/internal/models"
	"github.com/noah-isme/goalie-roster-api/internal/service"
	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
	"github.com/noah-isme/goalie-roster-api/pkg/response"
)

// multipartOverhead leaves room for boundaries and form fields around the file.
const multipartOverhead = 64 * 1024

type importService interface {
	Import(ctx context.Context, req service.ImportRequest) (*models.ImportSummary, error)
	Enqueue(ctx context.Context, req service.ImportRequest) (*models.ImportJob, error)
	GetJob(ctx context.Context, id string) (*models.ImportJob, error)
}

// ImportHandler accepts roster files and reports on queued imports.
type ImportHandler struct {
	service        importService
	validator      *validator.Validate
	maxUploadBytes int64
}

// NewImportHandler constructs an import handler.
func NewImportHandler(svc importService, validate *validator.Validate, maxUploadBytes int64) *ImportHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ImportHandler{service: svc, validator: validate, maxUploadBytes: maxUploadBytes}
}

// Create godoc
// @Summary Import a roster or session CSV
// @Description Accepts a multipart `file` field or a raw text/csv body.
// @Tags Imports
// @Accept multipart/form-data
// @Accept text/csv
// @Produce json
// @Param file formData file false "CSV file"
// @Param targetAthleteId query string false "Scope every row to this athlete"
// @Param async query bool false "Queue the import and return a job id"
// @Param dryRun query bool false "Parse and reconcile without writing"
// @Param keepHistory query bool false "Leave session history alone when the file has no date column"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Success 202 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Failure 415 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /imports [post]
func (h *ImportHandler) Create(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)
	}

	var req dto.CreateImportRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, uploadError(err, "invalid import options"))
		return
	}
	if isMultipart(c) {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			response.Error(c, uploadError(err, "invalid import options"))
			return
		}
	}
	if err := h.validator.Struct(req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "targetAthleteId must look like GC-<number>"))
		return
	}

	content, err := h.readUpload(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	importReq := service.ImportRequest{
		Content:         string(content),
		TargetAthleteID: strings.TrimSpace(req.TargetAthleteID),
		DryRun:          req.DryRun,
		KeepHistory:     req.KeepHistory,
		RequestedBy:     actorID(c),
	}

	if req.Async {
		job, err := h.service.Enqueue(c.Request.Context(), importReq)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Accepted(c, dto.ImportJobAccepted{JobID: job.ID, Status: job.Status})
		return
	}

	summary, err := h.service.Import(c.Request.Context(), importReq)
	if err != nil {
		if summary != nil {
			response.Error(c, err, map[string]interface{}{"summary": summary})
			return
		}
		response.Error(c, err)
		return
	}
	if req.DryRun {
		response.JSON(c, http.StatusOK, dto.ImportResponse{Summary: *summary}, nil, map[string]interface{}{"dry_run": true})
		return
	}
	response.Created(c, dto.ImportResponse{Summary: *summary})
}

// GetJob godoc
// @Summary Asynchronous import status
// @Tags Imports
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /imports/{jobId} [get]
func (h *ImportHandler) GetJob(c *gin.Context) {
	job, err := h.service.GetJob(c.Request.Context(), c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

func (h *ImportHandler) readUpload(c *gin.Context) ([]byte, error) {
	var content []byte
	if isMultipart(c) {
		fileHeader, err := c.FormFile("file")
		if err != nil {
			return nil, uploadError(err, "file is required")
		}
		if h.maxUploadBytes > 0 && fileHeader.Size > h.maxUploadBytes {
			return nil, h.tooLarge()
		}
		src, err := fileHeader.Open()
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file")
		}
		defer src.Close()
		if content, err = io.ReadAll(src); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read file")
		}
	} else {
		var err error
		if content, err = io.ReadAll(c.Request.Body); err != nil {
			return nil, uploadError(err, "failed to read request body")
		}
	}

	if h.maxUploadBytes > 0 && int64(len(content)) > h.maxUploadBytes {
		return nil, h.tooLarge()
	}
	if len(bytes.TrimSpace(content)) > 0 && !isText(content) {
		return nil, appErrors.Clone(appErrors.ErrUnsupportedFile, fmt.Sprintf("import file must be plain text CSV, got %s", mimetype.Detect(content).String()))
	}
	return content, nil
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/")
}

func (h *ImportHandler) tooLarge() *appErrors.Error {
	return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("import file exceeds %d bytes", h.maxUploadBytes))
}

// isText accepts any detected type descending from text/plain, which covers
// CSV and TSV with or without a byte-order mark.
func isText(content []byte) bool {
	for mt := mimetype.Detect(content); mt != nil; mt = mt.Parent() {
		if mt.Is("text/plain") {
			return true
		}
	}
	return false
}

func uploadError(err error, message string) *appErrors.Error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return appErrors.Clone(appErrors.ErrPayloadTooLarge, fmt.Sprintf("import file exceeds %d bytes", maxErr.Limit-multipartOverhead))
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}
