package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/goalie-roster-api/internal/dto"
	"github.com/noah-isme/goalie-roster-api/internal/models"
	"github.com/noah-isme/goalie-roster-api/internal/service"
	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
	"github.com/noah-isme/goalie-roster-api/pkg/response"
)

type athleteService interface {
	List(ctx context.Context, query dto.AthleteQuery) ([]models.Athlete, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Athlete, error)
	Sessions(ctx context.Context, id string) (*dto.AthleteSessionsResponse, error)
	Export(ctx context.Context, query dto.AthleteQuery) (*service.ExportFile, error)
}

// AthleteHandler exposes read access to the roster.
type AthleteHandler struct {
	service athleteService
}

// NewAthleteHandler constructs an athlete handler.
func NewAthleteHandler(svc athleteService) *AthleteHandler {
	return &AthleteHandler{service: svc}
}

// List godoc
// @Summary List athletes
// @Tags Athletes
// @Produce json
// @Param search query string false "Name or email fragment"
// @Param team query string false "Team"
// @Param gradYear query int false "Graduation year"
// @Param claimed query bool false "Claimed accounts only"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Param sortBy query string false "Sort column"
// @Param sortOrder query string false "asc or desc"
// @Success 200 {object} response.Envelope
// @Router /athletes [get]
func (h *AthleteHandler) List(c *gin.Context) {
	var query dto.AthleteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	athletes, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, athletes, pagination)
}

// Get godoc
// @Summary Get athlete
// @Tags Athletes
// @Produce json
// @Param id path string true "Athlete ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /athletes/{id} [get]
func (h *AthleteHandler) Get(c *gin.Context) {
	athlete, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, athlete, nil)
}

// Sessions godoc
// @Summary Athlete session history
// @Tags Athletes
// @Produce json
// @Param id path string true "Athlete ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /athletes/{id}/sessions [get]
func (h *AthleteHandler) Sessions(c *gin.Context) {
	result, err := h.service.Sessions(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Export godoc
// @Summary Export the roster
// @Tags Athletes
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv (default) or xlsx"
// @Param team query string false "Team"
// @Param gradYear query int false "Graduation year"
// @Success 200 {file} file
// @Router /athletes/export [get]
func (h *AthleteHandler) Export(c *gin.Context) {
	var query dto.AthleteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query parameters"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
