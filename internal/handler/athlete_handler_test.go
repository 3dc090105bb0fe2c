package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/goalie-roster-api/internal/dto"
	"github.com/noah-isme/goalie-roster-api/internal/models"
	"github.com/noah-isme/goalie-roster-api/internal/service"
	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
)

type athleteServiceMock struct {
	lastQuery dto.AthleteQuery
	athletes  []models.Athlete
	file      *service.ExportFile
	err       error
}

func (m *athleteServiceMock) List(_ context.Context, query dto.AthleteQuery) ([]models.Athlete, *models.Pagination, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.athletes, &models.Pagination{Page: 1, PageSize: 20, TotalCount: len(m.athletes)}, nil
}

func (m *athleteServiceMock) Get(_ context.Context, id string) (*models.Athlete, error) {
	for _, a := range m.athletes {
		if a.ID == id {
			found := a
			return &found, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "athlete not found")
}

func (m *athleteServiceMock) Sessions(ctx context.Context, id string) (*dto.AthleteSessionsResponse, error) {
	athlete, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.AthleteSessionsResponse{Athlete: *athlete, Sessions: []models.SessionLogEntry{}}, nil
}

func (m *athleteServiceMock) Export(_ context.Context, query dto.AthleteQuery) (*service.ExportFile, error) {
	m.lastQuery = query
	return m.file, m.err
}

func TestAthleteHandlerList(t *testing.T) {
	svc := &athleteServiceMock{athletes: []models.Athlete{{ID: "GC-8000", Email: "jane@example.com"}}}
	h := NewAthleteHandler(svc)

	c, w := newRequestContext(httptest.NewRequest(http.MethodGet, "/athletes?team=Hawks&gradYear=2030&claimed=true&pageSize=5", nil))
	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Hawks", svc.lastQuery.Team)
	assert.Equal(t, 2030, svc.lastQuery.GradYear)
	require.NotNil(t, svc.lastQuery.Claimed)
	assert.True(t, *svc.lastQuery.Claimed)
	assert.Contains(t, w.Body.String(), `"total_count":1`)
}

func TestAthleteHandlerListBadQuery(t *testing.T) {
	h := NewAthleteHandler(&athleteServiceMock{})

	c, w := newRequestContext(httptest.NewRequest(http.MethodGet, "/athletes?gradYear=soon", nil))
	h.List(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAthleteHandlerGetAndSessions(t *testing.T) {
	svc := &athleteServiceMock{athletes: []models.Athlete{{ID: "GC-8000"}}}
	h := NewAthleteHandler(svc)

	c, w := newRequestContext(httptest.NewRequest(http.MethodGet, "/athletes/GC-8000", nil))
	c.Params = gin.Params{{Key: "id", Value: "GC-8000"}}
	h.Get(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = newRequestContext(httptest.NewRequest(http.MethodGet, "/athletes/GC-8000/sessions", nil))
	c.Params = gin.Params{{Key: "id", Value: "GC-8000"}}
	h.Sessions(c)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sessions":[]`)

	c, w = newRequestContext(httptest.NewRequest(http.MethodGet, "/athletes/GC-9", nil))
	c.Params = gin.Params{{Key: "id", Value: "GC-9"}}
	h.Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAthleteHandlerExport(t *testing.T) {
	svc := &athleteServiceMock{file: &service.ExportFile{Filename: "roster-20240309-140506.xlsx", ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", Data: []byte("PK")}}
	h := NewAthleteHandler(svc)

	c, w := newRequestContext(httptest.NewRequest(http.MethodGet, "/athletes/export?format=xlsx", nil))
	h.Export(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "xlsx", svc.lastQuery.Format)
	assert.Equal(t, `attachment; filename="roster-20240309-140506.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK", w.Body.String())
}
