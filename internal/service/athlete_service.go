package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/goalie-roster-api/internal/dto"
	"github.com/noah-isme/goalie-roster-api/internal/models"
	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
	"github.com/noah-isme/goalie-roster-api/pkg/export"
)

// exportPageSize is the page size used when walking the roster for an export.
const exportPageSize = 100

type athleteRepository interface {
	List(ctx context.Context, filter models.AthleteFilter) ([]models.Athlete, int, error)
	FindByID(ctx context.Context, id string) (*models.Athlete, error)
}

type sessionLogReader interface {
	ListByAthlete(ctx context.Context, athleteID string) ([]models.SessionLogEntry, error)
}

type datasetRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
	Extension() string
}

// athleteListPage is the cached form of one roster page.
type athleteListPage struct {
	Athletes []models.Athlete `json:"athletes"`
	Total    int              `json:"total"`
}

// ExportFile is a rendered roster export.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// AthleteService exposes read access to the roster.
type AthleteService struct {
	repo      athleteRepository
	sessions  sessionLogReader
	cache     *CacheService
	renderers map[string]datasetRenderer
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAthleteService constructs the athlete service.
func NewAthleteService(repo athleteRepository, sessions sessionLogReader, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *AthleteService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AthleteService{
		repo:     repo,
		sessions: sessions,
		cache:    cache,
		renderers: map[string]datasetRenderer{
			"csv":  export.NewCSVExporter(),
			"xlsx": export.NewXLSXExporter(),
		},
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// List returns a roster page and pagination metadata.
func (s *AthleteService) List(ctx context.Context, query dto.AthleteQuery) ([]models.Athlete, *models.Pagination, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid athlete query")
	}
	filter := query.Filter()
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	key := athleteListKey(filter)
	var page athleteListPage
	hit, err := s.cache.Get(ctx, key, &page)
	if err != nil {
		s.logger.Debug("athlete cache unavailable", zap.Error(err))
	}
	if !hit {
		athletes, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list athletes")
		}
		page = athleteListPage{Athletes: athletes, Total: total}
		_ = s.cache.Set(ctx, key, page, 0)
	}

	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: page.Total}
	return page.Athletes, pagination, nil
}

// Get returns one athlete.
func (s *AthleteService) Get(ctx context.Context, id string) (*models.Athlete, error) {
	athlete, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "athlete not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load athlete")
	}
	return athlete, nil
}

// Sessions returns an athlete together with their session history.
func (s *AthleteService) Sessions(ctx context.Context, id string) (*dto.AthleteSessionsResponse, error) {
	athlete, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	entries, err := s.sessions.ListByAthlete(ctx, athlete.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session history")
	}
	if entries == nil {
		entries = []models.SessionLogEntry{}
	}
	return &dto.AthleteSessionsResponse{Athlete: *athlete, Sessions: entries}, nil
}

// Export renders every athlete matching the query in the requested format.
// Raw attribute keys that do not repeat a fixed column become extra columns
// in first-seen order.
func (s *AthleteService) Export(ctx context.Context, query dto.AthleteQuery) (*ExportFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	format := query.Format
	if format == "" {
		format = "csv"
	}
	renderer := s.renderers[format]

	filter := query.Filter()
	filter.PageSize = exportPageSize
	var athletes []models.Athlete
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := s.repo.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list athletes")
		}
		athletes = append(athletes, batch...)
		if len(batch) < exportPageSize || len(athletes) >= total {
			break
		}
	}

	data, err := renderer.Render(rosterDataset(athletes))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("roster exported", zap.String("format", format), zap.Int("athletes", len(athletes)))
	return &ExportFile{
		Filename:    fmt.Sprintf("roster-%s.%s", s.now().UTC().Format("20060102-150405"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

var rosterHeaders = []string{"ID", "Email", "Full Name", "First Name", "Last Name", "Parent Name", "Phone", "Grad Year", "Team", "Coach", "Claimed"}

func rosterDataset(athletes []models.Athlete) export.Dataset {
	headers := append([]string(nil), rosterHeaders...)
	fixed := make(map[string]struct{}, len(rosterHeaders))
	for _, h := range rosterHeaders {
		fixed[strings.ToLower(h)] = struct{}{}
	}
	extra := make(map[string]int)
	for _, a := range athletes {
		for _, key := range a.RawAttributes.Keys() {
			if _, ok := fixed[strings.ToLower(key)]; ok {
				continue
			}
			if _, ok := extra[key]; ok {
				continue
			}
			extra[key] = len(headers)
			headers = append(headers, key)
		}
	}

	rows := make([][]string, 0, len(athletes))
	for _, a := range athletes {
		row := make([]string, len(headers))
		copy(row, []string{a.ID, a.Email, a.FullName, a.FirstName, a.LastName, a.ParentName, a.Phone,
			strconv.Itoa(a.GradYear), a.Team, a.Coach, strconv.FormatBool(a.Claimed)})
		for _, key := range a.RawAttributes.Keys() {
			idx, ok := extra[key]
			if !ok {
				continue
			}
			value, _ := a.RawAttributes.Get(key)
			row[idx] = value
		}
		rows = append(rows, row)
	}
	return export.Dataset{Title: "Roster", Headers: headers, Rows: rows}
}
