package dto

import "github.com/noah-isme/goalie-roster-api/internal/models"

// AthleteQuery captures roster list and export query parameters.
type AthleteQuery struct {
	Search    string `form:"search"`
	Team      string `form:"team"`
	GradYear  int    `form:"gradYear" validate:"omitempty,min=1990,max=2045"`
	Claimed   *bool  `form:"claimed"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=id full_name email grad_year created_at updated_at"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc ASC DESC"`
	Format    string `form:"format" validate:"omitempty,oneof=csv xlsx"`
}

// Filter converts the query into a repository filter.
func (q AthleteQuery) Filter() models.AthleteFilter {
	return models.AthleteFilter{
		Search:    q.Search,
		Team:      q.Team,
		GradYear:  q.GradYear,
		Claimed:   q.Claimed,
		Page:      q.Page,
		PageSize:  q.PageSize,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
	}
}

// AthleteSessionsResponse bundles an athlete with their session history.
type AthleteSessionsResponse struct {
	Athlete  models.Athlete           `json:"athlete"`
	Sessions []models.SessionLogEntry `json:"sessions"`
}
