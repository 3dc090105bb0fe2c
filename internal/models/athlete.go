package models

import "time"

// Athlete is a roster entry identified by a stable GC-<n> identifier and a unique email.
type Athlete struct {
	ID            string     `db:"id" json:"id"`
	Email         string     `db:"email" json:"email"`
	FullName      string     `db:"full_name" json:"full_name"`
	FirstName     string     `db:"first_name" json:"first_name"`
	LastName      string     `db:"last_name" json:"last_name"`
	ParentName    string     `db:"parent_name" json:"parent_name"`
	Phone         string     `db:"phone" json:"phone"`
	GradYear      int        `db:"grad_year" json:"grad_year"`
	Team          string     `db:"team" json:"team"`
	Coach         string     `db:"coach" json:"coach"`
	RawAttributes Attributes `db:"raw_attributes" json:"raw_attributes"`
	Claimed       bool       `db:"claimed" json:"claimed"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// AthleteFilter encapsulates allowed search parameters for listing athletes.
type AthleteFilter struct {
	Search    string
	Team      string
	GradYear  int
	Claimed   *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AthleteKey pairs an athlete identifier with its email.
type AthleteKey struct {
	ID    string `db:"id"`
	Email string `db:"email"`
}
