package models

import "time"

// SessionLogEntry is a single training event owned by one athlete.
type SessionLogEntry struct {
	ID            string    `db:"id" json:"id"`
	AthleteID     string    `db:"athlete_id" json:"athlete_id"`
	EventDate     time.Time `db:"event_date" json:"event_date"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	Location      string    `db:"location" json:"location"`
	Notes         string    `db:"notes" json:"notes"`
	Coach         string    `db:"coach" json:"coach"`
	SessionNumber int       `db:"session_number" json:"session_number"`
	LessonNumber  int       `db:"lesson_number" json:"lesson_number"`
	Active        bool      `db:"active" json:"active"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}
