package postgres

import (
	"database/sql"
	"time"
)

type weekTableModel struct {
	ID         int64          `db:"id"`
	PublicID   string         `db:"public_id"`
	LeagueID   string         `db:"league_public_id"`
	WeekNumber int            `db:"week_number"`
	SeasonYear int            `db:"season_year"`
	StartDate  time.Time      `db:"start_date"`
	EndDate    time.Time      `db:"end_date"`
	Status     string         `db:"status"`
	WinnerID   sql.NullString `db:"winner_user_id"`
	CreatedAt  time.Time      `db:"created_at"`
}
