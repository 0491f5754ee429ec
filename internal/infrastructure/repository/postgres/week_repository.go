package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/courtsidehq/parlay-league/internal/domain/week"
	"github.com/jmoiron/sqlx"
)

type WeekRepository struct {
	db *sqlx.DB
}

func NewWeekRepository(db *sqlx.DB) *WeekRepository {
	return &WeekRepository{db: db}
}

// GetOrCreate inserts the candidate week if its key is new and returns the
// stored row either way. The unique index on public_id makes concurrent
// first touches of the same boundary converge on one row.
func (r *WeekRepository) GetOrCreate(ctx context.Context, item week.Week) (week.Week, error) {
	const insertQuery = `
INSERT INTO weeks (public_id, league_public_id, week_number, season_year, start_date, end_date, status, winner_user_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (public_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, insertQuery,
		item.ID,
		item.LeagueID,
		item.WeekNumber,
		item.SeasonYear,
		item.StartDate,
		item.EndDate,
		string(item.Status),
		nullableString(item.WinnerID),
	); err != nil {
		return week.Week{}, fmt.Errorf("insert week: %w", err)
	}

	stored, exists, err := r.GetByID(ctx, item.ID)
	if err != nil {
		return week.Week{}, err
	}
	if !exists {
		return week.Week{}, fmt.Errorf("get or create week: row %s missing after insert", item.ID)
	}
	return stored, nil
}

func (r *WeekRepository) GetByID(ctx context.Context, weekID string) (week.Week, bool, error) {
	const query = `SELECT * FROM weeks WHERE public_id = $1`

	var row weekTableModel
	if err := r.db.GetContext(ctx, &row, query, weekID); err != nil {
		if isNotFound(err) {
			return week.Week{}, false, nil
		}
		return week.Week{}, false, fmt.Errorf("get week by id: %w", err)
	}

	return weekFromRow(row), true, nil
}

func (r *WeekRepository) Update(ctx context.Context, item week.Week) error {
	const query = `
UPDATE weeks
SET status = $2, winner_user_id = $3
WHERE public_id = $1`

	result, err := r.db.ExecContext(ctx, query, item.ID, string(item.Status), nullableString(item.WinnerID))
	if err != nil {
		return fmt.Errorf("update week: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update week: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update week: not found")
	}

	return nil
}

func weekFromRow(row weekTableModel) week.Week {
	return week.Week{
		ID:         row.PublicID,
		LeagueID:   row.LeagueID,
		WeekNumber: row.WeekNumber,
		SeasonYear: row.SeasonYear,
		StartDate:  row.StartDate,
		EndDate:    row.EndDate,
		Status:     week.Status(row.Status),
		WinnerID:   row.WinnerID.String,
	}
}

func nullableString(v string) sql.NullString {
	v = strings.TrimSpace(v)
	return sql.NullString{String: v, Valid: v != ""}
}
