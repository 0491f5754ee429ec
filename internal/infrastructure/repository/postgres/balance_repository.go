package postgres

import (
	"context"
	"fmt"

	"github.com/courtsidehq/parlay-league/internal/domain/ledger"
	"github.com/jmoiron/sqlx"
)

type BalanceRepository struct {
	db *sqlx.DB
}

func NewBalanceRepository(db *sqlx.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// GetOrCreate seeds the (week, user) row at the starting balance on first
// touch and returns the stored row either way.
func (r *BalanceRepository) GetOrCreate(ctx context.Context, item ledger.WeekBalance) (ledger.WeekBalance, error) {
	const insertQuery = `
INSERT INTO week_balances (week_public_id, league_public_id, user_id, display_name, balance, highest_win_payout, total_bets, last_win_time, version)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (week_public_id, user_id) DO NOTHING`

	if _, err := r.db.ExecContext(ctx, insertQuery,
		item.WeekID,
		item.LeagueID,
		item.UserID,
		item.DisplayName,
		item.Balance,
		item.HighestWinPayout,
		item.TotalBets,
		item.LastWinTime,
		item.Version,
	); err != nil {
		return ledger.WeekBalance{}, fmt.Errorf("insert week balance: %w", err)
	}

	const selectQuery = `SELECT * FROM week_balances WHERE week_public_id = $1 AND user_id = $2`

	var row weekBalanceTableModel
	if err := r.db.GetContext(ctx, &row, selectQuery, item.WeekID, item.UserID); err != nil {
		return ledger.WeekBalance{}, fmt.Errorf("get week balance: %w", err)
	}
	return balanceFromRow(row), nil
}

// UpdateConditional persists the row only when the stored version still
// matches expectedVersion. The version guard in the WHERE clause is what
// keeps two concurrent debits from both passing the sufficiency check.
func (r *BalanceRepository) UpdateConditional(ctx context.Context, item ledger.WeekBalance, expectedVersion int64) error {
	const query = `
UPDATE week_balances
SET display_name = $3,
    balance = $4,
    highest_win_payout = $5,
    total_bets = $6,
    last_win_time = $7,
    version = version + 1,
    updated_at = NOW()
WHERE week_public_id = $1 AND user_id = $2 AND version = $8`

	result, err := r.db.ExecContext(ctx, query,
		item.WeekID,
		item.UserID,
		item.DisplayName,
		item.Balance,
		item.HighestWinPayout,
		item.TotalBets,
		item.LastWinTime,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("update week balance: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update week balance: %w", err)
	}
	if affected == 0 {
		return ledger.ErrVersionConflict
	}

	return nil
}

func (r *BalanceRepository) ListByWeek(ctx context.Context, leagueID, weekID string) ([]ledger.WeekBalance, error) {
	const query = `
SELECT * FROM week_balances
WHERE league_public_id = $1 AND week_public_id = $2
ORDER BY user_id ASC`

	var rows []weekBalanceTableModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueID, weekID); err != nil {
		return nil, fmt.Errorf("list week balances: %w", err)
	}

	out := make([]ledger.WeekBalance, 0, len(rows))
	for _, row := range rows {
		out = append(out, balanceFromRow(row))
	}
	return out, nil
}

func balanceFromRow(row weekBalanceTableModel) ledger.WeekBalance {
	return ledger.WeekBalance{
		WeekID:           row.WeekID,
		LeagueID:         row.LeagueID,
		UserID:           row.UserID,
		DisplayName:      row.DisplayName,
		Balance:          row.Balance,
		HighestWinPayout: row.HighestWinPayout,
		TotalBets:        row.TotalBets,
		LastWinTime:      row.LastWinTime,
		Version:          row.Version,
	}
}
