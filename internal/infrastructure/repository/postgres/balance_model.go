package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type weekBalanceTableModel struct {
	ID               int64           `db:"id"`
	WeekID           string          `db:"week_public_id"`
	LeagueID         string          `db:"league_public_id"`
	UserID           string          `db:"user_id"`
	DisplayName      string          `db:"display_name"`
	Balance          decimal.Decimal `db:"balance"`
	HighestWinPayout decimal.Decimal `db:"highest_win_payout"`
	TotalBets        int             `db:"total_bets"`
	LastWinTime      *time.Time      `db:"last_win_time"`
	Version          int64           `db:"version"`
	CreatedAt        time.Time       `db:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at"`
}
