package postgres

import (
	"time"

	"github.com/shopspring/decimal"
)

type betTableModel struct {
	ID              int64           `db:"id"`
	PublicID        string          `db:"public_id"`
	UserID          string          `db:"user_id"`
	LeagueID        string          `db:"league_public_id"`
	WeekID          string          `db:"week_public_id"`
	BetType         string          `db:"bet_type"`
	Stake           decimal.Decimal `db:"stake"`
	TotalOdds       decimal.Decimal `db:"total_odds"`
	PotentialPayout decimal.Decimal `db:"potential_payout"`
	Status          string          `db:"status"`
	CreatedAt       time.Time       `db:"created_at"`
	SettledAt       *time.Time      `db:"settled_at"`
}

type betLegTableModel struct {
	ID          int64            `db:"id"`
	BetID       string           `db:"bet_public_id"`
	GameID      string           `db:"game_id"`
	MarketType  string           `db:"market_type"`
	Selection   string           `db:"selection"`
	Odds        decimal.Decimal  `db:"odds"`
	Line        *decimal.Decimal `db:"line"`
	Result      string           `db:"result"`
	ActualValue *decimal.Decimal `db:"actual_value"`
	PlayerName  string           `db:"player_name"`
	GameTime    time.Time        `db:"game_time"`
}
