package postgres

import (
	"context"
	"fmt"

	"github.com/courtsidehq/parlay-league/internal/domain/bet"
	"github.com/courtsidehq/parlay-league/internal/domain/betslip"
	"github.com/courtsidehq/parlay-league/internal/domain/odds"
	"github.com/jmoiron/sqlx"
)

type BetRepository struct {
	db *sqlx.DB
}

func NewBetRepository(db *sqlx.DB) *BetRepository {
	return &BetRepository{db: db}
}

// CreateWithLegs persists the bet and every leg inside one transaction. A
// bet visible without its legs breaks the settlement ledger, so a partial
// insert never commits.
func (r *BetRepository) CreateWithLegs(ctx context.Context, item bet.Bet) error {
	if len(item.Legs) == 0 {
		return fmt.Errorf("create bet: at least one leg is required")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx create bet: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	const betQuery = `
INSERT INTO bets (public_id, user_id, league_public_id, week_public_id, bet_type, stake, total_odds, potential_payout, status, created_at, settled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	if _, err := tx.ExecContext(ctx, betQuery,
		item.ID,
		item.UserID,
		item.LeagueID,
		item.WeekID,
		string(item.BetType),
		item.Stake,
		item.TotalOdds,
		item.PotentialPayout,
		string(item.Status),
		item.CreatedAt,
		item.SettledAt,
	); err != nil {
		return fmt.Errorf("create bet: %w", err)
	}

	const legQuery = `
INSERT INTO bet_legs (bet_public_id, game_id, market_type, selection, odds, line, result, actual_value, player_name, game_time)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	for _, leg := range item.Legs {
		if _, err := tx.ExecContext(ctx, legQuery,
			item.ID,
			leg.GameID,
			string(leg.MarketType),
			leg.Selection,
			leg.Odds,
			leg.Line,
			string(leg.Result),
			leg.ActualValue,
			leg.PlayerName,
			leg.GameTime,
		); err != nil {
			return fmt.Errorf("create bet leg: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create bet tx: %w", err)
	}

	return nil
}

// Delete removes a bet and its legs in one transaction. Placement calls
// it to unwind a bet whose balance debit did not land.
func (r *BetRepository) Delete(ctx context.Context, betID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx delete bet: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM bet_legs WHERE bet_public_id = $1`, betID); err != nil {
		return fmt.Errorf("delete bet legs: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM bets WHERE public_id = $1`, betID); err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete bet tx: %w", err)
	}

	return nil
}

func (r *BetRepository) GetByID(ctx context.Context, betID string) (bet.Bet, bool, error) {
	const query = `SELECT * FROM bets WHERE public_id = $1`

	var row betTableModel
	if err := r.db.GetContext(ctx, &row, query, betID); err != nil {
		if isNotFound(err) {
			return bet.Bet{}, false, nil
		}
		return bet.Bet{}, false, fmt.Errorf("get bet by id: %w", err)
	}

	bets, err := r.attachLegs(ctx, []betTableModel{row})
	if err != nil {
		return bet.Bet{}, false, err
	}
	return bets[0], true, nil
}

func (r *BetRepository) ListByWeek(ctx context.Context, leagueID, weekID string) ([]bet.Bet, error) {
	const query = `
SELECT * FROM bets
WHERE league_public_id = $1 AND week_public_id = $2
ORDER BY created_at ASC, id ASC`

	var rows []betTableModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueID, weekID); err != nil {
		return nil, fmt.Errorf("list bets by week: %w", err)
	}

	return r.attachLegs(ctx, rows)
}

func (r *BetRepository) ListByUserAndWeek(ctx context.Context, userID, leagueID, weekID string) ([]bet.Bet, error) {
	const query = `
SELECT * FROM bets
WHERE user_id = $1 AND league_public_id = $2 AND week_public_id = $3
ORDER BY created_at ASC, id ASC`

	var rows []betTableModel
	if err := r.db.SelectContext(ctx, &rows, query, userID, leagueID, weekID); err != nil {
		return nil, fmt.Errorf("list bets by user and week: %w", err)
	}

	return r.attachLegs(ctx, rows)
}

func (r *BetRepository) ListPendingByGame(ctx context.Context, gameID string) ([]bet.Bet, error) {
	const query = `
SELECT DISTINCT b.* FROM bets b
JOIN bet_legs l ON l.bet_public_id = b.public_id
WHERE l.game_id = $1 AND b.status = 'pending'
ORDER BY b.created_at ASC, b.id ASC`

	var rows []betTableModel
	if err := r.db.SelectContext(ctx, &rows, query, gameID); err != nil {
		return nil, fmt.Errorf("list pending bets by game: %w", err)
	}

	return r.attachLegs(ctx, rows)
}

func (r *BetRepository) UpdateLegResult(ctx context.Context, leg bet.Leg) error {
	const query = `
UPDATE bet_legs
SET result = $5, actual_value = $6
WHERE bet_public_id = $1 AND game_id = $2 AND market_type = $3 AND selection = $4`

	result, err := r.db.ExecContext(ctx, query,
		leg.BetID,
		leg.GameID,
		string(leg.MarketType),
		leg.Selection,
		string(leg.Result),
		leg.ActualValue,
	)
	if err != nil {
		return fmt.Errorf("update bet leg result: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update bet leg result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update bet leg result: not found")
	}

	return nil
}

func (r *BetRepository) UpdateStatus(ctx context.Context, item bet.Bet) error {
	const query = `
UPDATE bets
SET status = $2, settled_at = $3
WHERE public_id = $1`

	result, err := r.db.ExecContext(ctx, query, item.ID, string(item.Status), item.SettledAt)
	if err != nil {
		return fmt.Errorf("update bet status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update bet status: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update bet status: not found")
	}

	return nil
}

func (r *BetRepository) attachLegs(ctx context.Context, rows []betTableModel) ([]bet.Bet, error) {
	out := make([]bet.Bet, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}

	betIDs := make([]string, 0, len(rows))
	for _, row := range rows {
		betIDs = append(betIDs, row.PublicID)
	}

	query, args, err := sqlx.In(`SELECT * FROM bet_legs WHERE bet_public_id IN (?) ORDER BY id ASC`, betIDs)
	if err != nil {
		return nil, fmt.Errorf("build list bet legs query: %w", err)
	}
	query = r.db.Rebind(query)

	var legRows []betLegTableModel
	if err := r.db.SelectContext(ctx, &legRows, query, args...); err != nil {
		return nil, fmt.Errorf("list bet legs: %w", err)
	}

	legsByBet := make(map[string][]bet.Leg, len(rows))
	for _, legRow := range legRows {
		legsByBet[legRow.BetID] = append(legsByBet[legRow.BetID], legFromRow(legRow))
	}

	for _, row := range rows {
		out = append(out, betFromRow(row, legsByBet[row.PublicID]))
	}
	return out, nil
}

func betFromRow(row betTableModel, legs []bet.Leg) bet.Bet {
	return bet.Bet{
		ID:              row.PublicID,
		UserID:          row.UserID,
		LeagueID:        row.LeagueID,
		WeekID:          row.WeekID,
		BetType:         betslip.BetType(row.BetType),
		Stake:           row.Stake,
		TotalOdds:       row.TotalOdds,
		PotentialPayout: row.PotentialPayout,
		Status:          bet.Status(row.Status),
		CreatedAt:       row.CreatedAt,
		SettledAt:       row.SettledAt,
		Legs:            legs,
	}
}

func legFromRow(row betLegTableModel) bet.Leg {
	return bet.Leg{
		BetID:       row.BetID,
		GameID:      row.GameID,
		MarketType:  odds.MarketType(row.MarketType),
		Selection:   row.Selection,
		Odds:        row.Odds,
		Line:        row.Line,
		Result:      bet.LegResult(row.Result),
		ActualValue: row.ActualValue,
		PlayerName:  row.PlayerName,
		GameTime:    row.GameTime,
	}
}
