package postgres

import (
	"context"
	"fmt"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
	"github.com/jmoiron/sqlx"
)

type LeagueRepository struct {
	db *sqlx.DB
}

func NewLeagueRepository(db *sqlx.DB) *LeagueRepository {
	return &LeagueRepository{db: db}
}

func (r *LeagueRepository) Create(ctx context.Context, item league.League) error {
	const query = `
INSERT INTO leagues (public_id, name, invite_code, competition_type, event_date, bet_visibility_mode, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if _, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.Name,
		item.InviteCode,
		string(item.CompetitionType),
		item.EventDate,
		string(item.BetVisibilityMode),
		item.CreatedAt,
	); err != nil {
		return fmt.Errorf("create league: %w", err)
	}

	return nil
}

func (r *LeagueRepository) GetByID(ctx context.Context, leagueID string) (league.League, bool, error) {
	const query = `SELECT * FROM leagues WHERE public_id = $1`

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, leagueID); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by id: %w", err)
	}

	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) GetByInviteCode(ctx context.Context, inviteCode string) (league.League, bool, error) {
	const query = `SELECT * FROM leagues WHERE invite_code = $1`

	var row leagueTableModel
	if err := r.db.GetContext(ctx, &row, query, inviteCode); err != nil {
		if isNotFound(err) {
			return league.League{}, false, nil
		}
		return league.League{}, false, fmt.Errorf("get league by invite code: %w", err)
	}

	return leagueFromRow(row), true, nil
}

func (r *LeagueRepository) List(ctx context.Context) ([]league.League, error) {
	const query = `SELECT * FROM leagues ORDER BY created_at ASC, id ASC`

	var rows []leagueTableModel
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list leagues: %w", err)
	}

	out := make([]league.League, 0, len(rows))
	for _, row := range rows {
		out = append(out, leagueFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) AddMember(ctx context.Context, member league.Member) error {
	const query = `
INSERT INTO league_members (league_public_id, user_id, display_name, season_points, is_admin, joined_at)
VALUES ($1, $2, $3, $4, $5, $6)`

	if _, err := r.db.ExecContext(ctx, query,
		member.LeagueID,
		member.UserID,
		member.DisplayName,
		member.SeasonPoints,
		member.IsAdmin,
		member.JoinedAt,
	); err != nil {
		return fmt.Errorf("add league member: %w", err)
	}

	return nil
}

func (r *LeagueRepository) GetMember(ctx context.Context, leagueID, userID string) (league.Member, bool, error) {
	const query = `SELECT * FROM league_members WHERE league_public_id = $1 AND user_id = $2`

	var row leagueMemberTableModel
	if err := r.db.GetContext(ctx, &row, query, leagueID, userID); err != nil {
		if isNotFound(err) {
			return league.Member{}, false, nil
		}
		return league.Member{}, false, fmt.Errorf("get league member: %w", err)
	}

	return memberFromRow(row), true, nil
}

func (r *LeagueRepository) ListMembers(ctx context.Context, leagueID string) ([]league.Member, error) {
	const query = `SELECT * FROM league_members WHERE league_public_id = $1 ORDER BY joined_at ASC, id ASC`

	var rows []leagueMemberTableModel
	if err := r.db.SelectContext(ctx, &rows, query, leagueID); err != nil {
		return nil, fmt.Errorf("list league members: %w", err)
	}

	out := make([]league.Member, 0, len(rows))
	for _, row := range rows {
		out = append(out, memberFromRow(row))
	}
	return out, nil
}

func (r *LeagueRepository) UpdateMember(ctx context.Context, member league.Member) error {
	const query = `
UPDATE league_members
SET display_name = $3, season_points = $4, is_admin = $5
WHERE league_public_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query,
		member.LeagueID,
		member.UserID,
		member.DisplayName,
		member.SeasonPoints,
		member.IsAdmin,
	)
	if err != nil {
		return fmt.Errorf("update league member: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected update league member: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update league member: not found")
	}

	return nil
}

func leagueFromRow(row leagueTableModel) league.League {
	return league.League{
		ID:                row.PublicID,
		Name:              row.Name,
		InviteCode:        row.InviteCode,
		CompetitionType:   league.CompetitionType(row.CompetitionType),
		EventDate:         row.EventDate,
		BetVisibilityMode: league.BetVisibilityMode(row.BetVisibilityMode),
		CreatedAt:         row.CreatedAt,
	}
}

func memberFromRow(row leagueMemberTableModel) league.Member {
	return league.Member{
		LeagueID:     row.LeagueID,
		UserID:       row.UserID,
		DisplayName:  row.DisplayName,
		SeasonPoints: row.SeasonPoints,
		IsAdmin:      row.IsAdmin,
		JoinedAt:     row.JoinedAt,
	}
}
