package postgres

import "time"

type leagueTableModel struct {
	ID                int64      `db:"id"`
	PublicID          string     `db:"public_id"`
	Name              string     `db:"name"`
	InviteCode        string     `db:"invite_code"`
	CompetitionType   string     `db:"competition_type"`
	EventDate         *time.Time `db:"event_date"`
	BetVisibilityMode string     `db:"bet_visibility_mode"`
	CreatedAt         time.Time  `db:"created_at"`
}

type leagueMemberTableModel struct {
	ID           int64     `db:"id"`
	LeagueID     string    `db:"league_public_id"`
	UserID       string    `db:"user_id"`
	DisplayName  string    `db:"display_name"`
	SeasonPoints int       `db:"season_points"`
	IsAdmin      bool      `db:"is_admin"`
	JoinedAt     time.Time `db:"joined_at"`
}
