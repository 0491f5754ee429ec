package league

import "context"

// Repository describes league persistence needs from use cases.
type Repository interface {
	Create(ctx context.Context, item League) error
	GetByID(ctx context.Context, leagueID string) (League, bool, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (League, bool, error)
	List(ctx context.Context) ([]League, error)

	AddMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, leagueID, userID string) (Member, bool, error)
	ListMembers(ctx context.Context, leagueID string) ([]Member, error)
	UpdateMember(ctx context.Context, member Member) error
}
