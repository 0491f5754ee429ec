package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/bet"
	"github.com/courtsidehq/parlay-league/internal/domain/betslip"
	"github.com/courtsidehq/parlay-league/internal/domain/league"
	"github.com/courtsidehq/parlay-league/internal/domain/ledger"
	"github.com/courtsidehq/parlay-league/internal/domain/week"
	idgen "github.com/courtsidehq/parlay-league/internal/platform/id"
	"github.com/shopspring/decimal"
)

// debitRetryLimit bounds optimistic-concurrency retries on the balance
// row before the placement is given up.
const debitRetryLimit = 3

type BettingService struct {
	leagueRepo  league.Repository
	weekRepo    week.Repository
	balanceRepo ledger.Repository
	betRepo     bet.Repository
	scheduler   *week.Scheduler
	idGen       idgen.Generator
	now         func() time.Time
}

func NewBettingService(
	leagueRepo league.Repository,
	weekRepo week.Repository,
	balanceRepo ledger.Repository,
	betRepo bet.Repository,
	scheduler *week.Scheduler,
	idGen idgen.Generator,
) *BettingService {
	return &BettingService{
		leagueRepo:  leagueRepo,
		weekRepo:    weekRepo,
		balanceRepo: balanceRepo,
		betRepo:     betRepo,
		scheduler:   scheduler,
		idGen:       idGen,
		now:         time.Now,
	}
}

type PlaceBetInput struct {
	UserID      string
	DisplayName string
	LeagueID    string
	Slip        betslip.Slip
}

// PlaceBet converts a finalized slip into a bet with legs and debits the
// user's week balance. Leg creation happens before the debit; when the
// debit then fails the bet is unwound, so the ledger invariant (sum of
// non-void stakes == starting balance - current balance + credits) holds
// for every user-week and no bet is ever visible without its stake taken.
func (s *BettingService) PlaceBet(ctx context.Context, input PlaceBetInput) (bet.Bet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BettingService.PlaceBet")
	defer span.End()

	input.UserID = strings.TrimSpace(input.UserID)
	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if input.UserID == "" {
		return bet.Bet{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if input.LeagueID == "" {
		return bet.Bet{}, fmt.Errorf("%w: league id is required", ErrInvalidInput)
	}
	if input.Slip.IsEmpty() {
		return bet.Bet{}, fmt.Errorf("%w: slip has no selections", ErrInvalidInput)
	}
	if !input.Slip.Stake.IsPositive() {
		return bet.Bet{}, fmt.Errorf("%w: stake must be positive", ErrInvalidInput)
	}

	if conflicts := betslip.DetectConflicts(input.Slip.Selections); len(conflicts) > 0 {
		return bet.Bet{}, fmt.Errorf("%w: %s", ErrConflictingSelections, conflicts[0].Message)
	}

	item, exists, err := s.leagueRepo.GetByID(ctx, input.LeagueID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return bet.Bet{}, fmt.Errorf("%w: league=%s", ErrNotFound, input.LeagueID)
	}
	if _, isMember, err := s.leagueRepo.GetMember(ctx, input.LeagueID, input.UserID); err != nil {
		return bet.Bet{}, fmt.Errorf("get league member: %w", err)
	} else if !isMember {
		return bet.Bet{}, fmt.Errorf("%w: not a member of league %s", ErrUnauthorized, input.LeagueID)
	}

	now := s.now().UTC()
	for _, selection := range input.Slip.Selections {
		if !selection.GameTime.After(now) {
			return bet.Bet{}, fmt.Errorf("%w: %s has already started", ErrInvalidInput, selection.GameDescription)
		}
	}

	activeWeek, err := s.ActiveWeek(ctx, item)
	if err != nil {
		return bet.Bet{}, err
	}

	betID, err := s.idGen.NewID()
	if err != nil {
		return bet.Bet{}, fmt.Errorf("generate bet id: %w", err)
	}

	placed := bet.Bet{
		ID:              betID,
		UserID:          input.UserID,
		LeagueID:        input.LeagueID,
		WeekID:          activeWeek.ID,
		BetType:         betslip.Classify(input.Slip.Selections),
		Stake:           input.Slip.Stake,
		TotalOdds:       betslip.CombinedOdds(input.Slip.Selections),
		PotentialPayout: betslip.PotentialPayout(input.Slip.Stake, input.Slip.Selections),
		Status:          bet.StatusPending,
		CreatedAt:       now,
	}
	for _, selection := range input.Slip.Selections {
		placed.Legs = append(placed.Legs, bet.Leg{
			BetID:      betID,
			GameID:     selection.GameID,
			MarketType: selection.MarketType,
			Selection:  selection.Name,
			Odds:       selection.Odds,
			Line:       selection.Line,
			Result:     bet.LegPending,
			PlayerName: selection.PlayerName,
			GameTime:   selection.GameTime,
		})
	}

	if err := s.debitForPlacement(ctx, activeWeek, input, placed); err != nil {
		return bet.Bet{}, err
	}

	return placed, nil
}

// debitForPlacement runs the check-then-update sequence: verify
// sufficiency, create bet+legs, then debit through the version guard. A
// failed debit unwinds the bet so placement never leaves a bet persisted
// without its stake taken.
func (s *BettingService) debitForPlacement(ctx context.Context, activeWeek week.Week, input PlaceBetInput, placed bet.Bet) error {
	balance, err := s.balanceRepo.GetOrCreate(ctx, ledger.New(activeWeek.ID, input.LeagueID, input.UserID, input.DisplayName))
	if err != nil {
		return fmt.Errorf("get or create week balance: %w", err)
	}
	if !balance.CanAfford(input.Slip.Stake) {
		return fmt.Errorf("%w: stake %s exceeds balance %s", ErrInsufficientBalance, input.Slip.Stake, balance.Balance)
	}

	if err := s.betRepo.CreateWithLegs(ctx, placed); err != nil {
		return fmt.Errorf("create bet with legs: %w", err)
	}

	if err := s.applyDebit(ctx, activeWeek, input); err != nil {
		if delErr := s.betRepo.Delete(ctx, placed.ID); delErr != nil {
			return fmt.Errorf("unwind bet %s after failed debit: %v: %w", placed.ID, delErr, err)
		}
		return err
	}
	return nil
}

// applyDebit takes the stake off the week balance under the optimistic
// version guard. A lost race re-reads and re-verifies from scratch.
func (s *BettingService) applyDebit(ctx context.Context, activeWeek week.Week, input PlaceBetInput) error {
	for attempt := 0; attempt < debitRetryLimit; attempt++ {
		balance, err := s.balanceRepo.GetOrCreate(ctx, ledger.New(activeWeek.ID, input.LeagueID, input.UserID, input.DisplayName))
		if err != nil {
			return fmt.Errorf("get or create week balance: %w", err)
		}
		if !balance.CanAfford(input.Slip.Stake) {
			return fmt.Errorf("%w: stake %s exceeds balance %s", ErrInsufficientBalance, input.Slip.Stake, balance.Balance)
		}

		expectedVersion := balance.Version
		balance.ApplyDebit(input.Slip.Stake)
		err = s.balanceRepo.UpdateConditional(ctx, balance, expectedVersion)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ledger.ErrVersionConflict) {
			return fmt.Errorf("debit week balance: %w", err)
		}
	}

	return fmt.Errorf("debit week balance: %w", ledger.ErrVersionConflict)
}

// ActiveWeek resolves and lazily creates the current competition window
// for a league.
func (s *BettingService) ActiveWeek(ctx context.Context, item league.League) (week.Week, error) {
	now := s.now()

	var candidate week.Week
	switch item.CompetitionType {
	case league.CompetitionOneOff:
		if item.EventDate == nil {
			return week.Week{}, fmt.Errorf("%w: one-off league %s has no event date", ErrInvalidInput, item.ID)
		}
		start, end := s.scheduler.OneOffBoundary(*item.EventDate)
		boundary := s.scheduler.Resolve(*item.EventDate)
		candidate = week.Week{
			ID:         week.Key(item.ID, boundary.SeasonYear, 1),
			LeagueID:   item.ID,
			WeekNumber: 1,
			SeasonYear: boundary.SeasonYear,
			StartDate:  start,
			EndDate:    end,
			Status:     week.StatusOpen,
		}
	default:
		boundary := s.scheduler.Resolve(now)
		candidate = week.Week{
			ID:         week.Key(item.ID, boundary.SeasonYear, boundary.WeekNumber),
			LeagueID:   item.ID,
			WeekNumber: boundary.WeekNumber,
			SeasonYear: boundary.SeasonYear,
			StartDate:  boundary.StartDate,
			EndDate:    boundary.EndDate,
			Status:     week.StatusOpen,
		}
	}

	created, err := s.weekRepo.GetOrCreate(ctx, candidate)
	if err != nil {
		return week.Week{}, fmt.Errorf("get or create week: %w", err)
	}
	return created, nil
}

type SettleLegInput struct {
	BetID       string
	GameID      string
	MarketType  string
	Selection   string
	Result      bet.LegResult
	ActualValue *decimal.Decimal
}

// SettleLeg applies one graded leg result, re-derives the bet status and,
// when the bet settles as won or void, credits the payout back onto the
// week balance.
func (s *BettingService) SettleLeg(ctx context.Context, input SettleLegInput) (bet.Bet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BettingService.SettleLeg")
	defer span.End()

	switch input.Result {
	case bet.LegWon, bet.LegLost, bet.LegVoid:
	default:
		return bet.Bet{}, fmt.Errorf("%w: leg result %q is not a settled result", ErrInvalidInput, input.Result)
	}

	item, exists, err := s.betRepo.GetByID(ctx, input.BetID)
	if err != nil {
		return bet.Bet{}, fmt.Errorf("get bet: %w", err)
	}
	if !exists {
		return bet.Bet{}, fmt.Errorf("%w: bet=%s", ErrNotFound, input.BetID)
	}

	matched := false
	for i, leg := range item.Legs {
		if leg.GameID != input.GameID || string(leg.MarketType) != input.MarketType || leg.Selection != input.Selection {
			continue
		}
		matched = true
		if leg.Result != bet.LegPending {
			// Already graded; a repeat delivery is a no-op.
			return item, nil
		}
		item.Legs[i].Result = input.Result
		item.Legs[i].ActualValue = input.ActualValue
		if err := s.betRepo.UpdateLegResult(ctx, item.Legs[i]); err != nil {
			return bet.Bet{}, fmt.Errorf("update leg result: %w", err)
		}
		break
	}
	if !matched {
		return bet.Bet{}, fmt.Errorf("%w: bet %s has no leg for %s/%s/%s", ErrNotFound, input.BetID, input.GameID, input.MarketType, input.Selection)
	}

	// A bet that settled off an earlier leg (a lost leg decides a multi
	// immediately) still gets the remaining grades recorded above, but its
	// status and payout are final.
	if item.Status != bet.StatusPending {
		return item, nil
	}

	derived := bet.DeriveStatus(item.Legs)
	if derived == item.Status {
		return item, nil
	}

	now := s.now().UTC()
	item.Status = derived
	item.SettledAt = &now
	if err := s.betRepo.UpdateStatus(ctx, item); err != nil {
		return bet.Bet{}, fmt.Errorf("update bet status: %w", err)
	}

	payout := bet.SettledPayout(item)
	if payout.IsPositive() {
		if err := s.creditPayout(ctx, item, payout, now); err != nil {
			return bet.Bet{}, err
		}
	}

	return item, nil
}

// LegGrade is one graded market outcome for a finished game.
type LegGrade struct {
	MarketType  string
	Selection   string
	Result      bet.LegResult
	ActualValue *decimal.Decimal
}

// SettleGame grades every pending leg on a finished game. Legs the grade
// list does not cover stay pending. Returns the number of legs settled.
func (s *BettingService) SettleGame(ctx context.Context, gameID string, grades []LegGrade) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BettingService.SettleGame")
	defer span.End()

	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return 0, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if len(grades) == 0 {
		return 0, fmt.Errorf("%w: at least one graded outcome is required", ErrInvalidInput)
	}

	pending, err := s.betRepo.ListPendingByGame(ctx, gameID)
	if err != nil {
		return 0, fmt.Errorf("list pending bets by game: %w", err)
	}

	settled := 0
	for _, item := range pending {
		for _, leg := range item.Legs {
			if leg.GameID != gameID || leg.Result != bet.LegPending {
				continue
			}
			grade, ok := matchGrade(leg, grades)
			if !ok {
				continue
			}
			if _, err := s.SettleLeg(ctx, SettleLegInput{
				BetID:       item.ID,
				GameID:      gameID,
				MarketType:  string(leg.MarketType),
				Selection:   leg.Selection,
				Result:      grade.Result,
				ActualValue: grade.ActualValue,
			}); err != nil {
				return settled, err
			}
			settled++
		}
	}
	return settled, nil
}

func matchGrade(leg bet.Leg, grades []LegGrade) (LegGrade, bool) {
	for _, grade := range grades {
		if grade.MarketType == string(leg.MarketType) && grade.Selection == leg.Selection {
			return grade, true
		}
	}
	return LegGrade{}, false
}

func (s *BettingService) creditPayout(ctx context.Context, item bet.Bet, payout decimal.Decimal, at time.Time) error {
	for attempt := 0; attempt < debitRetryLimit; attempt++ {
		balance, err := s.balanceRepo.GetOrCreate(ctx, ledger.New(item.WeekID, item.LeagueID, item.UserID, ""))
		if err != nil {
			return fmt.Errorf("get week balance for credit: %w", err)
		}

		expectedVersion := balance.Version
		if item.Status == bet.StatusVoid {
			// Stake refund only; a void bet is not a win.
			balance.Balance = balance.Balance.Add(payout)
		} else {
			balance.ApplyWin(payout, at)
		}
		err = s.balanceRepo.UpdateConditional(ctx, balance, expectedVersion)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ledger.ErrVersionConflict) {
			return fmt.Errorf("credit week balance: %w", err)
		}
	}

	return fmt.Errorf("credit week balance: %w", ledger.ErrVersionConflict)
}

// MemberBet is a bet row paired with the visibility decision for the
// requesting viewer.
type MemberBet struct {
	Bet         bet.Bet
	ShowDetails bool
}

// GetMemberBets lists the active week's bets for a league, applying the
// league's visibility mode per bet. Owners always see their own details.
func (s *BettingService) GetMemberBets(ctx context.Context, leagueID, viewerID string) ([]MemberBet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.BettingService.GetMemberBets")
	defer span.End()

	item, exists, err := s.leagueRepo.GetByID(ctx, leagueID)
	if err != nil {
		return nil, fmt.Errorf("get league: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: league=%s", ErrNotFound, leagueID)
	}

	activeWeek, err := s.ActiveWeek(ctx, item)
	if err != nil {
		return nil, err
	}

	bets, err := s.betRepo.ListByWeek(ctx, leagueID, activeWeek.ID)
	if err != nil {
		return nil, fmt.Errorf("list bets by week: %w", err)
	}

	now := s.now()
	out := make([]MemberBet, 0, len(bets))
	for _, b := range bets {
		out = append(out, MemberBet{
			Bet:         b,
			ShowDetails: showBetDetails(b, item.BetVisibilityMode, viewerID, now),
		})
	}
	return out, nil
}

func showBetDetails(b bet.Bet, mode league.BetVisibilityMode, viewerID string, now time.Time) bool {
	if b.UserID == viewerID {
		return true
	}

	switch mode {
	case league.VisibilityHidden:
		return b.Status != bet.StatusPending
	case league.VisibilityVisibleWhenLocked:
		if b.Status != bet.StatusPending {
			return true
		}
		for _, leg := range b.Legs {
			if leg.GameTime.After(now) {
				return false
			}
		}
		return true
	default:
		return true
	}
}
