package usecase

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
	"github.com/courtsidehq/parlay-league/internal/domain/week"
	"github.com/courtsidehq/parlay-league/internal/platform/logging"
)

const (
	closeWeekJobPath       = "/v1/internal/jobs/close-week"
	weekMaintenanceJobPath = "/v1/internal/jobs/week-maintenance"

	defaultMaintenanceInterval = time.Hour
)

var dedupKeyUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// JobQueue schedules delayed HTTP callbacks into the internal job routes.
type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

// NewNoopJobQueue returns a queue that drops every job. Used when no
// publisher is configured so callers never need a nil check.
func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

func (noopJobQueue) Enqueue(context.Context, string, any, time.Duration, string) error {
	return nil
}

type closeWeekJobPayload struct {
	LeagueID string `json:"leagueId"`
}

type weekMaintenanceJobPayload struct{}

// WeekMaintenanceResult reports one maintenance sweep.
type WeekMaintenanceResult struct {
	LeaguesChecked      int
	CloseWeekJobsQueued int
	NextRunQueued       bool
}

// JobOrchestratorService decides which background jobs to queue. One
// maintenance sweep walks every league, queues a close-week job for each
// expired open week, then re-queues itself so the chain keeps running.
type JobOrchestratorService struct {
	leagueRepo          league.Repository
	weekResolver        activeWeekResolver
	queue               JobQueue
	logger              *logging.Logger
	maintenanceInterval time.Duration
	now                 func() time.Time
}

func NewJobOrchestratorService(
	leagueRepo league.Repository,
	weekResolver activeWeekResolver,
	queue JobQueue,
	logger *logging.Logger,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &JobOrchestratorService{
		leagueRepo:          leagueRepo,
		weekResolver:        weekResolver,
		queue:               queue,
		logger:              logger,
		maintenanceInterval: defaultMaintenanceInterval,
		now:                 time.Now,
	}
}

// RunWeekMaintenance queues a close-week job for every league whose active
// week has ended and is still open. A single failing league is logged and
// skipped so one broken league cannot stall the rest of the sweep.
func (s *JobOrchestratorService) RunWeekMaintenance(ctx context.Context) (WeekMaintenanceResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunWeekMaintenance")
	defer span.End()

	leagues, err := s.leagueRepo.List(ctx)
	if err != nil {
		return WeekMaintenanceResult{}, fmt.Errorf("list leagues: %w", err)
	}

	now := s.now()
	result := WeekMaintenanceResult{LeaguesChecked: len(leagues)}

	for _, item := range leagues {
		active, err := s.weekResolver.ActiveWeek(ctx, item)
		if err != nil {
			s.logger.WarnContext(ctx, "skip league during week maintenance", "league_id", item.ID, "error", err)
			continue
		}
		if active.Status != week.StatusOpen || now.Before(active.EndDate) {
			continue
		}

		payload := closeWeekJobPayload{LeagueID: item.ID}
		dedupID := dedupKey("close-week-" + active.ID)
		if err := s.queue.Enqueue(ctx, closeWeekJobPath, payload, 0, dedupID); err != nil {
			s.logger.WarnContext(ctx, "enqueue close-week job failed", "league_id", item.ID, "week_id", active.ID, "error", err)
			continue
		}
		result.CloseWeekJobsQueued++
	}

	// Re-queue the next sweep. Deduplicated per interval bucket so
	// overlapping sweeps collapse into one scheduled run.
	nextBucket := now.Add(s.maintenanceInterval).Truncate(s.maintenanceInterval)
	dedupID := dedupKey(fmt.Sprintf("week-maintenance-%d", nextBucket.Unix()))
	if err := s.queue.Enqueue(ctx, weekMaintenanceJobPath, weekMaintenanceJobPayload{}, s.maintenanceInterval, dedupID); err != nil {
		s.logger.WarnContext(ctx, "enqueue next maintenance sweep failed", "error", err)
	} else {
		result.NextRunQueued = true
	}

	return result, nil
}

func dedupKey(raw string) string {
	return dedupKeyUnsafe.ReplaceAllString(raw, "-")
}
