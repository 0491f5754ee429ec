package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/courtsidehq/parlay-league/internal/domain/league"
	"github.com/courtsidehq/parlay-league/internal/domain/week"
	"github.com/courtsidehq/parlay-league/internal/infrastructure/repository/memory"
	"github.com/courtsidehq/parlay-league/internal/platform/logging"
)

type recordedJob struct {
	path    string
	delay   time.Duration
	dedupID string
}

type recordingJobQueue struct {
	jobs    []recordedJob
	failOn  string
	failErr error
}

func (q *recordingJobQueue) Enqueue(_ context.Context, path string, _ any, delay time.Duration, dedupID string) error {
	if q.failOn != "" && path == q.failOn {
		return q.failErr
	}
	q.jobs = append(q.jobs, recordedJob{path: path, delay: delay, dedupID: dedupID})
	return nil
}

type weekByLeagueResolver struct {
	weeks map[string]week.Week
	errs  map[string]error
}

func (r *weekByLeagueResolver) ActiveWeek(_ context.Context, item league.League) (week.Week, error) {
	if err := r.errs[item.ID]; err != nil {
		return week.Week{}, err
	}
	return r.weeks[item.ID], nil
}

func TestRunWeekMaintenance_QueuesCloseWeekForExpiredWeeks(t *testing.T) {
	now := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)
	leagueRepo := memory.NewLeagueRepository()
	for _, id := range []string{"lg-expired", "lg-running"} {
		err := leagueRepo.Create(context.Background(), league.League{ID: id, Name: id, InviteCode: "inv-" + id})
		if err != nil {
			t.Fatalf("create league %s: %v", id, err)
		}
	}

	resolver := &weekByLeagueResolver{weeks: map[string]week.Week{
		"lg-expired": {
			ID:      "lg-expired:2026:wk10",
			Status:  week.StatusOpen,
			EndDate: now.Add(-time.Hour),
		},
		"lg-running": {
			ID:      "lg-running:2026:wk11",
			Status:  week.StatusOpen,
			EndDate: now.Add(48 * time.Hour),
		},
	}}

	queue := &recordingJobQueue{}
	service := NewJobOrchestratorService(leagueRepo, resolver, queue, logging.NewNop())
	service.now = func() time.Time { return now }

	result, err := service.RunWeekMaintenance(context.Background())
	if err != nil {
		t.Fatalf("RunWeekMaintenance: %v", err)
	}
	if result.LeaguesChecked != 2 {
		t.Fatalf("LeaguesChecked = %d, want 2", result.LeaguesChecked)
	}
	if result.CloseWeekJobsQueued != 1 {
		t.Fatalf("CloseWeekJobsQueued = %d, want 1", result.CloseWeekJobsQueued)
	}
	if !result.NextRunQueued {
		t.Fatal("expected the next sweep to be queued")
	}

	if len(queue.jobs) != 2 {
		t.Fatalf("queued %d jobs, want 2", len(queue.jobs))
	}
	closeJob := queue.jobs[0]
	if closeJob.path != "/v1/internal/jobs/close-week" {
		t.Fatalf("first job path = %s", closeJob.path)
	}
	if closeJob.dedupID != "close-week-lg-expired-2026-wk10" {
		t.Fatalf("close-week dedup id = %s", closeJob.dedupID)
	}
	nextSweep := queue.jobs[1]
	if nextSweep.path != "/v1/internal/jobs/week-maintenance" {
		t.Fatalf("second job path = %s", nextSweep.path)
	}
	if nextSweep.delay != time.Hour {
		t.Fatalf("next sweep delay = %s, want 1h", nextSweep.delay)
	}
}

func TestRunWeekMaintenance_SkipsSettledWeeks(t *testing.T) {
	now := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)
	leagueRepo := memory.NewLeagueRepository()
	err := leagueRepo.Create(context.Background(), league.League{ID: "lg-1", Name: "lg-1", InviteCode: "inv-1"})
	if err != nil {
		t.Fatalf("create league: %v", err)
	}

	resolver := &weekByLeagueResolver{weeks: map[string]week.Week{
		"lg-1": {ID: "lg-1:2026:wk9", Status: week.StatusSettled, EndDate: now.Add(-time.Hour)},
	}}
	queue := &recordingJobQueue{}
	service := NewJobOrchestratorService(leagueRepo, resolver, queue, logging.NewNop())
	service.now = func() time.Time { return now }

	result, err := service.RunWeekMaintenance(context.Background())
	if err != nil {
		t.Fatalf("RunWeekMaintenance: %v", err)
	}
	if result.CloseWeekJobsQueued != 0 {
		t.Fatalf("CloseWeekJobsQueued = %d, want 0", result.CloseWeekJobsQueued)
	}
}

func TestRunWeekMaintenance_BrokenLeagueDoesNotStallSweep(t *testing.T) {
	now := time.Date(2026, time.March, 9, 12, 0, 0, 0, time.UTC)
	leagueRepo := memory.NewLeagueRepository()
	for _, id := range []string{"lg-broken", "lg-ok"} {
		err := leagueRepo.Create(context.Background(), league.League{ID: id, Name: id, InviteCode: "inv-" + id})
		if err != nil {
			t.Fatalf("create league %s: %v", id, err)
		}
	}

	resolver := &weekByLeagueResolver{
		weeks: map[string]week.Week{
			"lg-ok": {ID: "lg-ok:2026:wk10", Status: week.StatusOpen, EndDate: now.Add(-time.Minute)},
		},
		errs: map[string]error{
			"lg-broken": errors.New("schedule unavailable"),
		},
	}
	queue := &recordingJobQueue{}
	service := NewJobOrchestratorService(leagueRepo, resolver, queue, logging.NewNop())
	service.now = func() time.Time { return now }

	result, err := service.RunWeekMaintenance(context.Background())
	if err != nil {
		t.Fatalf("RunWeekMaintenance: %v", err)
	}
	if result.CloseWeekJobsQueued != 1 {
		t.Fatalf("CloseWeekJobsQueued = %d, want 1", result.CloseWeekJobsQueued)
	}
}

func TestRunWeekMaintenance_NoopQueueWhenUnconfigured(t *testing.T) {
	leagueRepo := memory.NewLeagueRepository()
	service := NewJobOrchestratorService(leagueRepo, &weekByLeagueResolver{}, nil, nil)

	result, err := service.RunWeekMaintenance(context.Background())
	if err != nil {
		t.Fatalf("RunWeekMaintenance: %v", err)
	}
	if !result.NextRunQueued {
		t.Fatal("noop queue should accept the next sweep")
	}
}
