package state

import (
	"context"
	"errors"
	"log/slog"

	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/platform/bridge"
)

const loadFailedMessage = "Could not load data from the server. The last loaded data is still shown; use refresh to try again."

// LoadAll replaces every collection with the backend's dataset. Without a
// backend it loads the built-in seed after a short delay. Failures are
// reported through LastError and the Notifier, never returned.
func (s *Store) LoadAll(ctx context.Context) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.loading = false
		s.loaded = true
		s.mu.Unlock()
	}()

	if !s.invoker.Connected() {
		// The seed is loaded even if ctx ends early; the delay only simulates latency.
		_ = bridge.Sleep(ctx, s.offlineDelay)
		s.apply(kpi.Seed(), "")
		return
	}

	raw, err := s.invoker.Invoke(ctx, bridge.ActionGetAllData, nil)
	if err != nil {
		s.loadFailed(ctx, err)
		return
	}
	ds, issues, err := kpi.DecodeDataset(raw)
	if errors.Is(err, kpi.ErrEmptyDataset) {
		slog.Warn("getAllData returned no data; keeping current state")
		return
	}
	if err != nil {
		s.loadFailed(ctx, err)
		return
	}
	for _, issue := range issues {
		s.metrics.DecodeIssue(issue.Collection, issue.Rejected)
		if issue.Rejected {
			slog.Warn("rejected remote record", "err", issue.Err())
			continue
		}
		slog.Warn("normalized remote record", "collection", issue.Collection, "id", issue.ID, "reason", issue.Reason)
	}

	seed := kpi.Seed()
	if len(ds.LevelRules) == 0 {
		ds.LevelRules = seed.LevelRules
	}
	if len(ds.Competencies) == 0 {
		ds.Competencies = seed.Competencies
	}
	s.apply(ds, "")
}

func (s *Store) loadFailed(ctx context.Context, err error) {
	slog.Warn("load all failed", "err", err)
	if s.seedOnFailure {
		s.apply(kpi.Seed(), err.Error())
		return
	}
	s.mu.Lock()
	s.lastError = err.Error()
	s.mu.Unlock()
	s.notifier.Alert(ctx, loadFailedMessage)
}

func (s *Store) apply(ds kpi.Dataset, lastError string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(ds)
	s.lastError = lastError
}
