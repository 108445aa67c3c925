package state

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/platform/metrics"
)

// Invoker sends remote actions. *bridge.Bridge satisfies it.
type Invoker interface {
	Invoke(ctx context.Context, action string, payload any) (json.RawMessage, error)
	Connected() bool
}

// Notifier shows a message to the operator.
type Notifier interface {
	Alert(ctx context.Context, message string)
}

// Store is the source of truth for every entity collection. Consumers read
// copies and mutate only through Save/Delete, which apply an optimistic patch
// before the remote call and undo it when the call fails.
type Store struct {
	invoker       Invoker
	notifier      Notifier
	metrics       *metrics.Collector
	offlineDelay  time.Duration
	seedOnFailure bool
	now           func() time.Time

	mu                sync.RWMutex
	departments       collection[kpi.Department]
	employees         collection[kpi.Employee]
	kpis              collection[kpi.KPI]
	assignments       collection[kpi.Assignment]
	activities        collection[kpi.Activity]
	records           collection[kpi.Record]
	levelRules        collection[kpi.LevelRule]
	competencies      collection[kpi.Competency]
	competencyRecords collection[kpi.CompetencyRecord]
	loading           bool
	loaded            bool
	lastError         string

	// generation increases every time the collections are replaced wholesale.
	generation uint64
	pending    map[string]*patch
	latest     map[string]string
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		s.notifier = n
	}
}

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Store) {
		s.metrics = m
	}
}

// WithOfflineDelay sets the simulated latency of the offline load.
func WithOfflineDelay(d time.Duration) Option {
	return func(s *Store) {
		s.offlineDelay = d
	}
}

// WithSeedOnFailure loads the built-in seed when a connected load fails.
func WithSeedOnFailure(enabled bool) Option {
	return func(s *Store) {
		s.seedOnFailure = enabled
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

func New(invoker Invoker, opts ...Option) *Store {
	s := &Store{
		invoker:      invoker,
		notifier:     logNotifier{},
		offlineDelay: 600 * time.Millisecond,
		now:          time.Now,
		pending:      make(map[string]*patch),
		latest:       make(map[string]string),
	}
	s.kpis.clone = kpi.KPI.Clone
	s.records.clone = kpi.Record.Clone
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// IsDev reports whether the store runs without a backend.
func (s *Store) IsDev() bool {
	return !s.invoker.Connected()
}

func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready reports whether at least one load has finished.
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// LastError is the message of the most recent failed remote call, if any.
func (s *Store) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastError
}

// Pending lists the correlation ids of patches awaiting a remote reply.
func (s *Store) Pending() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.pending))
	for id := range s.pending {
		out = append(out, id)
	}
	return out
}

// Reset clears every collection and forgets outstanding patches.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceLocked(kpi.Dataset{})
	s.loaded = false
	s.lastError = ""
	s.pending = make(map[string]*patch)
	s.latest = make(map[string]string)
}

func (s *Store) Close() error {
	s.Reset()
	return nil
}

func (s *Store) Departments() []kpi.Department {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.departments.list()
}

func (s *Store) Employees() []kpi.Employee {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.employees.list()
}

func (s *Store) KPIs() []kpi.KPI {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.kpis.list()
}

func (s *Store) Assignments() []kpi.Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.assignments.list()
}

func (s *Store) Activities() []kpi.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activities.list()
}

func (s *Store) Records() []kpi.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records.list()
}

func (s *Store) LevelRules() []kpi.LevelRule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.levelRules.list()
}

func (s *Store) Competencies() []kpi.Competency {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.competencies.list()
}

func (s *Store) CompetencyRecords() []kpi.CompetencyRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.competencyRecords.list()
}

// Employee returns one employee by id.
func (s *Store) Employee(id string) (kpi.Employee, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.employees.get(id)
}

// Snapshot copies every collection at a single point in time.
func (s *Store) Snapshot() kpi.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return kpi.Dataset{
		Departments:       s.departments.list(),
		Employees:         s.employees.list(),
		KPIs:              s.kpis.list(),
		Assignments:       s.assignments.list(),
		Activities:        s.activities.list(),
		Records:           s.records.list(),
		LevelRules:        s.levelRules.list(),
		Competencies:      s.competencies.list(),
		CompetencyRecords: s.competencyRecords.list(),
	}
}

func (s *Store) replaceLocked(ds kpi.Dataset) {
	s.departments.replaceAll(ds.Departments)
	s.employees.replaceAll(ds.Employees)
	s.kpis.replaceAll(ds.KPIs)
	s.assignments.replaceAll(ds.Assignments)
	s.activities.replaceAll(ds.Activities)
	s.records.replaceAll(ds.Records)
	s.levelRules.replaceAll(ds.LevelRules)
	s.competencies.replaceAll(ds.Competencies)
	s.competencyRecords.replaceAll(ds.CompetencyRecords)
	s.generation++
}
