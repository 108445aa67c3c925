package state

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kpiteam/internal/domain/kpi"
	"kpiteam/internal/platform/bridge"
)

type fakeBackend struct {
	mu        sync.Mutex
	connected bool
	raw       json.RawMessage
	calls     []string
	hook      func(action string, payload any) error
}

func newFakeBackend(ds kpi.Dataset) *fakeBackend {
	raw, _ := json.Marshal(ds)
	return &fakeBackend{connected: true, raw: raw}
}

func (f *fakeBackend) Connected() bool {
	return f.connected
}

func (f *fakeBackend) Invoke(_ context.Context, action string, payload any) (json.RawMessage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, action)
	hook := f.hook
	raw := f.raw
	f.mu.Unlock()
	if hook != nil {
		if err := hook(action, payload); err != nil {
			return nil, err
		}
	}
	if action == bridge.ActionGetAllData {
		return raw, nil
	}
	return nil, nil
}

func (f *fakeBackend) count(action string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == action {
			n++
		}
	}
	return n
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Alert(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func failOn(action string) func(string, any) error {
	return func(a string, _ any) error {
		if a == action {
			return &bridge.TransportError{Action: a, Err: errors.New("connection reset")}
		}
		return nil
	}
}

func newOfflineStore(t *testing.T) *Store {
	t.Helper()
	s := New(&fakeBackend{connected: false}, WithOfflineDelay(0))
	s.LoadAll(context.Background())
	return s
}

func newConnectedStore(t *testing.T, ds kpi.Dataset) (*Store, *fakeBackend, *recordingNotifier) {
	t.Helper()
	backend := newFakeBackend(ds)
	notifier := &recordingNotifier{}
	s := New(backend, WithNotifier(notifier))
	s.LoadAll(context.Background())
	return s, backend, notifier
}

func TestOfflineLoadUsesSeed(t *testing.T) {
	s := newOfflineStore(t)
	assert.True(t, s.IsDev())
	assert.False(t, s.Loading())
	assert.True(t, s.Ready())
	assert.Len(t, s.Departments(), 2)
	assert.Len(t, s.Employees(), 2)
	assert.Len(t, s.KPIs(), 3)
	assert.Len(t, s.Assignments(), 3)
	assert.Len(t, s.Activities(), 3)
	assert.Len(t, s.Records(), 2)
	assert.Len(t, s.LevelRules(), 6)
	assert.Len(t, s.Competencies(), 5)
	assert.Empty(t, s.CompetencyRecords())
}

func TestLoadingFlagDuringLoad(t *testing.T) {
	backend := newFakeBackend(kpi.Seed())
	entered := make(chan struct{})
	release := make(chan struct{})
	backend.hook = func(action string, _ any) error {
		if action == bridge.ActionGetAllData {
			close(entered)
			<-release
		}
		return nil
	}
	s := New(backend)
	done := make(chan struct{})
	go func() {
		s.LoadAll(context.Background())
		close(done)
	}()
	<-entered
	assert.True(t, s.Loading())
	close(release)
	<-done
	assert.False(t, s.Loading())
}

func TestSaveReplacesExistingEntity(t *testing.T) {
	s := newOfflineStore(t)
	before := len(s.Departments())

	s.SaveDepartment(context.Background(), kpi.Department{ID: "d1", Code: "IT", Name: "Engineering"})

	deps := s.Departments()
	require.Len(t, deps, before)
	matches := 0
	for _, d := range deps {
		if d.ID == "d1" {
			matches++
			assert.Equal(t, "Engineering", d.Name)
		}
	}
	assert.Equal(t, 1, matches)
	assert.Equal(t, "d1", deps[0].ID, "replacement keeps position")
}

func TestSaveWithoutIDAppends(t *testing.T) {
	s := newOfflineStore(t)
	before := len(s.KPIs())

	saved := s.SaveKPI(context.Background(), kpi.KPI{Code: "KPI-09", Name: "New"})

	require.NotEmpty(t, saved.ID)
	kpis := s.KPIs()
	require.Len(t, kpis, before+1)
	assert.Equal(t, saved.ID, kpis[len(kpis)-1].ID)

	other := s.SaveKPI(context.Background(), kpi.KPI{Code: "KPI-10"})
	assert.NotEqual(t, saved.ID, other.ID)
}

func TestDeleteSemantics(t *testing.T) {
	s := newOfflineStore(t)
	ctx := context.Background()
	before := s.Activities()

	s.DeleteActivity(ctx, "missing")
	assert.Equal(t, before, s.Activities())

	s.DeleteActivity(ctx, "ac2")
	after := s.Activities()
	require.Len(t, after, len(before)-1)
	for _, a := range after {
		assert.NotEqual(t, "ac2", a.ID)
	}

	s.DeleteActivity(ctx, "ac2")
	assert.Equal(t, after, s.Activities())
}

func TestConnectedLoadNormalizesData(t *testing.T) {
	backend := &fakeBackend{connected: true, raw: json.RawMessage(`{
		"departments": [{"id": 1, "code": "IT", "name": "IT"}],
		"employees": [
			{"id": 10, "code": 1, "name": "Ann", "role": "Manager ", "email": "ANN@X.COM", "password": 123},
			{"id": 11, "code": "002", "name": "Ben", "role": "boss"}
		],
		"records": [
			{"id": "r1", "employeeId": "10", "kpiId": "k1", "level": "GP", "score": 3},
			{"id": "r2", "employeeId": "10", "kpiId": "k1", "level": "??"}
		],
		"levelRules": [],
		"competencies": []
	}`)}
	s := New(backend)
	s.LoadAll(context.Background())

	emps := s.Employees()
	require.Len(t, emps, 2)
	assert.Equal(t, "10", emps[0].ID)
	assert.Equal(t, kpi.RoleManager, emps[0].Role)
	assert.Equal(t, "ann@x.com", emps[0].Email)
	assert.Equal(t, "123", emps[0].Password)
	assert.Equal(t, kpi.RoleEmployee, emps[1].Role)

	assert.Equal(t, "1", s.Departments()[0].ID)
	records := s.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "", records[0].UserNote)

	assert.Len(t, s.LevelRules(), 6, "empty level rules fall back to the seed")
	assert.Len(t, s.Competencies(), 5, "empty competencies fall back to the seed")
	assert.False(t, s.IsDev())
	assert.Empty(t, s.LastError())
}

func TestConnectedLoadFailureKeepsState(t *testing.T) {
	s, backend, notifier := newConnectedStore(t, kpi.Seed())
	require.Len(t, s.Departments(), 2)

	backend.hook = failOn(bridge.ActionGetAllData)
	s.LoadAll(context.Background())

	assert.Len(t, s.Departments(), 2)
	assert.Contains(t, s.LastError(), "connection reset")
	assert.Equal(t, []string{loadFailedMessage}, notifier.all())
	assert.False(t, s.Loading())
}

func TestConnectedLoadFailureSeedsWhenEnabled(t *testing.T) {
	backend := &fakeBackend{connected: true}
	backend.hook = failOn(bridge.ActionGetAllData)
	s := New(backend, WithSeedOnFailure(true))
	s.LoadAll(context.Background())

	assert.Len(t, s.Employees(), 2)
	assert.NotEmpty(t, s.LastError())
}

func TestEmptyRemoteResultKeepsState(t *testing.T) {
	s, backend, _ := newConnectedStore(t, kpi.Seed())
	backend.mu.Lock()
	backend.raw = json.RawMessage("null")
	backend.mu.Unlock()

	s.LoadAll(context.Background())
	assert.Len(t, s.Employees(), 2)
}

func TestFailedSaveMatchesIndependentLoad(t *testing.T) {
	s, backend, notifier := newConnectedStore(t, kpi.Seed())
	backend.hook = failOn(bridge.ActionSaveDepartment)

	s.SaveDepartment(context.Background(), kpi.Department{Code: "FIN", Name: "Finance"})

	fresh := New(newFakeBackend(kpi.Seed()))
	fresh.LoadAll(context.Background())
	assert.Equal(t, fresh.Departments(), s.Departments())
	assert.Equal(t, []string{saveFailedMessage}, notifier.all())
	assert.Empty(t, s.Pending())
	assert.Contains(t, s.LastError(), "connection reset")
}

func TestFailedSaveRestoresPreviousVersion(t *testing.T) {
	s, backend, _ := newConnectedStore(t, kpi.Seed())
	backend.hook = failOn(bridge.ActionSaveEmployee)

	s.SaveEmployee(context.Background(), kpi.Employee{ID: "e2", Code: "002", Name: "Robert", Role: kpi.RoleEmployee})

	emp, ok := s.Employee("e2")
	require.True(t, ok)
	assert.Equal(t, "Bob Human", emp.Name)
	assert.Equal(t, 1, backend.count(bridge.ActionGetAllData), "clean rollback needs no reload")
}

func TestFailedDeleteRestoresEntityInPlace(t *testing.T) {
	s, backend, notifier := newConnectedStore(t, kpi.Seed())
	backend.hook = failOn(bridge.ActionDeleteAssignment)
	before := s.Assignments()

	s.DeleteAssignment(context.Background(), "a2")

	assert.Equal(t, before, s.Assignments())
	msgs := notifier.all()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0], bridge.ActionDeleteAssignment)
}

func TestSuccessfulSaveCommits(t *testing.T) {
	s, backend, notifier := newConnectedStore(t, kpi.Seed())

	saved := s.SaveActivity(context.Background(), kpi.Activity{KPIID: "k1", Name: "Pairing", Active: true})

	assert.Equal(t, 1, backend.count(bridge.ActionSaveActivity))
	assert.Empty(t, s.Pending())
	assert.Empty(t, notifier.all())
	found := false
	for _, a := range s.Activities() {
		found = found || a.ID == saved.ID
	}
	assert.True(t, found)
}

func TestFailureBehindNewerPatchResyncs(t *testing.T) {
	s, backend, notifier := newConnectedStore(t, kpi.Seed())
	entered := make(chan struct{})
	release := make(chan struct{})
	backend.hook = func(action string, payload any) error {
		if action != bridge.ActionSaveDepartment {
			return nil
		}
		if d := payload.(kpi.Department); d.Name == "first" {
			close(entered)
			<-release
			return &bridge.RemoteActionError{Action: action, Message: "conflict"}
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.SaveDepartment(context.Background(), kpi.Department{ID: "d1", Name: "first"})
		close(done)
	}()
	<-entered
	s.SaveDepartment(context.Background(), kpi.Department{ID: "d1", Name: "second"})
	close(release)
	<-done

	assert.Equal(t, 2, backend.count(bridge.ActionGetAllData), "expected a full reload")
	dep := s.Departments()[0]
	assert.Equal(t, "Information Technology", dep.Name)
	assert.Equal(t, []string{saveFailedMessage}, notifier.all())
}

func TestFailureAfterReloadResyncs(t *testing.T) {
	s, backend, _ := newConnectedStore(t, kpi.Seed())
	entered := make(chan struct{})
	release := make(chan struct{})
	backend.hook = func(action string, _ any) error {
		if action == bridge.ActionSaveKPI {
			close(entered)
			<-release
			return errors.New("boom")
		}
		return nil
	}

	done := make(chan struct{})
	go func() {
		s.SaveKPI(context.Background(), kpi.KPI{ID: "k9", Name: "pending"})
		close(done)
	}()
	<-entered
	require.Len(t, s.Pending(), 1)
	s.LoadAll(context.Background())
	close(release)
	<-done

	assert.Equal(t, 3, backend.count(bridge.ActionGetAllData))
	assert.Len(t, s.KPIs(), 3)
}

func TestOfflineMutationsMakeNoRemoteCalls(t *testing.T) {
	backend := &fakeBackend{connected: false}
	s := New(backend, WithOfflineDelay(0))
	s.LoadAll(context.Background())
	s.SaveRecord(context.Background(), kpi.Record{EmployeeID: "e1", KPIID: "k1", Level: kpi.LevelGP})
	s.DeleteRecord(context.Background(), "r1")
	assert.Empty(t, backend.calls)
	assert.Len(t, s.Records(), 2)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := newOfflineStore(t)
	kpis := s.KPIs()
	kpis[0].Name = "mutated"
	kpis[0].EvaluationRules[kpi.LevelF] = nil

	again := s.KPIs()
	assert.Equal(t, "Code Quality (Bug Rate)", again[0].Name)
	assert.Len(t, again[0].EvaluationRules[kpi.LevelF], 2)
}

func TestResetClearsState(t *testing.T) {
	s := newOfflineStore(t)
	require.NoError(t, s.Close())
	assert.Empty(t, s.Employees())
	assert.Empty(t, s.Snapshot().Records)
	assert.False(t, s.Ready())
}

func TestSnapshotIsConsistent(t *testing.T) {
	s := newOfflineStore(t)
	ds := s.Snapshot()
	assert.Equal(t, s.Employees(), ds.Employees)
	assert.Equal(t, s.CompetencyRecords(), ds.CompetencyRecords)
}
