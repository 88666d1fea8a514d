package orchestrator

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"signalflow/internal/domain"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type fakeStore struct {
	mu      sync.Mutex
	records map[uuid.UUID]*domain.ReportWorkflow

	// saveErr fails Save calls once saveAllow successful saves have
	// happened; saveAllow zero fails every save.
	saveErr   error
	saveAllow int
	saves     int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[uuid.UUID]*domain.ReportWorkflow)}
}

func (s *fakeStore) Create(_ context.Context, wf *domain.ReportWorkflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[wf.ID] = wf.Clone()
	return nil
}

func (s *fakeStore) Save(_ context.Context, wf *domain.ReportWorkflow) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil && s.saves >= s.saveAllow {
		return s.saveErr
	}
	s.saves++
	current, ok := s.records[wf.ID]
	if !ok {
		return domain.E(domain.KindNotFound, "workflow %s not found", wf.ID)
	}
	if current.IsTerminal() {
		return domain.E(domain.KindAlreadyTerminal, "workflow %s is already %s", wf.ID, current.Status)
	}
	s.records[wf.ID] = wf.Clone()
	return nil
}

func (s *fakeStore) Load(_ context.Context, id uuid.UUID) (*domain.ReportWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wf, ok := s.records[id]
	if !ok {
		return nil, domain.E(domain.KindNotFound, "workflow %s not found", id)
	}
	return wf.Clone(), nil
}

func (s *fakeStore) ListUnfinished(_ context.Context, createdBefore time.Time) ([]domain.ReportWorkflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.ReportWorkflow
	for _, wf := range s.records {
		if !wf.IsTerminal() && wf.CreatedAt.Before(createdBefore) {
			out = append(out, *wf.Clone())
		}
	}
	return out, nil
}

func (s *fakeStore) get(id uuid.UUID) *domain.ReportWorkflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if wf, ok := s.records[id]; ok {
		return wf.Clone()
	}
	return nil
}

func (s *fakeStore) put(wf *domain.ReportWorkflow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[wf.ID] = wf.Clone()
}

func (s *fakeStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type fakeObjects struct {
	mu     sync.Mutex
	putErr error
	keys   []string
}

func (o *fakeObjects) Put(_ context.Context, key string, _ []byte) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.putErr != nil {
		return "", o.putErr
	}
	o.keys = append(o.keys, key)
	return "s3://test-bucket/" + key, nil
}

// fakeJobs replays a scripted sequence of poll observations; the last entry
// repeats once the script runs out.
type fakeJobs struct {
	mu        sync.Mutex
	submitErr error
	polls     []domain.JobPoll
	pollIdx   int
	pollCount int
	metrics   *domain.SignalMetrics
	fetchErr  error
}

func (j *fakeJobs) Submit(_ context.Context, _ string, _ domain.JobMetadata) (domain.JobHandle, error) {
	if j.submitErr != nil {
		return "", j.submitErr
	}
	return domain.JobHandle("job-1"), nil
}

func (j *fakeJobs) Poll(_ context.Context, _ domain.JobHandle) (domain.JobPoll, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.pollCount++
	if len(j.polls) == 0 {
		return domain.JobPoll{State: domain.JobRunning}, nil
	}
	poll := j.polls[j.pollIdx]
	if j.pollIdx < len(j.polls)-1 {
		j.pollIdx++
	}
	return poll, nil
}

func (j *fakeJobs) Fetch(_ context.Context, _ domain.JobHandle) (*domain.SignalMetrics, error) {
	if j.fetchErr != nil {
		return nil, j.fetchErr
	}
	if j.metrics != nil {
		return j.metrics, nil
	}
	return healthyMetrics(), nil
}

func (j *fakeJobs) polled() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.pollCount
}

func healthyMetrics() *domain.SignalMetrics {
	return &domain.SignalMetrics{
		MeanHeartRate:  72,
		MinHeartRate:   55,
		MaxHeartRate:   110,
		QTIntervalMs:   400,
		RhythmLabels:   []string{"sinus"},
		ArtifactRatio:  0.05,
		DurationSecond: 86400,
	}
}

type fakeUsage struct {
	mu    sync.Mutex
	err   error
	calls []string
}

func (u *fakeUsage) Increment(_ context.Context, clinicID string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return u.err
	}
	u.calls = append(u.calls, clinicID)
	return nil
}

func (u *fakeUsage) count() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.calls)
}

type testEnv struct {
	store   *fakeStore
	objects *fakeObjects
	jobs    *fakeJobs
	usage   *fakeUsage
	orch    *Orchestrator
}

func newTestEnv() *testEnv {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	env := &testEnv{
		store:   newFakeStore(),
		objects: &fakeObjects{},
		jobs:    &fakeJobs{polls: []domain.JobPoll{{State: domain.JobSucceeded}}},
		usage:   &fakeUsage{},
	}

	executor := NewStepExecutor(env.objects, env.jobs, env.usage, time.Millisecond, 50*time.Millisecond, logger)
	env.orch = New(env.store, executor, NewRegistry(), logger)
	return env
}

// setWait rebuilds the executor with a different poll interval and bound.
func (e *testEnv) setWait(interval, maxWait time.Duration) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	executor := NewStepExecutor(e.objects, e.jobs, e.usage, interval, maxWait, logger)
	e.orch = New(e.store, executor, e.orch.registry, logger)
}

var errBoom = errors.New("boom")
