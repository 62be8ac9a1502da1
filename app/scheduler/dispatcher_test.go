package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeJobRepo is an in-memory ScheduledJobRepository for dispatcher tests
type fakeJobRepo struct {
	mu         sync.Mutex
	due        []*models.ScheduledJob
	denyClaims map[uint]bool
	claims     []uint
	runTimes   map[uint]time.Time // jobID -> nextRunAt recorded by UpdateRunTimes
	metadata   map[uint]json.RawMessage
	listErr    error
}

func newFakeJobRepo(due ...*models.ScheduledJob) *fakeJobRepo {
	return &fakeJobRepo{
		due:        due,
		denyClaims: make(map[uint]bool),
		runTimes:   make(map[uint]time.Time),
		metadata:   make(map[uint]json.RawMessage),
	}
}

func (f *fakeJobRepo) ByID(ctx context.Context, id uint) (*models.ScheduledJob, error) {
	for _, j := range f.due {
		if j.ID == id {
			return j, nil
		}
	}
	return nil, nil
}

func (f *fakeJobRepo) ByName(ctx context.Context, name string) (*models.ScheduledJob, error) {
	return nil, nil
}

func (f *fakeJobRepo) List(ctx context.Context, filter models.ScheduledJobFilter, limit, offset int) ([]*models.ScheduledJob, error) {
	return f.due, nil
}

func (f *fakeJobRepo) Count(ctx context.Context, filter models.ScheduledJobFilter) (int64, error) {
	return int64(len(f.due)), nil
}

func (f *fakeJobRepo) ListDue(ctx context.Context, now time.Time) ([]*models.ScheduledJob, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.due, nil
}

func (f *fakeJobRepo) ClaimDueJob(ctx context.Context, jobID uint, now, nextRunAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.denyClaims[jobID] {
		return false, nil
	}
	f.claims = append(f.claims, jobID)
	f.runTimes[jobID] = nextRunAt
	return true, nil
}

func (f *fakeJobRepo) Save(ctx context.Context, job *models.ScheduledJob) error   { return nil }
func (f *fakeJobRepo) Update(ctx context.Context, job *models.ScheduledJob) error { return nil }

func (f *fakeJobRepo) UpdateRunTimes(ctx context.Context, jobID uint, lastRunAt, nextRunAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runTimes[jobID] = nextRunAt
	return nil
}

func (f *fakeJobRepo) UpdateMetadata(ctx context.Context, jobID uint, metadata json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metadata[jobID] = metadata
	return nil
}

func (f *fakeJobRepo) Delete(ctx context.Context, jobID uint) error { return nil }

// fakeLogRepo is an in-memory JobLogRepository for dispatcher tests
type fakeLogRepo struct {
	mu   sync.Mutex
	rows []*models.JobLog
}

func (f *fakeLogRepo) ByID(ctx context.Context, id uint) (*models.JobLog, error) {
	for _, r := range f.rows {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeLogRepo) Save(ctx context.Context, log *models.JobLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = uint(len(f.rows) + 1)
	f.rows = append(f.rows, log)
	return nil
}

func (f *fakeLogRepo) Update(ctx context.Context, log *models.JobLog) error { return nil }

func (f *fakeLogRepo) ListByJob(ctx context.Context, filter models.JobLogFilter, limit, offset int) ([]*models.JobLog, error) {
	return f.rows, nil
}

func (f *fakeLogRepo) CountByJob(ctx context.Context, filter models.JobLogFilter) (int64, error) {
	return int64(len(f.rows)), nil
}

func (f *fakeLogRepo) HasLogs(ctx context.Context, scheduledJobID uint) (bool, error) {
	return len(f.rows) > 0, nil
}

func (f *fakeLogRepo) DeleteByJob(ctx context.Context, scheduledJobID uint) (int64, error) {
	n := int64(len(f.rows))
	f.rows = nil
	return n, nil
}

// stubHandler runs the provided function as the job body
type stubHandler struct {
	run func(ctx context.Context, rc *RunContext) error
}

func (s *stubHandler) Run(ctx context.Context, rc *RunContext) error {
	return s.run(ctx, rc)
}

func makeDueJob(id uint, name string, class models.JobClass) *models.ScheduledJob {
	past := utils.UTCNow().Add(-time.Minute)
	return &models.ScheduledJob{
		ID:           id,
		Name:         name,
		JobClass:     class,
		ScheduleType: models.ScheduleTypeHourly,
		Enabled:      utils.ToPtr(true),
		NextRunAt:    &past,
	}
}

func TestRunDueJobsEmpty(t *testing.T) {
	jobRepo := newFakeJobRepo()
	logRepo := &fakeLogRepo{}
	d := NewDispatcher(jobRepo, logRepo, NewRegistry(), nil, time.Minute, time.Minute)

	summary, err := d.RunDueJobs(context.Background(), utils.UTCNow())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, summary.Executed)
	assert.Empty(t, summary.Errors)
	assert.Empty(t, logRepo.rows)
}

func TestRunDueJobsSuccess(t *testing.T) {
	job := makeDueJob(1, "reminder", models.JobClassTaskReminder)
	jobRepo := newFakeJobRepo(job)
	logRepo := &fakeLogRepo{}

	registry := NewRegistry()
	require.NoError(t, registry.Register(models.JobClassTaskReminder, &stubHandler{
		run: func(ctx context.Context, rc *RunContext) error {
			rc.Message = "sent 3 reminders"
			rc.SetMeta("reminders_sent", 3)
			return nil
		},
	}))

	d := NewDispatcher(jobRepo, logRepo, registry, nil, time.Minute, time.Minute)
	now := utils.UTCNow()

	summary, err := d.RunDueJobs(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, summary.Executed, 1)
	assert.Empty(t, summary.Errors)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, job.ID, summary.Executed[0].ID)
	assert.Equal(t, models.JobLogStatusSuccess, summary.Executed[0].Status)

	// One terminal audit row with the handler's summary preserved
	require.Len(t, logRepo.rows, 1)
	row := logRepo.rows[0]
	assert.Equal(t, models.JobLogStatusSuccess, row.Status)
	assert.Equal(t, job.Name, row.JobName)
	require.NotNil(t, row.Message)
	assert.Equal(t, "sent 3 reminders", *row.Message)
	assert.NotNil(t, row.CompletedAt)
	assert.NotNil(t, row.ExecutionTimeMs)
	assert.NotEqual(t, "", row.CorrelationID.String())

	// The schedule advanced strictly past the dispatch instant
	next, ok := jobRepo.runTimes[job.ID]
	require.True(t, ok)
	assert.True(t, next.After(now))

	// Handler counters landed on the registry row
	require.NotNil(t, jobRepo.metadata[job.ID])
	var meta map[string]any
	require.NoError(t, json.Unmarshal(jobRepo.metadata[job.ID], &meta))
	assert.EqualValues(t, 3, meta["reminders_sent"])
}

func TestRunDueJobsHandlerFailure(t *testing.T) {
	job := makeDueJob(1, "voucher-gen", models.JobClassVoucherGeneration)
	jobRepo := newFakeJobRepo(job)
	logRepo := &fakeLogRepo{}

	registry := NewRegistry()
	require.NoError(t, registry.Register(models.JobClassVoucherGeneration, &stubHandler{
		run: func(ctx context.Context, rc *RunContext) error {
			return errors.New("db unavailable")
		},
	}))

	d := NewDispatcher(jobRepo, logRepo, registry, nil, time.Minute, time.Minute)
	now := utils.UTCNow()

	summary, err := d.RunDueJobs(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, summary.Executed)
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, job.ID, summary.Errors[0].ID)
	assert.Contains(t, summary.Errors[0].Error, "db unavailable")

	require.Len(t, logRepo.rows, 1)
	row := logRepo.rows[0]
	assert.Equal(t, models.JobLogStatusFailed, row.Status)
	require.NotNil(t, row.Error)
	assert.Contains(t, *row.Error, "db unavailable")

	// A failed run must not stall the schedule: the claim advanced it
	next, ok := jobRepo.runTimes[job.ID]
	require.True(t, ok)
	assert.True(t, next.After(now))
}

func TestRunDueJobsUnknownClass(t *testing.T) {
	job := makeDueJob(7, "mystery", models.JobClass("mystery_class"))
	jobRepo := newFakeJobRepo(job)
	logRepo := &fakeLogRepo{}

	d := NewDispatcher(jobRepo, logRepo, NewRegistry(), nil, time.Minute, time.Minute)

	summary, err := d.RunDueJobs(context.Background(), utils.UTCNow())
	require.NoError(t, err)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0].Error, "no handler registered")

	require.Len(t, logRepo.rows, 1)
	assert.Equal(t, models.JobLogStatusFailed, logRepo.rows[0].Status)
}

func TestRunDueJobsClaimLostIsSkipped(t *testing.T) {
	job := makeDueJob(3, "overdue", models.JobClassVoucherOverdue)
	jobRepo := newFakeJobRepo(job)
	jobRepo.denyClaims[job.ID] = true
	logRepo := &fakeLogRepo{}

	registry := NewRegistry()
	require.NoError(t, registry.Register(models.JobClassVoucherOverdue, &stubHandler{
		run: func(ctx context.Context, rc *RunContext) error { return nil },
	}))

	d := NewDispatcher(jobRepo, logRepo, registry, nil, time.Minute, time.Minute)

	summary, err := d.RunDueJobs(context.Background(), utils.UTCNow())
	require.NoError(t, err)
	// A lost claim is neither an execution nor an error, and it leaves no
	// audit row behind
	assert.Equal(t, 0, summary.Total)
	assert.Empty(t, summary.Executed)
	assert.Empty(t, summary.Errors)
	assert.Empty(t, logRepo.rows)
}

func TestRunDueJobsPanicIsIsolated(t *testing.T) {
	panicking := makeDueJob(1, "panics", models.JobClassTaskReminder)
	healthy := makeDueJob(2, "healthy", models.JobClassVoucherOverdue)
	jobRepo := newFakeJobRepo(panicking, healthy)
	logRepo := &fakeLogRepo{}

	registry := NewRegistry()
	require.NoError(t, registry.Register(models.JobClassTaskReminder, &stubHandler{
		run: func(ctx context.Context, rc *RunContext) error { panic("boom") },
	}))
	require.NoError(t, registry.Register(models.JobClassVoucherOverdue, &stubHandler{
		run: func(ctx context.Context, rc *RunContext) error { return nil },
	}))

	d := NewDispatcher(jobRepo, logRepo, registry, nil, time.Minute, time.Minute)

	summary, err := d.RunDueJobs(context.Background(), utils.UTCNow())
	require.NoError(t, err)

	// The panicking job fails, the healthy one still runs
	require.Len(t, summary.Errors, 1)
	assert.Equal(t, panicking.ID, summary.Errors[0].ID)
	assert.Contains(t, summary.Errors[0].Error, "panic")
	require.Len(t, summary.Executed, 1)
	assert.Equal(t, healthy.ID, summary.Executed[0].ID)

	require.Len(t, logRepo.rows, 2)
	assert.Equal(t, models.JobLogStatusFailed, logRepo.rows[0].Status)
	assert.Equal(t, models.JobLogStatusSuccess, logRepo.rows[1].Status)
}

func TestRunDueJobsMalformedScheduleConfig(t *testing.T) {
	job := makeDueJob(4, "broken-config", models.JobClassTaskReminder)
	job.ScheduleType = models.ScheduleTypeCustom
	job.ScheduleConfig = json.RawMessage(`{"interval_minutes": "not a number"`)
	jobRepo := newFakeJobRepo(job)
	logRepo := &fakeLogRepo{}

	registry := NewRegistry()
	require.NoError(t, registry.Register(models.JobClassTaskReminder, &stubHandler{
		run: func(ctx context.Context, rc *RunContext) error { return nil },
	}))

	d := NewDispatcher(jobRepo, logRepo, registry, nil, time.Minute, time.Minute)
	now := utils.UTCNow()

	summary, err := d.RunDueJobs(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, summary.Errors, 1)
	assert.Contains(t, summary.Errors[0].Error, "schedule_config")

	// Even a malformed schedule reschedules the job instead of wedging it
	next, ok := jobRepo.runTimes[job.ID]
	require.True(t, ok)
	assert.True(t, next.After(now))
}

func TestRunDueJobsListFailure(t *testing.T) {
	jobRepo := newFakeJobRepo()
	jobRepo.listErr = errors.New("connection refused")
	d := NewDispatcher(jobRepo, &fakeLogRepo{}, NewRegistry(), nil, time.Minute, time.Minute)

	_, err := d.RunDueJobs(context.Background(), utils.UTCNow())
	assert.Error(t, err)
}
