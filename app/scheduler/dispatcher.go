package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/RehanRiaz5383/lms-v2-sub002/app/dto"
	"github.com/RehanRiaz5383/lms-v2-sub002/models"
	"github.com/RehanRiaz5383/lms-v2-sub002/repository"
	"github.com/RehanRiaz5383/lms-v2-sub002/utils"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Dispatcher selects due jobs on each trigger and runs each in isolation.
// It has no timer of its own beyond the optional Start loop; RunDueJobs is
// a plain request-response computation over durable state.
type Dispatcher struct {
	jobRepo  repository.ScheduledJobRepository
	logRepo  repository.JobLogRepository
	registry *Registry
	cache    *redis.Client
	logger   *log.Logger
	interval time.Duration
	lockTTL  time.Duration
}

// NewDispatcher creates a dispatcher over the given registry and stores.
// cache may be nil; the redis dispatch lock is then skipped and the
// conditional claim on next_run_at remains the only overlap guard.
func NewDispatcher(
	jobRepo repository.ScheduledJobRepository,
	logRepo repository.JobLogRepository,
	registry *Registry,
	cache *redis.Client,
	interval time.Duration,
	lockTTL time.Duration,
) *Dispatcher {
	if interval <= 0 {
		interval = time.Minute
	}
	if lockTTL <= 0 {
		lockTTL = 5 * time.Minute
	}

	d := &Dispatcher{
		jobRepo:  jobRepo,
		logRepo:  logRepo,
		registry: registry,
		cache:    cache,
		interval: interval,
		lockTTL:  lockTTL,
	}
	d.initLogger()
	return d
}

// initLogger configures a logger that writes to both stdout and a rotated
// persistent file under data/ (or /data for containerized environments)
func (d *Dispatcher) initLogger() {
	candidates := []string{
		"data",
		"/data",
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		rotated := &lumberjack.Logger{
			Filename:   filepath.Join(dir, "jobs.log"),
			MaxSize:    50, // megabytes
			MaxBackups: 5,
			MaxAge:     30, // days
			Compress:   true,
		}
		mw := io.MultiWriter(os.Stdout, rotated)
		d.logger = log.New(mw, "jobs ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return
	}

	// Fallback to default stdout logger if no log directory is writable
	d.logger = log.Default()
	d.logger.Printf("jobs: could not create job log file in any candidate directory")
}

// Logger exposes the engine logger for collaborating workers
func (d *Dispatcher) Logger() *log.Logger {
	return d.logger
}

// Start launches the periodic trigger loop in a background goroutine and
// returns a stop function. The loop plays the role of the external
// periodic caller; each tick is one independent trigger invocation.
func (d *Dispatcher) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		d.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (d *Dispatcher) runOnce(ctx context.Context) {
	summary, err := d.RunDueJobs(ctx, utils.UTCNow())
	if err != nil {
		d.logger.Printf("jobs: dispatch cycle failed: %v", err)
		return
	}
	if summary.Total > 0 {
		d.logger.Printf("jobs: dispatch cycle done executed=%d errors=%d", len(summary.Executed), len(summary.Errors))
	}
}

// RunDueJobs runs every due, enabled job once. Failures are isolated per
// job: no job's failure blocks another's execution, and every attempt
// leaves a terminal job log row behind.
func (d *Dispatcher) RunDueJobs(ctx context.Context, now time.Time) (*dto.RunJobsSummary, error) {
	due, err := d.jobRepo.ListDue(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list due jobs: %w", err)
	}
	dueJobsPerDispatch.Observe(float64(len(due)))

	summary := &dto.RunJobsSummary{
		Executed:  []dto.ExecutedJob{},
		Errors:    []dto.FailedJob{},
		Timestamp: now,
	}
	if len(due) == 0 {
		return summary, nil
	}
	d.logger.Printf("jobs: %d due jobs selected", len(due))

	for _, job := range due {
		status, runErr := d.runJob(ctx, job, now)
		switch {
		case status == dto.RunStatusSkipped:
			// claimed by a concurrent dispatcher; not an error
			d.logger.Printf("jobs: job id=%d name=%s skipped, claimed elsewhere", job.ID, job.Name)
		case runErr != nil:
			summary.Errors = append(summary.Errors, dto.FailedJob{
				ID:    job.ID,
				Name:  job.Name,
				Error: runErr.Error(),
			})
		default:
			summary.Executed = append(summary.Executed, dto.ExecutedJob{
				ID:     job.ID,
				Name:   job.Name,
				Status: status,
			})
		}
	}

	summary.Total = len(summary.Executed) + len(summary.Errors)
	return summary, nil
}

// runJob executes a single due job: claim, log open, handler invocation,
// terminal log update, registry reschedule. The returned error reflects
// the handler outcome; infrastructure failures are wrapped the same way.
func (d *Dispatcher) runJob(ctx context.Context, job *models.ScheduledJob, now time.Time) (string, error) {
	cfg, cfgErr := job.Config()

	// Compute the post-run schedule up front so the claim itself advances
	// next_run_at; a malformed schedule still reschedules an hour out so
	// the job is never stuck
	nextRun, schedErr := NextRunAt(job.ScheduleType, cfg, now)
	if cfgErr != nil {
		schedErr = fmt.Errorf("invalid schedule_config: %w", cfgErr)
	}
	if schedErr != nil {
		nextRun = now.Add(time.Hour)
	}

	claimed, err := d.jobRepo.ClaimDueJob(ctx, job.ID, now, nextRun)
	if err != nil {
		return "", fmt.Errorf("claim job: %w", err)
	}
	if !claimed {
		return dto.RunStatusSkipped, nil
	}

	if !d.acquireDispatchLock(ctx, job.ID) {
		return dto.RunStatusSkipped, nil
	}
	defer d.releaseDispatchLock(ctx, job.ID)

	jobLog := &models.JobLog{
		ScheduledJobID: job.ID,
		JobName:        job.Name,
		JobClass:       job.JobClass,
		CorrelationID:  uuid.New(),
		Status:         models.JobLogStatusRunning,
		StartedAt:      now,
	}
	if err := d.logRepo.Save(ctx, jobLog); err != nil {
		return "", fmt.Errorf("open job log: %w", err)
	}

	rc := NewRunContext(now, d.logger)

	var runErr error
	if schedErr != nil {
		runErr = schedErr
	} else if handler, ok := d.registry.Lookup(job.JobClass); !ok {
		runErr = fmt.Errorf("no handler registered for job class %q", job.JobClass)
	} else {
		d.logger.Printf("jobs: running id=%d name=%s class=%s", job.ID, job.Name, job.JobClass)
		runErr = d.invokeHandler(ctx, handler, rc)
	}

	completedAt := utils.UTCNow()
	execMs := completedAt.Sub(now).Milliseconds()
	d.finalizeJobLog(ctx, jobLog, rc, runErr, completedAt, execMs)

	jobRunDuration.WithLabelValues(string(job.JobClass)).Observe(float64(execMs) / 1000.0)

	if runErr != nil {
		jobRunsTotal.WithLabelValues(string(job.JobClass), models.JobLogStatusFailed).Inc()
		d.logger.Printf("jobs: job id=%d name=%s failed in %dms: %v", job.ID, job.Name, execMs, runErr)
		// The claim already advanced next_run_at; a failed run must not
		// stall the schedule
		return models.JobLogStatusFailed, runErr
	}

	// Recompute the schedule from completion time and record the run on
	// the registry row along with the handler's latest counters
	if next, err := NextRunAt(job.ScheduleType, cfg, completedAt); err == nil {
		nextRun = next
	}
	if err := d.jobRepo.UpdateRunTimes(ctx, job.ID, now, nextRun); err != nil {
		d.logger.Printf("jobs: failed to update run times for job id=%d: %v", job.ID, err)
	}
	if meta := rc.MetadataJSON(); meta != nil {
		if err := d.jobRepo.UpdateMetadata(ctx, job.ID, meta); err != nil {
			d.logger.Printf("jobs: failed to update metadata for job id=%d: %v", job.ID, err)
		}
	}

	jobRunsTotal.WithLabelValues(string(job.JobClass), models.JobLogStatusSuccess).Inc()
	d.logger.Printf("jobs: job id=%d name=%s succeeded in %dms", job.ID, job.Name, execMs)
	return models.JobLogStatusSuccess, nil
}

// invokeHandler runs the handler, converting a panic into an error with
// the captured stack so one job cannot take down the dispatch cycle
func (d *Dispatcher) invokeHandler(ctx context.Context, h JobHandler, rc *RunContext) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return h.Run(ctx, rc)
}

// finalizeJobLog writes the single terminal update of the audit row.
// Message and metadata already set by the handler are preserved.
func (d *Dispatcher) finalizeJobLog(ctx context.Context, jobLog *models.JobLog, rc *RunContext, runErr error, completedAt time.Time, execMs int64) {
	if runErr != nil {
		jobLog.Status = models.JobLogStatusFailed
		msg := runErr.Error()
		jobLog.Error = &msg
		if jobLog.Message == nil && rc.Message == "" {
			jobLog.Message = utils.ToPtr("job execution failed")
		}
	} else {
		jobLog.Status = models.JobLogStatusSuccess
	}

	if rc.Message != "" {
		jobLog.Message = &rc.Message
	}
	if rc.Output != "" {
		jobLog.Output = &rc.Output
	}
	if meta := rc.MetadataJSON(); meta != nil {
		jobLog.Metadata = meta
	}

	jobLog.CompletedAt = &completedAt
	jobLog.ExecutionTimeMs = &execMs

	if err := d.logRepo.Update(ctx, jobLog); err != nil {
		d.logger.Printf("jobs: failed to finalize job log id=%d: %v", jobLog.ID, err)
	}
}

// acquireDispatchLock takes a best-effort redis lock for the job; it
// narrows the window between ListDue and the claim when two dispatchers
// overlap. Absence of redis degrades to claim-only protection.
func (d *Dispatcher) acquireDispatchLock(ctx context.Context, jobID uint) bool {
	if d.cache == nil {
		return true
	}
	key := fmt.Sprintf("jobs:dispatch:%d", jobID)
	ok, err := d.cache.SetNX(ctx, key, "1", d.lockTTL).Result()
	if err != nil {
		// Lock failures must not stop dispatching
		d.logger.Printf("jobs: dispatch lock error for job id=%d: %v", jobID, err)
		return true
	}
	return ok
}

func (d *Dispatcher) releaseDispatchLock(ctx context.Context, jobID uint) {
	if d.cache == nil {
		return
	}
	key := fmt.Sprintf("jobs:dispatch:%d", jobID)
	if err := d.cache.Del(ctx, key).Err(); err != nil {
		d.logger.Printf("jobs: dispatch unlock error for job id=%d: %v", jobID, err)
	}
}
