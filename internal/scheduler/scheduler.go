package scheduler

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/akulinichev/reminderhub/internal/entity"
	"github.com/akulinichev/reminderhub/pkg/queue"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DefaultCron is the schedule used when registration supplies none:
// daily at 09:00.
const DefaultCron = "0 0 9 * * ?"

const triggerSuffix = "_trigger"

// JobInfo is a dashboard snapshot of one registered job.
type JobInfo struct {
	JobKey      string    `json:"job_key"`
	TriggerName string    `json:"trigger_name"`
	CronExpr    string    `json:"cron_expression"`
	Queue       string    `json:"queue"`
	Paused      bool      `json:"paused"`
	Running     bool      `json:"running"`
	NextRun     time.Time `json:"next_run,omitempty"`
}

type registration struct {
	job         Job
	jobKey      string
	triggerName string
	cronExpr    string
	queueName   string
	entryID     cron.EntryID
	paused      bool
	running     int32 // atomic; guards against overlapping firings
}

// Scheduler binds job behaviors to cron triggers and executes their firings
// through the named queues' worker pool. Registration is an upsert keyed by
// job key: re-registering replaces the trigger, never duplicates it.
type Scheduler struct {
	mu     sync.Mutex
	parser cron.Parser
	cron   *cron.Cron
	queue  queue.Queue
	jobs   map[string]*registration
	run    bool
}

func NewScheduler(q queue.Queue, loc *time.Location) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	parser := cron.NewParser(
		cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
	)
	return &Scheduler{
		parser: parser,
		cron:   cron.New(cron.WithParser(parser), cron.WithLocation(loc)),
		queue:  q,
		jobs:   make(map[string]*registration),
	}
}

// Register binds the job under its key and creates or replaces its trigger.
// An invalid cron expression or unknown queue fails immediately; this is a
// startup-time programmer error, never silently replaced by the default.
func (s *Scheduler) Register(job Job, opts ...Option) error {
	if job == nil {
		return entity.ErrNilJob
	}

	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	jobKey := o.jobKey
	if jobKey == "" {
		jobKey = job.Key()
	}
	if jobKey == "" {
		return fmt.Errorf("%w: empty job key", entity.ErrInvalidInput)
	}

	cronExpr := o.cronExpr
	if cronExpr == "" {
		cronExpr = DefaultCron
	}

	queueName := job.Queue()
	if !queue.IsKnownQueue(queueName) {
		return fmt.Errorf("%w: %q", entity.ErrUnknownQueue, queueName)
	}

	if _, err := s.parser.Parse(cronExpr); err != nil {
		return fmt.Errorf("%w: %q: %v", entity.ErrInvalidCron, cronExpr, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Upsert: drop the previous trigger before wiring the new one.
	if existing, ok := s.jobs[jobKey]; ok {
		s.cron.Remove(existing.entryID)
	}

	reg := &registration{
		job:         job,
		jobKey:      jobKey,
		triggerName: jobKey + triggerSuffix,
		cronExpr:    cronExpr,
		queueName:   queueName,
	}

	entryID, err := s.cron.AddFunc(cronExpr, func() {
		s.fire(reg)
	})
	if err != nil {
		return fmt.Errorf("%w: %q: %v", entity.ErrInvalidCron, cronExpr, err)
	}
	reg.entryID = entryID
	s.jobs[jobKey] = reg

	logrus.WithFields(logrus.Fields{
		"job_key": jobKey,
		"trigger": reg.triggerName,
		"cron":    cronExpr,
		"queue":   queueName,
	}).Info("Job registered")
	return nil
}

// fire publishes one firing of the job onto its queue.
func (s *Scheduler) fire(reg *registration) {
	s.mu.Lock()
	paused := reg.paused
	s.mu.Unlock()
	if paused {
		logrus.WithField("job_key", reg.jobKey).Debug("Trigger paused, firing skipped")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	task := &queue.Task{
		ID:      uuid.New().String(),
		JobKey:  reg.jobKey,
		Queue:   reg.queueName,
		FiredAt: time.Now(),
	}
	if err := s.queue.Publish(ctx, task); err != nil {
		logrus.Errorf("Failed to enqueue firing of job %s: %v", reg.jobKey, err)
	}
}

// Start begins trigger evaluation and attaches the execution handler to the
// queue's worker pool.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.run {
		s.mu.Unlock()
		return nil
	}
	s.run = true
	s.mu.Unlock()

	if err := s.queue.Subscribe(ctx, s.handleTask); err != nil {
		return fmt.Errorf("failed to subscribe to queues: %w", err)
	}

	s.cron.Start()
	logrus.Info("Scheduler started")
	return nil
}

// Stop halts the triggers and lets the in-flight firing finish or be
// abandoned; a future firing re-evaluates the same state either way.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.run {
		s.mu.Unlock()
		return
	}
	s.run = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	if err := s.queue.Close(); err != nil {
		logrus.Errorf("Failed to close queue: %v", err)
	}
	logrus.Info("Scheduler stopped")
}

// handleTask runs one dequeued firing. Successive firings of the same job
// must not overlap: a firing that arrives while the previous one still runs
// is skipped, and the next trigger re-evaluates the same state.
func (s *Scheduler) handleTask(task *queue.Task) error {
	s.mu.Lock()
	reg, ok := s.jobs[task.JobKey]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", entity.ErrJobNotFound, task.JobKey)
	}

	if !atomic.CompareAndSwapInt32(&reg.running, 0, 1) {
		logrus.WithField("job_key", reg.jobKey).Warn("Previous firing still running, skipped")
		return nil
	}
	defer atomic.StoreInt32(&reg.running, 0)

	start := time.Now()
	err := reg.job.Run(context.Background())
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"job_key":  reg.jobKey,
			"duration": time.Since(start),
		}).Errorf("Job run failed: %v", err)
		return err
	}

	logrus.WithFields(logrus.Fields{
		"job_key":  reg.jobKey,
		"duration": time.Since(start),
	}).Info("Job run completed")
	return nil
}

// TriggerNow enqueues one firing of the job immediately, bypassing its
// cron schedule.
func (s *Scheduler) TriggerNow(ctx context.Context, jobKey string) error {
	s.mu.Lock()
	reg, ok := s.jobs[jobKey]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %q", entity.ErrJobNotFound, jobKey)
	}

	task := &queue.Task{
		ID:      uuid.New().String(),
		JobKey:  reg.jobKey,
		Queue:   reg.queueName,
		FiredAt: time.Now(),
	}
	return s.queue.Publish(ctx, task)
}

// Pause disables the job's trigger without unregistering it.
func (s *Scheduler) Pause(jobKey string) error {
	return s.setPaused(jobKey, true)
}

// Resume re-enables a paused trigger.
func (s *Scheduler) Resume(jobKey string) error {
	return s.setPaused(jobKey, false)
}

func (s *Scheduler) setPaused(jobKey string, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	reg, ok := s.jobs[jobKey]
	if !ok {
		return fmt.Errorf("%w: %q", entity.ErrJobNotFound, jobKey)
	}
	reg.paused = paused
	return nil
}

// Jobs returns a snapshot of every registered job for the dashboard.
func (s *Scheduler) Jobs() []JobInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	infos := make([]JobInfo, 0, len(s.jobs))
	for _, reg := range s.jobs {
		info := JobInfo{
			JobKey:      reg.jobKey,
			TriggerName: reg.triggerName,
			CronExpr:    reg.cronExpr,
			Queue:       reg.queueName,
			Paused:      reg.paused,
			Running:     atomic.LoadInt32(&reg.running) == 1,
		}
		if entry := s.cron.Entry(reg.entryID); entry.ID == reg.entryID {
			info.NextRun = entry.Next
		}
		infos = append(infos, info)
	}
	return infos
}
