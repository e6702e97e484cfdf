package work

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Daskott/instantdoc/colors"
	"github.com/Daskott/instantdoc/server/logger"
	"github.com/Daskott/instantdoc/server/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	DefaultTickerDuration = 5 * time.Millisecond
	TickerDurationOnError = 10 * time.Millisecond

	ErrDuplicateHandler = errors.New("handler with provided name already mapped")
	ErrUnknownHandler   = errors.New("no handler mapped to job")

	logg = logger.NewLogger("work")
)

type JobParams struct {
	Name    string
	Handler string
	Unique  bool
	Args    map[string]interface{}
}

type Handler func(map[string]interface{}) error

type worker struct {
	id                     string
	store                  *models.Store
	handlers               map[string]Handler
	stopChan               chan struct{}
	sleepBackoffsInSeconds []int64
}

func newWorker(store *models.Store, sleepBackoffsInSeconds []int64) *worker {
	return &worker{
		id:                     uuid.NewString(),
		store:                  store,
		handlers:               make(map[string]Handler),
		stopChan:               make(chan struct{}),
		sleepBackoffsInSeconds: sleepBackoffsInSeconds,
	}
}

// registerHandler binds a name to a job handler.
func (w *worker) registerHandler(name string, handler Handler) error {
	if _, ok := w.handlers[name]; ok {
		return ErrDuplicateHandler
	}

	w.handlers[name] = handler

	return nil
}

// start starts the worker loop that pulls jobs from the queue & processes them
func (w *worker) start() {
	go w.loop()
}

func (w *worker) stop() {
	w.stopChan <- struct{}{}
}

func (w *worker) loop() {
	var consecutiveNoJobs int64

	sleepBackoffs := w.sleepBackoffsInSeconds
	rateLimiter := time.NewTicker(DefaultTickerDuration)
	defer rateLimiter.Stop()

	logg.Infof("Starting worker %s", w.id)
	for {
		select {
		case <-w.stopChan:
			logg.Infof("Stopping worker %s", w.id)
			return
		case <-rateLimiter.C:
			currentJob, err := w.store.NextEnqueuedJob()
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// If no job found, slowly increase the wait time between each job fetch
					// using 'sleepBackoffsInSeconds', to reduce db hits when the queue is empty.
					consecutiveNoJobs++
					idx := consecutiveNoJobs
					if idx >= int64(len(sleepBackoffs)) {
						idx = int64(len(sleepBackoffs)) - 1
					}
					rateLimiter.Reset(time.Duration(sleepBackoffs[idx])*time.Second + DefaultTickerDuration)
					continue
				}

				w.logError(err)
				rateLimiter.Reset(TickerDurationOnError)
				continue
			}

			claimed, err := w.store.ClaimJob(currentJob.ID)
			if err != nil {
				w.logError(err)
				rateLimiter.Reset(TickerDurationOnError)
				continue
			}

			// Another worker got to it first
			if !claimed {
				rateLimiter.Reset(DefaultTickerDuration)
				continue
			}

			w.logInfof("claimed job with id=%v, name=%v", currentJob.ID, currentJob.Name)

			w.processJob(currentJob)
			rateLimiter.Reset(DefaultTickerDuration)
			consecutiveNoJobs = 0
		}
	}
}

func (w *worker) processJob(job *models.Job) {
	handler, ok := w.handlers[job.Handler]
	if !ok {
		w.markJobAsDead(job, fmt.Errorf("%w: %q", ErrUnknownHandler, job.Handler))
		return
	}

	args := make(map[string]interface{})
	err := json.Unmarshal([]byte(job.Args), &args)
	if err != nil {
		w.markJobAsDead(job, err)
		return
	}

	err = handler(args)
	if err != nil {
		w.markJobAsDead(job, err)
		return
	}

	w.markJobAsSuccessful(job)
}

// markJobAsDead records the failure. Jobs are never retried.
func (w *worker) markJobAsDead(job *models.Job, runError error) {
	w.logError(runError)

	jobStatus, err := w.store.FindJobStatus(models.DEAD_JOB)
	if err != nil {
		w.logError(err)
		return
	}

	err = w.store.UpdateJob(job.ID, map[string]interface{}{
		"claimed":       false,
		"job_status_id": jobStatus.ID,
		"fails":         job.Fails + 1,
		"last_error":    runError.Error(),
	})
	if err != nil {
		w.logError(err)
	}
	w.logInfof("job with id=%v completed with status=%v", job.ID, jobStatus.Name)
}

func (w *worker) markJobAsSuccessful(job *models.Job) {
	jobStatus, err := w.store.FindJobStatus(models.SUCCESSFUL_JOB)
	if err != nil {
		w.logError(err)
		return
	}

	err = w.store.UpdateJob(job.ID, map[string]interface{}{
		"claimed":       false,
		"job_status_id": jobStatus.ID,
	})
	if err != nil {
		w.logError(err)
	}
	w.logInfof("job with id=%v completed with status=%v", job.ID, jobStatus.Name)
}

func (w *worker) logInfof(template string, args ...interface{}) {
	prefix := colors.Prefix("worker", w.id, false)
	logg.Infof(prefix+template, args...)
}

func (w *worker) logError(err error) {
	prefix := colors.Prefix("worker", w.id, true)
	logg.Errorf("%v%v", prefix, err)
}
