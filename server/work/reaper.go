package work

import (
	"errors"
	"time"

	"github.com/Daskott/instantdoc/colors"
	"github.com/Daskott/instantdoc/server/models"
	"gorm.io/gorm"
)

var (
	StuckJobAge          = 30 * time.Minute
	ReaperSleepOnNoJobs  = 5 * time.Minute
	reaperStuckJobErrMsg = "job stayed in-progress for too long"
)

// stuckJobsReaper marks jobs that stayed 'in-progress' for longer than StuckJobAge as dead,
// e.g. when the server stopped while a job was running
type stuckJobsReaper struct {
	store    *models.Store
	stopChan chan struct{}
}

func newStuckJobsReaper(store *models.Store) *stuckJobsReaper {
	return &stuckJobsReaper{
		store:    store,
		stopChan: make(chan struct{}),
	}
}

func (r *stuckJobsReaper) start() {
	go r.loop()
}

func (r *stuckJobsReaper) stop() {
	r.stopChan <- struct{}{}
}

func (r *stuckJobsReaper) loop() {
	rateLimiter := time.NewTicker(DefaultTickerDuration)
	defer rateLimiter.Stop()

	logg.Infof("Starting job reaper")
	for {
		select {
		case <-r.stopChan:
			logg.Infof("Stopping job reaper")
			return
		case <-rateLimiter.C:
			stuckJob, err := r.store.LastJobLastUpdated(StuckJobAge, models.IN_PROGRESS_JOB)

			if errors.Is(err, gorm.ErrRecordNotFound) {
				rateLimiter.Reset(ReaperSleepOnNoJobs)
				continue
			}

			if err != nil {
				r.logError(err)
				rateLimiter.Reset(TickerDurationOnError)
				continue
			}

			r.reap(stuckJob)
			rateLimiter.Reset(DefaultTickerDuration)
		}
	}
}

func (r *stuckJobsReaper) reap(job *models.Job) {
	jobStatus, err := r.store.FindJobStatus(models.DEAD_JOB)
	if err != nil {
		r.logError(err)
		return
	}

	err = r.store.UpdateJob(job.ID, map[string]interface{}{
		"claimed":       false,
		"job_status_id": jobStatus.ID,
		"fails":         job.Fails + 1,
		"last_error":    reaperStuckJobErrMsg,
	})
	if err != nil {
		r.logError(err)
		return
	}

	logg.Infof("%vjob with id=%v marked as dead", colors.Prefix("job", "reaper", false), job.ID)
}

func (r *stuckJobsReaper) logError(err error) {
	logg.Errorf("%v%v", colors.Prefix("job", "reaper", true), err)
}
