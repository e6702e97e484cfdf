package models

import (
	"errors"
	"time"
)

const JOB_STATUS_JOIN_QUERY = "INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id AND job_statuses.name = ?"

var ErrDuplicateJob = errors.New("job with the given name already exists in queue")

type Job struct {
	BaseModel
	Fails       int        `json:"fails"`
	Name        string     `json:"name" gorm:"index"`
	Handler     string     `json:"handler"`
	Args        string     `json:"args"`
	LastError   string     `json:"last_error"`
	Claimed     bool       `json:"claimed" gorm:"default:false"`
	JobStatusID uint       `json:"job_status_id"`
	JobStatus   *JobStatus `json:"status,omitempty"`
}

// CreateJob adds an 'enqueued' job. When 'unique' is set and a job with the same name
// is already enqueued or in-progress, ErrDuplicateJob is returned instead.
func (store *Store) CreateJob(name, handler, args string, unique bool) error {
	enqueuedStatus, err := store.FindJobStatus(ENQUEUED_JOB)
	if err != nil {
		return err
	}

	if unique {
		var count int64
		err = store.db.Model(&Job{}).
			Joins("INNER JOIN job_statuses ON job_statuses.id = jobs.job_status_id").
			Where("jobs.name = ? AND job_statuses.name IN ?", name, []string{ENQUEUED_JOB, IN_PROGRESS_JOB}).
			Count(&count).Error
		if err != nil {
			return err
		}

		if count > 0 {
			return ErrDuplicateJob
		}
	}

	return store.db.Create(&Job{
		Name:        name,
		Handler:     handler,
		Args:        args,
		JobStatusID: enqueuedStatus.ID,
	}).Error
}

// NextEnqueuedJob returns the oldest unclaimed 'enqueued' job
func (store *Store) NextEnqueuedJob() (*Job, error) {
	job := Job{}
	err := store.db.Joins(JOB_STATUS_JOIN_QUERY, ENQUEUED_JOB).
		Where("claimed = ?", false).Order("jobs.id asc").First(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// ClaimJob moves job 'id' to 'in-progress'. It returns false if another worker claimed it first.
func (store *Store) ClaimJob(id uint) (bool, error) {
	inProgressStatus, err := store.FindJobStatus(IN_PROGRESS_JOB)
	if err != nil {
		return false, err
	}

	res := store.db.Model(&Job{}).Where("id = ? AND claimed = ?", id, false).Updates(map[string]interface{}{
		"claimed":       true,
		"job_status_id": inProgressStatus.ID,
	})

	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (store *Store) UpdateJob(id uint, data map[string]interface{}) error {
	return store.db.Model(&Job{}).Where("id = ?", id).Updates(data).Error
}

func (store *Store) FindJob(id uint) (*Job, error) {
	job := Job{}
	err := store.db.Preload("JobStatus").First(&job, id).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// LastJobLastUpdated returns the last job with 'status' that has not been updated
// in the last 'age'
func (store *Store) LastJobLastUpdated(age time.Duration, status string) (*Job, error) {
	job := Job{}
	err := store.db.Joins(JOB_STATUS_JOIN_QUERY, status).
		Where("jobs.updated_at <= ?", time.Now().Add(-age)).
		Last(&job).Error
	if err != nil {
		return nil, err
	}

	return &job, nil
}

// CurrentJobsStats counts jobs per status
func (store *Store) CurrentJobsStats() (*JobsStats, error) {
	stats := JobsStats{}

	counts := []struct {
		status string
		count  *int64
	}{
		{ENQUEUED_JOB, &stats.EnqueuedJobCount},
		{IN_PROGRESS_JOB, &stats.InProgressJobCount},
		{SUCCESSFUL_JOB, &stats.SuccessfulJobCount},
		{DEAD_JOB, &stats.DeadJobCount},
	}

	for _, c := range counts {
		err := store.db.Joins(JOB_STATUS_JOIN_QUERY, c.status).Model(&Job{}).Count(c.count).Error
		if err != nil {
			return nil, err
		}
	}

	return &stats, nil
}
