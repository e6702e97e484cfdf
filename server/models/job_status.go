package models

const (
	ENQUEUED_JOB    = "enqueued"
	IN_PROGRESS_JOB = "in-progress"
	SUCCESSFUL_JOB  = "successful"
	DEAD_JOB        = "dead"
)

type JobsStats struct {
	EnqueuedJobCount   int64 `json:"enqueued_job_count"`
	InProgressJobCount int64 `json:"in_progress_job_count"`
	SuccessfulJobCount int64 `json:"successful_job_count"`
	DeadJobCount       int64 `json:"dead_job_count"`
}

type JobStatus struct {
	BaseModel
	Name string `json:"name"`
	Jobs []Job  `json:"-" gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}

func (store *Store) FindJobStatus(name string) (*JobStatus, error) {
	jobStatus := JobStatus{}
	err := store.db.Select("id", "name").First(&jobStatus, "name = ?", name).Error
	if err != nil {
		return nil, err
	}

	return &jobStatus, nil
}
