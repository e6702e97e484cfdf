package cron

import (
	"time"

	"github.com/go-co-op/gocron"
)

// NewCronScheduler returns a scheduler in 'timeZone', falling back to UTC
// when the zone cannot be loaded. Job tags must be unique.
func NewCronScheduler(timeZone string) *gocron.Scheduler {
	location, err := time.LoadLocation(timeZone)
	if err != nil {
		location = time.UTC
	}

	scheduler := gocron.NewScheduler(location)
	scheduler.TagsUnique()

	return scheduler
}
