package syncjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

const nightlyRunTimeout = 15 * time.Minute

type Scheduler struct {
	svc  *Service
	spec string
}

func NewScheduler(svc *Service, spec string) *Scheduler {
	return &Scheduler{svc: svc, spec: spec}
}

// Start registers the nightly incremental sync.
func (s *Scheduler) Start() {
	c := cron.New(cron.WithSeconds())

	_, err := c.AddFunc(s.spec, func() {
		runNightlySync(s.svc)
	})

	if err != nil {
		log.Printf("Failed to create cron job: %v", err)
		return
	}

	log.Printf("Cron scheduler started (incremental sync at %q)", s.spec)
	c.Start()
}

func runNightlySync(svc *Service) {
	log.Println("Nightly sync started...")

	ctx, cancel := context.WithTimeout(context.Background(), nightlyRunTimeout)
	defer cancel()

	summary, err := svc.Run(ctx, false)
	if err != nil {
		log.Printf("Nightly sync failed: %v", err)
		return
	}

	log.Printf("Nightly sync completed: clients=%d projects=%d users=%d",
		summary.Imported.Clients, summary.Imported.Projects, summary.Imported.Users)
}
