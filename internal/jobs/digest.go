package jobs

import (
	"context"
	"log"
	"time"

	"serpwatch/internal/db"
	"serpwatch/internal/email"
	"serpwatch/internal/models"
	"serpwatch/internal/volatility"
)

// DigestJob periodically evaluates alerts for every project that opted into
// notifications and emails a digest. Evaluation is the same compute-on-read
// scan the alerts endpoint performs; the job persists nothing.
type DigestJob struct {
	db         *db.DB
	engine     *volatility.Engine
	notifier   *email.Service
	interval   time.Duration
	windowDays int

	spikeThreshold         float64
	concentrationThreshold float64
}

// NewDigestJob creates a new alert digest job.
func NewDigestJob(database *db.DB, engine *volatility.Engine, notifier *email.Service, interval time.Duration, windowDays int, spikeThreshold, concentrationThreshold float64) *DigestJob {
	return &DigestJob{
		db:                     database,
		engine:                 engine,
		notifier:               notifier,
		interval:               interval,
		windowDays:             windowDays,
		spikeThreshold:         spikeThreshold,
		concentrationThreshold: concentrationThreshold,
	}
}

// Start begins the digest loop.
func (j *DigestJob) Start(ctx context.Context) {
	log.Printf("Alert digest job started (interval: %v, window: %d days)", j.interval, j.windowDays)

	// Run immediately on start
	j.runAll(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Alert digest job stopped")
			return
		case <-ticker.C:
			j.runAll(ctx)
		}
	}
}

func (j *DigestJob) runAll(ctx context.Context) {
	projects, err := j.db.ListProjectsWithNotifyEmail(ctx)
	if err != nil {
		log.Printf("Digest job: failed to list projects: %v", err)
		return
	}

	for i := range projects {
		select {
		case <-ctx.Done():
			return
		default:
		}
		j.runProject(ctx, &projects[i])
	}
}

func (j *DigestJob) runProject(ctx context.Context, p *models.Project) {
	targets, err := j.db.ListAllKeywordTargets(ctx, p.ID)
	if err != nil {
		log.Printf("Digest job: failed to list targets for %s: %v", p.Slug, err)
		return
	}
	grouped, err := j.db.GetSnapshotsForProject(ctx, p.ID)
	if err != nil {
		log.Printf("Digest job: failed to load snapshots for %s: %v", p.Slug, err)
		return
	}

	keywords := make([]volatility.KeywordData, 0, len(targets))
	for _, t := range targets {
		keywords = append(keywords, volatility.KeywordData{Target: t, Snapshots: grouped[t.ID]})
	}

	alerts, _ := j.engine.Alerts(p.ID, keywords, volatility.AlertParams{
		WindowDays:             j.windowDays,
		SpikeThreshold:         j.spikeThreshold,
		ConcentrationThreshold: j.concentrationThreshold,
	}, time.Now().UTC())

	if len(alerts) == 0 {
		return
	}
	log.Printf("Digest job: %d alert(s) for project %s", len(alerts), p.Slug)
	j.notifier.NotifyAlertDigest(p, alerts, j.windowDays)
}
