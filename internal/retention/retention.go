// Package retention purges old search-history rows on a daily schedule.
package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/gnosislabs/gnosis-api/internal/repo"
)

// purgeSchedule runs once a day during the quiet hours.
const purgeSchedule = "0 3 * * *"

// Job deletes history entries older than the retention window. A Days value
// of zero or less disables the job.
type Job struct {
	History *repo.HistoryRepo
	Days    int
}

// Purge deletes entries older than the retention window and returns how many
// rows were removed.
func (j *Job) Purge(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -j.Days)
	return j.History.DeleteOlderThan(ctx, cutoff)
}

// Start schedules the daily purge and returns the running cron instance so
// the caller can Stop it on shutdown. Returns nil when retention is disabled.
func (j *Job) Start() *cron.Cron {
	if j.Days <= 0 {
		slog.Info("history retention disabled")
		return nil
	}

	c := cron.New()
	_, err := c.AddFunc(purgeSchedule, func() {
		removed, err := j.Purge(context.Background())
		if err != nil {
			slog.Error("history retention purge failed", "error", err.Error())
			return
		}
		slog.Info("history retention purge complete",
			"removed", removed, "retention_days", j.Days)
	})
	if err != nil {
		// purgeSchedule is a constant; this only fires if it is edited badly.
		slog.Error("history retention schedule invalid", "error", err.Error())
		return nil
	}

	c.Start()
	slog.Info("history retention scheduled",
		"cron", purgeSchedule, "retention_days", j.Days)
	return c
}
