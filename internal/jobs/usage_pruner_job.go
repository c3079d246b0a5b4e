package jobs

import (
	"context"
	"log"
	"time"

	"eventpilot/internal/repository"

	"gorm.io/gorm"
)

// usageRetention is how long expired quota windows are kept before pruning.
const usageRetention = 8 * 7 * 24 * time.Hour

// UsagePrunerJob periodically removes insight-usage rows from past weeks
type UsagePrunerJob struct {
	repo *repository.Repository
}

func NewUsagePrunerJob(db *gorm.DB) *UsagePrunerJob {
	return &UsagePrunerJob{repo: repository.NewRepository(db)}
}

// Start begins the periodic pruning job
func (j *UsagePrunerJob) Start(interval time.Duration) {
	go func() {
		ctx := context.Background()

		// Run immediately on start
		j.prune(ctx)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for range ticker.C {
			j.prune(ctx)
		}
	}()
}

func (j *UsagePrunerJob) prune(ctx context.Context) {
	cutoff := time.Now().Add(-usageRetention)
	pruned, err := j.repo.PruneUsageBefore(ctx, cutoff)
	if err != nil {
		log.Printf("Usage prune error: %v", err)
		return
	}
	if pruned > 0 {
		log.Printf("Pruned %d expired insight usage rows", pruned)
	}
}
