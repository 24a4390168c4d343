// Package scheduler
package scheduler

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/wolfsbane9513/influencer-ai/app/orchestrator"
	"github.com/wolfsbane9513/influencer-ai/models"
	"github.com/wolfsbane9513/influencer-ai/repository"
	"github.com/wolfsbane9513/influencer-ai/utils"
)

// CampaignJanitor periodically scans for campaigns left in a non-terminal
// stage with no live workflow (typically after a process restart) and marks
// them failed so their status reads stop reporting phantom progress.
type CampaignJanitor struct {
	campaignRepo repository.CampaignRepository
	orchestrator orchestrator.CampaignOrchestrator
	logger       *log.Logger
	interval     time.Duration
	staleness    time.Duration

	logFile *os.File
}

func NewCampaignJanitor(
	campaignRepo repository.CampaignRepository,
	orch orchestrator.CampaignOrchestrator,
	interval time.Duration,
	staleness time.Duration,
) *CampaignJanitor {
	if interval <= 0 {
		interval = time.Minute
	}
	if staleness <= 0 {
		staleness = time.Hour
	}

	j := &CampaignJanitor{
		campaignRepo: campaignRepo,
		orchestrator: orch,
		interval:     interval,
		staleness:    staleness,
	}

	// Initialize janitor-specific logger (to stdout and persistent file)
	if err := j.initJanitorLogger(); err != nil {
		// Fallback to default stdout logger if file logger init fails
		j.logger = log.Default()
		j.logger.Printf("janitor: failed to initialize file logger: %v", err)
	}

	return j
}

// initJanitorLogger configures a logger that writes to both stdout and a persistent file under data/ (or /data)
func (j *CampaignJanitor) initJanitorLogger() error {
	// Prefer relative data/ then fallback to /data for containerized environments
	candidates := []string{
		filepath.Join("data"),
		"/data",
	}
	for _, dir := range candidates {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			continue
		}
		logPath := filepath.Join(dir, "janitor.log")
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			continue
		}
		j.logFile = f
		mw := io.MultiWriter(os.Stdout, f)
		// log.Logger is goroutine-safe; include timestamps with microseconds and UTC
		j.logger = log.New(mw, "janitor ", log.LstdFlags|log.Lmicroseconds|log.LUTC)
		return nil
	}
	return fmt.Errorf("could not create janitor log file in any candidate directory")
}

// Start launches the janitor loop in a background goroutine and returns a stop function
func (j *CampaignJanitor) Start(parent context.Context) func() {
	ctx, cancel := context.WithCancel(parent)

	go func() {
		ticker := time.NewTicker(j.interval)
		defer ticker.Stop()

		j.runOnce(ctx)

		for {
			select {
			case <-ctx.Done():
				if j.logFile != nil {
					_ = j.logFile.Close()
				}
				return
			case <-ticker.C:
				j.runOnce(ctx)
			}
		}
	}()

	return cancel
}

func (j *CampaignJanitor) runOnce(ctx context.Context) {
	cutoff := utils.UTCNow().Add(-j.staleness)

	stuck := make([]*models.Campaign, 0)
	for _, stage := range []models.CampaignStage{
		models.CampaignStageStarting,
		models.CampaignStageDiscovery,
		models.CampaignStageNegotiating,
		models.CampaignStageContracting,
	} {
		stage := stage
		filter := models.CampaignFilter{Stage: &stage, CreatedBefore: &cutoff}
		campaigns, err := j.campaignRepo.ByFilter(ctx, filter, "created_at ASC", 0, 0)
		if err != nil {
			j.logger.Printf("janitor: list %s campaigns failed: %v", stage, err)
			continue
		}
		stuck = append(stuck, campaigns...)
	}
	if len(stuck) == 0 {
		return
	}

	for _, campaign := range stuck {
		taskID := campaign.TaskID.String()
		if j.orchestrator.Running(taskID) {
			// A live workflow owns this campaign; leave it alone
			continue
		}
		if err := j.failCampaign(ctx, campaign); err != nil {
			j.logger.Printf("janitor: failed to reap campaign %s: %v", taskID, err)
			continue
		}
		j.logger.Printf("janitor: campaign %s reaped (stuck in %s since %s)",
			taskID, campaign.Stage, campaign.CreatedAt.Format(time.RFC3339))
	}
}

// failCampaign marks an orphaned campaign failed and stamps its finish time
func (j *CampaignJanitor) failCampaign(ctx context.Context, campaign *models.Campaign) error {
	msg := fmt.Sprintf("workflow interrupted: no progress since %s", campaign.CreatedAt.Format(time.RFC3339))
	now := utils.UTCNow()

	campaign.Stage = models.CampaignStageFailed
	campaign.LastError = &msg
	campaign.FinishedAt = &now

	return j.campaignRepo.Update(ctx, *campaign)
}
