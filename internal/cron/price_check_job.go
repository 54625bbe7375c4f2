package cron

import (
	"context"
	"fmt"

	"github.com/angelmondragon/mia-backend/internal/tracking"
	"github.com/angelmondragon/mia-backend/pkg/enums"
	"github.com/angelmondragon/mia-backend/pkg/logger"
	"go.uber.org/multierr"
)

const priceCheckJobName = "price-check"

type cycleRunner interface {
	RunCycle(ctx context.Context) (*tracking.CycleResult, error)
}

// PriceCheckJobParams configure the price check job.
type PriceCheckJobParams struct {
	Logger  *logger.Logger
	Tracker cycleRunner
}

type priceCheckJob struct {
	logg    *logger.Logger
	tracker cycleRunner
}

// NewPriceCheckJob wraps one tracking cycle as a cron job.
func NewPriceCheckJob(params PriceCheckJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Tracker == nil {
		return nil, fmt.Errorf("tracker required")
	}
	return &priceCheckJob{logg: params.Logger, tracker: params.Tracker}, nil
}

func (j *priceCheckJob) Name() string {
	return priceCheckJobName
}

// Run checks one batch of wishes. Per-wish failures are combined into the
// returned error after the whole batch has been processed.
func (j *priceCheckJob) Run(ctx context.Context) error {
	result, err := j.tracker.RunCycle(ctx)
	if err != nil {
		return err
	}

	counts := statusCounts(result)
	fields := map[string]any{"checked": result.Checked}
	for status, count := range counts {
		fields[string(status)] = count
	}
	j.logg.Info(j.logg.WithFields(ctx, fields), "cron.price_check_summary")

	return multierr.Combine(result.Failures()...)
}

func statusCounts(result *tracking.CycleResult) map[enums.TrackStatus]int {
	counts := make(map[enums.TrackStatus]int, len(enums.TrackStatuses()))
	for _, status := range enums.TrackStatuses() {
		counts[status] = 0
	}
	for _, r := range result.Results {
		counts[r.Status]++
	}
	return counts
}
