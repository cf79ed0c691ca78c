package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/fishprofit/internal/config"
	"github.com/mamadbah2/fishprofit/internal/domain/models"
)

// Reporter produces the monthly summary and pushes rows to the sheet.
type Reporter interface {
	MonthSummary() string
	ExportToSheet(ctx context.Context) (int, error)
}

// Sender delivers a text message; satisfied by the WhatsApp messaging service.
type Sender interface {
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	reporter Reporter
	sender   Sender
	ownerID  string
	export   bool
	schedule string
	logger   *zap.Logger
}

// NewScheduler creates a scheduler running in the configured timezone.
// sender may be nil when WhatsApp is disabled.
func NewScheduler(cfg config.Config, reporter Reporter, sender Sender, logger *zap.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", cfg.Reporting.Timezone, err)
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		reporter: reporter,
		sender:   sender,
		ownerID:  cfg.WhatsApp.OwnerID,
		export:   cfg.Sheets.Enabled(),
		schedule: cfg.Reporting.CronSchedule,
		logger:   logger,
	}, nil
}

// Start registers the monthly report job and starts the cron loop.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler", zap.String("schedule", s.schedule))

	if _, err := s.cron.AddFunc(s.schedule, s.runMonthlyReport); err != nil {
		return fmt.Errorf("schedule monthly report %q: %w", s.schedule, err)
	}

	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) runMonthlyReport() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	s.monthlyReport(ctx)
}

func (s *Scheduler) monthlyReport(ctx context.Context) {
	s.logger.Info("generating monthly report")

	if s.export {
		if n, err := s.reporter.ExportToSheet(ctx); err != nil {
			s.logger.Error("failed to export batches", zap.Error(err))
		} else {
			s.logger.Info("batches exported", zap.Int("rows", n))
		}
	}

	if s.sender == nil || s.ownerID == "" {
		s.logger.Debug("no report recipient configured, skipping send")
		return
	}

	req := models.OutboundMessageRequest{
		To:      s.ownerID,
		Message: s.reporter.MonthSummary(),
	}

	if err := s.sender.SendOutbound(ctx, req); err != nil {
		s.logger.Error("failed to send monthly report", zap.Error(err))
	} else {
		s.logger.Info("monthly report sent successfully")
	}
}
