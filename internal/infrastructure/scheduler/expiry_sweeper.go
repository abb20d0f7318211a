package scheduler

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	inventoryapp "github.com/poscore/backend/internal/application/inventory"
	"github.com/poscore/backend/internal/application/notification"
	"github.com/poscore/backend/internal/domain/shared"
)

// TenantSource lists the tenants the sweep runs for.
type TenantSource interface {
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ExpiringBatchLister is the slice of the inventory service the
// sweeper needs.
type ExpiringBatchLister interface {
	ListExpiring(ctx context.Context, tenantID uuid.UUID, horizonDays int, filter shared.Filter) ([]inventoryapp.BatchResponse, error)
}

// ExpirySweeperConfig holds sweep scheduling settings.
type ExpirySweeperConfig struct {
	// DailyHour/DailyMinute is the local time the sweep runs at.
	DailyHour   int
	DailyMinute int

	// CheckInterval is how often the loop wakes to see whether the
	// sweep is due.
	CheckInterval time.Duration

	// AlertWindow is how far ahead expiring batches are flagged.
	AlertWindow time.Duration
}

// DefaultExpirySweeperConfig returns the default sweep schedule.
func DefaultExpirySweeperConfig() ExpirySweeperConfig {
	return ExpirySweeperConfig{
		DailyHour:     6,
		DailyMinute:   0,
		CheckInterval: time.Minute,
		AlertWindow:   7 * 24 * time.Hour,
	}
}

// ExpirySweeper sends a daily notification for every available batch
// whose expiry date falls inside the alert window.
type ExpirySweeper struct {
	config    ExpirySweeperConfig
	inventory ExpiringBatchLister
	tenants   TenantSource
	notifier  notification.Notifier
	logger    *zap.Logger
	clock     shared.Clock

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewExpirySweeper creates a new expiry sweeper.
func NewExpirySweeper(
	config ExpirySweeperConfig,
	inventory ExpiringBatchLister,
	tenants TenantSource,
	notifier notification.Notifier,
	logger *zap.Logger,
) *ExpirySweeper {
	if config.CheckInterval <= 0 {
		config.CheckInterval = time.Minute
	}
	if config.AlertWindow <= 0 {
		config.AlertWindow = 7 * 24 * time.Hour
	}
	return &ExpirySweeper{
		config:    config,
		inventory: inventory,
		tenants:   tenants,
		notifier:  notifier,
		logger:    logger,
		clock:     shared.SystemClock{},
	}
}

// SetClock overrides the time source
func (s *ExpirySweeper) SetClock(clock shared.Clock) {
	s.clock = clock
}

// Start launches the sweep loop.
func (s *ExpirySweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Expiry sweeper started",
		zap.Int("daily_hour", s.config.DailyHour),
		zap.Int("daily_minute", s.config.DailyMinute),
		zap.Duration("alert_window", s.config.AlertWindow),
	)

	return nil
}

// Stop halts the loop and waits for an in-flight sweep to finish.
func (s *ExpirySweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Expiry sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ExpirySweeper) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.checkAndSweep(ctx)
		}
	}
}

// checkAndSweep runs the sweep once per calendar day, at or after the
// configured time.
func (s *ExpirySweeper) checkAndSweep(ctx context.Context) {
	now := s.clock.Now()
	currentDate := now.Format("2006-01-02")

	s.mu.Lock()
	alreadyRan := s.lastRunDate == currentDate
	s.mu.Unlock()
	if alreadyRan {
		return
	}

	due := time.Date(now.Year(), now.Month(), now.Day(),
		s.config.DailyHour, s.config.DailyMinute, 0, 0, now.Location())
	if now.Before(due) {
		return
	}

	s.mu.Lock()
	s.lastRunDate = currentDate
	s.mu.Unlock()

	s.Sweep(ctx)
}

// Sweep flags expiring batches for every tenant immediately.
func (s *ExpirySweeper) Sweep(ctx context.Context) {
	tenantIDs, err := s.tenants.ActiveTenantIDs(ctx)
	if err != nil {
		s.logger.Error("Expiry sweep could not list tenants", zap.Error(err))
		return
	}

	horizonDays := int(s.config.AlertWindow / (24 * time.Hour))
	if horizonDays < 1 {
		horizonDays = 1
	}

	flagged := 0
	for _, tenantID := range tenantIDs {
		batches, err := s.inventory.ListExpiring(ctx, tenantID, horizonDays, shared.DefaultFilter())
		if err != nil {
			s.logger.Error("Expiry sweep failed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}

		for _, batch := range batches {
			if batch.ExpiryDate == nil {
				continue
			}
			flagged++
			_ = s.notifier.Notify(ctx, notification.Message{
				Topic:    notification.TopicBatchExpiring,
				TenantID: tenantID.String(),
				Title:    "Batch expiring: " + batch.BatchNumber,
				Body: "Batch " + batch.BatchNumber + " expires " +
					batch.ExpiryDate.Format("2006-01-02") + " with " +
					batch.Quantity.String() + " on hand",
				Metadata: map[string]string{
					"batch_id":     batch.ID.String(),
					"product_id":   batch.ProductID.String(),
					"location_id":  batch.LocationID.String(),
					"expiry_date":  batch.ExpiryDate.Format(time.RFC3339),
					"horizon_days": strconv.Itoa(horizonDays),
				},
			})
		}
	}

	s.logger.Info("Expiry sweep completed",
		zap.Int("tenants", len(tenantIDs)),
		zap.Int("batches_flagged", flagged),
	)
}
