package service

import (
	"context"
	"errors"
	"time"

	trm "github.com/avito-tech/go-transaction-manager/trm/v2"

	"trouvemamission-service/internal/config"
	"trouvemamission-service/internal/domain"
	"trouvemamission-service/internal/infrastructure/nower"
	"trouvemamission-service/internal/infrastructure/randomizer"
	"trouvemamission-service/internal/metrics"
	"trouvemamission-service/internal/repository"
)

const (
	// DefaultOperationTimeout таймаут по умолчанию для обычных операций
	DefaultOperationTimeout = 30 * time.Second
	// DefaultLongOperationTimeout таймаут по умолчанию для длительных операций
	DefaultLongOperationTimeout = 60 * time.Second

	defaultCreateAttempts = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
	topSkillsLimit        = 5
)

// Repository описывает операции, которые требуются сервису.
type Repository interface {
	repository.Repository
}

// Service агрегирует бизнес-логику назначений, сотрудников и проектов.
type Service struct {
	repo       Repository
	health     repository.HealthChecker
	cfg        config.Config
	trMgr      trm.Manager
	randomizer randomizer.Randomizer
	nower      nower.Nower
}

func New(repo Repository, cfg config.Config, trMgr trm.Manager, randomizer randomizer.Randomizer, nower nower.Nower) *Service {
	svc := &Service{
		repo:       repo,
		cfg:        cfg,
		trMgr:      trMgr,
		randomizer: randomizer,
		nower:      nower,
	}
	if svc.cfg.Timeouts.Operation <= 0 {
		svc.cfg.Timeouts.Operation = DefaultOperationTimeout
	}
	if svc.cfg.Timeouts.LongOperation <= 0 {
		svc.cfg.Timeouts.LongOperation = DefaultLongOperationTimeout
	}
	if svc.cfg.Assignments.CreateAttempts <= 0 {
		svc.cfg.Assignments.CreateAttempts = defaultCreateAttempts
	}
	if svc.cfg.Assignments.RetryBaseDelay <= 0 {
		svc.cfg.Assignments.RetryBaseDelay = defaultRetryBaseDelay
	}
	if checker, ok := repo.(repository.HealthChecker); ok {
		svc.health = checker
	}
	return svc
}

// HealthCheck возвращает состояние зависимостей сервиса.
func (s *Service) HealthCheck(ctx context.Context) error {
	if s.health == nil {
		return nil
	}
	ctx, cancel := s.shortOperationContext(ctx)
	defer cancel()
	return s.health.Ping(ctx)
}

// shortOperationContext создаёт контекст с таймаутом для обычных операций.
func (s *Service) shortOperationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Timeouts.Operation)
}

// longOperationContext создаёт контекст с таймаутом для длительных операций.
func (s *Service) longOperationContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.Timeouts.LongOperation)
}

// withRetry повторяет fn при конфликте параллельных транзакций.
// Пауза растёт экспоненциально от RetryBaseDelay, к ней добавляется случайный разброс.
func (s *Service) withRetry(ctx context.Context, fn func(context.Context) error) error {
	attempts := s.cfg.Assignments.CreateAttempts
	for attempt := 1; ; attempt++ {
		err := fn(ctx)
		if !errors.Is(err, domain.ErrConcurrencyConflict) {
			return err
		}
		metrics.IncConcurrencyConflicts()
		if attempt >= attempts {
			return err
		}
		timer := time.NewTimer(s.backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}

func (s *Service) backoff(attempt int) time.Duration {
	base := s.cfg.Assignments.RetryBaseDelay << (attempt - 1)
	return base + time.Duration(s.randomizer.Int63n(int64(base)))
}

// statsWindow вычисляет границы окон статистики от текущего момента.
func (s *Service) statsWindow() repository.StatsWindow {
	now := s.nower.Now()
	return repository.StatsWindow{
		Now:          now,
		RecentSince:  now.Add(-s.cfg.Assignments.RecentWindow),
		EndingBefore: now.Add(s.cfg.Assignments.EndingSoonWindow),
	}
}
