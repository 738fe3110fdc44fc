package flightstatus

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Abraxas-365/skyport/flight"
	"github.com/robfig/cron/v3"
)

// DefaultSchedule recalcula los estados una vez por minuto
const DefaultSchedule = "@every 60s"

// TickResult resume una pasada del scheduler
type TickResult struct {
	Scanned  int
	Updated  int
	Failed   int
	Skipped  bool
	Duration time.Duration
}

// Scheduler recalcula periódicamente el estado de todos los vuelos de todos los
// tenants y persiste solo los que cambian. Una pasada que empieza mientras otra
// sigue corriendo se salta.
type Scheduler struct {
	fleet    flight.FleetStatusRepository
	schedule string
	location *time.Location
	now      func() time.Time

	busy atomic.Bool

	mu   sync.Mutex
	cron *cron.Cron
}

// Option personaliza el Scheduler
type Option func(*Scheduler)

// WithClock reemplaza el reloj usado en cada pasada
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithLocation define la zona horaria de las horas de los vuelos
func WithLocation(loc *time.Location) Option {
	return func(s *Scheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// NewScheduler crea el scheduler. schedule acepta la sintaxis de robfig/cron,
// incluyendo descriptores como "@every 60s"; vacío usa DefaultSchedule.
func NewScheduler(fleet flight.FleetStatusRepository, schedule string, opts ...Option) (*Scheduler, error) {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("invalid flight status schedule %q: %w", schedule, err)
	}

	s := &Scheduler{
		fleet:    fleet,
		schedule: schedule,
		location: time.UTC,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Start programa las pasadas periódicas. Llamarlo dos veces no hace nada.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		log.Println("⚠️  Flight status scheduler already running")
		return nil
	}

	c := cron.New(
		cron.WithLocation(s.location),
		cron.WithChain(
			cron.Recover(cron.DefaultLogger),
			cron.SkipIfStillRunning(cron.DefaultLogger),
		),
	)
	if _, err := c.AddFunc(s.schedule, func() { s.Tick(context.Background()) }); err != nil {
		return fmt.Errorf("failed to schedule flight status job: %w", err)
	}

	c.Start()
	s.cron = c
	log.Printf("⏰ Flight status scheduler started (%s, %s)", s.schedule, s.location)
	return nil
}

// Stop detiene el scheduler y espera la pasada en curso o hasta que ctx expire
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.mu.Unlock()

	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		log.Println("⏹️  Flight status scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning indica si las pasadas periódicas están programadas
func (s *Scheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cron != nil
}

// Tick ejecuta una pasada completa sobre la flota. Si ya hay una en curso
// retorna de inmediato con Skipped en true.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	if !s.busy.CompareAndSwap(false, true) {
		log.Println("⏭️  Flight status tick skipped: previous tick still running")
		return TickResult{Skipped: true}
	}
	defer s.busy.Store(false)

	started := time.Now()
	result := s.refresh(ctx)
	result.Duration = time.Since(started)

	if result.Updated > 0 || result.Failed > 0 {
		log.Printf("✈️  Flight status tick: scanned=%d updated=%d failed=%d in %v",
			result.Scanned, result.Updated, result.Failed, result.Duration)
	}
	return result
}

func (s *Scheduler) refresh(ctx context.Context) TickResult {
	var result TickResult

	flights, err := s.fleet.FindAll(ctx)
	if err != nil {
		log.Printf("❌ Failed to load flights for status refresh: %v", err)
		result.Failed++
		return result
	}

	now := s.now()
	for _, f := range flights {
		if ctx.Err() != nil {
			break
		}
		result.Scanned++

		status := f.DeriveStatus(now, s.location)
		if status == f.Status {
			continue
		}

		if err := s.fleet.UpdateStatus(ctx, f.ID, f.TenantID, status, now); err != nil {
			log.Printf("❌ Failed to update status of flight %s (tenant %s): %v", f.ID, f.TenantID, err)
			result.Failed++
			continue
		}
		result.Updated++
	}

	return result
}
