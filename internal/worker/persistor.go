package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"weathercover/internal/models"
	"weathercover/internal/repository"
)

// Job is one unit of mirror work.
type Job func(ctx context.Context) error

// Persistor mirrors engine state changes to PostgreSQL from a single
// background goroutine. The engine never waits on the database: services
// enqueue after the in-memory mutation commits, and a full queue drops
// the job rather than block the request path. Restore-on-boot reads the
// mirror back, so a dropped job at worst loses the tail of history on a
// crash.
type Persistor struct {
	jobChan chan Job

	policies  *repository.PolicyRepository
	readings  *repository.ReadingRepository
	positions *repository.PositionRepository
	proposals *repository.ProposalRepository
	pool      *repository.PoolRepository
	payouts   *repository.PayoutRepository

	jobsDropped int64
	mu          sync.Mutex
}

// NewPersistor creates a persistor with the given queue size.
func NewPersistor(queueSize int, policies *repository.PolicyRepository, readings *repository.ReadingRepository, positions *repository.PositionRepository, proposals *repository.ProposalRepository, pool *repository.PoolRepository, payouts *repository.PayoutRepository) *Persistor {
	return &Persistor{
		jobChan:   make(chan Job, queueSize),
		policies:  policies,
		readings:  readings,
		positions: positions,
		proposals: proposals,
		pool:      pool,
		payouts:   payouts,
	}
}

// Start drains the job channel until ctx is canceled, then finishes the
// queued jobs and exits.
func (p *Persistor) Start(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	slog.Info("persistor started")

	for {
		select {
		case job := <-p.jobChan:
			p.safeExecution(ctx, job)
		case <-ctx.Done():
			// Drain whatever is already queued before exiting.
			for {
				select {
				case job := <-p.jobChan:
					p.safeExecution(context.Background(), job)
				default:
					slog.Info("persistor stopped")
					return
				}
			}
		}
	}
}

func (p *Persistor) safeExecution(ctx context.Context, job Job) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic recovered in persistor job", "panic", r)
		}
	}()

	jobCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := job(jobCtx); err != nil {
		slog.Error("persistor job failed", "error", err)
	}
}

func (p *Persistor) submit(job Job) {
	select {
	case p.jobChan <- job:
	default:
		p.mu.Lock()
		p.jobsDropped++
		dropped := p.jobsDropped
		p.mu.Unlock()
		slog.Warn("persistor queue full, dropping job", "total_dropped", dropped)
	}
}

// SavePolicy mirrors a policy row.
func (p *Persistor) SavePolicy(policy models.Policy) {
	p.submit(func(ctx context.Context) error {
		return p.policies.Upsert(&policy)
	})
}

// SaveReading mirrors the latest reading for a location.
func (p *Persistor) SaveReading(reading models.WeatherReading) {
	p.submit(func(ctx context.Context) error {
		return p.readings.Upsert(&reading)
	})
}

// SavePosition mirrors an LP position.
func (p *Persistor) SavePosition(position models.LPPosition) {
	p.submit(func(ctx context.Context) error {
		return p.positions.Upsert(&position)
	})
}

// SaveProposal mirrors a proposal and its voter set.
func (p *Persistor) SaveProposal(proposal models.Proposal, voters []string) {
	p.submit(func(ctx context.Context) error {
		return p.proposals.Upsert(&proposal, voters)
	})
}

// SavePoolState mirrors the aggregate pool row.
func (p *Persistor) SavePoolState(state repository.PoolState) {
	p.submit(func(ctx context.Context) error {
		return p.pool.Save(&state)
	})
}

// RecordPayout appends a journal entry for funds leaving the pool.
func (p *Persistor) RecordPayout(payout models.Payout) {
	p.submit(func(ctx context.Context) error {
		return p.payouts.Create(&payout)
	})
}
