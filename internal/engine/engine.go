package engine

import (
	"sync"
	"time"

	"weathercover/internal/models"

	"github.com/jonboulle/clockwork"
)

// Governance constants. Fixed in this design; only the parameters in
// models.Params are live-governable.
const (
	votingPeriod        = 72 * time.Hour
	quorumPercent       = 25
	cancelRefundPercent = 50
	minPolicyDuration   = 24 * time.Hour
	maxFeePercent       = 50
)

// Engine is the single consistency boundary for all insurance state:
// the policy ledger, latest readings, pool accounting, and governance.
// Every mutating operation takes the write lock, so externally visible
// operations are atomic with respect to each other; pool-level counters
// are touched by purchase, claim, deposit, and withdraw on unrelated
// policies, which is why the lock is engine-wide rather than per record.
// Read-only queries take the read lock and return copies.
type Engine struct {
	mu    sync.RWMutex
	clock clockwork.Clock

	owner         string
	dataAuthority string

	params models.Params

	policies     map[uint64]*models.Policy
	holderIndex  map[string][]uint64
	nextPolicyID uint64

	readings map[string]models.WeatherReading

	positions map[string]*models.LPPosition

	totalLiquidity float64
	totalShares    float64
	reservedFunds  float64
	protocolFees   float64
	// unattributedPremium holds net premium collected while the pool had
	// no shareholders. It is credited to totalLiquidity on the first
	// deposit and counts toward purchase capacity in the meantime.
	unattributedPremium    float64
	totalPremiumsCollected float64
	totalPayouts           float64
	activePolicies         int

	proposals      map[uint64]*models.Proposal
	voted          map[uint64]map[string]bool
	nextProposalID uint64
}

// Config carries the initial engine configuration.
type Config struct {
	Owner  string
	Params models.Params
	// Clock is the time source. Nil means the real clock; tests inject a
	// fake for deterministic windows and deadlines.
	Clock clockwork.Clock
}

// New creates an engine with empty state. The data authority starts equal
// to the owner and can be reassigned with SetDataAuthority.
func New(cfg Config) *Engine {
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Engine{
		clock:          clock,
		owner:          cfg.Owner,
		dataAuthority:  cfg.Owner,
		params:         cfg.Params,
		policies:       make(map[uint64]*models.Policy),
		holderIndex:    make(map[string][]uint64),
		nextPolicyID:   1,
		readings:       make(map[string]models.WeatherReading),
		positions:      make(map[string]*models.LPPosition),
		proposals:      make(map[uint64]*models.Proposal),
		voted:          make(map[uint64]map[string]bool),
		nextProposalID: 1,
	}
}

// isAuthority reports whether the caller may push readings or process
// claims: the data authority or the owner.
func (e *Engine) isAuthority(caller string) bool {
	return caller != "" && (caller == e.dataAuthority || caller == e.owner)
}

// SetDataAuthority reassigns the data-authority identity. Owner only.
func (e *Engine) SetDataAuthority(caller, authority string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.owner {
		return ErrUnauthorized
	}
	if authority == "" {
		return ErrInvalidInput
	}
	e.dataAuthority = authority
	return nil
}

// Owner returns the owner identity fixed at construction.
func (e *Engine) Owner() string {
	return e.owner
}

// DataAuthority returns the current data-authority identity.
func (e *Engine) DataAuthority() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dataAuthority
}

// Params returns the live governable parameters.
func (e *Engine) Params() models.Params {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.params
}

// availableCapacity is the capital the pool can still commit to new
// coverage: tracked liquidity not reserved for active policies, plus
// premium collected before the first LP deposit. Callers hold the lock.
func (e *Engine) availableCapacity() float64 {
	return e.totalLiquidity - e.reservedFunds + e.unattributedPremium
}

// poolBalance is the total capital on hand, reserved or not. Callers
// hold the lock.
func (e *Engine) poolBalance() float64 {
	return e.totalLiquidity + e.unattributedPremium
}

// debitPool removes amount from pool capital, draining tracked liquidity
// first and the unattributed remainder second, floored at zero. Callers
// hold the lock.
func (e *Engine) debitPool(amount float64) {
	if amount <= e.totalLiquidity {
		e.totalLiquidity -= amount
		return
	}
	remainder := amount - e.totalLiquidity
	e.totalLiquidity = 0
	e.unattributedPremium -= remainder
	if e.unattributedPremium < 0 {
		e.unattributedPremium = 0
	}
}

// Stats returns a consistent snapshot of the pool-level counters.
func (e *Engine) Stats() models.PoolStats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.statsLocked()
}

func (e *Engine) statsLocked() models.PoolStats {
	stats := models.PoolStats{
		TotalLiquidity:         e.totalLiquidity,
		TotalShares:            e.totalShares,
		ReservedFunds:          e.reservedFunds,
		ProtocolFees:           e.protocolFees,
		UnattributedPremium:    e.unattributedPremium,
		TotalPremiumsCollected: e.totalPremiumsCollected,
		TotalPayouts:           e.totalPayouts,
		ActivePolicies:         e.activePolicies,
	}
	if e.totalShares > 0 {
		stats.SharePrice = e.totalLiquidity / e.totalShares
	}
	return stats
}

// Snapshot is a full copy of engine state, used by the persistence mirror
// and for restore at startup.
type Snapshot struct {
	Policies  []models.Policy
	Readings  []models.WeatherReading
	Positions []models.LPPosition
	Proposals []models.Proposal
	Voters    map[uint64][]string
	Pool      models.PoolStats
	Params    models.Params
	Authority string
}

// Snapshot exports a copy of the full engine state.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Snapshot{
		Pool:      e.statsLocked(),
		Params:    e.params,
		Authority: e.dataAuthority,
		Voters:    make(map[uint64][]string, len(e.voted)),
	}
	for _, p := range e.policies {
		s.Policies = append(s.Policies, *p)
	}
	for _, r := range e.readings {
		s.Readings = append(s.Readings, r)
	}
	for _, pos := range e.positions {
		s.Positions = append(s.Positions, *pos)
	}
	for _, pr := range e.proposals {
		s.Proposals = append(s.Proposals, *pr)
	}
	for id, voters := range e.voted {
		for voter := range voters {
			s.Voters[id] = append(s.Voters[id], voter)
		}
	}
	return s
}

// Restore replaces engine state with a previously persisted snapshot.
// Counters that are derivable (holder index, active count, next ids) are
// rebuilt rather than trusted.
func (e *Engine) Restore(s Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.policies = make(map[uint64]*models.Policy, len(s.Policies))
	e.holderIndex = make(map[string][]uint64)
	e.activePolicies = 0
	e.nextPolicyID = 1
	for i := range s.Policies {
		p := s.Policies[i]
		e.policies[p.ID] = &p
		e.holderIndex[p.Holder] = append(e.holderIndex[p.Holder], p.ID)
		if p.Status == models.PolicyActive {
			e.activePolicies++
		}
		if p.ID >= e.nextPolicyID {
			e.nextPolicyID = p.ID + 1
		}
	}

	e.readings = make(map[string]models.WeatherReading, len(s.Readings))
	for _, r := range s.Readings {
		e.readings[r.Location] = r
	}

	e.positions = make(map[string]*models.LPPosition, len(s.Positions))
	for i := range s.Positions {
		pos := s.Positions[i]
		e.positions[pos.Provider] = &pos
	}

	e.proposals = make(map[uint64]*models.Proposal, len(s.Proposals))
	e.voted = make(map[uint64]map[string]bool)
	e.nextProposalID = 1
	for i := range s.Proposals {
		pr := s.Proposals[i]
		e.proposals[pr.ID] = &pr
		if pr.ID >= e.nextProposalID {
			e.nextProposalID = pr.ID + 1
		}
	}
	for id, voters := range s.Voters {
		set := make(map[string]bool, len(voters))
		for _, voter := range voters {
			set[voter] = true
		}
		e.voted[id] = set
	}

	e.totalLiquidity = s.Pool.TotalLiquidity
	e.totalShares = s.Pool.TotalShares
	e.reservedFunds = s.Pool.ReservedFunds
	e.protocolFees = s.Pool.ProtocolFees
	e.unattributedPremium = s.Pool.UnattributedPremium
	e.totalPremiumsCollected = s.Pool.TotalPremiumsCollected
	e.totalPayouts = s.Pool.TotalPayouts

	if s.Params.PolicyDuration > 0 {
		e.params = s.Params
	}
	if s.Authority != "" {
		e.dataAuthority = s.Authority
	}
}
