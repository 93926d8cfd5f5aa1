package engine

import (
	"time"

	"weathercover/internal/models"

	"github.com/jonboulle/clockwork"
)

// ============================================================================
// TEST HELPERS
// ============================================================================

const (
	testOwner     = "owner-1"
	testAuthority = "oracle-1"
	testHolder    = "farmer-1"
	testProvider  = "lp-1"
	testLocation  = "10.762622,106.660172"
)

func newTestEngine() (*Engine, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClock()
	e := New(Config{
		Owner: testOwner,
		Params: models.Params{
			MinPremium:         0.01,
			PolicyDuration:     30 * 24 * time.Hour,
			ProtocolFeePercent: 10,
		},
		Clock: clock,
	})
	return e, clock
}

// newFundedEngine seeds the pool so purchases pass the capacity guard.
func newFundedEngine(deposit float64) (*Engine, *clockwork.FakeClock) {
	e, clock := newTestEngine()
	if _, err := e.Deposit(testProvider, deposit); err != nil {
		panic(err)
	}
	return e, clock
}
