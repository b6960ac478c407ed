// Package correct implements the Self-Correction Router (component C9):
// for verification failures the deterministic classifier in internal/verify
// could not classify, escalate through a tiered ladder of external
// reasoning services, stopping at first success, gated by a shared token
// budget and (for the top tier) human approval. Grounded on the teacher's
// internal/recovery/classify.go (deterministic-first classification before
// anything external is consulted) and internal/pipeline/router.go
// (priority-ordered rule ladder, evaluated in order, falling through on no
// match); the budget ledger is grounded on internal/relay's token-threshold
// accounting pattern.
package correct

import (
	"context"
	"errors"

	"github.com/MatthewHRockwell/atomik-sub001/internal/checkpoint"
	"github.com/MatthewHRockwell/atomik-sub001/internal/namespace"
	"github.com/MatthewHRockwell/atomik-sub001/internal/verify"
)

// Tier names one rung of the reasoning-service ladder, in escalation
// order.
type Tier string

const (
	TierLow  Tier = "low"
	TierMid  Tier = "mid"
	TierHigh Tier = "high"
)

// ErrBudgetExceeded aborts the router cleanly: no partial state is
// committed, the caller gets the ledger as it stood before the call that
// would have exceeded it.
var ErrBudgetExceeded = errors.New("correct: token budget exceeded")

// ErrCancelled is returned when the Controller's cancellation signal
// arrives mid-escalation; any in-flight call is abandoned and the ledger
// is returned as it stood at the last completed rung.
var ErrCancelled = errors.New("correct: cancelled")

// Request is one unclassified verification failure to route.
type Request struct {
	Target     namespace.Target
	Class      verify.FailureClass
	ToolOutput string
	SchemaJSON []byte
}

// Caller is an external reasoning-service client for one tier. A real
// implementation wraps an HTTP/gRPC call; tests substitute a stub.
type Caller func(ctx context.Context, tier Tier, req Request) (patch string, tokensUsed int, err error)

// Rung is one ladder step: a tier, its caller, and its allowances.
type Rung struct {
	Tier            Tier
	Call            Caller
	PerCallCap      int // 0 means unbounded per call
	RequireApproval bool
}

// Approver gates the high tier on human confirmation, grounded on the
// teacher's huh-based confirmation prompt pattern.
type Approver func(req Request) bool

// Router drives the ladder for one request at a time, spending from a
// shared checkpoint.TokenLedger as it escalates.
type Router struct {
	ladder  []Rung
	approve Approver
	ledger  checkpoint.TokenLedger
}

// NewRouter returns a Router with the standard low→mid→high ladder. The
// high tier requires approval; callers needing a different ladder (e.g.
// tests) can construct Router{} directly with a custom ladder.
func NewRouter(ledger checkpoint.TokenLedger, low, mid, high Caller, approve Approver) *Router {
	return &Router{
		ledger:  ledger,
		approve: approve,
		ladder: []Rung{
			{Tier: TierLow, Call: low},
			{Tier: TierMid, Call: mid},
			{Tier: TierHigh, Call: high, RequireApproval: true},
		},
	}
}

// Outcome is the result of routing one request through the ladder.
type Outcome struct {
	Patched bool
	Tier    Tier
	Ledger  checkpoint.TokenLedger
}

// Route walks the ladder in order, stopping at the first successful
// patch. A rung is skipped (not failed) if it requires approval and the
// approver declines. Budget exhaustion aborts the whole call with
// ErrBudgetExceeded: the returned Outcome carries the ledger as it stood
// before the attempted rung, and the router's own ledger is left as it was
// before Route was called; a cancelled context aborts with ErrCancelled and the ledger as
// it stood after the last completed rung.
func (r *Router) Route(ctx context.Context, req Request) (Outcome, error) {
	ledger := r.ledger
	for _, rung := range r.ladder {
		if err := ctx.Err(); err != nil {
			r.ledger = ledger
			return Outcome{Ledger: ledger}, ErrCancelled
		}

		if rung.RequireApproval && (r.approve == nil || !r.approve(req)) {
			continue
		}
		if rung.Call == nil {
			continue
		}

		if ledger.Remaining() <= 0 {
			return Outcome{Ledger: ledger}, ErrBudgetExceeded
		}

		patch, tokensUsed, err := rung.Call(ctx, rung.Tier, req)
		if err != nil {
			continue
		}
		if rung.PerCallCap > 0 && tokensUsed > rung.PerCallCap {
			continue
		}

		newLedger, capErr := spend(ledger, rung.Tier, tokensUsed)
		if capErr != nil {
			return Outcome{Ledger: ledger}, ErrBudgetExceeded
		}
		ledger = newLedger

		if patch != "" {
			r.ledger = ledger
			return Outcome{Patched: true, Tier: rung.Tier, Ledger: ledger}, nil
		}
	}

	r.ledger = ledger
	return Outcome{Ledger: ledger}, nil
}

// Ledger returns the router's current token ledger.
func (r *Router) Ledger() checkpoint.TokenLedger { return r.ledger }

// spend applies a call's token usage to the ledger's running totals,
// rejecting the spend entirely (not partially) if it would exceed the
// cap.
func spend(ledger checkpoint.TokenLedger, tier Tier, tokensUsed int) (checkpoint.TokenLedger, error) {
	if ledger.Cap > 0 && ledger.Spent+tokensUsed > ledger.Cap {
		return ledger, ErrBudgetExceeded
	}
	ledger.Spent += tokensUsed
	switch tier {
	case TierLow:
		ledger.LowTier += tokensUsed
	case TierMid:
		ledger.MidTier += tokensUsed
	case TierHigh:
		ledger.HighTier += tokensUsed
	}
	return ledger, nil
}
