// Package coach defines the contract between the scheduler and an external
// study-coach adapter. The deterministic planner never depends on a coach
// being configured: when no adapter is wired, or the adapter fails, callers
// keep the plan they already have.
package coach

import (
	"context"
	"errors"

	"github.com/smartstudy/companion/internal/contract"
	"github.com/smartstudy/companion/internal/domain"
)

// ErrUnavailable is returned by adapters that are configured off.
var ErrUnavailable = errors.New("coach adapter unavailable")

// OptimizeInput is the full planning context handed to the adapter. The plan
// is the deterministic result; the adapter may reorder or annotate it but the
// day boundaries and total allocated minutes are not its to change.
type OptimizeInput struct {
	User     *domain.User
	Plan     *contract.WeeklyPlan
	Tasks    []*domain.Task
	Subjects []*domain.Subject
}

// OptimizeResult carries the adapter's (possibly adjusted) plan and a short
// human-readable explanation of what it changed and why.
type OptimizeResult struct {
	Plan        *contract.WeeklyPlan
	Explanation string
}

// Adapter is implemented by study-coach backends.
type Adapter interface {
	OptimizeWeeklyPlan(ctx context.Context, in OptimizeInput) (*OptimizeResult, error)
}

// NoopAdapter is the fallback when no coach is configured: it reports
// ErrUnavailable so callers take the deterministic path.
type NoopAdapter struct{}

func (NoopAdapter) OptimizeWeeklyPlan(context.Context, OptimizeInput) (*OptimizeResult, error) {
	return nil, ErrUnavailable
}
