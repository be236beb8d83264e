package migrate

import (
	"context"
	"fmt"

	dserrors "github.com/systmms/vaultmig/internal/errors"
	"github.com/systmms/vaultmig/internal/logging"
	"github.com/systmms/vaultmig/pkg/secretstore"
)

// PlanEntry maps one source secret to its destination. Values carries
// the value-map read during planning, used for dry-run reporting.
type PlanEntry struct {
	Source      string
	Destination string
	Values      map[string]string
}

// Plan is the full migration mapping, built once per invocation and
// immutable afterwards. Entry order is insertion order and is the
// execution order.
type Plan struct {
	Entries []PlanEntry
	index   map[string]int
}

// Len returns the number of planned moves.
func (p *Plan) Len() int {
	return len(p.Entries)
}

func (p *Plan) add(entry PlanEntry, logger *logging.Logger) {
	if p.index == nil {
		p.index = make(map[string]int)
	}
	if i, dup := p.index[entry.Source]; dup {
		// Unreachable once ValidateSchemes passed; last write wins.
		logger.Warn("source %s planned twice, keeping destination %s", entry.Source, entry.Destination)
		p.Entries[i] = entry
		return
	}
	p.index[entry.Source] = len(p.Entries)
	p.Entries = append(p.Entries, entry)
}

// Planner builds migration plans. Planning is pure read-and-compute;
// no mutating store call is issued.
type Planner struct {
	walker  *Walker
	logger  *logging.Logger
	metrics *Metrics
}

// NewPlanner creates a planner over store.
func NewPlanner(store secretstore.Store, logger *logging.Logger, metrics *Metrics) *Planner {
	return &Planner{
		walker:  NewWalker(store, logger),
		logger:  logger,
		metrics: metrics,
	}
}

// Plan walks every scheme's source tree in order and resolves each
// discovered secret to its destination. Scheme roots are validated for
// overlap first; any walk failure discards the partial plan.
func (p *Planner) Plan(ctx context.Context, schemes []Scheme) (*Plan, error) {
	if err := ValidateSchemes(schemes); err != nil {
		return nil, err
	}

	plan := &Plan{}
	for _, scheme := range schemes {
		err := p.walker.Walk(ctx, scheme.From, func(sec secretstore.Secret) error {
			destination, err := scheme.Resolve(sec)
			if err != nil {
				return err
			}
			p.logger.Debug("planned %s -> %s", sec.FullPath(), destination)
			plan.add(PlanEntry{
				Source:      sec.FullPath(),
				Destination: destination,
				Values:      sec.Values,
			}, p.logger)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("planning scheme %s -> %s: %w", scheme.From, scheme.To, err)
		}
	}

	p.metrics.RecordPlanned(plan.Len())
	return plan, nil
}

// ValidateSchemes rejects scheme lists whose source roots overlap:
// when one scheme's from equals or segment-wise contains another's,
// the same secret would be planned twice with an undefined winner.
func ValidateSchemes(schemes []Scheme) error {
	for i, a := range schemes {
		if secretstore.CleanPath(a.From) == "" {
			return dserrors.ConfigError{
				Field:   fmt.Sprintf("schemes[%d].from", i),
				Message: "source path must not be empty",
			}
		}
		if secretstore.CleanPath(a.To) == "" {
			return dserrors.ConfigError{
				Field:   fmt.Sprintf("schemes[%d].to", i),
				Message: "destination path must not be empty",
			}
		}
		for j := i + 1; j < len(schemes); j++ {
			b := schemes[j]
			if secretstore.HasPathPrefix(a.From, b.From) || secretstore.HasPathPrefix(b.From, a.From) {
				return dserrors.ConfigError{
					Field:      "schemes",
					Value:      fmt.Sprintf("%s, %s", a.From, b.From),
					Message:    "scheme source paths overlap",
					Suggestion: "Each scheme's 'from' must root a disjoint subtree; split or merge the overlapping schemes",
				}
			}
		}
	}
	return nil
}
