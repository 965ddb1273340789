package workshop

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"github.com/teddinata/odoo-pitcar-sub000/generic"
	"golang.org/x/sync/errgroup"
)

// =============================================================================
// FACT BUNDLE - Immutable per-scope snapshot
// =============================================================================

// FactBundle holds every fact collection for one scope and period. It is
// built once, never modified, and read concurrently by all calculators.
// Accessors return copies of the top-level slices.
type FactBundle struct {
	scope  Scope
	period generic.Period

	orders        []OrderFact
	attendance    []AttendanceFact
	leadSamples   []SampleFact
	kaizenSamples []SampleFact
	inventory     []AuditFact
	tools         []AuditFact
	training      []TrainingFact
}

func (b *FactBundle) Scope() Scope            { return b.scope }
func (b *FactBundle) Period() generic.Period  { return b.period }
func (b *FactBundle) Orders() []OrderFact     { return append([]OrderFact(nil), b.orders...) }
func (b *FactBundle) Attendance() []AttendanceFact {
	return append([]AttendanceFact(nil), b.attendance...)
}

// Samples returns the compliance samples taken by source.
func (b *FactBundle) Samples(source SampleSource) []SampleFact {
	if source == SourceKaizen {
		return append([]SampleFact(nil), b.kaizenSamples...)
	}
	return append([]SampleFact(nil), b.leadSamples...)
}

// Audits returns the audits of the given type.
func (b *FactBundle) Audits(t AuditType) []AuditFact {
	if t == AuditTool {
		return append([]AuditFact(nil), b.tools...)
	}
	return append([]AuditFact(nil), b.inventory...)
}

// Training returns the training invitations of the scope's members.
func (b *FactBundle) Training() []TrainingFact {
	return append([]TrainingFact(nil), b.training...)
}

// LoadBundle issues each fact query once for the whole scope, in parallel,
// and deduplicates the results by ID. An order co-assigned to several
// members of a team is therefore present once. Any failure aborts the load
// with a FactProviderError.
func LoadBundle(ctx context.Context, provider FactProvider, scope Scope, period generic.Period) (*FactBundle, error) {
	b := &FactBundle{scope: scope, period: period}
	key := scope.Key()

	g, gCtx := errgroup.WithContext(ctx)
	wrap := func(query string, err error) error {
		if err == nil {
			return nil
		}
		return &generic.FactProviderError{Query: query, ScopeID: key, Err: err}
	}

	g.Go(func() error {
		orders, err := provider.Orders(gCtx, scope, period)
		b.orders = dedupe(orders, func(o OrderFact) string { return o.ID })
		return wrap("orders", err)
	})
	g.Go(func() error {
		att, err := provider.Attendance(gCtx, scope, period)
		b.attendance = dedupe(att, func(a AttendanceFact) string { return a.ID })
		return wrap("attendance", err)
	})
	g.Go(func() error {
		s, err := provider.ComplianceSamples(gCtx, scope, period, SourceLead)
		b.leadSamples = dedupe(s, func(s SampleFact) string { return s.ID })
		return wrap("compliance_samples_lead", err)
	})
	g.Go(func() error {
		s, err := provider.ComplianceSamples(gCtx, scope, period, SourceKaizen)
		b.kaizenSamples = dedupe(s, func(s SampleFact) string { return s.ID })
		return wrap("compliance_samples_kaizen", err)
	})
	g.Go(func() error {
		a, err := provider.Audits(gCtx, scope, period, AuditInventory)
		b.inventory = dedupe(a, func(a AuditFact) string { return a.ID })
		return wrap("audits_inventory", err)
	})
	g.Go(func() error {
		a, err := provider.Audits(gCtx, scope, period, AuditTool)
		b.tools = dedupe(a, func(a AuditFact) string { return a.ID })
		return wrap("audits_tool", err)
	})
	g.Go(func() error {
		t, err := provider.TrainingAttendance(gCtx, period)
		var mine []TrainingFact
		for _, f := range t {
			if scope.HasEmployee(f.EmployeeID) {
				mine = append(mine, f)
			}
		}
		b.training = dedupe(mine, func(t TrainingFact) string { return t.ID })
		return wrap("training_attendance", err)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}

// dedupe keeps the first fact per ID, preserving order. Facts without an ID
// are kept as-is.
func dedupe[T any](facts []T, id func(T) string) []T {
	if len(facts) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(facts))
	out := make([]T, 0, len(facts))
	for _, f := range facts {
		k := id(f)
		if k != "" {
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		out = append(out, f)
	}
	return out
}

// =============================================================================
// SESSION - Request-level memo of bundles
// =============================================================================

// Session memoizes bundles by (scope key, period) for one request so metrics
// sharing a scope share one fetch. Concurrent callers for the same key wait
// for the single in-flight load.
type Session struct {
	provider FactProvider
	logger   zerolog.Logger

	mu      sync.Mutex
	entries map[string]*sessionEntry
}

type sessionEntry struct {
	once   sync.Once
	bundle *FactBundle
	err    error
}

func NewSession(provider FactProvider, logger zerolog.Logger) *Session {
	return &Session{
		provider: provider,
		logger:   logger,
		entries:  make(map[string]*sessionEntry),
	}
}

// Bundle returns the memoized bundle for scope and period, loading it once.
func (s *Session) Bundle(ctx context.Context, scope Scope, period generic.Period) (*FactBundle, error) {
	key := scope.Key() + "@" + period.String()

	s.mu.Lock()
	entry, ok := s.entries[key]
	if !ok {
		entry = &sessionEntry{}
		s.entries[key] = entry
	}
	s.mu.Unlock()

	entry.once.Do(func() {
		entry.bundle, entry.err = LoadBundle(ctx, s.provider, scope, period)
		if entry.err == nil {
			s.logger.Debug().
				Str("scope", scope.Key()).
				Str("period", period.String()).
				Int("orders", len(entry.bundle.orders)).
				Int("attendance", len(entry.bundle.attendance)).
				Msg("fact bundle loaded")
		}
	})
	return entry.bundle, entry.err
}

// Loaded returns how many distinct bundles the session holds.
func (s *Session) Loaded() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
