// Package abtest implements deterministic A/B variant assignment: the same
// visitor always lands in the same variant of an experiment, across page
// loads, without any server-side coordination.
package abtest

import (
	"sync"

	"FTJ-Ads-Backend/internal/platform"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Experiment defines one A/B experiment: a list of variants and an optional
// weight vector. A missing or mismatched weight vector means uniform.
type Experiment struct {
	Name     string
	Variants []string
	Weights  []float64
}

// DefaultExperiments is the registry the site runs with.
var DefaultExperiments = []Experiment{
	{Name: "ad_layout", Variants: []string{"control", "compact", "expanded"}, Weights: []float64{0.6, 0.2, 0.2}},
	{Name: "sticky_delay", Variants: []string{"short", "long"}},
}

const (
	visitorIDKey       = "ftj_visitor_id"
	visitorIDBackupKey = "ftj_visitor_id_backup"
)

// Assigner resolves variants. The assignment is a pure function of
// (visitorID, experiment name, experiment table); the session cache only
// avoids recomputation and a later page load recomputes the same result.
type Assigner struct {
	mu          sync.Mutex
	experiments map[string]Experiment
	primary     platform.KeyValueStore
	secondary   platform.KeyValueStore
	log         *zap.Logger
	visitorID   string
	cache       map[string]string
}

// New creates an assigner over two redundant visitor-id stores (cookie-like
// and key-value in the original runtime) so the id survives either being
// cleared.
func New(primary, secondary platform.KeyValueStore, experiments []Experiment, log *zap.Logger) *Assigner {
	table := make(map[string]Experiment, len(experiments))
	for _, exp := range experiments {
		table[exp.Name] = exp
	}

	return &Assigner{
		experiments: table,
		primary:     primary,
		secondary:   secondary,
		log:         log,
		cache:       make(map[string]string),
	}
}

// VisitorID returns the stable per-visitor identifier, creating and
// persisting a new one to both stores if none exists yet.
func (a *Assigner) VisitorID() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.visitorIDLocked()
}

func (a *Assigner) visitorIDLocked() string {
	if a.visitorID != "" {
		return a.visitorID
	}

	if id, ok := a.primary.Get(visitorIDKey); ok && id != "" {
		a.visitorID = id
	} else if id, ok := a.secondary.Get(visitorIDBackupKey); ok && id != "" {
		a.visitorID = id
	} else {
		a.visitorID = uuid.NewString()
	}

	// Write through to both stores so either surviving is enough
	if err := a.primary.Set(visitorIDKey, a.visitorID); err != nil {
		a.log.Warn("failed to persist visitor id", zap.Error(err))
	}
	if err := a.secondary.Set(visitorIDBackupKey, a.visitorID); err != nil {
		a.log.Warn("failed to persist visitor id backup", zap.Error(err))
	}

	return a.visitorID
}

// GetVariant returns the variant for the current visitor, serving repeated
// calls from the session cache. An unknown experiment yields "" and a
// warning; it never fails a render path.
func (a *Assigner) GetVariant(experiment string) string {
	a.mu.Lock()
	defer a.mu.Unlock()

	if v, ok := a.cache[experiment]; ok {
		return v
	}

	exp, ok := a.experiments[experiment]
	if !ok {
		a.log.Warn("unknown experiment requested", zap.String("experiment", experiment))
		return ""
	}

	v := a.VariantFor(a.visitorIDLocked(), exp)
	a.cache[experiment] = v
	return v
}

// VariantFor computes the deterministic variant of exp for an arbitrary
// visitor id. It is side-effect free.
func (a *Assigner) VariantFor(visitorID string, exp Experiment) string {
	if len(exp.Variants) == 0 {
		return ""
	}

	point := bucketOf(visitorID + exp.Name)

	weights := exp.Weights
	if len(weights) != len(exp.Variants) {
		weights = nil
	}

	if weights == nil {
		idx := int(point * float64(len(exp.Variants)))
		if idx >= len(exp.Variants) {
			idx = len(exp.Variants) - 1
		}
		return exp.Variants[idx]
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return exp.Variants[len(exp.Variants)-1]
	}

	var cumulative float64
	for i, w := range weights {
		cumulative += w / total
		if point < cumulative {
			return exp.Variants[i]
		}
	}

	// Floating-point edge at the top of the range: last variant catches all
	return exp.Variants[len(exp.Variants)-1]
}

// ForceVariant overrides the cached assignment, for test harnesses.
func (a *Assigner) ForceVariant(experiment, variant string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache[experiment] = variant
}

// ClearCache drops all cached assignments. Deterministic recomputation
// yields the same variants as long as the visitor id is preserved.
func (a *Assigner) ClearCache() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cache = make(map[string]string)
}

// bucketOf hashes s with a multiplicative XOR rolling hash (FNV-1a) and
// normalizes the result into [0, 1).
func bucketOf(s string) float64 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)

	var h uint32 = offset32
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= prime32
	}

	return float64(h) / float64(1<<32)
}
