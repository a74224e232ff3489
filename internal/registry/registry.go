// Package registry holds the namespace-scoped, atomically-published set of
// feature definitions evaluators read from. It adapts the pack's
// atomic-snapshot-pointer pattern (internal/snapshot) to the typed
// Configuration/FlagDefinition model, replacing ETag-keyed SSE broadcast
// with a bounded in-memory history log and a per-feature override table.
package registry

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/amichne/konditional/internal/flag"
	"github.com/amichne/konditional/internal/ids"
	"github.com/amichne/konditional/internal/observability"
)

// ConfigurationMetadata is the optional descriptive envelope carried by a
// Configuration: a human-assigned version tag and a snapshot id. The
// registry does not fill SnapshotId on publication; the id it mints is
// recorded in the matching HistoryEntry.
type ConfigurationMetadata struct {
	Version    string
	SnapshotId string
}

// Configuration is an immutable snapshot of every feature definition in a
// namespace. It is never mutated after construction; registry updates
// always build and publish a new Configuration.
type Configuration struct {
	Metadata ConfigurationMetadata
	features map[string]*flag.FlagDefinition
}

// NewConfiguration builds a Configuration owning a copy of features, keyed
// by FeatureId.
func NewConfiguration(metadata ConfigurationMetadata, features []*flag.FlagDefinition) *Configuration {
	m := make(map[string]*flag.FlagDefinition, len(features))
	for _, f := range features {
		m[f.FeatureId] = f
	}
	return &Configuration{Metadata: metadata, features: m}
}

// Feature implements engine.Source.
func (c *Configuration) Feature(featureId string) (*flag.FlagDefinition, bool) {
	if c == nil {
		return nil, false
	}
	d, ok := c.features[featureId]
	return d, ok
}

// FeatureIds returns every declared feature id, sorted for deterministic
// iteration (used by the canonical encoder and the CLI).
func (c *Configuration) FeatureIds() []string {
	out := make([]string, 0, len(c.features))
	for id := range c.features {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// ConfigurationPatch adds and/or removes features from a Configuration.
// Add and Remove should be disjoint. Neither ApplyTo nor internal/parse
// checks this; for an id present in both, ApplyTo keeps the Add entry.
type ConfigurationPatch struct {
	Add    map[string]*flag.FlagDefinition
	Remove map[string]struct{}
}

// ApplyTo returns a new Configuration built from base with the patch's
// removals applied first, then its additions (so Add wins over Remove for
// any id present in both, matching the left-to-right composition testable
// property).
func (p ConfigurationPatch) ApplyTo(base *Configuration, metadata ConfigurationMetadata) *Configuration {
	merged := make(map[string]*flag.FlagDefinition, len(base.features)+len(p.Add))
	for id, def := range base.features {
		if _, removed := p.Remove[id]; removed {
			continue
		}
		merged[id] = def
	}
	for id, def := range p.Add {
		merged[id] = def
	}
	return &Configuration{Metadata: metadata, features: merged}
}

// ConfigurationDiff reports the difference between two configurations: ids
// present only in the new one, ids present only in the old one, and ids
// present in both but with a different definition.
type ConfigurationDiff struct {
	Added   []string
	Removed []string
	Changed []string
}

// Diff computes the ConfigurationDiff from c (old) to other (new).
func (c *Configuration) Diff(other *Configuration) ConfigurationDiff {
	var d ConfigurationDiff
	for id := range other.features {
		if _, ok := c.features[id]; !ok {
			d.Added = append(d.Added, id)
		}
	}
	for id, oldDef := range c.features {
		newDef, ok := other.features[id]
		if !ok {
			d.Removed = append(d.Removed, id)
			continue
		}
		if !sameDefinition(oldDef, newDef) {
			d.Changed = append(d.Changed, id)
		}
	}
	sort.Strings(d.Added)
	sort.Strings(d.Removed)
	sort.Strings(d.Changed)
	return d
}

func sameDefinition(a, b *flag.FlagDefinition) bool {
	return a == b
}

// HistoryEntry is one published-configuration record in a Registry's bounded
// history log.
type HistoryEntry struct {
	SnapshotId string
	Metadata   ConfigurationMetadata
}

const defaultHistoryCapacity = 64

// Registry is a namespace-scoped, lock-free-for-readers container of the
// currently published Configuration, following the pack's atomic-pointer
// snapshot pattern (internal/snapshot.Load/Update) generalized from a single
// process-wide global to an instantiable value with its own override table
// and history log.
type Registry struct {
	current atomic.Pointer[Configuration]

	overrides sync.Map // featureId -> ids.Value

	historyMu  sync.Mutex
	history    []HistoryEntry
	historyCap int

	logger  observability.Logger
	metrics observability.MetricsSink
}

// Option configures a Registry at construction.
type Option func(*Registry)

// WithLogger overrides the registry's no-op default Logger.
func WithLogger(l observability.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithMetrics overrides the registry's no-op default MetricsSink.
func WithMetrics(m observability.MetricsSink) Option {
	return func(r *Registry) { r.metrics = m }
}

// WithHistoryCapacity bounds the registry's history log to n entries
// (oldest evicted first). The default is 64.
func WithHistoryCapacity(n int) Option {
	return func(r *Registry) { r.historyCap = n }
}

// New returns an empty Registry with no published Configuration. current()
// returns an empty Configuration until the first load.
func New(opts ...Option) *Registry {
	r := &Registry{
		logger:     observability.NopLogger{},
		metrics:    observability.NopMetricsSink{},
		historyCap: defaultHistoryCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.current.Store(NewConfiguration(ConfigurationMetadata{}, nil))
	return r
}

// Current returns the currently published Configuration via a single atomic
// pointer load. Callers observe a fully-formed, immutable snapshot: never a
// partially-constructed one.
func (r *Registry) Current() *Configuration {
	return r.current.Load()
}

// Feature implements engine.Source by reading the current snapshot.
func (r *Registry) Feature(featureId string) (*flag.FlagDefinition, bool) {
	return r.Current().Feature(featureId)
}

// Load atomically publishes c as the registry's current Configuration,
// replacing whatever was previously current, and clears every override.
// In-flight reads that already observed the old Configuration are
// unaffected; they simply finish against a snapshot that is no longer
// current.
func (r *Registry) Load(c *Configuration) {
	r.current.Store(c)
	r.overrides.Range(func(k, _ any) bool {
		r.overrides.Delete(k)
		return true
	})
	r.recordHistory(c)
	r.logger.Log(observability.LevelInfo, "registry: configuration published",
		observability.F("featureCount", len(c.features)),
		observability.F("version", c.Metadata.Version))
	r.metrics.Count("registry.load", nil)
}

// Update applies p to the current Configuration via compare-and-swap,
// retrying if a concurrent writer published in between. It returns the
// newly published Configuration.
func (r *Registry) Update(p ConfigurationPatch, metadata ConfigurationMetadata) *Configuration {
	for {
		old := r.current.Load()
		next := p.ApplyTo(old, metadata)
		if r.current.CompareAndSwap(old, next) {
			r.recordHistory(next)
			r.logger.Log(observability.LevelInfo, "registry: configuration patched",
				observability.F("added", len(p.Add)),
				observability.F("removed", len(p.Remove)))
			r.metrics.Count("registry.update", nil)
			return next
		}
	}
}

// Diff computes the ConfigurationDiff from the registry's current
// Configuration to other.
func (r *Registry) Diff(other *Configuration) ConfigurationDiff {
	return r.Current().Diff(other)
}

// SetOverride forces featureId to evaluate to value for every subsequent
// call on this registry instance, bypassing rules and defaults entirely.
// Overrides are test/operator tooling: they do not survive a Load call.
func (r *Registry) SetOverride(featureId string, value ids.Value) {
	r.overrides.Store(featureId, value)
	r.logger.Log(observability.LevelWarn, "registry: override set", observability.F("featureId", featureId))
	r.metrics.Count("registry.override.set", nil)
}

// ClearOverride removes any override previously set for featureId.
func (r *Registry) ClearOverride(featureId string) {
	r.overrides.Delete(featureId)
	r.logger.Log(observability.LevelInfo, "registry: override cleared", observability.F("featureId", featureId))
	r.metrics.Count("registry.override.clear", nil)
}

// Override returns the forced value for featureId, if one is set.
func (r *Registry) Override(featureId string) (ids.Value, bool) {
	v, ok := r.overrides.Load(featureId)
	if !ok {
		return ids.Value{}, false
	}
	return v.(ids.Value), true
}

// History returns a copy of the registry's bounded publication log, oldest
// first.
func (r *Registry) History() []HistoryEntry {
	r.historyMu.Lock()
	defer r.historyMu.Unlock()
	out := make([]HistoryEntry, len(r.history))
	copy(out, r.history)
	return out
}

func (r *Registry) recordHistory(c *Configuration) {
	snapshotId := uuid.NewString()
	r.historyMu.Lock()
	defer r.historyMu.Unlock()
	r.history = append(r.history, HistoryEntry{SnapshotId: snapshotId, Metadata: c.Metadata})
	if len(r.history) > r.historyCap {
		r.history = r.history[len(r.history)-r.historyCap:]
	}
}
