// Package errorbudget implements the cross-run per-host error counter
// described in SPEC_FULL.md's AMBIENT STACK section. It is distinct from the
// in-memory error_streak counter Stage 3 uses for early termination
// (internal/vhost): that one lives for a single discrimination run and is
// never persisted. This one accumulates whatever callers pass to Record.
// Save and Load persist only the fastcache per-host presence markers that
// HasErrors reads; the per-kind counts behind HostStats and Snapshot are
// in-memory and start empty after Load.
//
// Grounded on the teacher's two error-handling generations: the fastcache
// persistence model of internal/utils/error/error_cache.go and the
// per-host/per-kind statistics of internal/utils/error/error_stats.go,
// merged with the errkit typed-error-kind taxonomy from
// internal/utils/error.go.
package errorbudget

import (
	"sync"
	"sync/atomic"

	"github.com/VictoriaMetrics/fastcache"
	"github.com/projectdiscovery/utils/errkit"
)

// Kind classifies an error by which part of the pipeline produced it, per
// SPEC_FULL.md §7's error taxonomy.
type Kind string

const (
	KindResolution     Kind = "resolution"
	KindConnect        Kind = "connect"
	KindSchemeProbe    Kind = "scheme-probe"
	KindVhostTransport Kind = "vhost-transport"
	KindLogWrite       Kind = "log-write"
	KindValidation     Kind = "validation"
)

var (
	errKindResolution     = errkit.NewPrimitiveErrKind("vhostsieve-resolution", "DNS resolution failure", nil)
	errKindConnect        = errkit.NewPrimitiveErrKind("vhostsieve-connect", "TCP connect failure", nil)
	errKindSchemeProbe    = errkit.NewPrimitiveErrKind("vhostsieve-scheme-probe", "scheme detection transport failure", nil)
	errKindVhostTransport = errkit.NewPrimitiveErrKind("vhostsieve-vhost-transport", "vhost probe transport failure", nil)
	errKindLogWrite       = errkit.NewPrimitiveErrKind("vhostsieve-log-write", "finding log write failure", nil)
	errKindValidation     = errkit.NewPrimitiveErrKind("vhostsieve-validation", "validation failure", nil)
)

func errKindFor(k Kind) errkit.ErrKind {
	switch k {
	case KindResolution:
		return errKindResolution
	case KindConnect:
		return errKindConnect
	case KindSchemeProbe:
		return errKindSchemeProbe
	case KindLogWrite:
		return errKindLogWrite
	case KindValidation:
		return errKindValidation
	default:
		return errKindVhostTransport
	}
}

// Classify wraps err with a typed errkit kind for the given taxonomy bucket,
// so downstream handlers can switch on err kind instead of matching strings.
func Classify(k Kind, err error) error {
	if err == nil {
		return nil
	}
	return errkit.FromError(err).SetKind(errKindFor(k)).Build()
}

// HostStats is the per-host detail exported by Stats.
type HostStats struct {
	Count      uint32
	ByKind     map[Kind]uint32
	LastStatus int
}

// Stats is a snapshot of the global counters.
type Stats struct {
	TotalErrors uint64
	UniqueHosts uint64
}

// Tracker is a fastcache-backed per-host error counter. Safe for concurrent
// use by many workers.
type Tracker struct {
	mu        sync.RWMutex
	cache     *fastcache.Cache
	hostStats map[string]*HostStats
	total     uint64
}

// New returns a Tracker with a 32MB in-memory cache, the minimum size
// fastcache accepts.
func New() *Tracker {
	return &Tracker{
		cache:     fastcache.New(32 * 1024 * 1024),
		hostStats: make(map[string]*HostStats),
	}
}

// Load restores a Tracker's cache from a file previously written by Save.
func Load(path string) (*Tracker, error) {
	cache, err := fastcache.LoadFromFile(path)
	if err != nil {
		return nil, err
	}
	return &Tracker{cache: cache, hostStats: make(map[string]*HostStats)}, nil
}

// Record increments the error count for host and classifies it by kind.
func (t *Tracker) Record(host string, k Kind, statusCode int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	atomic.AddUint64(&t.total, 1)
	t.cache.Set([]byte(host), []byte{1}) // presence marker for HasErrors

	hs := t.hostStats[host]
	if hs == nil {
		hs = &HostStats{ByKind: make(map[Kind]uint32)}
		t.hostStats[host] = hs
	}
	hs.Count++
	hs.ByKind[k]++
	hs.LastStatus = statusCode
}

// HasErrors reports whether any error has been recorded for host.
func (t *Tracker) HasErrors(host string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cache.Has([]byte(host))
}

// HostStats returns the recorded detail for host, or nil if none.
func (t *Tracker) HostStats(host string) *HostStats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.hostStats[host]
}

// Snapshot returns the current global counters.
func (t *Tracker) Snapshot() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return Stats{
		TotalErrors: atomic.LoadUint64(&t.total),
		UniqueHosts: uint64(len(t.hostStats)),
	}
}

// Save persists the cache to path so a future run can resume the budget via
// Load.
func (t *Tracker) Save(path string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.cache.SaveToFile(path)
}

// Close releases the underlying cache.
func (t *Tracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cache != nil {
		t.cache.Reset()
	}
}
