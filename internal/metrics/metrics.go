// Package metrics provides the shared prometheus wiring pattern used by
// zonedb and acl: every collector is created against an injected
// prometheus.Registerer, never registered globally in an init() function or
// package-level var (the anti-pattern documented and fixture-tested in the
// teacher's .semgrep-tests/library_antipatterns_test.go).
package metrics

import "github.com/prometheus/client_golang/prometheus"

// ZoneDB holds the counters and gauges zonedb.DB reports (spec §4.6's
// version lifecycle and lookup-outcome tallies).
type ZoneDB struct {
	VersionsOpened    prometheus.Counter
	VersionsCommitted prometheus.Counter
	VersionsAborted   prometheus.Counter
	OpenVersions      prometheus.Gauge
	LookupOutcomes    *prometheus.CounterVec
}

// NewZoneDB creates and registers a ZoneDB collector set against reg. Passing
// a nil Registerer is a programmer error; callers that don't want metrics
// should use prometheus.NewRegistry() so registration still succeeds but
// nothing is ever scraped.
func NewZoneDB(reg prometheus.Registerer, namespace string) *ZoneDB {
	z := &ZoneDB{
		VersionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "zonedb",
			Name:      "versions_opened_total",
			Help:      "Number of zone/cache database versions opened (current_version + new_version).",
		}),
		VersionsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "zonedb",
			Name:      "versions_committed_total",
			Help:      "Number of writer versions closed with commit=true.",
		}),
		VersionsAborted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "zonedb",
			Name:      "versions_aborted_total",
			Help:      "Number of writer versions closed with commit=false.",
		}),
		OpenVersions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "zonedb",
			Name:      "open_versions",
			Help:      "Number of versions currently referenced (not yet fully closed).",
		}),
		LookupOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "zonedb",
			Name:      "lookup_outcomes_total",
			Help:      "Lookup outcomes by mode (zone/cache) and result (NXDOMAIN, NXRRSET, DELEGATION, ...).",
		}, []string{"mode", "outcome"}),
	}
	reg.MustRegister(z.VersionsOpened, z.VersionsCommitted, z.VersionsAborted, z.OpenVersions, z.LookupOutcomes)
	return z
}

// ACL holds the counters acl.RateLimiter reports for its decisions and
// evictions.
type ACL struct {
	RateLimitDecisions *prometheus.CounterVec
	RateLimiterEvictions prometheus.Counter
}

// NewACL creates and registers an ACL collector set against reg.
func NewACL(reg prometheus.Registerer, namespace string) *ACL {
	a := &ACL{
		RateLimitDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acl",
			Name:      "rate_limit_decisions_total",
			Help:      "Rate limiter decisions by outcome (allow, deny).",
		}, []string{"outcome"}),
		RateLimiterEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "acl",
			Name:      "rate_limiter_evictions_total",
			Help:      "Number of rate limiter entries evicted to stay under the configured bound.",
		}),
	}
	reg.MustRegister(a.RateLimitDecisions, a.RateLimiterEvictions)
	return a
}
