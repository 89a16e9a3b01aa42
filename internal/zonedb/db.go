package zonedb

import (
	"sync"

	"github.com/joshuafuller/zoneguard/internal/metrics"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/rbt"
	"github.com/joshuafuller/zoneguard/internal/rdataslab"
	"github.com/joshuafuller/zoneguard/internal/wire"
	"github.com/prometheus/client_golang/prometheus"
)

// Mode selects zone or cache semantics for AddRdataset and Find (spec
// §4.6.3/§4.6.4, §4.6.5/§4.6.6).
type Mode int

const (
	ModeZone Mode = iota
	ModeCache
)

// Option configures a DB at construction.
type Option func(*DB)

// WithMetricsRegisterer wires db to report version/lookup metrics against
// reg. Without this option, db collects no metrics (spec: metrics are an
// optional collaborator, never globally registered — see
// .semgrep-tests/library_antipatterns_test.go's injected-Registerer pattern).
func WithMetricsRegisterer(reg prometheus.Registerer, namespace string) Option {
	return func(db *DB) { db.metrics = metrics.NewZoneDB(reg, namespace) }
}

// WithSecure marks the database DNSSEC-secure, enabling FindClosestNXT
// participation in ZoneFind's NXDOMAIN proof path (spec §4.6.5 step 3).
func WithSecure() Option {
	return func(db *DB) { db.secure = true }
}

// DB is one zone or cache database: an RBT name tree plus version/lock state
// (spec §4.6).
type DB struct {
	mode Mode
	tree *rbt.Tree

	mu         sync.Mutex // innermost: version list + counters
	nodeLocks  [nodeLockCount]sync.RWMutex
	current    *Version
	writer     *Version
	open       []*Version
	cleanup    []changed
	nextSerial uint32

	secure  bool
	metrics *metrics.ZoneDB
}

// New returns an empty database in the given mode.
func New(mode Mode, opts ...Option) *DB {
	db := &DB{
		mode:    mode,
		tree:    rbt.New(),
		current: &Version{serial: 1, commitOk: true},
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// AddOptions bitset for AddRdataset (spec §4.6.3).
type AddOptions uint8

const (
	Merge AddOptions = 1 << iota
	Force
)

// AddRdataset attaches slab under (name, rrtype) at version v, following the
// zone-mode rules of spec §4.6.3 or the cache-mode rules of spec §4.6.4
// depending on db.mode. In zone mode loading=true skips the per-call
// changed-record bookkeeping (spec §4.6.3 step 1), matching bulk zone-load
// fast paths; cache mode ignores loading and always records the change.
func (db *DB) AddRdataset(name wire.Name, rrtype protocol.RRType, v *Version, slab rdataslab.Slab, trust protocol.Trust, ttl int64, opts AddOptions, loading bool) error {
	db.tree.Lock()
	releaseTree := assertAcquire(levelTree)
	defer func() { releaseTree(); db.tree.Unlock() }()

	node := db.tree.AddNode(name)
	nlock := db.nodeLockFor(key(name))
	nlock.Lock()
	releaseNode := assertAcquire(levelNode)
	defer func() { releaseNode(); nlock.Unlock() }()

	nd, _ := node.Data.(*nodeData)
	if nd == nil {
		nd = &nodeData{}
		node.Data = nd
	}

	switch db.mode {
	case ModeZone:
		if err := db.addZoneLocked(node, nd, name, rrtype, v, slab, ttl, opts, loading); err != nil {
			return err
		}
	case ModeCache:
		if err := db.addCacheLocked(nd, rrtype, v, slab, trust, ttl, opts); err != nil {
			return err
		}
	}

	if isDelegating(name, rrtype, node) {
		node.FindCallback = true
	}
	return nil
}

// AddNegativeCache installs an NXDOMAIN (covers=nil) or NXRRSET (covers=T)
// negative-cache entry at name, the reserved base=0 encoding AddRdataset's
// (name, rrtype) surface cannot reach directly (spec §3, §4.6.4). Only valid
// in cache mode.
func (db *DB) AddNegativeCache(name wire.Name, covers protocol.RRType, isNXDomain bool, v *Version, trust protocol.Trust, ttl int64) error {
	db.tree.Lock()
	releaseTree := assertAcquire(levelTree)
	defer func() { releaseTree(); db.tree.Unlock() }()

	node := db.tree.AddNode(name)
	nlock := db.nodeLockFor(key(name))
	nlock.Lock()
	releaseNode := assertAcquire(levelNode)
	defer func() { releaseNode(); nlock.Unlock() }()

	nd, _ := node.Data.(*nodeData)
	if nd == nil {
		nd = &nodeData{}
		node.Data = nd
	}

	ht := negativeNXRRSet(covers)
	if isNXDomain {
		ht = negativeNXDomain()
	}
	return db.addCacheLockedType(nd, ht, v, rdataslab.Slab{}, trust, ttl, 0)
}

func isDelegating(name wire.Name, rrtype protocol.RRType, node *rbt.Node) bool {
	if rrtype == protocol.TypeDNAME {
		return true
	}
	if rrtype == protocol.TypeNS {
		// NS at the apex (the zone's own name) does not delegate; NS
		// anywhere else does (spec §4.6.3 step 5). SetApex marks the origin
		// node so AddRdataset can tell the two cases apart.
		return !isApex(node)
	}
	return false
}

func isApex(node *rbt.Node) bool {
	nd, _ := node.Data.(*nodeData)
	return nd != nil && nd.apex
}

func key(n wire.Name) string { return n.Lower().String() }

// recordOutcome tallies a lookup result against the metrics.ZoneDB
// LookupOutcomes vector, labelled by zone vs cache mode, when metrics were
// wired via WithMetricsRegisterer.
func (db *DB) recordOutcome(o interface{ String() string }) {
	if db.metrics == nil {
		return
	}
	mode := "zone"
	if db.mode == ModeCache {
		mode = "cache"
	}
	db.metrics.LookupOutcomes.WithLabelValues(mode, o.String()).Inc()
}

// SetApex marks name's node as the zone origin, so an NS rdataset added
// there is never mistaken for a delegation (spec §4.6.3 step 5 only fires NS
// below the apex).
func (db *DB) SetApex(name wire.Name) {
	db.tree.Lock()
	defer db.tree.Unlock()
	node := db.tree.AddNode(name)
	nd, _ := node.Data.(*nodeData)
	if nd == nil {
		nd = &nodeData{}
		node.Data = nd
	}
	nd.apex = true
}
