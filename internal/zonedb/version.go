package zonedb

import (
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
)

// changed records one (node, header) pair touched by a writer version, so
// CloseVersion knows what to fold into a cleanup list or roll back
// (spec §4.6.2).
type changed struct {
	node   *nodeData
	header *header
}

// Version is a handle pinning either the committed version (a reader) or a
// single in-flight writer version. The zero Version is invalid.
type Version struct {
	serial    uint32
	writer    bool
	commitOk  bool
	refs      int
	changed   []changed
	committed bool
}

// Serial returns the version's serial number.
func (v *Version) Serial() uint32 { return v.serial }

// IsWriter reports whether v is the single writer version.
func (v *Version) IsWriter() bool { return v.writer }

// currentVersionLocked returns a handle pinning db's committed version,
// incrementing its reference count (spec §4.6.2). Caller must hold db's lock.
func (db *DB) currentVersionLocked() *Version {
	db.current.refs++
	return db.current
}

// CurrentVersion returns a handle pinning the committed version.
func (db *DB) CurrentVersion() *Version {
	db.mu.Lock()
	defer db.mu.Unlock()
	v := db.currentVersionLocked()
	if db.metrics != nil {
		db.metrics.VersionsOpened.Inc()
		db.metrics.OpenVersions.Set(float64(db.openVersionCount()))
	}
	return v
}

// NewVersion allocates a writer version. Only one writer may be open at a
// time (spec §4.6.2); a second call before the first is closed returns an
// IntegrityError (errWriterBusy).
func (db *DB) NewVersion() (*Version, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	if db.writer != nil {
		return nil, errWriterBusy
	}
	db.nextSerial++
	v := &Version{serial: db.nextSerial, writer: true, commitOk: true, refs: 1}
	db.writer = v
	db.open = append(db.open, v)
	if db.metrics != nil {
		db.metrics.VersionsOpened.Inc()
		db.metrics.OpenVersions.Set(float64(db.openVersionCount()))
	}
	return v, nil
}

var errWriterBusy = &errortypes.IntegrityError{Operation: "new_version", Message: "a writer version is already open"}

// CloseVersion decrements v's reference count. If v is the writer and
// references drop to zero: on commit, v becomes the current version and its
// changed records either become the new cleanup list (if v was the
// least-open version) or are merged into the next-least-open version's
// cleanup list; on abort, every header v touched is marked IGNORE so future
// readers never observe it (spec §4.6.2). Marking IGNORE does not physically
// unlink the header — it stays in its node's chain as dead weight until a
// future writer touches that (node, type) and reclaims it (nodeData.reclaim).
// In the meantime, header.go's visibleZone/visibleCache walk straight past
// any IGNORE header to whatever it superseded, so an aborted write never
// shadows the real data that was there before it, for any reader.
func (db *DB) CloseVersion(v *Version, commit bool) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	v.refs--
	if v.refs > 0 {
		return nil
	}
	if !v.writer {
		db.removeOpenLocked(v)
		return nil
	}

	if commit && !v.commitOk {
		return &errortypes.IntegrityError{Operation: "close_version", Message: "commit requested on a version with commit_ok=false"}
	}

	if commit {
		db.current = v
		v.committed = true
		if db.metrics != nil {
			db.metrics.VersionsCommitted.Inc()
		}
		least := db.leastOpenSerialLocked(v)
		if least == v.serial {
			db.cleanup = append(db.cleanup, v.changed...)
		} else {
			db.mergeCleanupIntoNextLocked(v)
		}
	} else {
		for _, c := range v.changed {
			c.header.attr |= protocol.AttrIgnore
		}
		if db.metrics != nil {
			db.metrics.VersionsAborted.Inc()
		}
	}

	db.writer = nil
	db.removeOpenLocked(v)
	if db.metrics != nil {
		db.metrics.OpenVersions.Set(float64(db.openVersionCount()))
	}
	return nil
}

func (db *DB) removeOpenLocked(v *Version) {
	for i, o := range db.open {
		if o == v {
			db.open = append(db.open[:i], db.open[i+1:]...)
			return
		}
	}
}

func (db *DB) leastOpenSerialLocked(v *Version) uint32 {
	least := v.serial
	for _, o := range db.open {
		if o.serial < least {
			least = o.serial
		}
	}
	return least
}

func (db *DB) mergeCleanupIntoNextLocked(v *Version) {
	var next *Version
	for _, o := range db.open {
		if o.serial > v.serial && (next == nil || o.serial < next.serial) {
			next = o
		}
	}
	if next == nil {
		db.cleanup = append(db.cleanup, v.changed...)
		return
	}
	next.changed = append(next.changed, v.changed...)
}

func (db *DB) openVersionCount() int { return len(db.open) }

func (v *Version) record(n *nodeData, h *header) {
	v.changed = append(v.changed, changed{node: n, header: h})
}
