package zonelifecycle

import (
	"context"
	"time"
)

// TransferKind selects the zone-transfer mechanism (spec §4.8's
// transfer_in(AXFR|IXFR)).
type TransferKind int

const (
	AXFR TransferKind = iota
	IXFR
)

// SOA carries the timing fields spec §4.8 drives Refresh/Expire from.
type SOA struct {
	Serial  uint32
	Refresh time.Duration
	Retry   time.Duration
	Expire  time.Duration
	Minimum time.Duration
}

// Loader parses a master file into a new database and reports the resulting
// SOA. It is the one collaborator spec §4.8's load(file) transition calls
// into; the parser itself (tokenizer, $INCLUDE handling) lives outside this
// package per spec §1's scope split.
type Loader interface {
	Load(ctx context.Context, file string) (SOA, error)
}

// Refresher queries the master's current SOA serial, the first step of
// spec §4.8's refresh transition ("query SOA, decide no-op / transfer /
// retry").
type Refresher interface {
	QuerySOA(ctx context.Context) (uint32, error)
}

// Transferer performs an inbound or outbound zone transfer. TransferIn
// streams and commits atomically, reporting the resulting SOA; a non-nil
// error (including a TSIG mismatch) means the transaction was rolled back
// and must not be reflected in the machine's state (spec §4.8's failure
// semantics). XferOut serves an already-authorized requester; Machine is
// responsible for the ACL check before calling it.
type Transferer interface {
	TransferIn(ctx context.Context, kind TransferKind) (SOA, error)
	XferOut(ctx context.Context, kind TransferKind) error
}

// Notifier pushes NOTIFY messages to a zone's also-notify list after a
// successful reload (spec §4.8's notify transition).
type Notifier interface {
	Notify(ctx context.Context, targets []string) error
}
