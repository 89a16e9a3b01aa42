package rdata

import (
	"strconv"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
)

func fieldCountError(t protocol.RRType, want, got int) error {
	return &errortypes.ValidationError{
		Field:   t.String(),
		Value:   strconv.Itoa(got),
		Message: "expected " + strconv.Itoa(want) + " field(s)",
	}
}

func minFieldCountError(t protocol.RRType, want, got int) error {
	return &errortypes.ValidationError{
		Field:   t.String(),
		Value:   strconv.Itoa(got),
		Message: "expected at least " + strconv.Itoa(want) + " field(s)",
	}
}
