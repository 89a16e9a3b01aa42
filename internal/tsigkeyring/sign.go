package tsigkeyring

import (
	"time"

	"github.com/joshuafuller/zoneguard/internal/cryptoring"
	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/rdata"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// DefaultFudge is the default TSIG time-skew tolerance (RFC 2845 §2.3's
// recommended value).
const DefaultFudge = 300 * time.Second

// Sign looks up keyName in kr and produces the TSIG record to append to a
// rendered message (spec §4.9's "sign appends a TSIG RR over the rendered
// message"). message is the fully rendered DNS message the TSIG covers;
// querytsig is the prior request's TSIG MAC when signing a response, or nil
// when signing a request.
func Sign(sv cryptoring.SignVerifier, kr *Keyring, keyName wire.Name, message, querytsig []byte, originalID uint16, now time.Time) (*rdata.TSIG, error) {
	key, ok := kr.Find(keyName)
	if !ok {
		return nil, &errortypes.TSIGError{Condition: errortypes.TSIGUnexpectedTSIG, KeyName: keyName.String()}
	}
	key.Acquire()
	defer key.Release()

	if !key.Valid(now) {
		return nil, &errortypes.TSIGError{Condition: errortypes.TSIGVerifyFailure, KeyName: keyName.String()}
	}

	digestInput := digestMessage(message, querytsig)
	mac, err := sv.Sign(key.Algorithm, key.Secret, digestInput)
	if err != nil {
		return nil, &errortypes.TSIGError{Condition: errortypes.TSIGVerifyFailure, KeyName: keyName.String(), Err: err}
	}

	algName, err := wire.NameFromText(key.Algorithm+".", wire.Root, false)
	if err != nil {
		return nil, &errortypes.TSIGError{Condition: errortypes.TSIGVerifyFailure, KeyName: keyName.String(), Err: err}
	}

	return &rdata.TSIG{
		AlgorithmName: algName,
		TimeSigned:    uint64(now.Unix()),
		Fudge:         uint16(DefaultFudge.Seconds()),
		MAC:           mac,
		OriginalID:    originalID,
		Error:         0,
	}, nil
}

// Verify checks a received TSIG against keyName's secret (spec §4.9's
// verify). querytsig is the prior request's TSIG MAC, required when
// verifying a response; callers pass nil when verifying a request. A
// non-zero tsig.Error fails closed with TSIGErrorSet before any MAC work.
func Verify(sv cryptoring.SignVerifier, kr *Keyring, keyName wire.Name, message, querytsig []byte, tsig *rdata.TSIG, now time.Time) error {
	if tsig.Error != 0 {
		return &errortypes.TSIGError{Condition: errortypes.TSIGErrorSet, KeyName: keyName.String()}
	}

	key, ok := kr.Find(keyName)
	if !ok {
		return &errortypes.TSIGError{Condition: errortypes.TSIGUnexpectedTSIG, KeyName: keyName.String()}
	}
	key.Acquire()
	defer key.Release()

	signedAt := time.Unix(int64(tsig.TimeSigned), 0)
	skew := now.Sub(signedAt)
	if skew < 0 {
		skew = -skew
	}
	if skew > time.Duration(tsig.Fudge)*time.Second {
		return &errortypes.TSIGError{Condition: errortypes.TSIGVerifyFailure, KeyName: keyName.String()}
	}

	digestInput := digestMessage(message, querytsig)
	if err := sv.Verify(key.Algorithm, key.Secret, digestInput, tsig.MAC); err != nil {
		return &errortypes.TSIGError{Condition: errortypes.TSIGVerifyFailure, KeyName: keyName.String(), Err: err}
	}
	return nil
}

// digestMessage prepends querytsig to message when verifying or signing a
// response, per RFC 2845 §4.4's requirement that a response's MAC cover the
// request's MAC as a prefix.
func digestMessage(message, querytsig []byte) []byte {
	if len(querytsig) == 0 {
		return message
	}
	buf := make([]byte, 0, len(querytsig)+len(message))
	buf = append(buf, querytsig...)
	buf = append(buf, message...)
	return buf
}

// CheckPresence implements spec §4.9's EXPECTEDTSIG/UNEXPECTEDTSIG gate: the
// caller (message layer) knows whether a TSIG was required by policy and
// whether one was actually present on the wire.
func CheckPresence(required, present bool, keyName string) error {
	switch {
	case required && !present:
		return &errortypes.TSIGError{Condition: errortypes.TSIGExpectedTSIG, KeyName: keyName}
	case !required && present:
		return &errortypes.TSIGError{Condition: errortypes.TSIGUnexpectedTSIG, KeyName: keyName}
	default:
		return nil
	}
}
