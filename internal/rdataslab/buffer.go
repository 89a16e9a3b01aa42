package rdataslab

import "github.com/joshuafuller/zoneguard/internal/wire"

// maxRdataLength is RDLENGTH's field width ceiling (RFC 1035 §4.1.3): no
// single rdata can exceed this when canonically encoded.
const maxRdataLength = 65535

func newCanonicalBuffer() *wire.Buffer {
	return wire.NewBuffer(maxRdataLength)
}
