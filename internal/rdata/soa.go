package rdata

import (
	"strconv"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// SOA is the zone's start-of-authority record (RFC 1035 §3.3.13). MNAME and
// RNAME are both compression-eligible per RFC 3597 §4.
type SOA struct {
	Cls     protocol.Class
	MName   wire.Name
	RName   wire.Name
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (r *SOA) Type() protocol.RRType { return protocol.TypeSOA }
func (r *SOA) Class() protocol.Class { return r.Cls }

func init() {
	register(protocol.TypeSOA, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 7 {
				return nil, fieldCountError(protocol.TypeSOA, 7, len(tokens))
			}
			mname, err := wire.NameFromText(tokens[0], origin, downcase)
			if err != nil {
				return nil, err
			}
			rname, err := wire.NameFromText(tokens[1], origin, downcase)
			if err != nil {
				return nil, err
			}
			nums := make([]uint32, 5)
			for i := 0; i < 5; i++ {
				v, err := strconv.ParseUint(tokens[2+i], 10, 32)
				if err != nil {
					return nil, &errortypes.ValidationError{Field: "SOA", Value: tokens[2+i], Message: "not a valid 32-bit integer"}
				}
				nums[i] = uint32(v)
			}
			return &SOA{
				Cls: protocol.ClassIN, MName: mname, RName: rname,
				Serial: nums[0], Refresh: nums[1], Retry: nums[2], Expire: nums[3], Minimum: nums[4],
			}, nil
		},
		toText: func(r Rdata) string {
			s := r.(*SOA)
			return s.MName.String() + " " + s.RName.String() + " " +
				strconv.FormatUint(uint64(s.Serial), 10) + " " +
				strconv.FormatUint(uint64(s.Refresh), 10) + " " +
				strconv.FormatUint(uint64(s.Retry), 10) + " " +
				strconv.FormatUint(uint64(s.Expire), 10) + " " +
				strconv.FormatUint(uint64(s.Minimum), 10)
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			mname, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			rname, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			nums := make([]uint32, 5)
			for i := range nums {
				v, err := buf.ReadUint32()
				if err != nil {
					return nil, err
				}
				nums[i] = v
			}
			return &SOA{
				Cls: protocol.ClassIN, MName: mname, RName: rname,
				Serial: nums[0], Refresh: nums[1], Retry: nums[2], Expire: nums[3], Minimum: nums[4],
			}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			s := r.(*SOA)
			if err := writeName(s.MName, buf, c, true); err != nil {
				return err
			}
			if err := writeName(s.RName, buf, c, true); err != nil {
				return err
			}
			for _, v := range []uint32{s.Serial, s.Refresh, s.Retry, s.Expire, s.Minimum} {
				if err := buf.WriteUint32(v); err != nil {
					return err
				}
			}
			return nil
		},
	})
}
