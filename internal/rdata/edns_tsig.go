package rdata

import (
	"strconv"
	"strings"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// OptionTLV is one EDNS0 option within an OPT pseudo-record (RFC 6891 §6.1.2).
type OptionTLV struct {
	Code uint16
	Data []byte
}

// OPT is the EDNS0 pseudo-record (RFC 6891 §6.1). The requestor's UDP
// payload size and the extended RCODE/version/flags live in the owning
// resource record's CLASS and TTL fields, outside rdata proper; this struct
// only models the option list, which is all that is "rdata" here.
type OPT struct {
	Cls     protocol.Class
	Options []OptionTLV
}

func (r *OPT) Type() protocol.RRType { return protocol.TypeOPT }
func (r *OPT) Class() protocol.Class { return r.Cls }

// TSIG carries a transaction signature (RFC 2845 §2.3). AlgorithmName is
// never compressed.
type TSIG struct {
	Cls           protocol.Class
	AlgorithmName wire.Name
	TimeSigned    uint64 // low 48 bits significant
	Fudge         uint16
	MAC           []byte
	OriginalID    uint16
	Error         uint16
	OtherData     []byte
}

func (r *TSIG) Type() protocol.RRType { return protocol.TypeTSIG }
func (r *TSIG) Class() protocol.Class { return r.Cls }

// TKEY negotiates a shared secret (RFC 2930 §2). Algorithm is never compressed.
type TKEY struct {
	Cls        protocol.Class
	Algorithm  wire.Name
	Inception  uint32
	Expiration uint32
	Mode       uint16
	Error      uint16
	Key        []byte
	OtherData  []byte
}

func (r *TKEY) Type() protocol.RRType { return protocol.TypeTKEY }
func (r *TKEY) Class() protocol.Class { return r.Cls }

func init() {
	register(protocol.TypeOPT, codec{
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			end := buf.Current() + rdlen
			var opts []OptionTLV
			for buf.Current() < end {
				code, err := buf.ReadUint16()
				if err != nil {
					return nil, err
				}
				length, err := buf.ReadUint16()
				if err != nil {
					return nil, err
				}
				data, err := buf.ReadBytes(int(length))
				if err != nil {
					return nil, err
				}
				opts = append(opts, OptionTLV{Code: code, Data: append([]byte{}, data...)})
			}
			if buf.Current() != end {
				return nil, &errortypes.WireFormatError{Operation: "parse OPT rdata", Message: "options did not exactly fill RDLENGTH"}
			}
			return &OPT{Options: opts}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			o := r.(*OPT)
			for _, opt := range o.Options {
				if err := buf.WriteUint16(opt.Code); err != nil {
					return err
				}
				if err := buf.WriteUint16(uint16(len(opt.Data))); err != nil {
					return err
				}
				if err := buf.WriteBytes(opt.Data); err != nil {
					return err
				}
			}
			return nil
		},
		toText: func(r Rdata) string {
			o := r.(*OPT)
			parts := make([]string, len(o.Options))
			for i, opt := range o.Options {
				parts[i] = strconv.Itoa(int(opt.Code)) + ":" + strconv.Itoa(len(opt.Data))
			}
			return strings.Join(parts, " ")
		},
	})

	register(protocol.TypeTSIG, codec{
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			alg, err := readName(buf, false) // algorithm names are case-sensitive per RFC 2845 §2.3
			if err != nil {
				return nil, err
			}
			timeHi, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			timeLo, err := buf.ReadUint32()
			if err != nil {
				return nil, err
			}
			fudge, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			macLen, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			mac, err := buf.ReadBytes(int(macLen))
			if err != nil {
				return nil, err
			}
			origID, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			tsigErr, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			otherLen, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			other, err := buf.ReadBytes(int(otherLen))
			if err != nil {
				return nil, err
			}
			return &TSIG{
				Cls: protocol.ClassANY, AlgorithmName: alg,
				TimeSigned: uint64(timeHi)<<32 | uint64(timeLo), Fudge: fudge,
				MAC: append([]byte{}, mac...), OriginalID: origID, Error: tsigErr,
				OtherData: append([]byte{}, other...),
			}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			t := r.(*TSIG)
			if err := writeName(t.AlgorithmName, buf, c, false); err != nil {
				return err
			}
			if err := buf.WriteUint16(uint16(t.TimeSigned >> 32)); err != nil {
				return err
			}
			if err := buf.WriteUint32(uint32(t.TimeSigned)); err != nil {
				return err
			}
			if err := buf.WriteUint16(t.Fudge); err != nil {
				return err
			}
			if err := buf.WriteUint16(uint16(len(t.MAC))); err != nil {
				return err
			}
			if err := buf.WriteBytes(t.MAC); err != nil {
				return err
			}
			if err := buf.WriteUint16(t.OriginalID); err != nil {
				return err
			}
			if err := buf.WriteUint16(t.Error); err != nil {
				return err
			}
			if err := buf.WriteUint16(uint16(len(t.OtherData))); err != nil {
				return err
			}
			return buf.WriteBytes(t.OtherData)
		},
		toText: func(r Rdata) string {
			t := r.(*TSIG)
			return t.AlgorithmName.String() + " error=" + strconv.Itoa(int(t.Error))
		},
	})

	register(protocol.TypeTKEY, codec{
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			alg, err := readName(buf, false)
			if err != nil {
				return nil, err
			}
			inception, err := buf.ReadUint32()
			if err != nil {
				return nil, err
			}
			expiration, err := buf.ReadUint32()
			if err != nil {
				return nil, err
			}
			mode, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			tkeyErr, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			keySize, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			key, err := buf.ReadBytes(int(keySize))
			if err != nil {
				return nil, err
			}
			otherSize, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			other, err := buf.ReadBytes(int(otherSize))
			if err != nil {
				return nil, err
			}
			return &TKEY{
				Cls: protocol.ClassANY, Algorithm: alg, Inception: inception, Expiration: expiration,
				Mode: mode, Error: tkeyErr, Key: append([]byte{}, key...), OtherData: append([]byte{}, other...),
			}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			t := r.(*TKEY)
			if err := writeName(t.Algorithm, buf, c, false); err != nil {
				return err
			}
			if err := buf.WriteUint32(t.Inception); err != nil {
				return err
			}
			if err := buf.WriteUint32(t.Expiration); err != nil {
				return err
			}
			if err := buf.WriteUint16(t.Mode); err != nil {
				return err
			}
			if err := buf.WriteUint16(t.Error); err != nil {
				return err
			}
			if err := buf.WriteUint16(uint16(len(t.Key))); err != nil {
				return err
			}
			if err := buf.WriteBytes(t.Key); err != nil {
				return err
			}
			if err := buf.WriteUint16(uint16(len(t.OtherData))); err != nil {
				return err
			}
			return buf.WriteBytes(t.OtherData)
		},
	})
}
