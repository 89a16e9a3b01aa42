package rdata

import (
	"encoding/base64"
	"strconv"
	"strings"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// SIG is a legacy DNSSEC signature record (RFC 2535 §4.1). SignerName is
// not compression-eligible; its emission must still be downcased to
// canonical form because it participates in the signature digest.
type SIG struct {
	Cls          protocol.Class
	TypeCovered  protocol.RRType
	Algorithm    uint8
	Labels       uint8
	OriginalTTL  uint32
	Expiration   uint32
	Inception    uint32
	KeyTag       uint16
	SignerName   wire.Name
	Signature    []byte
}

func (r *SIG) Type() protocol.RRType { return protocol.TypeSIG }
func (r *SIG) Class() protocol.Class { return r.Cls }

// KEY is a legacy public-key record (RFC 2535 §3.1).
type KEY struct {
	Cls       protocol.Class
	Flags     uint16
	Protocol  uint8
	Algorithm uint8
	PublicKey []byte
}

func (r *KEY) Type() protocol.RRType { return protocol.TypeKEY }
func (r *KEY) Class() protocol.Class { return r.Cls }

// NXT is a legacy next-secure record (RFC 2535 §5.1). NextDomainName is one
// of the handful of types RFC 3597 §4 allows to compress.
type NXT struct {
	Cls            protocol.Class
	NextDomainName wire.Name
	TypeBitmap     []byte
}

func (r *NXT) Type() protocol.RRType { return protocol.TypeNXT }
func (r *NXT) Class() protocol.Class { return r.Cls }

// CERT carries a certificate or CRL (RFC 4398 §2).
type CERT struct {
	Cls         protocol.Class
	CertType    uint16
	KeyTag      uint16
	Algorithm   uint8
	Certificate []byte
}

func (r *CERT) Type() protocol.RRType { return protocol.TypeCERT }
func (r *CERT) Class() protocol.Class { return r.Cls }

func init() {
	register(protocol.TypeSIG, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) < 9 {
				return nil, minFieldCountError(protocol.TypeSIG, 9, len(tokens))
			}
			covered, ok := protocol.ParseRRType(tokens[0])
			if !ok {
				return nil, &errortypes.ValidationError{Field: "SIG", Value: tokens[0], Message: "unrecognized type covered"}
			}
			alg, err := strconv.ParseUint(tokens[1], 10, 8)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "SIG", Value: tokens[1], Message: "algorithm must fit in 8 bits"}
			}
			labels, err := strconv.ParseUint(tokens[2], 10, 8)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "SIG", Value: tokens[2], Message: "labels must fit in 8 bits"}
			}
			origTTL, err := strconv.ParseUint(tokens[3], 10, 32)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "SIG", Value: tokens[3], Message: "original TTL must fit in 32 bits"}
			}
			exp, err := strconv.ParseUint(tokens[4], 10, 32)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "SIG", Value: tokens[4], Message: "expiration must fit in 32 bits"}
			}
			inc, err := strconv.ParseUint(tokens[5], 10, 32)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "SIG", Value: tokens[5], Message: "inception must fit in 32 bits"}
			}
			tag, err := strconv.ParseUint(tokens[6], 10, 16)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "SIG", Value: tokens[6], Message: "key tag must fit in 16 bits"}
			}
			signer, err := wire.NameFromText(tokens[7], origin, downcase)
			if err != nil {
				return nil, err
			}
			sig, err := base64.StdEncoding.DecodeString(strings.Join(tokens[8:], ""))
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "SIG", Value: "signature", Message: "invalid base64"}
			}
			return &SIG{
				Cls: protocol.ClassIN, TypeCovered: covered, Algorithm: uint8(alg), Labels: uint8(labels),
				OriginalTTL: uint32(origTTL), Expiration: uint32(exp), Inception: uint32(inc),
				KeyTag: uint16(tag), SignerName: signer, Signature: sig,
			}, nil
		},
		toText: func(r Rdata) string {
			s := r.(*SIG)
			return s.TypeCovered.String() + " " + strconv.Itoa(int(s.Algorithm)) + " " + strconv.Itoa(int(s.Labels)) + " " +
				strconv.FormatUint(uint64(s.OriginalTTL), 10) + " " + strconv.FormatUint(uint64(s.Expiration), 10) + " " +
				strconv.FormatUint(uint64(s.Inception), 10) + " " + strconv.Itoa(int(s.KeyTag)) + " " + s.SignerName.String() +
				" " + base64.StdEncoding.EncodeToString(s.Signature)
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			end := buf.Current() + rdlen
			covered, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			alg, err := buf.ReadUint8()
			if err != nil {
				return nil, err
			}
			labels, err := buf.ReadUint8()
			if err != nil {
				return nil, err
			}
			origTTL, err := buf.ReadUint32()
			if err != nil {
				return nil, err
			}
			exp, err := buf.ReadUint32()
			if err != nil {
				return nil, err
			}
			inc, err := buf.ReadUint32()
			if err != nil {
				return nil, err
			}
			tag, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			// SIG's signer name never compresses per RFC 3597 §4.4; parse it
			// positionally like any other name, compression or not.
			signer, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			sig, err := buf.ReadBytes(end - buf.Current())
			if err != nil {
				return nil, err
			}
			return &SIG{
				Cls: protocol.ClassIN, TypeCovered: protocol.RRType(covered), Algorithm: alg, Labels: labels,
				OriginalTTL: origTTL, Expiration: exp, Inception: inc, KeyTag: tag, SignerName: signer,
				Signature: append([]byte{}, sig...),
			}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			s := r.(*SIG)
			if err := buf.WriteUint16(uint16(s.TypeCovered)); err != nil {
				return err
			}
			if err := buf.WriteUint8(s.Algorithm); err != nil {
				return err
			}
			if err := buf.WriteUint8(s.Labels); err != nil {
				return err
			}
			for _, v := range []uint32{s.OriginalTTL, s.Expiration, s.Inception} {
				if err := buf.WriteUint32(v); err != nil {
					return err
				}
			}
			if err := buf.WriteUint16(s.KeyTag); err != nil {
				return err
			}
			if err := writeName(s.SignerName, buf, c, false); err != nil {
				return err
			}
			return buf.WriteBytes(s.Signature)
		},
	})

	register(protocol.TypeKEY, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) < 3 {
				return nil, minFieldCountError(protocol.TypeKEY, 3, len(tokens))
			}
			flags, err := strconv.ParseUint(tokens[0], 10, 16)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "KEY", Value: tokens[0], Message: "flags must fit in 16 bits"}
			}
			protoField, err := strconv.ParseUint(tokens[1], 10, 8)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "KEY", Value: tokens[1], Message: "protocol must fit in 8 bits"}
			}
			alg, err := strconv.ParseUint(tokens[2], 10, 8)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "KEY", Value: tokens[2], Message: "algorithm must fit in 8 bits"}
			}
			key, err := base64.StdEncoding.DecodeString(strings.Join(tokens[3:], ""))
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "KEY", Value: "public key", Message: "invalid base64"}
			}
			return &KEY{Cls: protocol.ClassIN, Flags: uint16(flags), Protocol: uint8(protoField), Algorithm: uint8(alg), PublicKey: key}, nil
		},
		toText: func(r Rdata) string {
			k := r.(*KEY)
			return strconv.Itoa(int(k.Flags)) + " " + strconv.Itoa(int(k.Protocol)) + " " + strconv.Itoa(int(k.Algorithm)) + " " +
				base64.StdEncoding.EncodeToString(k.PublicKey)
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			flags, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			protoField, err := buf.ReadUint8()
			if err != nil {
				return nil, err
			}
			alg, err := buf.ReadUint8()
			if err != nil {
				return nil, err
			}
			key, err := buf.ReadBytes(rdlen - 4)
			if err != nil {
				return nil, err
			}
			return &KEY{Cls: protocol.ClassIN, Flags: flags, Protocol: protoField, Algorithm: alg, PublicKey: append([]byte{}, key...)}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			k := r.(*KEY)
			if err := buf.WriteUint16(k.Flags); err != nil {
				return err
			}
			if err := buf.WriteUint8(k.Protocol); err != nil {
				return err
			}
			if err := buf.WriteUint8(k.Algorithm); err != nil {
				return err
			}
			return buf.WriteBytes(k.PublicKey)
		},
	})

	register(protocol.TypeNXT, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) < 1 {
				return nil, minFieldCountError(protocol.TypeNXT, 1, len(tokens))
			}
			next, err := wire.NameFromText(tokens[0], origin, downcase)
			if err != nil {
				return nil, err
			}
			bitmap, err := encodeTypeBitmap(tokens[1:])
			if err != nil {
				return nil, err
			}
			return &NXT{Cls: protocol.ClassIN, NextDomainName: next, TypeBitmap: bitmap}, nil
		},
		toText: func(r Rdata) string {
			n := r.(*NXT)
			types := decodeTypeBitmap(n.TypeBitmap)
			names := make([]string, len(types))
			for i, t := range types {
				names[i] = t.String()
			}
			return n.NextDomainName.String() + " " + strings.Join(names, " ")
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			start := buf.Current()
			next, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			consumed := buf.Current() - start
			bitmap, err := buf.ReadBytes(rdlen - consumed)
			if err != nil {
				return nil, err
			}
			return &NXT{Cls: protocol.ClassIN, NextDomainName: next, TypeBitmap: append([]byte{}, bitmap...)}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			n := r.(*NXT)
			if err := writeName(n.NextDomainName, buf, c, true); err != nil {
				return err
			}
			return buf.WriteBytes(n.TypeBitmap)
		},
	})

	register(protocol.TypeCERT, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) < 4 {
				return nil, minFieldCountError(protocol.TypeCERT, 4, len(tokens))
			}
			certType, err := strconv.ParseUint(tokens[0], 10, 16)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "CERT", Value: tokens[0], Message: "cert type must fit in 16 bits"}
			}
			tag, err := strconv.ParseUint(tokens[1], 10, 16)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "CERT", Value: tokens[1], Message: "key tag must fit in 16 bits"}
			}
			alg, err := strconv.ParseUint(tokens[2], 10, 8)
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "CERT", Value: tokens[2], Message: "algorithm must fit in 8 bits"}
			}
			cert, err := base64.StdEncoding.DecodeString(strings.Join(tokens[3:], ""))
			if err != nil {
				return nil, &errortypes.ValidationError{Field: "CERT", Value: "certificate", Message: "invalid base64"}
			}
			return &CERT{Cls: protocol.ClassIN, CertType: uint16(certType), KeyTag: uint16(tag), Algorithm: uint8(alg), Certificate: cert}, nil
		},
		toText: func(r Rdata) string {
			c := r.(*CERT)
			return strconv.Itoa(int(c.CertType)) + " " + strconv.Itoa(int(c.KeyTag)) + " " + strconv.Itoa(int(c.Algorithm)) + " " +
				base64.StdEncoding.EncodeToString(c.Certificate)
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			certType, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			tag, err := buf.ReadUint16()
			if err != nil {
				return nil, err
			}
			alg, err := buf.ReadUint8()
			if err != nil {
				return nil, err
			}
			cert, err := buf.ReadBytes(rdlen - 5)
			if err != nil {
				return nil, err
			}
			return &CERT{Cls: protocol.ClassIN, CertType: certType, KeyTag: tag, Algorithm: alg, Certificate: append([]byte{}, cert...)}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			ct := r.(*CERT)
			if err := buf.WriteUint16(ct.CertType); err != nil {
				return err
			}
			if err := buf.WriteUint16(ct.KeyTag); err != nil {
				return err
			}
			if err := buf.WriteUint8(ct.Algorithm); err != nil {
				return err
			}
			return buf.WriteBytes(ct.Certificate)
		},
	})
}

// encodeTypeBitmap builds an RFC 2535 §5.1 NXT type bitmap (a single window,
// types 0-255) from a list of RR type mnemonics.
func encodeTypeBitmap(typeNames []string) ([]byte, error) {
	var maxBit int
	bits := map[int]bool{}
	for _, name := range typeNames {
		t, ok := protocol.ParseRRType(name)
		if !ok {
			return nil, &errortypes.ValidationError{Field: "NXT", Value: name, Message: "unrecognized type in bitmap"}
		}
		if t >= 256 {
			return nil, &errortypes.ValidationError{Field: "NXT", Value: name, Message: "NXT bitmap only covers types 0-255"}
		}
		bits[int(t)] = true
		if int(t) > maxBit {
			maxBit = int(t)
		}
	}
	bitmap := make([]byte, maxBit/8+1)
	for t := range bits {
		bitmap[t/8] |= 0x80 >> uint(t%8)
	}
	return bitmap, nil
}

func decodeTypeBitmap(bitmap []byte) []protocol.RRType {
	var types []protocol.RRType
	for i, b := range bitmap {
		for bit := 0; bit < 8; bit++ {
			if b&(0x80>>uint(bit)) != 0 {
				types = append(types, protocol.RRType(i*8+bit))
			}
		}
	}
	return types
}
