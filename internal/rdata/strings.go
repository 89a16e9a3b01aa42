package rdata

import (
	"strings"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
	"github.com/joshuafuller/zoneguard/internal/protocol"
	"github.com/joshuafuller/zoneguard/internal/wire"
)

// TXT is a multi-string text record (RFC 1035 §3.3.14): one length-prefixed
// character-string per input quoted string, each ≤ 255 bytes (spec §4.3).
type TXT struct {
	Cls     protocol.Class
	Strings [][]byte
}

func (r *TXT) Type() protocol.RRType { return protocol.TypeTXT }
func (r *TXT) Class() protocol.Class { return r.Cls }

// HINFO is a two-string host-info record (RFC 1035 §3.3.2): CPU then OS.
type HINFO struct {
	Cls protocol.Class
	CPU []byte
	OS  []byte
}

func (r *HINFO) Type() protocol.RRType { return protocol.TypeHINFO }
func (r *HINFO) Class() protocol.Class { return r.Cls }

// MINFO is a mailbox-info record (RFC 1035 §3.3.7): responsible-mailbox then
// error-mailbox names, neither compression-eligible.
type MINFO struct {
	Cls     protocol.Class
	RMailbx wire.Name
	EMailbx wire.Name
}

func (r *MINFO) Type() protocol.RRType { return protocol.TypeMINFO }
func (r *MINFO) Class() protocol.Class { return r.Cls }

// RP is a responsible-person record (RFC 1183 §2.2): mailbox then
// text-reference names, neither compression-eligible.
type RP struct {
	Cls     protocol.Class
	Mbox    wire.Name
	TxtDname wire.Name
}

func (r *RP) Type() protocol.RRType { return protocol.TypeRP }
func (r *RP) Class() protocol.Class { return r.Cls }

func init() {
	register(protocol.TypeTXT, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) == 0 {
				return nil, minFieldCountError(protocol.TypeTXT, 1, 0)
			}
			strs := make([][]byte, 0, len(tokens))
			for _, tok := range tokens {
				s, err := unescapeCharString(tok)
				if err != nil {
					return nil, err
				}
				strs = append(strs, s)
			}
			return &TXT{Cls: protocol.ClassIN, Strings: strs}, nil
		},
		toText: func(r Rdata) string {
			t := r.(*TXT)
			parts := make([]string, len(t.Strings))
			for i, s := range t.Strings {
				parts[i] = escapeCharString(s)
			}
			return strings.Join(parts, " ")
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			end := buf.Current() + rdlen
			var strs [][]byte
			for buf.Current() < end {
				s, err := readCharString(buf)
				if err != nil {
					return nil, err
				}
				strs = append(strs, append([]byte{}, s...))
			}
			if buf.Current() != end {
				return nil, &errortypes.WireFormatError{Operation: "parse TXT rdata", Message: "character-strings did not exactly fill RDLENGTH"}
			}
			return &TXT{Cls: protocol.ClassIN, Strings: strs}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			t := r.(*TXT)
			for _, s := range t.Strings {
				if err := writeCharString(buf, s); err != nil {
					return err
				}
			}
			return nil
		},
	})

	register(protocol.TypeHINFO, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 2 {
				return nil, fieldCountError(protocol.TypeHINFO, 2, len(tokens))
			}
			cpu, err := unescapeCharString(tokens[0])
			if err != nil {
				return nil, err
			}
			os, err := unescapeCharString(tokens[1])
			if err != nil {
				return nil, err
			}
			return &HINFO{Cls: protocol.ClassIN, CPU: cpu, OS: os}, nil
		},
		toText: func(r Rdata) string {
			h := r.(*HINFO)
			return escapeCharString(h.CPU) + " " + escapeCharString(h.OS)
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			cpu, err := readCharString(buf)
			if err != nil {
				return nil, err
			}
			os, err := readCharString(buf)
			if err != nil {
				return nil, err
			}
			return &HINFO{Cls: protocol.ClassIN, CPU: append([]byte{}, cpu...), OS: append([]byte{}, os...)}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			h := r.(*HINFO)
			if err := writeCharString(buf, h.CPU); err != nil {
				return err
			}
			return writeCharString(buf, h.OS)
		},
	})

	register(protocol.TypeMINFO, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 2 {
				return nil, fieldCountError(protocol.TypeMINFO, 2, len(tokens))
			}
			r, err := wire.NameFromText(tokens[0], origin, downcase)
			if err != nil {
				return nil, err
			}
			e, err := wire.NameFromText(tokens[1], origin, downcase)
			if err != nil {
				return nil, err
			}
			return &MINFO{Cls: protocol.ClassIN, RMailbx: r, EMailbx: e}, nil
		},
		toText: func(r Rdata) string {
			m := r.(*MINFO)
			return m.RMailbx.String() + " " + m.EMailbx.String()
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			r, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			e, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			return &MINFO{Cls: protocol.ClassIN, RMailbx: r, EMailbx: e}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			m := r.(*MINFO)
			if err := writeName(m.RMailbx, buf, c, false); err != nil {
				return err
			}
			return writeName(m.EMailbx, buf, c, false)
		},
	})

	register(protocol.TypeRP, codec{
		fromText: func(tokens []string, origin wire.Name, downcase bool) (Rdata, error) {
			if len(tokens) != 2 {
				return nil, fieldCountError(protocol.TypeRP, 2, len(tokens))
			}
			mbox, err := wire.NameFromText(tokens[0], origin, downcase)
			if err != nil {
				return nil, err
			}
			txt, err := wire.NameFromText(tokens[1], origin, downcase)
			if err != nil {
				return nil, err
			}
			return &RP{Cls: protocol.ClassIN, Mbox: mbox, TxtDname: txt}, nil
		},
		toText: func(r Rdata) string {
			rp := r.(*RP)
			return rp.Mbox.String() + " " + rp.TxtDname.String()
		},
		fromWire: func(buf *wire.Buffer, rdlen int, downcase bool) (Rdata, error) {
			mbox, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			txt, err := readName(buf, downcase)
			if err != nil {
				return nil, err
			}
			return &RP{Cls: protocol.ClassIN, Mbox: mbox, TxtDname: txt}, nil
		},
		toWire: func(r Rdata, buf *wire.Buffer, c *wire.Compressor) error {
			rp := r.(*RP)
			if err := writeName(rp.Mbox, buf, c, false); err != nil {
				return err
			}
			return writeName(rp.TxtDname, buf, c, false)
		},
	})
}
