package wire

import (
	"strconv"
	"strings"

	"github.com/joshuafuller/zoneguard/internal/errortypes"
)

const (
	// MaxLabelLength is the maximum length of a single label per RFC 1035 §3.1.
	MaxLabelLength = 63
	// MaxNameLength is the maximum encoded (wire) length of a name per RFC 1035 §3.1.
	MaxNameLength = 255
	// MaxCompressionPointers bounds the number of pointer hops FromWire will
	// follow before declaring a compression loop (spec §4.1).
	MaxCompressionPointers = 128
	// compressionMask identifies the two high bits (0xC0) that mark a
	// compression pointer per RFC 1035 §4.1.4.
	compressionMask = 0xC0
	// pointerOffsetMask extracts the low 14 bits of a compression pointer.
	pointerOffsetMask = 0x3FFF
)

// Name is the canonical representation of a DNS name: an ordered sequence of
// length-prefixed labels, optionally terminated by the empty root label, with
// an offsets table enabling O(labels) prefix/suffix operations (spec §4.1).
//
// raw holds the label sequence in wire form (length byte + label bytes,
// repeated), WITHOUT a compression pointer and WITHOUT the trailing
// zero-length root label for relative names. offsets[i] is the byte position
// within raw of label i's length byte; len(offsets) is the label count.
type Name struct {
	raw      []byte
	offsets  []int
	absolute bool
}

// Root is the zone apex name "." (absolute, zero labels).
var Root = Name{absolute: true}

// NameFromText parses name from master-file text form per spec §6. If name
// does not end in "." it is completed against origin (which must itself be
// absolute, or the root if origin is the zero Name). downcase folds embedded
// ASCII letters to lowercase (used when the caller wants the canonical form
// immediately rather than preserving source case).
//
// Escapes \DDD (three decimal digits) and \c (a literal escaped character)
// are honored per spec §6.
//
// Open-question decision (see DESIGN.md): a name whose text form carries
// trailing whitespace, e.g. ". ", is NOT special-cased. It is rejected as a
// syntax error like any other embedded whitespace, rather than silently
// trimmed. The original BIND9 trace-setup code's tolerance of this input is
// not replicated.
func NameFromText(text string, origin Name, downcase bool) (Name, error) {
	if text == "" {
		return Name{}, &errortypes.ValidationError{Field: "name", Value: text, Message: "empty name"}
	}
	if text == "@" {
		return origin, nil
	}

	absolute := strings.HasSuffix(text, ".")
	body := text
	if absolute {
		body = text[:len(text)-1]
	}

	labels, err := splitEscaped(body)
	if err != nil {
		return Name{}, err
	}

	var raw []byte
	var offsets []int
	for _, lbl := range labels {
		if len(lbl) == 0 {
			return Name{}, &errortypes.ValidationError{Field: "name", Value: text, Message: "empty label (consecutive dots)"}
		}
		if len(lbl) > MaxLabelLength {
			return Name{}, &errortypes.ValidationError{Field: "name", Value: text, Message: "label exceeds 63 bytes per RFC 1035 §3.1"}
		}
		if downcase {
			lbl = string(asciiLower([]byte(lbl)))
		}
		offsets = append(offsets, len(raw))
		raw = append(raw, byte(len(lbl)))
		raw = append(raw, lbl...)
	}

	n := Name{raw: raw, offsets: offsets, absolute: absolute}

	if !absolute && (origin.absolute || len(origin.raw) > 0) {
		n = concatRaw(n, origin)
	}
	// origin being the zero Name (relative, no labels, not absolute) leaves n relative.

	if encodedLen(n) > MaxNameLength {
		return Name{}, &errortypes.ValidationError{Field: "name", Value: text, Message: "encoded name exceeds 255 bytes per RFC 1035 §3.1"}
	}

	return n, nil
}

// splitEscaped splits body on unescaped '.' and resolves \DDD / \c escapes.
func splitEscaped(body string) ([]string, error) {
	var labels []string
	var cur []byte
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\':
			if i+1 >= len(body) {
				return nil, &errortypes.ValidationError{Field: "name", Value: body, Message: "trailing escape character"}
			}
			next := body[i+1]
			if next >= '0' && next <= '9' {
				if i+3 >= len(body) {
					return nil, &errortypes.ValidationError{Field: "name", Value: body, Message: "truncated \\DDD escape"}
				}
				digits := body[i+1 : i+4]
				v, err := strconv.Atoi(digits)
				if err != nil || v > 255 {
					return nil, &errortypes.ValidationError{Field: "name", Value: body, Message: "invalid \\DDD escape"}
				}
				cur = append(cur, byte(v))
				i += 3
			} else {
				cur = append(cur, next)
				i++
			}
		case c == '.':
			labels = append(labels, string(cur))
			cur = nil
		case c == ' ' || c == '\t':
			return nil, &errortypes.ValidationError{Field: "name", Value: body, Message: "unescaped whitespace in name"}
		default:
			cur = append(cur, c)
		}
	}
	labels = append(labels, string(cur))
	return labels, nil
}

func asciiLower(b []byte) []byte {
	out := make([]byte, len(b))
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return out
}

func encodedLen(n Name) int {
	l := len(n.raw)
	if n.absolute {
		l++ // root terminator
	}
	return l
}

// concatRaw appends suffix's labels after n's labels, producing a name whose
// absolute bit is suffix's.
func concatRaw(n, suffix Name) Name {
	base := len(n.raw)
	raw := append(append([]byte{}, n.raw...), suffix.raw...)
	offsets := append([]int{}, n.offsets...)
	for _, o := range suffix.offsets {
		offsets = append(offsets, o+base)
	}
	return Name{raw: raw, offsets: offsets, absolute: suffix.absolute}
}

// Concat returns n with suffix appended (e.g. a relative name joined to an origin).
func Concat(n, suffix Name) Name { return concatRaw(n, suffix) }

// FromWire parses a name starting at offset within msg, honoring 14-bit
// compression pointers with loop detection (spec §4.1). It returns the
// parsed Name and the offset immediately following the name's on-the-wire
// representation at its original position (not the position jumped to).
func FromWire(msg []byte, offset int, downcase bool) (Name, int, error) {
	if offset < 0 || offset >= len(msg) {
		return Name{}, offset, &errortypes.WireFormatError{Operation: "parse name", Offset: offset, Message: "offset out of bounds"}
	}

	var raw []byte
	var offsets []int
	pos := offset
	newOffset := -1
	jumps := 0

	for {
		if pos >= len(msg) {
			return Name{}, offset, &errortypes.WireFormatError{Operation: "parse name", Offset: pos, Message: "unexpected end of message while parsing name"}
		}
		length := msg[pos]

		if length&compressionMask == compressionMask {
			if pos+1 >= len(msg) {
				return Name{}, offset, &errortypes.WireFormatError{Operation: "parse name", Offset: pos, Message: "truncated compression pointer"}
			}
			ptr := int(length&^compressionMask)<<8 | int(msg[pos+1])
			if ptr >= pos {
				return Name{}, offset, &errortypes.WireFormatError{Operation: "parse name", Offset: pos, Message: "compression pointer does not point backwards"}
			}
			if newOffset < 0 {
				newOffset = pos + 2
			}
			pos = ptr
			jumps++
			if jumps > MaxCompressionPointers {
				return Name{}, offset, &errortypes.WireFormatError{Operation: "parse name", Offset: pos, Message: "too many compression jumps (possible loop)"}
			}
			continue
		}

		if length == 0 {
			if newOffset < 0 {
				newOffset = pos + 1
			}
			break
		}

		if length > MaxLabelLength {
			return Name{}, offset, &errortypes.WireFormatError{Operation: "parse name", Offset: pos, Message: "label exceeds 63 bytes"}
		}
		if pos+1+int(length) > len(msg) {
			return Name{}, offset, &errortypes.WireFormatError{Operation: "parse name", Offset: pos, Message: "truncated label"}
		}

		lbl := msg[pos+1 : pos+1+int(length)]
		if downcase {
			lbl = asciiLower(lbl)
		}
		offsets = append(offsets, len(raw))
		raw = append(raw, byte(len(lbl)))
		raw = append(raw, lbl...)

		pos += 1 + int(length)
	}

	if encodedLen(Name{raw: raw, absolute: true}) > MaxNameLength {
		return Name{}, offset, &errortypes.WireFormatError{Operation: "parse name", Offset: offset, Message: "name exceeds 255 bytes"}
	}

	return Name{raw: raw, offsets: offsets, absolute: true}, newOffset, nil
}

// Compressor tracks names already emitted into a message, by their absolute
// byte offset, so subsequent emissions of the same (or a suffix of the same)
// name can be replaced with a pointer. Only offsets < 16384 are usable as
// pointer targets per RFC 1035 §4.1.4.
type Compressor struct {
	offsets map[string]int
}

// NewCompressor returns an empty Compressor.
func NewCompressor() *Compressor { return &Compressor{offsets: map[string]int{}} }

func canonKey(n Name) string { return string(asciiLower(n.raw)) }

// ToWire emits n at the given message offset, consulting and updating c (if
// non-nil) for compression. If a suffix of n was previously recorded, the
// emitted bytes are the distinguishing prefix labels followed by a pointer.
func (n Name) ToWire(buf *Buffer, atOffset int, c *Compressor) error {
	labels := n.offsets
	raw := n.raw

	for i, off := range labels {
		if c != nil {
			suffix := Name{raw: raw[off:], absolute: n.absolute}
			key := canonKey(suffix)
			if target, ok := c.offsets[key]; ok && target < 0x4000 {
				return writePointer(buf, target)
			}
			if atOffset+off < 0x4000 {
				c.offsets[key] = atOffset + off
			}
		}
		length := raw[off]
		if err := buf.WriteUint8(length); err != nil {
			return err
		}
		if err := buf.WriteBytes(raw[off+1 : off+1+int(length)]); err != nil {
			return err
		}
		_ = i
	}

	if n.absolute {
		if c != nil {
			key := canonKey(Name{absolute: true})
			if target, ok := c.offsets[key]; ok && target < 0x4000 {
				return writePointer(buf, target)
			}
			if atOffset+len(raw) < 0x4000 {
				c.offsets[key] = atOffset + len(raw)
			}
		}
		return buf.WriteUint8(0)
	}
	return nil
}

func writePointer(buf *Buffer, target int) error {
	return buf.WriteUint16(uint16(compressionMask<<8) | uint16(target&pointerOffsetMask))
}

// ToWireCanonical emits the canonical (downcased) wire form with no
// compression pointers, used for types where RFC 3597 §4 forbids
// compression and for digest/canonical-form computation (spec §4.3, §6).
func (n Name) ToWireCanonical(buf *Buffer) error {
	lower := n.Lower()
	for _, off := range lower.offsets {
		length := lower.raw[off]
		if err := buf.WriteUint8(length); err != nil {
			return err
		}
		if err := buf.WriteBytes(lower.raw[off+1 : off+1+int(length)]); err != nil {
			return err
		}
	}
	if lower.absolute {
		return buf.WriteUint8(0)
	}
	return nil
}

// Lower returns n with every embedded ASCII letter folded to lowercase.
func (n Name) Lower() Name {
	return Name{raw: asciiLower(n.raw), offsets: n.offsets, absolute: n.absolute}
}

// LabelCount returns the number of labels (excluding the root terminator).
func (n Name) LabelCount() int { return len(n.offsets) }

// IsAbsolute reports whether n is fully qualified (ends at the root).
func (n Name) IsAbsolute() bool { return n.absolute }

// IsWildcard reports whether n's first label is exactly "*" (spec §4.1/§4.5).
func (n Name) IsWildcard() bool {
	if len(n.offsets) == 0 {
		return false
	}
	off := n.offsets[0]
	length := int(n.raw[off])
	return length == 1 && n.raw[off+1] == '*'
}

// Label returns the i-th label's bytes (0 is the leftmost/most-specific label).
func (n Name) Label(i int) []byte {
	off := n.offsets[i]
	length := int(n.raw[off])
	return n.raw[off+1 : off+1+length]
}

// SplitAt returns (prefix, suffix) such that prefix has labelCount labels and
// suffix has the remaining labels plus n's root terminator (spec §4.1
// split-by-labelcount; also used by zonedb's wildcard synthesis, which needs
// "the ancestor at depth k").
func (n Name) SplitAt(labelCount int) (prefix, suffix Name) {
	if labelCount <= 0 {
		return Name{}, n
	}
	if labelCount >= len(n.offsets) {
		return n, Name{absolute: n.absolute && labelCount == len(n.offsets)}
	}
	splitOff := n.offsets[labelCount]
	prefix = Name{raw: n.raw[:splitOff], offsets: n.offsets[:labelCount], absolute: false}
	suffixOffsets := make([]int, len(n.offsets)-labelCount)
	for i, o := range n.offsets[labelCount:] {
		suffixOffsets[i] = o - splitOff
	}
	suffix = Name{raw: n.raw[splitOff:], offsets: suffixOffsets, absolute: n.absolute}
	return prefix, suffix
}

// Parent returns n with its leftmost label removed (the immediate ancestor).
// Calling Parent on the root returns the root.
func (n Name) Parent() Name {
	if len(n.offsets) == 0 {
		return n
	}
	_, suffix := n.SplitAt(1)
	return suffix
}

// IsSubdomainOf reports whether n is equal to or a descendant of other.
func (n Name) IsSubdomainOf(other Name) bool {
	if other.LabelCount() > n.LabelCount() {
		return false
	}
	_, suffix := n.SplitAt(n.LabelCount() - other.LabelCount())
	return Equal(suffix, other)
}

// Equal reports case-insensitive wire equality.
func Equal(a, b Name) bool {
	return Compare(a, b) == 0
}

// Compare implements RFC 4034 §6.1 canonical DNS name ordering: compare
// labels from the root end (rightmost) inward, each label case-folded and
// compared octet-wise, with a name that is a proper prefix of another
// sorting first.
func Compare(a, b Name) int {
	al, bl := a.LabelCount(), b.LabelCount()
	i, j := al-1, bl-1
	for i >= 0 && j >= 0 {
		la, lb := asciiLower(a.Label(i)), asciiLower(b.Label(j))
		if c := compareBytes(la, lb); c != 0 {
			return c
		}
		i--
		j--
	}
	switch {
	case al < bl:
		return -1
	case al > bl:
		return 1
	default:
		return 0
	}
}

func compareBytes(a, b []byte) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	default:
		return 0
	}
}

// Hash returns a case-insensitive FNV-1a hash of n, used to select a node's
// locknum (spec §3, Node).
func (n Name) Hash() uint32 {
	var h uint32 = 2166136261
	for _, c := range n.raw {
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		h ^= uint32(c)
		h *= 16777619
	}
	return h
}

// String renders n in master-file text form, escaping any byte outside
// printable ASCII as \DDD and any of '.', '"', ';', '\\' with a leading
// backslash, per spec §6.
func (n Name) String() string {
	if len(n.offsets) == 0 {
		if n.absolute {
			return "."
		}
		return "@"
	}
	var sb strings.Builder
	for i, off := range n.offsets {
		if i > 0 {
			sb.WriteByte('.')
		}
		length := int(n.raw[off])
		label := n.raw[off+1 : off+1+length]
		writeEscapedLabel(&sb, label)
	}
	if n.absolute {
		sb.WriteByte('.')
	}
	return sb.String()
}

func writeEscapedLabel(sb *strings.Builder, label []byte) {
	for _, c := range label {
		switch {
		case c == '.' || c == '"' || c == ';' || c == '\\':
			sb.WriteByte('\\')
			sb.WriteByte(c)
		case c < 0x20 || c > 0x7e:
			sb.WriteByte('\\')
			sb.WriteString(pad3(c))
		default:
			sb.WriteByte(c)
		}
	}
}

func pad3(c byte) string {
	s := strconv.Itoa(int(c))
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

// RawLen returns the encoded length of n including the root terminator if absolute.
func (n Name) RawLen() int { return encodedLen(n) }
