package byterange

import (
	"strconv"
	"strings"
)

// Pos is an optional byte position. The zero value is None.
type Pos struct {
	value int64
	valid bool
}

// None is the absent position.
var None = Pos{}

// Some returns a present position.
func Some(v int64) Pos {
	return Pos{value: v, valid: true}
}

// Get returns the position and whether it is present.
func (p Pos) Get() (int64, bool) {
	return p.value, p.valid
}

func (p Pos) Valid() bool {
	return p.valid
}

func (p Pos) String() string {
	if !p.valid {
		return "<none>"
	}
	return strconv.FormatInt(p.value, 10)
}

// Range is a parsed "bytes=from-to" value, To is None for "bytes=from-".
type Range struct {
	From int64
	To   Pos
}

// Span is a satisfiable byte span of a resource.
type Span struct {
	Offset int64
	Length int64
}

// ContentRange formats the Content-Range value of the span.
func (s Span) ContentRange(totalLength int64) string {
	return ContentRange(s.Offset, s.Length, totalLength)
}

// Parse parses a Range header value of the form bytes=<from>-<to> or bytes=<from>-.
// The whole value must match, anything else (other units, suffix ranges, multiple
// ranges, whitespace, numbers not fitting in int64) reports false.
// simple parse is better than regex: regexp.MustCompile(`^bytes=(\d+)-(\d+)?$`)
func Parse(header string) (Range, bool) {
	if !strings.HasPrefix(header, rangePrefix) {
		return Range{}, false
	}
	var spec = header[len(rangePrefix):]
	var dash = strings.IndexByte(spec, '-')
	if dash < 0 {
		return Range{}, false
	}
	from, ok := parseDigits(spec[:dash])
	if !ok {
		return Range{}, false
	}
	var r = Range{From: from}
	if rest := spec[dash+1:]; rest != "" {
		to, ok := parseDigits(rest)
		if !ok {
			return Range{}, false
		}
		r.To = Some(to)
	}
	return r, true
}

// parseDigits accepts one or more ASCII digits only, strconv alone would also take a sign.
func parseDigits(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseFrom returns the first byte position of a Range header value.
func ParseFrom(header string) Pos {
	r, ok := Parse(header)
	if !ok {
		return None
	}
	return Some(r.From)
}

// ParseTo returns the last byte position of a Range header value, None when
// the header is malformed or open-ended.
func ParseTo(header string) Pos {
	r, ok := Parse(header)
	if !ok {
		return None
	}
	return r.To
}

// Satisfiable reports whether from and to lie inside [0, totalLength) with to >= from.
func Satisfiable(from, to Pos, totalLength int64) bool {
	f, ok := from.Get()
	if !ok || f < 0 || f >= totalLength {
		return false
	}
	t, ok := to.Get()
	return !ok || (t >= f && t < totalLength)
}

// SatisfiableHeader is Satisfiable for a raw header value. A malformed value
// is reported the same way as an out of bounds one.
func SatisfiableHeader(header string, totalLength int64) bool {
	return Satisfiable(ParseFrom(header), ParseTo(header), totalLength)
}

// Length returns the number of bytes covered by the range, an open-ended
// range runs to the end of the resource.
func Length(from, to Pos, totalLength int64) (int64, bool) {
	if !Satisfiable(from, to, totalLength) {
		return 0, false
	}
	f, _ := from.Get()
	if t, ok := to.Get(); ok {
		return t - f + 1, true
	}
	return totalLength - f, true
}

// ChunkLength is Length capped at chunkSize. A chunkSize <= 0 means no cap.
func ChunkLength(from, to Pos, totalLength, chunkSize int64) (int64, bool) {
	length, ok := Length(from, to, totalLength)
	if !ok {
		return 0, false
	}
	if chunkSize > 0 && length > chunkSize {
		length = chunkSize
	}
	return length, true
}

// Resolve parses and validates a Range header value against totalLength.
func Resolve(header string, totalLength, chunkSize int64) (Span, bool) {
	r, ok := Parse(header)
	if !ok {
		return Span{}, false
	}
	length, ok := ChunkLength(Some(r.From), r.To, totalLength, chunkSize)
	if !ok {
		return Span{}, false
	}
	return Span{Offset: r.From, Length: length}, true
}

// ContentRange formats "bytes <offset>-<offset+length-1>/<totalLength>".
// length is not validated, a zero length yields a last position below offset.
func ContentRange(offset, length, totalLength int64) string {
	var b strings.Builder
	b.Grow(32)
	b.WriteString(UnitBytes)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatInt(offset, 10))
	b.WriteByte('-')
	b.WriteString(strconv.FormatInt(offset+length-1, 10))
	b.WriteByte('/')
	b.WriteString(strconv.FormatInt(totalLength, 10))
	return b.String()
}

// UnsatisfiedContentRange formats "bytes */<totalLength>" for 416 responses.
func UnsatisfiedContentRange(totalLength int64) string {
	return UnitBytes + " */" + strconv.FormatInt(totalLength, 10)
}

// FormatRange formats a Range request value for the inclusive span first-last.
func FormatRange(first, last int64) string {
	return rangePrefix + strconv.FormatInt(first, 10) + "-" + strconv.FormatInt(last, 10)
}

// FormatOpenRange formats a Range request value reading from first to the end.
func FormatOpenRange(first int64) string {
	return rangePrefix + strconv.FormatInt(first, 10) + "-"
}
