package codec

import "strings"

type LineKind int

const (
	KindOther LineKind = iota
	KindHeader
	KindField
	KindSeparator
	KindSummary
)

func (k LineKind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindField:
		return "field"
	case KindSeparator:
		return "separator"
	case KindSummary:
		return "summary"
	default:
		return "other"
	}
}

// Line is a classified log line. Timestamp is set for headers, Key and Value
// for fields.
type Line struct {
	Kind      LineKind
	Raw       string
	Timestamp string
	Key       string
	Value     string
}

// Classify tags a single log line. Checks run in a fixed order: summary marker,
// header, separator, field. Summary lines contain a colon and headers contain
// colons in the time part, so both must win over the field rule.
func Classify(raw string) Line {
	s := strings.TrimSpace(raw)
	line := Line{Kind: KindOther, Raw: raw}

	switch {
	case s == "":
		return line
	case strings.HasPrefix(s, SummaryMarker):
		line.Kind = KindSummary
		return line
	case len(s) >= 2 && s[0] == '[' && s[len(s)-1] == ']':
		line.Kind = KindHeader
		line.Timestamp = strings.TrimSpace(s[1 : len(s)-1])
		return line
	case isSeparator(s):
		line.Kind = KindSeparator
		return line
	}

	key, value, ok := strings.Cut(s, ":")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return line
	}
	line.Kind = KindField
	line.Key = key
	line.Value = strings.TrimSpace(value)
	return line
}

func isSeparator(s string) bool {
	if len(s) < 3 {
		return false
	}
	c := s[0]
	if c != '-' && c != '=' {
		return false
	}
	for i := 1; i < len(s); i++ {
		if s[i] != c {
			return false
		}
	}
	return true
}
