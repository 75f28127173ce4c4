package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SeatSet is an ordered list of seat labels such as ["A1", "A2"].  It is
// the unit that locks and tickets carry.  On the storage and wire
// boundary it is always written as a JSON list, but it reads either a
// JSON list or the legacy comma-joined form ("A1, A2,") because older
// rows were stored that way.
type SeatSet []string

// SeatLabel builds the label for a zero-based row index and a 1-based
// column number.  Only single-letter rows (A..Z) exist.
func SeatLabel(rowIdx, col int) string {
	return string(rune('A'+rowIdx)) + strconv.Itoa(col)
}

// ParseSeatLabel splits a label like "C12" into its zero-based row index
// and 1-based column.  Only the canonical form SeatLabel produces is
// accepted: one letter and a positive decimal number without sign or
// leading zeros, so "A01" and "B+2" are not labels.
func ParseSeatLabel(label string) (rowIdx, col int, ok bool) {
	if len(label) < 2 {
		return 0, 0, false
	}
	r := label[0]
	if r < 'A' || r > 'Z' {
		return 0, 0, false
	}
	digits := label[1:]
	if digits[0] == '0' {
		return 0, 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, 0, false
		}
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, 0, false
	}
	return int(r - 'A'), n, true
}

// ParseSeatSet decodes a persisted seat list.  The structured JSON form is
// tried first; anything that does not decode as a JSON string array is
// split on commas.  Empty fragments are dropped, so "B3," yields ["B3"].
func ParseSeatSet(raw string) SeatSet {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return SeatSet(list).Normalize()
	}
	parts := strings.Split(raw, ",")
	out := make(SeatSet, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, " \t\r\n\"'[]")
		if p != "" {
			out = append(out, p)
		}
	}
	return out.Normalize()
}

// Normalize trims and upper-cases every label and removes duplicates and
// blanks while keeping first-seen order.
func (s SeatSet) Normalize() SeatSet {
	if len(s) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(s))
	out := make(SeatSet, 0, len(s))
	for _, l := range s {
		l = strings.ToUpper(strings.TrimSpace(l))
		if l == "" {
			continue
		}
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// Sorted returns a normalized copy ordered by row, then column.  Labels
// that do not parse sort after valid ones, lexically.
func (s SeatSet) Sorted() SeatSet {
	out := s.Normalize()
	sort.SliceStable(out, func(i, j int) bool { return lessLabel(out[i], out[j]) })
	return out
}

// Key is the canonical identity of the set: two sets holding the same
// labels in any order share a key.
func (s SeatSet) Key() string {
	return strings.Join(s.Sorted(), ",")
}

// Equal reports whether both sets hold the same labels.
func (s SeatSet) Equal(other SeatSet) bool {
	return s.Key() == other.Key()
}

// Contains reports whether label is a member of the set.
func (s SeatSet) Contains(label string) bool {
	label = strings.ToUpper(strings.TrimSpace(label))
	for _, l := range s {
		if strings.EqualFold(l, label) {
			return true
		}
	}
	return false
}

// Encode returns the structured JSON form used for every write.
func (s SeatSet) Encode() string {
	if len(s) == 0 {
		return "[]"
	}
	b, _ := json.Marshal([]string(s))
	return string(b)
}

// Value implements driver.Valuer.
func (s SeatSet) Value() (driver.Value, error) {
	return s.Encode(), nil
}

// Scan implements sql.Scanner and accepts both stored encodings.
func (s *SeatSet) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*s = nil
	case []byte:
		*s = ParseSeatSet(string(v))
	case string:
		*s = ParseSeatSet(v)
	default:
		return fmt.Errorf("seat set: unsupported source type %T", src)
	}
	return nil
}

// UnmarshalJSON lets request bodies send either ["A1","A2"] or "A1,A2".
func (s *SeatSet) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	switch {
	case raw == "null":
		*s = nil
		return nil
	case strings.HasPrefix(raw, "["):
		var list []string
		if err := json.Unmarshal(b, &list); err != nil {
			return err
		}
		*s = SeatSet(list).Normalize()
		return nil
	case strings.HasPrefix(raw, `"`):
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = ParseSeatSet(str)
		return nil
	}
	return fmt.Errorf("seat set: expected list or string, got %s", raw)
}

func lessLabel(a, b string) bool {
	ra, ca, okA := ParseSeatLabel(a)
	rb, cb, okB := ParseSeatLabel(b)
	switch {
	case okA && okB:
		if ra != rb {
			return ra < rb
		}
		return ca < cb
	case okA != okB:
		return okA
	}
	return a < b
}
