package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeatSet(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want SeatSet
	}{
		{"json list", `["A1","A2"]`, SeatSet{"A1", "A2"}},
		{"comma form", "A1, A2", SeatSet{"A1", "A2"}},
		{"trailing comma", "B3,", SeatSet{"B3"}},
		{"lower case and duplicates", `["c4","C4"," a1 "]`, SeatSet{"C4", "A1"}},
		{"python repr", "['A1', 'A2']", SeatSet{"A1", "A2"}},
		{"empty", "  ", nil},
		{"empty list", "[]", nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseSeatSet(tc.raw))
		})
	}
}

func TestSeatSet_LegacyAndStructuredAgree(t *testing.T) {
	t.Parallel()

	seats := SeatSet{"B2", "A10", "A2"}
	structured := ParseSeatSet(seats.Encode())
	legacy := ParseSeatSet("B2,A10,A2,")

	assert.Equal(t, structured, legacy)
	assert.True(t, structured.Equal(seats))
	assert.Equal(t, `["B2","A10","A2"]`, seats.Encode())
}

func TestSeatSet_KeyIgnoresOrder(t *testing.T) {
	t.Parallel()

	a := SeatSet{"A2", "A10", "B1", "A1"}
	b := SeatSet{"B1", "A1", "A2", "A10"}
	assert.Equal(t, "A1,A2,A10,B1", a.Key())
	assert.Equal(t, a.Key(), b.Key())
	assert.False(t, a.Equal(SeatSet{"A1", "A2"}))
}

func TestSeatSet_ScanAndValue(t *testing.T) {
	t.Parallel()

	var s SeatSet
	require.NoError(t, s.Scan([]byte("A1,A2")))
	assert.Equal(t, SeatSet{"A1", "A2"}, s)

	require.NoError(t, s.Scan(`["C4"]`))
	assert.Equal(t, SeatSet{"C4"}, s)

	require.NoError(t, s.Scan(nil))
	assert.Nil(t, s)

	assert.Error(t, s.Scan(42))

	v, err := SeatSet{"C4"}.Value()
	require.NoError(t, err)
	assert.Equal(t, `["C4"]`, v)
}

func TestSeatSet_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	var body struct {
		Seats SeatSet `json:"seats"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"seats":["a1","A2"]}`), &body))
	assert.Equal(t, SeatSet{"A1", "A2"}, body.Seats)

	require.NoError(t, json.Unmarshal([]byte(`{"seats":"A1, A2"}`), &body))
	assert.Equal(t, SeatSet{"A1", "A2"}, body.Seats)

	assert.Error(t, json.Unmarshal([]byte(`{"seats":12}`), &body))
}

func TestParseSeatLabel(t *testing.T) {
	t.Parallel()

	row, col, ok := ParseSeatLabel("C12")
	require.True(t, ok)
	assert.Equal(t, 2, row)
	assert.Equal(t, 12, col)
	assert.Equal(t, "C12", SeatLabel(row, col))

	for _, bad := range []string{"", "A", "1A", "A0", "a1", "AA1", "A01", "B+2", "C-1", "A1 ", "A 1", "A1x"} {
		_, _, ok := ParseSeatLabel(bad)
		assert.False(t, ok, bad)
	}
}
