package seating

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iliyamo/event-seat-inventory/internal/model"
)

// MaxRows is the number of single-letter row names.
const MaxRows = 26

// Topology is the resolved seat grid of a venue.
type Topology struct {
	Rows     int
	Columns  int
	All      model.SeatSet // every grid label, row-major
	Excluded model.SeatSet // grid order
	Open     model.SeatSet // All minus Excluded
}

// Resolve builds the labels of a rows x columns grid and removes the
// excluded ones.  It fails with ErrInvalidTopology instead of returning a
// partial grid.
func Resolve(rows, columns int, excluded []string) (Topology, error) {
	if rows < 1 || rows > MaxRows {
		return Topology{}, fmt.Errorf("%w: rows must be between 1 and %d, got %d", ErrInvalidTopology, MaxRows, rows)
	}
	if columns < 1 {
		return Topology{}, fmt.Errorf("%w: columns must be positive, got %d", ErrInvalidTopology, columns)
	}

	ex := model.SeatSet(excluded).Sorted()
	skip := make(map[string]struct{}, len(ex))
	for _, label := range ex {
		r, c, ok := model.ParseSeatLabel(label)
		if !ok || r >= rows || c > columns || model.SeatLabel(r, c) != label {
			return Topology{}, fmt.Errorf("%w: excluded seat %q is outside the %dx%d grid", ErrInvalidTopology, label, rows, columns)
		}
		skip[label] = struct{}{}
	}

	t := Topology{
		Rows:     rows,
		Columns:  columns,
		All:      make(model.SeatSet, 0, rows*columns),
		Excluded: ex,
		Open:     make(model.SeatSet, 0, rows*columns-len(ex)),
	}
	for r := 0; r < rows; r++ {
		for c := 1; c <= columns; c++ {
			label := model.SeatLabel(r, c)
			t.All = append(t.All, label)
			if _, gone := skip[label]; !gone {
				t.Open = append(t.Open, label)
			}
		}
	}
	return t, nil
}

// InGrid reports whether label names a seat of the grid, excluded or not.
func (t Topology) InGrid(label string) bool {
	r, c, ok := model.ParseSeatLabel(strings.ToUpper(strings.TrimSpace(label)))
	return ok && r < t.Rows && c <= t.Columns
}

// IsExcluded reports whether label is one of the venue's excluded seats.
func (t Topology) IsExcluded(label string) bool {
	return t.Excluded.Contains(label)
}

// ParseGrid reads the stored "<rows>x<cols>" form, e.g. "4x5".
func ParseGrid(s string) (rows, columns int, err error) {
	r, c, ok := strings.Cut(strings.ToLower(strings.TrimSpace(s)), "x")
	if !ok {
		return 0, 0, fmt.Errorf("%w: grid %q is not <rows>x<cols>", ErrInvalidTopology, s)
	}
	rows, err = strconv.Atoi(strings.TrimSpace(r))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: grid %q has bad rows", ErrInvalidTopology, s)
	}
	columns, err = strconv.Atoi(strings.TrimSpace(c))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: grid %q has bad columns", ErrInvalidTopology, s)
	}
	return rows, columns, nil
}

// FormatGrid is the inverse of ParseGrid.
func FormatGrid(rows, columns int) string {
	return strconv.Itoa(rows) + "x" + strconv.Itoa(columns)
}
