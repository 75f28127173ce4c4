package model

// Venue is a place with a rectangular seat grid.  Some grid positions
// are permanently excluded (pillars, aisles, removed seats).  This
// struct corresponds to a row in the `venues` table.
//
// Fields:
//  ID       – primary key identifier.
//  Name     – display name of the venue.
//  Rows     – number of seat rows, lettered A.. (at most 26).
//  Columns  – seats per row, numbered from 1.
//  Excluded – labels that are never sold for any event at this venue.
type Venue struct {
    ID       int64   // venues.id
    Name     string  // venues.name
    Rows     int     // venues.seat_rows
    Columns  int     // venues.seat_cols
    Excluded SeatSet // venues.excluded_seats (JSON or comma list)
}

// VenueTopology is the slice of a venue the seat resolver needs, looked
// up through an event.
type VenueTopology struct {
    Rows     int
    Columns  int
    Excluded SeatSet
}
