package model

import "time"

// Event is a single scheduled show at a venue.  The seat inventory treats
// events as immutable once created.
//
// Fields:
//  ID          – primary key identifier.
//  VenueID     – venue hosting the event.
//  Name        – display name; several shows may share a name.
//  Type        – free-form category (concert, theatre, ...).
//  Description – optional long text.
//  Image       – optional image URL.
//  Date        – calendar day of the show (UTC midnight).
//  StartTime   – start time of day, "15:04:05".
//  EndTime     – end time of day, "15:04:05".
type Event struct {
    ID          int64     `json:"id"`
    VenueID     int64     `json:"venue_id"`
    VenueName   string    `json:"venue_name,omitempty"`
    Name        string    `json:"name"`
    Type        string    `json:"type,omitempty"`
    Description string    `json:"description,omitempty"`
    Image       string    `json:"image,omitempty"`
    Date        time.Time `json:"date"`
    StartTime   string    `json:"start_time"`
    EndTime     string    `json:"end_time"`
}

// EventGroup bundles the upcoming shows sharing one event name, as the
// public listing presents them.
type EventGroup struct {
    Name         string    `json:"name"`
    Type         string    `json:"type,omitempty"`
    Description  string    `json:"description,omitempty"`
    Image        string    `json:"image,omitempty"`
    EarliestDate time.Time `json:"earliest_date"`
    ShowCount    int       `json:"show_count"`
    Shows        []Event   `json:"shows"`
}
