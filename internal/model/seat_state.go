package model

// SeatState is the derived status of one seat for one event.
type SeatState string

const (
    SeatAvailable SeatState = "AVAILABLE"
    SeatExcluded  SeatState = "EXCLUDED"
    SeatLocked    SeatState = "LOCKED"
    SeatBooked    SeatState = "BOOKED"
)
