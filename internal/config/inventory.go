package config

import (
    "strings"
    "time"
)

// Seat guard modes.
const (
    GuardNone   = "none"
    GuardStrict = "strict"
)

// Expiry backends.
const (
    ExpiryMemory = "memory"
    ExpiryRedis  = "redis"
)

// InventoryConfig tunes the seat inventory.
//
//   LOCK_TTL              how long a seat lock hides seats (default 300s)
//   SEAT_GUARD            "none" keeps the best-effort behaviour, "strict"
//                         claims seats in Redis before writing
//   TICKET_ID_RETRIES     fresh ticket ids tried after a collision in strict mode
//   EXPIRY_BACKEND        "memory" or "redis" (shared across instances)
//   EXPIRY_POLL_INTERVAL  how often due lock expiries are checked
type InventoryConfig struct {
    LockTTL            time.Duration
    SeatGuard          string
    TicketIDRetries    int
    ExpiryBackend      string
    ExpiryPollInterval time.Duration
}

func LoadInventoryConfig() InventoryConfig {
    cfg := InventoryConfig{
        LockTTL:            envDur("LOCK_TTL", 300*time.Second),
        SeatGuard:          strings.ToLower(envStr("SEAT_GUARD", GuardNone)),
        TicketIDRetries:    envInt("TICKET_ID_RETRIES", 3),
        ExpiryBackend:      strings.ToLower(envStr("EXPIRY_BACKEND", ExpiryMemory)),
        ExpiryPollInterval: envDur("EXPIRY_POLL_INTERVAL", time.Second),
    }
    if cfg.LockTTL <= 0 { cfg.LockTTL = 300 * time.Second }
    if cfg.SeatGuard != GuardStrict { cfg.SeatGuard = GuardNone }
    if cfg.TicketIDRetries < 0 { cfg.TicketIDRetries = 0 }
    if cfg.ExpiryBackend != ExpiryRedis { cfg.ExpiryBackend = ExpiryMemory }
    if cfg.ExpiryPollInterval <= 0 { cfg.ExpiryPollInterval = time.Second }
    return cfg
}

// Strict reports whether the Redis seat guard is on.
func (c InventoryConfig) Strict() bool { return c.SeatGuard == GuardStrict }
