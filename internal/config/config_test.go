package config

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestLoadInventoryConfig(t *testing.T) {
    t.Run("defaults", func(t *testing.T) {
        cfg := LoadInventoryConfig()
        assert.Equal(t, 300*time.Second, cfg.LockTTL)
        assert.Equal(t, GuardNone, cfg.SeatGuard)
        assert.False(t, cfg.Strict())
        assert.Equal(t, 3, cfg.TicketIDRetries)
        assert.Equal(t, ExpiryMemory, cfg.ExpiryBackend)
        assert.Equal(t, time.Second, cfg.ExpiryPollInterval)
    })

    t.Run("overrides", func(t *testing.T) {
        t.Setenv("LOCK_TTL", "90s")
        t.Setenv("SEAT_GUARD", "STRICT")
        t.Setenv("TICKET_ID_RETRIES", "5")
        t.Setenv("EXPIRY_BACKEND", "redis")
        t.Setenv("EXPIRY_POLL_INTERVAL", "250ms")
        cfg := LoadInventoryConfig()
        assert.Equal(t, 90*time.Second, cfg.LockTTL)
        assert.True(t, cfg.Strict())
        assert.Equal(t, 5, cfg.TicketIDRetries)
        assert.Equal(t, ExpiryRedis, cfg.ExpiryBackend)
        assert.Equal(t, 250*time.Millisecond, cfg.ExpiryPollInterval)
    })

    t.Run("unknown values fall back", func(t *testing.T) {
        t.Setenv("LOCK_TTL", "-1s")
        t.Setenv("SEAT_GUARD", "paranoid")
        t.Setenv("EXPIRY_BACKEND", "kafka")
        cfg := LoadInventoryConfig()
        assert.Equal(t, 300*time.Second, cfg.LockTTL)
        assert.Equal(t, GuardNone, cfg.SeatGuard)
        assert.Equal(t, ExpiryMemory, cfg.ExpiryBackend)
    })
}

func TestLoadRateLimitConfig(t *testing.T) {
    t.Setenv("RATE_LIMIT_BURST", "10")
    t.Setenv("RATE_LIMIT_REFILL_EVERY", "2s")
    cfg := LoadRateLimitConfig()
    assert.Equal(t, 10, cfg.Capacity)
    assert.Equal(t, 1, cfg.RefillTokens)
    assert.Equal(t, 2*time.Second, cfg.RefillInterval)
    assert.GreaterOrEqual(t, cfg.TTL, 10*time.Second)
}

func TestLoadCacheConfig(t *testing.T) {
    t.Setenv("CACHE_METHODS", "get, head")
    t.Setenv("CACHE_TTL", "1m")
    cfg := LoadCacheConfig()
    assert.True(t, cfg.Methods["GET"])
    assert.True(t, cfg.Methods["HEAD"])
    assert.False(t, cfg.Methods["POST"])
    assert.Equal(t, time.Minute, cfg.TTL)
}
