package queue

import (
    "os"
    "path/filepath"
    "testing"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestConsumerHandle(t *testing.T) {
    dir := filepath.Join(t.TempDir(), "logs")
    c := &Consumer{Dir: dir, Log: zerolog.Nop()}

    require.NoError(t, c.Handle([]byte(`{"ticket_id":123456,"event_id":7,"username":"alice","seats":["C4","C5"],"booked_at":"2025-03-01T18:00:00Z"}`)))
    require.NoError(t, c.Handle([]byte(`{"ticket_id":654321,"event_id":7,"username":"bob","seats":["A1"],"booked_at":"2025-03-01T18:05:00Z"}`)))

    b, err := os.ReadFile(filepath.Join(dir, "tickets.log"))
    require.NoError(t, err)
    assert.Equal(t,
        "[2025-03-01T18:00:00Z] Ticket booked | ticket_id=123456 | event_id=7 | username=\"alice\" | seats=[C4,C5]\n"+
            "[2025-03-01T18:05:00Z] Ticket booked | ticket_id=654321 | event_id=7 | username=\"bob\" | seats=[A1]\n",
        string(b))
}

func TestConsumerHandleRejectsGarbage(t *testing.T) {
    c := &Consumer{Dir: t.TempDir(), Log: zerolog.Nop()}
    assert.Error(t, c.Handle([]byte("not json")))
}
