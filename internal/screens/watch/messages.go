package watch

import (
	"time"

	"github.com/abhisek/quizsolver/internal/session"
)

// sessionEventMsg wraps a progress event sent from the session goroutine.
type sessionEventMsg session.Event

// timerTickMsg is sent every second to update the time budget bar.
type timerTickMsg time.Time
