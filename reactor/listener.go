package reactor

import (
	"github.com/dchest/uniuri"
	"github.com/rs/zerolog"
)

// LogListener is an EventListener emitting structured records. Every opened
// connection gets a short random id stored under ConnIDKey, so that worker and
// reactor records of the same connection can be correlated.
type LogListener struct {
	log zerolog.Logger
}

func NewLogListener(log zerolog.Logger) *LogListener {
	return &LogListener{log: log}
}

func (l *LogListener) ConnectionOpen(conn ServerConnection) {
	id := uniuri.NewLen(8)
	conn.Context().Set(ConnIDKey, id)
	l.log.Debug().Str("conn", id).Msg("connection open")
}

func (l *LogListener) ConnectionClosed(conn ServerConnection) {
	l.log.Debug().Str("conn", l.id(conn)).Msg("connection closed")
}

func (l *LogListener) ConnectionTimeout(conn ServerConnection) {
	l.log.Debug().Str("conn", l.id(conn)).Msg("connection timed out")
}

func (l *LogListener) FatalIOError(err error, conn ServerConnection) {
	l.log.Error().Str("conn", l.id(conn)).Err(err).Msg("fatal I/O error")
}

func (l *LogListener) FatalProtocolError(err error, conn ServerConnection) {
	l.log.Error().Str("conn", l.id(conn)).Err(err).Msg("fatal protocol error")
}

func (l *LogListener) id(conn ServerConnection) string {
	id, _ := conn.Context().Get(ConnIDKey).(string)
	return id
}
