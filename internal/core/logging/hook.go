package logging

import (
	"github.com/rs/zerolog"
)

// contextFields maps context keys to the log field they populate.
var contextFields = []struct {
	key   contextKey
	field string
}{
	{requestIDKey, "request_id"},
	{userIDKey, "user_id"},
}

// ContextHook copies request and user IDs from the event's context onto the
// log line. Events logged without .Ctx are left alone.
type ContextHook struct{}

func (ContextHook) Run(e *zerolog.Event, _ zerolog.Level, _ string) {
	ctx := e.GetCtx()
	if ctx == nil {
		return
	}
	for _, f := range contextFields {
		if v, ok := ctx.Value(f.key).(string); ok && v != "" {
			e.Str(f.field, v)
		}
	}
}
