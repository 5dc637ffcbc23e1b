package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// UserID records the user identifier under the key "user_id".
// If id is nil, it returns an empty Attr.
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// TaskID records the task identifier under the key "task_id".
// If id is nil, it returns an empty Attr.
func TaskID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("task_id", id)
}

// Email records an email address under the key "email".
func Email(email string) slog.Attr {
	return slog.String("email", email)
}

// EventName records a notification event name under the key "event".
func EventName(name string) slog.Attr {
	return slog.String("event", name)
}

// Component records which service component produced the record.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
