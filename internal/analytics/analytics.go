package analytics

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CtxKey string

const (
	ctxUserIDKey CtxKey = "analytics_user_id"
)

// Envelope is what we store with every event.
type Envelope struct {
	UserID       int
	SessionID    string
	Platform     string
	AppVersion   string
	DeviceLocale string
}

// FromRequest extracts event envelope fields from request.
// Backend-trustable fields only.
func FromRequest(r *http.Request) Envelope {
	platform := strings.ToLower(strings.TrimSpace(r.Header.Get("X-Platform")))
	switch platform {
	case "ios", "android", "web", "cli":
	default:
		platform = "unknown"
	}

	locale := strings.TrimSpace(r.Header.Get("Accept-Language"))
	if locale == "" {
		locale = strings.TrimSpace(r.Header.Get("X-Device-Locale"))
	}

	env := Envelope{
		SessionID:    strings.TrimSpace(r.Header.Get("X-Session-Id")),
		Platform:     platform,
		AppVersion:   strings.TrimSpace(r.Header.Get("X-App-Version")),
		DeviceLocale: locale,
	}
	if uid, ok := UserIDFromContext(r.Context()); ok {
		env.UserID = uid
	}
	return env
}

func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

func UserIDFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(ctxUserIDKey)
	if v == nil {
		return 0, false
	}
	uid, ok := v.(int)
	return uid, ok
}

// SourceEventKeyFromRequest returns the client idempotency key, if any.
// Duplicate keys are ignored on insert.
func SourceEventKeyFromRequest(r *http.Request) string {
	k := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if k != "" {
		return k
	}
	return strings.TrimSpace(r.Header.Get("X-Source-Event-Key"))
}

// EventKey scopes a client source key to one event name. An empty key stays empty.
func EventKey(sourceKey, eventName string) string {
	if sourceKey == "" {
		return ""
	}
	return sourceKey + ":" + eventName
}

// Recorder writes product events to analytics_events. A nil Recorder is a no-op.
type Recorder struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

func NewRecorder(db *sql.DB, logger *zap.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Track logs one event for the request. Failures are logged and swallowed.
// Never pass raw task text in props. A request may emit several events, so the
// client's idempotency key is scoped by event name.
func (rec *Recorder) Track(r *http.Request, eventName string, props map[string]any) {
	if rec == nil {
		return
	}
	if err := rec.Log(r.Context(), FromRequest(r), eventName, props, EventKey(SourceEventKeyFromRequest(r), eventName)); err != nil {
		rec.logger.Warn("analytics event dropped", zap.String("event", eventName), zap.Error(err))
	}
}

// Log inserts one analytics event.
func (rec *Recorder) Log(ctx context.Context, env Envelope, eventName string, props map[string]any, sourceEventKey string) error {
	if eventName == "" {
		return nil
	}

	if props == nil {
		props = map[string]any{}
	}
	b, err := json.Marshal(props)
	if err != nil {
		return err
	}

	var userID sql.NullInt64
	if env.UserID != 0 {
		userID = sql.NullInt64{Int64: int64(env.UserID), Valid: true}
	} else if uid, ok := UserIDFromContext(ctx); ok {
		userID = sql.NullInt64{Int64: int64(uid), Valid: true}
	}

	_, err = rec.db.ExecContext(ctx, `
		INSERT INTO analytics_events (
			event_id, event_name, event_time,
			user_id, session_id,
			platform, app_version, device_locale,
			source_event_key,
			properties
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (source_event_key) DO NOTHING
	`, uuid.NewString(), eventName, rec.now(),
		userID, nullIfEmpty(env.SessionID),
		env.Platform, env.AppVersion, nullIfEmpty(env.DeviceLocale),
		nullIfEmpty(sourceEventKey),
		string(b),
	)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
