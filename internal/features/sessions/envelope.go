// envelope.go turns a REST-API export into plain sessions.
// The API is not consistent about where it puts the list, so the array is
// searched under several keys, and field names are accepted in camelCase
// and snake_case. Nothing outside this file sees those shapes.

package sessions

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/valyala/fastjson"

	"dreamweaver.app/sleep-bot/internal/common"
)

// envelopeKeys are probed in order when the document is an object.
var envelopeKeys = [][]string{
	{"sessions"},
	{"data"},
	{"items"},
	{"results"},
	{"data", "sessions"},
}

// importNamespace keys IDs derived for sessions that come without a UUID.
var importNamespace = uuid.MustParse("6f1d7c3e-2b5a-4e8f-9c1d-0a7b3e5f9d21")

// DecodeSessions parses an export document into sessions.
// UserID is left zero, the caller assigns the owner.
//
// Accepted shapes:
//
//	[ {...}, {...} ]
//	{"sessions": [...]}  {"data": [...]}  {"items": [...]}  {"results": [...]}
//	{"data": {"sessions": [...]}}
func DecodeSessions(data []byte) ([]SleepSession, error) {
	var p fastjson.Parser
	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse import document: %w", err)
	}

	items, ok := findSessionArray(root)
	if !ok {
		return nil, common.ErrNoSessionArray
	}

	out := make([]SleepSession, 0, len(items))
	for i, item := range items {
		s, err := decodeSession(item)
		if err != nil {
			return nil, fmt.Errorf("session #%d: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func findSessionArray(root *fastjson.Value) ([]*fastjson.Value, bool) {
	switch root.Type() {
	case fastjson.TypeArray:
		items, _ := root.Array()
		return items, true
	case fastjson.TypeObject:
		for _, keys := range envelopeKeys {
			v := root.Get(keys...)
			if v != nil && v.Type() == fastjson.TypeArray {
				items, _ := v.Array()
				return items, true
			}
		}
	}
	return nil, false
}

func decodeSession(v *fastjson.Value) (SleepSession, error) {
	var s SleepSession
	if v.Type() != fastjson.TypeObject {
		return s, fmt.Errorf("expected object, got %s", v.Type())
	}

	createdAt, err := timeField(v, "createdAt", "created_at")
	if err != nil {
		return s, err
	}
	if createdAt == nil {
		return s, fmt.Errorf("createdAt is missing")
	}
	s.CreatedAt = *createdAt
	s.ID = sessionID(stringField(v, "id", "_id"), s.CreatedAt)

	for i, w := range arrayField(v, "wakeUps", "wake_ups") {
		wake, err := decodeWake(w)
		if err != nil {
			return s, fmt.Errorf("wake-up #%d: %w", i, err)
		}
		wake.SessionID = s.ID
		wake.ID = uuid.NewSHA1(s.ID, []byte(fmt.Sprintf("wake-%d", i)))
		if wake.AwakenAt != nil {
			wake.CreatedAt = *wake.AwakenAt
		} else {
			wake.CreatedAt = s.CreatedAt
		}
		s.WakeUps = append(s.WakeUps, wake)
	}
	return s, nil
}

func decodeWake(v *fastjson.Value) (WakeEvent, error) {
	var w WakeEvent
	if v.Type() != fastjson.TypeObject {
		return w, fmt.Errorf("expected object, got %s", v.Type())
	}
	awakenAt, err := timeField(v, "awakenAt", "awaken_at")
	if err != nil {
		return w, err
	}
	w.AwakenAt = awakenAt
	w.Dream = stringField(v, "dream", "dreamText", "dream_text")
	w.Quality = intField(v, "quality", "sleepQuality", "sleep_quality")
	return w, nil
}

// sessionID keeps real UUIDs and derives a stable one otherwise,
// so importing the same export twice does not duplicate sessions.
func sessionID(raw string, createdAt time.Time) uuid.UUID {
	if raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id
		}
		return uuid.NewSHA1(importNamespace, []byte(raw))
	}
	return uuid.NewSHA1(importNamespace, []byte(createdAt.UTC().Format(time.RFC3339Nano)))
}

func field(v *fastjson.Value, names ...string) *fastjson.Value {
	for _, name := range names {
		if f := v.Get(name); f != nil && f.Type() != fastjson.TypeNull {
			return f
		}
	}
	return nil
}

func stringField(v *fastjson.Value, names ...string) string {
	f := field(v, names...)
	if f == nil || f.Type() != fastjson.TypeString {
		return ""
	}
	b, _ := f.StringBytes()
	return string(b)
}

func intField(v *fastjson.Value, names ...string) int {
	f := field(v, names...)
	if f == nil || f.Type() != fastjson.TypeNumber {
		return 0
	}
	n, err := f.Int()
	if err != nil {
		return 0
	}
	return n
}

func arrayField(v *fastjson.Value, names ...string) []*fastjson.Value {
	f := field(v, names...)
	if f == nil || f.Type() != fastjson.TypeArray {
		return nil
	}
	items, _ := f.Array()
	return items
}

// timeField accepts RFC 3339 strings (what JSON.stringify(new Date()) produces)
// and epoch milliseconds.
func timeField(v *fastjson.Value, names ...string) (*time.Time, error) {
	f := field(v, names...)
	if f == nil {
		return nil, nil
	}
	switch f.Type() {
	case fastjson.TypeString:
		b, _ := f.StringBytes()
		t, err := time.Parse(time.RFC3339Nano, string(b))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[0], err)
		}
		return &t, nil
	case fastjson.TypeNumber:
		ms, err := f.Int64()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", names[0], err)
		}
		t := time.UnixMilli(ms).UTC()
		return &t, nil
	default:
		return nil, fmt.Errorf("%s: unexpected %s", names[0], f.Type())
	}
}
