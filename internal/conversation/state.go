package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Key identifies one actor's progress in one flow.
type Key struct {
	Actor int64
	Flow  string
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%s", k.Actor, k.Flow)
}

// Fields holds the values collected by a flow's steps.
type Fields map[string]any

// String returns the string stored at key, or "".
func (f Fields) String(key string) string {
	if s, ok := f[key].(string); ok {
		return s
	}
	return ""
}

// Int returns the integer stored at key. Values that went through a JSON
// round trip come back as float64 or json.Number and are converted.
func (f Fields) Int(key string) int {
	switch v := f[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		n, _ := v.Int64()
		return int(n)
	case string:
		n, _ := strconv.Atoi(v)
		return n
	default:
		return 0
	}
}

func (f Fields) clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// State is the persisted position of an actor inside a flow.
type State struct {
	FlowID    string    `json:"flow_id"`
	Step      int       `json:"step"`
	Fields    Fields    `json:"fields"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *State) clone() *State {
	cp := *s
	cp.Fields = s.Fields.clone()
	return &cp
}

// Store persists conversation state. Get returns (nil, nil) when nothing is stored.
type Store interface {
	Get(ctx context.Context, key Key) (*State, error)
	Put(ctx context.Context, key Key, state *State) error
	Delete(ctx context.Context, key Key) error
}
