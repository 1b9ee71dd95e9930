package common

import (
	"context"
	"strconv"
	"strings"
)

// CommonResponse is a lightweight response wrapper used by HTTP handlers.
type CommonResponse struct {
	Code  int         `json:"code"`
	Msg   string      `json:"msg,omitempty"`
	Error string      `json:"error,omitempty"`
	Data  interface{} `json:"data,omitempty"`
}

// ReturnOK creates a HTTP 200 response.
func (CommonResponse) ReturnOK() CommonResponse {
	return CommonResponse{Code: 200}
}

// DefaultActor is recorded as created_by when the request carries no user.
const DefaultActor = "system"

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	userNameKey  contextKey = "user_name"
	requestIDKey contextKey = "request_id"
)

// ContextWithUserID stores user ID into context.
func ContextWithUserID(ctx context.Context, id int) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

// GetUserID retrieves the user ID from context.
func GetUserID(ctx context.Context) (int, bool) {
	v := ctx.Value(userIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	case string:
		id, err := strconv.Atoi(val)
		if err != nil {
			return 0, false
		}
		return id, true
	default:
		return 0, false
	}
}

// ContextWithUserName stores the display name of the caller.
func ContextWithUserName(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userNameKey, strings.TrimSpace(name))
}

// GetUserName retrieves the caller name from context.
func GetUserName(ctx context.Context) string {
	if name, ok := ctx.Value(userNameKey).(string); ok {
		return name
	}
	return ""
}

// Actor returns the audit name for the caller: the user name, else "user:<id>",
// else DefaultActor.
func Actor(ctx context.Context) string {
	if name := GetUserName(ctx); name != "" {
		return name
	}
	if id, ok := GetUserID(ctx); ok {
		return "user:" + strconv.Itoa(id)
	}
	return DefaultActor
}

// ContextWithRequestID stores the request id into context.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetRequestID retrieves the request id from context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}
