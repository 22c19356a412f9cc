package bootstrap

import "context"

type AuditLog struct {
	Action  string
	Message string
	Meta    map[string]any
}

// AuditLogger records operational events that should outlive normal
// request logging (startup, shutdown, configuration changes).
type AuditLogger interface {
	Log(ctx context.Context, entry AuditLog)
}
