package dashboard

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/goliatone/go-dashcompose/pkg/activity"
)

// ActivityContext captures actor/user/tenant identifiers for activity events.
type ActivityContext struct {
	ActorID  string
	UserID   string
	TenantID string
}

type activityContextKey struct{}

// ContextWithActivity stores activity context on the provided context.
func ContextWithActivity(ctx context.Context, meta ActivityContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, activityContextKey{}, meta)
}

func activityContextFrom(ctx context.Context) ActivityContext {
	if ctx == nil {
		return ActivityContext{}
	}
	if meta, ok := ctx.Value(activityContextKey{}).(ActivityContext); ok {
		return meta
	}
	return ActivityContext{}
}

// activityRecorder emits persistence activity; failures are logged only.
type activityRecorder struct {
	emitter *activity.Emitter
	logger  *log.Logger
}

func (r activityRecorder) record(ctx context.Context, verb, objectType, objectID string, metadata map[string]any) {
	if !r.emitter.Enabled() {
		return
	}
	meta := activityContextFrom(ctx)
	err := r.emitter.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    meta.ActorID,
		UserID:     meta.UserID,
		TenantID:   meta.TenantID,
		ObjectType: objectType,
		ObjectID:   objectID,
		Metadata:   metadata,
	})
	if err != nil && r.logger != nil {
		r.logger.Warn("activity emit failed", "verb", verb, "object_id", objectID, "err", err)
	}
}
