package usersink

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-dashcompose/pkg/activity"
	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	records []types.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record types.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookRecordsSnapshotSave(t *testing.T) {
	sink := &recordingSink{}
	userID := uuid.New()
	saved := time.Date(2026, 3, 9, 8, 30, 0, 0, time.UTC)

	err := Hook{Sink: sink}.Notify(context.Background(), activity.Event{
		Verb:       " dashboard.snapshot.save ",
		ActorID:    "session-7f3a",
		UserID:     userID.String(),
		ObjectType: "dashboard",
		ObjectID:   "d-42",
		Channel:    "dashboard",
		Metadata:   map[string]any{"folder_id": "f-1", "widgets": 3, "theme": "dark"},
		OccurredAt: saved,
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	require.Len(t, sink.records, 1)
	record := sink.records[0]
	if record.ActorID != uuid.Nil {
		t.Fatalf("expected non-uuid actor to map to uuid.Nil, got %s", record.ActorID)
	}
	assert.Equal(t, userID, record.UserID)
	assert.Equal(t, uuid.Nil, record.TenantID)
	assert.Equal(t, "dashboard.snapshot.save", record.Verb)
	assert.Equal(t, "dashboard", record.ObjectType)
	assert.Equal(t, "d-42", record.ObjectID)
	assert.Equal(t, saved, record.OccurredAt)
	assert.Equal(t, map[string]any{"folder_id": "f-1", "widgets": 3, "theme": "dark"}, record.Data)
}

func TestHookCarriesDefinitionCodeAndRecipients(t *testing.T) {
	sink := &recordingSink{}
	meta := map[string]any{"dashboards": 2}

	err := Hook{Sink: sink}.Notify(context.Background(), activity.Event{
		Verb:           "dashboard.folder.delete",
		ObjectType:     "folder",
		ObjectID:       "f-9",
		DefinitionCode: "folder:delete",
		Recipients:     []string{"ops@example.com"},
		Metadata:       meta,
	})
	require.NoError(t, err)

	record := sink.records[0]
	assert.Equal(t, "folder:delete", record.Data["definition_code"])
	assert.Equal(t, []string{"ops@example.com"}, record.Data["recipients"])
	assert.False(t, record.OccurredAt.IsZero(), "missing timestamps are filled in")
	assert.NotContains(t, meta, "definition_code", "event metadata is not mutated")
}

func TestHookThroughEmitterDefaultsChannel(t *testing.T) {
	sink := &recordingSink{}
	em := activity.NewEmitter(activity.Hooks{Hook{Sink: sink}}, activity.Config{Enabled: true, Channel: "audit"})

	require.NoError(t, em.Emit(context.Background(), activity.Event{Verb: "dashboard.snapshot.save_as", ObjectType: "dashboard", ObjectID: "d-1"}))

	require.Len(t, sink.records, 1)
	assert.Equal(t, "audit", sink.records[0].Channel)
}

func TestHookDropsUnroutableEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	require.NoError(t, hook.Notify(context.Background(), activity.Event{Verb: "  ", ObjectID: "d-1"}))
	require.NoError(t, Hook{}.Notify(context.Background(), activity.Event{Verb: "dashboard.snapshot.save"}))

	if len(sink.records) != 0 {
		t.Fatalf("expected no records, got %d", len(sink.records))
	}
}

func TestHookReturnsSinkErrors(t *testing.T) {
	boom := errors.New("sink down")
	err := Hook{Sink: &recordingSink{err: boom}}.Notify(context.Background(), activity.Event{Verb: "dashboard.folder.create"})
	assert.ErrorIs(t, err, boom)
}
