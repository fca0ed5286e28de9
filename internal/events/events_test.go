package events

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournal_AppendAndByBuild_RoundTrips(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	require.NoError(t, j.Append(ctx, "b1", TypeBuildStarted, BuildStarted{Trigger: "cli"}))
	require.NoError(t, j.Append(ctx, "b1", TypeBuildCompleted, BuildCompleted{DurationMS: 42, Pages: 17}))
	require.NoError(t, j.Append(ctx, "b2", TypeBuildStarted, BuildStarted{Trigger: "watch"}))

	entries, err := j.ByBuild(ctx, "b1")

	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, TypeBuildStarted, entries[0].Type)
	require.Equal(t, TypeBuildCompleted, entries[1].Type)

	var payload BuildCompleted
	require.NoError(t, json.Unmarshal(entries[1].Payload, &payload))
	require.Equal(t, int64(42), payload.DurationMS)
	require.Equal(t, 17, payload.Pages)
}

func TestJournal_Recent_NewestFirst(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	for _, id := range []string{"b1", "b2", "b3"} {
		require.NoError(t, j.Append(ctx, id, TypeBuildStarted, nil))
	}

	entries, err := j.Recent(ctx, 2)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "b3", entries[0].BuildID)
	require.Equal(t, "b2", entries[1].BuildID)
}

func TestJournal_RecentBuilds_SummarizesPerBuild(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	require.NoError(t, j.Append(ctx, "b1", TypeBuildStarted, nil))
	require.NoError(t, j.Append(ctx, "b1", TypeBuildCompleted, nil))
	require.NoError(t, j.Append(ctx, "b2", TypeBuildStarted, nil))
	require.NoError(t, j.Append(ctx, "b2", TypeBuildFailed, nil))

	builds, err := j.RecentBuilds(ctx, 10)

	require.NoError(t, err)
	require.Len(t, builds, 2)
	require.Equal(t, "b2", builds[0].BuildID)
	require.Equal(t, TypeBuildFailed, builds[0].LastEvent)
	require.Equal(t, "b1", builds[1].BuildID)
	require.Equal(t, TypeBuildCompleted, builds[1].LastEvent)
	require.False(t, builds[0].StartedAt.After(builds[0].FinishedAt))
}

func TestBus_Publish_DeliversInSubscriptionOrder(t *testing.T) {
	b := NewBus(slog.Default())
	var got []string
	b.Subscribe(TypeBuildStarted, func(e Event) error {
		got = append(got, "first")
		return nil
	})
	b.Subscribe(TypeBuildStarted, func(e Event) error {
		got = append(got, "second")
		return nil
	})
	b.Subscribe(TypeBuildCompleted, func(e Event) error {
		got = append(got, "wrong-type")
		return nil
	})

	err := b.Publish(context.Background(), Event{BuildID: "b1", Type: TypeBuildStarted})

	require.NoError(t, err)
	require.Equal(t, []string{"first", "second"}, got)
}

func TestBus_Publish_HandlerErrorStopsDelivery(t *testing.T) {
	b := NewBus(slog.Default())
	boom := errors.New("boom")
	var reached bool
	b.Subscribe(TypeBuildFailed, func(Event) error { return boom })
	b.Subscribe(TypeBuildFailed, func(Event) error { reached = true; return nil })

	err := b.Publish(context.Background(), Event{BuildID: "b1", Type: TypeBuildFailed})

	require.ErrorIs(t, err, boom)
	require.False(t, reached)
}

func TestJournaledBus_Publish_PersistsEvent(t *testing.T) {
	j := openTestJournal(t)
	b := NewJournaledBus(j, slog.Default())

	err := b.Publish(context.Background(), Event{
		BuildID: "b1",
		Type:    TypeLintCompleted,
		Payload: LintCompleted{Errors: 1, Warnings: 2},
	})

	require.NoError(t, err)
	entries, err := j.ByBuild(context.Background(), "b1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, TypeLintCompleted, entries[0].Type)
}
