package staging

import (
	"context"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"
)

type stageChange struct {
	UserID  string
	ToStage string
}

func TestRecord_LastWriteWinsPerEntity(t *testing.T) {
	b := NewBuffer[string, stageChange]()
	b.Record("u1", stageChange{UserID: "u1", ToStage: "A"})
	b.Record("u1", stageChange{UserID: "u1", ToStage: "B"})

	require.Equal(t, 1, b.Len())
	changes := b.Changes()
	require.Len(t, changes, 1)
	require.Equal(t, stageChange{UserID: "u1", ToStage: "B"}, changes[0])
}

func TestRecord_PreservesFirstSeenOrder(t *testing.T) {
	b := NewBuffer[string, stageChange]()
	b.Record("u1", stageChange{UserID: "u1", ToStage: "A"})
	b.Record("u2", stageChange{UserID: "u2", ToStage: "A"})
	b.Record("u1", stageChange{UserID: "u1", ToStage: "C"})

	changes := b.Changes()
	require.Len(t, changes, 2)
	require.Equal(t, "u1", changes[0].UserID)
	require.Equal(t, "C", changes[0].ToStage)
	require.Equal(t, "u2", changes[1].UserID)
}

func TestSave_EmptyBufferIsNoOp(t *testing.T) {
	b := NewBuffer[string, stageChange]()
	called := false
	report, err := b.Save(context.Background(), func(ctx context.Context, changes []stageChange) (BatchResult[string], error) {
		called = true
		return BatchResult[string]{}, nil
	})
	require.NoError(t, err)
	require.False(t, called, "flush must not run for an empty buffer")
	require.Zero(t, report.Saved)
}

func TestSave_ClearsBufferOnFullSuccess(t *testing.T) {
	b := NewBuffer[string, stageChange]()
	b.Record("u1", stageChange{UserID: "u1", ToStage: "A"})
	b.Record("u2", stageChange{UserID: "u2", ToStage: "B"})

	report, err := b.Save(context.Background(), func(ctx context.Context, changes []stageChange) (BatchResult[string], error) {
		require.Len(t, changes, 2)
		return BatchResult[string]{}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, report.Saved)
	require.Empty(t, report.Failed)
	require.True(t, b.Empty())
}

func TestSave_PartialFailureRetainsFailedEntries(t *testing.T) {
	b := NewBuffer[string, stageChange]()
	b.Record("u1", stageChange{UserID: "u1", ToStage: "A"})
	b.Record("u2", stageChange{UserID: "u2", ToStage: "B"})
	b.Record("u3", stageChange{UserID: "u3", ToStage: "C"})

	report, err := b.Save(context.Background(), func(ctx context.Context, changes []stageChange) (BatchResult[string], error) {
		return BatchResult[string]{Failed: map[string]string{"u2": "stage is full"}}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, report.Saved)
	require.Equal(t, map[string]string{"u2": "stage is full"}, report.Failed)

	require.Equal(t, 1, b.Len())
	remaining := b.Changes()
	require.Equal(t, "u2", remaining[0].UserID)
}

func TestSave_WholeBatchFailureRetainsEverything(t *testing.T) {
	b := NewBuffer[string, stageChange]()
	b.Record("u1", stageChange{UserID: "u1", ToStage: "A"})
	b.Record("u2", stageChange{UserID: "u2", ToStage: "B"})

	flushErr := errors.New("connection refused")
	_, err := b.Save(context.Background(), func(ctx context.Context, changes []stageChange) (BatchResult[string], error) {
		return BatchResult[string]{}, flushErr
	})
	require.ErrorIs(t, err, flushErr)
	require.Equal(t, 2, b.Len(), "nothing committed, nothing lost")
}

func TestSave_RecordDuringFlushOfSameKeyIsRetained(t *testing.T) {
	b := NewBuffer[string, stageChange]()
	b.Record("u1", stageChange{UserID: "u1", ToStage: "A"})

	report, err := b.Save(context.Background(), func(ctx context.Context, changes []stageChange) (BatchResult[string], error) {
		require.Equal(t, "A", changes[0].ToStage)
		// A new edit for the in-flight key lands while the batch is out.
		b.Record("u1", stageChange{UserID: "u1", ToStage: "B"})
		return BatchResult[string]{}, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.Saved)

	// The flushed A round-tripped; the mid-flight B did not and must survive.
	remaining := b.Changes()
	require.Len(t, remaining, 1)
	require.Equal(t, stageChange{UserID: "u1", ToStage: "B"}, remaining[0])
}

func TestSave_RecordDuringFlushOfNewKeyIsRetained(t *testing.T) {
	b := NewBuffer[string, stageChange]()
	b.Record("u1", stageChange{UserID: "u1", ToStage: "A"})

	_, err := b.Save(context.Background(), func(ctx context.Context, changes []stageChange) (BatchResult[string], error) {
		b.Record("u2", stageChange{UserID: "u2", ToStage: "B"})
		return BatchResult[string]{}, nil
	})
	require.NoError(t, err)

	remaining := b.Changes()
	require.Len(t, remaining, 1)
	require.Equal(t, "u2", remaining[0].UserID)
}

func TestUndo_AlwaysYieldsEmptyBuffer(t *testing.T) {
	for _, n := range []int{0, 1, 5, 50} {
		b := NewBuffer[int, stageChange]()
		for i := 0; i < n; i++ {
			b.Record(i, stageChange{ToStage: "A"})
		}
		require.Equal(t, n, b.Undo())
		require.True(t, b.Empty())
	}
}

func TestUndo_ThenRecordStartsFresh(t *testing.T) {
	b := NewBuffer[string, stageChange]()
	b.Record("u1", stageChange{UserID: "u1", ToStage: "A"})
	b.Undo()
	b.Record("u1", stageChange{UserID: "u1", ToStage: "Z"})

	changes := b.Changes()
	require.Len(t, changes, 1)
	require.Equal(t, "Z", changes[0].ToStage)
}
