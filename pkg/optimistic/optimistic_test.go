package optimistic

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/require"

	"github.com/evaldesk/evaldesk/pkg/notify"
)

type counter struct {
	Count      int
	ServerFlag bool
}

func TestApply_SuccessCommitsOperationResult(t *testing.T) {
	m := New(counter{Count: 0})

	final, err := m.Apply(context.Background(),
		func(c counter) counter { c.Count = 1; return c },
		func(ctx context.Context) (counter, error) {
			return counter{Count: 1, ServerFlag: true}, nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, counter{Count: 1, ServerFlag: true}, final,
		"final state must be the operation's result, not the provisional value")
	require.Equal(t, counter{Count: 1, ServerFlag: true}, m.Snapshot())
	require.False(t, m.Pending())
}

func TestApply_FailureRestoresPreInvocationSnapshot(t *testing.T) {
	sink := notify.NewMemory()
	var cbErr error
	var cbRestored counter

	m := New(counter{Count: 0},
		WithNotifier[counter](sink),
		OnError[counter](func(err error, restored counter) {
			cbErr = err
			cbRestored = restored
		}),
	)

	opErr := errors.New("boom")
	final, err := m.Apply(context.Background(),
		func(c counter) counter { c.Count = 1; return c },
		func(ctx context.Context) (counter, error) {
			return counter{}, opErr
		},
	)
	require.ErrorIs(t, err, opErr)
	require.Equal(t, counter{Count: 0}, final, "rollback must be total")
	require.Equal(t, counter{Count: 0}, m.Snapshot())
	require.ErrorIs(t, cbErr, opErr)
	require.Equal(t, counter{Count: 0}, cbRestored)

	drained := sink.Drain()
	require.Len(t, drained, 1)
	require.Equal(t, notify.KindError, drained[0].Kind)
}

func TestApply_SnapshotIsProvisionalWhilePending(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m := New(counter{Count: 0})

	go func() {
		_, _ = m.Apply(context.Background(),
			func(c counter) counter { c.Count = 1; return c },
			func(ctx context.Context) (counter, error) {
				close(started)
				<-release
				return counter{Count: 1, ServerFlag: true}, nil
			},
		)
	}()

	<-started
	require.True(t, m.Pending())
	require.Equal(t, counter{Count: 1}, m.Snapshot(),
		"provisional value must be published immediately")
	close(release)
}

func TestApply_ConcurrentInvocationsRunOneOperation(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	m := New(counter{Count: 0})

	op := func(ctx context.Context) (counter, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return counter{Count: 5}, nil
	}
	update := func(c counter) counter { c.Count++; return c }

	var wg sync.WaitGroup
	results := make([]counter, 2)
	errs := make([]error, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = m.Apply(context.Background(), update, op)
	}()
	<-started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], errs[1] = m.Apply(context.Background(), update, op)
	}()

	close(release)
	wg.Wait()

	require.EqualValues(t, 1, calls.Load(), "exactly one network call")
	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, counter{Count: 5}, results[i])
	}
}

func TestApply_JoinerSeesJoinedOperationOutcome(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	m := New(counter{Count: 0})

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = m.Apply(context.Background(),
			func(c counter) counter { c.Count = 1; return c },
			func(ctx context.Context) (counter, error) {
				close(started)
				<-release
				return counter{Count: 1, ServerFlag: true}, nil
			},
		)
	}()
	<-started

	joined := make(chan struct{})
	var joinResult counter
	var joinErr error
	go func() {
		defer close(joined)
		joinResult, joinErr = m.Apply(context.Background(),
			func(c counter) counter { c.Count = 2; return c },
			func(ctx context.Context) (counter, error) {
				return counter{}, errors.New("join op must never run")
			},
		)
	}()

	// Let the joiner block on the in-flight call before it completes.
	time.Sleep(10 * time.Millisecond)
	close(release)
	<-firstDone

	// A third invocation fails right after the joined one succeeds. The
	// joiner must still report the outcome of the operation it joined, not
	// whatever ran later.
	laterErr := errors.New("later failure")
	_, err := m.Apply(context.Background(),
		func(c counter) counter { c.Count = 3; return c },
		func(ctx context.Context) (counter, error) {
			return counter{}, laterErr
		},
	)
	require.ErrorIs(t, err, laterErr)

	<-joined
	require.NoError(t, joinErr)
	require.Equal(t, counter{Count: 1, ServerFlag: true}, joinResult)
}

func TestApply_AfterCloseDiscardsResult(t *testing.T) {
	sink := notify.NewMemory()
	release := make(chan struct{})
	started := make(chan struct{})
	m := New(counter{Count: 0}, WithNotifier[counter](sink))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := m.Apply(context.Background(),
			func(c counter) counter { c.Count = 1; return c },
			func(ctx context.Context) (counter, error) {
				close(started)
				<-release
				return counter{Count: 9}, nil
			},
		)
		require.ErrorIs(t, err, ErrClosed)
	}()

	<-started
	m.Close()
	close(release)
	<-done

	require.Empty(t, sink.Drain(), "no notifications after close")

	_, err := m.Apply(context.Background(),
		func(c counter) counter { return c },
		func(ctx context.Context) (counter, error) { return counter{}, nil },
	)
	require.ErrorIs(t, err, ErrClosed)
}

func TestApply_FailureIsTerminalAndRetryable(t *testing.T) {
	m := New(counter{Count: 0})
	attempt := 0
	op := func(ctx context.Context) (counter, error) {
		attempt++
		if attempt == 1 {
			return counter{}, errors.New("transient")
		}
		return counter{Count: 1}, nil
	}
	update := func(c counter) counter { c.Count = 1; return c }

	_, err := m.Apply(context.Background(), update, op)
	require.Error(t, err)
	require.Equal(t, 1, attempt, "no automatic retry")

	final, err := m.Apply(context.Background(), update, op)
	require.NoError(t, err)
	require.Equal(t, counter{Count: 1}, final)
}
