package response

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/chat-notify/pkg/types"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []types.ScheduledResponse
	err  error
}

func (s *recordingSender) Send(r types.ScheduledResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, r)
	return nil
}

func (s *recordingSender) payloads() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, r := range s.sent {
		out = append(out, r.Payload)
	}
	return out
}

func TestDispatcher_OrdersByDelayThenInput(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, time.Millisecond)
	defer func() { _ = d.Close() }()

	d.Dispatch([]types.ScheduledResponse{
		{DelayTicks: 40, Payload: "late"},
		{DelayTicks: 0, Payload: "first"},
		{DelayTicks: 20, Payload: "middle-1"},
		{DelayTicks: 0, Payload: "second"},
		{DelayTicks: 20, Payload: "middle-2"},
	})

	require.Eventually(t, func() bool { return len(sender.payloads()) == 5 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"first", "second", "middle-1", "middle-2", "late"}, sender.payloads())
	assert.Equal(t, 0, d.Pending())
}

func TestDispatcher_CloseCancelsPending(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, 10*time.Millisecond)

	d.Dispatch([]types.ScheduledResponse{{DelayTicks: 100, Payload: "never"}})
	assert.Equal(t, 1, d.Pending())

	require.NoError(t, d.Close())
	assert.Equal(t, 0, d.Pending())

	d.Dispatch([]types.ScheduledResponse{{DelayTicks: 0, Payload: "after close"}})
	time.Sleep(50 * time.Millisecond)
	assert.Empty(t, sender.payloads())
}

func TestDispatcher_SenderErrorDoesNotStopBatch(t *testing.T) {
	sender := &recordingSender{err: errors.New("boom")}
	d := NewDispatcher(sender, time.Millisecond)
	defer func() { _ = d.Close() }()

	d.Dispatch([]types.ScheduledResponse{{Payload: "a"}, {Payload: "b"}})
	require.Eventually(t, func() bool { return d.Pending() == 0 }, time.Second, 5*time.Millisecond)
}

func TestDispatcher_HandleOutcome(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, time.Millisecond)
	defer func() { _ = d.Close() }()

	d.HandleOutcome(types.TextEvent{Text: "x"}, &types.MatchOutcome{
		Responses: []types.ScheduledResponse{{Payload: "reply"}},
	})

	require.Eventually(t, func() bool { return len(sender.payloads()) == 1 }, time.Second, 5*time.Millisecond)
}

func TestDispatcher_Drain(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, time.Millisecond)
	defer func() { _ = d.Close() }()

	d.Dispatch([]types.ScheduledResponse{{DelayTicks: 5, Payload: "a"}, {DelayTicks: 10, Payload: "b"}})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, d.Drain(ctx))
	assert.Equal(t, []string{"a", "b"}, sender.payloads())
}

func TestDispatcher_DrainAfterClose(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, time.Hour)
	d.Dispatch([]types.ScheduledResponse{{DelayTicks: 1, Payload: "never"}})
	require.NoError(t, d.Close())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, d.Drain(ctx))
}

func TestDispatcher_DrainTimeout(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, time.Hour)
	defer func() { _ = d.Close() }()
	d.Dispatch([]types.ScheduledResponse{{DelayTicks: 1, Payload: "later"}})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, d.Drain(ctx), context.DeadlineExceeded)
}

func TestDispatcher_Delay(t *testing.T) {
	d := NewDispatcher(&recordingSender{}, 0)
	assert.Equal(t, time.Second, d.Delay(20))

	d = NewDispatcher(&recordingSender{}, 10*time.Millisecond)
	assert.Equal(t, 50*time.Millisecond, d.Delay(5))
}

func TestInputSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewInputSender(&buf)

	require.NoError(t, s.Send(types.ScheduledResponse{Kind: types.ResponseMessage, Payload: "hi there"}))
	require.NoError(t, s.Send(types.ScheduledResponse{Kind: types.ResponseCommand, Payload: "spawn"}))
	require.NoError(t, s.Send(types.ScheduledResponse{Kind: types.ResponseCommand, Payload: "/home"}))

	err := s.Send(types.ScheduledResponse{Kind: types.ResponseCommandKeys, Payload: "a-b"})
	assert.ErrorIs(t, err, ErrUnsupportedKind)

	assert.Equal(t, "hi there\r/spawn\r/home\r", buf.String())
}

func TestLogSender(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSender(&buf)

	require.NoError(t, s.Send(types.ScheduledResponse{Kind: types.ResponseCommandKeys, Payload: "a-b", DelayTicks: 3}))
	assert.Equal(t, "[response commandkeys +3t] a-b\n", buf.String())
}
