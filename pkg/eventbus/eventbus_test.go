package eventbus_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talentpipe/crm/pkg/eventbus"
)

type testEvent struct {
	Name string
}

func newTestBus() eventbus.EventBus {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return eventbus.NewEventPublisher(logger)
}

func TestPublish_MatchingSubscriber(t *testing.T) {
	t.Parallel()
	bus := newTestBus()

	var got []string
	bus.Subscribe(func(e *testEvent) {
		got = append(got, e.Name)
	})

	bus.Publish(&testEvent{Name: "first"})
	bus.Publish(&testEvent{Name: "second"})

	require.Len(t, got, 2)
	assert.Equal(t, []string{"first", "second"}, got)
}

func TestPublish_NonMatchingSubscriberIgnored(t *testing.T) {
	t.Parallel()
	bus := newTestBus()

	called := false
	bus.Subscribe(func(s string) { called = true })

	bus.Publish(&testEvent{Name: "x"})
	assert.False(t, called)
}

func TestPublish_PanickingHandlerDoesNotPropagate(t *testing.T) {
	t.Parallel()
	bus := newTestBus()

	bus.Subscribe(func(e *testEvent) { panic("boom") })

	assert.NotPanics(t, func() {
		bus.Publish(&testEvent{Name: "x"})
	})
}

func TestUnsubscribeAndClear(t *testing.T) {
	t.Parallel()
	bus := newTestBus()

	handler := func(e *testEvent) {}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	assert.Equal(t, 0, bus.SubscribersCount())

	bus.Subscribe(handler)
	bus.Subscribe(func(e *testEvent) {})
	bus.Clear()
	assert.Equal(t, 0, bus.SubscribersCount())
}

func TestMatchSignature(t *testing.T) {
	t.Parallel()

	assert.True(t, eventbus.MatchSignature(func(e *testEvent) {}, []interface{}{&testEvent{}}))
	assert.False(t, eventbus.MatchSignature(func(e *testEvent) {}, []interface{}{"nope"}))
	assert.False(t, eventbus.MatchSignature(func(a, b *testEvent) {}, []interface{}{&testEvent{}}))
	assert.False(t, eventbus.MatchSignature("not a func", []interface{}{&testEvent{}}))
}
