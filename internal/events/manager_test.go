package events_test

import (
	"testing"

	"github.com/joelosiris11/mainkam/internal/events"

	"github.com/stretchr/testify/assert"
)

func TestManager_PublishReachesProjectSubscribers(t *testing.T) {
	manager := events.NewManager()

	first := manager.Register("project-1")
	second := manager.Register("project-1")
	other := manager.Register("project-2")

	event := &events.Event{Name: events.TaskCreated, ProjectID: "project-1"}
	manager.Publish("project-1", event)

	// Оба подписчика проекта получают событие
	assert.Equal(t, event, <-first)
	assert.Equal(t, event, <-second)

	// Подписчик другого проекта ничего не получает
	select {
	case received := <-other:
		t.Fatalf("unexpected event for project-2: %+v", received)
	default:
	}
}

func TestManager_PublishWithoutSubscribers(t *testing.T) {
	manager := events.NewManager()

	// Публикация в проект без подписчиков не паникует и не блокируется
	manager.Publish("project-1", &events.Event{Name: events.TaskCreated, ProjectID: "project-1"})
}

func TestManager_UnregisterClosesChannel(t *testing.T) {
	manager := events.NewManager()

	channel := manager.Register("project-1")
	manager.Unregister("project-1", channel)

	_, open := <-channel
	assert.False(t, open)

	// После отписки события до канала не доходят
	manager.Publish("project-1", &events.Event{Name: events.TaskUpdated, ProjectID: "project-1"})
}

func TestManager_SlowSubscriberDoesNotBlockPublish(t *testing.T) {
	manager := events.NewManager()

	channel := manager.Register("project-1")

	// Переполняем буфер канала: лишние события отбрасываются,
	// публикация не блокируется
	for i := 0; i < 100; i++ {
		manager.Publish("project-1", &events.Event{Name: events.TaskUpdated, ProjectID: "project-1"})
	}

	received := 0
	for {
		select {
		case <-channel:
			received++
			continue
		default:
		}
		break
	}

	assert.Greater(t, received, 0)
	assert.LessOrEqual(t, received, 16)
}

func TestManager_UnregisterAll(t *testing.T) {
	manager := events.NewManager()

	first := manager.Register("project-1")
	second := manager.Register("project-2")

	manager.UnregisterAll()

	_, open := <-first
	assert.False(t, open)
	_, open = <-second
	assert.False(t, open)
}
