package events

import "sync"

// Messenger рассылает события подписчикам одного проекта
type Messenger struct {
	mutex     sync.Mutex
	projectID string
	channels  []chan *Event
}

// NewMessenger создает рассыльщика для проекта
func NewMessenger(projectID string) *Messenger {
	return &Messenger{
		projectID: projectID,
		channels:  []chan *Event{},
	}
}

// Register возвращает новый канал подписки
func (m *Messenger) Register() <-chan *Event {
	m.mutex.Lock()
	channel := make(chan *Event, 16)
	m.channels = append(m.channels, channel)
	m.mutex.Unlock()
	return channel
}

// Unregister убирает канал подписки и закрывает его.
// Возвращает true, когда подписчиков не осталось
func (m *Messenger) Unregister(channel <-chan *Event) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for i, toRemove := range m.channels {
		if channel == toRemove {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			close(toRemove)
			break
		}
	}
	return len(m.channels) == 0
}

// UnregisterAll закрывает все каналы подписки
func (m *Messenger) UnregisterAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, channel := range m.channels {
		close(channel)
	}
	m.channels = nil
}

// SendMessage отправляет событие всем подписчикам без блокировки:
// медленный подписчик теряет событие, а не тормозит запись
func (m *Messenger) SendMessage(message *Event) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for i := range m.channels {
		channel := m.channels[i]
		select {
		case channel <- message:
		default:
		}
	}
}
