package events

import (
	"sync"
)

// Manager управляет рассыльщиками событий по проектам
type Manager struct {
	mutex sync.Mutex

	messengers map[string]*Messenger
}

// NewManager создает пустой менеджер подписок
func NewManager() *Manager {
	return &Manager{
		messengers: make(map[string]*Messenger),
	}
}

// Register подписывает на события проекта
func (m *Manager) Register(projectID string) <-chan *Event {
	m.mutex.Lock()
	messenger, ok := m.messengers[projectID]
	if !ok {
		messenger = NewMessenger(projectID)
		m.messengers[projectID] = messenger
	}
	m.mutex.Unlock()
	return messenger.Register()
}

// Unregister отписывает канал от событий проекта
func (m *Manager) Unregister(projectID string, channel <-chan *Event) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	messenger, ok := m.messengers[projectID]
	if !ok {
		return
	}
	if messenger.Unregister(channel) {
		delete(m.messengers, projectID)
	}
}

// UnregisterAll отписывает всех подписчиков всех проектов
func (m *Manager) UnregisterAll() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, messenger := range m.messengers {
		messenger.UnregisterAll()
	}
	m.messengers = map[string]*Messenger{}
}

// Publish рассылает событие подписчикам проекта
func (m *Manager) Publish(projectID string, message *Event) {
	m.mutex.Lock()
	messenger, ok := m.messengers[projectID]
	m.mutex.Unlock()
	if ok {
		messenger.SendMessage(message)
	}
}
