package handler

import (
	"log"
	"net/http"
	"time"

	"github.com/joelosiris11/mainkam/internal/events"
	"github.com/joelosiris11/mainkam/internal/permission"
	"github.com/joelosiris11/mainkam/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Токен уже проверен middleware, происхождение не ограничиваем
	CheckOrigin: func(r *http.Request) bool { return true },
}

type EventsHandler struct {
	accessChecker
	eventBus *events.Manager
}

func NewEventsHandler(
	projectRepo repository.ProjectRepositoryInterface,
	memberRepo repository.MemberRepositoryInterface,
	userRepo repository.UserRepositoryInterface,
	eventBus *events.Manager,
) *EventsHandler {
	return &EventsHandler{
		accessChecker: accessChecker{
			userRepo:    userRepo,
			projectRepo: projectRepo,
			memberRepo:  memberRepo,
		},
		eventBus: eventBus,
	}
}

// Subscribe открывает websocket-подписку на события проекта.
// Каждое изменение данных проекта приходит подписчику отдельным
// JSON-сообщением
// @Summary      Subscribe to project events over websocket
// @Tags         Events
// @Security     BearerAuth
// @Param        id  path  string  true  "Project ID"
// @Success      101
// @Router       /projects/{id}/events [get]
func (h *EventsHandler) Subscribe(c *gin.Context) {
	scope, ok := h.requireProject(c, permission.ActionRead)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade сам отправил ответ с ошибкой
		return
	}
	defer conn.Close()

	projectID := scope.project.ID.String()
	eventChan := h.eventBus.Register(projectID)
	defer h.eventBus.Unregister(projectID, eventChan)

	// Клиент ничего не присылает, но читать нужно, чтобы заметить
	// закрытие соединения и ответы на ping
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-c.Request.Context().Done():
			return
		case event, open := <-eventChan:
			if !open {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Printf("⚠️ Ошибка отправки события подписчику проекта %s: %v", projectID, err)
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
