package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/qiqi-070707/council-ai/internal/models"
	"github.com/qiqi-070707/council-ai/internal/services"
)

type WebSocketHandler struct {
	Service *services.SessionService
	logger  *slog.Logger
}

func NewWebSocketHandler(service *services.SessionService, logger *slog.Logger) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{Service: service, logger: logger}
}

// Register mounts the live playback feed at /ws/:id.
func (h *WebSocketHandler) Register(app fiber.Router) {
	app.Get("/ws/:id", h.WebSocketMiddleware, websocket.New(h.HandleWebSocket))
}

func (h *WebSocketHandler) WebSocketMiddleware(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// conn is the part of a websocket connection a viewer uses.
type conn interface {
	models.Sender
	services.Reader
	Close() error
}

func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	defer func() {
		_ = c.Close()
	}()

	sess, err := h.Service.GetSession(c.Params("id"))
	if err != nil {
		return // session doesn't exist
	}
	h.serve(sess, c)
}

// serve runs one viewer until its connection stops reading. It returns only
// after the write pump has exited, since the connection is recycled once the
// handler returns.
func (h *WebSocketHandler) serve(sess *models.Session, c conn) {
	viewer := models.NewViewer(c, models.DefaultViewerBuffer)
	h.Service.AddViewer(sess, viewer)

	pumped := make(chan struct{})
	go func() {
		defer close(pumped)
		if err := viewer.Pump(); err != nil {
			h.logger.Debug("viewer write failed", "session_id", sess.ID, "viewer_id", viewer.Id, "error", err)
			_ = c.Close()
		}
	}()

	h.Service.LoopCommands(sess, c, viewer)
	h.Service.RemoveViewer(sess, viewer)
	<-pumped
}
