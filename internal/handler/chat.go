package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/modex/screening-booking/internal/chat"
)

// Replier answers a chat message.  *chat.Client is the production
// implementation.
type Replier interface {
	Configured() error
	Reply(ctx context.Context, msg string) (string, error)
}

// ChatHandler relays POST /api/chat to the language model.
type ChatHandler struct {
	Relay Replier
}

func NewChatHandler(r Replier) *ChatHandler { return &ChatHandler{Relay: r} }

type chatReq struct {
	Message string `json:"message"`
}

// Chat handles POST /api/chat.
func (h *ChatHandler) Chat(c echo.Context) error {
	if err := h.Relay.Configured(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": err.Error()})
	}
	var req chatReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Message is required."})
	}
	reply, err := h.Relay.Reply(c.Request().Context(), req.Message)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Printf("chat: relay failed: %v", err)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Chat service error. Please try again later."})
	}
	return c.JSON(http.StatusOK, echo.Map{"reply": reply})
}

var _ Replier = (*chat.Client)(nil)
