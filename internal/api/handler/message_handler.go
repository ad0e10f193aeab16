package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/pkg/response"
	"github.com/zaphub/zaphub/internal/service/dispatcher"
)

type MessageHandler struct {
	dispatcher *dispatcher.Service
	log        *zap.Logger
}

func NewMessageHandler(d *dispatcher.Service, log *zap.Logger) *MessageHandler {
	return &MessageHandler{dispatcher: d, log: log}
}

func (h *MessageHandler) Register(r *gin.RouterGroup) {
	r.POST("/instances/:id/messages", h.send)
	r.POST("/instances/:id/templates", h.sendTemplate)
	r.POST("/instances/:id/groups", h.createGroup)
}

func (h *MessageHandler) send(c *gin.Context) {
	var req dispatcher.MessageInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	st, err := h.dispatcher.SendMessage(c.Request.Context(), c.Param("id"), req)
	respond(c, st, err)
}

func (h *MessageHandler) sendTemplate(c *gin.Context) {
	var req dispatcher.TemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	st, err := h.dispatcher.SendTemplate(c.Request.Context(), c.Param("id"), req)
	respond(c, st, err)
}

func (h *MessageHandler) createGroup(c *gin.Context) {
	var req dispatcher.GroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	st, err := h.dispatcher.CreateGroup(c.Request.Context(), c.Param("id"), req)
	respond(c, st, err)
}
