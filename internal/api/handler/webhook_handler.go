package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/pkg/queue"
	"github.com/zaphub/zaphub/internal/pkg/response"
	"github.com/zaphub/zaphub/internal/service/registry"
	"github.com/zaphub/zaphub/internal/webhook"
)

// WebhookHandler recebe os callbacks crus dos fornecedores, normaliza e
// enfileira para reemissão. O fornecedor não espera corpo elaborado: a
// resposta serve mais ao operador olhando logs do que à outra ponta.
type WebhookHandler struct {
	registry *registry.Service
	queue    queue.Queue
	log      *zap.Logger
}

func NewWebhookHandler(reg *registry.Service, q queue.Queue, log *zap.Logger) *WebhookHandler {
	return &WebhookHandler{registry: reg, queue: q, log: log}
}

func (h *WebhookHandler) Register(r *gin.RouterGroup) {
	r.POST("/webhooks/:id", h.receive)
}

func (h *WebhookHandler) receive(c *gin.Context) {
	id := c.Param("id")

	inst, found, err := h.registry.FetchInstance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	if !found {
		response.ErrorWithMessage(c, http.StatusNotFound, "instância não encontrada")
		return
	}

	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	event, err := webhook.Normalize(inst, raw)
	if err != nil {
		h.log.Warn("webhook: evento não normalizado",
			zap.String("instance_id", id),
			zap.String("instance_type", string(inst.Type)),
			zap.Error(err),
		)
		if errors.Is(err, webhook.ErrUnsupportedEvent) {
			response.ErrorWithMessage(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		response.ErrorWithMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	if inst.WebhookURL == "" {
		response.ErrorWithMessage(c, http.StatusConflict, "instância sem webhook de destino configurado")
		return
	}

	qe := queue.Event{
		ID:          uuid.NewString(),
		InstanceID:  inst.ID,
		Type:        event.EventType,
		Destination: inst.WebhookURL,
		Payload:     event.Map(),
		CreatedAt:   time.Now(),
	}

	if err := h.queue.Enqueue(c.Request.Context(), qe); err != nil {
		h.log.Error("webhook: falha ao enfileirar evento",
			zap.String("instance_id", id),
			zap.Error(err),
		)
		response.Error(c, http.StatusServiceUnavailable, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"event_id": qe.ID})
}
