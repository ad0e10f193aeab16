package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/pkg/response"
	"github.com/zaphub/zaphub/internal/service/dispatcher"
)

type InstanceHandler struct {
	dispatcher *dispatcher.Service
	log        *zap.Logger
}

func NewInstanceHandler(d *dispatcher.Service, log *zap.Logger) *InstanceHandler {
	return &InstanceHandler{dispatcher: d, log: log}
}

func (h *InstanceHandler) Register(r *gin.RouterGroup) {
	r.GET("/instances", h.list)
	r.POST("/instances", h.create)
	r.DELETE("/instances/:id", h.delete)
	r.POST("/instances/:id/connect", h.connect)
	r.GET("/instances/:id/qr.png", h.qrPNG)
	r.POST("/instances/:id/logout", h.logout)
	r.PUT("/instances/:id/webhook", h.setWebhook)
}

func (h *InstanceHandler) create(c *gin.Context) {
	var req dispatcher.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	st, err := h.dispatcher.CreateInstance(c.Request.Context(), req)
	if err != nil {
		respond(c, st, err)
		return
	}
	response.Raw(c, http.StatusCreated, response.Envelope{Status: st.Code, Response: st.Body})
}

func (h *InstanceHandler) list(c *gin.Context) {
	instances, err := h.dispatcher.RetrieveInstances(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"instances": instances})
}

func (h *InstanceHandler) delete(c *gin.Context) {
	st, err := h.dispatcher.DeleteInstance(c.Request.Context(), c.Param("id"))
	respond(c, st, err)
}

func (h *InstanceHandler) connect(c *gin.Context) {
	st, err := h.dispatcher.ConnectInstance(c.Request.Context(), c.Param("id"))
	respond(c, st, err)
}

// qrPNG conecta e devolve o QR como imagem, para colar num <img> sem o
// cliente ter que decodificar o corpo do fornecedor.
func (h *InstanceHandler) qrPNG(c *gin.Context) {
	st, err := h.dispatcher.ConnectInstance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respond(c, st, err)
		return
	}

	payload := qrPayload(st.Body)
	if payload == "" {
		response.ErrorWithMessage(c, http.StatusNotFound, "fornecedor não devolveu QR code")
		return
	}

	png, err := qrcode.Encode(payload, qrcode.Medium, 256)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err)
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

// qrPayload procura o conteúdo do QR nas chaves que cada fornecedor usa.
func qrPayload(body map[string]interface{}) string {
	for _, key := range []string{"code", "QRCode", "qrcode"} {
		switch v := body[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]interface{}:
			if code, ok := v["code"].(string); ok && code != "" {
				return code
			}
		}
	}
	return ""
}

func (h *InstanceHandler) logout(c *gin.Context) {
	st, err := h.dispatcher.LogoutInstance(c.Request.Context(), c.Param("id"))
	respond(c, st, err)
}

type setWebhookRequest struct {
	WebhookURL string `json:"webhook_url" binding:"required"`
}

func (h *InstanceHandler) setWebhook(c *gin.Context) {
	var req setWebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, err)
		return
	}

	st, err := h.dispatcher.SetWebhook(c.Request.Context(), c.Param("id"), req.WebhookURL)
	respond(c, st, err)
}
