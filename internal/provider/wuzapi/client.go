package wuzapi

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/config"
	"github.com/zaphub/zaphub/internal/provider"
	"github.com/zaphub/zaphub/internal/provider/status"
	"github.com/zaphub/zaphub/internal/storage/model"
)

// Client fala com o Wuzapi. Operações de sessão usam o header token com o
// instance_id; o ciclo de vida de usuários exige o token administrativo.
type Client struct {
	baseURL    string
	adminToken string
	hc         *http.Client
	log        *zap.Logger
}

func New(cfg config.ProvidersConfig, hc *http.Client, log *zap.Logger) *Client {
	return &Client{
		baseURL:    cfg.WuzapiURL,
		adminToken: cfg.WuzapiAdmin,
		hc:         hc,
		log:        log,
	}
}

func (c *Client) userHeaders(inst model.Instance) map[string]string {
	return map[string]string{"token": inst.ID}
}

func (c *Client) adminHeaders() map[string]string {
	return map[string]string{"Authorization": c.adminToken}
}

func (c *Client) CreateInstance(ctx context.Context, inst *model.Instance, params provider.CreateParams) (status.Status, error) {
	body := map[string]interface{}{
		"name":   inst.Name,
		"token":  inst.ID,
		"events": "Message",
	}
	if params.WebhookURL != "" {
		body["webhook"] = params.WebhookURL
	}

	st, err := provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/admin/users", c.adminHeaders(), body)
	if err != nil || !st.IsOK() {
		return st, err
	}

	// Proxy é uma chamada à parte, feita antes da primeira conexão
	if params.ProxyURL != "" {
		proxyBody := map[string]interface{}{"proxy_url": params.ProxyURL, "enable": true}
		pst, perr := provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/proxy", c.userHeaders(*inst), proxyBody)
		if perr != nil || !pst.IsOK() {
			return pst, perr
		}
	}

	return st, nil
}

func (c *Client) DeleteInstance(ctx context.Context, inst model.Instance) (status.Status, error) {
	return provider.Do(ctx, c.hc, http.MethodDelete, c.baseURL+"/admin/users/"+inst.ID, c.adminHeaders(), nil)
}

// Connect liga a sessão e agrega o QR code na mesma resposta, para o
// cliente não precisar de uma segunda chamada antes de parear o aparelho.
func (c *Client) Connect(ctx context.Context, inst model.Instance) (status.Status, error) {
	body := map[string]interface{}{
		"Subscribe": []string{"Message"},
		"Immediate": true,
	}
	st, err := provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/session/connect", c.userHeaders(inst), body)
	if err != nil || !st.IsOK() {
		return st, err
	}

	qr, err := provider.Do(ctx, c.hc, http.MethodGet, c.baseURL+"/session/qr", c.userHeaders(inst), nil)
	if err != nil {
		return qr, err
	}

	return status.Merge(st, qr), nil
}

func (c *Client) Logout(ctx context.Context, inst model.Instance) (status.Status, error) {
	return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/session/logout", c.userHeaders(inst), nil)
}

func (c *Client) SendMessage(ctx context.Context, inst model.Instance, msg provider.Message) (status.Status, error) {
	switch msg.Kind {
	case provider.KindText:
		body := map[string]interface{}{"Phone": msg.To, "Body": msg.Content}
		return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/chat/send/text", c.userHeaders(inst), body)

	case provider.KindAudio:
		body := map[string]interface{}{"Phone": msg.To, "Audio": msg.Content}
		return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/chat/send/audio", c.userHeaders(inst), body)

	default:
		body := map[string]interface{}{"Phone": msg.To, "Image": msg.Content}
		if msg.Caption != "" {
			body["Caption"] = msg.Caption
		}
		return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/chat/send/image", c.userHeaders(inst), body)
	}
}

func (c *Client) SetWebhook(ctx context.Context, inst model.Instance, webhookURL string) (status.Status, error) {
	body := map[string]interface{}{"webhookURL": webhookURL}
	return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/webhook", c.userHeaders(inst), body)
}
