package evolution

import (
	"context"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/config"
	"github.com/zaphub/zaphub/internal/provider"
	"github.com/zaphub/zaphub/internal/provider/status"
	"github.com/zaphub/zaphub/internal/storage/model"
)

// Client fala com o Evolution API. Autenticação via header apikey com a
// chave global; o token de cada instância é o próprio instance_id, definido
// na criação (é ele que indexa a tabela de sessões do Evolution).
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	log     *zap.Logger
}

func New(cfg config.ProvidersConfig, hc *http.Client, log *zap.Logger) *Client {
	return &Client{
		baseURL: cfg.EvolutionURL,
		apiKey:  cfg.EvolutionToken,
		hc:      hc,
		log:     log,
	}
}

func (c *Client) headers() map[string]string {
	return map[string]string{"apikey": c.apiKey}
}

type createRequest struct {
	InstanceName  string `json:"instanceName"`
	Token         string `json:"token"`
	QRCode        bool   `json:"qrcode"`
	Integration   string `json:"integration"`
	WebhookURL    string `json:"webhookUrl,omitempty"`
	ProxyHost     string `json:"proxyHost,omitempty"`
	ProxyPort     string `json:"proxyPort,omitempty"`
	ProxyProtocol string `json:"proxyProtocol,omitempty"`
	ProxyUsername string `json:"proxyUsername,omitempty"`
	ProxyPassword string `json:"proxyPassword,omitempty"`
}

func (c *Client) CreateInstance(ctx context.Context, inst *model.Instance, params provider.CreateParams) (status.Status, error) {
	body := createRequest{
		InstanceName: inst.Name,
		Token:        inst.ID,
		QRCode:       true,
		Integration:  "WHATSAPP-BAILEYS",
		WebhookURL:   params.WebhookURL,
	}

	if params.ProxyURL != "" {
		u, err := url.Parse(params.ProxyURL)
		if err != nil {
			return status.Errorf("proxy inválido: %v", err), err
		}
		body.ProxyHost = u.Hostname()
		body.ProxyPort = u.Port()
		body.ProxyProtocol = u.Scheme
		if u.User != nil {
			body.ProxyUsername = u.User.Username()
			body.ProxyPassword, _ = u.User.Password()
		}
	}

	return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/instance/create", c.headers(), body)
}

func (c *Client) DeleteInstance(ctx context.Context, inst model.Instance) (status.Status, error) {
	return provider.Do(ctx, c.hc, http.MethodDelete, c.baseURL+"/instance/delete/"+inst.Name, c.headers(), nil)
}

func (c *Client) Connect(ctx context.Context, inst model.Instance) (status.Status, error) {
	return provider.Do(ctx, c.hc, http.MethodGet, c.baseURL+"/instance/connect/"+inst.Name, c.headers(), nil)
}

func (c *Client) Logout(ctx context.Context, inst model.Instance) (status.Status, error) {
	return provider.Do(ctx, c.hc, http.MethodDelete, c.baseURL+"/instance/logout/"+inst.Name, c.headers(), nil)
}

func (c *Client) SendMessage(ctx context.Context, inst model.Instance, msg provider.Message) (status.Status, error) {
	switch msg.Kind {
	case provider.KindText:
		body := map[string]interface{}{"number": msg.To, "text": msg.Content}
		return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/message/sendText/"+inst.Name, c.headers(), body)

	case provider.KindAudio:
		body := map[string]interface{}{"number": msg.To, "audio": msg.Content}
		return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/message/sendWhatsappAudio/"+inst.Name, c.headers(), body)

	default:
		body := map[string]interface{}{
			"number":    msg.To,
			"mediatype": "image",
			"media":     msg.Content,
		}
		if msg.Caption != "" {
			body["caption"] = msg.Caption
		}
		return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/message/sendMedia/"+inst.Name, c.headers(), body)
	}
}

func (c *Client) SetWebhook(ctx context.Context, inst model.Instance, webhookURL string) (status.Status, error) {
	body := map[string]interface{}{
		"webhook": map[string]interface{}{
			"enabled": true,
			"url":     webhookURL,
			"events":  []string{"MESSAGES_UPSERT"},
		},
	}
	return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/webhook/set/"+inst.Name, c.headers(), body)
}

func (c *Client) CreateGroup(ctx context.Context, inst model.Instance, grp provider.Group) (status.Status, error) {
	body := map[string]interface{}{
		"subject":      grp.Subject,
		"participants": grp.Participants,
	}
	return provider.Do(ctx, c.hc, http.MethodPost, c.baseURL+"/group/create/"+inst.Name, c.headers(), body)
}
