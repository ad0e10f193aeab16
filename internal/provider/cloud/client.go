package cloud

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/config"
	"github.com/zaphub/zaphub/internal/provider"
	"github.com/zaphub/zaphub/internal/provider/status"
	"github.com/zaphub/zaphub/internal/storage/model"
)

const graphBase = "https://graph.facebook.com"

// Client fala com o Cloud API da Meta. Cada instância carrega o próprio
// access_token (bearer) e o phone_number_id atribuído no provisionamento.
type Client struct {
	baseURL string
	version string
	hc      *http.Client
	log     *zap.Logger
}

func New(cfg config.ProvidersConfig, hc *http.Client, log *zap.Logger) *Client {
	return &Client{
		baseURL: graphBase,
		version: cfg.CloudVersion,
		hc:      hc,
		log:     log,
	}
}

// NewWithBaseURL existe para os testes apontarem o cliente a um servidor local.
func NewWithBaseURL(baseURL, version string, hc *http.Client, log *zap.Logger) *Client {
	return &Client{baseURL: baseURL, version: version, hc: hc, log: log}
}

func (c *Client) url(path string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.version, path)
}

func bearer(inst model.Instance) map[string]string {
	return map[string]string{"Authorization": "Bearer " + inst.AccessToken}
}

// CreateInstance é a cadeia de provisionamento: inscreve o app no WABA,
// lista os números e registra o primeiro. O phone_number_id vem em
// data[0].id e é gravado na instância.
func (c *Client) CreateInstance(ctx context.Context, inst *model.Instance, _ provider.CreateParams) (status.Status, error) {
	st, err := provider.Do(ctx, c.hc, http.MethodPost, c.url(inst.WabaID+"/subscribed_apps"), bearer(*inst), nil)
	if err != nil || !st.IsOK() {
		return st, err
	}

	phones, err := provider.Do(ctx, c.hc, http.MethodGet, c.url(inst.WabaID+"/phone_numbers"), bearer(*inst), nil)
	if err != nil || !phones.IsOK() {
		return phones, err
	}

	phoneID, ok := firstPhoneID(phones.Body)
	if !ok {
		return status.Errorf("nenhum número encontrado no WABA %s", inst.WabaID), nil
	}
	inst.PhoneNumberID = phoneID

	reg, err := provider.Do(ctx, c.hc, http.MethodPost, c.url(phoneID+"/register"), bearer(*inst), map[string]interface{}{
		"messaging_product": "whatsapp",
		"pin":               "000000",
	})
	if err != nil || !reg.IsOK() {
		return reg, err
	}

	return phones, nil
}

func firstPhoneID(body map[string]interface{}) (string, bool) {
	data, ok := body["data"].([]interface{})
	if !ok || len(data) == 0 {
		return "", false
	}
	first, ok := data[0].(map[string]interface{})
	if !ok {
		return "", false
	}
	id, ok := first["id"].(string)
	return id, ok && id != ""
}

func (c *Client) DeleteInstance(ctx context.Context, inst model.Instance) (status.Status, error) {
	return provider.Do(ctx, c.hc, http.MethodDelete, c.url(inst.WabaID+"/subscribed_apps"), bearer(inst), nil)
}

// Connect não existe no Cloud API: a sessão é hospedada pela Meta.
func (c *Client) Connect(ctx context.Context, inst model.Instance) (status.Status, error) {
	return status.WithMessage(status.ERR, "operação não suportada pelo Cloud API"), nil
}

func (c *Client) Logout(ctx context.Context, inst model.Instance) (status.Status, error) {
	return status.WithMessage(status.ERR, "operação não suportada pelo Cloud API"), nil
}

func (c *Client) SetWebhook(ctx context.Context, inst model.Instance, url string) (status.Status, error) {
	return status.WithMessage(status.ERR, "webhook do Cloud API é configurado no painel da Meta"), nil
}

func (c *Client) SendMessage(ctx context.Context, inst model.Instance, msg provider.Message) (status.Status, error) {
	body := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                msg.To,
	}

	switch msg.Kind {
	case provider.KindText:
		body["type"] = "text"
		body["text"] = map[string]interface{}{"body": msg.Content}
	case provider.KindAudio:
		body["type"] = "audio"
		body["audio"] = map[string]interface{}{"link": msg.Content}
	default:
		body["type"] = "image"
		img := map[string]interface{}{"link": msg.Content}
		if msg.Caption != "" {
			img["caption"] = msg.Caption
		}
		body["image"] = img
	}

	return provider.Do(ctx, c.hc, http.MethodPost, c.url(inst.PhoneNumberID+"/messages"), bearer(inst), body)
}

func (c *Client) SendTemplate(ctx context.Context, inst model.Instance, tpl provider.Template) (status.Status, error) {
	body := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                tpl.To,
		"type":              "template",
		"template": map[string]interface{}{
			"name":     tpl.Name,
			"language": map[string]interface{}{"code": tpl.Language},
		},
	}
	return provider.Do(ctx, c.hc, http.MethodPost, c.url(inst.PhoneNumberID+"/messages"), bearer(inst), body)
}
