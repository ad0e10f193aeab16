package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/zaphub/zaphub/internal/provider/status"
	"github.com/zaphub/zaphub/internal/storage/model"
)

// Kind é o tipo de conteúdo de uma mensagem de saída.
type Kind string

const (
	KindText  Kind = "text"
	KindAudio Kind = "audio"
	KindImage Kind = "image"
)

func (k Kind) Valid() bool {
	switch k {
	case KindText, KindAudio, KindImage:
		return true
	}
	return false
}

// Message é a requisição de envio já validada pelo dispatcher.
// Content é o texto para KindText e a URL/base64 da mídia para os demais.
type Message struct {
	To      string
	Kind    Kind
	Content string
	Caption string
}

// Template é o envio de template, exclusivo do Cloud API.
type Template struct {
	To       string
	Name     string
	Language string
}

// Group é a criação de grupo, exclusiva do Evolution.
type Group struct {
	Subject      string
	Participants []string
}

// CreateParams são os dados de criação que não ficam persistidos na instância.
type CreateParams struct {
	WebhookURL string
	ProxyURL   string
}

// Client é o contrato comum dos três fornecedores. Toda chamada devolve o
// envelope com o corpo do fornecedor intocado; err não-nulo indica falha de
// transporte ou de montagem, nunca um ERR remoto.
type Client interface {
	CreateInstance(ctx context.Context, inst *model.Instance, params CreateParams) (status.Status, error)
	DeleteInstance(ctx context.Context, inst model.Instance) (status.Status, error)
	Connect(ctx context.Context, inst model.Instance) (status.Status, error)
	Logout(ctx context.Context, inst model.Instance) (status.Status, error)
	SendMessage(ctx context.Context, inst model.Instance, msg Message) (status.Status, error)
	SetWebhook(ctx context.Context, inst model.Instance, url string) (status.Status, error)
}

// TemplateSender é implementado apenas pelo cliente Cloud.
type TemplateSender interface {
	SendTemplate(ctx context.Context, inst model.Instance, tpl Template) (status.Status, error)
}

// GroupCreator é implementado apenas pelo cliente Evolution.
type GroupCreator interface {
	CreateGroup(ctx context.Context, inst model.Instance, grp Group) (status.Status, error)
}

// NewHTTPClient cria o http.Client compartilhado pelos fornecedores.
func NewHTTPClient(timeoutSeconds int) *http.Client {
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	return &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}
}

// Do executa uma chamada JSON a um fornecedor e embrulha a resposta.
func Do(ctx context.Context, hc *http.Client, method, url string, headers map[string]string, body interface{}) (status.Status, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return status.Errorf("montar requisição: %v", err), fmt.Errorf("provider: marshal: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return status.Errorf("montar requisição: %v", err), fmt.Errorf("provider: new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := hc.Do(req)
	if err != nil {
		return status.Errorf("fornecedor inacessível: %v", err), fmt.Errorf("provider: do: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return status.Errorf("ler resposta: %v", err), fmt.Errorf("provider: read body: %w", err)
	}

	return status.FromResponse(resp.StatusCode, raw), nil
}
