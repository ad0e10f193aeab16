package webhook

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zaphub/zaphub/internal/storage/model"
)

var (
	// ErrUnsupportedEvent marca categorias que o normalizador não traduz
	// (recibos, presença, histórico). Não é uma falha do payload.
	ErrUnsupportedEvent = errors.New("categoria de evento não suportada")
	// ErrMalformedEvent marca payload sem os campos mínimos de uma mensagem.
	ErrMalformedEvent = errors.New("evento malformado")
)

// Normalize traduz o webhook cru de um fornecedor para o evento canônico.
// O parser é escolhido pelo tipo persistido da instância, nunca por
// inspeção do payload. Em caso de erro o evento retornado é um ERROR
// canônico, pronto para reemissão.
func Normalize(inst model.Instance, raw []byte) (Event, error) {
	switch inst.Type {
	case model.TypeEvolution:
		return normalizeEvolution(inst, raw)
	case model.TypeWuzapi:
		return normalizeWuzapi(inst, raw)
	default:
		return errorEvent(inst, "webhooks do Cloud API não passam pelo normalizador"),
			fmt.Errorf("%w: tipo %s", ErrUnsupportedEvent, inst.Type)
	}
}

type evolutionPayload struct {
	Event    string `json:"event"`
	Instance string `json:"instance"`
	Sender   string `json:"sender"`
	Data     struct {
		Key struct {
			RemoteJid string `json:"remoteJid"`
			FromMe    bool   `json:"fromMe"`
		} `json:"key"`
		Message struct {
			Conversation string `json:"conversation"`
		} `json:"message"`
		MessageTimestamp json.Number `json:"messageTimestamp"`
	} `json:"data"`
}

func normalizeEvolution(inst model.Instance, raw []byte) (Event, error) {
	var p evolutionPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errorEvent(inst, "payload não é JSON"), fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if p.Event != "messages.upsert" {
		return errorEvent(inst, "evento "+p.Event+" não suportado"),
			fmt.Errorf("%w: %s", ErrUnsupportedEvent, p.Event)
	}

	if p.Data.Key.RemoteJid == "" {
		return errorEvent(inst, "evento sem remoteJid"), fmt.Errorf("%w: remoteJid ausente", ErrMalformedEvent)
	}
	if p.Data.Message.Conversation == "" {
		return errorEvent(inst, "evento sem texto de mensagem"), fmt.Errorf("%w: conversation ausente", ErrMalformedEvent)
	}

	return Event{
		EventType:    EventMessage,
		InstanceID:   inst.ID,
		InstanceName: p.Instance,
		Sender:       p.Data.Key.RemoteJid,
		Receiver:     p.Sender,
		FromMe:       p.Data.Key.FromMe,
		Timestamp:    p.Data.MessageTimestamp.String(),
		Message:      p.Data.Message.Conversation,
	}, nil
}

type wuzapiPayload struct {
	Type         string `json:"type"`
	Token        string `json:"token"`
	InstanceName string `json:"instance_name"`
	Event        struct {
		Info struct {
			Sender    string `json:"Sender"`
			Chat      string `json:"Chat"`
			IsFromMe  bool   `json:"IsFromMe"`
			Timestamp string `json:"Timestamp"`
		} `json:"Info"`
		Message struct {
			Conversation string `json:"conversation"`
		} `json:"Message"`
	} `json:"event"`
}

func normalizeWuzapi(inst model.Instance, raw []byte) (Event, error) {
	var p wuzapiPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return errorEvent(inst, "payload não é JSON"), fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	if p.Type != "Message" {
		return errorEvent(inst, "evento "+p.Type+" não suportado"),
			fmt.Errorf("%w: %s", ErrUnsupportedEvent, p.Type)
	}

	if p.Event.Info.Sender == "" {
		return errorEvent(inst, "evento sem remetente"), fmt.Errorf("%w: Sender ausente", ErrMalformedEvent)
	}
	if p.Event.Message.Conversation == "" {
		return errorEvent(inst, "evento sem texto de mensagem"), fmt.Errorf("%w: conversation ausente", ErrMalformedEvent)
	}

	name := p.InstanceName
	if name == "" {
		name = inst.Name
	}

	return Event{
		EventType:    EventMessage,
		InstanceID:   inst.ID,
		InstanceName: name,
		Sender:       p.Event.Info.Sender,
		Receiver:     p.Event.Info.Chat,
		FromMe:       p.Event.Info.IsFromMe,
		Timestamp:    p.Event.Info.Timestamp,
		Message:      p.Event.Message.Conversation,
	}, nil
}

func errorEvent(inst model.Instance, msg string) Event {
	return Event{
		EventType:    EventError,
		InstanceID:   inst.ID,
		InstanceName: inst.Name,
		Message:      msg,
	}
}
