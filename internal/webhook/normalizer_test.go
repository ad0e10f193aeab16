package webhook

import (
	"errors"
	"testing"

	"github.com/zaphub/zaphub/internal/storage/model"
)

func evoInstance() model.Instance {
	return model.Instance{ID: "e1", Name: "vendas", Type: model.TypeEvolution}
}

func wuzInstance() model.Instance {
	return model.Instance{ID: "w1", Name: "suporte", Type: model.TypeWuzapi}
}

func TestNormalizeEvolutionMessage(t *testing.T) {
	raw := []byte(`{
		"event": "messages.upsert",
		"instance": "vendas",
		"sender": "5511000000000@s.whatsapp.net",
		"data": {
			"key": {"remoteJid": "5511999990000@s.whatsapp.net", "fromMe": false, "id": "ABC"},
			"pushName": "Maria",
			"message": {"conversation": "bom dia"},
			"messageTimestamp": 1712345678
		}
	}`)

	ev, err := Normalize(evoInstance(), raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if ev.EventType != EventMessage {
		t.Fatalf("event_type = %s", ev.EventType)
	}
	if ev.Sender != "5511999990000@s.whatsapp.net" {
		t.Fatalf("sender = %s", ev.Sender)
	}
	if ev.Receiver != "5511000000000@s.whatsapp.net" {
		t.Fatalf("receiver = %s", ev.Receiver)
	}
	if ev.FromMe {
		t.Fatal("from_me should be false")
	}
	if ev.Timestamp != "1712345678" {
		t.Fatalf("timestamp = %s (must keep vendor representation)", ev.Timestamp)
	}
	if ev.Message != "bom dia" {
		t.Fatalf("message = %s", ev.Message)
	}
	if ev.InstanceName != "vendas" || ev.InstanceID != "e1" {
		t.Fatalf("instance fields: %+v", ev)
	}
}

func TestNormalizeEvolutionNonMessageEvent(t *testing.T) {
	raw := []byte(`{"event": "presence.update", "instance": "vendas", "data": {}}`)

	ev, err := Normalize(evoInstance(), raw)
	if !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if ev.EventType != EventError {
		t.Fatalf("expected canonical error event, got %s", ev.EventType)
	}
}

func TestNormalizeEvolutionMissingText(t *testing.T) {
	raw := []byte(`{
		"event": "messages.upsert",
		"instance": "vendas",
		"data": {"key": {"remoteJid": "5511@s.whatsapp.net"}, "message": {}}
	}`)

	ev, err := Normalize(evoInstance(), raw)
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected malformed, got %v", err)
	}
	if ev.EventType != EventError {
		t.Fatalf("expected canonical error event, got %s", ev.EventType)
	}
}

func TestNormalizeEvolutionInvalidJSON(t *testing.T) {
	if _, err := Normalize(evoInstance(), []byte("{nope")); !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected malformed, got %v", err)
	}
}

func TestNormalizeWuzapiMessage(t *testing.T) {
	raw := []byte(`{
		"type": "Message",
		"token": "w1",
		"instance_name": "suporte",
		"event": {
			"Info": {
				"Id": "XYZ",
				"Sender": "5511888880000@s.whatsapp.net",
				"Chat": "5511777770000@s.whatsapp.net",
				"IsFromMe": true,
				"Timestamp": "2026-08-30T12:00:00-03:00"
			},
			"Message": {"conversation": "segue o boleto"}
		}
	}`)

	ev, err := Normalize(wuzInstance(), raw)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}

	if ev.Sender != "5511888880000@s.whatsapp.net" || ev.Receiver != "5511777770000@s.whatsapp.net" {
		t.Fatalf("party fields: %+v", ev)
	}
	if !ev.FromMe {
		t.Fatal("from_me should be true")
	}
	if ev.Timestamp != "2026-08-30T12:00:00-03:00" {
		t.Fatalf("timestamp = %s", ev.Timestamp)
	}
	if ev.Message != "segue o boleto" {
		t.Fatalf("message = %s", ev.Message)
	}
	if ev.InstanceName != "suporte" {
		t.Fatalf("instance_name = %s", ev.InstanceName)
	}
}

func TestNormalizeWuzapiNonMessage(t *testing.T) {
	raw := []byte(`{"type": "ReadReceipt", "token": "w1", "event": {}}`)

	if _, err := Normalize(wuzInstance(), raw); !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestNormalizeWuzapiMissingSender(t *testing.T) {
	raw := []byte(`{"type": "Message", "event": {"Info": {}, "Message": {"conversation": "oi"}}}`)

	ev, err := Normalize(wuzInstance(), raw)
	if !errors.Is(err, ErrMalformedEvent) {
		t.Fatalf("expected malformed, got %v", err)
	}
	if ev.InstanceID != "w1" {
		t.Fatalf("error event must carry instance id: %+v", ev)
	}
}

func TestNormalizeCloudNotRouted(t *testing.T) {
	inst := model.Instance{ID: "c1", Type: model.TypeCloud}
	if _, err := Normalize(inst, []byte(`{}`)); !errors.Is(err, ErrUnsupportedEvent) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}
