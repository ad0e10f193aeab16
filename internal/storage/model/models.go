package model

import "time"

// InstanceType seleciona qual backend atende a instância. Imutável após a
// criação: todo o roteamento do dispatcher depende desse valor.
type InstanceType string

const (
	TypeEvolution InstanceType = "EVOLUTION"
	TypeWuzapi    InstanceType = "WUZAPI"
	TypeCloud     InstanceType = "CLOUD"
)

// Valid reporta se o tipo é um dos três backends conhecidos.
func (t InstanceType) Valid() bool {
	switch t {
	case TypeEvolution, TypeWuzapi, TypeCloud:
		return true
	}
	return false
}

// Instance é a unidade de identidade de uma linha WhatsApp conectada.
// WabaID, AccessToken e PhoneNumberID só são preenchidos para o tipo CLOUD.
type Instance struct {
	ID            string       `json:"instance_id"`
	Name          string       `json:"name"`
	Type          InstanceType `json:"instance_type"`
	IsActive      bool         `json:"is_active"`
	WebhookURL    string       `json:"webhook_url,omitempty"`
	WabaID        string       `json:"waba_id,omitempty"`
	AccessToken   string       `json:"-"`
	PhoneNumberID string       `json:"phone_number_id,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
