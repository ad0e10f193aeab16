package storage

import (
	"context"
	"errors"

	"github.com/zaphub/zaphub/internal/storage/model"
)

var ErrNotFound = errors.New("not found")

type InstanceRepository interface {
	Create(ctx context.Context, instance model.Instance) (model.Instance, error)
	GetByID(ctx context.Context, id string) (model.Instance, error)
	List(ctx context.Context) ([]model.Instance, error)
	UpdateWebhookURL(ctx context.Context, id, webhookURL string) error
	UpdateActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

// SessionStatusRepository lê o estado de conexão mantido pelo próprio backend
// (hoje apenas o Evolution persiste isso num banco consultável). O schema é
// do fornecedor, não nosso: toda leitura é best-effort.
type SessionStatusRepository interface {
	ConnectionStatus(ctx context.Context, token string) (string, error)
}
