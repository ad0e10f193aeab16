package queue

import (
	"context"
	"time"
)

// Event é um webhook canônico já normalizado, pronto para entrega.
// Destination é a URL do consumidor configurada na instância de origem.
type Event struct {
	ID          string                 `json:"id"`
	InstanceID  string                 `json:"instanceId"`
	Type        string                 `json:"type"`
	Destination string                 `json:"destination"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"createdAt"`
}

type Queue interface {
	Enqueue(ctx context.Context, event Event) error
	Dequeue(ctx context.Context, timeout time.Duration) (*Event, error)
	Size(ctx context.Context) (int64, error)
	Close() error
}
