package webhook

// Event é o formato canônico em que todo webhook de fornecedor é reemitido.
// Timestamp fica na representação nativa do fornecedor, sem reparse.
type Event struct {
	EventType    string `json:"event_type"`
	InstanceID   string `json:"instance_id"`
	InstanceName string `json:"instance_name"`
	Sender       string `json:"sender"`
	Receiver     string `json:"receiver"`
	FromMe       bool   `json:"from_me"`
	Timestamp    string `json:"timestamp"`
	Message      string `json:"message"`
}

const (
	EventMessage = "message"
	EventError   = "error"
)

// Map é o payload como vai no corpo da reemissão.
func (e Event) Map() map[string]interface{} {
	return map[string]interface{}{
		"event_type":    e.EventType,
		"instance_id":   e.InstanceID,
		"instance_name": e.InstanceName,
		"sender":        e.Sender,
		"receiver":      e.Receiver,
		"from_me":       e.FromMe,
		"timestamp":     e.Timestamp,
		"message":       e.Message,
	}
}
