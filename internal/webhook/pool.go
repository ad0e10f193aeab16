package webhook

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/pkg/queue"
	"github.com/zaphub/zaphub/internal/storage"
	"github.com/zaphub/zaphub/internal/webhook/delivery"
)

// Pool consome a fila de eventos canônicos e os reemite ao consumidor de
// cada instância. O destino normalmente já vem no evento; eventos antigos
// sem destino (fila Redis sobrevivendo a deploys) caem no lookup do registro.
type Pool struct {
	queue        queue.Queue
	instanceRepo storage.InstanceRepository
	delivery     *delivery.Delivery
	secret       string
	log          *zap.Logger

	numWorkers int
	taskChan   chan *queue.Event
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
}

func NewPool(
	q queue.Queue,
	instanceRepo storage.InstanceRepository,
	del *delivery.Delivery,
	secret string,
	log *zap.Logger,
	numWorkers int,
) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}

	return &Pool{
		queue:        q,
		instanceRepo: instanceRepo,
		delivery:     del,
		secret:       secret,
		log:          log,
		numWorkers:   numWorkers,
		taskChan:     make(chan *queue.Event, numWorkers*2),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.log.Info("webhook pool: iniciando", zap.Int("workers", p.numWorkers))

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.runWorker(i)
	}

	p.wg.Add(1)
	go p.runDispatcher()

	p.log.Info("webhook pool: iniciada com sucesso")
}

func (p *Pool) Stop() {
	p.log.Info("webhook pool: encerrando")
	p.cancel()
	p.wg.Wait()
	close(p.taskChan)
	p.log.Info("webhook pool: encerrada")
}

func (p *Pool) runDispatcher() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		default:
			event, err := p.queue.Dequeue(p.ctx, 1*time.Second)
			if err != nil {
				if p.ctx.Err() != nil {
					return
				}
				p.log.Error("webhook pool: erro ao desenfileirar", zap.Error(err))
				continue
			}

			if event == nil {
				continue
			}

			select {
			case p.taskChan <- event:
			case <-p.ctx.Done():
				return
			case <-time.After(5 * time.Second):
				p.log.Warn("webhook pool: taskChan cheio, descartando evento", zap.String("eventId", event.ID))
			}
		}
	}
}

func (p *Pool) runWorker(id int) {
	defer p.wg.Done()

	p.log.Info("webhook pool: worker iniciado", zap.Int("workerId", id))

	for {
		select {
		case <-p.ctx.Done():
			p.log.Info("webhook pool: worker encerrando", zap.Int("workerId", id))
			return
		case event := <-p.taskChan:
			if event == nil {
				return
			}
			p.processEvent(p.ctx, id, event)
		}
	}
}

func (p *Pool) processEvent(ctx context.Context, workerID int, event *queue.Event) {
	p.log.Debug("webhook pool: processando evento",
		zap.Int("workerId", workerID),
		zap.String("eventId", event.ID),
	)

	destination := event.Destination
	if destination == "" {
		inst, err := p.instanceRepo.GetByID(ctx, event.InstanceID)
		if err != nil {
			p.log.Error("webhook pool: instância não encontrada",
				zap.Int("workerId", workerID),
				zap.String("eventId", event.ID),
				zap.Error(err),
			)
			return
		}
		destination = inst.WebhookURL
	}

	if destination == "" {
		p.log.Warn("webhook pool: instância sem webhook configurado",
			zap.Int("workerId", workerID),
			zap.String("instanceId", event.InstanceID),
		)
		return
	}

	if err := p.delivery.Deliver(ctx, destination, p.secret, event.Payload); err != nil {
		p.log.Error("webhook pool: falha na entrega",
			zap.Int("workerId", workerID),
			zap.String("eventId", event.ID),
			zap.Error(err),
		)
		return
	}

	p.log.Info("webhook pool: evento entregue com sucesso",
		zap.Int("workerId", workerID),
		zap.String("eventId", event.ID),
	)
}
