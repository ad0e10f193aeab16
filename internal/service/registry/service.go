package registry

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/pkg/crypto"
	"github.com/zaphub/zaphub/internal/storage"
	"github.com/zaphub/zaphub/internal/storage/model"
	"github.com/zaphub/zaphub/internal/storage/postgres"
	"github.com/zaphub/zaphub/internal/storage/sqlite"
)

// Service é o dono da tabela de instâncias. Tokens de acesso são cifrados
// antes de tocar o banco e decifrados na leitura; o resto do sistema só vê
// o valor em claro.
type Service struct {
	repo     storage.InstanceRepository
	sessions storage.SessionStatusRepository
	encKey   string
	log      *zap.Logger
}

func NewService(repo storage.InstanceRepository, sessions storage.SessionStatusRepository, encKey string, log *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		encKey:   encKey,
		log:      log,
	}
}

// FetchInstance busca uma instância. Ausência não é erro: o segundo retorno
// indica se a linha existe.
func (s *Service) FetchInstance(ctx context.Context, id string) (model.Instance, bool, error) {
	inst, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if IsNotFound(err) {
			return model.Instance{}, false, nil
		}
		return model.Instance{}, false, err
	}
	s.decryptToken(&inst)
	return inst, true, nil
}

func (s *Service) InsertInstance(ctx context.Context, inst model.Instance) (model.Instance, error) {
	stored := inst
	if stored.AccessToken != "" {
		enc, err := crypto.EncryptString(stored.AccessToken, s.encKey)
		if err != nil {
			return model.Instance{}, err
		}
		stored.AccessToken = enc
	}

	created, err := s.repo.Create(ctx, stored)
	if err != nil {
		return model.Instance{}, err
	}

	inst.CreatedAt = created.CreatedAt
	inst.UpdatedAt = created.UpdatedAt
	return inst, nil
}

func (s *Service) DeleteInstance(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) RetrieveInstances(ctx context.Context) ([]model.Instance, error) {
	instances, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range instances {
		s.decryptToken(&instances[i])
	}
	return instances, nil
}

func (s *Service) UpdateWebhookURL(ctx context.Context, id, webhookURL string) error {
	return s.repo.UpdateWebhookURL(ctx, id, webhookURL)
}

// IsActive recalcula o status de conexão da instância. WUZAPI e CLOUD são
// sempre consideradas ativas; EVOLUTION cruza com a tabela de sessões do
// próprio Evolution. O valor em cache só é regravado quando muda, e falha na
// consulta secundária degrada para o cache com um aviso.
func (s *Service) IsActive(ctx context.Context, inst model.Instance) bool {
	if inst.Type != model.TypeEvolution {
		return true
	}

	if s.sessions == nil {
		s.log.Warn("banco do Evolution não configurado, usando status em cache",
			zap.String("instance_id", inst.ID),
		)
		return inst.IsActive
	}

	connStatus, err := s.sessions.ConnectionStatus(ctx, inst.ID)
	if err != nil && !IsNotFound(err) {
		s.log.Warn("falha ao consultar status no banco do Evolution",
			zap.String("instance_id", inst.ID),
			zap.Error(err),
		)
		return inst.IsActive
	}

	active := connStatus == "open" || connStatus == "connecting"

	if active != inst.IsActive {
		if err := s.repo.UpdateActive(ctx, inst.ID, active); err != nil {
			s.log.Warn("falha ao atualizar cache de atividade",
				zap.String("instance_id", inst.ID),
				zap.Error(err),
			)
		}
	}

	return active
}

func (s *Service) decryptToken(inst *model.Instance) {
	if inst.AccessToken == "" {
		return
	}
	dec, err := crypto.DecryptString(inst.AccessToken, s.encKey)
	if err != nil {
		s.log.Warn("falha ao decifrar access_token",
			zap.String("instance_id", inst.ID),
			zap.Error(err),
		)
		return
	}
	inst.AccessToken = dec
}

// IsNotFound aceita o sentinela de qualquer driver.
func IsNotFound(err error) bool {
	return errors.Is(err, storage.ErrNotFound) ||
		errors.Is(err, postgres.ErrNotFound) ||
		errors.Is(err, sqlite.ErrNotFound)
}
