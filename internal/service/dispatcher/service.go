package dispatcher

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/provider"
	"github.com/zaphub/zaphub/internal/provider/status"
	"github.com/zaphub/zaphub/internal/service/registry"
	"github.com/zaphub/zaphub/internal/storage/model"
)

// Service roteia cada operação para o backend dono da instância. A sequência
// é sempre a mesma: busca no registro, checagem de tipo, checagem de
// atividade quando a operação exige sessão, chamada ao fornecedor e, por fim,
// escrita local. Não há retry em nenhum ponto: a primeira falha encerra.
type Service struct {
	registry *registry.Service
	clients  map[model.InstanceType]provider.Client
	log      *zap.Logger
}

func NewService(reg *registry.Service, clients map[model.InstanceType]provider.Client, log *zap.Logger) *Service {
	return &Service{
		registry: reg,
		clients:  clients,
		log:      log,
	}
}

type CreateInput struct {
	ID          string `json:"instance_id"`
	Name        string `json:"name"`
	Type        string `json:"instance_type"`
	WebhookURL  string `json:"webhook_url"`
	ProxyURL    string `json:"proxy_url"`
	WabaID      string `json:"waba_id"`
	AccessToken string `json:"access_token"`
}

type MessageInput struct {
	To      string `json:"to"`
	Kind    string `json:"kind"`
	Content string `json:"content"`
	Caption string `json:"caption"`
}

type TemplateInput struct {
	To       string `json:"to"`
	Name     string `json:"name"`
	Language string `json:"language"`
}

type GroupInput struct {
	Subject      string   `json:"subject"`
	Participants []string `json:"participants"`
}

func (s *Service) fetch(ctx context.Context, id string) (model.Instance, error) {
	inst, found, err := s.registry.FetchInstance(ctx, id)
	if err != nil {
		return model.Instance{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if !found {
		return model.Instance{}, ErrInstanceNotFound
	}
	return inst, nil
}

func (s *Service) client(typ model.InstanceType) provider.Client {
	return s.clients[typ]
}

// requireActive barra operações que exigem sessão conectada.
func (s *Service) requireActive(ctx context.Context, inst model.Instance) error {
	if !s.registry.IsActive(ctx, inst) {
		return ErrInstanceNotActive
	}
	return nil
}

// vendorResult uniformiza o tratamento do retorno de um cliente: falha de
// transporte e recusa remota viram sentinelas distintas, sempre com o corpo
// do fornecedor preservado.
func vendorResult(st status.Status, err error) (status.Status, error) {
	if err != nil {
		return st, fmt.Errorf("%w: %v", ErrVendorUnreachable, err)
	}
	if !st.IsOK() {
		return st, ErrVendorRejected
	}
	return st, nil
}

// CreateInstance cria a instância no fornecedor primeiro; só com a criação
// remota confirmada a linha entra no registro. Falha do registro depois do
// sucesso remoto é reportada sem compensação: a reexecução da criação é
// idempotente do lado de cá.
func (s *Service) CreateInstance(ctx context.Context, input CreateInput) (status.Status, error) {
	typ := model.InstanceType(input.Type)

	if input.ID == "" || input.Name == "" {
		return status.Errorf("instance_id e name são obrigatórios"), ErrValidation
	}
	if !typ.Valid() {
		return status.Errorf("instance_type inválido: %q", input.Type), ErrValidation
	}
	if typ == model.TypeCloud && (input.WabaID == "" || input.AccessToken == "") {
		return status.Errorf("instâncias CLOUD exigem waba_id e access_token"), ErrValidation
	}

	if _, found, err := s.registry.FetchInstance(ctx, input.ID); err != nil {
		return status.Errorf("consultar registro: %v", err), fmt.Errorf("%w: %v", ErrPersistence, err)
	} else if found {
		return status.Errorf("instância %s já existe", input.ID), ErrValidation
	}

	inst := model.Instance{
		ID:          input.ID,
		Name:        input.Name,
		Type:        typ,
		IsActive:    true,
		WebhookURL:  input.WebhookURL,
		WabaID:      input.WabaID,
		AccessToken: input.AccessToken,
	}

	params := provider.CreateParams{
		WebhookURL: input.WebhookURL,
		ProxyURL:   input.ProxyURL,
	}

	st, err := vendorResult(s.client(typ).CreateInstance(ctx, &inst, params))
	if err != nil {
		return st, err
	}

	if _, err := s.registry.InsertInstance(ctx, inst); err != nil {
		s.log.Error("instância criada no fornecedor mas não persistida",
			zap.String("instance_id", inst.ID),
			zap.String("instance_type", string(inst.Type)),
			zap.Error(err),
		)
		return status.Errorf("persistir instância: %v", err), fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.Info("instância criada",
		zap.String("instance_id", inst.ID),
		zap.String("instance_type", string(inst.Type)),
	)

	return st, nil
}

// DeleteInstance remove no fornecedor primeiro; a linha local só sai depois.
func (s *Service) DeleteInstance(ctx context.Context, id string) (status.Status, error) {
	inst, err := s.fetch(ctx, id)
	if err != nil {
		return status.Errorf("%v", err), err
	}

	st, err := vendorResult(s.client(inst.Type).DeleteInstance(ctx, inst))
	if err != nil {
		return st, err
	}

	if err := s.registry.DeleteInstance(ctx, id); err != nil && !registry.IsNotFound(err) {
		s.log.Error("instância removida no fornecedor mas não no registro",
			zap.String("instance_id", id),
			zap.Error(err),
		)
		return status.Errorf("remover instância: %v", err), fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.log.Info("instância removida", zap.String("instance_id", id))

	return st, nil
}

// ConnectInstance inicia o pareamento. Para WUZAPI o corpo já vem com o QR
// agregado pelo cliente; CLOUD não tem sessão para conectar.
func (s *Service) ConnectInstance(ctx context.Context, id string) (status.Status, error) {
	inst, err := s.fetch(ctx, id)
	if err != nil {
		return status.Errorf("%v", err), err
	}
	if inst.Type == model.TypeCloud {
		return status.Errorf("CLOUD não possui sessão para conectar"), ErrUnsupportedType
	}

	return vendorResult(s.client(inst.Type).Connect(ctx, inst))
}

func (s *Service) LogoutInstance(ctx context.Context, id string) (status.Status, error) {
	inst, err := s.fetch(ctx, id)
	if err != nil {
		return status.Errorf("%v", err), err
	}
	if inst.Type == model.TypeCloud {
		return status.Errorf("CLOUD não possui sessão para desconectar"), ErrUnsupportedType
	}
	if err := s.requireActive(ctx, inst); err != nil {
		return status.Errorf("instância %s não está conectada", id), err
	}

	return vendorResult(s.client(inst.Type).Logout(ctx, inst))
}

func (s *Service) SendMessage(ctx context.Context, id string, input MessageInput) (status.Status, error) {
	inst, err := s.fetch(ctx, id)
	if err != nil {
		return status.Errorf("%v", err), err
	}

	kind := provider.Kind(input.Kind)
	if input.Kind == "" {
		kind = provider.KindText
	}
	if !kind.Valid() {
		return status.Errorf("kind inválido: %q", input.Kind), ErrValidation
	}
	if input.To == "" || input.Content == "" {
		return status.Errorf("to e content são obrigatórios"), ErrValidation
	}

	if err := s.requireActive(ctx, inst); err != nil {
		return status.Errorf("instância %s não está conectada", id), err
	}

	if inst.Type == model.TypeCloud {
		if inst.PhoneNumberID == "" || inst.AccessToken == "" {
			return status.Errorf("instância CLOUD sem phone_number_id ou access_token"), ErrValidation
		}
	}

	msg := provider.Message{
		To:      input.To,
		Kind:    kind,
		Content: input.Content,
		Caption: input.Caption,
	}

	return vendorResult(s.client(inst.Type).SendMessage(ctx, inst, msg))
}

// SendTemplate é exclusivo do Cloud API.
func (s *Service) SendTemplate(ctx context.Context, id string, input TemplateInput) (status.Status, error) {
	inst, err := s.fetch(ctx, id)
	if err != nil {
		return status.Errorf("%v", err), err
	}
	if inst.Type != model.TypeCloud {
		return status.Errorf("templates são exclusivos do Cloud API"), ErrUnsupportedType
	}
	if input.To == "" || input.Name == "" || input.Language == "" {
		return status.Errorf("to, name e language são obrigatórios"), ErrValidation
	}
	if inst.PhoneNumberID == "" || inst.AccessToken == "" {
		return status.Errorf("instância CLOUD sem phone_number_id ou access_token"), ErrValidation
	}

	sender, ok := s.client(inst.Type).(provider.TemplateSender)
	if !ok {
		return status.Errorf("templates são exclusivos do Cloud API"), ErrUnsupportedType
	}

	tpl := provider.Template{To: input.To, Name: input.Name, Language: input.Language}
	return vendorResult(sender.SendTemplate(ctx, inst, tpl))
}

// SetWebhook configura o destino no fornecedor e persiste a URL local usada
// pelo normalizador na reemissão.
func (s *Service) SetWebhook(ctx context.Context, id, webhookURL string) (status.Status, error) {
	inst, err := s.fetch(ctx, id)
	if err != nil {
		return status.Errorf("%v", err), err
	}
	if inst.Type == model.TypeCloud {
		return status.Errorf("webhook do Cloud API é configurado no painel da Meta"), ErrUnsupportedType
	}
	if webhookURL == "" {
		return status.Errorf("webhook_url é obrigatório"), ErrValidation
	}
	if err := s.requireActive(ctx, inst); err != nil {
		return status.Errorf("instância %s não está conectada", id), err
	}

	st, err := vendorResult(s.client(inst.Type).SetWebhook(ctx, inst, webhookURL))
	if err != nil {
		return st, err
	}

	if err := s.registry.UpdateWebhookURL(ctx, id, webhookURL); err != nil {
		s.log.Error("webhook configurado no fornecedor mas não persistido",
			zap.String("instance_id", id),
			zap.Error(err),
		)
		return status.Errorf("persistir webhook: %v", err), fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	return st, nil
}

// CreateGroup só existe no Evolution. O Wuzapi expõe grupos mas o fluxo não
// foi ligado aqui; Cloud não tem o conceito.
func (s *Service) CreateGroup(ctx context.Context, id string, input GroupInput) (status.Status, error) {
	inst, err := s.fetch(ctx, id)
	if err != nil {
		return status.Errorf("%v", err), err
	}

	switch inst.Type {
	case model.TypeWuzapi:
		return status.Errorf("criação de grupo não implementada para WUZAPI"), ErrUnsupportedType
	case model.TypeCloud:
		return status.Errorf("Cloud API não possui grupos"), ErrUnsupportedType
	}

	if input.Subject == "" || len(input.Participants) == 0 {
		return status.Errorf("subject e participants são obrigatórios"), ErrValidation
	}
	if err := s.requireActive(ctx, inst); err != nil {
		return status.Errorf("instância %s não está conectada", id), err
	}

	creator, ok := s.client(inst.Type).(provider.GroupCreator)
	if !ok {
		return status.Errorf("criação de grupo indisponível"), ErrUnsupportedType
	}

	grp := provider.Group{Subject: input.Subject, Participants: input.Participants}
	return vendorResult(creator.CreateGroup(ctx, inst, grp))
}

// RetrieveInstances lista o registro com o snapshot de atividade recalculado
// por linha. A reconciliação é best-effort: indisponibilidade do banco
// secundário não derruba a listagem.
func (s *Service) RetrieveInstances(ctx context.Context) ([]model.Instance, error) {
	instances, err := s.registry.RetrieveInstances(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	for i := range instances {
		instances[i].IsActive = s.registry.IsActive(ctx, instances[i])
	}

	return instances, nil
}
