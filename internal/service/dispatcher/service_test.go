package dispatcher

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/provider"
	"github.com/zaphub/zaphub/internal/provider/status"
	"github.com/zaphub/zaphub/internal/service/registry"
	"github.com/zaphub/zaphub/internal/storage"
	"github.com/zaphub/zaphub/internal/storage/model"
)

type fakeRepo struct {
	instances map[string]model.Instance
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{instances: make(map[string]model.Instance)}
}

func (f *fakeRepo) Create(ctx context.Context, inst model.Instance) (model.Instance, error) {
	f.instances[inst.ID] = inst
	return inst, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (model.Instance, error) {
	inst, ok := f.instances[id]
	if !ok {
		return model.Instance{}, storage.ErrNotFound
	}
	return inst, nil
}

func (f *fakeRepo) List(ctx context.Context) ([]model.Instance, error) {
	var out []model.Instance
	for _, inst := range f.instances {
		out = append(out, inst)
	}
	return out, nil
}

func (f *fakeRepo) UpdateWebhookURL(ctx context.Context, id, url string) error {
	inst, ok := f.instances[id]
	if !ok {
		return storage.ErrNotFound
	}
	inst.WebhookURL = url
	f.instances[id] = inst
	return nil
}

func (f *fakeRepo) UpdateActive(ctx context.Context, id string, active bool) error {
	inst, ok := f.instances[id]
	if !ok {
		return storage.ErrNotFound
	}
	inst.IsActive = active
	f.instances[id] = inst
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.instances[id]; !ok {
		return storage.ErrNotFound
	}
	delete(f.instances, id)
	return nil
}

type fakeSessions struct {
	status map[string]string
}

func (f *fakeSessions) ConnectionStatus(ctx context.Context, token string) (string, error) {
	st, ok := f.status[token]
	if !ok {
		return "", storage.ErrNotFound
	}
	return st, nil
}

// fakeClient registra as chamadas e devolve respostas programadas.
type fakeClient struct {
	calls     []string
	createSt  status.Status
	st        status.Status
	transport error
}

func okClient() *fakeClient {
	ok := status.Status{Code: status.OK, Body: map[string]interface{}{"done": true}}
	return &fakeClient{createSt: ok, st: ok}
}

func (f *fakeClient) record(op string) { f.calls = append(f.calls, op) }

func (f *fakeClient) CreateInstance(ctx context.Context, inst *model.Instance, p provider.CreateParams) (status.Status, error) {
	f.record("create")
	return f.createSt, f.transport
}

func (f *fakeClient) DeleteInstance(ctx context.Context, inst model.Instance) (status.Status, error) {
	f.record("delete")
	return f.st, f.transport
}

func (f *fakeClient) Connect(ctx context.Context, inst model.Instance) (status.Status, error) {
	f.record("connect")
	return f.st, f.transport
}

func (f *fakeClient) Logout(ctx context.Context, inst model.Instance) (status.Status, error) {
	f.record("logout")
	return f.st, f.transport
}

func (f *fakeClient) SendMessage(ctx context.Context, inst model.Instance, msg provider.Message) (status.Status, error) {
	f.record("send")
	return f.st, f.transport
}

func (f *fakeClient) SetWebhook(ctx context.Context, inst model.Instance, url string) (status.Status, error) {
	f.record("webhook")
	return f.st, f.transport
}

type evoFake struct{ *fakeClient }

func (f evoFake) CreateGroup(ctx context.Context, inst model.Instance, grp provider.Group) (status.Status, error) {
	f.record("group")
	return f.st, f.transport
}

type cloudFake struct{ *fakeClient }

func (f cloudFake) SendTemplate(ctx context.Context, inst model.Instance, tpl provider.Template) (status.Status, error) {
	f.record("template")
	return f.st, f.transport
}

type env struct {
	svc   *Service
	repo  *fakeRepo
	evo   *fakeClient
	wuz   *fakeClient
	cloud *fakeClient
}

func newEnv(sessions map[string]string) *env {
	repo := newFakeRepo()
	reg := registry.NewService(repo, &fakeSessions{status: sessions}, "chave", zap.NewNop())

	evo := okClient()
	wuz := okClient()
	cloud := okClient()

	clients := map[model.InstanceType]provider.Client{
		model.TypeEvolution: evoFake{evo},
		model.TypeWuzapi:    wuz,
		model.TypeCloud:     cloudFake{cloud},
	}

	return &env{
		svc:   NewService(reg, clients, zap.NewNop()),
		repo:  repo,
		evo:   evo,
		wuz:   wuz,
		cloud: cloud,
	}
}

func (e *env) seed(inst model.Instance) {
	e.repo.instances[inst.ID] = inst
}

func TestCreateInstanceValidation(t *testing.T) {
	e := newEnv(nil)
	ctx := context.Background()

	cases := []CreateInput{
		{Name: "sem-id", Type: "EVOLUTION"},
		{ID: "a", Type: "EVOLUTION"},
		{ID: "a", Name: "n", Type: "TELEGRAM"},
		{ID: "a", Name: "n", Type: "CLOUD"}, // sem credenciais
	}
	for i, input := range cases {
		if _, err := e.svc.CreateInstance(ctx, input); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d: expected validation error, got %v", i, err)
		}
	}
	if len(e.evo.calls)+len(e.wuz.calls)+len(e.cloud.calls) != 0 {
		t.Fatal("vendor must not be called on validation failure")
	}
}

func TestCreateInstanceDuplicate(t *testing.T) {
	e := newEnv(nil)
	e.seed(model.Instance{ID: "e1", Type: model.TypeEvolution})

	_, err := e.svc.CreateInstance(context.Background(), CreateInput{ID: "e1", Name: "n", Type: "EVOLUTION"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateInstanceVendorFirst(t *testing.T) {
	e := newEnv(nil)
	e.evo.createSt = status.Status{Code: status.ERR, Body: map[string]interface{}{"error": "name in use"}}

	st, err := e.svc.CreateInstance(context.Background(), CreateInput{ID: "e1", Name: "vendas", Type: "EVOLUTION"})
	if !errors.Is(err, ErrVendorRejected) {
		t.Fatalf("expected vendor rejection, got %v", err)
	}
	if st.Body["error"] != "name in use" {
		t.Fatalf("vendor body must pass through: %v", st.Body)
	}
	if _, ok := e.repo.instances["e1"]; ok {
		t.Fatal("registry row must not exist after vendor failure")
	}
}

func TestCreateInstanceSuccessPersists(t *testing.T) {
	e := newEnv(nil)

	_, err := e.svc.CreateInstance(context.Background(), CreateInput{ID: "w1", Name: "suporte", Type: "WUZAPI"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	inst, ok := e.repo.instances["w1"]
	if !ok {
		t.Fatal("registry row missing")
	}
	if !inst.IsActive || inst.Type != model.TypeWuzapi {
		t.Fatalf("unexpected row %+v", inst)
	}
}

func TestDeleteInstanceVendorFirst(t *testing.T) {
	e := newEnv(nil)
	e.seed(model.Instance{ID: "w1", Type: model.TypeWuzapi})
	e.wuz.transport = errors.New("connection refused")

	_, err := e.svc.DeleteInstance(context.Background(), "w1")
	if !errors.Is(err, ErrVendorUnreachable) {
		t.Fatalf("expected unreachable, got %v", err)
	}
	if _, ok := e.repo.instances["w1"]; !ok {
		t.Fatal("registry row must survive vendor failure")
	}
}

func TestDeleteInstanceRemovesRow(t *testing.T) {
	e := newEnv(nil)
	e.seed(model.Instance{ID: "w1", Type: model.TypeWuzapi})

	if _, err := e.svc.DeleteInstance(context.Background(), "w1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := e.repo.instances["w1"]; ok {
		t.Fatal("registry row should be gone")
	}
}

func TestDeleteInstanceNotFound(t *testing.T) {
	e := newEnv(nil)
	if _, err := e.svc.DeleteInstance(context.Background(), "nope"); !errors.Is(err, ErrInstanceNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConnectCloudUnsupported(t *testing.T) {
	e := newEnv(nil)
	e.seed(model.Instance{ID: "c1", Type: model.TypeCloud})

	if _, err := e.svc.ConnectInstance(context.Background(), "c1"); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported, got %v", err)
	}
	if len(e.cloud.calls) != 0 {
		t.Fatal("vendor must not be called")
	}
}

func TestSendMessageInactiveEvolution(t *testing.T) {
	e := newEnv(map[string]string{"e1": "close"})
	e.seed(model.Instance{ID: "e1", Type: model.TypeEvolution, IsActive: true})

	_, err := e.svc.SendMessage(context.Background(), "e1", MessageInput{To: "5511", Content: "oi"})
	if !errors.Is(err, ErrInstanceNotActive) {
		t.Fatalf("expected not active, got %v", err)
	}
	if len(e.evo.calls) != 0 {
		t.Fatal("vendor must not be called when inactive")
	}
}

func TestSendMessageDefaultsToText(t *testing.T) {
	e := newEnv(map[string]string{"e1": "open"})
	e.seed(model.Instance{ID: "e1", Type: model.TypeEvolution, IsActive: true})

	if _, err := e.svc.SendMessage(context.Background(), "e1", MessageInput{To: "5511", Content: "oi"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if len(e.evo.calls) != 1 || e.evo.calls[0] != "send" {
		t.Fatalf("unexpected calls %v", e.evo.calls)
	}
}

func TestSendMessageInvalidKind(t *testing.T) {
	e := newEnv(nil)
	e.seed(model.Instance{ID: "w1", Type: model.TypeWuzapi})

	_, err := e.svc.SendMessage(context.Background(), "w1", MessageInput{To: "5511", Kind: "video", Content: "x"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
}

func TestSendMessageCloudRequiresCredentials(t *testing.T) {
	e := newEnv(nil)
	e.seed(model.Instance{ID: "c1", Type: model.TypeCloud, AccessToken: "tok"}) // sem phone_number_id

	_, err := e.svc.SendMessage(context.Background(), "c1", MessageInput{To: "5511", Content: "oi"})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation, got %v", err)
	}
	if len(e.cloud.calls) != 0 {
		t.Fatal("vendor must not be called without credentials")
	}
}

func TestSendTemplateOnlyCloud(t *testing.T) {
	e := newEnv(map[string]string{"e1": "open"})
	e.seed(model.Instance{ID: "e1", Type: model.TypeEvolution})

	_, err := e.svc.SendTemplate(context.Background(), "e1", TemplateInput{To: "5511", Name: "t", Language: "pt_BR"})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestSendTemplateCloud(t *testing.T) {
	e := newEnv(nil)
	e.seed(model.Instance{ID: "c1", Type: model.TypeCloud, AccessToken: "tok", PhoneNumberID: "555"})

	if _, err := e.svc.SendTemplate(context.Background(), "c1", TemplateInput{To: "5511", Name: "boas_vindas", Language: "pt_BR"}); err != nil {
		t.Fatalf("template: %v", err)
	}
	if len(e.cloud.calls) != 1 || e.cloud.calls[0] != "template" {
		t.Fatalf("unexpected calls %v", e.cloud.calls)
	}
}

func TestSetWebhookPersistsURL(t *testing.T) {
	e := newEnv(map[string]string{"e1": "open"})
	e.seed(model.Instance{ID: "e1", Type: model.TypeEvolution, IsActive: true})

	url := "https://consumer.example/hook"
	if _, err := e.svc.SetWebhook(context.Background(), "e1", url); err != nil {
		t.Fatalf("set webhook: %v", err)
	}
	if e.repo.instances["e1"].WebhookURL != url {
		t.Fatalf("webhook url not persisted: %+v", e.repo.instances["e1"])
	}
}

func TestCreateGroupWuzapiNotImplemented(t *testing.T) {
	e := newEnv(nil)
	e.seed(model.Instance{ID: "w1", Type: model.TypeWuzapi})

	_, err := e.svc.CreateGroup(context.Background(), "w1", GroupInput{Subject: "s", Participants: []string{"5511"}})
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected unsupported, got %v", err)
	}
}

func TestCreateGroupEvolution(t *testing.T) {
	e := newEnv(map[string]string{"e1": "open"})
	e.seed(model.Instance{ID: "e1", Type: model.TypeEvolution, IsActive: true})

	if _, err := e.svc.CreateGroup(context.Background(), "e1", GroupInput{Subject: "Time", Participants: []string{"5511"}}); err != nil {
		t.Fatalf("create group: %v", err)
	}
	if len(e.evo.calls) != 1 || e.evo.calls[0] != "group" {
		t.Fatalf("unexpected calls %v", e.evo.calls)
	}
}

func TestRetrieveInstancesSnapshot(t *testing.T) {
	e := newEnv(map[string]string{"e1": "close"})
	e.seed(model.Instance{ID: "e1", Type: model.TypeEvolution, IsActive: true})
	e.seed(model.Instance{ID: "w1", Type: model.TypeWuzapi, IsActive: false})

	instances, err := e.svc.RetrieveInstances(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	byID := map[string]model.Instance{}
	for _, inst := range instances {
		byID[inst.ID] = inst
	}
	if byID["e1"].IsActive {
		t.Fatal("e1 should be inactive after reconciliation")
	}
	if !byID["w1"].IsActive {
		t.Fatal("w1 should always be active")
	}
}
