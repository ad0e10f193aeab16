package cloud

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/zaphub/zaphub/internal/provider"
	"github.com/zaphub/zaphub/internal/storage/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBaseURL(srv.URL, "v20.0", srv.Client(), zap.NewNop())
}

func testInstance() model.Instance {
	return model.Instance{
		ID: "inst-3", Name: "oficial", Type: model.TypeCloud,
		WabaID: "111222333", AccessToken: "EAAGtoken", PhoneNumberID: "444555666",
	}
}

func TestSendTextBearerAndShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"messages":[{"id":"wamid.X"}]}`))
	})

	st, err := c.SendMessage(context.Background(), testInstance(), provider.Message{
		To: "5511999990000", Kind: provider.KindText, Content: "oi",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !st.IsOK() {
		t.Fatalf("expected OK, got %s", st.Code)
	}
	if gotPath != "/v20.0/444555666/messages" {
		t.Fatalf("unexpected path %s", gotPath)
	}
	if gotAuth != "Bearer EAAGtoken" {
		t.Fatalf("unexpected auth %q", gotAuth)
	}
	if gotBody["messaging_product"] != "whatsapp" || gotBody["type"] != "text" {
		t.Fatalf("unexpected body %v", gotBody)
	}
	text, _ := gotBody["text"].(map[string]interface{})
	if text["body"] != "oi" {
		t.Fatalf("unexpected text %v", gotBody["text"])
	}
}

func TestSendTemplate(t *testing.T) {
	var gotBody map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"messages":[{"id":"wamid.Y"}]}`))
	})

	_, err := c.SendTemplate(context.Background(), testInstance(), provider.Template{
		To: "5511999990000", Name: "boas_vindas", Language: "pt_BR",
	})
	if err != nil {
		t.Fatalf("send template: %v", err)
	}
	if gotBody["type"] != "template" {
		t.Fatalf("unexpected body %v", gotBody)
	}
	tpl, _ := gotBody["template"].(map[string]interface{})
	if tpl["name"] != "boas_vindas" {
		t.Fatalf("unexpected template %v", tpl)
	}
	lang, _ := tpl["language"].(map[string]interface{})
	if lang["code"] != "pt_BR" {
		t.Fatalf("unexpected language %v", lang)
	}
}

func TestCreateInstanceProvisioningChain(t *testing.T) {
	var paths []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/v20.0/111222333/subscribed_apps":
			w.Write([]byte(`{"success":true}`))
		case "/v20.0/111222333/phone_numbers":
			w.Write([]byte(`{"data":[{"id":"444555666","display_phone_number":"+55 11 99999-0000"}]}`))
		case "/v20.0/444555666/register":
			w.Write([]byte(`{"success":true}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	inst := testInstance()
	inst.PhoneNumberID = ""

	st, err := c.CreateInstance(context.Background(), &inst, provider.CreateParams{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !st.IsOK() {
		t.Fatalf("expected OK, got %s", st.Code)
	}
	if inst.PhoneNumberID != "444555666" {
		t.Fatalf("phone_number_id not extracted: %q", inst.PhoneNumberID)
	}

	want := []string{
		"POST /v20.0/111222333/subscribed_apps",
		"GET /v20.0/111222333/phone_numbers",
		"POST /v20.0/444555666/register",
	}
	if len(paths) != len(want) {
		t.Fatalf("unexpected call sequence %v", paths)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("call %d = %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestCreateInstanceNoPhoneNumbers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v20.0/111222333/subscribed_apps":
			w.Write([]byte(`{"success":true}`))
		case "/v20.0/111222333/phone_numbers":
			w.Write([]byte(`{"data":[]}`))
		case "/v20.0/444555666/register":
			t.Error("register must not be called without a phone number")
		}
	})

	inst := testInstance()
	inst.PhoneNumberID = ""

	st, err := c.CreateInstance(context.Background(), &inst, provider.CreateParams{})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if st.IsOK() {
		t.Fatal("expected ERR when WABA has no numbers")
	}
}

func TestConnectUnsupported(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no HTTP call expected")
	})

	st, err := c.Connect(context.Background(), testInstance())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if st.IsOK() {
		t.Fatal("expected ERR")
	}
}
