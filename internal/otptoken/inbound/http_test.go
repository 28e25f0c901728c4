package inbound

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/otptoken/internal/otptoken/entity"
	"github.com/shandysiswandi/otptoken/internal/otptoken/usecase"
	"github.com/shandysiswandi/otptoken/internal/pkg/clock"
	"github.com/shandysiswandi/otptoken/internal/pkg/goerror"
	"github.com/shandysiswandi/otptoken/internal/pkg/instrument"
	"github.com/shandysiswandi/otptoken/internal/pkg/jwt"
	"github.com/shandysiswandi/otptoken/internal/pkg/lang"
	"github.com/shandysiswandi/otptoken/internal/pkg/router"
	"github.com/shandysiswandi/otptoken/internal/pkg/uid"
)

type fakeUC struct {
	status entity.Status
	err    error
	sent   usecase.SendInput
}

func (f *fakeUC) Send(_ context.Context, in usecase.SendInput) (*usecase.SendOutput, error) {
	f.sent = in
	if f.err != nil {
		return nil, f.err
	}
	return &usecase.SendOutput{Status: f.status, Broker: "users"}, nil
}

func (f *fakeUC) Verify(_ context.Context, in usecase.VerifyInput) (*usecase.VerifyOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := &usecase.VerifyOutput{Status: f.status, Broker: "users"}
	if f.status == entity.StatusActionCompleted {
		out.Grant = "signed." + in.Token
	}
	return out, nil
}

func (f *fakeUC) Grant(ctx context.Context) (*usecase.GrantOutput, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}
	return &usecase.GrantOutput{Subject: clm.Subject, Broker: clm.Broker, Action: clm.Action, Field: clm.Field}, nil
}

type fixture struct {
	router *router.Router
	uc     *fakeUC
	jwt    *jwt.Symmetric
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	tr, err := lang.New(entity.StatusMessages)
	if err != nil {
		t.Fatalf("lang.New() error = %v", err)
	}
	signer, err := jwt.NewHS512(jwt.Config{
		Secret:    []byte(strings.Repeat("k", 64)),
		Issuer:    "otptoken",
		Audiences: []string{"otptoken"},
		Clock:     clock.New(),
		UUID:      uid.NewUUID(),
	})
	if err != nil {
		t.Fatalf("NewHS512() error = %v", err)
	}

	f := &fixture{
		router: router.NewRouter(router.Config{UUID: uid.NewUUID(), Instrument: instrument.NewNoop()}),
		uc:     &fakeUC{},
		jwt:    signer,
	}
	RegisterHTTPEndpoint(f.router, f.uc, tr, signer)
	return f
}

func (f *fixture) do(t *testing.T, method, path, body string, header map[string]string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return rec.Code, out
}

const sendBody = `{"action":"login","field":"email","credentials":{"email":"a@test.dev"}}`

func TestSendStatuses(t *testing.T) {
	tests := []struct {
		name    string
		status  entity.Status
		locale  string
		code    int
		message string
	}{
		{name: "sent", status: entity.StatusOtpSent, code: http.StatusOK, message: "We have sent your otp token."},
		{name: "sent id", status: entity.StatusOtpSent, locale: "id-ID,id;q=0.9", code: http.StatusOK, message: "Kami telah mengirimkan token otp Anda."},
		{name: "unknown user", status: entity.StatusInvalidUser, code: http.StatusNotFound, message: "We can't find the user account."},
		{name: "throttled", status: entity.StatusOtpThrottled, code: http.StatusTooManyRequests, message: "Please wait before retrying."},
		{name: "unsupported locale", status: entity.StatusOtpThrottled, locale: "fr", code: http.StatusTooManyRequests, message: "Please wait before retrying."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.uc.status = tt.status

			code, out := f.do(t, http.MethodPost, "/api/v1/otp-tokens/send", sendBody, map[string]string{"Accept-Language": tt.locale})
			if code != tt.code {
				t.Fatalf("status = %d, want %d (%v)", code, tt.code, out)
			}
			if out["message"] != tt.message {
				t.Errorf("message = %v, want %q", out["message"], tt.message)
			}
		})
	}
}

func TestSendPassesInput(t *testing.T) {
	f := newFixture(t)
	f.uc.status = entity.StatusOtpSent

	body := `{"broker":"admins","action":"reset","field":"phone","credentials":{"email":"a@test.dev"}}`
	header := map[string]string{"Accept-Language": "id", "Idempotency-Key": "req-7"}
	if code, out := f.do(t, http.MethodPost, "/api/v1/otp-tokens/send", body, header); code != http.StatusOK {
		t.Fatalf("status = %d (%v)", code, out)
	}

	in := f.uc.sent
	if in.Broker != "admins" || in.Action != "reset" || in.Field != "phone" || in.Locale != "id" || in.Credentials["email"] != "a@test.dev" || in.IdempotencyKey != "req-7" {
		t.Errorf("SendInput = %+v", in)
	}
}

func TestSendRejectsBadBody(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodPost, "/api/v1/otp-tokens/send", `{"action":`, nil)
	if code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", code)
	}

	code, _ = f.do(t, http.MethodPost, "/api/v1/otp-tokens/send", `{"action":"login","unknown":true}`, nil)
	if code != http.StatusBadRequest {
		t.Errorf("unknown field status = %d, want 400", code)
	}
}

func TestVerifyStatuses(t *testing.T) {
	body := `{"action":"login","field":"email","token":"123456","credentials":{"email":"a@test.dev"}}`

	tests := []struct {
		name   string
		status entity.Status
		code   int
	}{
		{name: "completed", status: entity.StatusActionCompleted, code: http.StatusOK},
		{name: "bad token", status: entity.StatusInvalidToken, code: http.StatusUnprocessableEntity},
		{name: "unknown user", status: entity.StatusInvalidUser, code: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.uc.status = tt.status

			code, out := f.do(t, http.MethodPost, "/api/v1/otp-tokens/verify", body, nil)
			if code != tt.code {
				t.Fatalf("status = %d, want %d (%v)", code, tt.code, out)
			}
			if tt.status != entity.StatusActionCompleted {
				return
			}

			data, _ := out["data"].(map[string]any)
			if data["grant"] != "signed.123456" || data["status"] != entity.StatusActionCompleted.String() {
				t.Errorf("data = %v", data)
			}
		})
	}
}

func TestGrant(t *testing.T) {
	f := newFixture(t)

	code, _ := f.do(t, http.MethodGet, "/api/v1/otp-tokens/grant", "", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("status without grant = %d, want 401", code)
	}

	code, _ = f.do(t, http.MethodGet, "/api/v1/otp-tokens/grant", "", map[string]string{"Authorization": "Bearer not-a-jwt"})
	if code != http.StatusUnauthorized {
		t.Fatalf("status with garbage grant = %d, want 401", code)
	}

	token, err := f.jwt.Generate(jwt.Grant{Subject: "a@test.dev", Broker: "users", Action: "login", Field: "email"})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	code, out := f.do(t, http.MethodGet, "/api/v1/otp-tokens/grant", "", map[string]string{"Authorization": "Bearer " + token})
	if code != http.StatusOK {
		t.Fatalf("status = %d (%v)", code, out)
	}
	data, _ := out["data"].(map[string]any)
	if data["subject"] != "a@test.dev" || data["action"] != "login" {
		t.Errorf("data = %v", data)
	}
}

type countingPruner struct {
	calls chan struct{}
}

func (p *countingPruner) PruneExpired(context.Context) (int64, error) {
	select {
	case p.calls <- struct{}{}:
	default:
	}
	return 0, nil
}
