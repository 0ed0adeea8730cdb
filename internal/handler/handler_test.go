package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"supplier-portal/internal/service"
	"supplier-portal/internal/store"
	"supplier-portal/pkg/config"
	"supplier-portal/pkg/jwtutil"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	e     *echo.Echo
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := zap.NewNop()

	st := store.NewMemoryStore()
	_, err := st.Seed(context.Background(), store.DemoData())
	require.NoError(t, err)

	jwt := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})
	auth, err := service.NewAuthService(config.ManagerConfig{Username: "gestor", Password: "1234"}, jwt, log)
	require.NoError(t, err)

	repCfg := config.ReputationConfig{Timeout: time.Second, MaxAttempts: 1}
	suppliers := service.NewSupplierService(st, log)
	evaluations := service.NewEvaluationService(st, log)
	issues := service.NewIssueService(st, log)

	e := echo.New()
	e.Validator = NewValidator()
	RegisterRoutes(e, Handlers{
		Auth:       NewAuthHandler(auth),
		Evaluation: NewEvaluationHandler(evaluations, issues),
		Supplier:   NewSupplierHandler(suppliers, issues),
		Reputation: NewReputationHandler(service.NewReputationDesk(st, nil, nil, repCfg, log)),
		Management: NewManagementHandler(
			suppliers,
			service.NewPenaltyService(st, log),
			issues,
			service.NewComplaintService(st, log),
			service.NewRiskAnalyzer(st, nil, nil, repCfg, log),
		),
	}, jwt)

	srv := &testServer{e: e}
	rec := srv.do(t, http.MethodPost, "/auth/login", `{"username":"gestor","password":"1234"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var session struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	srv.token = session.Token
	return srv
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) manager(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, path, body, "Authorization", "Bearer "+s.token)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "supplier_portal_auth_attempts_total")
}

func TestLoginFailure(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/auth/login", `{"username":"gestor","password":"errada"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "Usuário ou senha inválidos.", decode(t, rec)["error"])

	rec = srv.do(t, http.MethodPost, "/auth/login", `{"username":"gestor"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOrderLookup(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/evaluations/orders/oc-2025-001", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "OC-2025-001", body["reference"])
	require.Equal(t, "1", body["supplier"].(map[string]interface{})["id"])

	rec = srv.do(t, http.MethodGet, "/api/evaluations/orders/ZZZ-000", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "Nenhuma OC/Processo encontrada(o). Tente outro número.", decode(t, rec)["error"])
}

func TestSubmitEvaluation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/evaluations", `{"reference":"OC-2025-001","quality":5,"delivery":4,"support":5}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 4.7, decode(t, rec)["average"])

	rec = srv.do(t, http.MethodPost, "/api/evaluations", `{"reference":"OC-2025-001","quality":0,"delivery":4,"support":5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/evaluations", `{"quality":5,"delivery":4,"support":5}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotEmpty(t, decode(t, rec)["problems"])
}

func TestReportIssueValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/evaluations/issues", `{"reference":"OC-2025-001","type":"Produto com defeito","description":"quebrado"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, []interface{}{"Selecione ao menos um item da OC que teve problema."}, decode(t, rec)["problems"])

	rec = srv.do(t, http.MethodPost, "/api/evaluations/issues", `{"reference":"OC-2025-001","type":"Produto com defeito","description":"quebrado","items":[{"item_id":"i2"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Aberto", decode(t, rec)["status"])
}

func TestRanking(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/suppliers?segment=Todos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.EqualValues(t, 6, body["count"])
	first := body["suppliers"].([]interface{})[0].(map[string]interface{})
	require.EqualValues(t, 1, first["position"])
	require.Equal(t, "3", first["supplier"].(map[string]interface{})["id"])

	rec = srv.do(t, http.MethodGet, "/api/suppliers/segments", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Todos", decode(t, rec)["segments"].([]interface{})[0])

	rec = srv.do(t, http.MethodGet, "/api/suppliers/404", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/suppliers/1/issues", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, decode(t, rec)["issues"], 1)
}

func TestReputationLookup(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/api/reputation/lookups", `{"query":"Fornecedor Exemplo"}`, SessionHeader, "abc")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "internal", decode(t, rec)["provenance"])

	rec = srv.do(t, http.MethodGet, "/api/reputation/lookups/current", "", SessionHeader, "abc")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "success", decode(t, rec)["status"])

	rec = srv.do(t, http.MethodPost, "/api/reputation/lookups", `{"query":"Empresa Externa"}`)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/reputation/lookups/current", "")
	require.Equal(t, "error", decode(t, rec)["status"])
}

func TestManagementRequiresToken(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/api/management/dashboard", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.manager(t, http.MethodGet, "/api/management/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.EqualValues(t, 6, body["total"])
	require.EqualValues(t, 2, body["blocked"])
	require.EqualValues(t, 2, body["low_score"])
	require.EqualValues(t, 3, body["pending_complaints"])
}

func TestWarningsFlow(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.manager(t, http.MethodPost, "/api/management/suppliers/4/warnings", `{"reason":"Terceira falha"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	require.Equal(t, "BLOQUEADO", body["state"])

	rec = srv.manager(t, http.MethodPost, "/api/management/suppliers/4/warnings", `{}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.manager(t, http.MethodGet, "/api/management/suppliers/4/warnings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	logs := decode(t, rec)["warning_logs"].([]interface{})
	require.Len(t, logs, 3)
	require.Equal(t, "gestor", logs[2].(map[string]interface{})["manager"])

	rec = srv.manager(t, http.MethodDelete, "/api/management/suppliers/4/warnings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	supplier := decode(t, rec)["supplier"].(map[string]interface{})
	require.EqualValues(t, 0, supplier["warnings"])
	require.Equal(t, false, supplier["is_blocked"])
	require.Empty(t, supplier["warning_logs"])
}

func TestImportSuppliers(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.manager(t, http.MethodPost, "/api/management/suppliers/import", `{"suppliers":[{"name":"Nova SA","tax_id":"55.666.777/0001-88","segment":"TI"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.manager(t, http.MethodGet, "/api/management/suppliers?q=55.666", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decode(t, rec)["count"])

	rec = srv.manager(t, http.MethodPost, "/api/management/suppliers/import", `{"suppliers":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalysisWithoutGenerator(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.manager(t, http.MethodPost, "/api/management/suppliers/5/analysis", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, service.AnalysisFailedText, decode(t, rec)["error"])

	rec = srv.manager(t, http.MethodGet, "/api/management/suppliers/5/analysis", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, true, decode(t, rec)["failed"])
}

func TestIssueStatusAndComplaints(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.manager(t, http.MethodPatch, "/api/management/issues/RP-2025-0043/status", `{"status":"Aberto"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.manager(t, http.MethodGet, "/api/management/issues?status=Fechado", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decode(t, rec)["count"])

	rec = srv.manager(t, http.MethodPost, "/api/management/complaints/REC-001/response", `{"email":"compras@fornecedor.com.br","text":"Ciente, ajustaremos."}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Respondido", decode(t, rec)["status"])

	rec = srv.manager(t, http.MethodPost, "/api/management/complaints/REC-001/response", `{"email":"compras@fornecedor.com.br","text":"De novo"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.manager(t, http.MethodGet, "/api/management/complaints?status=Pendente", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 2, decode(t, rec)["count"])
}
