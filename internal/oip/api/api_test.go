package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ollamacloud/oip/internal/oip/config"
	"github.com/ollamacloud/oip/internal/oip/entity"
	"github.com/ollamacloud/oip/pkg/apierror"
	"github.com/ollamacloud/oip/pkg/ginx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testAPIConfig() *config.Config {
	return &config.Config{
		Address:     "127.0.0.1:0",
		Environment: "test",
	}
}

// stubInstanceService records the identity it was called with and
// returns canned responses.
type stubInstanceService struct {
	caller   *entity.Identity
	instance entity.Instance
	err      error
}

func (s *stubInstanceService) Create(ctx context.Context, caller *entity.Identity, req *entity.CreateInstanceRequest) (*entity.CreateInstanceResponse, error) {
	s.caller = caller
	if s.err != nil {
		return nil, s.err
	}
	return &entity.CreateInstanceResponse{Instance: s.instance}, nil
}

func (s *stubInstanceService) Get(ctx context.Context, caller *entity.Identity, id string) (*entity.GetInstanceResponse, error) {
	s.caller = caller
	if s.err != nil {
		return nil, s.err
	}
	return &entity.GetInstanceResponse{Instance: s.instance}, nil
}

func (s *stubInstanceService) List(ctx context.Context, caller *entity.Identity) (*entity.ListInstancesResponse, error) {
	s.caller = caller
	if s.err != nil {
		return nil, s.err
	}
	return &entity.ListInstancesResponse{
		Instances: []entity.Instance{s.instance},
		Count:     1,
	}, nil
}

func (s *stubInstanceService) Delete(ctx context.Context, caller *entity.Identity, id string) error {
	s.caller = caller
	return s.err
}

func (s *stubInstanceService) GetStatus(ctx context.Context, caller *entity.Identity, id string) (*entity.GetInstanceStatusResponse, error) {
	s.caller = caller
	if s.err != nil {
		return nil, s.err
	}
	return &entity.GetInstanceStatusResponse{ID: id, Status: entity.StatusRunning}, nil
}

type stubLogService struct {
	resp *entity.GetInstanceLogsResponse
	err  error
}

func (s *stubLogService) GetInstanceLogs(ctx context.Context, caller *entity.Identity, id string) (*entity.GetInstanceLogsResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.resp, nil
}

type stubModelService struct {
	models []entity.Model
	start  *entity.StartModelResponse
	stop   *entity.StopModelResponse
	err    error
}

func (s *stubModelService) List(ctx context.Context) (*entity.ListModelsResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.ListModelsResponse{Models: s.models, Count: len(s.models)}, nil
}

func (s *stubModelService) Start(ctx context.Context, caller *entity.Identity, req *entity.StartModelRequest) (*entity.StartModelResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.start, nil
}

func (s *stubModelService) Stop(ctx context.Context, caller *entity.Identity, id string) (*entity.StopModelResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.stop, nil
}

type stubAuthService struct {
	login *entity.LoginResponse
	err   error
}

func (s *stubAuthService) Login(ctx context.Context, req *entity.LoginRequest) (*entity.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.login, nil
}

func (s *stubAuthService) Register(ctx context.Context, req *entity.RegisterRequest) (*entity.RegisterResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.RegisterResponse{UserID: "sub-1", Email: req.Email}, nil
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, req *entity.ForgotPasswordRequest) (*entity.ForgotPasswordResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.ForgotPasswordResponse{Message: "Password reset initiated"}, nil
}

// newTestEngine wires stub services through the same middleware chain
// New uses.
func newTestEngine(instances InstanceServiceInterface, logs LogServiceInterface, models ModelServiceInterface, auth AuthServiceInterface) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), ginx.CORS())

	root := engine.Group("/api")
	(&Auth{authService: auth}).RegisterRoutes(root)

	protected := root.Group("")
	protected.Use(Identity())
	(&Instance{instanceService: instances, logService: logs}).RegisterRoutes(protected)
	(&Model{modelService: models}).RegisterRoutes(protected)

	return engine
}

func doRequest(engine *gin.Engine, method, path, body string, identity bool) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if identity {
		req.Header.Set("X-User-Id", "user-1")
		req.Header.Set("X-User-Email", "dev@example.com")
		req.Header.Set("X-User-Groups", "Users")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestAPI_New(t *testing.T) {
	t.Parallel()

	api, err := New(testAPIConfig(), nil, nil, nil, nil)
	require.NoError(t, err)

	routePaths := make(map[string]bool)
	for _, route := range api.engine.Routes() {
		routePaths[route.Method+" "+route.Path] = true
	}

	assert.True(t, routePaths["POST /api/instances"], "should have instance create route")
	assert.True(t, routePaths["GET /api/instances/:id/logs"], "should have instance logs route")
	assert.True(t, routePaths["POST /api/models/start"], "should have model start route")
	assert.True(t, routePaths["POST /api/auth/login"], "should have login route")
	assert.True(t, routePaths["GET /health"], "should have health route")
}

func TestAPI_Name(t *testing.T) {
	t.Parallel()

	api, err := New(testAPIConfig(), nil, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "API Server", api.Name())
}

func TestHealth(t *testing.T) {
	t.Parallel()

	api, err := New(testAPIConfig(), nil, nil, nil, nil)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	api.engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCreateInstanceRoute(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	instances := &stubInstanceService{instance: entity.Instance{
		ID:        "inst-1",
		ModelID:   "llama2:7b",
		UserID:    "user-1",
		Status:    entity.StatusStarting,
		StartedAt: now,
		UpdatedAt: now,
	}}
	engine := newTestEngine(instances, &stubLogService{}, &stubModelService{}, &stubAuthService{})

	w := doRequest(engine, http.MethodPost, "/api/instances", `{"modelId":"llama2:7b"}`, true)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp entity.CreateInstanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "inst-1", resp.ID)
	require.NotNil(t, instances.caller)
	assert.Equal(t, "user-1", instances.caller.UserID)
	assert.Equal(t, []string{"Users"}, instances.caller.Groups)
}

func TestCreateInstanceMissingBody(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(&stubInstanceService{}, &stubLogService{}, &stubModelService{}, &stubAuthService{})
	w := doRequest(engine, http.MethodPost, "/api/instances", `{}`, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMissingIdentityHeaders(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(&stubInstanceService{}, &stubLogService{}, &stubModelService{}, &stubAuthService{})
	w := doRequest(engine, http.MethodGet, "/api/instances", "", false)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var body apierror.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
}

func TestDeleteInstanceRoute(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(&stubInstanceService{}, &stubLogService{}, &stubModelService{}, &stubAuthService{})
	w := doRequest(engine, http.MethodDelete, "/api/instances/inst-1", "", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestForbiddenEnvelope(t *testing.T) {
	t.Parallel()

	instances := &stubInstanceService{err: apierror.ErrForbidden}
	engine := newTestEngine(instances, &stubLogService{}, &stubModelService{}, &stubAuthService{})

	w := doRequest(engine, http.MethodGet, "/api/instances/inst-1", "", true)
	require.Equal(t, http.StatusForbidden, w.Code)

	var body apierror.Body
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apierror.ErrForbidden.Message, body.Error)
}

func TestInstanceNotFoundEnvelope(t *testing.T) {
	t.Parallel()

	instances := &stubInstanceService{err: apierror.ErrInstanceNotFound}
	engine := newTestEngine(instances, &stubLogService{}, &stubModelService{}, &stubAuthService{})

	w := doRequest(engine, http.MethodGet, "/api/instances/missing", "", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListModelsRoute(t *testing.T) {
	t.Parallel()

	models := &stubModelService{models: []entity.Model{
		{ID: "llama2:7b", Name: "Llama 2 7B"},
		{ID: "mistral:7b", Name: "Mistral 7B"},
	}}
	engine := newTestEngine(&stubInstanceService{}, &stubLogService{}, models, &stubAuthService{})

	w := doRequest(engine, http.MethodGet, "/api/models", "", true)
	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.ListModelsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
}

func TestStartModelRoute(t *testing.T) {
	t.Parallel()

	models := &stubModelService{start: &entity.StartModelResponse{
		InstanceID:  "inst-1",
		ModelID:     "llama2:7b",
		Status:      entity.StatusStarting,
		ServiceName: "ollama-inst1",
	}}
	engine := newTestEngine(&stubInstanceService{}, &stubLogService{}, models, &stubAuthService{})

	w := doRequest(engine, http.MethodPost, "/api/models/start", `{"model_id":"llama2:7b"}`, true)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp entity.StartModelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "inst-1", resp.InstanceID)
}

func TestLoginRoute(t *testing.T) {
	t.Parallel()

	auth := &stubAuthService{login: &entity.LoginResponse{
		AccessToken: "access",
		TokenType:   "Bearer",
		ExpiresIn:   3600,
	}}
	engine := newTestEngine(&stubInstanceService{}, &stubLogService{}, &stubModelService{}, auth)

	// No identity headers: auth routes are public.
	w := doRequest(engine, http.MethodPost, "/api/auth/login", `{"email":"dev@example.com","password":"secret"}`, false)
	require.Equal(t, http.StatusOK, w.Code)

	var resp entity.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.AccessToken)
}

func TestLoginRejectedEnvelope(t *testing.T) {
	t.Parallel()

	auth := &stubAuthService{err: apierror.ErrUnauthorized}
	engine := newTestEngine(&stubInstanceService{}, &stubLogService{}, &stubModelService{}, auth)

	w := doRequest(engine, http.MethodPost, "/api/auth/login", `{"email":"dev@example.com","password":"wrong"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(&stubInstanceService{}, &stubLogService{}, &stubModelService{}, &stubAuthService{})

	req := httptest.NewRequest(http.MethodOptions, "/api/instances", nil)
	req.Header.Set("Origin", "https://app.example.com")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDHeader(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(&stubInstanceService{}, &stubLogService{}, &stubModelService{}, &stubAuthService{})
	w := doRequest(engine, http.MethodGet, "/api/instances", "", true)
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))
}
