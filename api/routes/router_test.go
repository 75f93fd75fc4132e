package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/MarceloMarchiori/m3class-backend/internal/access"
	"github.com/MarceloMarchiori/m3class-backend/internal/billing"
	"github.com/MarceloMarchiori/m3class-backend/internal/impersonation"
	"github.com/MarceloMarchiori/m3class-backend/internal/profiles"
	pkgAuth "github.com/MarceloMarchiori/m3class-backend/pkg/auth"
	"github.com/MarceloMarchiori/m3class-backend/pkg/auth/session"
	"github.com/MarceloMarchiori/m3class-backend/pkg/config"
	"github.com/MarceloMarchiori/m3class-backend/pkg/db/models"
	"github.com/MarceloMarchiori/m3class-backend/pkg/enums"
	"github.com/MarceloMarchiori/m3class-backend/pkg/logger"
	"github.com/MarceloMarchiori/m3class-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubResolver struct {
	mu       sync.Mutex
	profiles map[uuid.UUID]*profiles.ResolvedProfile
}

func newStubResolver() *stubResolver {
	return &stubResolver{profiles: make(map[uuid.UUID]*profiles.ResolvedProfile)}
}

func (s *stubResolver) register(userType enums.UserType, schoolIDs ...uuid.UUID) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.profiles[id] = &profiles.ResolvedProfile{
		Profile: profiles.ProfileDTO{
			ID:       id,
			Name:     "Perfil " + string(userType),
			UserType: userType,
			IsActive: true,
		},
		SchoolIDs: schoolIDs,
	}
	return id
}

func (s *stubResolver) Resolve(ctx context.Context, principalID uuid.UUID) (*profiles.ResolvedProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if resolved, ok := s.profiles[principalID]; ok {
		return resolved, nil
	}
	return nil, redislib.Nil
}

func (s *stubResolver) registerSecretaria(role enums.SecretariaRole, schoolIDs ...uuid.UUID) uuid.UUID {
	id := s.register(enums.UserTypeSecretaria, schoolIDs...)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id].Profile.SecretariaRole = &role
	return id
}

type stubBillingService struct{}

func (stubBillingService) GetSchoolBilling(ctx context.Context, actor access.Identity, scope access.Scope, schoolID uuid.UUID) (*billing.SchoolBilling, error) {
	return &billing.SchoolBilling{}, nil
}

func (stubBillingService) CreateSubscription(ctx context.Context, actor access.Identity, input billing.CreateSubscriptionInput) (*models.SchoolSubscription, error) {
	return &models.SchoolSubscription{}, nil
}

func (stubBillingService) MarkPaymentPaid(ctx context.Context, actor access.Identity, scope access.Scope, paymentID uuid.UUID) (*models.PaymentHistory, error) {
	return &models.PaymentHistory{}, nil
}

type memoryOverlayStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryOverlayStore() *memoryOverlayStore {
	return &memoryOverlayStore{data: make(map[string]string)}
}

func (m *memoryOverlayStore) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	str, _ := value.(string)
	m.data[key] = str
	return nil
}

func (m *memoryOverlayStore) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return "", redislib.Nil
}

func (m *memoryOverlayStore) Del(ctx context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type overlayKeyer struct{}

func (overlayKeyer) ImpersonationKey(accessID string) string {
	return "test:impersonation:" + accessID
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, resolver *stubResolver) http.Handler {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})

	overlay, err := impersonation.NewService(impersonation.ServiceParams{
		Store:    newMemoryOverlayStore(),
		Keyer:    overlayKeyer{},
		Resolver: resolver,
		TTL:      time.Hour,
	})
	if err != nil {
		t.Fatalf("overlay service: %v", err)
	}

	return NewRouter(RouterParams{
		Config:         cfg,
		Logger:         logg,
		DB:             stubPinger{},
		Redis:          (*redis.Client)(nil),
		SessionManager: stubSessionManager{},
		Resolver:       resolver,
		Impersonation:  overlay,
		Billing:        stubBillingService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, userID uuid.UUID, userType enums.UserType) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID:   userID,
		UserType: userType,
		JTI:      session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicPingNeedsNoToken(t *testing.T) {
	router := newTestRouter(t, testConfig(), newStubResolver())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public ping got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(t, testConfig(), newStubResolver())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	userID := resolver.register(enums.UserTypeAluno, uuid.New())
	router := newTestRouter(t, cfg, resolver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, userID, enums.UserTypeAluno))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestDashboardReflectsEffectiveIdentity(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	schoolID := uuid.New()
	userID := resolver.register(enums.UserTypeProfessor, schoolID)
	router := newTestRouter(t, cfg, resolver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, userID, enums.UserTypeProfessor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for dashboard got %d", resp.Code)
	}

	var payload struct {
		Data struct {
			Dashboard    string   `json:"dashboard"`
			SchoolIDs    []string `json:"school_ids"`
			Unrestricted bool     `json:"unrestricted"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse dashboard response: %v", err)
	}
	if payload.Data.Dashboard != "professor" {
		t.Fatalf("expected professor dashboard got %q", payload.Data.Dashboard)
	}
	if payload.Data.Unrestricted {
		t.Fatal("professor scope must not be unrestricted")
	}
	if len(payload.Data.SchoolIDs) != 1 || payload.Data.SchoolIDs[0] != schoolID.String() {
		t.Fatalf("expected scoped school id, got %v", payload.Data.SchoolIDs)
	}
}

func TestImpersonationRequiresMaster(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	userID := resolver.register(enums.UserTypeProfessor, uuid.New())
	router := newTestRouter(t, cfg, resolver)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/impersonation", strings.NewReader(`{"target_id":"`+uuid.NewString()+`"}`))
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, userID, enums.UserTypeProfessor))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-master impersonation got %d", resp.Code)
	}
}

func TestImpersonationOverlayFlow(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	masterID := resolver.register(enums.UserTypeMaster)
	targetID := resolver.register(enums.UserTypeProfessor, uuid.New())
	router := newTestRouter(t, cfg, resolver)

	// One token, one session: the overlay is keyed by the access ID.
	token := buildToken(t, cfg, masterID, enums.UserTypeMaster)

	start := httptest.NewRequest(http.MethodPost, "/api/v1/impersonation", strings.NewReader(`{"target_id":"`+targetID.String()+`"}`))
	start.Header.Set("Authorization", "Bearer "+token)
	start.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, start)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 starting impersonation got %d: %s", resp.Code, resp.Body.String())
	}

	dash := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	dash.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, dash)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for dashboard got %d", resp.Code)
	}
	var payload struct {
		Data struct {
			UserID        string `json:"user_id"`
			Dashboard     string `json:"dashboard"`
			Impersonating bool   `json:"impersonating"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse dashboard response: %v", err)
	}
	if payload.Data.UserID != targetID.String() {
		t.Fatalf("expected effective identity %s got %s", targetID, payload.Data.UserID)
	}
	if payload.Data.Dashboard != "professor" || !payload.Data.Impersonating {
		t.Fatalf("expected impersonated professor dashboard, got %+v", payload.Data)
	}

	stop := httptest.NewRequest(http.MethodDelete, "/api/v1/impersonation", nil)
	stop.Header.Set("Authorization", "Bearer "+token)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, stop)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 stopping impersonation got %d", resp.Code)
	}

	resp = httptest.NewRecorder()
	again := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	again.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(resp, again)
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse dashboard response: %v", err)
	}
	if payload.Data.UserID != masterID.String() || payload.Data.Impersonating {
		t.Fatalf("expected master identity after stop, got %+v", payload.Data)
	}
}

func TestMeReturnsEffectiveProfile(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	schoolID := uuid.New()
	userID := resolver.register(enums.UserTypeSecretaria, schoolID)
	router := newTestRouter(t, cfg, resolver)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, userID, enums.UserTypeSecretaria))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for me got %d", resp.Code)
	}

	var payload struct {
		Data struct {
			Profile struct {
				ID       string `json:"id"`
				UserType string `json:"user_type"`
			} `json:"profile"`
			SchoolIDs     []string `json:"school_ids"`
			Impersonating bool     `json:"impersonating"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse me response: %v", err)
	}
	if payload.Data.Profile.ID != userID.String() || payload.Data.Profile.UserType != "secretaria" {
		t.Fatalf("unexpected profile payload: %+v", payload.Data.Profile)
	}
	if len(payload.Data.SchoolIDs) != 1 || payload.Data.SchoolIDs[0] != schoolID.String() {
		t.Fatalf("expected school scope in me payload, got %v", payload.Data.SchoolIDs)
	}
}

func TestCreateUserRequiresPrivilege(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	userID := resolver.register(enums.UserTypeAluno, uuid.New())
	router := newTestRouter(t, cfg, resolver)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, userID, enums.UserTypeAluno))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for aluno creating users got %d", resp.Code)
	}
}

func TestCreateSchoolRequiresMaster(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	userID := resolver.register(enums.UserTypeSchoolAdmin, uuid.New())
	router := newTestRouter(t, cfg, resolver)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/schools", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, userID, enums.UserTypeSchoolAdmin))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for school_admin creating schools got %d", resp.Code)
	}
}

func TestSchoolRoutesEnforceScope(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	ownSchool := uuid.New()
	userID := resolver.register(enums.UserTypeProfessor, ownSchool)
	router := newTestRouter(t, cfg, resolver)

	outside := httptest.NewRequest(http.MethodGet, "/api/v1/schools/"+uuid.NewString(), nil)
	outside.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, userID, enums.UserTypeProfessor))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, outside)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 outside scope got %d", resp.Code)
	}
}

func TestSchoolBillingRequiresDiretorHierarchy(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	schoolID := uuid.New()
	professorID := resolver.register(enums.UserTypeProfessor, schoolID)
	operacionalID := resolver.registerSecretaria(enums.SecretariaRoleOperacional, schoolID)
	diretorID := resolver.registerSecretaria(enums.SecretariaRoleDiretor, schoolID)
	router := newTestRouter(t, cfg, resolver)

	billingPath := "/api/v1/schools/" + schoolID.String() + "/billing"

	cases := []struct {
		name     string
		userID   uuid.UUID
		userType enums.UserType
		want     int
	}{
		{"professor", professorID, enums.UserTypeProfessor, http.StatusForbidden},
		{"secretaria operacional", operacionalID, enums.UserTypeSecretaria, http.StatusForbidden},
		{"secretaria diretor", diretorID, enums.UserTypeSecretaria, http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, billingPath, nil)
		req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, tc.userID, tc.userType))
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d on billing route got %d", tc.name, tc.want, resp.Code)
		}
	}
}

func TestMarkPaymentPaidRequiresDiretorHierarchy(t *testing.T) {
	cfg := testConfig()
	resolver := newStubResolver()
	schoolID := uuid.New()
	alunoID := resolver.register(enums.UserTypeAluno, schoolID)
	adminID := resolver.register(enums.UserTypeSchoolAdmin, schoolID)
	router := newTestRouter(t, cfg, resolver)

	paidPath := "/api/v1/payments/" + uuid.NewString() + "/paid"

	denied := httptest.NewRequest(http.MethodPost, paidPath, nil)
	denied.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, alunoID, enums.UserTypeAluno))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, denied)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for aluno marking payments got %d", resp.Code)
	}

	// school_admin bypasses the secretaria ranking.
	allowed := httptest.NewRequest(http.MethodPost, paidPath, nil)
	allowed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, adminID, enums.UserTypeSchoolAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, allowed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for school_admin marking payments got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestUnresolvableProfileIsUnauthorized(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(t, cfg, newStubResolver())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, uuid.New(), enums.UserTypeAluno))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unresolvable profile got %d", resp.Code)
	}
}
