package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"

	"github.com/poefarm/tracker-server-go/internal/middleware"
	"github.com/poefarm/tracker-server-go/internal/model"
	"github.com/poefarm/tracker-server-go/internal/repository"
	"github.com/poefarm/tracker-server-go/internal/service"
	"github.com/poefarm/tracker-server-go/internal/util"
	"github.com/poefarm/tracker-server-go/internal/validation"
)

const adminTestSecret = "admin-test-secret"

type stubAdminSessionRepo struct {
	sessions map[string]*model.AdminSession
}

func newStubAdminSessionRepo() *stubAdminSessionRepo {
	return &stubAdminSessionRepo{sessions: make(map[string]*model.AdminSession)}
}

func (s *stubAdminSessionRepo) FindByTokenHash(ctx context.Context, tokenHash string) (*model.AdminSession, error) {
	return s.sessions[tokenHash], nil
}

func (s *stubAdminSessionRepo) Create(ctx context.Context, params model.CreateAdminSessionParams) (*model.AdminSession, error) {
	session := &model.AdminSession{
		ID:        "as-1",
		TokenHash: params.TokenHash,
		UserID:    params.UserID,
		ExpiresAt: params.ExpiresAt,
	}
	s.sessions[params.TokenHash] = session
	return session, nil
}

func (s *stubAdminSessionRepo) DeleteByTokenHash(ctx context.Context, tokenHash string) error {
	delete(s.sessions, tokenHash)
	return nil
}

func (s *stubAdminSessionRepo) DeleteExpired(ctx context.Context) (int64, error) {
	return 0, nil
}

type mockUserSettingsRepo struct {
	mock.Mock
}

func (m *mockUserSettingsRepo) FindByUserID(ctx context.Context, userID string) (*model.UserSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSettings), args.Error(1)
}

func (m *mockUserSettingsRepo) Create(ctx context.Context, userID string, lastAdminLogin time.Time) (*model.UserSettings, error) {
	args := m.Called(ctx, userID, lastAdminLogin)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserSettings), args.Error(1)
}

func (m *mockUserSettingsRepo) UpdateLastAdminLogin(ctx context.Context, id string, lastAdminLogin time.Time) error {
	args := m.Called(ctx, id, lastAdminLogin)
	return args.Error(0)
}

func (m *mockUserSettingsRepo) WithTx(tx *sqlx.Tx) repository.UserSettingsRepository {
	return m
}

type adminFixture struct {
	handler      http.Handler
	sessionRepo  *stubAdminSessionRepo
	contactRepo  *mockContactRepo
	settingsRepo *mockUserSettingsRepo
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	assert.NoError(t, err)

	sessionRepo := newStubAdminSessionRepo()
	contactRepo := new(mockContactRepo)
	settingsRepo := new(mockUserSettingsRepo)

	settingsSvc := service.NewSettingsService(fakeTxRunner{}, settingsRepo, handlerClock)
	adminSvc := service.NewAdminService(sessionRepo, settingsSvc, string(hash), adminTestSecret, handlerClock)
	contactSvc := service.NewContactService(contactRepo, validation.New(), handlerClock)

	sessionMw := middleware.NewAdminSessionMiddleware(adminSvc, string(hash))
	h := NewAdminHandler(adminSvc, contactSvc, settingsSvc, sessionMw, false)

	r := http.NewServeMux()
	r.Handle("/", middleware.Identity(h.Routes()))

	return &adminFixture{
		handler:      r,
		sessionRepo:  sessionRepo,
		contactRepo:  contactRepo,
		settingsRepo: settingsRepo,
	}
}

func (f *adminFixture) loggedInCookie(t *testing.T) *http.Cookie {
	t.Helper()
	token := "tok-test"
	f.sessionRepo.sessions[util.HmacSHA256(adminTestSecret, token)] = &model.AdminSession{
		ID:     "as-1",
		UserID: "user-1",
	}
	return &http.Cookie{Name: middleware.AdminSessionCookie, Value: token}
}

func TestAdminHandler_Login(t *testing.T) {
	t.Run("sets session cookie on success", func(t *testing.T) {
		f := newAdminFixture(t)
		f.settingsRepo.On("FindByUserID", mock.Anything, "user-1").Return(nil, nil)
		f.settingsRepo.On("Create", mock.Anything, "user-1", handlerNow).Return(&model.UserSettings{ID: "set-1"}, nil)

		body, _ := json.Marshal(map[string]string{"password": "hunter2"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		req.Header.Set(middleware.UserIDHeader, "user-1")
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		cookies := rec.Result().Cookies()
		assert.Len(t, cookies, 1)
		assert.Equal(t, middleware.AdminSessionCookie, cookies[0].Name)
		assert.NotEmpty(t, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("wrong password is a 401", func(t *testing.T) {
		f := newAdminFixture(t)

		body, _ := json.Marshal(map[string]string{"password": "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		req.Header.Set(middleware.UserIDHeader, "user-1")
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
	})

	t.Run("anonymous login attempt is a 401", func(t *testing.T) {
		f := newAdminFixture(t)

		body, _ := json.Marshal(map[string]string{"password": "hunter2"})
		req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminHandler_ListMessages(t *testing.T) {
	t.Run("renders linkified message bodies", func(t *testing.T) {
		f := newAdminFixture(t)
		f.contactRepo.On("FindAll", mock.Anything).Return([]model.ContactMessage{
			{ID: "msg-1", Message: "see https://example.com/bug"},
		}, nil)

		req := httptest.NewRequest(http.MethodGet, "/messages", nil)
		req.AddCookie(f.loggedInCookie(t))
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Messages []struct {
				MessageHTML string `json:"messageHtml"`
			} `json:"messages"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Len(t, resp.Messages, 1)
		assert.Contains(t, resp.Messages[0].MessageHTML, `<a href="https://example.com/bug"`)
	})

	t.Run("filters by status", func(t *testing.T) {
		f := newAdminFixture(t)
		f.contactRepo.On("FindByStatus", mock.Anything, model.ContactStatusStarred).Return([]model.ContactMessage{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/messages?status=starred", nil)
		req.AddCookie(f.loggedInCookie(t))
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		f.contactRepo.AssertExpectations(t)
	})

	t.Run("without session is a 401", func(t *testing.T) {
		f := newAdminFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/messages", nil)
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAdminHandler_NewMessageCount(t *testing.T) {
	t.Run("counts pending without since", func(t *testing.T) {
		f := newAdminFixture(t)
		f.contactRepo.On("CountByStatus", mock.Anything, model.ContactStatusPending).Return(3, nil)

		req := httptest.NewRequest(http.MethodGet, "/messages/new-count", nil)
		req.AddCookie(f.loggedInCookie(t))
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]int
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 3, resp["count"])
	})

	t.Run("counts since timestamp regardless of status", func(t *testing.T) {
		f := newAdminFixture(t)
		since := handlerNow.Add(-24 * time.Hour)
		f.contactRepo.On("CountCreatedAfter", mock.Anything, mock.MatchedBy(func(t time.Time) bool {
			return t.Equal(since)
		})).Return(4, nil)

		req := httptest.NewRequest(http.MethodGet, "/messages/new-count?since="+since.Format(time.RFC3339), nil)
		req.AddCookie(f.loggedInCookie(t))
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp map[string]int
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 4, resp["count"])
	})

	t.Run("bad since is a 400", func(t *testing.T) {
		f := newAdminFixture(t)

		req := httptest.NewRequest(http.MethodGet, "/messages/new-count?since=notatime", nil)
		req.AddCookie(f.loggedInCookie(t))
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminHandler_UpdateMessageStatus(t *testing.T) {
	t.Run("updates status", func(t *testing.T) {
		f := newAdminFixture(t)
		f.contactRepo.On("FindByID", mock.Anything, "msg-1").Return(&model.ContactMessage{ID: "msg-1", Status: model.ContactStatusPending}, nil)
		f.contactRepo.On("UpdateStatus", mock.Anything, "msg-1", model.ContactStatusAddressed, handlerNow).Return(nil)

		body, _ := json.Marshal(map[string]string{"status": "addressed"})
		req := httptest.NewRequest(http.MethodPatch, "/messages/msg-1/status", bytes.NewReader(body))
		req.AddCookie(f.loggedInCookie(t))
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var resp struct {
			Status string `json:"status"`
		}
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "addressed", resp.Status)
	})

	t.Run("unknown status is a 400", func(t *testing.T) {
		f := newAdminFixture(t)

		body, _ := json.Marshal(map[string]string{"status": "archived"})
		req := httptest.NewRequest(http.MethodPatch, "/messages/msg-1/status", bytes.NewReader(body))
		req.AddCookie(f.loggedInCookie(t))
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestAdminHandler_Logout(t *testing.T) {
	t.Run("deletes session and clears cookie", func(t *testing.T) {
		f := newAdminFixture(t)
		cookie := f.loggedInCookie(t)

		req := httptest.NewRequest(http.MethodPost, "/logout", nil)
		req.AddCookie(cookie)
		rec := httptest.NewRecorder()

		f.handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, f.sessionRepo.sessions)

		cookies := rec.Result().Cookies()
		assert.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}
