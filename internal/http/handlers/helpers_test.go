package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/Brijesh59/kite/internal/http/middleware"
	"github.com/Brijesh59/kite/internal/infrastructure/auth"
	"github.com/Brijesh59/kite/internal/mocks"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	adminOrigin = "http://admin.kite.test"
	webOrigin   = "http://web.kite.test"
)

type handlerEnv struct {
	router   *gin.Engine
	authSvc  *mocks.MockAuthService
	adminSvc *mocks.MockAdminService
	policies *mocks.MockPolicyService
	profiles *mocks.MockProfileRepository
	tokens   *auth.JWTServiceImpl
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	env := &handlerEnv{
		authSvc:  mocks.NewMockAuthService(),
		adminSvc: mocks.NewMockAdminService(),
		policies: mocks.NewMockPolicyService(),
		profiles: mocks.NewMockProfileRepository(),
		tokens:   auth.NewJWTService("access-secret", "refresh-secret", 15*time.Minute, 7*24*time.Hour),
	}

	resolver := &middleware.AudienceResolver{
		AdminPanelURL: adminOrigin,
		WebAppURL:     webOrigin,
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
	log := zap.NewNop()
	authMW := middleware.NewAuthMW(env.tokens, resolver)
	ah := NewAuthHandlers(env.authSvc, env.profiles, resolver, log)
	adh := NewAdminHandlers(env.adminSvc, log)
	ph := NewPolicyHandlers(env.policies, log)

	r := gin.New()
	a := r.Group("/api/auth")
	a.POST("/register", ah.Register)
	a.POST("/login", ah.Login)
	a.POST("/send-otp", ah.SendOTP)
	a.POST("/verify-otp", ah.VerifyOTP)
	a.POST("/forgot-password", ah.ForgotPassword)
	a.POST("/reset-password", ah.ResetPassword)
	a.POST("/refresh-token", ah.Refresh)
	a.POST("/logout", ah.Logout)
	a.GET("/me", authMW.Authenticate(), ah.Me)

	adm := r.Group("/api/admin", authMW.Authenticate(), middleware.RequireAdmin())
	adm.GET("/users", adh.ListUsers)
	adm.POST("/users", adh.CreateUser)
	adm.GET("/users/:id", adh.GetUser)
	adm.PUT("/users/:id", adh.UpdateUser)
	adm.PATCH("/users/:id/deactivate", adh.DeactivateUser)
	adm.DELETE("/users/:id", adh.DeleteUser)
	adm.GET("/policies", ph.List)
	adm.POST("/policies", ph.Add)
	adm.DELETE("/policies", ph.Remove)

	env.router = r
	return env
}

// accessToken signs an access token for a user with role
func (e *handlerEnv) accessToken(t *testing.T, id string, role domain.Role) string {
	t.Helper()
	token, _, err := e.tokens.IssueAccessToken(domain.TokenClaims{UserID: id, Email: id + "@example.com", Role: role})
	require.NoError(t, err)
	return token
}

type request struct {
	method  string
	path    string
	body    interface{}
	cookies []*http.Cookie
	headers map[string]string
}

func (e *handlerEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if req.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(req.body))
	}
	r := httptest.NewRequest(req.method, req.path, &buf)
	r.Header.Set("Content-Type", "application/json")
	for k, v := range req.headers {
		r.Header.Set(k, v)
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, r)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func cookiesByName(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := make(map[string]*http.Cookie)
	for _, c := range w.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}
