package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/Brijesh59/kite/domain"
	"github.com/gin-gonic/gin"
)

// AudienceResolver decides which credential namespace (web or admin) a request uses
// and writes or clears the matching cookie pair.
type AudienceResolver struct {
	AdminPanelURL string
	WebAppURL     string
	Secure        bool
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// RefreshCredential is a refresh token together with the audience it was presented for.
// FromCookie is false when the token came from the request body.
type RefreshCredential struct {
	Token      string
	Audience   domain.Audience
	FromCookie bool
}

// AccessToken resolves the access token of r, or "" when none was presented.
// Origin (or Referer) picks the matching cookie first, then the admin cookie,
// then the web cookie, then the Bearer header.
func (a *AudienceResolver) AccessToken(r *http.Request) string {
	origin := r.Header.Get("Origin")
	if origin == "" {
		origin = r.Referer()
	}

	admin := cookieValue(r, domain.AudienceAdmin.AccessCookie())
	web := cookieValue(r, domain.AudienceWeb.AccessCookie())

	switch {
	case hasPrefix(origin, a.AdminPanelURL) && admin != "":
		return admin
	case hasPrefix(origin, a.WebAppURL) && web != "":
		return web
	case admin != "":
		return admin
	case web != "":
		return web
	}

	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// RefreshToken resolves the refresh token: admin cookie, web cookie, then bodyToken
func (a *AudienceResolver) RefreshToken(r *http.Request, bodyToken string) RefreshCredential {
	if token := cookieValue(r, domain.AudienceAdmin.RefreshCookie()); token != "" {
		return RefreshCredential{Token: token, Audience: domain.AudienceAdmin, FromCookie: true}
	}
	if token := cookieValue(r, domain.AudienceWeb.RefreshCookie()); token != "" {
		return RefreshCredential{Token: token, Audience: domain.AudienceWeb, FromCookie: true}
	}
	return RefreshCredential{Token: strings.TrimSpace(bodyToken), Audience: domain.AudienceWeb}
}

// SetAuthCookies writes the access/refresh pair under the audience's cookie names
func (a *AudienceResolver) SetAuthCookies(c *gin.Context, aud domain.Audience, tokens domain.AuthTokens) {
	a.setCookie(c, aud.AccessCookie(), tokens.AccessToken, a.AccessTTL)
	if tokens.RefreshToken != "" {
		a.setCookie(c, aud.RefreshCookie(), tokens.RefreshToken, a.RefreshTTL)
	}
}

// ClearAuthCookies expires the audience's pair. When the audience could not be
// resolved every cookie name of both audiences is cleared.
func (a *AudienceResolver) ClearAuthCookies(c *gin.Context, aud domain.Audience, resolved bool) {
	audiences := domain.Audiences
	if resolved {
		audiences = []domain.Audience{aud}
	}
	for _, au := range audiences {
		a.setCookie(c, au.AccessCookie(), "", -1)
		a.setCookie(c, au.RefreshCookie(), "", -1)
	}
}

func (a *AudienceResolver) setCookie(c *gin.Context, name, value string, ttl time.Duration) {
	maxAge := -1
	if ttl > 0 {
		maxAge = int(ttl / time.Second)
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(name, value, maxAge, "/", "", a.Secure, true)
}

func cookieValue(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func hasPrefix(origin, url string) bool {
	return origin != "" && url != "" && strings.HasPrefix(origin, url)
}
