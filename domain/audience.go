package domain

// Audience identifies which frontend a credential pair belongs to
type Audience int

const (
	AudienceWeb Audience = iota
	AudienceAdmin
)

const adminCookiePrefix = "admin_"

// CookiePrefix returns the cookie-name prefix of the audience
func (a Audience) CookiePrefix() string {
	if a == AudienceAdmin {
		return adminCookiePrefix
	}
	return ""
}

// AccessCookie returns the access token cookie name for the audience
func (a Audience) AccessCookie() string { return a.CookiePrefix() + "accessToken" }

// RefreshCookie returns the refresh token cookie name for the audience
func (a Audience) RefreshCookie() string { return a.CookiePrefix() + "refreshToken" }

func (a Audience) String() string {
	if a == AudienceAdmin {
		return "admin"
	}
	return "web"
}

// ParseAudience maps a declared client type to an audience.
// An empty client type is the web audience.
func ParseAudience(clientType string) (Audience, bool) {
	switch clientType {
	case "", "web":
		return AudienceWeb, true
	case "admin":
		return AudienceAdmin, true
	}
	return AudienceWeb, false
}

// Audiences lists every audience, web first
var Audiences = []Audience{AudienceWeb, AudienceAdmin}
