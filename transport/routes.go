package transport

import "strings"

// Routes maps each remote operation to its path relative to the base URL.
type Routes struct {
	Login           string `env:"LOGIN"`
	Register        string `env:"REGISTER"`
	Logout          string `env:"LOGOUT"`
	User            string `env:"USER"`
	Refresh         string `env:"REFRESH"`
	VerifySignature string `env:"VERIFY_SIGNATURE"`
	SessionToken    string `env:"SESSION_TOKEN"`
}

// DefaultRoutes returns the standard /jwt/* route table.
func DefaultRoutes() Routes {
	return Routes{
		Login:           "/jwt/login",
		Register:        "/jwt/register",
		Logout:          "/jwt/logout",
		User:            "/jwt/user",
		Refresh:         "/jwt/refresh",
		VerifySignature: "/jwt/verify-signature",
		SessionToken:    "/jwt/token",
	}
}

// withDefaults fills empty entries from DefaultRoutes.
func (r Routes) withDefaults() Routes {
	d := DefaultRoutes()
	fill := func(v *string, def string) {
		if strings.TrimSpace(*v) == "" {
			*v = def
		}
	}
	fill(&r.Login, d.Login)
	fill(&r.Register, d.Register)
	fill(&r.Logout, d.Logout)
	fill(&r.User, d.User)
	fill(&r.Refresh, d.Refresh)
	fill(&r.VerifySignature, d.VerifySignature)
	fill(&r.SessionToken, d.SessionToken)
	return r
}
