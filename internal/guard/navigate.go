package guard

import (
	"time"

	"mess_finder/internal/model"
)

const LoginPath = "/login"

// LandingPages maps each role to the page it is sent to after login
var LandingPages = map[string]string{
	model.RoleOwner: "/owner",
	model.RoleAdmin: "/admin",
}

// Navigation tells the client router what to do with a route change.
// It is advisory only; the server re-evaluates every request.
type Navigation struct {
	Allow        bool   `json:"allow"`
	Redirect     string `json:"redirect,omitempty"`
	DiscardToken bool   `json:"discard_token"`
	Outcome      string `json:"outcome"`
	Role         string `json:"role,omitempty"`
}

// Navigate evaluates a route change the same way Evaluate does for requests
func Navigate(v Verifier, token string, now time.Time, allowed ...string) Navigation {
	d := Evaluate(v, token, now, allowed...)
	nav := Navigation{Outcome: d.Outcome.String()}
	if d.Principal != nil {
		nav.Role = d.Principal.Role
	}

	switch d.Outcome {
	case Authorized:
		nav.Allow = true
	case WrongRole:
		if page, ok := LandingPages[d.Principal.Role]; ok {
			nav.Redirect = page
		} else {
			nav.Redirect = LoginPath
			nav.DiscardToken = true
		}
	case Invalid, Expired:
		nav.Redirect = LoginPath
		nav.DiscardToken = true
	default:
		nav.Redirect = LoginPath
	}
	return nav
}
