// Package guard centralizes the auth/role checks every protected page runs
// before rendering anything.
package guard

import "github.com/Gerri254/chainctl/pkg/models"

// LoginRoute is where unauthenticated visitors are sent.
const LoginRoute = "/login"

// Decision is the outcome of a guard check. When Allow is false, Redirect
// names the route to send the visitor to; protected content is never
// rendered on a deny.
type Decision struct {
	Allow    bool
	Redirect string
}

// Check evaluates a page's role requirements against the session. An empty
// allowed list means any authenticated user may view the page. A signed-in
// user of the wrong role is sent to their own role's landing route, never
// shown the protected content.
func Check(s models.Session, allowed ...models.Role) Decision {
	if !s.Authenticated() {
		return Decision{Redirect: LoginRoute}
	}
	if len(allowed) == 0 {
		return Decision{Allow: true}
	}

	role := s.User.EffectiveRole()
	for _, r := range allowed {
		if role == r {
			return Decision{Allow: true}
		}
	}
	// admins see everything on the procurement side
	if role == models.RoleAdmin {
		return Decision{Allow: true}
	}

	return Decision{Redirect: role.LandingRoute()}
}
