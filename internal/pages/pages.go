// Package pages holds the page controllers. Every page follows the same
// shape: check the route guard, fetch what the view needs (in parallel
// when the fetches are independent), reduce with the derive selectors and
// render. Mutations submit, report through the feed, then refetch; no
// page keeps optimistic state.
package pages

import (
	"errors"
	"fmt"

	"github.com/Gerri254/chainctl/internal/guard"
	"github.com/Gerri254/chainctl/internal/notify"
	"github.com/Gerri254/chainctl/internal/session"
	"github.com/Gerri254/chainctl/pkg/chainapi"
	"github.com/Gerri254/chainctl/pkg/models"
)

// Env is what every page controller needs.
type Env struct {
	Session *session.Manager
	Client  *chainapi.Client
	Feed    *notify.Feed
}

// RedirectError is returned by Load when the route guard bounces the
// viewer instead of rendering the page.
type RedirectError struct {
	To string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("redirect to %s", e.To)
}

// IsRedirect unwraps a guard redirect from a page load error.
func IsRedirect(err error) (string, bool) {
	var r *RedirectError
	if errors.As(err, &r) {
		return r.To, true
	}
	return "", false
}

// check runs the guard for the current session and converts a denial into
// a RedirectError.
func (e Env) check(allowed ...models.Role) (models.Session, error) {
	s := e.Session.Current()
	d := guard.Check(s, allowed...)
	if !d.Allow {
		return models.Session{}, &RedirectError{To: d.Redirect}
	}
	return s, nil
}
