// Package route decides what a screen may show for a given auth state.
package route

import (
	"slices"

	"github.com/naveenspark/yorch/pkg/domain"
)

// Route is a screen path.
type Route string

const (
	Login      Route = "/login"
	Home       Route = "/"
	Chat       Route = "/chat"
	Clientes   Route = "/clientes"
	Pendientes Route = "/pendientes"
)

// publicRoutes are reachable without a session.
var publicRoutes = []Route{Login}

// IsPublic reports whether r is reachable without a session. Matching is exact.
func IsPublic(r Route) bool {
	return slices.Contains(publicRoutes, r)
}

// Action is what the guard tells the caller to do.
type Action int

const (
	Render   Action = iota // show the requested route
	Wait                   // auth state is still loading; show a placeholder
	Redirect               // navigate to Decision.Target instead
)

func (a Action) String() string {
	switch a {
	case Render:
		return "render"
	case Wait:
		return "wait"
	case Redirect:
		return "redirect"
	}
	return "unknown"
}

// Decision is the guard's verdict for one (state, route) pair.
type Decision struct {
	Action Action
	Target Route // set when Action is Redirect
}

// Guard is a pure function of state and requested route.
func Guard(state domain.AuthState, requested Route) Decision {
	if state.IsLoading {
		return Decision{Action: Wait}
	}
	if !state.IsAuthenticated && !IsPublic(requested) {
		return Decision{Action: Redirect, Target: Login}
	}
	return Decision{Action: Render}
}
