package guard

import (
	"log/slog"
	"os"

	"warden/session"
)

// State is the route-guard state for one evaluated navigation.
type State uint8

const (
	// StateLoading defers the decision: bootstrap has not resolved yet and
	// neither protected content nor a redirect may be rendered.
	StateLoading State = iota
	// StateUnauthenticated redirects to the login route.
	StateUnauthenticated
	// StateAuthorized renders the requested route.
	StateAuthorized
	// StateRedirecting navigates to Result.RedirectTo.
	StateRedirecting
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateAuthorized:
		return "authorized"
	case StateRedirecting:
		return "redirecting"
	default:
		return "unknown"
	}
}

// Result is a renderable guard outcome. Redirects carry Replace=true so
// back-navigation never loops through the denied route.
type Result struct {
	State      State
	RedirectTo string
	Replace    bool
}

// Guard gates route entry behind the authentication state and the role policy.
//
// It holds no per-navigation state: Evaluate is called on every path change
// and the decision is never cached across navigations. It also never returns
// an error; every input resolves to one of the four states.
type Guard struct {
	log       *slog.Logger
	policy    Policy
	loginPath string
}

// New constructs a Guard. The login path is where unauthenticated sessions
// are sent.
func New(log *slog.Logger, policy Policy, loginPath string) *Guard {
	if log == nil {
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if loginPath == "" {
		loginPath = "/login"
	}
	return &Guard{log: log, policy: policy, loginPath: loginPath}
}

// Evaluate maps (AuthState, path) to a guard result.
func (g *Guard) Evaluate(auth session.AuthState, path string) Result {
	if auth.Loading {
		return Result{State: StateLoading}
	}

	// A published state violating the IsAuthenticated => User != nil invariant
	// is treated as unauthenticated rather than propagated.
	if !auth.IsAuthenticated || auth.User == nil {
		if auth.IsAuthenticated {
			g.log.Error("guard.state.invalid", "path", path)
		}
		return Result{State: StateUnauthenticated, RedirectTo: g.loginPath, Replace: true}
	}

	d := g.policy.Decide(auth.User.Role, path)
	if d.Allowed {
		return Result{State: StateAuthorized}
	}

	g.log.Info("guard.redirect", "role", auth.User.Role, "path", path, "to", d.RedirectTo)
	return Result{State: StateRedirecting, RedirectTo: d.RedirectTo, Replace: true}
}
