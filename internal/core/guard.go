package core

// Route paths the client knows about. They mirror the page structure of
// the product: two auth screens and the protected panels.
const (
	RouteLogin      = "/login"
	RouteRegister   = "/register"
	RouteDashboard  = "/dashboard"
	RouteProfile    = "/profile"
	RouteText       = "/text"
	RouteImage      = "/image"
	RouteFinance    = "/finance"
	RouteRAG        = "/rag"
	RouteRAGSearch  = "/rag/search"
	RouteRAGCompare = "/rag/compare"
)

// Target is the outcome of resolving a path against the session.
type Target int

const (
	// TargetRender shows the requested route.
	TargetRender Target = iota
	// TargetRedirectLogin sends the user to the auth screen.
	TargetRedirectLogin
	// TargetRedirectDashboard bounces a signed-in user off the auth
	// screens.
	TargetRedirectDashboard
	// TargetWait renders a neutral waiting state while the session is
	// still resolving; never a redirect.
	TargetWait
)

func (t Target) String() string {
	switch t {
	case TargetRender:
		return "render"
	case TargetRedirectLogin:
		return "redirect-login"
	case TargetRedirectDashboard:
		return "redirect-dashboard"
	case TargetWait:
		return "wait"
	}
	return "unknown"
}

var authScreens = map[string]bool{
	RouteLogin:    true,
	RouteRegister: true,
}

var protectedRoutes = map[string]bool{
	RouteDashboard:  true,
	RouteProfile:    true,
	RouteText:       true,
	RouteImage:      true,
	RouteFinance:    true,
	RouteRAG:        true,
	RouteRAGSearch:  true,
	RouteRAGCompare: true,
}

// Resolve is the route guard: a pure function of (path, snapshot).
// Unknown paths fall through to the auth screen.
func Resolve(path string, snap Snapshot) Target {
	if snap.Loading {
		return TargetWait
	}
	signedIn := snap.Session != nil
	switch {
	case authScreens[path]:
		if signedIn {
			return TargetRedirectDashboard
		}
		return TargetRender
	case protectedRoutes[path]:
		if !signedIn {
			return TargetRedirectLogin
		}
		return TargetRender
	default:
		return TargetRedirectLogin
	}
}
