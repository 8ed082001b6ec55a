package gate

import (
	"context"
	"net/http"
)

// Views maps a route pattern to the handler that renders it. The "*" entry,
// when present, renders every matched route without its own view.
type Views map[string]http.Handler

type decisionContextKey struct{}

// DecisionFromContext returns the render decision the middleware attached to
// the request.
func DecisionFromContext(ctx context.Context) (Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(Decision)
	return d, ok
}

// Middleware gates every request whose path is in the route table. The request
// waits until bootstrap has settled and no loading operation is in flight;
// redirects are answered with 303 and matched routes are served by views.
// Paths outside the table pass to next.
func (g *Gate) Middleware(views Views) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, _, ok := g.table.Match(r.URL.Path); !ok {
				next.ServeHTTP(w, r)
				return
			}

			d, err := g.Navigate(r.Context(), r.URL.Path)
			if err != nil {
				http.Error(w, "session not ready", http.StatusServiceUnavailable)
				return
			}

			switch d.Action {
			case Redirect:
				http.Redirect(w, r, d.Target, http.StatusSeeOther)
			case Render:
				view, ok := views[d.Route.Pattern]
				if !ok {
					view, ok = views["*"]
				}
				if !ok || view == nil {
					http.NotFound(w, r)
					return
				}
				ctx := context.WithValue(r.Context(), decisionContextKey{}, d)
				view.ServeHTTP(w, r.WithContext(ctx))
			default:
				http.NotFound(w, r)
			}
		})
	}
}

// Handler is [Gate.Middleware] with a 404 for paths outside the route table.
func (g *Gate) Handler(views Views) http.Handler {
	return g.Middleware(views)(http.NotFoundHandler())
}
