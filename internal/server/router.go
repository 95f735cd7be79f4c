package server

import "net/http"

// BasicRouter is an [http.ServeMux] with a middleware stack applied to every
// registered route.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
}

// NewBasicRouter creates an empty router with no middleware.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware to the stack. Middleware wraps routes registered
// after the call, in the order it was added (first added runs outermost).
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for one method and path. The method becomes part
// of the mux pattern, so the mux itself rejects other methods on the path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mux.Handle(method+" "+path, r.wrap(handler))
}

// Handler registers every pattern the [Handler] serves. The patterns carry
// their own methods, and all share one wrapped chain.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.wrap(handler)
	for _, pattern := range handler.Routes() {
		r.mux.Handle(pattern, wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *BasicRouter) wrap(handler http.Handler) http.Handler {
	wrapped := handler
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}
	return wrapped
}
