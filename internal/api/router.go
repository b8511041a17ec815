package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/example/lablink/internal/application"
)

// Request is one call through the uniform invoke contract. Body may be nil,
// JSON or form-encoded bytes or string, url.Values, a map or any value that
// marshals to a JSON object.
type Request struct {
	Method  string
	Path    string
	Body    any
	Headers map[string]string
}

// Response is a successful call result. Body is nil for 204 responses.
type Response struct {
	Status int
	Body   any
}

// Call is the request as seen by handlers and middleware.
type Call struct {
	Method string
	Path   string
	// Route is the matched pattern, for example "/resources/{id}". It is
	// empty when no route matched.
	Route  string
	Param  string
	Header http.Header
	Fields Fields

	// User and Token are set once the session gate admitted the call.
	User  application.User
	Token string

	body any
}

// Handler serves a routed call.
type Handler func(ctx context.Context, call *Call) (Response, error)

// Middleware decorates a Handler.
type Middleware func(Handler) Handler

type route struct {
	pattern string
	handler Handler
}

type prefixRoute struct {
	prefix  string
	pattern string
	methods map[string]Handler
}

// Router matches (method, path) pairs in three tiers: exact path, then the
// longest prefix followed by a single identifier segment, then not found.
type Router struct {
	exact    map[string]map[string]route
	prefixes []*prefixRoute
	handler  Handler
}

// RouterConfig wires handlers into a Router.
type RouterConfig struct {
	Auth         *AuthHandler
	Laboratories *LaboratoryHandler
	Resources    *ResourceHandler
	Reservations *ReservationHandler
	Sessions     SessionResolver
	Middleware   []Middleware
}

// NewRouter registers every route of the configured handlers.
func NewRouter(cfg RouterConfig) *Router {
	r := &Router{exact: make(map[string]map[string]route)}

	public := withBody
	protect := withBody
	if cfg.Sessions != nil {
		gate := RequireSession(cfg.Sessions)
		protect = func(h Handler) Handler { return gate(withBody(h)) }
	}

	if cfg.Auth != nil {
		r.handle(http.MethodPost, "/auth/login", public(cfg.Auth.Login))
		r.handle(http.MethodPost, "/auth/logout", protect(cfg.Auth.Logout))
		r.handle(http.MethodPost, "/user", public(cfg.Auth.Register))
		r.handle(http.MethodGet, "/user/me", protect(cfg.Auth.Me))
	}

	if cfg.Laboratories != nil {
		r.handle(http.MethodGet, "/laboratories", protect(cfg.Laboratories.List))
		r.handle(http.MethodPost, "/laboratories", protect(cfg.Laboratories.Create))
		r.handle(http.MethodGet, "/laboratories/{id}", protect(cfg.Laboratories.Get))
		r.handle(http.MethodPatch, "/laboratories/{id}", protect(cfg.Laboratories.Update))
		r.handle(http.MethodDelete, "/laboratories/{id}", protect(cfg.Laboratories.Delete))
	}

	if cfg.Resources != nil {
		r.handle(http.MethodGet, "/resources", protect(cfg.Resources.List))
		r.handle(http.MethodPost, "/resources", protect(cfg.Resources.Create))
		r.handle(http.MethodGet, "/resources/{id}", protect(cfg.Resources.Get))
		r.handle(http.MethodPatch, "/resources/{id}", protect(cfg.Resources.Update))
		r.handle(http.MethodDelete, "/resources/{id}", protect(cfg.Resources.Delete))
	}

	if cfg.Reservations != nil {
		r.handle(http.MethodGet, "/reservations", protect(cfg.Reservations.List))
		r.handle(http.MethodPost, "/reservations", protect(cfg.Reservations.Create))
		r.handle(http.MethodGet, "/reservations/conflicts", protect(cfg.Reservations.Conflicts))
		r.handle(http.MethodGet, "/reservations/user/{userId}", protect(cfg.Reservations.ListForUser))
		r.handle(http.MethodGet, "/reservations/{id}", protect(cfg.Reservations.Get))
		r.handle(http.MethodPatch, "/reservations/{id}", protect(cfg.Reservations.Update))
		r.handle(http.MethodDelete, "/reservations/{id}", protect(cfg.Reservations.Delete))
	}

	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].prefix) > len(r.prefixes[j].prefix)
	})

	var handler Handler = r.dispatch
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}
	r.handler = handler
	return r
}

// handle registers a pattern. A pattern ending in "/{name}" matches its
// prefix followed by exactly one non-empty segment.
func (r *Router) handle(method, pattern string, h Handler) {
	if open := strings.LastIndex(pattern, "/{"); open >= 0 && strings.HasSuffix(pattern, "}") {
		prefix := pattern[:open+1]
		for _, p := range r.prefixes {
			if p.prefix == prefix {
				p.methods[method] = h
				return
			}
		}
		r.prefixes = append(r.prefixes, &prefixRoute{prefix: prefix, pattern: pattern, methods: map[string]Handler{method: h}})
		return
	}

	if r.exact[pattern] == nil {
		r.exact[pattern] = make(map[string]route)
	}
	r.exact[pattern][method] = route{pattern: pattern, handler: h}
}

// Route serves one request. Failures are returned as-is; translating them
// into the caller-facing taxonomy is left to the error normalizer.
func (r *Router) Route(ctx context.Context, req Request) (Response, error) {
	call := &Call{
		Method: strings.ToUpper(strings.TrimSpace(req.Method)),
		Path:   normalizePath(req.Path),
		Header: make(http.Header, len(req.Headers)),
		body:   req.Body,
	}
	if call.Method == "" {
		call.Method = http.MethodGet
	}
	setHeaders(call.Header, req.Headers)
	return r.handler(ctx, call)
}

// setHeaders copies headers in a fixed order. When several spellings of one
// name are present, the canonical spelling wins unless its value is empty.
func setHeaders(dst http.Header, headers map[string]string) {
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if http.CanonicalHeaderKey(k) != k && headers[k] != "" {
			dst.Set(k, headers[k])
		}
	}
	for _, k := range keys {
		if http.CanonicalHeaderKey(k) == k && (headers[k] != "" || dst.Get(k) == "") {
			dst.Set(k, headers[k])
		}
	}
}

func (r *Router) dispatch(ctx context.Context, call *Call) (Response, error) {
	h, ok := r.match(call)
	if !ok {
		return Response{}, &application.Error{
			Kind:    application.ErrNotFound,
			Message: fmt.Sprintf("Route not found: %s %s", call.Method, call.Path),
		}
	}
	return h(ctx, call)
}

// withBody decodes the request body into call.Fields. Protected routes run it
// after the session gate so anonymous calls never reach body validation.
func withBody(next Handler) Handler {
	return func(ctx context.Context, call *Call) (Response, error) {
		fields, err := decodeBody(call.body)
		if err != nil {
			return Response{}, err
		}
		call.Fields = fields
		return next(ctx, call)
	}
}

func (r *Router) match(call *Call) (Handler, bool) {
	if methods, ok := r.exact[call.Path]; ok {
		if rt, ok := methods[call.Method]; ok {
			call.Route = rt.pattern
			return rt.handler, true
		}
	}

	for _, p := range r.prefixes {
		if !strings.HasPrefix(call.Path, p.prefix) {
			continue
		}
		segment := strings.TrimPrefix(call.Path, p.prefix)
		if segment == "" || strings.Contains(segment, "/") {
			continue
		}
		h, ok := p.methods[call.Method]
		if !ok {
			continue
		}
		call.Route = p.pattern
		call.Param = segment
		return h, true
	}
	return nil, false
}

// normalizePath drops any query string and reduces absolute URLs to their path.
func normalizePath(raw string) string {
	raw = strings.TrimSpace(raw)
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		raw = raw[:i]
	}
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		if u, err := url.Parse(raw); err == nil {
			raw = u.Path
		}
	}
	if raw == "" {
		return "/"
	}
	if !strings.HasPrefix(raw, "/") {
		raw = "/" + raw
	}
	return raw
}
