package router

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/questx-lab/habit/pkg/errorx"
	"github.com/questx-lab/habit/pkg/xcontext"

	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"github.com/rs/cors"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)
type WebsocketHandlerFunc func(ctx context.Context, conn *websocket.Conn) error

// MiddlewareFunc runs before the handler. Returning an error stops the chain.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the handler, whether or not it failed.
type CloserFunc func(ctx context.Context)

type Router struct {
	ctx     context.Context
	mux     *http.ServeMux
	befores []MiddlewareFunc
	closers []CloserFunc
}

func New(ctx context.Context) *Router {
	return &Router{ctx: ctx, mux: http.NewServeMux()}
}

// Branch returns a router sharing the same mux, with a copy of the current middlewares.
func (r *Router) Branch() *Router {
	return &Router{
		ctx:     r.ctx,
		mux:     r.mux,
		befores: append([]MiddlewareFunc(nil), r.befores...),
		closers: append([]CloserFunc(nil), r.closers...),
	}
}

func (r *Router) Before(m MiddlewareFunc) {
	r.befores = append(r.befores, m)
}

func (r *Router) AddCloser(c CloserFunc) {
	r.closers = append(r.closers, c)
}

func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) Handler() http.Handler {
	cfg := xcontext.Configs(r.ctx).ApiServer
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		AllowCredentials: true,
	}).Handler(r.mux)
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodGet, pattern, handler)
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	route(r, http.MethodPost, pattern, handler)
}

func Websocket(r *Router, pattern string, handler WebsocketHandlerFunc) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(*http.Request) bool { return true },
	}

	befores := r.befores
	closers := r.closers
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(w, req)
		defer func() { runClosers(ctx, closers) }()

		ctx, err := runBefores(ctx, befores)
		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(ctx, w, err)
			return
		}

		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot upgrade websocket: %v", err)
			return
		}
		defer conn.Close()

		if err := handler(ctx, conn); err != nil {
			ctx = xcontext.WithError(ctx, err)
		}
	})
}

func route[Request, Response any](
	r *Router, method, pattern string, handler HandlerFunc[Request, Response],
) {
	befores := r.befores
	closers := r.closers
	r.mux.HandleFunc(pattern, func(w http.ResponseWriter, req *http.Request) {
		ctx := r.newContext(w, req)
		defer func() { runClosers(ctx, closers) }()

		resp, err := func() (*Response, error) {
			if req.Method != method {
				return nil, errorx.New(errorx.BadRequest, "Method %s is not allowed", req.Method)
			}

			var err error
			ctx, err = runBefores(ctx, befores)
			if err != nil {
				return nil, err
			}

			request := new(Request)
			if err := decodeRequest(req, request); err != nil {
				xcontext.Logger(ctx).Debugf("Cannot decode request: %v", err)
				return nil, errorx.New(errorx.BadRequest, "Invalid request")
			}

			return handler(ctx, request)
		}()

		if err != nil {
			ctx = xcontext.WithError(ctx, err)
			writeError(ctx, w, err)
			return
		}

		ctx = xcontext.WithResponse(ctx, resp)
		if err := writeJSON(w, http.StatusOK, newResponse(resp)); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot write the response: %v", err)
		}
	})
}

func (r *Router) newContext(w http.ResponseWriter, req *http.Request) context.Context {
	ctx := req.Context()
	ctx = xcontext.WithConfigs(ctx, xcontext.Configs(r.ctx))
	ctx = xcontext.WithLogger(ctx, xcontext.Logger(r.ctx))
	ctx = xcontext.WithDB(ctx, xcontext.DB(r.ctx))
	ctx = xcontext.WithHTTPRequest(ctx, req)
	ctx = xcontext.WithHTTPWriter(ctx, w)
	return ctx
}

func runBefores(ctx context.Context, befores []MiddlewareFunc) (context.Context, error) {
	for _, m := range befores {
		var err error
		ctx, err = m(ctx)
		if err != nil {
			return ctx, err
		}
	}

	return ctx, nil
}

func runClosers(ctx context.Context, closers []CloserFunc) {
	for _, c := range closers {
		c(ctx)
	}
}

func decodeRequest(req *http.Request, v any) error {
	switch req.Method {
	case http.MethodGet:
		query := map[string]any{}
		for k, values := range req.URL.Query() {
			if len(values) == 1 {
				query[k] = values[0]
			} else {
				query[k] = values
			}
		}

		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			TagName:          "json",
			WeaklyTypedInput: true,
			Result:           v,
		})
		if err != nil {
			return err
		}

		return decoder.Decode(query)

	default:
		if req.ContentLength == 0 {
			return nil
		}

		return json.NewDecoder(req.Body).Decode(v)
	}
}
