package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/bson"

	eventbus "github.com/hanpama/mongograph/internal/eventbus"
	events "github.com/hanpama/mongograph/internal/events"
	language "github.com/hanpama/mongograph/internal/language"
	projection "github.com/hanpama/mongograph/internal/projection"
	reqid "github.com/hanpama/mongograph/internal/reqid"
	schema "github.com/hanpama/mongograph/internal/schema"
)

// Finder fetches documents for a compiled plan. It is the part of the
// MongoDB store the server depends on.
type Finder interface {
	Find(ctx context.Context, collection string, filter bson.M, proj projection.Projection) ([]bson.M, error)
}

// Handler is an http.Handler exposing the projection compiler.
// POST /plan compiles a query into per-root-field fetch plans;
// POST /query compiles and executes them against the store.
type Handler struct {
	schema   *schema.Schema
	compiler *projection.Compiler
	store    Finder
	opt      Options
	inner    http.Handler
}

type Options struct {
	// Timeout sets a default timeout if the incoming request context has none.
	// 0 means no default timeout.
	Timeout time.Duration

	// Pretty enables indented JSON responses (useful for dev).
	Pretty bool

	// MaxBodyBytes limits the size of the request body. 0 means unlimited.
	MaxBodyBytes int64

	// Exclude names top-level fields that are never projected, on top of
	// whatever the request itself excludes.
	Exclude []string

	// AllowedOrigins enables CORS when non-empty.
	AllowedOrigins []string
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithExclude(fields ...string) Option {
	return func(o *Options) { o.Exclude = fields }
}
func WithCORS(origins ...string) Option {
	return func(o *Options) { o.AllowedOrigins = origins }
}

// New creates the HTTP handler for the given schema and store.
// store may be nil, in which case /query responds 503.
func New(sch *schema.Schema, store Finder, opts ...Option) (*Handler, error) {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	h := &Handler{
		schema:   sch,
		compiler: projection.NewCompiler(sch),
		store:    store,
		opt:      op,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/plan", h.handlePlan)
	mux.HandleFunc("/query", h.handleQuery)
	h.inner = mux
	if len(op.AllowedOrigins) > 0 {
		h.inner = cors.New(cors.Options{
			AllowedOrigins: op.AllowedOrigins,
			AllowedMethods: []string{http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(mux)
	}
	return h, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	ctx, _ = reqid.NewContext(ctx)
	sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{Request: r, Status: sw.status, Duration: time.Since(start)})
	}()

	h.inner.ServeHTTP(sw, r.WithContext(ctx))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// ------------------ Request parsing ------------------

// PlanRequest is the body of both endpoints. Variables only feed root-field
// filters; they never change the compiled projection.
type PlanRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
	Exclude       []string       `json:"exclude,omitempty"`
}

func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request) (PlanRequest, bool) {
	if r.Method != http.MethodPost {
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
		return PlanRequest{}, false
	}
	ct := r.Header.Get("Content-Type")
	if ct != "" && ct != "application/json" && !startsWith(ct, "application/json;") {
		h.writeError(w, http.StatusBadRequest, "unsupported Content-Type", nil)
		return PlanRequest{}, false
	}

	reader := io.Reader(r.Body)
	if h.opt.MaxBodyBytes > 0 {
		reader = io.LimitReader(r.Body, h.opt.MaxBodyBytes+1)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "failed to read body", nil)
		return PlanRequest{}, false
	}
	defer r.Body.Close()
	if h.opt.MaxBodyBytes > 0 && int64(len(body)) > h.opt.MaxBodyBytes {
		h.writeError(w, http.StatusRequestEntityTooLarge, "body too large", nil)
		return PlanRequest{}, false
	}

	var req PlanRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", nil)
		return PlanRequest{}, false
	}
	if req.Query == "" {
		h.writeError(w, http.StatusBadRequest, "missing 'query'", nil)
		return PlanRequest{}, false
	}
	return req, true
}

// ------------------ Planning ------------------

// Plan describes how to fetch one root field.
type Plan struct {
	Collection string   `json:"collection"`
	Projection []string `json:"projection"`
}

// rootPlan carries what /query needs beyond the wire-level Plan.
type rootPlan struct {
	name       string
	collection string
	filter     bson.M
	proj       projection.Projection
}

// PlanQuery compiles each root field of query into a fetch plan keyed by
// root field name.
func PlanQuery(ctx context.Context, sch *schema.Schema, query, operationName string, exclude []string) (map[string]Plan, error) {
	plans, perr := planRoots(ctx, sch, projection.NewCompiler(sch), query, operationName, nil, exclude)
	if perr != nil {
		return nil, perr.err()
	}
	out := make(map[string]Plan, len(plans))
	for _, p := range plans {
		out[p.name] = Plan{Collection: p.collection, Projection: p.proj.Paths()}
	}
	return out, nil
}

func planRoots(ctx context.Context, sch *schema.Schema, compiler *projection.Compiler, query, operationName string, vars map[string]any, exclude []string) ([]rootPlan, *planError) {
	doc, err := language.ParseQuery(query)
	if err != nil {
		return nil, &planError{status: http.StatusBadRequest, message: err.Error()}
	}
	opDef := doc.Operations.ForName(operationName)
	if opDef == nil && len(doc.Operations) == 1 {
		opDef = doc.Operations[0]
	}
	if opDef == nil {
		return nil, &planError{status: http.StatusBadRequest, message: "operation not found"}
	}
	if opDef.Operation != language.Query {
		return nil, &planError{status: http.StatusBadRequest, message: "only query operations are supported"}
	}
	queryType := sch.GetQueryType()
	if queryType == nil {
		return nil, &planError{status: http.StatusInternalServerError, message: "schema has no query type"}
	}

	var plans []rootPlan
	for _, sel := range opDef.SelectionSet {
		field, ok := sel.(*language.Field)
		if !ok {
			return nil, &planError{status: http.StatusBadRequest, message: "fragments are not supported at the operation root"}
		}
		if field.Name == "__typename" {
			continue
		}
		fd := queryType.GetField(field.Name)
		if fd == nil {
			return nil, &planError{status: http.StatusBadRequest, message: "unknown root field " + strconv.Quote(field.Name)}
		}
		typeName := fd.Type.GetNamedType()
		t := sch.GetType(typeName)
		if t == nil || t.Kind != schema.TypeKindObject || t.Collection == "" {
			return nil, &planError{
				status:  http.StatusBadRequest,
				message: "root field " + strconv.Quote(field.Name) + " does not resolve to a collection-backed type",
			}
		}

		start := time.Now()
		eventbus.Publish(ctx, events.CompileStart{Type: typeName, OperationName: operationName})
		proj, err := compiler.Compile(typeName, field.SelectionSet, doc.Fragments, exclude)
		eventbus.Publish(ctx, events.CompileFinish{
			Type:          typeName,
			OperationName: operationName,
			PathCount:     len(proj),
			Err:           err,
			Duration:      time.Since(start),
		})
		if err != nil {
			return nil, compileError(err)
		}

		plans = append(plans, rootPlan{
			name:       field.Name,
			collection: t.Collection,
			filter:     fieldFilter(field.Arguments, vars),
			proj:       proj,
		})
	}
	if len(plans) == 0 {
		return nil, &planError{status: http.StatusBadRequest, message: "no root fields to plan"}
	}
	return plans, nil
}

// fieldFilter turns root-field arguments into an equality filter.
// The id argument addresses the MongoDB _id field.
func fieldFilter(args language.ArgumentList, vars map[string]any) bson.M {
	if len(args) == 0 {
		return bson.M{}
	}
	filter := make(bson.M, len(args))
	for _, arg := range args {
		key := arg.Name
		if key == "id" {
			key = "_id"
		}
		filter[key] = argValue(arg.Value, vars)
	}
	return filter
}

func argValue(v *language.Value, vars map[string]any) any {
	switch v.Kind {
	case language.Variable:
		return vars[v.Raw]
	case language.IntValue:
		if n, err := strconv.ParseInt(v.Raw, 10, 64); err == nil {
			return n
		}
	case language.FloatValue:
		if f, err := strconv.ParseFloat(v.Raw, 64); err == nil {
			return f
		}
	case language.BooleanValue:
		return v.Raw == "true"
	case language.NullValue:
		return nil
	}
	return v.Raw
}

// ------------------ Endpoints ------------------

func (h *Handler) handlePlan(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	exclude := append(append([]string(nil), h.opt.Exclude...), req.Exclude...)
	plans, perr := planRoots(r.Context(), h.schema, h.compiler, req.Query, req.OperationName, req.Variables, exclude)
	if perr != nil {
		h.writeError(w, perr.status, perr.message, perr.extensions)
		return
	}
	out := make(map[string]Plan, len(plans))
	for _, p := range plans {
		out[p.name] = Plan{Collection: p.collection, Projection: p.proj.Paths()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"plans": out}, h.opt.Pretty)
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	req, ok := h.parseRequest(w, r)
	if !ok {
		return
	}
	if h.store == nil {
		h.writeError(w, http.StatusServiceUnavailable, "no store configured", nil)
		return
	}
	ctx := r.Context()
	exclude := append(append([]string(nil), h.opt.Exclude...), req.Exclude...)
	plans, perr := planRoots(ctx, h.schema, h.compiler, req.Query, req.OperationName, req.Variables, exclude)
	if perr != nil {
		h.writeError(w, perr.status, perr.message, perr.extensions)
		return
	}
	data := make(map[string]any, len(plans))
	for _, p := range plans {
		docs, err := h.store.Find(ctx, p.collection, p.filter, p.proj)
		if err != nil {
			h.writeError(w, http.StatusInternalServerError, err.Error(), nil)
			return
		}
		data[p.name] = docs
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": data}, h.opt.Pretty)
}

// ------------------ Response formatting ------------------

type planError struct {
	status     int
	message    string
	extensions map[string]any
	cause      error
}

func (e *planError) err() error {
	if e.cause != nil {
		return e.cause
	}
	return errors.New(e.message)
}

func compileError(err error) *planError {
	pe := &planError{status: http.StatusBadRequest, message: err.Error(), cause: err}
	for _, kind := range []projection.ErrorKind{
		projection.KindContract,
		projection.KindSchemaMismatch,
		projection.KindFragmentNotFound,
		projection.KindFragmentCycle,
	} {
		if projection.IsKind(err, kind) {
			pe.extensions = map[string]any{"code": string(kind)}
			break
		}
	}
	return pe
}

type apiError struct {
	Message    string         `json:"message"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, extensions map[string]any) {
	body := map[string]any{"errors": []apiError{{Message: message, Extensions: extensions}}}
	writeJSON(w, status, body, h.opt.Pretty)
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

func startsWith(s, prefix string) bool { return len(s) >= len(prefix) && s[:len(prefix)] == prefix }
