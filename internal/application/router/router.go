package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/bryanwahyu/agentcy/internal/domain/ai"
	domain "github.com/bryanwahyu/agentcy/internal/domain/tactical"
)

// Request is the runtime-neutral shape every adapter translates into.
type Request struct {
	Method string
	Path   string
	Body   []byte
}

// Response carries the exact bytes adapters must write back.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Executor runs one analysis request.
type Executor interface {
	Execute(ctx context.Context, c domain.Category, content string) (domain.Record, error)
}

// HealthChecker reports the state of the backing store.
type HealthChecker interface {
	Check(ctx context.Context) error
}

const (
	systemOnline    = "ONLINE"
	commsEncrypted  = "ENCRYPTED"
	dbOperational   = "OPERATIONAL"
	dbDegraded      = "DEGRADED"
	msgInvalidJSON  = "invalid JSON body"
	msgNotFound     = "not found"
	msgUnavailable  = "AI gateway unavailable"
	msgInternal     = "internal error"
	corsMaxAge      = 86400
	corsAllowMethod = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeader = "Content-Type, Authorization"
)

type analysisRoute struct {
	category domain.Category
	field    string
	key      string
	message  string
}

var analysisRoutes = map[string]analysisRoute{
	"/api/mission/execute": {domain.CategoryMission, "mission", "mission", "Mission analysis completed"},
	"/api/intel/gather":    {domain.CategoryIntel, "intel_request", "report", "Intelligence gathered"},
	"/api/tactical/plan":   {domain.CategoryTactical, "plan_request", "plan", "Tactical plan generated"},
	"/api/threat/assess":   {domain.CategoryThreat, "threat_request", "assessment", "Threat assessment completed"},
}

// Router is the single dispatch point shared by every runtime adapter.
// It keeps no state between calls.
type Router struct {
	exec   Executor
	roster domain.AgentRoster
	health HealthChecker
	logger *zap.Logger
}

type Option func(*Router)

func WithHealthChecker(h HealthChecker) Option { return func(r *Router) { r.health = h } }

func WithLogger(l *zap.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

func New(exec Executor, roster domain.AgentRoster, opts ...Option) *Router {
	if roster == nil {
		roster = domain.DefaultRoster()
	}
	r := &Router{exec: exec, roster: roster, logger: zap.NewNop()}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Handle dispatches one request. It never panics; every failure becomes a JSON envelope.
func (r *Router) Handle(ctx context.Context, req Request) (resp Response) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("handler panic", zap.Any("panic", p), zap.String("path", req.Path))
			resp = errorResponse(http.StatusInternalServerError, msgInternal)
		}
	}()

	switch req.Method {
	case http.MethodOptions:
		if req.Path == "/api" || strings.HasPrefix(req.Path, "/api/") {
			return preflight()
		}
	case http.MethodPost:
		if rt, ok := analysisRoutes[req.Path]; ok {
			return r.analyze(ctx, rt, req.Body)
		}
	case http.MethodGet:
		switch req.Path {
		case "/api/agents/status":
			return r.agentStatus(ctx)
		case "/api/system/status":
			return r.systemStatus(ctx)
		}
	}
	return errorResponse(http.StatusNotFound, msgNotFound)
}

func (r *Router) analyze(ctx context.Context, rt analysisRoute, body []byte) Response {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return errorResponse(http.StatusBadRequest, msgInvalidJSON)
	}
	content, _ := fields[rt.field].(string)
	if strings.TrimSpace(content) == "" {
		return errorResponse(http.StatusBadRequest, rt.field+" is required")
	}

	rec, err := r.exec.Execute(ctx, rt.category, content)
	if err != nil {
		r.logger.Error("analysis failed", zap.String("category", string(rt.category)), zap.Error(err))
		return errorResponse(http.StatusInternalServerError, describe(err))
	}
	return jsonResponse(http.StatusOK, map[string]any{
		"message": rt.message,
		rt.key:    rec,
	})
}

type agentView struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	CurrentMission string `json:"currentMission"`
}

func (r *Router) agentStatus(ctx context.Context) Response {
	agents, err := r.roster.Agents(ctx)
	if err != nil {
		r.logger.Error("load agent roster failed", zap.Error(err))
		return errorResponse(http.StatusInternalServerError, err.Error())
	}
	out := make([]agentView, 0, len(agents))
	for _, a := range agents {
		out = append(out, agentView{ID: a.ID, Name: a.Name, Status: a.Status, CurrentMission: a.CurrentMission})
	}
	return jsonResponse(http.StatusOK, out)
}

type systemView struct {
	AIProcessing string `json:"aiProcessing"`
	SecureComms  string `json:"secureComms"`
	Database     string `json:"database"`
	ActiveAgents int    `json:"activeAgents"`
}

func (r *Router) systemStatus(ctx context.Context) Response {
	agents, err := r.roster.Agents(ctx)
	if err != nil {
		r.logger.Error("load agent roster failed", zap.Error(err))
		return errorResponse(http.StatusInternalServerError, err.Error())
	}
	db := dbOperational
	if r.health != nil {
		if err := r.health.Check(ctx); err != nil {
			r.logger.Warn("database health check failed", zap.Error(err))
			db = dbDegraded
		}
	}
	return jsonResponse(http.StatusOK, systemView{
		AIProcessing: systemOnline,
		SecureComms:  commsEncrypted,
		Database:     db,
		ActiveAgents: len(agents),
	})
}

// describe turns a pipeline error into the client-facing message.
func describe(err error) string {
	var gwErr *ai.GatewayError
	switch {
	case errors.As(err, &gwErr):
		return gwErr.Error()
	case errors.Is(err, ai.ErrGatewayUnavailable):
		return msgUnavailable
	}
	return err.Error()
}

// CORSHeaders returns the preflight headers sent for OPTIONS /api/*.
func CORSHeaders() http.Header {
	h := http.Header{}
	h.Set("Access-Control-Allow-Origin", "*")
	h.Set("Access-Control-Allow-Methods", corsAllowMethod)
	h.Set("Access-Control-Allow-Headers", corsAllowHeader)
	h.Set("Access-Control-Max-Age", strconv.Itoa(corsMaxAge))
	return h
}

func preflight() Response {
	return Response{Status: http.StatusOK, Header: CORSHeaders(), Body: []byte{}}
}

func errorResponse(status int, msg string) Response {
	return jsonResponse(status, map[string]string{"error": msg})
}

func jsonResponse(status int, v any) Response {
	b, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		b = []byte(`{"error":"` + msgInternal + `"}`)
	}
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	return Response{Status: status, Header: h, Body: b}
}
