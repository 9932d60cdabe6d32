package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vietddude/statusrelay/internal/api/auth"
	"github.com/vietddude/statusrelay/internal/api/middleware"
	"github.com/vietddude/statusrelay/internal/core/domain"
	"github.com/vietddude/statusrelay/internal/messages"
	"github.com/vietddude/statusrelay/internal/monitor"
	"github.com/vietddude/statusrelay/internal/notify"
)

const maxBodyBytes = 1 << 20

// StatusProcessor handles inbound status updates.
type StatusProcessor interface {
	Process(ctx context.Context, payload domain.StatusWebhookPayload) error
}

// Sender relays an event to the selected platforms.
type Sender interface {
	Send(ctx context.Context, ev notify.Event, platforms []domain.Platform) ([]domain.Platform, error)
}

// SummaryFetcher loads the status page summary.
type SummaryFetcher interface {
	FetchSummary(ctx context.Context) (*domain.StatusSummary, error)
}

// HealthRunner runs one block health check.
type HealthRunner interface {
	Run(ctx context.Context) (*monitor.Result, error)
}

// Pinger reports backing store availability.
type Pinger func(ctx context.Context) error

// Deps holds the collaborators of the HTTP handlers.
type Deps struct {
	Processor   StatusProcessor
	Relay       Sender
	Store       *messages.Store
	StatusPage  SummaryFetcher
	Monitor     HealthRunner
	JWT         *auth.JWTService
	Credentials *auth.Credentials
	Limiter     *auth.LoginLimiter
	CronSecret  string
	Network     string
	Ping        Pinger
}

// Handlers implements the HTTP endpoints.
type Handlers struct {
	deps Deps
	log  *slog.Logger
}

// NewHandlers creates the endpoint handlers.
func NewHandlers(deps Deps) *Handlers {
	return &Handlers{
		deps: deps,
		log:  slog.Default().With("component", "api"),
	}
}

// InboundWebhook accepts a status update pushed by the status page.
func (h *Handlers) InboundWebhook(w http.ResponseWriter, r *http.Request) {
	var payload domain.StatusWebhookPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		JSONError(w, ErrInvalidPayload)
		return
	}

	if err := h.deps.Processor.Process(r.Context(), payload); err != nil {
		if errors.Is(err, domain.ErrInvalidPayload) {
			h.log.Warn("Rejected status webhook", "error", err)
			JSONError(w, ErrInvalidPayload)
			return
		}
		h.log.Error("Status webhook failed", "error", err)
		JSONError(w, Internal("Failed to process status update"))
		return
	}
	Success(w)
}

type sendMessageRequest struct {
	Message   string            `json:"message"`
	Platforms []domain.Platform `json:"platforms"`
}

// SendMessage broadcasts an operator message to the selected platforms.
func (h *Handlers) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		JSONError(w, ErrInvalidPayload)
		return
	}

	text := strings.TrimSpace(req.Message)
	if text == "" {
		JSONError(w, BadRequest("Message is required"))
		return
	}
	if len(req.Platforms) == 0 {
		JSONError(w, BadRequest("At least one platform is required"))
		return
	}
	for _, p := range req.Platforms {
		if !p.Valid() {
			JSONError(w, BadRequest("Unknown platform: "+string(p)))
			return
		}
	}

	sent, err := h.deps.Relay.Send(r.Context(), notify.TextEvent{Text: text}, req.Platforms)
	if err != nil {
		if errors.Is(err, notify.ErrNoPlatforms) {
			JSONError(w, BadRequest("No selected platform is configured"))
			return
		}
		h.log.Error("Message sending failed", "error", err)
		JSONError(w, Internal("Failed to send message"))
		return
	}

	for _, p := range sent {
		h.deps.Store.AddMessage(r.Context(), messages.NewMessage(p, text, domain.SourceManual, nil))
	}
	h.log.Info("Operator message sent", "user", middleware.GetUsername(r.Context()), "platforms", sent)
	Success(w)
}

// ListMessages returns the recent message history.
func (h *Handlers) ListMessages(w http.ResponseWriter, r *http.Request) {
	OK(w, MessagesResponse{Messages: h.deps.Store.GetRecentMessages(r.Context())})
}

// IncidentSent reports whether an incident has already been announced.
func (h *Handlers) IncidentSent(w http.ResponseWriter, r *http.Request) {
	OK(w, h.deps.Store.HasBeenSent(r.Context(), chi.URLParam(r, "id")))
}

// Status returns the status page summary with per-incident sent flags.
func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	summary, err := h.deps.StatusPage.FetchSummary(r.Context())
	if err != nil {
		h.log.Error("Failed to fetch status page", "error", err)
		JSONError(w, Internal("Failed to fetch status"))
		return
	}

	sent := h.deps.Store.HasBeenSentAll(r.Context(), domain.IncidentIDs(summary.Incidents))
	for i := range summary.Incidents {
		status := sent[summary.Incidents[i].ID]
		summary.Incidents[i].Sent = &status
	}

	OK(w, summary)
}

type cronResponse struct {
	Success     bool                `json:"success"`
	Timestamp   string              `json:"timestamp"`
	LatestBlock *domain.BlockRecord `json:"latestBlock,omitempty"`
	HealthCheck *domain.HealthCheck `json:"healthCheck,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// CheckBlocks runs one block health check.
func (h *Handlers) CheckBlocks(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Monitor.Run(r.Context())
	if err != nil {
		h.log.Error("Block monitoring error", "error", err)
		JSON(w, http.StatusInternalServerError, cronResponse{
			Error:     err.Error(),
			Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		})
		return
	}

	OK(w, cronResponse{
		Success:     true,
		Timestamp:   res.Timestamp.Format(time.RFC3339Nano),
		LatestBlock: &res.LatestBlock,
		HealthCheck: &res.HealthCheck,
	})
}

const testAlertInfo = "Block production is slower than expected. Time between blocks 12345 and 12346: 9.5s (target: 6s ±3s)"

// TestAlert records a synthetic network alert without relaying it.
func (h *Handlers) TestAlert(w http.ResponseWriter, r *http.Request) {
	content := monitor.AlertText(domain.NetworkAlert{
		Type:    domain.AlertTypeNetwork,
		Network: h.deps.Network,
		Info:    testAlertInfo,
	})
	h.deps.Store.AddMessage(r.Context(), messages.NewMessage(
		domain.PlatformDiscord, content, domain.SourceAutomatic,
		&domain.Trigger{Type: domain.TriggerTestAlert},
	))
	OK(w, SuccessResponse{Success: true, Message: "Test alert created"})
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login exchanges operator credentials for a token.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	ip := auth.ClientIP(r)
	if !h.deps.Limiter.Allow(ip) {
		h.log.Warn("Login rate limited", "ip", ip)
		JSONError(w, ErrRateLimited)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		JSONError(w, ErrInvalidPayload)
		return
	}

	if !h.deps.Credentials.Verify(req.Username, req.Password) {
		h.log.Warn("Login failed", "ip", ip, "username", req.Username)
		JSONError(w, ErrInvalidCredentials)
		return
	}

	token, err := h.deps.JWT.GenerateToken(req.Username)
	if err != nil {
		h.log.Error("Failed to issue token", "error", err)
		JSONError(w, ErrInternalServer)
		return
	}

	ttl := h.deps.JWT.TTL()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(ttl.Seconds()),
	})
	h.log.Info("Operator logged in", "username", req.Username, "ip", ip)
	OK(w, LoginResponse{
		Success:   true,
		Token:     token,
		ExpiresIn: int(ttl.Seconds()),
		TokenType: "Bearer",
	})
}

// Logout clears the token cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
	Success(w)
}

// Health reports liveness and storage reachability.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.deps.Ping != nil {
		if err := h.deps.Ping(r.Context()); err != nil {
			h.log.Warn("Health check failed", "error", err)
			JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}
	}
	OK(w, map[string]string{"status": "healthy"})
}

// MethodNotAllowed answers requests with an unsupported method.
func (h *Handlers) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	JSONError(w, ErrMethodNotAllowed)
}

// NotFound answers unknown routes.
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	JSONError(w, ErrNotFound)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
