package handle

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fixmate/api/internal/auth"
	"fixmate/api/internal/llm"
	"fixmate/api/internal/search"
	"fixmate/api/internal/store"
)

// QuotaGate is the billable-work gate. Consume must be atomic: under
// concurrent calls for one user it may not hand out more scans than remain.
type QuotaGate interface {
	Consume(ctx context.Context, userID string, dailyLimit int) (bool, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *store.Session) error
	Complete(ctx context.Context, id uuid.UUID, analysis, guidance any) error
}

type ReferenceLister interface {
	List(ctx context.Context, table string, limit int) ([]store.ReferenceRow, error)
}

type Searcher interface {
	Search(ctx context.Context, query string) ([]search.Result, bool, error)
}

type Handle struct {
	engs       *llm.Engines
	log        *zap.SugaredLogger
	jwtSecret  string
	dailyLimit int

	// quotas and sessions may be nil when no database is configured; the
	// pipeline then runs stateless.
	quotas   QuotaGate
	sessions SessionStore
	refs     ReferenceLister
	searcher Searcher
}

func New(engs *llm.Engines, log *zap.SugaredLogger, jwtSecret string, dailyLimit int,
	quotas QuotaGate, sessions SessionStore, refs ReferenceLister, searcher Searcher) *Handle {
	return &Handle{
		engs:       engs,
		log:        log,
		jwtSecret:  jwtSecret,
		dailyLimit: dailyLimit,
		quotas:     quotas,
		sessions:   sessions,
		refs:       refs,
		searcher:   searcher,
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]any{"error": msg, "success": false})
}

// post wraps a stage handler with CORS headers, the OPTIONS preflight
// answer, and the POST-only guard.
func (h *Handle) post(fn http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-Timeout")
		w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "POST only")
			return
		}
		fn(w, r)
	}
}

// authorize verifies the bearer token and returns the subject. On failure it
// writes the 401 itself.
func (h *Handle) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := auth.VerifyBearer(h.jwtSecret, r.Header.Get("Authorization"))
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid bearer token"})
		return "", false
	}
	return userID, true
}

// consumeScan runs the quota gate before any billable model work. Denial is
// a 403 with an upgrade prompt; the handler must return without calling the
// model. A nil gate (no database) allows everything.
func (h *Handle) consumeScan(w http.ResponseWriter, r *http.Request, userID string) bool {
	if h.quotas == nil {
		return true
	}
	ok, err := h.quotas.Consume(r.Context(), userID, h.dailyLimit)
	if err != nil {
		h.log.Errorw("quota check failed", "user", userID, "err", err)
		writeError(w, http.StatusInternalServerError, "quota check failed")
		return false
	}
	if !ok {
		writeError(w, http.StatusForbidden,
			"daily free scan limit reached; upgrade to premium for unlimited scans")
		return false
	}
	return true
}

const maxStageTimeout = 30 * time.Second

// stageContext bounds every model call to 30s, honoring the caller's
// X-Request-Timeout header / timeoutSec query override within that cap.
func stageContext(r *http.Request) (context.Context, context.CancelFunc) {
	deadline := maxStageTimeout
	if ts := r.Header.Get("X-Request-Timeout"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	} else if ts := r.URL.Query().Get("timeoutSec"); ts != "" {
		if v, _ := strconv.Atoi(ts); v > 0 {
			deadline = time.Duration(v) * time.Second
		}
	}
	if deadline > maxStageTimeout {
		deadline = maxStageTimeout
	}
	if deadline < time.Second {
		deadline = time.Second
	}
	return context.WithTimeout(r.Context(), deadline)
}

// Register wires every endpoint onto the mux.
func (h *Handle) Register(mux *http.ServeMux) {
	mux.HandleFunc("/v1/stage/analyze-image", h.post(h.AnalyzeImage))
	mux.HandleFunc("/v1/stage/analyze-description", h.post(h.AnalyzeDescription))
	mux.HandleFunc("/v1/stage/device-questions", h.post(h.DeviceQuestions))
	mux.HandleFunc("/v1/stage/description-questions", h.post(h.DescriptionQuestions))
	mux.HandleFunc("/v1/stage/diagnose", h.post(h.Diagnose))
	mux.HandleFunc("/v1/stage/enhanced-diagnosis", h.post(h.EnhancedDiagnosis))
	mux.HandleFunc("/v1/stage/alternative", h.post(h.Alternative))
	mux.HandleFunc("/v1/stage/analyze-code", h.post(h.AnalyzeCode))
	mux.HandleFunc("/v1/stage/web-search", h.post(h.WebSearch))
	mux.HandleFunc("/v1/match", h.post(h.Match))
	mux.HandleFunc("/v1/analyze-device", h.post(h.AnalyzeDevice))
}
