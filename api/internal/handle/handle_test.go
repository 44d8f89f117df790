package handle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fixmate/api/internal/llm"
	"fixmate/api/internal/llm/types"
	"fixmate/api/internal/search"
	"fixmate/api/internal/store"
)

const testSecret = "unit-test-secret"

var errStub = errors.New("model unavailable")

// stubEngine lets each test script exactly one behavior per stage; anything
// unset fails like a dead provider.
type stubEngine struct {
	analyzeImage       func() (types.ImageAnalysisResult, error)
	analyzeDescription func() (types.DescriptionAnalysisResult, error)
	generateQuestions  func() (types.QuestionsResult, error)
	diagnose           func() (types.FinalDiagnosis, error)
	enhancedDiagnose   func() (types.EnhancedDiagnosis, error)
	alternatives       func() (types.AlternativeResult, error)
	analyzeCode        func() (types.CodeAnalysisResult, error)
}

func (s *stubEngine) Name() string     { return "stub" }
func (s *stubEngine) GetModel() string { return "stub-model" }

func (s *stubEngine) AnalyzeImage(context.Context, types.ImageAnalysisInput) (types.ImageAnalysisResult, error) {
	if s.analyzeImage == nil {
		return types.ImageAnalysisResult{}, errStub
	}
	return s.analyzeImage()
}

func (s *stubEngine) AnalyzeDescription(context.Context, types.DescriptionInput) (types.DescriptionAnalysisResult, error) {
	if s.analyzeDescription == nil {
		return types.DescriptionAnalysisResult{}, errStub
	}
	return s.analyzeDescription()
}

func (s *stubEngine) GenerateQuestions(context.Context, types.QuestionsInput) (types.QuestionsResult, error) {
	if s.generateQuestions == nil {
		return types.QuestionsResult{}, errStub
	}
	return s.generateQuestions()
}

func (s *stubEngine) Diagnose(context.Context, types.DiagnosisInput) (types.FinalDiagnosis, error) {
	if s.diagnose == nil {
		return types.FinalDiagnosis{}, errStub
	}
	return s.diagnose()
}

func (s *stubEngine) EnhancedDiagnose(context.Context, types.DiagnosisInput) (types.EnhancedDiagnosis, error) {
	if s.enhancedDiagnose == nil {
		return types.EnhancedDiagnosis{}, errStub
	}
	return s.enhancedDiagnose()
}

func (s *stubEngine) Alternatives(context.Context, types.AlternativeInput) (types.AlternativeResult, error) {
	if s.alternatives == nil {
		return types.AlternativeResult{}, errStub
	}
	return s.alternatives()
}

func (s *stubEngine) AnalyzeCode(context.Context, types.CodeAnalysisInput) (types.CodeAnalysisResult, error) {
	if s.analyzeCode == nil {
		return types.CodeAnalysisResult{}, errStub
	}
	return s.analyzeCode()
}

// fakeQuota mirrors the SQL gate's semantics: atomic consume with a daily
// reset, premium bypass not modeled (tests don't need it).
type fakeQuota struct {
	mu        sync.Mutex
	remaining int
	lastReset time.Time
}

func (f *fakeQuota) Consume(_ context.Context, _ string, dailyLimit int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	today := time.Now().Truncate(24 * time.Hour)
	if f.lastReset.Before(today) {
		f.remaining = dailyLimit
		f.lastReset = today
	}
	if f.remaining <= 0 {
		return false, nil
	}
	f.remaining--
	return true, nil
}

type fakeSessions struct {
	mu        sync.Mutex
	created   []*store.Session
	completed []uuid.UUID
}

func (f *fakeSessions) Create(_ context.Context, s *store.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, s)
	return nil
}

func (f *fakeSessions) Complete(_ context.Context, id uuid.UUID, _, _ any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, id)
	return nil
}

type fakeRefs struct {
	rows []store.ReferenceRow
	err  error
}

func (f *fakeRefs) List(context.Context, string, int) ([]store.ReferenceRow, error) {
	return f.rows, f.err
}

func newTestHandle(eng llm.Engine, quotas QuotaGate, sessions SessionStore, refs ReferenceLister) *Handle {
	searcher, _ := search.New(context.Background(), "", "")
	return New(&llm.Engines{Gemini: eng}, zap.NewNop().Sugar(), testSecret, 3,
		quotas, sessions, refs, searcher)
}

func testToken(t *testing.T, sub string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": sub,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func doPost(t *testing.T, h http.HandlerFunc, body any, authHeader string) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(v))
}

func doOptions(t *testing.T, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func doGet(t *testing.T, h http.HandlerFunc) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}
