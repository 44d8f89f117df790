package handle

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixmate/api/internal/llm/types"
	"fixmate/api/internal/store"
)

func TestAnalyzeDeviceAlwaysCompletes(t *testing.T) {
	// Every underlying stage throws; the session still finishes with a
	// populated fallback analysis and no error surfaces.
	sessions := &fakeSessions{}
	h := newTestHandle(&stubEngine{}, nil, sessions, nil)

	rec := doPost(t, h.AnalyzeDevice, map[string]any{
		"symptomsText":   "screen flickers then goes black",
		"deviceCategory": "Monitor",
		"language":       "en",
	}, testToken(t, "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp analyzeDeviceResp
	decodeBody(t, rec, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, store.SessionCompleted, resp.Status)
	assert.True(t, resp.UsedFallback)
	require.NotNil(t, resp.DescriptionAnalysis)
	assert.NotEmpty(t, resp.DescriptionAnalysis.PrioritizedProblems)
	require.Len(t, resp.Questions, 5)

	require.Len(t, sessions.created, 1)
	require.Len(t, sessions.completed, 1)
	assert.Equal(t, sessions.created[0].ID, sessions.completed[0])
	assert.Equal(t, "u1", sessions.created[0].UserID)
}

func TestAnalyzeDeviceHappyPath(t *testing.T) {
	eng := &stubEngine{
		analyzeDescription: func() (types.DescriptionAnalysisResult, error) {
			return types.DescriptionAnalysisResult{
				PrioritizedProblems: []types.Problem{{Label: "Failing backlight", Reasoning: "Flicker then black", Confidence: "high"}},
				MatchedKeywords:     []string{"screen", "flicker"},
			}, nil
		},
		generateQuestions: func() (types.QuestionsResult, error) {
			return types.QuestionsResult{Questions: []types.Question{
				{ID: "q1", Category: types.CategoryDisplay, Question: "Does a flashlight reveal a faint image?"},
				{ID: "q2", Category: types.CategoryPower, Question: "Does the power LED stay on?"},
				{ID: "q3", Category: types.CategoryUsage, Question: "How long until it goes black?"},
				{ID: "q4", Category: types.CategoryConnection, Question: "Does an external monitor work?"},
				{ID: "q5", Category: types.CategoryEnvironment, Question: "Any recent drops or spills?"},
			}}, nil
		},
	}
	h := newTestHandle(eng, nil, nil, nil)

	rec := doPost(t, h.AnalyzeDevice, map[string]any{
		"symptomsText": "screen flickers then goes black",
	}, testToken(t, "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp analyzeDeviceResp
	decodeBody(t, rec, &resp)
	assert.False(t, resp.UsedFallback)
	assert.Nil(t, resp.ImageAnalysis, "no images submitted")
	assert.Equal(t, "Failing backlight", resp.DescriptionAnalysis.PrioritizedProblems[0].Label)
	assert.Len(t, resp.Questions, 5)
}

func TestAnalyzeDeviceUnknownEngineKeepsScan(t *testing.T) {
	quota := &fakeQuota{remaining: 1, lastReset: time.Now()}
	h := newTestHandle(&stubEngine{}, quota, nil, nil)

	rec := doPost(t, h.AnalyzeDevice, map[string]any{
		"symptomsText": "no power",
		"llm_name":     "mystery",
	}, testToken(t, "u1"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The rejected request must not have burned the last scan.
	rec2 := doPost(t, h.AnalyzeDevice, map[string]any{
		"symptomsText": "no power",
	}, testToken(t, "u1"))
	assert.Equal(t, http.StatusOK, rec2.Code)
}

func TestAnalyzeDeviceAllImageFetchesFailStillReported(t *testing.T) {
	// Every submitted URL is dead; the response must carry a fallback image
	// analysis and the fallback marker rather than dropping the images
	// silently.
	eng := &stubEngine{
		analyzeDescription: func() (types.DescriptionAnalysisResult, error) {
			return types.DescriptionAnalysisResult{
				PrioritizedProblems: []types.Problem{{Label: "Power fault", Reasoning: "No LED activity", Confidence: "medium"}},
				MatchedKeywords:     []string{"power"},
			}, nil
		},
		generateQuestions: func() (types.QuestionsResult, error) {
			return types.QuestionsResult{Questions: []types.Question{
				{ID: "q1", Category: types.CategoryPower, Question: "Does the charger LED light up?"},
				{ID: "q2", Category: types.CategoryPhysical, Question: "Any visible damage?"},
				{ID: "q3", Category: types.CategoryUsage, Question: "When did it last work?"},
				{ID: "q4", Category: types.CategoryEnvironment, Question: "Any liquid exposure?"},
				{ID: "q5", Category: types.CategoryGeneral, Question: "Have you tried another outlet?"},
			}}, nil
		},
	}
	h := newTestHandle(eng, nil, nil, nil)

	rec := doPost(t, h.AnalyzeDevice, map[string]any{
		"imageUrls": []string{"http://127.0.0.1:0/one.jpg", "http://127.0.0.1:0/two.jpg"},
	}, testToken(t, "u1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp analyzeDeviceResp
	decodeBody(t, rec, &resp)
	assert.True(t, resp.UsedFallback)
	require.NotNil(t, resp.ImageAnalysis)
	assert.NotEmpty(t, resp.ImageAnalysis.Problems)
}

func TestAnalyzeDeviceRequiresInput(t *testing.T) {
	h := newTestHandle(&stubEngine{}, nil, nil, nil)
	rec := doPost(t, h.AnalyzeDevice, map[string]any{}, testToken(t, "u1"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeDeviceQuotaConcurrent(t *testing.T) {
	// One remaining scan, two simultaneous requests: exactly one passes.
	quota := &fakeQuota{remaining: 1, lastReset: time.Now()}
	h := newTestHandle(&stubEngine{}, quota, nil, nil)

	codes := make([]int, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := doPost(t, h.AnalyzeDevice, map[string]any{
				"symptomsText": "no power",
			}, testToken(t, "u1"))
			codes[i] = rec.Code
		}()
	}
	wg.Wait()

	assert.ElementsMatch(t, []int{http.StatusOK, http.StatusForbidden}, codes)
}

func TestAnalyzeDeviceQuotaDailyReset(t *testing.T) {
	// A stale reset date restores the full allotment exactly once.
	quota := &fakeQuota{remaining: 0, lastReset: time.Now().Add(-48 * time.Hour)}
	h := newTestHandle(&stubEngine{}, quota, nil, nil)

	var okCount int
	for i := 0; i < 5; i++ {
		rec := doPost(t, h.AnalyzeDevice, map[string]any{
			"symptomsText": "no power",
		}, testToken(t, "u1"))
		if rec.Code == http.StatusOK {
			okCount++
		} else {
			assert.Equal(t, http.StatusForbidden, rec.Code)
		}
	}
	assert.Equal(t, 3, okCount, "daily limit is restored once, not per request")
}

func TestAnalyzeDeviceQuotaDeniedMessage(t *testing.T) {
	quota := &fakeQuota{remaining: 0, lastReset: time.Now()}
	h := newTestHandle(&stubEngine{}, quota, nil, nil)

	rec := doPost(t, h.AnalyzeDevice, map[string]any{
		"symptomsText": "no power",
	}, testToken(t, "u1"))

	require.Equal(t, http.StatusForbidden, rec.Code)
	var resp map[string]any
	decodeBody(t, rec, &resp)
	assert.Equal(t, false, resp["success"])
	assert.Contains(t, resp["error"], "premium")
}
