package estimator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
)

// fakeMessagesAPI answers POST /v1/messages with a single text block.
func fakeMessagesAPI(t *testing.T, status int, text string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":            "msg_test",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-haiku-4-5",
			"content":       []map[string]any{{"type": "text", "text": text}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 10, "output_tokens": 10},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestClaude(url string) *Claude {
	return NewClaude(Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "claude-haiku-4-5",
		Timeout: 5 * time.Second,
	}, nil)
}

func TestEstimate_OK(t *testing.T) {
	srv, _ := fakeMessagesAPI(t, http.StatusOK,
		"Here you go:\n"+`{"calories": 570.4, "foodName": "Pepperoni Pizza (2 slices)", "assumedGrams": 220}`)
	c := newTestClaude(srv.URL)

	est, err := c.Estimate(context.Background(), "two slices of pepperoni pizza")
	require.NoError(t, err)
	assert.Equal(t, "Pepperoni Pizza (2 slices)", est.FoodName)
	assert.Equal(t, 570, est.Calories)
	require.NotNil(t, est.AssumedGrams)
	assert.Equal(t, 220.0, *est.AssumedGrams)
}

func TestEstimate_MissingCaloriesIsFailure(t *testing.T) {
	srv, _ := fakeMessagesAPI(t, http.StatusOK, `{"foodName": "Mystery"}`)
	c := newTestClaude(srv.URL)

	est, err := c.Estimate(context.Background(), "something")
	require.ErrorIs(t, err, domain.ErrEstimatorFailure)
	assert.Nil(t, est)
}

func TestEstimate_APIErrorIsFailureWithoutRetry(t *testing.T) {
	srv, calls := fakeMessagesAPI(t, http.StatusInternalServerError, "")
	c := newTestClaude(srv.URL)

	_, err := c.Estimate(context.Background(), "rice")
	require.ErrorIs(t, err, domain.ErrEstimatorFailure)
	assert.Equal(t, int32(1), calls.Load())
}

func TestEstimate_NotJSON(t *testing.T) {
	srv, _ := fakeMessagesAPI(t, http.StatusOK, "I cannot tell.")
	c := newTestClaude(srv.URL)

	_, err := c.Estimate(context.Background(), "rice")
	require.ErrorIs(t, err, domain.ErrEstimatorFailure)
}

func TestEstimate_Blank(t *testing.T) {
	c := newTestClaude("http://127.0.0.1:1")
	_, err := c.Estimate(context.Background(), "   ")
	require.ErrorIs(t, err, domain.ErrEstimatorFailure)
	require.ErrorIs(t, err, domain.ErrEmptyDescription)
}

func TestParseMealDescription(t *testing.T) {
	srv, _ := fakeMessagesAPI(t, http.StatusOK,
		`[{"name": "2 Toasts", "calories": 160}, {"name": "Black Coffee", "calories": 2.4}, {"name": "", "calories": 5}]`)
	c := newTestClaude(srv.URL)

	items, err := c.ParseMealDescription(context.Background(), "2 toasts and a black coffee")
	require.NoError(t, err)
	assert.Equal(t, []domain.StandardMealItem{
		{Name: "2 Toasts", Calories: 160},
		{Name: "Black Coffee", Calories: 2},
	}, items)
}

func TestParseMealDescription_BlankSkipsCall(t *testing.T) {
	srv, calls := fakeMessagesAPI(t, http.StatusOK, "[]")
	c := newTestClaude(srv.URL)

	items, err := c.ParseMealDescription(context.Background(), " ")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Equal(t, int32(0), calls.Load())
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Estimate(context.Background(), "rice")
	require.ErrorIs(t, err, domain.ErrEstimatorFailure)
	_, err = Disabled{}.ParseMealDescription(context.Background(), "rice")
	require.ErrorIs(t, err, domain.ErrEstimatorFailure)
}
