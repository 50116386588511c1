package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
	"github.com/Carveion/JUNKFU-V2/internal/scheduler"
)

type fakeDays struct {
	gotDate string
}

func (f *fakeDays) Day(_ context.Context, date string) (domain.DaySummary, error) {
	f.gotDate = date
	if date == "bad" {
		return domain.DaySummary{}, domain.NewValidationError("date", "expected YYYY-MM-DD")
	}
	return domain.Summarize("2025-05-05", 2299, []domain.FoodEntry{{
		ID: "e1",
		EntryDraft: domain.EntryDraft{
			Name: "Burger", Calories: 354, BaseCalories: 354,
			Quantity: domain.Serving(domain.ServingMedium), QuantityUnit: domain.UnitServing,
			QuantityLabel: "Medium", MealType: domain.MealLunch,
		},
	}}), nil
}

type fakeReminders map[string]time.Time

func (f fakeReminders) Pending() map[string]time.Time { return f }

func (f fakeReminders) State() scheduler.State {
	if len(f) == 0 {
		return scheduler.Idle
	}
	return scheduler.Scheduled
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealth(t *testing.T) {
	h := NewHandler(&fakeDays{}, nil, nil).Router()
	rec := get(t, h, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDay(t *testing.T) {
	days := &fakeDays{}
	h := NewHandler(days, nil, nil).Router()

	rec := get(t, h, "/api/v1/days/2025-05-05")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-05-05", days.gotDate)

	var sum domain.DaySummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
	assert.Equal(t, 354, sum.Consumed)
	assert.Equal(t, 1945, sum.Remaining)
	require.Len(t, sum.Meals, 4)
	assert.Equal(t, domain.MealLunch, sum.Meals[1].MealType)
	assert.Equal(t, "Medium", sum.Meals[1].Entries[0].QuantityLabel)

	rec = get(t, h, "/api/v1/days/today")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", days.gotDate)
}

func TestDay_InvalidDate(t *testing.T) {
	h := NewHandler(&fakeDays{}, nil, nil).Router()
	rec := get(t, h, "/api/v1/days/bad")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "date")
}

func TestReminders(t *testing.T) {
	pending := fakeReminders{
		"19:00": time.Date(2025, time.May, 5, 19, 0, 0, 0, time.UTC),
		"08:00": time.Date(2025, time.May, 6, 8, 0, 0, 0, time.UTC),
	}
	h := NewHandler(&fakeDays{}, pending, nil).Router()

	rec := get(t, h, "/api/v1/reminders")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"state": "scheduled",
		"reminders": [
			{"slot": "19:00", "at": "2025-05-05T19:00:00Z"},
			{"slot": "08:00", "at": "2025-05-06T08:00:00Z"}
		]
	}`, rec.Body.String())
}

func TestReminders_NoScheduler(t *testing.T) {
	h := NewHandler(&fakeDays{}, nil, nil).Router()
	rec := get(t, h, "/api/v1/reminders")
	assert.JSONEq(t, `{"state":"idle","reminders":[]}`, rec.Body.String())
}

func TestMethodNotAllowed(t *testing.T) {
	h := NewHandler(&fakeDays{}, nil, nil).Router()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/reminders", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
