package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/Carveion/JUNKFU-V2/internal/domain"
	"github.com/Carveion/JUNKFU-V2/internal/scheduler"
)

// DayReader summarizes a daily log; *service.Logbook implements it.
type DayReader interface {
	Day(ctx context.Context, date string) (domain.DaySummary, error)
}

// ReminderState reports the scheduler state; *scheduler.Scheduler
// implements it.
type ReminderState interface {
	Pending() map[string]time.Time
	State() scheduler.State
}

type reminderView struct {
	Slot string    `json:"slot"`
	At   time.Time `json:"at"`
}

type remindersResponse struct {
	State     string         `json:"state"`
	Reminders []reminderView `json:"reminders"`
}

// Handler serves the read-only status API.
type Handler struct {
	days      DayReader
	reminders ReminderState
	log       *zap.Logger
}

func NewHandler(days DayReader, reminders ReminderState, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{days: days, reminders: reminders, log: log}
}

// Router builds the mux with all routes registered.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/days/{date}", h.Day).Methods(http.MethodGet)
	api.HandleFunc("/reminders", h.Reminders).Methods(http.MethodGet)
	return r
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Day returns the summary of a date; "today" is accepted.
func (h *Handler) Day(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if date == "today" {
		date = ""
	}
	sum, err := h.days.Day(r.Context(), date)
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error("day summary", zap.String("date", date), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load day")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func (h *Handler) Reminders(w http.ResponseWriter, _ *http.Request) {
	resp := remindersResponse{State: "idle", Reminders: []reminderView{}}
	if h.reminders != nil {
		resp.State = h.reminders.State().String()
		for slot, at := range h.reminders.Pending() {
			resp.Reminders = append(resp.Reminders, reminderView{Slot: slot, At: at})
		}
	}
	sort.Slice(resp.Reminders, func(i, j int) bool {
		return resp.Reminders[i].At.Before(resp.Reminders[j].At)
	})
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// Serve runs the API on addr until ctx is done.
func Serve(ctx context.Context, addr string, h http.Handler, log *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info("http api listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
