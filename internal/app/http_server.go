package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/pedif/Quokka/internal/domain"
	"github.com/pedif/Quokka/internal/reconcile"
	"github.com/pedif/Quokka/internal/usecase"
)

// HTTPServer returns a configured http.Server exposing the journal. Call
// ListenAndServe on it in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	srv := &http.Server{Addr: addr, Handler: NewHandler(a.log, a.journal)}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// NewHandler builds the API routes around a journal.
func NewHandler(log *slog.Logger, journal *usecase.Journal) http.Handler {
	s := &server{log: log, journal: journal}
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /api/week", s.handleWeek)
	mux.HandleFunc("GET /api/day", s.handleDay)
	mux.HandleFunc("GET /api/days", s.handleDays)
	mux.HandleFunc("GET /api/actions/template", s.handleTemplate)
	mux.HandleFunc("POST /api/actions", s.handleSave)
	mux.HandleFunc("DELETE /api/actions/{id}", s.handleDelete)
	mux.HandleFunc("POST /api/repair", s.handleRepair)
	mux.HandleFunc("POST /api/ongoing/finish", s.handleFinish)

	return loggingMiddleware(log, mux)
}

type server struct {
	log     *slog.Logger
	journal *usecase.Journal
}

type actionDTO struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	StartDate int64  `json:"startDate"`
	EndDate   int64  `json:"endDate"` // 0 means still open
	Type      string `json:"type"`
	Comment   string `json:"comment"`
}

type feelingDurationDTO struct {
	Type       string `json:"type"`
	Minutes    int    `json:"minutes"`
	Percentage int    `json:"percentage"`
}

type dayDTO struct {
	StartDate int64                `json:"startDate"`
	Actions   []actionDTO          `json:"actions"`
	Durations []feelingDurationDTO `json:"durations"`
	MostFelt  string               `json:"mostFelt"`
	LeastFelt string               `json:"leastFelt"`
}

func toActionDTO(a domain.Action) actionDTO {
	return actionDTO{
		ID:        a.ID,
		Title:     a.Title,
		StartDate: a.Start,
		EndDate:   a.End.Millis(),
		Type:      a.Feeling.String(),
		Comment:   a.Comment,
	}
}

func (d actionDTO) toDomain() (domain.Action, error) {
	f, err := domain.ParseFeeling(d.Type)
	if err != nil {
		return domain.Action{}, err
	}
	a := domain.Action{
		ID:      d.ID,
		Title:   d.Title,
		Start:   d.StartDate,
		Feeling: f,
		Comment: d.Comment,
	}
	if d.EndDate != 0 {
		a.End = domain.EndAt(d.EndDate)
	}
	return a, nil
}

func toDayDTO(d domain.Day) dayDTO {
	out := dayDTO{
		StartDate: d.Start,
		Actions:   make([]actionDTO, 0, len(d.Actions)),
		MostFelt:  d.MostFelt().String(),
		LeastFelt: d.LeastFelt().String(),
	}
	for _, a := range d.Actions {
		out.Actions = append(out.Actions, toActionDTO(a))
	}
	for _, fd := range d.Durations() {
		out.Durations = append(out.Durations, feelingDurationDTO{
			Type:       fd.Feeling.String(),
			Minutes:    fd.Minutes,
			Percentage: domain.PercentageOfDay(fd.Minutes),
		})
	}
	return out
}

func (s *server) handleWeek(w http.ResponseWriter, r *http.Request) {
	days, err := s.journal.Week(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeDays(w, days)
}

func (s *server) handleDay(w http.ResponseWriter, r *http.Request) {
	ms, err := s.parseInstant(r.URL.Query().Get("date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	day, err := s.journal.Day(r.Context(), s.journal.Cal.StartOfDay(ms))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, toDayDTO(day))
}

func (s *server) handleDays(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := s.parseInstant(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	to, err := s.parseInstant(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	days, err := s.journal.Days(r.Context(), from, to)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeDays(w, days)
}

// handleTemplate returns a fresh draft seeded for the requested day.
func (s *server) handleTemplate(w http.ResponseWriter, r *http.Request) {
	ms, err := s.parseInstant(r.URL.Query().Get("day"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	draft := s.journal.NewDraft(s.journal.Cal.StartOfDay(ms))
	writeJSON(w, http.StatusOK, toActionDTO(draft))
}

// handleSave runs a draft through the save reconciler. The confirm query
// parameter carries the user's agreement to end the ongoing action; a 409
// response means the client must ask and retry with confirm=true.
func (s *server) handleSave(w http.ResponseWriter, r *http.Request) {
	var dto actionDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	draft, err := dto.toDomain()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	confirm := r.URL.Query().Get("confirm") == "true"

	dayID := s.journal.Cal.StartOfDay(draft.Start)
	if v := r.URL.Query().Get("day"); v != "" {
		ms, err := s.parseInstant(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		dayID = s.journal.Cal.StartOfDay(ms)
	}

	res, err := s.journal.Save(r.Context(), draft, dayID, confirm)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	status := http.StatusOK
	switch res.Outcome {
	case reconcile.NeedsConfirmation:
		status = http.StatusConflict
	case reconcile.Rejected:
		status = http.StatusUnprocessableEntity
	}
	body := map[string]any{
		"outcome": res.Outcome.String(),
		"action":  toActionDTO(res.Action),
	}
	if res.Notice != nil {
		body["notice"] = res.Notice.Error()
	}
	writeJSON(w, status, body)
}

func (s *server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid action id"))
		return
	}
	if err := s.journal.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) handleRepair(w http.ResponseWriter, r *http.Request) {
	n, err := s.journal.RepairOvernight(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "operations": n})
}

func (s *server) handleFinish(w http.ResponseWriter, r *http.Request) {
	n, err := s.journal.FinishOngoing(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "operations": n})
}

// parseInstant accepts epoch milliseconds, RFC3339, or a date-only
// YYYY-MM-DD interpreted in the journal's calendar zone.
func (s *server) parseInstant(val string) (int64, error) {
	if val == "" {
		return 0, errors.New("missing date parameter")
	}
	if ms, err := strconv.ParseInt(val, 10, 64); err == nil {
		return ms, nil
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t.UnixMilli(), nil
	}
	if d, err := time.ParseInLocation("2006-01-02", val, s.journal.Cal.Location()); err == nil {
		return d.UnixMilli(), nil
	}
	return 0, errors.New("expected epoch millis, RFC3339 or YYYY-MM-DD")
}

func writeDays(w http.ResponseWriter, days []domain.Day) {
	out := make([]dayDTO, 0, len(days))
	for _, d := range days {
		out = append(out, toDayDTO(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"status": "error", "error": err.Error()})
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("remote", r.RemoteAddr),
			slog.Duration("dur", time.Since(start)),
		)
	})
}
