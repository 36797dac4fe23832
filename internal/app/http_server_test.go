package app_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/pedif/Quokka/internal/app"
	"github.com/pedif/Quokka/internal/domain"
	"github.com/pedif/Quokka/internal/usecase"
)

func at(y int, m time.Month, d, h, min int) int64 {
	return time.Date(y, m, d, h, min, 0, 0, time.UTC).UnixMilli()
}

type memStore struct {
	nextID  int64
	actions map[int64]domain.Action
}

func (s *memStore) ActionsInRange(_ context.Context, start, end int64) ([]domain.Action, error) {
	var out []domain.Action
	for _, a := range s.actions {
		if a.Start >= start && a.Start < end {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start > out[j].Start })
	return out, nil
}

func (s *memStore) OpenAction(_ context.Context, since int64) (*domain.Action, error) {
	for _, a := range s.actions {
		if a.End.Open() && a.Start >= since {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (s *memStore) Insert(_ context.Context, a domain.Action) (int64, error) {
	s.nextID++
	a.ID = s.nextID
	s.actions[a.ID] = a
	return a.ID, nil
}

func (s *memStore) Update(_ context.Context, a domain.Action) error {
	s.actions[a.ID] = a
	return nil
}

func (s *memStore) Delete(_ context.Context, id int64) error {
	delete(s.actions, id)
	return nil
}

func newTestServer(store *memStore, now int64) *httptest.Server {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	journal := &usecase.Journal{
		Log:   log,
		Store: store,
		Cal:   domain.NewCalendar(time.UTC),
		Now:   func() int64 { return now },
	}
	return httptest.NewServer(app.NewHandler(log, journal))
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&memStore{actions: map[int64]domain.Action{}}, at(2024, 3, 15, 12, 0))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestGetDay(t *testing.T) {
	store := &memStore{actions: map[int64]domain.Action{}}
	now := at(2024, 3, 15, 12, 0)
	_, _ = store.Insert(context.Background(), domain.Action{
		Start:   at(2024, 3, 15, 9, 0),
		Feeling: domain.Happiness,
	}.WithDuration(60))
	srv := newTestServer(store, now)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/day?date=2024-03-15")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var day struct {
		StartDate int64 `json:"startDate"`
		Actions   []struct {
			Type string `json:"type"`
		} `json:"actions"`
		Durations []struct {
			Type    string `json:"type"`
			Minutes int    `json:"minutes"`
		} `json:"durations"`
		MostFelt string `json:"mostFelt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&day); err != nil {
		t.Fatal(err)
	}
	if day.StartDate != at(2024, 3, 15, 0, 0) {
		t.Errorf("startDate = %d, want %d", day.StartDate, at(2024, 3, 15, 0, 0))
	}
	if len(day.Actions) != 1 || day.Actions[0].Type != "happiness" {
		t.Errorf("actions = %+v", day.Actions)
	}
	if day.MostFelt != "happiness" {
		t.Errorf("mostFelt = %q, want happiness", day.MostFelt)
	}
	if len(day.Durations) != 6 {
		t.Errorf("got %d durations, want 6", len(day.Durations))
	}
}

func TestSaveNeedsConfirmationReturns409(t *testing.T) {
	store := &memStore{actions: map[int64]domain.Action{}}
	now := at(2024, 3, 15, 12, 0)
	_, _ = store.Insert(context.Background(), domain.Action{
		Start:   at(2024, 3, 15, 9, 0),
		Feeling: domain.Happiness,
	})
	srv := newTestServer(store, now)
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"startDate": at(2024, 3, 15, 10, 0),
		"endDate":   at(2024, 3, 15, 10, 30),
		"type":      "anger",
	})

	resp, err := http.Post(srv.URL+"/api/actions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
	if len(store.actions) != 1 {
		t.Errorf("store changed without confirmation")
	}

	resp2, err := http.Post(srv.URL+"/api/actions?confirm=true", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp2.StatusCode)
	}
	if len(store.actions) != 2 {
		t.Errorf("store has %d actions, want 2", len(store.actions))
	}
}

func TestSaveRejectedReturns422(t *testing.T) {
	store := &memStore{actions: map[int64]domain.Action{}}
	now := at(2024, 3, 15, 12, 0)
	_, _ = store.Insert(context.Background(), domain.Action{
		Start:   at(2024, 3, 15, 0, 0),
		Feeling: domain.Happiness,
	}.WithDuration(domain.DayMinutes))
	srv := newTestServer(store, now)
	defer srv.Close()

	body, _ := json.Marshal(map[string]any{
		"startDate": at(2024, 3, 15, 10, 0),
		"endDate":   at(2024, 3, 15, 10, 30),
		"type":      "anger",
	})
	resp, err := http.Post(srv.URL+"/api/actions", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestRepairEndpoint(t *testing.T) {
	store := &memStore{actions: map[int64]domain.Action{}}
	now := at(2024, 3, 15, 12, 0)
	_, _ = store.Insert(context.Background(), domain.Action{
		Start:   at(2024, 3, 13, 10, 0),
		Feeling: domain.Anger,
	})
	srv := newTestServer(store, now)
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/repair", "application/json", nil)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Operations int `json:"operations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Operations != 3 {
		t.Errorf("operations = %d, want 3", out.Operations)
	}
}

func TestDeleteAction(t *testing.T) {
	store := &memStore{actions: map[int64]domain.Action{}}
	now := at(2024, 3, 15, 12, 0)
	id, _ := store.Insert(context.Background(), domain.Action{
		Start:   at(2024, 3, 15, 9, 0),
		Feeling: domain.Sadness,
	}.WithDuration(10))
	srv := newTestServer(store, now)
	defer srv.Close()

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/actions/1", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if _, ok := store.actions[id]; ok {
		t.Error("action still present after delete")
	}
}
