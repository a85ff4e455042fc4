package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestProtectedCallAttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer fresh-token" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"success":true,"profile":{"theme":"dark"}}`))
	}))
	defer server.Close()

	client := New(server.URL, func(ctx context.Context) (string, error) { return "fresh-token", nil })
	profile, err := client.GetProfile(context.Background())
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if profile["theme"] != "dark" {
		t.Errorf("profile = %v", profile)
	}
}

func TestFailureEnvelopeBecomesAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"success":false,"error":"Profile not found","code":"PROFILE_NOT_FOUND"}`))
	}))
	defer server.Close()

	client := New(server.URL, func(ctx context.Context) (string, error) { return "t", nil })
	_, err := client.GetProfile(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Status != http.StatusNotFound || apiErr.Code != "PROFILE_NOT_FOUND" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestNonEnvelopeFailureStillTyped(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(server.URL, func(ctx context.Context) (string, error) { return "t", nil })
	_, err := client.GetUsage(context.Background())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError even without an envelope", err)
	}
	if apiErr.Status != http.StatusBadGateway || apiErr.Code != "UNKNOWN" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}

func TestTokenSourceFailureShortCircuits(t *testing.T) {
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { hits++ }))
	defer server.Close()

	client := New(server.URL, func(ctx context.Context) (string, error) {
		return "", errors.New("session lapsed")
	})
	if _, err := client.GetProfile(context.Background()); err == nil {
		t.Fatal("want an error when the token source fails")
	}
	if hits != 0 {
		t.Errorf("backend hit %d times without a token, want 0", hits)
	}
}

func TestListItemsEncodesLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/data/collections/prompts" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "25" {
			t.Errorf("limit = %q, want 25", r.URL.Query().Get("limit"))
		}
		w.Write([]byte(`{"success":true,"items":[{"id":"a"},{"id":"b"}],"count":2}`))
	}))
	defer server.Close()

	client := New(server.URL, func(ctx context.Context) (string, error) { return "t", nil })
	items, err := client.ListItems(context.Background(), "prompts", 25)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 || items[0].ID != "a" {
		t.Errorf("items = %v", items)
	}
}

func TestRecordOptimizationDecodesCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %q, want POST", r.Method)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "dailyOptimizationCount": 4})
	}))
	defer server.Close()

	client := New(server.URL, func(ctx context.Context) (string, error) { return "t", nil })
	count, err := client.RecordOptimization(context.Background())
	if err != nil {
		t.Fatalf("RecordOptimization: %v", err)
	}
	if count != 4 {
		t.Errorf("count = %d, want 4", count)
	}
}
