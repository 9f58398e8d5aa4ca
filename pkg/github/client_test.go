package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ayeeff/marketmap/pkg/errors"
)

func testServer(t *testing.T, handler http.Handler) *ContentClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewContentClient("test-token")
	c.baseURL = srv.URL
	c.now = func() time.Time {
		return time.Date(2026, 8, 29, 14, 5, 0, 0, time.UTC)
	}
	return c
}

func TestFetchFile(t *testing.T) {
	c := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/ayeeff/marketcap/contents/data/countries_marketcap.csv" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q", got)
		}
		_ = json.NewEncoder(w).Encode(apiContentResponse{
			Path:    "data/countries_marketcap.csv",
			Size:    11,
			SHA:     "abc123",
			Content: base64.StdEncoding.EncodeToString([]byte("Rank,Country")),
		})
	}))

	file, err := c.FetchFile(context.Background(), "ayeeff", "marketcap", "data/countries_marketcap.csv")
	if err != nil {
		t.Fatalf("FetchFile() error = %v", err)
	}
	if string(file.Content) != "Rank,Country" {
		t.Errorf("content = %q", file.Content)
	}
	if file.SHA != "abc123" {
		t.Errorf("sha = %q", file.SHA)
	}
}

func TestFetchFileNotFound(t *testing.T) {
	c := testServer(t, http.NotFoundHandler())

	_, err := c.FetchFile(context.Background(), "ayeeff", "marketcap", "missing.csv")
	if !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeNotFound)
	}
}

func TestFetchFileRejectsTraversal(t *testing.T) {
	c := NewContentClient("token")
	_, err := c.FetchFile(context.Background(), "ayeeff", "marketcap", "../secrets")
	if !errors.Is(err, errors.ErrCodeInvalidPath) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeInvalidPath)
	}
}

func TestUpsertFileCreates(t *testing.T) {
	var put apiUpsertRequest
	c := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.NotFound(w, r) // file does not exist yet
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&put); err != nil {
				t.Fatalf("decode PUT body: %v", err)
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"content": map[string]string{"path": "data/new.csv", "sha": "newsha"},
			})
		}
	}))

	result, err := c.UpsertFile(context.Background(), "ayeeff", "marketcap", "data/new.csv",
		"Update countries market cap data", []byte("Rank,Country\n"))
	if err != nil {
		t.Fatalf("UpsertFile() error = %v", err)
	}
	if !result.Created {
		t.Error("Created = false, want true for a new file")
	}
	if put.SHA != "" {
		t.Errorf("create must not send a SHA, got %q", put.SHA)
	}
	if put.Message != "Update countries market cap data - 2026-08-29 14:05 UTC" {
		t.Errorf("message = %q", put.Message)
	}

	decoded, err := base64.StdEncoding.DecodeString(put.Content)
	if err != nil || string(decoded) != "Rank,Country\n" {
		t.Errorf("content = %q, %v", decoded, err)
	}
}

func TestUpsertFileUpdates(t *testing.T) {
	var put apiUpsertRequest
	c := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			_ = json.NewEncoder(w).Encode(apiContentResponse{
				Path: "data/existing.csv", SHA: "oldsha",
				Content: base64.StdEncoding.EncodeToString([]byte("old")),
			})
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&put)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"content": map[string]string{"path": "data/existing.csv", "sha": "newsha"},
			})
		}
	}))

	result, err := c.UpsertFile(context.Background(), "ayeeff", "marketcap", "data/existing.csv",
		"Update empire market cap analysis", []byte("new"))
	if err != nil {
		t.Fatalf("UpsertFile() error = %v", err)
	}
	if result.Created {
		t.Error("Created = true, want false for an existing file")
	}
	if put.SHA != "oldsha" {
		t.Errorf("update must send the existing SHA, got %q", put.SHA)
	}
	if result.SHA != "newsha" {
		t.Errorf("result SHA = %q", result.SHA)
	}
}

func TestUpsertFileRequiresToken(t *testing.T) {
	c := NewContentClient("")
	_, err := c.UpsertFile(context.Background(), "ayeeff", "marketcap", "data/x.csv", "msg", nil)
	if !errors.Is(err, errors.ErrCodeUnauthorized) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeUnauthorized)
	}
}

func TestUpsertFileBinaryRoundTrip(t *testing.T) {
	payload := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0xFF}

	var put apiUpsertRequest
	c := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			http.NotFound(w, r)
		case http.MethodPut:
			_ = json.NewDecoder(r.Body).Decode(&put)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"content": map[string]string{"path": "maps/map.png", "sha": "s"},
			})
		}
	}))

	if _, err := c.UpsertFile(context.Background(), "ayeeff", "marketcap", "maps/map.png", "Update map", payload); err != nil {
		t.Fatalf("UpsertFile() error = %v", err)
	}
	decoded, _ := base64.StdEncoding.DecodeString(put.Content)
	if string(decoded) != string(payload) {
		t.Error("binary content corrupted in transit")
	}
}

func TestListContents(t *testing.T) {
	c := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]apiContentResponse{
			{Name: "countries_marketcap.csv", Path: "data/countries_marketcap.csv", Type: "file", Size: 1200},
			{Name: "maps", Path: "data/maps", Type: "dir"},
		})
	}))

	items, err := c.ListContents(context.Background(), "ayeeff", "marketcap", "data")
	if err != nil {
		t.Fatalf("ListContents() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Type != "file" || items[1].Type != "dir" {
		t.Errorf("items = %+v", items)
	}
}

func TestFetchUser(t *testing.T) {
	c := testServer(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/user") {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(User{Login: "ayeeff", Name: "A. F."})
	}))

	user, err := c.FetchUser(context.Background())
	if err != nil {
		t.Fatalf("FetchUser() error = %v", err)
	}
	if user.Login != "ayeeff" {
		t.Errorf("login = %q", user.Login)
	}
}

func TestInvalidRepoName(t *testing.T) {
	c := NewContentClient("token")
	_, err := c.FetchFile(context.Background(), "bad owner", "repo", "file.csv")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("error = %v, want code %s", err, errors.ErrCodeInvalidInput)
	}
}
