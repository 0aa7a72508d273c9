package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newMux(newStore()))
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, url string, out interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestGetUser(t *testing.T) {
	srv := testServer(t)

	var user User
	if status := getJSON(t, srv.URL+"/users/1", &user); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if user.Name != "John Doe" {
		t.Errorf("Expected John Doe, got %s", user.Name)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	srv := testServer(t)

	var errResp map[string]string
	if status := getJSON(t, srv.URL+"/users/999", &errResp); status != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", status)
	}
	if errResp["error"] != "User not found" {
		t.Errorf("Expected error message, got %v", errResp)
	}
}

func TestGetUsers_RoleFilter(t *testing.T) {
	srv := testServer(t)

	var users []User
	getJSON(t, srv.URL+"/users?role=admin", &users)
	if len(users) != 1 {
		t.Fatalf("Expected 1 admin, got %d", len(users))
	}
	if users[0].Role != "admin" {
		t.Errorf("Expected admin role, got %s", users[0].Role)
	}
}

func TestCreatePost_RequiresBearer(t *testing.T) {
	srv := testServer(t)

	body := strings.NewReader(`{"title":"T","content":"C","author_id":"1"}`)
	resp, err := http.Post(srv.URL+"/posts", "application/json", body)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without token, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/posts",
		strings.NewReader(`{"title":"T","content":"C","author_id":"1"}`))
	req.Header.Set("Authorization", "Bearer test-token-123")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with valid token, got %d", resp.StatusCode)
	}
}

func TestProtected_RequiresAPIKey(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/protected")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 without key, got %d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/protected", nil)
	req.Header.Set("X-API-Key", "test-api-key-456")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 with valid key, got %d", resp.StatusCode)
	}
}

func TestSearch_RequiresQuery(t *testing.T) {
	srv := testServer(t)

	if status := getJSON(t, srv.URL+"/api/search", nil); status != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 without query, got %d", status)
	}

	var result map[string]interface{}
	if status := getJSON(t, srv.URL+"/api/search?query=widgets&per_page=3", &result); status != http.StatusOK {
		t.Fatalf("Expected 200, got %d", status)
	}
	if result["query"] != "widgets" {
		t.Errorf("Expected query echoed, got %v", result["query"])
	}
	results, _ := result["results"].([]interface{})
	if len(results) != 3 {
		t.Errorf("Expected 3 results, got %d", len(results))
	}
}

func TestEcho(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Post(srv.URL+"/echo", "application/json", strings.NewReader(`{"hello":"world"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	echo, _ := result["echo"].(map[string]interface{})
	if echo["hello"] != "world" {
		t.Errorf("Expected echoed payload, got %v", result)
	}
}

func TestErrorEndpoint(t *testing.T) {
	srv := testServer(t)

	var errResp map[string]string
	if status := getJSON(t, srv.URL+"/test/error", &errResp); status != http.StatusInternalServerError {
		t.Errorf("Expected 500, got %d", status)
	}
	if !strings.Contains(errResp["error"], "test error") {
		t.Errorf("Expected test error message, got %v", errResp)
	}
}
