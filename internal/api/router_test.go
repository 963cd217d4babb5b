package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sebringj/localstack/internal/api/handlers"
	"github.com/sebringj/localstack/internal/auth"
	"github.com/sebringj/localstack/internal/services"
	"github.com/sebringj/localstack/internal/storage"
)

// newTestServer wires the full HTTP surface against the in-memory engine
// with two seeded accounts.
func newTestServer(t *testing.T) (http.Handler, *auth.Manager) {
	t.Helper()

	store := storage.NewMemoryEngine()
	userService := services.NewUserService(store)
	todoService := services.NewTodoService(store)
	tokens := auth.NewManager("test-secret", time.Hour)

	for _, seed := range []struct{ username, password string }{
		{"alice", "alicepass"},
		{"bob", "bobpass"},
	} {
		if _, err := userService.CreateUser(context.Background(), seed.username, seed.password); err != nil {
			t.Fatalf("seed %s: %v", seed.username, err)
		}
	}

	router := NewRouter(
		tokens,
		handlers.NewAuthHandler(userService, tokens),
		handlers.NewTodoHandler(todoService),
		handlers.NewHealthHandler(store),
	)
	return router, tokens
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	decoded := map[string]interface{}{}
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
			t.Fatalf("%s %s: non-JSON body %q", method, path, rec.Body.String())
		}
	}
	return rec, decoded
}

func login(t *testing.T, h http.Handler, username, password string) string {
	t.Helper()
	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d body %v", username, rec.Code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("login %s: no token in %v", username, body)
	}
	return token
}

func TestLogin(t *testing.T) {
	h, _ := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice",
		"password": "alicepass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body["username"] != "alice" {
		t.Errorf("username = %v, want alice", body["username"])
	}
	if token, _ := body["token"].(string); token == "" || token == "alice" {
		t.Errorf("token = %q, want a signed token", token)
	}
}

func TestLoginValidation(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name string
		body map[string]string
	}{
		{"missing password", map[string]string{"username": "alice"}},
		{"missing username", map[string]string{"password": "alicepass"}},
		{"empty body", map[string]string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, body := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if body["error"] != "Username and password required" {
				t.Errorf("error = %v", body["error"])
			}
		})
	}
}

func TestLoginBadCredentialsAreIdentical(t *testing.T) {
	h, _ := newTestServer(t)

	unknown, unknownBody := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "mallory", "password": "alicepass",
	})
	wrongPass, _ := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})

	if unknown.Code != http.StatusUnauthorized || wrongPass.Code != http.StatusUnauthorized {
		t.Fatalf("statuses = %d, %d, want 401, 401", unknown.Code, wrongPass.Code)
	}
	if unknownBody["error"] != "Invalid credentials" {
		t.Errorf("error = %v", unknownBody["error"])
	}
	if unknown.Body.String() != wrongPass.Body.String() {
		t.Errorf("unknown-user and wrong-password responses differ: %q vs %q",
			unknown.Body.String(), wrongPass.Body.String())
	}
}

func TestLoginMalformedBody(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestPreflight(t *testing.T) {
	h, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/auth/login", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestTodosRequireAuth(t *testing.T) {
	h, _ := newTestServer(t)

	paths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/v1/todos"},
		{http.MethodPost, "/api/v1/todos"},
		{http.MethodPut, "/api/v1/todos/some-id"},
		{http.MethodDelete, "/api/v1/todos/some-id"},
	}
	for _, p := range paths {
		t.Run(p.method+" "+p.path, func(t *testing.T) {
			rec, body := doJSON(t, h, p.method, p.path, "", nil)
			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if body["error"] != "Unauthorized" {
				t.Errorf("error = %v, want Unauthorized", body["error"])
			}
		})
	}

	t.Run("garbage token", func(t *testing.T) {
		rec, _ := doJSON(t, h, http.MethodGet, "/api/v1/todos", "garbage", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})
}

func TestTodoLifecycle(t *testing.T) {
	h, _ := newTestServer(t)
	token := login(t, h, "alice", "alicepass")

	// Create
	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/todos", token, map[string]interface{}{
		"title": "buy milk",
		// completed is not accepted at creation
		"completed": true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d body %v", rec.Code, body)
	}
	todo, _ := body["todo"].(map[string]interface{})
	if todo["username"] != "alice" || todo["title"] != "buy milk" {
		t.Errorf("todo = %v", todo)
	}
	if todo["completed"] != false {
		t.Errorf("completed = %v, want false despite client input", todo["completed"])
	}
	todoID, _ := todo["todo_id"].(string)
	if todoID == "" {
		t.Fatalf("no todo_id in %v", todo)
	}
	if created, _ := todo["created_at"].(string); created == "" {
		t.Errorf("no created_at in %v", todo)
	} else if _, err := time.Parse(time.RFC3339, created); err != nil {
		t.Errorf("created_at %q not RFC 3339: %v", created, err)
	}

	// List: the new record is visible
	rec, body = doJSON(t, h, http.MethodGet, "/api/v1/todos", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	todos, _ := body["todos"].([]interface{})
	if len(todos) != 1 {
		t.Fatalf("list = %v, want 1 todo", todos)
	}

	// Update only completed; title stays
	rec, body = doJSON(t, h, http.MethodPut, "/api/v1/todos/"+todoID, token, map[string]interface{}{
		"completed": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d body %v", rec.Code, body)
	}
	todo, _ = body["todo"].(map[string]interface{})
	if todo["completed"] != true || todo["title"] != "buy milk" {
		t.Errorf("after update: %v", todo)
	}

	// Empty patch is a 400
	rec, body = doJSON(t, h, http.MethodPut, "/api/v1/todos/"+todoID, token, map[string]interface{}{
		"priority": "high",
	})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("empty patch status = %d, want 400", rec.Code)
	}
	if body["error"] != "No fields to update" {
		t.Errorf("error = %v", body["error"])
	}

	// Delete twice: idempotent, same message
	rec, body = doJSON(t, h, http.MethodDelete, "/api/v1/todos/"+todoID, token, nil)
	if rec.Code != http.StatusOK || body["message"] != "Todo deleted" {
		t.Fatalf("delete = %d %v", rec.Code, body)
	}
	rec, body = doJSON(t, h, http.MethodDelete, "/api/v1/todos/"+todoID, token, nil)
	if rec.Code != http.StatusOK || body["message"] != "Todo deleted" {
		t.Fatalf("second delete = %d %v", rec.Code, body)
	}

	rec, body = doJSON(t, h, http.MethodGet, "/api/v1/todos", token, nil)
	if todos, _ := body["todos"].([]interface{}); len(todos) != 0 {
		t.Errorf("list after delete = %v", todos)
	}
}

func TestCreateWithoutTitle(t *testing.T) {
	h, _ := newTestServer(t)
	token := login(t, h, "alice", "alicepass")

	rec, body := doJSON(t, h, http.MethodPost, "/api/v1/todos", token, map[string]interface{}{})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	todo, _ := body["todo"].(map[string]interface{})
	if todo["title"] != "" {
		t.Errorf("title = %v, want empty string", todo["title"])
	}
}

func TestUpdateUnknownTodo(t *testing.T) {
	h, _ := newTestServer(t)
	token := login(t, h, "alice", "alicepass")

	rec, body := doJSON(t, h, http.MethodPut, "/api/v1/todos/no-such-id", token, map[string]interface{}{
		"completed": true,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if body["error"] != "Todo not found" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestOwnerIsolation(t *testing.T) {
	h, _ := newTestServer(t)
	aliceToken := login(t, h, "alice", "alicepass")
	bobToken := login(t, h, "bob", "bobpass")

	_, body := doJSON(t, h, http.MethodPost, "/api/v1/todos", bobToken, map[string]interface{}{
		"title": "bob's secret",
	})
	bobTodo, _ := body["todo"].(map[string]interface{})
	bobID, _ := bobTodo["todo_id"].(string)
	if bobID == "" {
		t.Fatal("no todo_id for bob")
	}

	// Alice's list never shows bob's todo.
	_, body = doJSON(t, h, http.MethodGet, "/api/v1/todos", aliceToken, nil)
	if todos, _ := body["todos"].([]interface{}); len(todos) != 0 {
		t.Errorf("alice sees %v", todos)
	}

	// Alice cannot modify bob's todo even with its real id.
	rec, _ := doJSON(t, h, http.MethodPut, "/api/v1/todos/"+bobID, aliceToken, map[string]interface{}{
		"completed": true,
	})
	if rec.Code != http.StatusNotFound {
		t.Errorf("cross-owner update status = %d, want 404", rec.Code)
	}

	// Alice's delete succeeds generically but bob's record survives.
	rec, _ = doJSON(t, h, http.MethodDelete, "/api/v1/todos/"+bobID, aliceToken, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("cross-owner delete status = %d, want 200", rec.Code)
	}
	_, body = doJSON(t, h, http.MethodGet, "/api/v1/todos", bobToken, nil)
	if todos, _ := body["todos"].([]interface{}); len(todos) != 1 {
		t.Errorf("bob's todo gone: %v", todos)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h, _ := newTestServer(t)
	token := login(t, h, "alice", "alicepass")

	rec, body := doJSON(t, h, http.MethodPatch, "/api/v1/todos", token, nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if body["error"] != "Method not allowed" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestHealth(t *testing.T) {
	h, _ := newTestServer(t)

	rec, body := doJSON(t, h, http.MethodGet, "/api/v1/health", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}
