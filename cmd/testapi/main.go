// Command testapi is a small REST service used to exercise apibridge end
// to end. It mirrors the API patterns a bridge catalog has to cover: path
// and query parameters, JSON bodies, bearer/API-key protected routes, and
// error responses. Not part of the adapter core.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Demo credentials, fixed so catalog examples work out of the box.
var (
	validTokens = map[string]bool{
		"test-token-123":  true,
		"admin-token-456": true,
		"user-token-789":  true,
	}
	validAPIKeys = map[string]bool{
		"test-api-key-456": true,
		"secret-key-123":   true,
	}
)

// User is a demo user record.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Post is a demo post record.
type Post struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	AuthorID string `json:"author_id"`
}

// store holds the in-memory demo data. A single mutex is enough at demo
// scale.
type store struct {
	mu    sync.Mutex
	users map[string]User
	posts map[string]Post
}

func newStore() *store {
	return &store{
		users: map[string]User{
			"1": {ID: "1", Name: "John Doe", Email: "john@example.com", Role: "admin"},
			"2": {ID: "2", Name: "Jane Smith", Email: "jane@example.com", Role: "user"},
			"3": {ID: "3", Name: "Bob Johnson", Email: "bob@example.com", Role: "user"},
		},
		posts: map[string]Post{
			"1": {ID: "1", Title: "First Post", Content: "This is the first post", AuthorID: "1"},
			"2": {ID: "2", Title: "Second Post", Content: "This is the second post", AuthorID: "2"},
			"3": {ID: "3", Title: "Third Post", Content: "This is the third post", AuthorID: "1"},
		},
	}
}

// writeJSON writes a JSON response with the specified status code and data.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a standard error JSON response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// requireBearer validates the Authorization header against the demo token
// list. Returns the token and true when valid.
func requireBearer(w http.ResponseWriter, r *http.Request) (string, bool) {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || !validTokens[token] {
		writeError(w, http.StatusUnauthorized, "Invalid token")
		return "", false
	}
	return token, true
}

// requireAPIKey validates the X-API-Key header against the demo key list.
func requireAPIKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.Header.Get("X-API-Key")
	if !validAPIKeys[key] {
		writeError(w, http.StatusUnauthorized, "Invalid API key")
		return "", false
	}
	return key, true
}

// queryInt parses an integer query parameter with a default.
func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// newMux builds the testapi route table.
func newMux(db *store) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"message":   "APIBridge Test Service",
			"version":   "1.0.0",
			"endpoints": []string{"/users", "/posts", "/status", "/health", "/echo"},
		})
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
		})
	})

	mux.HandleFunc("GET /status", func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"status":    "running",
			"timestamp": time.Now().Format(time.RFC3339),
		}
		if r.URL.Query().Get("include_stats") == "true" {
			db.mu.Lock()
			response["stats"] = map[string]interface{}{
				"users_count": len(db.users),
				"posts_count": len(db.posts),
			}
			db.mu.Unlock()
		}
		writeJSON(w, http.StatusOK, response)
	})

	mux.HandleFunc("POST /echo", func(w http.ResponseWriter, r *http.Request) {
		var data map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"echo":        data,
			"received_at": time.Now().Format(time.RFC3339),
			"request_id":  uuid.NewString(),
		})
	})

	mux.HandleFunc("GET /users", func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 10)
		role := r.URL.Query().Get("role")

		db.mu.Lock()
		users := make([]User, 0, len(db.users))
		for _, u := range db.users {
			if role == "" || u.Role == role {
				users = append(users, u)
			}
		}
		db.mu.Unlock()

		sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
		if len(users) > limit {
			users = users[:limit]
		}
		writeJSON(w, http.StatusOK, users)
	})

	mux.HandleFunc("GET /users/{user_id}", func(w http.ResponseWriter, r *http.Request) {
		db.mu.Lock()
		user, ok := db.users[r.PathValue("user_id")]
		db.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeJSON(w, http.StatusOK, user)
	})

	mux.HandleFunc("POST /users", func(w http.ResponseWriter, r *http.Request) {
		var user User
		if err := json.NewDecoder(r.Body).Decode(&user); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if user.Role == "" {
			user.Role = "user"
		}

		db.mu.Lock()
		user.ID = strconv.Itoa(len(db.users) + 1)
		db.users[user.ID] = user
		db.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "User created successfully",
			"data":    user,
		})
	})

	mux.HandleFunc("DELETE /users/{user_id}", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("user_id")
		db.mu.Lock()
		user, ok := db.users[id]
		if ok {
			delete(db.users, id)
		}
		db.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "User deleted successfully",
			"data":    user,
		})
	})

	mux.HandleFunc("GET /posts", func(w http.ResponseWriter, r *http.Request) {
		limit := queryInt(r, "limit", 10)
		authorID := r.URL.Query().Get("author_id")

		db.mu.Lock()
		posts := make([]Post, 0, len(db.posts))
		for _, p := range db.posts {
			if authorID == "" || p.AuthorID == authorID {
				posts = append(posts, p)
			}
		}
		db.mu.Unlock()

		sort.Slice(posts, func(i, j int) bool { return posts[i].ID < posts[j].ID })
		if len(posts) > limit {
			posts = posts[:limit]
		}
		writeJSON(w, http.StatusOK, posts)
	})

	mux.HandleFunc("GET /posts/{post_id}", func(w http.ResponseWriter, r *http.Request) {
		db.mu.Lock()
		post, ok := db.posts[r.PathValue("post_id")]
		db.mu.Unlock()
		if !ok {
			writeError(w, http.StatusNotFound, "Post not found")
			return
		}
		writeJSON(w, http.StatusOK, post)
	})

	mux.HandleFunc("POST /posts", func(w http.ResponseWriter, r *http.Request) {
		if _, ok := requireBearer(w, r); !ok {
			return
		}
		var post Post
		if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		db.mu.Lock()
		post.ID = strconv.Itoa(len(db.posts) + 1)
		db.posts[post.ID] = post
		db.mu.Unlock()

		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"message": "Post created successfully",
			"data":    post,
		})
	})

	mux.HandleFunc("GET /secure/profile", func(w http.ResponseWriter, r *http.Request) {
		token, ok := requireBearer(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"user":        "authenticated_user",
			"token":       token[:10] + "...",
			"permissions": []string{"read", "write"},
		})
	})

	mux.HandleFunc("GET /api/protected", func(w http.ResponseWriter, r *http.Request) {
		key, ok := requireAPIKey(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"protected_data": "secret information",
			"api_key":        key[:8] + "...",
			"access_level":   "premium",
		})
	})

	mux.HandleFunc("GET /api/search", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		if query == "" {
			writeError(w, http.StatusUnprocessableEntity, "query parameter is required")
			return
		}
		category := r.URL.Query().Get("category")
		if category == "" {
			category = "general"
		}
		perPage := queryInt(r, "per_page", 10)

		results := make([]map[string]interface{}, 0, perPage)
		for i := 1; i <= perPage; i++ {
			results = append(results, map[string]interface{}{
				"id":       i,
				"title":    fmt.Sprintf("Result %d", i),
				"category": category,
			})
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"query": query,
			"pagination": map[string]int{
				"page":     queryInt(r, "page", 1),
				"per_page": perPage,
			},
			"results": results,
		})
	})

	mux.HandleFunc("GET /test/error", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusInternalServerError, "This is a test error")
	})

	return mux
}

func main() {
	port := flag.String("port", "8000", "Port to listen on")
	flag.Parse()

	db := newStore()
	mux := newMux(db)

	log.Printf("testapi listening on :%s", *port)
	log.Printf("demo bearer tokens: test-token-123, admin-token-456")
	log.Printf("demo API keys: test-api-key-456, secret-key-123")

	if err := http.ListenAndServe(":"+*port, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
