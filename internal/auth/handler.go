package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/ayang/library-lending/internal/models"
)

// Directory failures. The store maps unique-constraint violations and
// missing rows onto these.
var (
	ErrDuplicateUsername = errors.New("username already taken")
	ErrUserNotFound      = errors.New("user does not exist")
	ErrIncorrectPassword = errors.New("password incorrect")
)

// ManagerStore defines the interface for manager persistence.
type ManagerStore interface {
	CreateManager(ctx context.Context, username, hashedPw string) (*models.Manager, error)
	GetManagerByUsername(ctx context.Context, username string) (*models.Manager, error)
	GetManagerByID(ctx context.Context, id string) (*models.Manager, error)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	managers ManagerStore
	tokens   *TokenIssuer
}

func NewHandler(managers ManagerStore, tokens *TokenIssuer) *Handler {
	return &Handler{managers: managers, tokens: tokens}
}

// Signup registers a new manager.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, `{"error":"username and password are required"}`, http.StatusBadRequest)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("hash password: %v", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	if _, err := h.managers.CreateManager(r.Context(), req.Username, string(hashed)); err != nil {
		if errors.Is(err, ErrDuplicateUsername) {
			http.Error(w, `{"error":"username already taken"}`, http.StatusConflict)
			return
		}
		log.Printf("create manager: %v", err)
		http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Manager registered successfully!"})
}

// Login verifies credentials and returns a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
		return
	}

	manager, err := h.verifyCredentials(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			http.Error(w, `{"error":"User does not exist!"}`, http.StatusNotFound)
		case errors.Is(err, ErrIncorrectPassword):
			http.Error(w, `{"error":"Password incorrect!"}`, http.StatusForbidden)
		default:
			log.Printf("verify credentials: %v", err)
			http.Error(w, `{"error":"database error"}`, http.StatusInternalServerError)
		}
		return
	}

	token, err := h.tokens.Issue(manager.ID)
	if err != nil {
		log.Printf("issue token: %v", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "Successful login!",
		"token":   token,
	})
}

// verifyCredentials checks a username/password pair against the stored
// bcrypt hash and yields the manager on success.
func (h *Handler) verifyCredentials(ctx context.Context, username, password string) (*models.Manager, error) {
	manager, err := h.managers.GetManagerByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(manager.Password), []byte(password)); err != nil {
		return nil, ErrIncorrectPassword
	}
	return manager, nil
}

// Me returns the currently authenticated manager.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	managerID := r.Context().Value("manager_id")
	if managerID == nil {
		http.Error(w, `{"error":"not authenticated"}`, http.StatusUnauthorized)
		return
	}

	manager, err := h.managers.GetManagerByID(r.Context(), managerID.(string))
	if err != nil {
		http.Error(w, `{"error":"manager not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(manager)
}
