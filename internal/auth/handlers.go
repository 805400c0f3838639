package auth

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// AdminCredentials учетные данные администратора из конфигурации
type AdminCredentials struct {
	Email        string
	PasswordHash string
}

// AuthHandler обработчики аутентификации админ-панели
type AuthHandler struct {
	jwtService *JWTService
	creds      AdminCredentials
	log        *zap.Logger
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(jwtService *JWTService, creds AdminCredentials, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		jwtService: jwtService,
		creds:      creds,
		log:        log,
	}
}

// LoginRequest запрос на вход
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse ответ с токеном
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Login обработчик входа в админ-панель
// @Summary Admin login
// @Description Authenticates the admin panel user and returns a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} LoginResponse
// @Failure 401 {string} string "Invalid credentials"
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	// Единственная учетная запись задается конфигурацией
	if email != strings.ToLower(h.creds.Email) {
		h.log.Warn("login attempt with unknown email", zap.String("email", email))
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	if err := VerifyPassword(h.creds.PasswordHash, req.Password); err != nil {
		h.log.Warn("login attempt with wrong password", zap.String("email", email))
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtService.GenerateToken(email)
	if err != nil {
		h.log.Error("failed to generate token", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("admin logged in", zap.String("email", email))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		Token:     token,
		ExpiresAt: time.Now().Add(h.jwtService.config.TokenDuration),
	})
}
