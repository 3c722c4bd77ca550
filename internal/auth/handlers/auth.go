package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"simvex/internal/auth/models"
	"simvex/internal/auth/repository"
	"simvex/internal/auth/service"
	"simvex/internal/common/middleware"
)

const minPasswordLength = 4

// ============================================================
// Auth Handler
// ============================================================

// AuthHandler answers with {"message": ...} on failure, which is what the
// login and signup pages display.
type AuthHandler struct {
	repo     *repository.Repository
	sessions *service.SessionManager
	log      *zap.Logger
}

func NewAuthHandler(repo *repository.Repository, sessions *service.SessionManager, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		repo:     repo,
		sessions: sessions,
		log:      log.Named("auth"),
	}
}

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Username  string `json:"username"`
	StudentID string `json:"studentId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	StudentID string `json:"studentId"`
	Token     string `json:"token"`
}

// Signup registers a new account.
func (h *AuthHandler) Signup(c fiber.Ctx) error {
	var req signupRequest
	if err := decode(c, &req); err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}

	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if req.Email == "" || req.Password == "" || req.Username == "" {
		return message(c, http.StatusBadRequest, "email, password and username required")
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return message(c, http.StatusBadRequest, "invalid email")
	}
	if len(req.Password) < minPasswordLength {
		return message(c, http.StatusBadRequest, "password too short")
	}

	user, err := h.repo.Create(c.Context(), req.Email, req.Password, req.Username, strings.TrimSpace(req.StudentID))
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return message(c, http.StatusConflict, "email already registered")
	}
	if err != nil {
		h.log.Error("signup failed", zap.Error(err))
		return message(c, http.StatusInternalServerError, "signup failed")
	}

	h.log.Info("user registered", zap.String("user_id", user.ID))
	return message(c, http.StatusCreated, "signup complete")
}

// Login issues a bearer token for an email and password.
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req loginRequest
	if err := decode(c, &req); err != nil {
		return message(c, http.StatusBadRequest, err.Error())
	}
	if req.Email == "" || req.Password == "" {
		return message(c, http.StatusBadRequest, "email and password required")
	}

	user, err := h.repo.Authenticate(c.Context(), req.Email, req.Password)
	if errors.Is(err, repository.ErrInvalidCredentials) {
		return message(c, http.StatusUnauthorized, "invalid email or password")
	}
	if err != nil {
		h.log.Error("login failed", zap.Error(err))
		return message(c, http.StatusInternalServerError, "login failed")
	}

	token := h.sessions.Issue(user.ID)
	return c.JSON(loginResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		StudentID: user.StudentID,
		Token:     token,
	})
}

// Me returns the signed-in user.
func (h *AuthHandler) Me(c fiber.Ctx) error {
	userID, ok := h.authorize(c)
	if !ok {
		return message(c, http.StatusUnauthorized, "unauthorized")
	}

	user, err := h.repo.GetByID(c.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		return message(c, http.StatusNotFound, "user not found")
	}
	if err != nil {
		return message(c, http.StatusInternalServerError, "lookup failed")
	}
	return c.JSON(mapUser(user))
}

// Logout revokes the presented token.
func (h *AuthHandler) Logout(c fiber.Ctx) error {
	token, ok := middleware.BearerToken(c)
	if !ok || !h.sessions.Revoke(token) {
		return message(c, http.StatusUnauthorized, "unauthorized")
	}
	return c.SendStatus(http.StatusNoContent)
}

// ============================================================
// Helpers
// ============================================================

func (h *AuthHandler) authorize(c fiber.Ctx) (string, bool) {
	token, ok := middleware.BearerToken(c)
	if !ok {
		return "", false
	}
	return h.sessions.Resolve(token)
}

func decode(c fiber.Ctx, v any) error {
	if len(c.Body()) == 0 {
		return errors.New("empty body")
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return errors.New("invalid json")
	}
	return nil
}

func message(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

func mapUser(u *models.User) fiber.Map {
	return fiber.Map{
		"id":        u.ID,
		"email":     u.Email,
		"username":  u.Username,
		"studentId": u.StudentID,
		"createdAt": u.CreatedAt,
	}
}
