package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/xelth-com/receiptdesk/internal/database"
	"github.com/xelth-com/receiptdesk/internal/middleware"
	"github.com/xelth-com/receiptdesk/internal/models"
	"github.com/xelth-com/receiptdesk/internal/utils"
	"gorm.io/gorm"
)

// ErrEmailTaken is returned when registering an existing email
var ErrEmailTaken = errors.New("email already registered")

// UserStore persists accounts
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.UserAuth, error)
	FindByID(ctx context.Context, id string) (*models.UserAuth, error)
	Create(ctx context.Context, user *models.UserAuth) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
}

type gormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore stores users in user_auths
func NewGormUserStore(db *gorm.DB) UserStore {
	return &gormUserStore{db: db}
}

func (s *gormUserStore) FindByEmail(ctx context.Context, email string) (*models.UserAuth, error) {
	var user models.UserAuth
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) FindByID(ctx context.Context, id string) (*models.UserAuth, error) {
	var user models.UserAuth
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormUserStore) Create(ctx context.Context, user *models.UserAuth) error {
	err := s.db.WithContext(ctx).Create(user).Error
	if database.IsUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

func (s *gormUserStore) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.UserAuth{}).Where("id = ?", id).Update("last_login", at).Error
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"fullName" validate:"max=255"`
}

// login handles user login
func (r *Router) login(w http.ResponseWriter, req *http.Request) {
	var loginReq LoginRequest
	if !decodeAndValidate(w, req, &loginReq) {
		return
	}

	// 1. Find User
	user, err := r.Users.FindByEmail(req.Context(), strings.ToLower(strings.TrimSpace(loginReq.Email)))
	if err != nil || !user.IsActive {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 2. Check Password
	if !utils.CheckPasswordHash(loginReq.Password, user.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	// 3. Update Last Login
	now := time.Now().UTC()
	if err := r.Users.TouchLogin(req.Context(), user.ID, now); err != nil {
		r.Logger.WithError(err).Warn("⚠️ Failed to record last login")
	}
	user.LastLogin = &now

	// 4. Generate Token
	r.respondWithToken(w, http.StatusOK, user)
}

// register handles user registration
func (r *Router) register(w http.ResponseWriter, req *http.Request) {
	var regReq RegisterRequest
	if !decodeAndValidate(w, req, &regReq) {
		return
	}

	// 1. Hash Password
	hashedPassword, err := utils.HashPassword(regReq.Password)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	// 2. Create User
	user := &models.UserAuth{
		Email:    strings.ToLower(strings.TrimSpace(regReq.Email)),
		Password: hashedPassword,
		FullName: regReq.FullName,
		Role:     "user",
		IsActive: true,
	}
	if err := r.Users.Create(req.Context(), user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			respondError(w, http.StatusConflict, "Email already registered")
			return
		}
		r.respondServiceError(w, "register", err)
		return
	}

	r.Logger.WithField("user_id", user.ID).Info("👤 User registered")

	// 3. Token for immediate login
	r.respondWithToken(w, http.StatusCreated, user)
}

func (r *Router) respondWithToken(w http.ResponseWriter, status int, user *models.UserAuth) {
	accessToken, err := utils.GenerateToken(user.ID, user.Email, user.Role, r.Config.JWTSecret, utils.AccessTokenTTL)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	respondJSON(w, status, map[string]interface{}{
		"tokens": map[string]string{
			"accessToken": accessToken,
		},
		"user": user,
	})
}

// me returns the authenticated user
func (r *Router) me(w http.ResponseWriter, req *http.Request) {
	user, err := r.Users.FindByID(req.Context(), middleware.UserIDFromContext(req.Context()))
	if err != nil {
		r.respondServiceError(w, "me", err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}
