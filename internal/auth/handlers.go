package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"taskhub-backend/internal/db"
	"taskhub-backend/internal/response"
)

var validate = validator.New()

const maxPasswordBytes = 72

type credentials struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentials, bool) {
	var body credentials
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid json")
		return credentials{}, false
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	// bcrypt rejects passwords over 72 bytes
	if err := validate.Struct(body); err != nil || len(body.Password) > maxPasswordBytes {
		response.Error(w, http.StatusBadRequest, "valid email & password (8-72 chars) required")
		return credentials{}, false
	}
	return body, true
}

func tokenResponse(w http.ResponseWriter, status, id int, secret []byte, logger *zap.Logger) {
	token, err := GenerateToken(secret, id)
	if err != nil {
		logger.Error("sign token failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "token error")
		return
	}
	response.JSON(w, status, map[string]any{
		"user_id": id,
		"token":   token,
	})
}

func RegisterHandler(dbx *sql.DB, secret []byte, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			logger.Error("hash password failed", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "hash error")
			return
		}

		var id int
		err = dbx.QueryRowContext(r.Context(), `
			INSERT INTO users (email, password, created_at)
			VALUES ($1, $2, $3)
			RETURNING id
		`, body.Email, string(hash), time.Now().UTC()).Scan(&id)
		if db.IsUniqueViolation(err) {
			response.Error(w, http.StatusConflict, "email already exists")
			return
		}
		if err != nil {
			logger.Error("insert user failed", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "db error")
			return
		}

		tokenResponse(w, http.StatusCreated, id, secret, logger)
	}
}

func LoginHandler(dbx *sql.DB, secret []byte, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeCredentials(w, r)
		if !ok {
			return
		}

		var (
			id   int
			hash string
		)
		err := dbx.QueryRowContext(r.Context(),
			`SELECT id, password FROM users WHERE email = $1`, body.Email,
		).Scan(&id, &hash)
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(w, http.StatusUnauthorized, "invalid login")
			return
		}
		if err != nil {
			logger.Error("lookup user failed", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "db error")
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(body.Password)) != nil {
			response.Error(w, http.StatusUnauthorized, "invalid login")
			return
		}

		tokenResponse(w, http.StatusOK, id, secret, logger)
	}
}

func MeHandler(dbx *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var email string
		err := dbx.QueryRowContext(r.Context(), `SELECT email FROM users WHERE id = $1`, uid).Scan(&email)
		if errors.Is(err, sql.ErrNoRows) {
			response.Error(w, http.StatusNotFound, "user not found")
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "db error")
			return
		}

		response.JSON(w, http.StatusOK, map[string]any{
			"user_id": uid,
			"email":   email,
		})
	}
}
