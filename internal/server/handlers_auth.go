package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/bobmcallan/papertrade/internal/common"
	"github.com/bobmcallan/papertrade/internal/models"
)

// --- JWT helpers ---

// signJWT creates a signed HMAC-SHA256 JWT for the given user.
func signJWT(user *models.User, config *common.AuthConfig) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   user.Username,
		"email": user.Email,
		"role":  user.Role,
		"iss":   "papertrade-server",
		"iat":   now.Unix(),
		"exp":   now.Add(config.GetTokenExpiry()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(config.JWTSecret))
}

// validateJWT parses and validates a JWT token string using the given secret.
func validateJWT(tokenString string, secret []byte) (*jwt.Token, jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, nil, err
	}
	return token, claims, nil
}

// validateUsername returns a non-empty error message when the username is
// not acceptable.
func validateUsername(username string) string {
	if username == "" {
		return "username is required"
	}
	if len(username) > 64 {
		return "username must be 64 characters or fewer"
	}
	if strings.TrimSpace(username) != username {
		return "username must not have leading or trailing whitespace"
	}
	for _, c := range username {
		if c < 0x20 || c == 0x7f {
			return "username contains invalid control characters"
		}
	}
	return ""
}

// hashPassword bcrypt-hashes the password, truncated to bcrypt's 72-byte limit.
func hashPassword(password string) (string, error) {
	passwordBytes := []byte(password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	hash, err := bcrypt.GenerateFromPassword(passwordBytes, 10)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// checkPassword compares a candidate password against a stored bcrypt hash.
func checkPassword(hash, password string) bool {
	passwordBytes := []byte(password)
	if len(passwordBytes) > 72 {
		passwordBytes = passwordBytes[:72]
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes) == nil
}

// handleAuthRegister handles POST /api/auth/register — create a trading
// account with the configured opening cash balance.
func (s *Server) handleAuthRegister(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Username     string `json:"username"`
		Email        string `json:"email"`
		Password     string `json:"password"`
		Confirmation string `json:"confirmation"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if errMsg := validateUsername(req.Username); errMsg != "" {
		WriteErrorWithCode(w, http.StatusBadRequest, errMsg, "auth_failure")
		return
	}
	if req.Password == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "password is required", "auth_failure")
		return
	}
	if req.Password != req.Confirmation {
		WriteErrorWithCode(w, http.StatusBadRequest, "password and confirmation do not match", "auth_failure")
		return
	}

	ctx := r.Context()
	store := s.app.Storage.Users()

	if _, err := store.GetUser(ctx, req.Username); err == nil {
		WriteErrorWithCode(w, http.StatusConflict,
			fmt.Sprintf("user '%s' already exists", req.Username), "auth_failure")
		return
	}

	hash, err := hashPassword(req.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	user := &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         "trader",
		Cash:         s.app.Config.Trading.GetStartingCash(),
		CreatedAt:    time.Now(),
	}

	if err := store.SaveUser(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("username", req.Username).Msg("Failed to save user")
		WriteError(w, http.StatusInternalServerError, "failed to save user")
		return
	}

	s.app.PortfolioService.InvalidateView(req.Username)

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for registration")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	s.logger.Info().Str("username", user.Username).Msg("Account registered")

	WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"token": token,
			"user": map[string]interface{}{
				"username": user.Username,
				"email":    user.Email,
				"role":     user.Role,
				"cash":     user.Cash.StringFixed(2),
			},
		},
	})
}

// handleAuthLogin handles POST /api/auth/login — authenticate a user.
func (s *Server) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	ctx := r.Context()
	store := s.app.Storage.Users()

	user, err := store.GetUser(ctx, req.Username)
	if err != nil {
		WriteErrorWithCode(w, http.StatusUnauthorized, "invalid credentials", "auth_failure")
		return
	}

	if !checkPassword(user.PasswordHash, req.Password) {
		WriteErrorWithCode(w, http.StatusUnauthorized, "invalid credentials", "auth_failure")
		return
	}

	// A fresh session starts from a fresh valuation.
	s.app.PortfolioService.InvalidateView(user.Username)

	token, err := signJWT(user, &s.app.Config.Auth)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to sign JWT for login")
		WriteError(w, http.StatusInternalServerError, "failed to sign token")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"token": token,
			"user": map[string]interface{}{
				"username": user.Username,
				"email":    user.Email,
				"role":     user.Role,
				"cash":     user.Cash.StringFixed(2),
			},
		},
	})
}

// handleAuthLogout handles POST /api/auth/logout — drop the user's cached
// portfolio view. Tokens are stateless and expire on their own.
func (s *Server) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	username := s.requireUser(w, r)
	if username == "" {
		return
	}

	s.app.PortfolioService.InvalidateView(username)

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleAuthValidate handles GET /api/auth/validate — echo the identity the
// bearer token resolved to.
func (s *Server) handleAuthValidate(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	uc := common.UserContextFromContext(r.Context())
	if uc == nil {
		writeBearerChallenge(w, "authentication required")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"data": map[string]interface{}{
			"username": uc.Username,
			"email":    uc.Email,
			"role":     uc.Role,
		},
	})
}

// handleAuthPassword handles POST /api/auth/password — change the
// authenticated user's password after re-verifying the current one.
func (s *Server) handleAuthPassword(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	username := s.requireUser(w, r)
	if username == "" {
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
		Confirmation    string `json:"confirmation"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if req.NewPassword == "" {
		WriteErrorWithCode(w, http.StatusBadRequest, "new password is required", "auth_failure")
		return
	}
	if req.NewPassword != req.Confirmation {
		WriteErrorWithCode(w, http.StatusBadRequest, "password and confirmation do not match", "auth_failure")
		return
	}

	ctx := r.Context()
	store := s.app.Storage.Users()

	user, err := store.GetUser(ctx, username)
	if err != nil {
		WriteErrorWithCode(w, http.StatusUnauthorized, "invalid credentials", "auth_failure")
		return
	}

	if !checkPassword(user.PasswordHash, req.CurrentPassword) {
		WriteErrorWithCode(w, http.StatusUnauthorized, "current password is incorrect", "auth_failure")
		return
	}

	hash, err := hashPassword(req.NewPassword)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to hash password")
		WriteError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	if err := store.UpdatePassword(ctx, username, hash); err != nil {
		s.logger.Error().Err(err).Str("username", username).Msg("Failed to update password")
		WriteError(w, http.StatusInternalServerError, "failed to update password")
		return
	}

	s.logger.Info().Str("username", username).Msg("Password changed")

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
