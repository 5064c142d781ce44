// Package auth issues and refreshes admin dashboard sessions. There is no
// self-serve signup: admin accounts are provisioned out of band, and a login
// with an unknown email is told so explicitly.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"matjarna/db"
	"matjarna/globals"
	"matjarna/middleware"
	"matjarna/models"
	"matjarna/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour
)

func generateAccessToken(admin models.AdminUser) (string, error) {
	claims := middleware.Claims{
		AdminID: admin.UserID,
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(globals.JwtSecret)
}

func generateRefreshToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func issueSession(ctx context.Context, w http.ResponseWriter, admin models.AdminUser) {
	accessToken, err := generateAccessToken(admin)
	if err != nil {
		log.Println("access token error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to generate token")
		return
	}
	refreshToken, err := generateRefreshToken()
	if err != nil {
		log.Println("refresh token error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to generate token")
		return
	}

	_, err = db.AdminsCollection.UpdateOne(ctx,
		bson.M{"userid": admin.UserID},
		bson.M{"$set": bson.M{
			"refresh_hash":   hashToken(refreshToken),
			"refresh_expiry": time.Now().Add(refreshTokenTTL),
		}})
	if err != nil {
		log.Println("refresh store error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to store session")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"token":         accessToken,
		"refresh_token": refreshToken,
		"admin": utils.M{
			"id":    admin.UserID,
			"email": admin.Email,
			"name":  admin.Name,
			"role":  admin.Role,
		},
	})
}

// Login handles POST /api/auth/login.
func Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid input")
		return
	}
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || input.Password == "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Email and password are required")
		return
	}

	var admin models.AdminUser
	err := db.AdminsCollection.FindOne(ctx, bson.M{"email": input.Email}).Decode(&admin)
	if err == mongo.ErrNoDocuments {
		// Unknown emails get a distinct answer: nobody can sign up, so this
		// is a provisioning problem, not a typo'd password.
		utils.RespondWithErrorCode(w, http.StatusForbidden, "NOT_REGISTERED_ADMIN", "This email is not a registered admin account")
		return
	}
	if err != nil {
		log.Println("admin lookup error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not verify account")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.Password)); err != nil {
		utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid email or password")
		return
	}

	issueSession(ctx, w, admin)
}

// RefreshToken handles POST /api/auth/refresh, rotating both tokens.
func RefreshToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.RefreshToken == "" {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "refresh_token is required")
		return
	}

	var admin models.AdminUser
	err := db.AdminsCollection.FindOne(ctx, bson.M{"refresh_hash": hashToken(input.RefreshToken)}).Decode(&admin)
	if err != nil {
		utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid refresh token")
		return
	}
	if time.Now().After(admin.RefreshExpiry) {
		utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Refresh token expired")
		return
	}

	issueSession(ctx, w, admin)
}

// Logout handles POST /api/auth/logout, invalidating the refresh token.
func Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	adminID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || adminID == "" {
		utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing token")
		return
	}

	_, err := db.AdminsCollection.UpdateOne(ctx,
		bson.M{"userid": adminID},
		bson.M{"$unset": bson.M{"refresh_hash": "", "refresh_expiry": ""}})
	if err != nil {
		log.Println("logout error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to invalidate session")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// ChangePassword handles POST /api/auth/password for the logged-in admin.
func ChangePassword(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	adminID, ok := r.Context().Value(globals.UserIDKey).(string)
	if !ok || adminID == "" {
		utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing token")
		return
	}

	var input struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "Invalid input")
		return
	}
	if len(input.NewPassword) < 8 {
		utils.RespondWithErrorCode(w, http.StatusBadRequest, "BAD_REQUEST", "New password must be at least 8 characters")
		return
	}

	var admin models.AdminUser
	if err := db.AdminsCollection.FindOne(ctx, bson.M{"userid": adminID}).Decode(&admin); err != nil {
		utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Account not found")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Current password is incorrect")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Println("bcrypt error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to update password")
		return
	}
	_, err = db.AdminsCollection.UpdateOne(ctx,
		bson.M{"userid": adminID},
		bson.M{"$set": bson.M{"password_hash": string(hash)}})
	if err != nil {
		log.Println("password update error:", err)
		utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Failed to update password")
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
