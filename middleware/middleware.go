package middleware

import (
	"context"
	"fmt"
	"matjarna/db"
	"matjarna/globals"
	"matjarna/utils"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"go.mongodb.org/mongo-driver/bson"
)

// JWT claims
type Claims struct {
	AdminID string `json:"adminId"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if websocket.IsWebSocketUpgrade(r) {
			// Allow WebSocket through without setting body/headers yet
			next(w, r, ps)
			return
		}

		tokenString := r.Header.Get("Authorization")
		if tokenString == "" {
			utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing token")
			return
		}

		if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
			utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token format")
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
			return globals.JwtSecret, nil
		})
		if err != nil || !token.Valid {
			utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), globals.UserIDKey, claims.AdminID)
		next(w, r.WithContext(ctx), ps)
	}
}

// RequireAdmin verifies the authenticated user is still present in the admins
// collection. A valid token whose account was removed gets a 403, not a 401,
// so the client knows re-login will not help.
func RequireAdmin(next httprouter.Handle) httprouter.Handle {
	return Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		adminID, ok := r.Context().Value(globals.UserIDKey).(string)
		if !ok || adminID == "" {
			utils.RespondWithErrorCode(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing token")
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		count, err := db.AdminsCollection.CountDocuments(ctx, bson.M{"userid": adminID})
		if err != nil {
			utils.RespondWithErrorCode(w, http.StatusInternalServerError, "UPSTREAM_ERROR", "Could not verify account")
			return
		}
		if count == 0 {
			utils.RespondWithErrorCode(w, http.StatusForbidden, "FORBIDDEN", "Not an admin account")
			return
		}
		next(w, r, ps)
	})
}

func ValidateJWT(tokenString string) (*Claims, error) {
	if tokenString == "" || len(tokenString) < 8 {
		return nil, fmt.Errorf("invalid token")
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString[7:], claims, func(token *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("unauthorized: %w", err)
	}
	return claims, nil
}
