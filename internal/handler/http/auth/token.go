package auth

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"commerce-bridge/internal/handler/http/requestid"
)

const tokenTTL = time.Hour

type tokenRequest struct {
	Account string `json:"account"`
	Secret  string `json:"secret"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// TokenHandler authenticates the service account and issues a JWT
// signed with JWT_SECRET. The token carries the account name as the
// subject and a "service" role claim.
func TokenHandler(provider *Provider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := slog.With(slog.String("request_id", requestid.FromContext(r.Context())))

		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Warn("authentication failed",
				slog.String("reason", "invalid_request"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			RecordAuthRequest("failure")
			http.Error(w, "invalid request", http.StatusBadRequest)
			return
		}

		if err := provider.Validate(Credentials{Account: req.Account, Secret: req.Secret}); err != nil {
			logger.Warn("authentication failed",
				slog.String("reason", "invalid_credentials"),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()))
			RecordAuthRequest("failure")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub":  req.Account,
			"role": RoleService,
			"exp":  time.Now().Add(tokenTTL).Unix(),
		})
		signed, err := token.SignedString([]byte(os.Getenv("JWT_SECRET")))
		if err != nil {
			logger.Error("token generation failed", slog.String("error", err.Error()))
			RecordAuthRequest("failure")
			http.Error(w, "token generation failed", http.StatusInternalServerError)
			return
		}

		logger.Info("authentication successful",
			slog.String("account", req.Account),
			slog.Int64("duration_ms", time.Since(start).Milliseconds()))
		RecordAuthRequest("success")

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(tokenResponse{Token: signed}); err != nil {
			logger.Error("failed to encode token response", slog.String("error", err.Error()))
		}
	}
}
