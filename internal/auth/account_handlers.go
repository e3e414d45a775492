package auth

import (
	"database/sql"
	"net/http"

	"go.uber.org/zap"

	"taskhub-backend/internal/response"
)

func LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// tokens are stateless, the client drops its copy
		response.JSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}

// DeleteAccountHandler removes the user and the analytics events tied to it.
func DeleteAccountHandler(dbx *sql.DB, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid, ok := UserIDFromContext(r.Context())
		if !ok {
			response.Error(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		tx, err := dbx.BeginTx(r.Context(), nil)
		if err != nil {
			logger.Error("begin failed", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "db begin failed")
			return
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(r.Context(), `DELETE FROM analytics_events WHERE user_id = $1`, uid); err != nil {
			logger.Error("delete analytics_events failed", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "delete analytics_events failed")
			return
		}

		res, err := tx.ExecContext(r.Context(), `DELETE FROM users WHERE id = $1`, uid)
		if err != nil {
			logger.Error("delete user failed", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "delete user failed")
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			response.Error(w, http.StatusNotFound, "user not found")
			return
		}

		if err := tx.Commit(); err != nil {
			logger.Error("commit failed", zap.Error(err))
			response.Error(w, http.StatusInternalServerError, "db commit failed")
			return
		}

		response.JSON(w, http.StatusOK, map[string]any{"ok": true})
	}
}
