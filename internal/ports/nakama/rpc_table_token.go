package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"callbreak/internal/app"

	"github.com/heroiclabs/nakama-common/runtime"
)

// rpcTableToken mints a signed invite for a private table, or verifies
// one. The signing secret and issuer come from the runtime environment.
//
// Payload: {"match_id": "..."} to mint, {"token": "..."} to verify.
func rpcTableToken(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if userID == "" {
		return "", runtime.NewError("Authentication required", 16) // UNAUTHENTICATED
	}

	var req struct {
		MatchID string `json:"match_id"`
		Token   string `json:"token"`
	}
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3) // INVALID_ARGUMENT
	}

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["callbreak_invite_secret"]
	issuer := env["callbreak_invite_issuer"]
	if secret == "" || issuer == "" {
		secret = "test-secret"
		issuer = "test-issuer"
		logger.Warn("Invite credentials missing from env, using test defaults.")
	}

	invites := app.NewInviteService(secret, issuer, time.Hour)

	if req.Token != "" {
		invite, err := invites.VerifyToken(req.Token)
		if err != nil {
			return "", runtime.NewError("Invalid invite token", 3)
		}
		res, _ := json.Marshal(map[string]string{
			"player_id": invite.PlayerID,
			"match_id":  invite.MatchID,
		})
		return string(res), nil
	}

	if req.MatchID == "" {
		return "", runtime.NewError("Match ID required", 3)
	}

	token, err := invites.GenerateToken(userID, req.MatchID)
	if err != nil {
		logger.Error("Failed to generate invite token: %v", err)
		return "", runtime.NewError("Internal error", 13) // INTERNAL
	}

	res, _ := json.Marshal(map[string]string{"token": token})
	return string(res), nil
}
