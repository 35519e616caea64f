package worker

import (
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"
)

// tokenTTL keeps the registration token valid across reconnect cycles.
const tokenTTL = 24 * time.Hour

// BuildAgentToken mints the JWT the worker registers with. The agent grant
// marks the participant as a service agent rather than a candidate.
func BuildAgentToken(apiKey, apiSecret, identity string) (string, error) {
	if apiKey == "" || apiSecret == "" {
		return "", fmt.Errorf("API key and secret are required")
	}
	if identity == "" {
		return "", fmt.Errorf("identity is required")
	}

	at := auth.NewAccessToken(apiKey, apiSecret)
	grant := &auth.VideoGrant{
		Agent:    true,
		RoomJoin: true,
	}
	at.AddGrant(grant).
		SetIdentity(identity).
		SetValidFor(tokenTTL)

	token, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("failed to build agent token: %w", err)
	}
	return token, nil
}
