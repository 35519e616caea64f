package room

import (
	"context"
	"fmt"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go"
)

// Service exposes server-side room operations. The interview agent uses it
// to close the room once the interview is over.
type Service struct {
	client *lksdk.RoomServiceClient
}

// NewService creates a room service client against the LiveKit server API.
func NewService(url, apiKey, apiSecret string) (*Service, error) {
	if url == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if apiSecret == "" {
		return nil, fmt.Errorf("API secret is required")
	}

	return &Service{
		client: lksdk.NewRoomServiceClient(url, apiKey, apiSecret),
	}, nil
}

// DeleteRoom removes the room, disconnecting every remaining participant.
func (s *Service) DeleteRoom(ctx context.Context, roomName string) error {
	if roomName == "" {
		return fmt.Errorf("room name is required")
	}

	_, err := s.client.DeleteRoom(ctx, &livekit.DeleteRoomRequest{
		Room: roomName,
	})
	if err != nil {
		return fmt.Errorf("failed to delete room %s: %w", roomName, err)
	}
	return nil
}
