package e2e

import (
	"context"
	"fmt"
	"net/http"
	"roomchat/client"
	"roomchat/domain/event"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type ChatScenarioSuite struct {
	BaseChatSuite
}

func TestChatScenarioSuite(t *testing.T) {
	suite.Run(t, new(ChatScenarioSuite))
}

func (s *ChatScenarioSuite) TestScenario_Global_Message_Then_History() {
	text := fmt.Sprintf("e2e %d", time.Now().UnixNano())

	s.WithClient("Two users talk in global", func(ctx context.Context, alice *client.Client) {
		bob := s.Dial(ctx)
		s.Require().NoError(alice.Join("e2e-alice"))
		_, err := alice.WaitFor(ctx, event.RoomHistory)
		s.Require().NoError(err)
		s.Require().NoError(bob.Join("e2e-bob"))
		_, err = bob.WaitFor(ctx, event.RoomHistory)
		s.Require().NoError(err)

		s.Require().NoError(alice.SendLegacy("e2e-alice", text))

		frame, err := bob.WaitFor(ctx, event.LegacyMessage)
		s.Require().NoError(err)
		payload, err := client.Decode[event.LegacyMessagePayload](frame)
		s.Require().NoError(err)
		s.Equal(text, payload.Message)
	})

	s.Run("The message is served by the history API", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		var messages []event.APIMessage
		s.Equal(http.StatusOK, s.GetJSON(ctx, "/api/messages", &messages))
		s.Require().NotEmpty(messages)
		s.Equal(text, messages[len(messages)-1].Message)

		var older []event.APIMessage
		last := messages[len(messages)-1]
		s.Equal(http.StatusOK, s.GetJSON(ctx, "/api/messages/older?before="+last.Timestamp, &older))
		for _, m := range older {
			s.NotEqual(last.ID, m.ID)
		}
	})
}

func (s *ChatScenarioSuite) TestScenario_Missing_Cursor() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var res map[string]string
	s.Equal(http.StatusBadRequest, s.GetJSON(ctx, "/api/messages/older", &res))
	s.Equal("Missing ?before timestamp", res["error"])
}

func (s *ChatScenarioSuite) TestScenario_Health() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var res map[string]any
	s.Equal(http.StatusOK, s.GetJSON(ctx, "/health", &res))
	s.Equal("ok", res["status"])

	if s.Config.GrpcAddr == "" {
		return
	}
	conn := s.GrpcConn(s.T(), "gRPC health", s.Config.GrpcAddr)
	defer conn.Close()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	s.Require().NoError(err)
	s.Equal(healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
