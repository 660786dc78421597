package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"roomchat/client"
	"strings"
	"testing"
	"time"

	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
)

// BaseChatSuite talks to a running server. Scenarios are skipped when no
// address is configured.
type BaseChatSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseChatSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.WSURL == "" || s.Config.HTTPURL == "" {
		s.T().Skip("CHAT_WS_URL and CHAT_HTTP_URL are not set")
	}
}

func (s *BaseChatSuite) header(t *testing.T, name string) {
	h := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		h = color.New(color.BgBlack, color.FgGreen).Render(h)
	}
	t.Log(h)
}

// GrpcConn initializes a gRPC connection logging every unary call.
func (s *BaseChatSuite) GrpcConn(t *testing.T, name string, addr string) *grpc.ClientConn {
	s.header(t, name)

	marshaler := protojson.MarshalOptions{
		UseProtoNames:   true,
		Multiline:       true,
		EmitUnpopulated: true,
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			start := time.Now()
			err := invoker(ctx, method, req, reply, cc, opts...)

			logBuilder := strings.Builder{}
			fmt.Fprintf(&logBuilder, "GRPC %s [%s] in %v", method, status.Code(err), time.Since(start))
			if s.Config.DebugJSON {
				fmt.Fprintln(&logBuilder, "\nREQUEST:")
				fmt.Fprintln(&logBuilder, marshaler.Format(req.(proto.Message)))
				if err != nil {
					fmt.Fprintln(&logBuilder, "ERROR:", err)
				} else {
					fmt.Fprintln(&logBuilder, "RESPONSE:")
					fmt.Fprintln(&logBuilder, marshaler.Format(reply.(proto.Message)))
				}
			}
			t.Log(logBuilder.String())
			return err
		}),
	)
	s.Require().NoError(err, "Failed to connect to gRPC server at "+addr)
	return conn
}

// WithClient runs a step with a fresh websocket connection.
func (s *BaseChatSuite) WithClient(name string, fn func(ctx context.Context, c *client.Client)) {
	s.Run(name, func() {
		t := s.T()
		s.header(t, name)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		c, err := client.Dial(ctx, s.Config.WSURL)
		s.Require().NoError(err)
		defer c.Close()
		fn(ctx, c)
	})
}

// Dial opens an extra connection closed at the end of the test.
func (s *BaseChatSuite) Dial(ctx context.Context) *client.Client {
	c, err := client.Dial(ctx, s.Config.WSURL)
	s.Require().NoError(err)
	s.T().Cleanup(func() { _ = c.Close() })
	return c
}

// GetJSON decodes the body of a GET on the server into target.
func (s *BaseChatSuite) GetJSON(ctx context.Context, path string, target any) int {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(s.Config.HTTPURL, "/")+path, nil)
	s.Require().NoError(err)
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	if s.Config.DebugJSON {
		s.T().Logf("GET %s [%d]\n%s", path, resp.StatusCode, body)
	}
	if target != nil {
		s.Require().NoError(json.Unmarshal(body, target))
	}
	return resp.StatusCode
}
