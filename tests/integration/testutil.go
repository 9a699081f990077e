//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/dblumenau/djforge-go/internal/api"
	"github.com/dblumenau/djforge-go/internal/auth"
	"github.com/dblumenau/djforge-go/internal/conversation"
	"github.com/dblumenau/djforge-go/internal/engine"
	"github.com/dblumenau/djforge-go/internal/player"
)

// scriptedProducer returns canned interpretations keyed by command, so the
// full HTTP flow can run without a live model.
type scriptedProducer struct {
	responses map[string]map[string]any
}

func (p *scriptedProducer) Interpret(_ context.Context, command, _ string) (map[string]any, error) {
	if resp, ok := p.responses[command]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("no scripted response for %q", command)
}

type TestEnv struct {
	Server      *httptest.Server
	RedisClient *redis.Client
	Store       *conversation.RedisStore
	JWT         *auth.JWTManager
	Producer    *scriptedProducer
}

func SetupTestEnv(t *testing.T) *TestEnv {
	t.Helper()
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("starting redis container: %v", err)
	}
	t.Cleanup(func() { redisContainer.Terminate(ctx) })

	redisHost, _ := redisContainer.Host(ctx)
	redisPort, _ := redisContainer.MappedPort(ctx, "6379")

	redisClient := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	t.Cleanup(func() { redisClient.Close() })

	store := conversation.NewRedisStore(redisClient, conversation.DefaultConfig())
	producer := &scriptedProducer{responses: map[string]map[string]any{}}
	eng := engine.New(store, producer, nil)
	engineHandler := engine.NewHandler(eng, player.NewNoop())

	jwtManager := auth.NewJWTManager("test-access-secret-32-chars-long!!", 15*time.Minute)

	router := api.NewRouter(redisClient, nil, nil, api.RouterConfig{}, api.HandlerSet{
		ProcessCommand: engineHandler.ProcessCommand,
		RecordOutcome:  engineHandler.RecordOutcome,
		GetHistory:     engineHandler.GetHistory,
		ClearHistory:   engineHandler.ClearHistory,
		GetDialogState: engineHandler.GetDialogState,
		AuthMiddleware: auth.Middleware(jwtManager),
	})

	server := httptest.NewServer(router)
	t.Cleanup(func() { server.Close() })

	return &TestEnv{
		Server:      server,
		RedisClient: redisClient,
		Store:       store,
		JWT:         jwtManager,
		Producer:    producer,
	}
}

func TokenFor(t *testing.T, env *TestEnv, userID string) string {
	t.Helper()
	token, err := env.JWT.GenerateAccessToken(userID)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return token
}

func DoRequest(t *testing.T, env *TestEnv, method, path string, body any, token string) *http.Response {
	t.Helper()
	var bodyReader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		bodyReader = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, env.Server.URL+path, bodyReader)
	if err != nil {
		t.Fatalf("creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("doing request: %v", err)
	}
	return resp
}

func ParseResponse(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	return result
}
