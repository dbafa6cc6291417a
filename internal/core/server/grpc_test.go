package server

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/solatis/weavereplace/internal/core/api"
	"github.com/solatis/weavereplace/internal/core/config"
	"github.com/solatis/weavereplace/internal/weave"
)

func newTestServer(t *testing.T, logger *zap.Logger) (*GRPCServer, *grpc.ClientConn) {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Metrics.Addr = ""

	p, err := weave.New()
	require.NoError(t, err)
	svc, err := api.NewWeaveService(p, nil, &cfg.Server, logger)
	require.NoError(t, err)

	srv, err := NewGRPCServer(cfg, svc, nil, logger)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go srv.Serve(lis)
	t.Cleanup(func() { srv.Shutdown(context.Background()) })

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return srv, conn
}

func TestNewGRPCServerRejectsNil(t *testing.T) {
	p, err := weave.New()
	require.NoError(t, err)
	cfg := config.DefaultConfig()
	svc, err := api.NewWeaveService(p, nil, &cfg.Server, nil)
	require.NoError(t, err)

	_, err = NewGRPCServer(nil, svc, nil, nil)
	assert.Error(t, err)
	_, err = NewGRPCServer(cfg, nil, nil, nil)
	assert.Error(t, err)
}

func TestServeResolveAndHealth(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	srv, conn := newTestServer(t, zap.New(core))

	client := api.NewWeaveClient(conn)
	req, err := structpb.NewStruct(map[string]any{
		"template": "Hello {{name}}",
		"context":  map[string]any{"name": "Ann"},
	})
	require.NoError(t, err)

	resp, err := client.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Hello Ann", resp.AsMap()["result"])

	_, err = client.Resolve(context.Background(), &structpb.Struct{})
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	health := grpc_health_v1.NewHealthClient(conn)
	hresp, err := health.Check(context.Background(), &grpc_health_v1.HealthCheckRequest{Service: api.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, grpc_health_v1.HealthCheckResponse_SERVING, hresp.Status)

	method := api.MethodResolve
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.requestsTotal.WithLabelValues(method, codes.OK.String())))
	assert.Equal(t, 1.0, testutil.ToFloat64(srv.metrics.requestsTotal.WithLabelValues(method, codes.InvalidArgument.String())))

	byMethod := logs.FilterField(zap.String("method", method))
	assert.Equal(t, 1, byMethod.FilterMessage("request served").Len())
	assert.Equal(t, 1, byMethod.FilterMessage("request failed").Len())
}

func TestTimeoutInterceptor(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test/Method"}

	var remaining time.Duration
	handler := func(ctx context.Context, req any) (any, error) {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		remaining = time.Until(deadline)
		return nil, nil
	}

	_, err := timeoutInterceptor(time.Minute)(context.Background(), nil, info, handler)
	require.NoError(t, err)
	assert.InDelta(t, time.Minute.Seconds(), remaining.Seconds(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = timeoutInterceptor(time.Minute)(ctx, nil, info, handler)
	require.NoError(t, err)
	assert.LessOrEqual(t, remaining, time.Second)
}

func TestRecoveryInterceptor(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	info := &grpc.UnaryServerInfo{FullMethod: "/test/Panics"}

	resp, err := recoveryInterceptor(zap.New(core))(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		panic("boom")
	})

	assert.Nil(t, resp)
	assert.Equal(t, codes.Internal, status.Code(err))
	assert.Equal(t, 1, logs.FilterMessage("handler panicked").FilterField(zap.String("method", "/test/Panics")).Len())
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics(nil)
	info := &grpc.UnaryServerInfo{FullMethod: "/weavereplace.v1.Weave/Match"}
	_, err := m.UnaryInterceptor()(context.Background(), nil, info, func(ctx context.Context, req any) (any, error) {
		return nil, status.Error(codes.NotFound, "missing")
	})
	require.Error(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(body, `weavereplace_grpc_requests_total{code="NotFound",method="/weavereplace.v1.Weave/Match"} 1`), body)
	assert.Contains(t, body, "weavereplace_grpc_request_duration_seconds_bucket")
}
