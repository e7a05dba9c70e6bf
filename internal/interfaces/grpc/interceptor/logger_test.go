package interceptor

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryLogger(t *testing.T) {
	hook := test.NewGlobal()
	prevLevel := log.GetLevel()
	log.SetLevel(log.DebugLevel)
	t.Cleanup(func() {
		log.SetLevel(prevLevel)
		hook.Reset()
	})

	info := &grpc.UnaryServerInfo{FullMethod: "/grpc.health.v1.Health/Check"}

	_, err := unaryLogger(context.Background(), nil, info,
		func(context.Context, interface{}) (interface{}, error) {
			return "ok", nil
		},
	)
	require.NoError(t, err)
	entry := hook.LastEntry()
	require.NotNil(t, entry)
	require.Equal(t, log.DebugLevel, entry.Level)
	require.Equal(t, info.FullMethod, entry.Data["method"])
	require.Equal(t, codes.OK.String(), entry.Data["code"])

	_, err = unaryLogger(context.Background(), nil, info,
		func(context.Context, interface{}) (interface{}, error) {
			return nil, status.Error(codes.Unavailable, "draining")
		},
	)
	require.Error(t, err)
	entry = hook.LastEntry()
	require.Equal(t, log.WarnLevel, entry.Level)
	require.Equal(t, codes.Unavailable.String(), entry.Data["code"])
}
