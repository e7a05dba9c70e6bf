package interceptor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestUnaryPanicHandler(t *testing.T) {
	info := &grpc.UnaryServerInfo{FullMethod: "/test/Method"}

	res, err := unaryPanicHandler(
		context.Background(), nil, info,
		func(context.Context, interface{}) (interface{}, error) {
			panic("boom")
		},
	)
	require.Nil(t, res)
	require.Equal(t, codes.Internal, status.Code(err))

	res, err = unaryPanicHandler(
		context.Background(), nil, info,
		func(context.Context, interface{}) (interface{}, error) {
			return "ok", nil
		},
	)
	require.NoError(t, err)
	require.Equal(t, "ok", res)
}
