package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLocalBus(t *testing.T) {
	bus := NewLocalBus()

	var got []string
	bus.Handle("comment", func(ctx context.Context, p *Pack, _ time.Time) {
		got = append(got, string(p.Msg))
	})

	require.NoError(t, bus.Publish(context.Background(), "comment", &Pack{Msg: []byte("a")}))
	require.NoError(t, bus.Publish(context.Background(), "participation", &Pack{Msg: []byte("b")}))
	require.NoError(t, bus.Publish(context.Background(), "comment", &Pack{Msg: []byte("c")}))

	require.Equal(t, []string{"a", "c"}, got)
}
