package contact

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSimulatedSender(t *testing.T) {
	s := SimulatedSender{Delay: time.Millisecond}
	assert.NoError(t, s.Send(context.Background(), Message{}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := SimulatedSender{Delay: time.Hour}
	assert.ErrorIs(t, slow.Send(ctx, Message{}), context.Canceled)
}

func TestMultiSender_StopsAtFirstError(t *testing.T) {
	boom := errors.New("boom")
	var order []string
	ms := MultiSender{
		SenderFunc(func(context.Context, Message) error { order = append(order, "store"); return nil }),
		SenderFunc(func(context.Context, Message) error { order = append(order, "mail"); return boom }),
		SenderFunc(func(context.Context, Message) error { order = append(order, "never"); return nil }),
	}

	err := ms.Send(context.Background(), Message{})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"store", "mail"}, order)
}
