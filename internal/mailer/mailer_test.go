package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordResetMessage(t *testing.T) {
	msg := PasswordResetMessage("cook@example.com", "https://shopcook.example", "abc+def")

	assert.Equal(t, "cook@example.com", msg.To)
	assert.NotEmpty(t, msg.Subject)
	assert.Contains(t, msg.Body, "https://shopcook.example/reset-password?token=abc%2Bdef")
}

func TestLogMailer_Send(t *testing.T) {
	err := LogMailer{}.Send(context.Background(), Message{To: "a@b.c", Subject: "s", Body: "b"})
	require.NoError(t, err)
}

func TestSMTPMailer_SendCancelledContext(t *testing.T) {
	m := NewSMTPMailer("localhost", 2525, "", "", "no-reply@example.com")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, Message{To: "a@b.c"})
	assert.ErrorIs(t, err, context.Canceled)
}
