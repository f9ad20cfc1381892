package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// fakeSender отвечает заранее заданными ошибками по порядку вызовов
type fakeSender struct {
	mu       sync.Mutex
	failures map[string][]error
	requests []*resend.SendEmailRequest
	keys     []string
}

func (f *fakeSender) SendWithOptions(ctx context.Context, params *resend.SendEmailRequest, options *resend.SendEmailOptions) (*resend.SendEmailResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, params)
	f.keys = append(f.keys, options.IdempotencyKey)

	to := params.To[0]
	if queue := f.failures[to]; len(queue) > 0 {
		f.failures[to] = queue[1:]
		return nil, queue[0]
	}
	return &resend.SendEmailResponse{Id: "email-id"}, nil
}

func newTestNotifier(sender emailSender) (*ResendNotifier, *[]time.Duration) {
	log, _ := newTestLogger()
	n := newResendNotifier(sender, "TalaTrivia <noreply@talana.com>", "https://trivia.talana.com/", log)
	var waits []time.Duration
	n.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return n, &waits
}

var notifyTrivia = &entity.Trivia{ID: 5, Name: "Mix <Semanal>"}

func TestNotifyAssigned_SendsOneEmailPerUser(t *testing.T) {
	sender := &fakeSender{}
	n, _ := newTestNotifier(sender)
	users := []entity.User{{ID: 2, FullName: "Ana", Email: "ana@talana.com"}, {ID: 3, FullName: "Beto", Email: "beto@talana.com"}}

	require.NoError(t, n.NotifyAssigned(context.Background(), notifyTrivia, users))

	require.Len(t, sender.requests, 2)
	assert.Equal(t, []string{"trivia-5-user-2", "trivia-5-user-3"}, sender.keys)
	assert.Equal(t, "New trivia assigned: Mix <Semanal>", sender.requests[0].Subject)
	assert.Contains(t, sender.requests[0].Html, "Mix &lt;Semanal&gt;")
	assert.Contains(t, sender.requests[0].Text, "https://trivia.talana.com/game/my-trivias")
}

func TestNotifyAssigned_RetriesRateLimit(t *testing.T) {
	sender := &fakeSender{failures: map[string][]error{
		"ana@talana.com": {&resend.RateLimitError{Message: "slow down", RetryAfter: "2"}},
	}}
	n, waits := newTestNotifier(sender)

	err := n.NotifyAssigned(context.Background(), notifyTrivia, []entity.User{{ID: 2, Email: "ana@talana.com"}})

	require.NoError(t, err)
	assert.Len(t, sender.requests, 2)
	assert.Equal(t, []time.Duration{2 * time.Second}, *waits)
}

func TestNotifyAssigned_PermanentFailureDoesNotStopOthers(t *testing.T) {
	sender := &fakeSender{failures: map[string][]error{
		"ana@talana.com": {errors.New("invalid recipient")},
	}}
	n, waits := newTestNotifier(sender)
	users := []entity.User{{ID: 2, Email: "ana@talana.com"}, {ID: 3, Email: "beto@talana.com"}}

	err := n.NotifyAssigned(context.Background(), notifyTrivia, users)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid recipient")
	assert.Len(t, sender.requests, 2)
	assert.Empty(t, *waits)
}

func TestNewResendNotifier_RequiresSettings(t *testing.T) {
	log, _ := newTestLogger()

	_, err := NewResendNotifier("", "from@talana.com", "", log)
	assert.Error(t, err)

	_, err = NewResendNotifier("re_key", "", "", log)
	assert.Error(t, err)
}

func TestNoopNotifier(t *testing.T) {
	log, _ := newTestLogger()
	assert.NoError(t, NewNoopNotifier(log).NotifyAssigned(context.Background(), notifyTrivia, nil))
}
