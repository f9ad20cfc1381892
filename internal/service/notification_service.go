package service

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/talatrivia-api/internal/domain/entity"
)

// AssignmentNotifier сообщает игрокам о назначенной тривии
type AssignmentNotifier interface {
	NotifyAssigned(ctx context.Context, trivia *entity.Trivia, users []entity.User) error
}

// NoopNotifier используется, когда отправка писем отключена
type NoopNotifier struct {
	log logrus.FieldLogger
}

// NewNoopNotifier создает notifier, который только пишет в лог
func NewNoopNotifier(log logrus.FieldLogger) *NoopNotifier {
	return &NoopNotifier{log: log.WithField("component", "notifier")}
}

func (n *NoopNotifier) NotifyAssigned(ctx context.Context, trivia *entity.Trivia, users []entity.User) error {
	n.log.WithFields(logrus.Fields{
		"trivia_id":  trivia.ID,
		"recipients": len(users),
	}).Debug("Email disabled, skipping assignment notifications")
	return nil
}

// emailSender абстрагирует resend.EmailsSvc для тестов
type emailSender interface {
	SendWithOptions(ctx context.Context, params *resend.SendEmailRequest, options *resend.SendEmailOptions) (*resend.SendEmailResponse, error)
}

// ResendNotifier отправляет приглашения через Resend REST API
type ResendNotifier struct {
	from   string
	appURL string
	sender emailSender
	log    logrus.FieldLogger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewResendNotifier создает notifier на базе Resend
func NewResendNotifier(apiKey, from, appURL string, log logrus.FieldLogger) (*ResendNotifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("resend api key is required")
	}
	if from == "" {
		return nil, fmt.Errorf("email from is required")
	}
	client := resend.NewClient(apiKey)
	return newResendNotifier(client.Emails, from, appURL, log), nil
}

func newResendNotifier(sender emailSender, from, appURL string, log logrus.FieldLogger) *ResendNotifier {
	return &ResendNotifier{
		from:   from,
		appURL: strings.TrimRight(appURL, "/"),
		sender: sender,
		log:    log.WithField("component", "notifier"),
		sleep:  sleepCtx,
	}
}

// NotifyAssigned отправляет по одному письму каждому игроку. Ошибка по одному
// адресату не прерывает отправку остальным; возвращается первая ошибка.
func (n *ResendNotifier) NotifyAssigned(ctx context.Context, trivia *entity.Trivia, users []entity.User) error {
	var firstErr error
	for _, u := range users {
		key := fmt.Sprintf("trivia-%d-user-%d", trivia.ID, u.ID)
		if err := n.send(ctx, n.invitation(trivia, u), key); err != nil {
			n.log.WithError(err).WithFields(logrus.Fields{
				"trivia_id": trivia.ID,
				"user_id":   u.ID,
			}).Warn("Failed to send assignment notification")
			if firstErr == nil {
				firstErr = err
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
		}
	}
	return firstErr
}

func (n *ResendNotifier) invitation(trivia *entity.Trivia, u entity.User) *resend.SendEmailRequest {
	link := n.appURL + "/game/my-trivias"
	return &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{u.Email},
		Subject: fmt.Sprintf("New trivia assigned: %s", trivia.Name),
		Text: fmt.Sprintf("Hi %s, the trivia %q has been assigned to you. Play it at %s",
			u.FullName, trivia.Name, link),
		Html: fmt.Sprintf("<p>Hi %s,</p><p>The trivia <strong>%s</strong> has been assigned to you.</p><p><a href=\"%s\">Play now</a></p>",
			html.EscapeString(u.FullName), html.EscapeString(trivia.Name), html.EscapeString(link)),
	}
}

func (n *ResendNotifier) send(ctx context.Context, params *resend.SendEmailRequest, idempotencyKey string) error {
	options := &resend.SendEmailOptions{IdempotencyKey: idempotencyKey}

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		_, err := n.sender.SendWithOptions(ctx, params, options)
		if err == nil {
			return nil
		}
		lastErr = err

		wait, ok := resendRetryDelay(err, attempt)
		if !ok {
			return fmt.Errorf("resend send failed: %w", err)
		}
		if err := n.sleep(ctx, wait); err != nil {
			return err
		}
	}
	return fmt.Errorf("resend send failed after retries: %w", lastErr)
}

func resendRetryDelay(err error, attempt int) (time.Duration, bool) {
	var rateLimitErr *resend.RateLimitError
	if errors.As(err, &rateLimitErr) {
		if seconds, convErr := strconv.Atoi(strings.TrimSpace(rateLimitErr.RetryAfter)); convErr == nil && seconds > 0 {
			if seconds > 30 {
				seconds = 30
			}
			return time.Duration(seconds) * time.Second, true
		}
		return time.Duration(attempt+1) * time.Second, true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}

	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "timeout") || strings.Contains(msg, "temporar") {
		return time.Duration(attempt+1) * 500 * time.Millisecond, true
	}
	return 0, false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
