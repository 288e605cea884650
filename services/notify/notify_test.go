package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/resend"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

const videoURL = "https://media.luxlife.test/media/videos/u1/1742/final.mp4?token=tok-1"

type fakeSender struct {
	sent []resend.Email
	err  error
}

func (f *fakeSender) Send(_ context.Context, e resend.Email) error {
	f.sent = append(f.sent, e)
	return f.err
}

func newTestNotifier(sender Sender) *Notifier {
	cfg := &config.Config{}
	cfg.ApplyDefaults()
	return New(Params{Config: cfg, Sender: sender})
}

func assertGolden(t *testing.T, name string, got string) {
	t.Helper()
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(got))
}

func TestRenderCompletion(t *testing.T) {
	n := newTestNotifier(&fakeSender{})

	email, err := n.RenderCompletion(Completion{
		Email:    "ava@example.com",
		OrderID:  "1742",
		Scene:    "Monaco Yacht Deck",
		VideoURL: videoURL,
	})
	require.NoError(t, err)
	require.Equal(t, SubjectComplete, email.Subject)
	require.Equal(t, "ava@example.com", email.To)

	assertGolden(t, "completion.txt", email.Text)
	assertGolden(t, "completion.html", email.HTML)
}

func TestRenderCompletionWithFallback(t *testing.T) {
	n := newTestNotifier(&fakeSender{})

	email, err := n.RenderCompletion(Completion{
		Email:            "ava@example.com",
		OrderID:          "1742",
		Scene:            "Monaco Yacht Deck",
		VideoURL:         videoURL,
		FallbackUsed:     true,
		FallbackReason:   "Background generator returned a still image.",
		FallbackStrategy: "animation_only",
	})
	require.NoError(t, err)
	require.Equal(t, SubjectCompleteFallback, email.Subject)

	assertGolden(t, "completion_fallback.txt", email.Text)
	assertGolden(t, "completion_fallback.html", email.HTML)
}

func TestRenderFailure(t *testing.T) {
	n := newTestNotifier(&fakeSender{})

	email, err := n.RenderFailure(Failure{
		Email:    "ava@example.com",
		OrderID:  "1742",
		Message:  "Portrait upload was missing. Please retry the upload.",
		Refunded: true,
	})
	require.NoError(t, err)
	require.Equal(t, SubjectFailed, email.Subject)

	assertGolden(t, "failure.txt", email.Text)
	assertGolden(t, "failure.html", email.HTML)

	email, err = n.RenderFailure(Failure{Email: "ava@example.com", OrderID: "1742"})
	require.NoError(t, err)
	assertGolden(t, "failure_no_refund.txt", email.Text)
}

func TestNotifierSwallowsSendErrors(t *testing.T) {
	sender := &fakeSender{err: errors.New("resend down")}
	n := newTestNotifier(sender)

	n.Failed(context.Background(), Failure{Email: "ava@example.com", OrderID: "1"})
	n.Completed(context.Background(), Completion{Email: "ava@example.com", OrderID: "1", VideoURL: videoURL})

	require.Len(t, sender.sent, 2)
}

func TestNotifierSkipsWithoutRecipient(t *testing.T) {
	sender := &fakeSender{}
	n := newTestNotifier(sender)

	n.Failed(context.Background(), Failure{OrderID: "1"})
	n.Completed(context.Background(), Completion{Email: "ava@example.com", OrderID: "1"})

	require.Empty(t, sender.sent)
}
