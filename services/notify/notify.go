// Package notify renders and sends the order status emails.
package notify

import (
	"bytes"
	"context"
	htmltemplate "html/template"
	"text/template"

	"luxlife-studio/pkg/config"
	"luxlife-studio/pkg/resend"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	SubjectComplete         = "🎬 Your LuxLife video is ready"
	SubjectCompleteFallback = "🎬 Your LuxLife video is ready (delivered with fallback)"
	SubjectFailed           = "LuxLife update: your video needs attention"

	strategyAnimationOnly = "animation_only"
)

var (
	completeText = template.Must(template.New("complete.txt").Parse(`Your LuxLife order {{.OrderID}} is complete!
{{- if .Scene}}
Scene: {{.Scene}}
{{- end}}
{{- if .FallbackUsed}}
{{.StrategyText}}
{{- if .FallbackReason}}
Reason: {{.FallbackReason}}
{{- end}}
{{- end}}
Download your video here: {{.VideoURL}}
You can also view all of your orders at {{.DashboardURL}}.

Enjoy your cinematic moment ✨`))

	completeHTML = htmltemplate.Must(htmltemplate.New("complete.html").Parse(`<p>Hey there!</p>
<p>Your LuxLife order <strong>{{.OrderID}}</strong> is complete.</p>
{{- if .Scene}}
<p>Scene: {{.Scene}}</p>
{{- end}}
{{- if .FallbackUsed}}
<p>{{.StrategyText}}{{if .FallbackReason}} Reason: {{.FallbackReason}}{{end}}</p>
{{- end}}
<p><a href="{{.VideoURL}}" target="_blank" rel="noopener">Download your video</a></p>
<p>You can revisit all of your orders anytime in the <a href="{{.DashboardURL}}" target="_blank" rel="noopener">LuxLife dashboard</a>.</p>
<p>Enjoy your cinematic moment ✨</p>`))

	failedText = template.Must(template.New("failed.txt").Parse(`We couldn't finish LuxLife order {{.OrderID}}.
{{if .Message}}Details: {{.Message}}{{else}}No additional error details were provided.{{end}}
{{- if .Refunded}}
Your credit has been refunded automatically.
{{- end}}
When you're ready, visit {{.DashboardURL}} to try again.`))

	failedHTML = htmltemplate.Must(htmltemplate.New("failed.html").Parse(`<p>Hi there,</p>
<p>We hit a snag while generating your LuxLife order <strong>{{.OrderID}}</strong>.</p>
<p>{{if .Message}}Details: {{.Message}}{{else}}No additional error details were provided.{{end}}</p>
{{- if .Refunded}}
<p>Your credit has been refunded automatically.</p>
{{- end}}
<p>When you're ready, <a href="{{.DashboardURL}}" target="_blank" rel="noopener">head back to the dashboard</a> to try again.</p>
<p>If the issue persists, just reply to this email and we'll help right away.</p>`))
)

type Completion struct {
	Email            string
	OrderID          string
	Scene            string
	VideoURL         string
	FallbackUsed     bool
	FallbackReason   string
	FallbackStrategy string
}

type Failure struct {
	Email    string
	OrderID  string
	Message  string
	Refunded bool
}

type Sender interface {
	Send(ctx context.Context, e resend.Email) error
}

type Notifier struct {
	sender       Sender
	dashboardURL string
}

type Params struct {
	fx.In
	Config *config.Config
	Sender Sender
}

var Module = fx.Module("notify",
	fx.Provide(
		fx.Annotate(resend.New, fx.As(new(Sender))),
		New,
	),
)

func New(p Params) *Notifier {
	return &Notifier{sender: p.Sender, dashboardURL: p.Config.App.DashboardURL}
}

func (n *Notifier) RenderCompletion(c Completion) (resend.Email, error) {
	subject := SubjectComplete
	if c.FallbackUsed {
		subject = SubjectCompleteFallback
	}

	strategy := "We delivered your clip using our fallback pipeline."
	if c.FallbackStrategy == strategyAnimationOnly {
		strategy = "We delivered the animated portrait while the background generator was unavailable."
	}

	data := struct {
		Completion
		StrategyText string
		DashboardURL string
	}{c, strategy, n.dashboardURL}

	return render(c.Email, subject, data, completeText, completeHTML)
}

func (n *Notifier) RenderFailure(f Failure) (resend.Email, error) {
	data := struct {
		Failure
		DashboardURL string
	}{f, n.dashboardURL}

	return render(f.Email, SubjectFailed, data, failedText, failedHTML)
}

// Completed emails the download link. Delivery errors are logged only.
func (n *Notifier) Completed(ctx context.Context, c Completion) {
	if c.Email == "" || c.VideoURL == "" {
		return
	}
	n.send(ctx, c.OrderID, "completion", func() (resend.Email, error) { return n.RenderCompletion(c) })
}

// Failed emails the failure reason. Delivery errors are logged only.
func (n *Notifier) Failed(ctx context.Context, f Failure) {
	if f.Email == "" {
		return
	}
	n.send(ctx, f.OrderID, "failure", func() (resend.Email, error) { return n.RenderFailure(f) })
}

func (n *Notifier) send(ctx context.Context, orderID, kind string, build func() (resend.Email, error)) {
	log := zap.L().With(zap.String("order_id", orderID), zap.String("kind", kind))

	email, err := build()
	if err != nil {
		log.Error("failed to render email", zap.Error(err))
		return
	}

	if err := n.sender.Send(ctx, email); err != nil {
		log.Warn("failed to send email", zap.Error(err))
	}
}

func render(to, subject string, data any, text *template.Template, html *htmltemplate.Template) (resend.Email, error) {
	var tb, hb bytes.Buffer
	if err := text.Execute(&tb, data); err != nil {
		return resend.Email{}, err
	}
	if err := html.Execute(&hb, data); err != nil {
		return resend.Email{}, err
	}
	return resend.Email{To: to, Subject: subject, Text: tb.String(), HTML: hb.String()}, nil
}
