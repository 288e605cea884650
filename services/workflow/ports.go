package workflow

import (
	"context"
	"time"

	"luxlife-studio/pkg/did"
	"luxlife-studio/pkg/minio"
	"luxlife-studio/pkg/replicate"
	"luxlife-studio/services/composer"
	"luxlife-studio/services/notify"
	"luxlife-studio/services/order"
)

//go:generate mockgen -source=ports.go -destination=mocks/mock_ports.go -package=mocks

type Orders interface {
	Get(ctx context.Context, id string) (*order.Order, error)
	Transition(ctx context.Context, id string, from []order.Status, to order.Status, fn func(*order.Order)) (*order.Order, error)
	Update(ctx context.Context, id string, fn func(*order.Order)) (*order.Order, error)
	PublishQueuedGeneration(ctx context.Context, id string, before order.Status) error
}

type Ledger interface {
	Debit(ctx context.Context, userID, referenceID string) error
	Credit(ctx context.Context, userID, referenceID string) bool
}

type Storage interface {
	Exists(ctx context.Context, path string) (bool, error)
	Upload(ctx context.Context, localPath, path, contentType string) (*minio.Uploaded, error)
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

type BackgroundGenerator interface {
	Submit(ctx context.Context, prompt string) (*replicate.Prediction, error)
	Poll(ctx context.Context, p *replicate.Prediction) (*replicate.Prediction, error)
	ModelVersion() string
}

type VoiceSynthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Animator interface {
	Submit(ctx context.Context, imageURL, audioURL string) (*did.Talk, error)
	Poll(ctx context.Context, talk *did.Talk) (*did.Talk, error)
}

type Composer interface {
	NewScratch(orderID string) (*composer.Scratch, error)
	Compose(ctx context.Context, scratch *composer.Scratch, backgroundURL, animationURL, audioPath string) (string, error)
}

type Notifier interface {
	Completed(ctx context.Context, c notify.Completion)
	Failed(ctx context.Context, f notify.Failure)
}
