package workflow

import (
	"luxlife-studio/pkg/did"
	"luxlife-studio/pkg/minio"
	"luxlife-studio/pkg/replicate"
	"luxlife-studio/pkg/taskname"
	"luxlife-studio/pkg/tts"
	"luxlife-studio/services/composer"
	"luxlife-studio/services/credit"
	"luxlife-studio/services/notify"
	"luxlife-studio/services/order"

	"github.com/hibiken/asynq"
	"go.uber.org/fx"
)

var Module = fx.Module("workflow",
	fx.Provide(
		func(s *order.Service) Orders { return s },
		func(s *credit.Service) Ledger { return s },
		func(s *minio.Storage) Storage { return s },
		func(c *composer.Composer) Composer { return c },
		func(n *notify.Notifier) Notifier { return n },
		fx.Annotate(replicate.New, fx.As(new(BackgroundGenerator))),
		fx.Annotate(did.New, fx.As(new(Animator))),
		fx.Annotate(tts.New, fx.As(new(VoiceSynthesizer))),
		New,
	),
	fx.Invoke(RegisterHandlers),
)

func RegisterHandlers(mux *asynq.ServeMux, e *Engine) {
	mux.HandleFunc(taskname.OrderCreated, e.HandleOrderCreated)
	mux.HandleFunc(taskname.OrderQueuedGeneration, e.HandleQueuedGeneration)
}
