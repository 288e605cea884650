package featureflags

import (
	"context"

	"luxlife-studio/pkg/config"

	"github.com/Flagsmith/flagsmith-go-client/v2"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// BackgroundGeneration gates the Replicate background stage. When off,
// orders are delivered as animation only.
const BackgroundGeneration = "background_generation"

var Module = fx.Module("featureflags", fx.Provide(ProvideFeatureFlag))

type FeatureFlag interface {
	// Enabled reports whether feature is on for identifier. Flags that are
	// unknown or cannot be fetched count as enabled.
	Enabled(ctx context.Context, feature, identifier string) bool
}

type featureflag struct {
	client *flagsmith.Client
}

type FeatureParams struct {
	fx.In
	Config *config.Config
}

func ProvideFeatureFlag(p FeatureParams) FeatureFlag {
	if p.Config.Flagsmith.ApiKey == "" {
		return &featureflag{}
	}

	opts := []flagsmith.Option{flagsmith.WithAnalytics()}
	if p.Config.Flagsmith.Addr != "" {
		opts = append(opts, flagsmith.WithBaseURL(p.Config.Flagsmith.Addr))
	}

	return &featureflag{
		client: flagsmith.NewClient(p.Config.Flagsmith.ApiKey, opts...),
	}
}

func (s *featureflag) Enabled(ctx context.Context, feature, identifier string) bool {
	if s.client == nil {
		return true
	}

	var (
		flags flagsmith.Flags
		err   error
	)
	if identifier != "" {
		flags, err = s.client.GetIdentityFlags(identifier, nil)
	} else {
		flags, err = s.client.GetEnvironmentFlags()
	}
	if err != nil {
		zap.L().Warn("failed to fetch feature flags", zap.String("feature", feature), zap.Error(err))
		return true
	}

	enabled, err := flags.IsFeatureEnabled(feature)
	if err != nil {
		return true
	}
	return enabled
}
