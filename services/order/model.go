package order

import (
	"time"

	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending              Status = "pending"
	StatusQueuedValidation     Status = "queued_validation"
	StatusQueuedGeneration     Status = "queued_generation"
	StatusGeneratingBackground Status = "generating_background"
	StatusProcessing           Status = "processing"
	StatusComplete             Status = "complete"
	StatusFailed               Status = "failed"
)

var lifecycle = []Status{
	StatusPending,
	StatusQueuedValidation,
	StatusQueuedGeneration,
	StatusGeneratingBackground,
	StatusProcessing,
	StatusComplete,
}

func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusFailed
}

func (s Status) rank() int {
	for i, v := range lifecycle {
		if v == s {
			return i
		}
	}
	return -1
}

// CanTransition reports whether moving from -> to follows the lifecycle:
// forward by exactly one step, or to failed from any non-terminal state.
func CanTransition(from, to Status) bool {
	if from.Terminal() {
		return false
	}
	if to == StatusFailed {
		return from.rank() >= 0
	}
	fr, tr := from.rank(), to.rank()
	return fr >= 0 && tr == fr+1
}

// NonTerminal lists every state an order can still fail from.
func NonTerminal() []Status {
	return lifecycle[:len(lifecycle)-1]
}

type StageState string

const (
	StagePending  StageState = "pending"
	StageRunning  StageState = "running"
	StageComplete StageState = "complete"
	StageFailed   StageState = "failed"
)

const (
	StrategyAnimationOnly = "animation_only"

	ReasonReplicateInsufficientCredits = "replicate_insufficient_credits"
	ReasonReplicateGenerationFailed    = "replicate_generation_failed"
	ReasonReplicateReturnedImage       = "replicate_returned_image"
	ReasonBackgroundDisabled           = "background_disabled"
)

type Fallback struct {
	Used       bool   `json:"used"`
	ReasonCode string `json:"reasonCode,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Details    string `json:"details,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
}

type Validation struct {
	State     StageState `json:"state"`
	Message   string     `json:"message,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Replicate struct {
	PredictionID string   `json:"predictionId,omitempty"`
	ModelVersion string   `json:"modelVersion,omitempty"`
	Status       string   `json:"status,omitempty"`
	Output       []string `json:"output,omitempty"`
	Error        string   `json:"error,omitempty"`
	GetURL       string   `json:"getUrl,omitempty"`
	CancelURL    string   `json:"cancelUrl,omitempty"`
}

type Voice struct {
	State       StageState `json:"state"`
	Script      string     `json:"script,omitempty"`
	StoragePath string     `json:"storagePath,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

type Animation struct {
	State     StageState `json:"state"`
	TalkID    string     `json:"talkId,omitempty"`
	ResultURL string     `json:"resultUrl,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Generation struct {
	State     StageState `json:"state"`
	Prompt    string     `json:"prompt,omitempty"`
	Replicate Replicate  `json:"replicate"`
	Fallback  Fallback   `json:"fallback"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type Pipeline struct {
	Validation Validation `json:"validation"`
	Generation Generation `json:"generation"`
	Voice      Voice      `json:"voice"`
	Animation  Animation  `json:"animation"`
}

func NewPipeline(now time.Time) Pipeline {
	return Pipeline{
		Validation: Validation{State: StagePending, UpdatedAt: now},
		Generation: Generation{State: StagePending, UpdatedAt: now},
		Voice:      Voice{State: StagePending, UpdatedAt: now},
		Animation:  Animation{State: StagePending, UpdatedAt: now},
	}
}

type Order struct {
	ID         string `gorm:"column:id;primaryKey" json:"id"`
	UserID     string `gorm:"column:user_id;index" json:"uid"`
	Email      string `gorm:"column:email" json:"email,omitempty"`
	SourcePath string `gorm:"column:source_path" json:"sourcePath"`
	SceneID    string `gorm:"column:scene_id" json:"sceneId,omitempty"`
	Scene      string `gorm:"column:scene" json:"scene,omitempty"`
	Tagline    string `gorm:"column:tagline" json:"tagline,omitempty"`
	Prompt     string `gorm:"column:prompt" json:"prompt,omitempty"`

	Status   Status                       `gorm:"column:status;index" json:"status"`
	Pipeline datatypes.JSONType[Pipeline] `gorm:"column:pipeline" json:"pipeline"`

	BackgroundURL string `gorm:"column:background_url" json:"backgroundUrl,omitempty"`
	OutputURL     string `gorm:"column:output_url" json:"outputUrl,omitempty"`
	OutputPath    string `gorm:"column:output_path" json:"outputPath,omitempty"`
	ErrorCode     string `gorm:"column:error_code" json:"errorCode,omitempty"`
	ErrorMessage  string `gorm:"column:error_message" json:"errorMessage,omitempty"`

	Debited  bool `gorm:"column:debited" json:"debited"`
	Refunded bool `gorm:"column:refunded" json:"refunded"`

	CreatedAt   time.Time  `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt   time.Time  `gorm:"column:updated_at" json:"updatedAt"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
}

func (Order) TableName() string { return "orders" }

// SceneLabel is the human scene name, falling back to the scene id.
func (o *Order) SceneLabel() string {
	if o.Scene != "" {
		return o.Scene
	}
	return o.SceneID
}

// Stages returns a copy of the pipeline record for modification; write it
// back with SetStages.
func (o *Order) Stages() Pipeline {
	return o.Pipeline.Data()
}

func (o *Order) SetStages(p Pipeline) {
	o.Pipeline = datatypes.NewJSONType(p)
}
