package task

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"luxlife-studio/pkg/taskname"
)

// OrderPayload is the change notification for one order. BeforeStatus and
// AfterStatus mirror the document snapshots of an update trigger.
type OrderPayload struct {
	OrderID      string `json:"order_id"`
	BeforeStatus string `json:"before_status,omitempty"`
	AfterStatus  string `json:"after_status,omitempty"`
}

func NewOrderCreatedTask(orderID string) (*asynq.Task, []asynq.Option, error) {
	return newOrderTask(taskname.OrderCreated, OrderPayload{OrderID: orderID}, 5*time.Minute)
}

func NewOrderQueuedGenerationTask(orderID, before, after string) (*asynq.Task, []asynq.Option, error) {
	return newOrderTask(taskname.OrderQueuedGeneration, OrderPayload{
		OrderID:      orderID,
		BeforeStatus: before,
		AfterStatus:  after,
	}, 30*time.Minute)
}

func newOrderTask(typ string, p OrderPayload, timeout time.Duration) (*asynq.Task, []asynq.Option, error) {
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, nil, err
	}

	opts := []asynq.Option{
		asynq.TaskID(fmt.Sprintf("%s:%s", typ, p.OrderID)),
		asynq.Queue(taskname.QueueCritical),
		asynq.MaxRetry(3),
		asynq.Timeout(timeout),
	}
	return asynq.NewTask(typ, payload), opts, nil
}

func DecodeOrderPayload(t *asynq.Task) (OrderPayload, error) {
	var p OrderPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("decode %s payload: %w: %w", t.Type(), err, asynq.SkipRetry)
	}
	if p.OrderID == "" {
		return p, fmt.Errorf("%s payload missing order_id: %w", t.Type(), asynq.SkipRetry)
	}
	return p, nil
}
