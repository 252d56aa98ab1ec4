// Package workflows доводит до конца создание заказов по одобренным предложениям.
package workflows

import (
	"context"
	"errors"
	"time"

	"github.com/senyabanana/marketplace-service/internal/models"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"
)

const (
	DefaultTaskQueue    = "ORDER_RECONCILE_TASK_QUEUE"
	EnsureOrderActivity = "EnsureOrder"

	notEnsurableErrType = "OrderNotEnsurable"
)

// WorkflowID - один процесс на предложение, повторная постановка не дублирует его.
func WorkflowID(offerID string) string {
	return "ensure-order-" + offerID
}

// EnsureOrderWorkflow создает заказ по одобренному предложению, повторяя попытки с экспоненциальной задержкой.
func EnsureOrderWorkflow(ctx workflow.Context, offerID string) (string, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("order reconciliation started", "offerID", offerID)

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        1 * time.Second,
			BackoffCoefficient:     2.0,
			MaximumAttempts:        10,
			NonRetryableErrorTypes: []string{notEnsurableErrType},
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var orderID string
	if err := workflow.ExecuteActivity(ctx, EnsureOrderActivity, offerID).Get(ctx, &orderID); err != nil {
		logger.Error("order reconciliation failed", "offerID", offerID, "error", err)
		return "", err
	}
	logger.Info("order reconciled", "offerID", offerID, "orderID", orderID)
	return orderID, nil
}

// OrderEnsurer создает заказ по предложению идемпотентно.
type OrderEnsurer interface {
	EnsureOrder(ctx context.Context, offerId string) (*models.Order, error)
}

// Activities - активности Temporal, создающие заказ по одобренному предложению.
type Activities struct {
	Lifecycle OrderEnsurer
}

// EnsureOrder возвращает id заказа. Отсутствующее или неодобренное предложение повторять бессмысленно.
func (a *Activities) EnsureOrder(ctx context.Context, offerID string) (string, error) {
	order, err := a.Lifecycle.EnsureOrder(ctx, offerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrForbidden) {
			return "", temporal.NewNonRetryableApplicationError(err.Error(), notEnsurableErrType, err)
		}
		return "", err
	}
	return order.ID, nil
}

type workflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options client.StartWorkflowOptions, workflow interface{}, args ...interface{}) (client.WorkflowRun, error)
}

// TemporalReconciler ставит EnsureOrderWorkflow в очередь Temporal.
type TemporalReconciler struct {
	Client    workflowStarter
	TaskQueue string
}

func NewTemporalReconciler(c client.Client, taskQueue string) *TemporalReconciler {
	if taskQueue == "" {
		taskQueue = DefaultTaskQueue
	}
	return &TemporalReconciler{Client: c, TaskQueue: taskQueue}
}

// Enqueue запускает согласование. Уже запущенный или завершенный процесс для предложения не считается ошибкой.
func (r *TemporalReconciler) Enqueue(ctx context.Context, offerId string) error {
	opts := client.StartWorkflowOptions{
		ID:                    WorkflowID(offerId),
		TaskQueue:             r.TaskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
	}
	_, err := r.Client.ExecuteWorkflow(ctx, opts, EnsureOrderWorkflow, offerId)
	var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &alreadyStarted) {
		return nil
	}
	return err
}
