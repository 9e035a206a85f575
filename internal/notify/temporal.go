package notify

import (
	"context"
	"errors"
	"time"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"

	"marmitaria/internal/catalog"
	"marmitaria/internal/models"
)

// Activities are the side effects of NotifyOrderWorkflow.
type Activities struct {
	Sender  Sender
	Printer Printer
}

func (a *Activities) SendOrderMessage(ctx context.Context, r Receipt) error {
	err := a.Sender.Send(ctx, r.Phone, r.Text)
	var sendErr *SendError
	if errors.As(err, &sendErr) && sendErr.Permanent() {
		return temporal.NewNonRetryableApplicationError(sendErr.Error(), "SendError", sendErr)
	}
	return err
}

func (a *Activities) PrintReceipt(ctx context.Context, r Receipt) error {
	if a.Printer == nil {
		return nil
	}
	return a.Printer.Print(ctx, r)
}

// NotifyResult is what the workflow reports once both steps ran.
type NotifyResult struct {
	Sent      bool   `json:"sent"`
	Printed   bool   `json:"printed"`
	SendError string `json:"sendError,omitempty"`
}

// NotifyOrderWorkflow sends the order message and then prints the receipt,
// printing even when the message could not be delivered. It fails only when
// the send failed, so the execution status mirrors delivery.
func NotifyOrderWorkflow(ctx workflow.Context, r Receipt) (NotifyResult, error) {
	logger := workflow.GetLogger(ctx)
	var a *Activities

	sendCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:        time.Second,
			BackoffCoefficient:     2.0,
			MaximumInterval:        30 * time.Second,
			MaximumAttempts:        5,
			NonRetryableErrorTypes: []string{"SendError"},
		},
	})
	printCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 10 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: time.Second,
			MaximumAttempts: 3,
		},
	})

	var result NotifyResult
	sendErr := workflow.ExecuteActivity(sendCtx, a.SendOrderMessage, r).Get(ctx, nil)
	if sendErr != nil {
		logger.Warn("order message failed", "orderID", r.OrderID, "error", sendErr)
		result.SendError = sendErr.Error()
	} else {
		result.Sent = true
	}

	if err := workflow.ExecuteActivity(printCtx, a.PrintReceipt, r).Get(ctx, nil); err != nil {
		logger.Warn("print receipt failed", "orderID", r.OrderID, "error", err)
	} else {
		result.Printed = true
	}

	if sendErr != nil {
		return result, sendErr
	}
	return result, nil
}

func WorkflowID(orderID string) string {
	return "order-notify-" + orderID
}

// RegisterWorker wires the workflow and its activities into a worker.
func RegisterWorker(w worker.Registry, acts *Activities) {
	w.RegisterWorkflow(NotifyOrderWorkflow)
	w.RegisterActivity(acts)
}

// TemporalDispatcher hands orders to NotifyOrderWorkflow. The workflow id is
// derived from the order id and duplicates are rejected, so an order is
// notified at most once even across restarts.
type TemporalDispatcher struct {
	client    client.Client
	taskQueue string
	live      *catalog.Live
	log       *zap.Logger
}

func NewTemporalDispatcher(c client.Client, taskQueue string, live *catalog.Live, log *zap.Logger) *TemporalDispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &TemporalDispatcher{client: c, taskQueue: taskQueue, live: live, log: log}
}

func (d *TemporalDispatcher) Dispatch(ctx context.Context, order models.OrderDetails) error {
	opts := client.StartWorkflowOptions{
		ID:                    WorkflowID(order.ID),
		TaskQueue:             d.taskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	run, err := d.client.ExecuteWorkflow(ctx, opts, NotifyOrderWorkflow, NewReceipt(order, d.live.Snapshot()))
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		d.log.Debug("notify workflow already started", zap.String("order", order.ID))
		return nil
	}
	if err != nil {
		return err
	}
	d.log.Info("notify workflow started",
		zap.String("order", order.ID),
		zap.String("workflowID", run.GetID()),
		zap.String("runID", run.GetRunID()))
	return nil
}

func (d *TemporalDispatcher) Status(ctx context.Context, orderID string) (Status, error) {
	resp, err := d.client.DescribeWorkflowExecution(ctx, WorkflowID(orderID), "")
	var notFound *serviceerror.NotFound
	if errors.As(err, &notFound) {
		return "", ErrUnknownOrder
	}
	if err != nil {
		return "", err
	}
	switch resp.GetWorkflowExecutionInfo().GetStatus() {
	case enums.WORKFLOW_EXECUTION_STATUS_RUNNING:
		return StatusPending, nil
	case enums.WORKFLOW_EXECUTION_STATUS_COMPLETED:
		return StatusSent, nil
	default:
		return StatusFailed, nil
	}
}
