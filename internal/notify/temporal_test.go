package notify

import (
	"errors"
	"net/http"
	"testing"

	"go.temporal.io/sdk/testsuite"
)

func TestNotifyOrderWorkflowSendsAndPrints(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	sender := &flakySender{failures: 1, err: errors.New("timeout")}
	printer := &fakePrinter{}
	env.RegisterWorkflow(NotifyOrderWorkflow)
	env.RegisterActivity(&Activities{Sender: sender, Printer: printer})

	env.ExecuteWorkflow(NotifyOrderWorkflow, Receipt{OrderID: "o-1", Phone: "62", Text: "recibo"})

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if err := env.GetWorkflowError(); err != nil {
		t.Fatalf("workflow error: %v", err)
	}
	var result NotifyResult
	if err := env.GetWorkflowResult(&result); err != nil {
		t.Fatalf("result: %v", err)
	}
	if !result.Sent || !result.Printed || sender.calls != 2 {
		t.Fatalf("expected sent after one retry and printed, got %+v after %d calls", result, sender.calls)
	}
}

func TestNotifyOrderWorkflowPrintsWhenSendRejected(t *testing.T) {
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()

	sender := &flakySender{failures: 100, err: &SendError{Status: http.StatusBadRequest, Body: "bad number"}}
	printer := &fakePrinter{}
	env.RegisterWorkflow(NotifyOrderWorkflow)
	env.RegisterActivity(&Activities{Sender: sender, Printer: printer})

	env.ExecuteWorkflow(NotifyOrderWorkflow, Receipt{OrderID: "o-2", Phone: "62", Text: "recibo"})

	if !env.IsWorkflowCompleted() {
		t.Fatal("workflow did not complete")
	}
	if env.GetWorkflowError() == nil {
		t.Fatal("expected workflow to fail when the message was rejected")
	}
	if sender.calls != 1 || printer.count() != 1 {
		t.Fatalf("expected one send attempt and one print, got %d and %d", sender.calls, printer.count())
	}
}

func TestWorkflowIDDerivesFromOrder(t *testing.T) {
	if got := WorkflowID("abc"); got != "order-notify-abc" {
		t.Fatalf("unexpected workflow id %q", got)
	}
}
