package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	enumspb "go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/crimereport/internal/core/domain"
)

// DispatchInput is the input for the dispatch workflow.
type DispatchInput struct {
	Report domain.Report
}

// ReportDispatchWorkflow labels a stored report with the name of its area and
// broadcasts it. A failed lookup does not stop the broadcast; the report goes
// out unlabelled.
func ReportDispatchWorkflow(ctx workflow.Context, input DispatchInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting report dispatch workflow", "reportID", input.Report.ID)

	actOpts := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 2 * time.Second,
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, actOpts)

	report := input.Report

	// Step 1: Reverse-geocode
	var label string
	err := workflow.ExecuteActivity(ctx, "LookupAreaLabel", report.Lat, report.Lng).Get(ctx, &label)
	if err != nil {
		logger.Warn("area label lookup failed, broadcasting unlabelled", "error", err)
		label = ""
	}

	// Step 2: Store the label
	if label != "" {
		if err := workflow.ExecuteActivity(ctx, "SaveAreaLabel", report.ID, label).Get(ctx, nil); err != nil {
			return err
		}
		report.AreaLabel = label
	}

	// Step 3: Broadcast
	if err := workflow.ExecuteActivity(ctx, "BroadcastReport", report).Get(ctx, nil); err != nil {
		return err
	}

	logger.Info("Report dispatched", "reportID", report.ID, "areaLabel", label)
	return nil
}

// WorkflowID is the dispatch workflow ID for a report; one run per report.
func WorkflowID(reportID string) string {
	return "report-dispatch-" + reportID
}

// StartDispatch starts the dispatch workflow for a submitted report. A
// redelivered event for a running or finished workflow is not an error.
func StartDispatch(ctx context.Context, c client.Client, taskQueue string, event *domain.ReportSubmitted) error {
	opts := client.StartWorkflowOptions{
		ID:                    WorkflowID(event.Report.ID),
		TaskQueue:             taskQueue,
		WorkflowIDReusePolicy: enumspb.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}
	_, err := c.ExecuteWorkflow(ctx, opts, ReportDispatchWorkflow, DispatchInput{Report: event.Report})
	var started *serviceerror.WorkflowExecutionAlreadyStarted
	if errors.As(err, &started) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("start dispatch for report %s: %w", event.Report.ID, err)
	}
	return nil
}
