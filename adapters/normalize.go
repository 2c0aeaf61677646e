package adapters

import (
	"fmt"
	"strings"
)

// UnknownErrorMessage is reported when a provider marks a task failed without
// saying why.
const UnknownErrorMessage = "Unknown error"

// Processing builds a result for a task that is still running.
func Processing(provider, taskID string) *TaskResult {
	return &TaskResult{TaskID: taskID, Status: TaskStatusProcessing, Provider: provider}
}

// Completed builds a result for a finished task.
func Completed(provider, taskID, resultURL string) *TaskResult {
	return &TaskResult{
		TaskID:    taskID,
		Status:    TaskStatusCompleted,
		Provider:  provider,
		ResultURL: resultURL,
	}
}

// Failed builds a result for a failed task. An empty message is replaced by
// UnknownErrorMessage.
func Failed(provider, taskID, message string) *TaskResult {
	if strings.TrimSpace(message) == "" {
		message = UnknownErrorMessage
	}
	return &TaskResult{
		TaskID:        taskID,
		Status:        TaskStatusFailed,
		Provider:      provider,
		FailedMessage: message,
	}
}

// Normalize enforces the result invariants on r in place: the provider tag is
// canonical, the status is one of the three canonical values, and exactly the
// field matching the status is set. A completed task without a URL cannot be
// represented and is reported as an UpstreamError.
func Normalize(provider string, r *TaskResult) (*TaskResult, error) {
	if r == nil {
		return nil, &UpstreamError{Provider: provider, Message: "adapter returned no result", Err: ErrInvalidResult}
	}
	r.Provider = strings.ToLower(strings.TrimSpace(provider))
	if !r.Status.Valid() {
		r.Status = TaskStatusProcessing
	}

	switch r.Status {
	case TaskStatusCompleted:
		if r.ResultURL == "" {
			return nil, &UpstreamError{
				Provider: r.Provider,
				Message:  fmt.Sprintf("task %s completed without a result url", r.TaskID),
				Err:      ErrInvalidResult,
			}
		}
		r.FailedMessage = ""
	case TaskStatusFailed:
		if r.FailedMessage == "" {
			r.FailedMessage = UnknownErrorMessage
		}
		r.ResultURL = ""
	default:
		r.ResultURL = ""
		r.FailedMessage = ""
	}
	return r, nil
}
