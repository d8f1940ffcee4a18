package domain

import "fmt"

// ExecutionResult is the outcome of dispatching or executing a goal.
// Code 0 means success; anything else is a failure.
type ExecutionResult struct {
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`

	// State optionally overrides the state the goal moves to on success.
	State       GoalState `json:"state,omitempty"`
	Description string    `json:"description,omitempty"`
	Phase       string    `json:"phase,omitempty"`
	URL         string    `json:"url,omitempty"`

	ExternalURLs []ExternalURL `json:"externalUrls,omitempty"`
}

// Success returns a zero-code result with the given message.
func Success(msg string) ExecutionResult {
	return ExecutionResult{Code: 0, Message: msg}
}

// Failure returns a result with code 1 and the given message.
func Failure(msg string) ExecutionResult {
	return ExecutionResult{Code: 1, Message: msg}
}

// Failed reports whether the result carries a non-zero code.
func (r ExecutionResult) Failed() bool {
	return r.Code != 0
}

// NoFulfillmentDescription is the description set on goals nothing can execute.
func NoFulfillmentDescription(uniqueName string) string {
	return "No fulfillment for " + uniqueName
}

// ScheduledDescription is the description set on goals handed to an isolated job.
func ScheduledDescription(goalName string) string {
	return "Scheduled " + goalName
}

// FailedDescription is the description set on goals whose execution failed.
func FailedDescription(goalName string) string {
	return "Failed: " + goalName
}

// CompletedDescription is the description set on goals whose execution succeeded.
func CompletedDescription(goalName string) string {
	return "Completed: " + goalName
}

// ScheduleFailedDescription is the description set when the isolated scheduler fails.
const ScheduleFailedDescription = "Failed to schedule goal"

// String renders the result for progress log footers.
func (r ExecutionResult) String() string {
	if r.Message == "" {
		return fmt.Sprintf("code=%d", r.Code)
	}
	return fmt.Sprintf("code=%d message=%q", r.Code, r.Message)
}
