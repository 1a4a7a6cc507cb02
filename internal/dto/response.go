package dto

import "github.com/eventsync/notification-service/internal/dispatcher"

// EventResult is the wire form of one candidate's outcome.
type EventResult struct {
	EventID string `json:"eventId" example:"4f7c2f6a-1d2e-4b8f-9c3d-8a5e6b7c8d9e"`
	Status  string `json:"status" example:"sent"`
	Error   string `json:"error,omitempty" example:"discord webhook returned 404 Not Found"`
}

// DispatchResponse is the report returned for a completed tick.
type DispatchResponse struct {
	Success   bool          `json:"success" example:"true"`
	Processed int           `json:"processed" example:"3"`
	Results   []EventResult `json:"results"`
}

// ErrorResponse is returned for a tick-level failure.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error" example:"dispatch_failed"`
	Message string `json:"message,omitempty" example:"failed to scan upcoming events"`
}

// FromReport converts an orchestrator report into the wire response.
func FromReport(report *dispatcher.Report) DispatchResponse {
	results := make([]EventResult, 0, len(report.Results))
	for _, r := range report.Results {
		results = append(results, EventResult{
			EventID: r.EventID,
			Status:  string(r.Status),
			Error:   r.Error,
		})
	}

	return DispatchResponse{
		Success:   true,
		Processed: report.Processed,
		Results:   results,
	}
}
