package models

// AnalysisResult is the crop image diagnosis shown to the operator.
type AnalysisResult struct {
	Disease    string `json:"disease"`
	Confidence string `json:"confidence"` // e.g. "94%"
}

// ActionResult acknowledges an auxiliary rover action.
type ActionResult struct {
	Action   string `json:"action"`
	Message  string `json:"message"`
	CameraOn bool   `json:"camera_on"`
	Status   string `json:"status,omitempty"` // transient rover status, e.g. "Capturing Photo..."
}
