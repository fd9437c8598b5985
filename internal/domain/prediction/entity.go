package prediction

import "time"

// Record is a single prediction attempt. One record is written per inference
// request, including degraded (no model) and failed attempts, and is never
// updated or deleted afterwards.
type Record struct {
	ID            string         `json:"id"`
	UserID        *string        `json:"user_id"`
	Input         map[string]any `json:"input"`
	PredictedRole string         `json:"predicted_role"`
	Confidence    *float64       `json:"confidence"`
	CreatedAt     time.Time      `json:"created_at"`
}

// RecordWithUser is a Record enriched with the owning user's identity for the
// audit view. UserID is a weak reference: when it no longer resolves, Username
// and Email stay nil and the record is still returned.
type RecordWithUser struct {
	Record
	Username *string `json:"username"`
	Email    *string `json:"email"`
}
