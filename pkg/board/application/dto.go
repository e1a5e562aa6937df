package application

// ApplyRequest submits an application. The resume travels as a separate
// multipart part; these are the form fields.
type ApplyRequest struct {
	JobID       string `json:"job_id" form:"job_id" validate:"required,uuid4"`
	CoverLetter string `json:"cover_letter" form:"cover_letter" validate:"max=10000"`
}

// TransitionRequest moves an application to a new status.
type TransitionRequest struct {
	Status string `json:"status" validate:"required"`
	Note   string `json:"note" validate:"max=2000"`
}

// BulkTransitionRequest applies one transition to many applications of the
// same job.
type BulkTransitionRequest struct {
	ApplicationIDs []string `json:"application_ids" validate:"required,min=1,max=100,dive,uuid4"`
	Status         string   `json:"status" validate:"required"`
	Note           string   `json:"note" validate:"max=2000"`
}

// BulkItemResult reports the outcome for one application of a bulk update.
type BulkItemResult struct {
	ApplicationID string `json:"application_id"`
	OK            bool   `json:"ok"`
	Error         string `json:"error,omitempty"`
	ErrorCode     string `json:"error_code,omitempty"`
}

// BulkReport is the aggregate outcome of a bulk update. Valid items are
// applied even when others fail.
type BulkReport struct {
	Updated int              `json:"updated"`
	Failed  int              `json:"failed"`
	Results []BulkItemResult `json:"results"`
}
