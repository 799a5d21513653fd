package transfer

type ClientRequest struct {
	Name    string  `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Company *string `json:"company"`
	Notes   *string `json:"notes"`
}

// AttachProjectRequest dates accept either RFC 3339 or a plain 2006-01-02 day.
type AttachProjectRequest struct {
	ProjectID int64   `json:"projectId"`
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	Notes     *string `json:"notes"`
}

type UpdateClientProjectRequest struct {
	EndDate string  `json:"endDate"`
	Notes   *string `json:"notes"`
}
