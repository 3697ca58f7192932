package dto

// UploadSummary is the result of a successful ingestion batch.
type UploadSummary struct {
	RowsProcessed int `json:"rowsProcessed"`
	EventsCreated int `json:"eventsCreated"`
}

// UploadErrorResponse reports a rejected batch: the first accumulated row
// errors plus how many more there were.
type UploadErrorResponse struct {
	Error     string   `json:"error"`
	RowErrors []string `json:"rowErrors"`
}
