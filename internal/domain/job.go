package domain

// JobHandle identifies a submitted job at the external signal processor.
type JobHandle string

type JobState string

const (
	JobQueued    JobState = "QUEUED"
	JobRunning   JobState = "RUNNING"
	JobSucceeded JobState = "SUCCEEDED"
	JobFailed    JobState = "FAILED"
)

// JobPoll is one observation of an external job's progress.
type JobPoll struct {
	State JobState `json:"state"`
	Error string   `json:"error,omitempty"` // provider message, set when State is FAILED
}

// JobMetadata travels with the submission so the processor can label its
// output. The orchestrator never interprets these fields.
type JobMetadata struct {
	FileName  string `json:"file_name"`
	PatientID string `json:"patient_id"`
}
