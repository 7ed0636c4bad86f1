package sqlite

import (
	"encoding/json"
	"time"

	"github.com/rashkid-n/datagenesis-53/internal/domain"
)

// JobModel represents the database row for the jobs table. Time values
// are Unix timestamps; the result payload is JSON encoded.
type JobModel struct {
	ID           string
	Status       string
	Progress     int
	Message      string
	ErrorMessage *string // nullable
	Result       *string // nullable, JSON encoded
	StartedAt    *int64  // Unix timestamp, nullable
	CompletedAt  *int64  // Unix timestamp, nullable
	ArchivedAt   int64   // Unix timestamp
}

// toJobModel converts a domain Job to its database representation.
func toJobModel(j domain.Job, archivedAt time.Time) (*JobModel, error) {
	m := &JobModel{
		ID:         j.ID,
		Status:     string(j.Status),
		Progress:   j.Progress,
		Message:    j.Message,
		ArchivedAt: archivedAt.Unix(),
	}
	if j.ErrorMessage != "" {
		errMsg := j.ErrorMessage
		m.ErrorMessage = &errMsg
	}
	if j.Result != nil {
		encoded, err := json.Marshal(j.Result)
		if err != nil {
			return nil, err
		}
		result := string(encoded)
		m.Result = &result
	}
	if j.StartedAt != nil {
		ts := j.StartedAt.Unix()
		m.StartedAt = &ts
	}
	if j.CompletedAt != nil {
		ts := j.CompletedAt.Unix()
		m.CompletedAt = &ts
	}
	return m, nil
}

// toDomain converts a database row back to a domain Job.
func (m *JobModel) toDomain() (domain.Job, error) {
	j := domain.Job{
		ID:       m.ID,
		Status:   domain.Status(m.Status),
		Progress: m.Progress,
		Message:  m.Message,
	}
	if m.ErrorMessage != nil {
		j.ErrorMessage = *m.ErrorMessage
	}
	if m.Result != nil {
		var result domain.Result
		if err := json.Unmarshal([]byte(*m.Result), &result); err != nil {
			return domain.Job{}, err
		}
		j.Result = &result
	}
	if m.StartedAt != nil {
		ts := time.Unix(*m.StartedAt, 0).UTC()
		j.StartedAt = &ts
	}
	if m.CompletedAt != nil {
		ts := time.Unix(*m.CompletedAt, 0).UTC()
		j.CompletedAt = &ts
	}
	return j, nil
}
