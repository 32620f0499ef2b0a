package checklist

import "time"

type Status string

const (
	StatusPending   Status = "Pending"
	StatusInReview  Status = "In-Review"
	StatusResponded Status = "Responded"
	StatusCompleted Status = "Completed"
	StatusCanceled  Status = "Canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInReview, StatusResponded, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// ownerTransitions is the transition table for status changes made through the
// authenticated surface. Responded is set only by the public submission path.
var ownerTransitions = map[Status][]Status{
	StatusPending:   {StatusInReview, StatusCanceled},
	StatusInReview:  {StatusPending, StatusCompleted, StatusCanceled},
	StatusResponded: {StatusInReview, StatusCompleted, StatusCanceled},
}

func CanTransition(from, to Status) bool {
	for _, s := range ownerTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type FieldType string

const (
	FieldText FieldType = "text"
	FieldFile FieldType = "file"
)

// Field is one entry of the form schema presented to the client.
type Field struct {
	Label    string    `json:"label"`
	Type     FieldType `json:"type"`
	Required bool      `json:"required,omitempty"`
}

// FileMeta describes one uploaded file, keyed by field label in Responses.
type FileMeta struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
	Mimetype string `json:"mimetype"`
	Size     int64  `json:"size"`
}

// Responses is the client-submitted payload. Re-submission overwrites it wholesale.
type Responses struct {
	Text        map[string]string   `json:"textResponses"`
	Files       map[string]FileMeta `json:"files"`
	SubmittedAt time.Time           `json:"submittedAt"`
}

type Checklist struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	ClientName  string     `json:"clientName"`
	ClientEmail string     `json:"clientEmail"`
	ServiceType string     `json:"serviceType"`
	Fields      []Field    `json:"fields"`
	PublicToken string     `json:"publicToken"`
	Status      Status     `json:"status"`
	Responses   *Responses `json:"responses"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}
