package intakeq

import (
	"strconv"
	"strings"

	"github.com/healingsoulutions/intake-api/internal/entity"
)

// SaveClientInput is what the orchestrator sends to create or update a
// client. A non-empty ClientID turns the save into an update.
type SaveClientInput struct {
	ClientID  string
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Notes     string
}

type SendQuestionnaireInput struct {
	QuestionnaireID string
	ClientID        string
	ClientName      string
	ClientEmail     string
}

// FileUpload is one file attached to a client record.
type FileUpload struct {
	FileName    string
	ContentType string
	Data        []byte
}

type IntakeSummary struct {
	ID                string `json:"Id"`
	ClientName        string `json:"ClientName"`
	QuestionnaireName string `json:"QuestionnaireName"`
	Status            string `json:"Status"`
	DateCreated       int64  `json:"DateCreated"`
}

// flexibleID accepts ids the API returns either as numbers or strings.
type flexibleID string

func (id *flexibleID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*id = flexibleID(s)
	return nil
}

// --- Payloads sent to IntakeQ ---

type saveClientRequest struct {
	ClientID              any    `json:"ClientId,omitempty"`
	FirstName             string `json:"FirstName"`
	LastName              string `json:"LastName"`
	Name                  string `json:"Name"`
	Email                 string `json:"Email"`
	Phone                 string `json:"Phone"`
	Address               string `json:"Address"`
	AdditionalInformation string `json:"AdditionalInformation"`
}

type clientTagRequest struct {
	ClientID any    `json:"ClientId"`
	Tag      string `json:"Tag"`
}

type sendQuestionnaireRequest struct {
	QuestionnaireID string `json:"QuestionnaireId"`
	ClientID        any    `json:"ClientId"`
	ClientName      string `json:"ClientName"`
	ClientEmail     string `json:"ClientEmail"`
}

// --- Responses from IntakeQ ---

type clientProfile struct {
	ClientID              flexibleID `json:"ClientId"`
	ClientNumber          flexibleID `json:"ClientNumber"`
	ID                    flexibleID `json:"Id"`
	FirstName             string     `json:"FirstName"`
	LastName              string     `json:"LastName"`
	Email                 string     `json:"Email"`
	Phone                 string     `json:"Phone"`
	AdditionalInformation string     `json:"AdditionalInformation"`
	Tags                  []string   `json:"Tags"`
}

// identifier prefers ClientId, then ClientNumber, then Id.
func (p clientProfile) identifier() string {
	for _, id := range []flexibleID{p.ClientID, p.ClientNumber, p.ID} {
		if id != "" {
			return string(id)
		}
	}
	return ""
}

func (p clientProfile) toEntity() entity.RemoteClient {
	return entity.RemoteClient{
		ID:        p.identifier(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Phone:     p.Phone,
		Notes:     p.AdditionalInformation,
		Tags:      p.Tags,
	}
}

// idValue sends numeric ids as JSON numbers, which is how the API issues them.
// Ids that would not survive the round trip ("0123", "+7") stay strings.
func idValue(id string) any {
	if id == "" {
		return nil
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil && strconv.FormatInt(n, 10) == id {
		return n
	}
	return id
}
