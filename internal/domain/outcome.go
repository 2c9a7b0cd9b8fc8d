package domain

// Outcome is the final result of one submission.
//
// On success Backend names the endpoint that answered and Data holds its
// decoded JSON body. On failure Error carries the most recent candidate's
// reason only; Attempts lists every failed candidate in the order tried.
type Outcome struct {
	Success  bool      `json:"success"`
	Status   int       `json:"status,omitempty"`
	Backend  string    `json:"backend,omitempty"`
	Data     any       `json:"data,omitempty"`
	Error    string    `json:"error,omitempty"`
	Kind     ErrorKind `json:"kind,omitempty"`
	Attempts []Attempt `json:"attempts,omitempty"`
}

// RelayAccepted reports whether the relay's body carries "success": true.
func (o Outcome) RelayAccepted() bool {
	body, ok := o.Data.(map[string]any)
	if !ok {
		return false
	}
	accepted, ok := body["success"].(bool)
	return ok && accepted
}

// RelayAnswered reports whether any failed candidate replied with a JSON body,
// meaning a relay was reached and turned the submission down.
func (o Outcome) RelayAnswered() bool {
	for _, attempt := range o.Attempts {
		if attempt.Response != nil {
			return true
		}
	}
	return false
}

// FormStatus is the feedback rendered for a submitted contact form.
type FormStatus string

const (
	FormStatusSuccess        FormStatus = "success"
	FormStatusServerRejected FormStatus = "server_rejected"
	FormStatusNetworkError   FormStatus = "network_error"
)

func (s FormStatus) String() string { return string(s) }

func (s FormStatus) Message() string {
	switch s {
	case FormStatusSuccess:
		return "Submitted successfully (check email / Excel)"
	case FormStatusServerRejected:
		return "Backend returned error"
	default:
		return "Network error (check backend)"
	}
}

func (s FormStatus) Color() string {
	switch s {
	case FormStatusSuccess:
		return "lightgreen"
	case FormStatusServerRejected:
		return "orange"
	default:
		return "red"
	}
}

// FormStatusFromOutcome maps a submission outcome to form feedback. A relay
// that answered JSON without "success": true counts as a rejection, not a
// network failure, whatever its HTTP status.
func FormStatusFromOutcome(o Outcome) FormStatus {
	if !o.Success {
		if o.RelayAnswered() {
			return FormStatusServerRejected
		}
		return FormStatusNetworkError
	}
	if o.RelayAccepted() {
		return FormStatusSuccess
	}
	return FormStatusServerRejected
}
