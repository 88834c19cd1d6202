package gate

import (
	"encoding/json"
	"net/http"

	"github.com/jonwraymond/flowgate/auth"
)

// ErrorBody is the JSON body of a denial.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Decision is the outcome of checking one request.
type Decision struct {
	// Admit is true when the request may proceed.
	Admit bool

	// Status and Body describe the denial response. Unset on admission.
	Status int
	Body   ErrorBody

	// Class is the endpoint class the request was checked against.
	Class EndpointClass

	// Identity is the authenticated caller, set on admission.
	Identity *auth.Identity

	// Reason is the cause of a denial. It is never sent to the client.
	Reason error
}

// Admit returns an admitting decision.
func Admit() Decision {
	return Decision{Admit: true}
}

// Deny returns a denying decision with status and message.
func Deny(status int, message string) Decision {
	return Decision{
		Status: status,
		Body: ErrorBody{
			Error:   http.StatusText(status),
			Message: message,
		},
	}
}

// WriteDenial writes d's status and JSON body to w.
func WriteDenial(w http.ResponseWriter, d Decision) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(d.Status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(d.Body)
}
