package handlers

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/vedran77/chatty/internal/apierr"
	"github.com/vedran77/chatty/internal/logging"
	"github.com/vedran77/chatty/pkg/validator"
)

// Reporter logs unexpected failures and answers them with a generic 500.
// Development servers also get the stack in the envelope.
type Reporter struct {
	log       logging.Logger
	withStack bool
}

func NewReporter(log logging.Logger, withStack bool) *Reporter {
	return &Reporter{log: log, withStack: withStack}
}

func (rep *Reporter) internal(w http.ResponseWriter, r *http.Request, op string, err error) {
	rep.log.Error(r.Context(), op+" failed", "error", err)

	env := apierr.Envelope{
		Status:  http.StatusInternalServerError,
		Type:    apierr.TypeInternal,
		Message: "Something went wrong",
	}
	if rep.withStack {
		env.Stack = err.Error() + "\n" + string(debug.Stack())
	}
	apierr.WriteEnvelope(w, env)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, typ string, message string) {
	apierr.Write(w, status, typ, message)
}

func writeValidationErrors(w http.ResponseWriter, errs validator.ValidationErrors) {
	writeError(w, http.StatusBadRequest, apierr.TypeValidation, errs.Error())
}

func writeInvalidJSON(w http.ResponseWriter) {
	writeError(w, http.StatusBadRequest, apierr.TypeValidation, "Invalid request body")
}

// decodeJSON caps request bodies so inline images cannot exhaust memory.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(dst)
}
