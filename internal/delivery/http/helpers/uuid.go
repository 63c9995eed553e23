package helpers

import (
	"net/http"

	"github.com/google/uuid"
)

// PathUUID returns the path parameter name when it is a valid UUID. Otherwise
// it writes a 404, since no record can have that ID, and returns false.
func PathUUID(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	raw := r.PathValue(name)
	id, err := uuid.Parse(raw)
	if err != nil {
		WriteJSONError(w, http.StatusNotFound, ErrCodeNotFound, "not found")
		return "", false
	}
	return id.String(), true
}
