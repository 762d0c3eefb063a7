package dispatch

import (
	"encoding/json"
	"net/http"

	"github.com/PatrickOgilvie/honertia/core/apperr"
	"github.com/PatrickOgilvie/honertia/core/capability"
)

// jsonResponder is the built-in response factory used when the host wires
// no responder of its own.
type jsonResponder struct {
	w http.ResponseWriter
	r *http.Request
}

func (p *jsonResponder) JSON(status int, v any) error {
	p.w.Header().Set("Content-Type", "application/json")
	p.w.WriteHeader(status)
	return json.NewEncoder(p.w).Encode(v)
}

func (p *jsonResponder) Text(status int, body string) error {
	p.w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	p.w.WriteHeader(status)
	_, err := p.w.Write([]byte(body))
	return err
}

func (p *jsonResponder) Redirect(url string, status int) {
	http.Redirect(p.w, p.r, url, status)
}

func (p *jsonResponder) NotFound() {
	writeNotFound(p.w)
}

var _ capability.Responder = (*jsonResponder)(nil)

// writeNotFound is the uniform not-found response. Parameter validation
// failures, unknown collections, and missing rows all produce exactly this
// body, so the response never reveals which check failed.
func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
}

// writeFault is the generic response for infrastructure failures and
// panics. Details stay in the logs.
func writeFault(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
}

// defaultErrorMapper serializes a typed application error as JSON with its
// declared status.
func defaultErrorMapper(w http.ResponseWriter, _ *http.Request, appErr *apperr.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.Status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":  appErr.Code,
		"detail": appErr.Message,
	})
}
