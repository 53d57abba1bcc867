package landing

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"

	"portfolio-service/common/httputil"
)

//go:embed index.html
var defaultDocument []byte

// Handler serves the landing document for every GET or HEAD request that no
// other route claims, so client-side routing works on deep links.
type Handler struct {
	document []byte
}

// New returns a Handler serving the embedded document, or the file at
// overridePath when it is set.
func New(overridePath string) (*Handler, error) {
	doc := defaultDocument
	if overridePath != "" {
		b, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("reading landing document: %w", err)
		}
		doc = b
	}
	return &Handler{document: doc}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		httputil.RespondWithError(w, http.StatusNotFound, "Not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(h.document)
}
