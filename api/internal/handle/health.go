package handle

import "net/http"

type HealthResponse struct {
	OK        bool     `json:"ok"`
	Providers []string `json:"providers"`
}

func (h *Handle) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{OK: true, Providers: h.engs.Names()})
}
