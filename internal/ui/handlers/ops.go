package handlers

import (
	"net/http"

	"github.com/tradebot/dashboard/internal/ui/responses"
	"github.com/tradebot/dashboard/internal/version"
)

// LivenessHandler reports that the ui server is running. It does not call the trading bot API.
func (h *HandlerService) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	responses.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// VersionHandler returns the build information
func (h *HandlerService) VersionHandler(w http.ResponseWriter, r *http.Request) {
	responses.RespondWithJSON(w, http.StatusOK, version.Get())
}
