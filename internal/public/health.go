package public

import (
	"log/slog"
	"net/http"

	"github.com/i-christian/fileDrop/internal/utils"
)

type PublicHandler struct {
	logger  *slog.Logger
	env     string
	version string
	storage string
}

func NewPublicHandler(env, version, storage string, logger *slog.Logger) *PublicHandler {
	return &PublicHandler{
		env:     env,
		version: version,
		storage: storage,
		logger:  logger,
	}
}

// HealthStatus function handles an app health check endpoint
func (h *PublicHandler) HealthStatus(w http.ResponseWriter, r *http.Request) {
	data := utils.Envelope{
		"status": "available",
		"system_info": map[string]any{
			"environment": h.env,
			"version":     h.version,
			"storage":     h.storage,
		},
	}

	err := utils.WriteJSON(w, http.StatusOK, data, nil)
	if err != nil {
		utils.ServerErrorResponse(w, "failed to process request, try again later.")
		utils.WriteServerError(h.logger, "failed to send a response", err)
	}
}
