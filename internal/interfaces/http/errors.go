package httpinterface

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tdex-privateswap/internal/core/application"
	"github.com/tdex-network/tdex-privateswap/internal/core/application/privateorder"
	"github.com/tdex-network/tdex-privateswap/internal/core/domain"
	webhookpubsub "github.com/tdex-network/tdex-privateswap/internal/infrastructure/pubsub/webhook"
	"github.com/tdex-network/tdex-privateswap/pkg/mathutil"
)

// errInvalidBody is returned for requests that can't be decoded or miss
// mandatory params.
var errInvalidBody = errors.New("invalid request")

var errorStatuses = []struct {
	err    error
	status int
}{
	{privateorder.ErrPrivateOrderNotFound, http.StatusNotFound},
	{domain.ErrSwapNotFound, http.StatusNotFound},
	{application.ErrEngineNotFound, http.StatusNotFound},
	{webhookpubsub.ErrWebhookNotFound, http.StatusNotFound},

	{privateorder.ErrPipelineBusy, http.StatusConflict},
	{privateorder.ErrCancelNotAllowed, http.StatusConflict},
	{domain.ErrSwapNotRemovable, http.StatusConflict},
	{domain.ErrSwapAlreadyExists, http.StatusConflict},
	{domain.ErrInvalidStatusTransition, http.StatusConflict},

	{errInvalidBody, http.StatusUnprocessableEntity},
	{privateorder.ErrInvalidRequest, http.StatusUnprocessableEntity},
	{domain.ErrMissingCurrency, http.StatusUnprocessableEntity},
	{domain.ErrEmptyOrderBook, http.StatusUnprocessableEntity},
	{application.ErrOrderRejected, http.StatusUnprocessableEntity},
	{mathutil.ErrInvalidAmount, http.StatusUnprocessableEntity},
	{mathutil.ErrInvalidPrice, http.StatusUnprocessableEntity},
	{webhookpubsub.ErrUnknownWebhookAction, http.StatusUnprocessableEntity},
	{webhookpubsub.ErrInvalidEndpoint, http.StatusUnprocessableEntity},

	{application.ErrOrderBookUnavailable, http.StatusBadGateway},
	{application.ErrWithdrawalFailed, http.StatusBadGateway},

	{privateorder.ErrServiceStopped, http.StatusServiceUnavailable},
}

// statusFromError maps the error taxonomy of the daemon to http statuses.
func statusFromError(err error) int {
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).WithField("path", r.URL.Path).Error("request failed")
	} else {
		log.WithError(err).WithField("path", r.URL.Path).Debug("request rejected")
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
