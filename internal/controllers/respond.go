package controllers

import (
	"errors"
	"net/http"
	"receiptd/internal/apperror"
	"receiptd/internal/billing"
	"receiptd/internal/document"
	"receiptd/internal/postal"
	"receiptd/internal/providers"
	"receiptd/internal/services"
	"receiptd/internal/store"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/gorilla/mux"
)

const maxRequestBodySize = 1 << 20 // 1 MB

func writeJSON(w http.ResponseWriter, status int, v any) {
	gson, err := json.Marshal(v)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

// toAppError maps service errors onto response bodies.
func toAppError(err error) *apperror.AppError {
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		return apperror.NewValidationError(ve.Fields)
	case errors.Is(err, services.ErrIssuerRequired):
		return apperror.NewBadRequestError(services.ErrIssuerRequired.Error())
	case errors.Is(err, store.ErrIssuerNotFound):
		return apperror.NewNotFoundError("issuer")
	case errors.Is(err, store.ErrRecordNotFound):
		return apperror.NewNotFoundError("receipt")
	case errors.Is(err, billing.ErrUnknownTaxMode), errors.Is(err, document.ErrUnknownFormat):
		return apperror.NewBadRequestError(err.Error())
	case errors.Is(err, postal.ErrNoResults):
		return apperror.NewNotFoundError("address")
	case errors.Is(err, postal.ErrLookupFailed):
		return apperror.NewAppError(http.StatusBadGateway, postal.ErrLookupFailed.Error())
	case errors.Is(err, postal.ErrLookupDisabled):
		return apperror.NewAppError(http.StatusServiceUnavailable, postal.ErrLookupDisabled.Error())
	case errors.Is(err, services.ErrPrinterUnavailable):
		return apperror.NewAppError(http.StatusServiceUnavailable, services.ErrPrinterUnavailable.Error())
	case errors.Is(err, services.ErrPrintFailed):
		return apperror.NewAppError(http.StatusBadGateway, services.ErrPrintFailed.Error())
	default:
		return apperror.GetAppError(err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, logger providers.Logger, err error) {
	appErr := toAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, err)
	}
	writeJSON(w, appErr.Code, appErr)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, apperror.NewBadRequestError("malformed JSON body"))
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, apperror.NewBadRequestError("invalid id"))
		return 0, false
	}
	return id, true
}
