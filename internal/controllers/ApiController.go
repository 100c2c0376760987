package controllers

import (
	"net/http"
	"receiptd/internal/providers"
	"receiptd/internal/services"
	"receiptd/internal/structures"
	"strconv"

	"github.com/gorilla/mux"
)

type ApiController struct {
	conf    *structures.Config
	logger  providers.Logger
	service services.ReceiptServiceInterface
}

func NewApiController(conf *structures.Config, logger providers.Logger, service services.ReceiptServiceInterface) *ApiController {
	return &ApiController{
		conf:    conf,
		logger:  logger,
		service: service,
	}
}

func (ac *ApiController) Calculate(w http.ResponseWriter, r *http.Request) {
	var req services.CalcRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	figures, err := ac.service.Calculate(req)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, figures)
}

func (ac *ApiController) IssueReceipt(w http.ResponseWriter, r *http.Request) {
	var in services.ReceiptInput
	if !decodeJSON(w, r, &in) {
		return
	}
	record, err := ac.service.IssueReceipt(r.Context(), in)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, record)
}

func (ac *ApiController) RenderDocument(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "html"
	}

	rendered, err := ac.service.RenderReceipt(id, format)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}

	w.Header().Set("Content-Type", rendered.ContentType)
	w.Header().Set("Content-Disposition", `inline; filename="receipt-`+strconv.FormatInt(id, 10)+"."+rendered.Extension+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(rendered.Body)
}

func (ac *ApiController) PrintReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = ac.conf.Printer.Format
	}

	job, err := ac.service.PrintReceipt(id, format)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (ac *ApiController) ListHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ac.service.ListHistory())
}

func (ac *ApiController) GetHistoryRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	record, err := ac.service.GetHistoryRecord(id)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (ac *ApiController) DeleteHistoryRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ac.service.DeleteHistoryRecord(id); err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ac *ApiController) ClearHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"removed": ac.service.ClearHistory()})
}

func (ac *ApiController) LookupPostalCode(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["code"]
	res, err := ac.service.LookupPostalCode(r.Context(), code, r.URL.Query().Get("address"))
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
