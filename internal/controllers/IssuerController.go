package controllers

import (
	"net/http"
	"receiptd/internal/providers"
	"receiptd/internal/services"
)

type IssuerController struct {
	logger  providers.Logger
	service services.ReceiptServiceInterface
}

func NewIssuerController(logger providers.Logger, service services.ReceiptServiceInterface) *IssuerController {
	return &IssuerController{logger: logger, service: service}
}

func (ic *IssuerController) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, ic.service.ListIssuers())
}

func (ic *IssuerController) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	issuer, err := ic.service.GetIssuer(id)
	if err != nil {
		writeError(w, r, ic.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, issuer)
}

func (ic *IssuerController) Create(w http.ResponseWriter, r *http.Request) {
	var in services.IssuerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	issuer, err := ic.service.CreateIssuer(r.Context(), in)
	if err != nil {
		writeError(w, r, ic.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, issuer)
}

func (ic *IssuerController) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in services.IssuerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	issuer, err := ic.service.UpdateIssuer(r.Context(), id, in)
	if err != nil {
		writeError(w, r, ic.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, issuer)
}

func (ic *IssuerController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := ic.service.DeleteIssuer(id); err != nil {
		writeError(w, r, ic.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (ic *IssuerController) RestoreDefaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"added": ic.service.RestoreDefaultIssuers()})
}
