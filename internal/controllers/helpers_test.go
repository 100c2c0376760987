package controllers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"receiptd/internal/document"
	"receiptd/internal/postal"
	"receiptd/internal/services"
	"receiptd/internal/store"
	"receiptd/internal/structures"
	"receiptd/internal/testutil"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
)

type stubPrinter struct {
	connected bool
	jobs      int
}

func (p *stubPrinter) Print(_ []byte) error {
	p.jobs++
	return nil
}
func (p *stubPrinter) Close() error      { return nil }
func (p *stubPrinter) IsConnected() bool { return p.connected }

type stubPostal struct {
	err error
}

func (p *stubPostal) Lookup(_ context.Context, code string) ([]postal.Candidate, error) {
	if p.err != nil {
		return nil, p.err
	}
	if _, err := postal.Normalize(code); err != nil {
		return nil, err
	}
	return []postal.Candidate{{Prefecture: "大阪府", City: "大阪市大正区", Town: "泉尾"}}, nil
}

type env struct {
	conf    *structures.Config
	store   *store.Store
	kv      *testutil.MockKV
	service *services.ReceiptService
	printer *stubPrinter
	postal  *stubPostal
	logger  *testutil.MockLogger
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{
		conf: &structures.Config{
			Billing: structures.BillingConfig{
				TaxRate:             0.10,
				TaxMode:             "exclusive",
				ReceiptNumberFormat: services.NumberFormatMinute,
				Timezone:            "Asia/Tokyo",
			},
			Printer: structures.PrinterConfig{Format: "escpos"},
		},
		kv:      testutil.NewMockKV(),
		printer: &stubPrinter{connected: true},
		postal:  &stubPostal{},
		logger:  &testutil.MockLogger{},
	}
	metrics := &testutil.MockMetrics{}
	e.store = store.NewStore(e.kv, &testutil.MockIDs{}, e.logger, metrics)
	e.store.LoadAll()

	html, err := document.NewHTMLFormatter()
	require.NoError(t, err)
	pdf, err := document.NewPDFFormatter("")
	require.NoError(t, err)
	registry := document.NewRegistry(html, pdf, document.NewESCPOSFormatter(32, "utf8"))

	e.service = services.NewReceiptService(e.conf, e.logger, e.store, registry, e.printer, e.postal, testutil.NewMockCache(), metrics)
	e.service.SetClock(func() time.Time { return time.Date(2025, 1, 5, 0, 30, 0, 0, time.UTC) })
	return e
}

func do(handler http.HandlerFunc, method, target, body string, vars map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	}
	if vars != nil {
		req = mux.SetURLVars(req, vars)
	}
	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}
