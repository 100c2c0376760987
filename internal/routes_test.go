package internal

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"receiptd/internal/controllers"
	"receiptd/internal/document"
	"receiptd/internal/postal"
	"receiptd/internal/services"
	"receiptd/internal/store"
	"receiptd/internal/structures"
	"receiptd/internal/testutil"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type routeTestPrinter struct{}

func (p *routeTestPrinter) Print(_ []byte) error { return nil }
func (p *routeTestPrinter) Close() error         { return nil }
func (p *routeTestPrinter) IsConnected() bool    { return true }

type routeTestPostal struct{}

func (p *routeTestPostal) Lookup(_ context.Context, _ string) ([]postal.Candidate, error) {
	return []postal.Candidate{{Prefecture: "東京都", City: "千代田区", Town: "丸の内"}}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	conf := &structures.Config{
		Billing: structures.BillingConfig{
			TaxRate:             0.10,
			TaxMode:             "exclusive",
			ReceiptNumberFormat: services.NumberFormatMinute,
		},
		Printer: structures.PrinterConfig{Format: "html"},
	}
	logger := &testutil.MockLogger{}
	metrics := &testutil.MockMetrics{}
	st := store.NewStore(testutil.NewMockKV(), &testutil.MockIDs{}, logger, metrics)
	st.LoadAll()

	registry, err := document.NewRegistryFromConfig(conf)
	require.NoError(t, err)
	service := services.NewReceiptService(conf, logger, st, registry, &routeTestPrinter{}, &routeTestPostal{}, testutil.NewMockCache(), metrics)

	router := InitRoutes(controllers.NewApiController(conf, logger, service), controllers.NewIssuerController(logger, service))
	return router.Router()
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestInitRoutes_RegistersAllRoutes(t *testing.T) {
	router := InitRoutes(&controllers.ApiController{}, &controllers.IssuerController{})
	routes := router.GetRoutes()

	require.Len(t, routes, 15)
	assert.Equal(t, "/issuers/restore-defaults", routes[4].Url)
}

func TestInitRoutes_RestoreDefaultsNotShadowedByID(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(h, http.MethodPost, "/issuers/restore-defaults", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"added":0}`, rr.Body.String())
}

func TestInitRoutes_IssueAndRender(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(h, http.MethodPost, "/receipts", `{"issuerId":1,"productAmount":3000,"customerName":"佐藤"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = serve(h, http.MethodGet, "/receipts/1001/document?format=html", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "佐藤")

	rr = serve(h, http.MethodPost, "/receipts/1001/print", "")
	assert.Equal(t, http.StatusAccepted, rr.Code)

	rr = serve(h, http.MethodGet, "/history/1001", "")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestInitRoutes_MethodEnforcement(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(h, http.MethodGet, "/calculate", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)

	rr = serve(h, http.MethodPatch, "/issuers/1", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestInitRoutes_NonNumericIDNotFound(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(h, http.MethodGet, "/issuers/abc", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInitRoutes_Postal(t *testing.T) {
	h := newTestRouter(t)

	rr := serve(h, http.MethodGet, "/postal/100-0005?address=", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "東京都千代田区丸の内")
}
