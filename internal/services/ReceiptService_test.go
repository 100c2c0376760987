package services

import (
	"context"
	"errors"
	"receiptd/internal/billing"
	"receiptd/internal/document"
	"receiptd/internal/models"
	"receiptd/internal/postal"
	"receiptd/internal/printing"
	"receiptd/internal/store"
	"receiptd/internal/structures"
	"receiptd/internal/testutil"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPrinter struct {
	connected bool
	err       error
	printed   [][]byte
}

func (m *mockPrinter) Print(data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.printed = append(m.printed, data)
	return nil
}
func (m *mockPrinter) Close() error      { return nil }
func (m *mockPrinter) IsConnected() bool { return m.connected }

type mockPostal struct {
	candidates []postal.Candidate
	err        error
	calls      int
}

func (m *mockPostal) Lookup(_ context.Context, code string) ([]postal.Candidate, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if _, err := postal.Normalize(code); err != nil {
		return nil, err
	}
	return m.candidates, nil
}

type serviceFixture struct {
	svc     *ReceiptService
	store   *store.Store
	kv      *testutil.MockKV
	printer *mockPrinter
	postal  *mockPostal
	cache   *testutil.MockCache
	metrics *testutil.MockMetrics
}

func testConfig() *structures.Config {
	return &structures.Config{
		Billing: structures.BillingConfig{
			TaxRate:             0.10,
			TaxMode:             billing.ModeExclusive,
			ReceiptNumberFormat: NumberFormatMinute,
			Timezone:            "Asia/Tokyo",
			ElectronicByDefault: true,
		},
		Printer: structures.PrinterConfig{Format: "pdf"},
	}
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	f := &serviceFixture{
		kv:      testutil.NewMockKV(),
		printer: &mockPrinter{connected: true},
		postal: &mockPostal{candidates: []postal.Candidate{
			{Prefecture: "大阪府", City: "大阪市大正区", Town: "泉尾"},
		}},
		cache:   testutil.NewMockCache(),
		metrics: &testutil.MockMetrics{},
	}
	logger := &testutil.MockLogger{}
	f.store = store.NewStore(f.kv, &testutil.MockIDs{}, logger, f.metrics)
	f.store.LoadAll()

	html, err := document.NewHTMLFormatter()
	require.NoError(t, err)
	pdf, err := document.NewPDFFormatter("")
	require.NoError(t, err)
	registry := document.NewRegistry(html, pdf, document.NewESCPOSFormatter(32, "utf8"))

	f.svc = NewReceiptService(testConfig(), logger, f.store, registry, f.printer, f.postal, f.cache, f.metrics)
	f.svc.SetClock(func() time.Time {
		return time.Date(2025, 1, 5, 0, 30, 15, 0, time.UTC)
	})
	return f
}

func boolPtr(b bool) *bool {
	return &b
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestCalculate_WorkedExamples(t *testing.T) {
	f := newServiceFixture(t)

	figures, err := f.svc.Calculate(CalcRequest{ProductAmount: 10000, IsElectronicReceipt: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(10000), figures.Subtotal)
	assert.Equal(t, int64(1000), figures.TaxAmount)
	assert.Equal(t, int64(11000), figures.TotalWithTax)
	assert.Equal(t, int64(0), figures.StampDuty)

	figures, err = f.svc.Calculate(CalcRequest{ProductAmount: 5000000, IsElectronicReceipt: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(5500000), figures.TotalWithTax)
	assert.Equal(t, int64(200), figures.StampDuty)
}

func TestCalculate_Defaults(t *testing.T) {
	f := newServiceFixture(t)

	figures, err := f.svc.Calculate(CalcRequest{ProductAmount: 5000000})
	require.NoError(t, err)
	assert.Equal(t, billing.ModeExclusive, figures.Strategy)
	assert.Equal(t, 0.10, figures.TaxRate)
	assert.Equal(t, int64(0), figures.StampDuty)
}

func TestCalculate_ShippingDisabled(t *testing.T) {
	f := newServiceFixture(t)

	figures, err := f.svc.Calculate(CalcRequest{ProductAmount: 1000, ShippingAmount: 500, ShippingEnabled: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), figures.Subtotal)
}

func TestCalculate_InclusiveAndUnknownMode(t *testing.T) {
	f := newServiceFixture(t)

	figures, err := f.svc.Calculate(CalcRequest{ProductAmount: 11000, TaxMode: "inclusive"})
	require.NoError(t, err)
	assert.Equal(t, int64(1000), figures.TaxAmount)
	assert.Equal(t, int64(11000), figures.TotalWithTax)

	_, err = f.svc.Calculate(CalcRequest{ProductAmount: 1, TaxMode: "gross"})
	assert.ErrorIs(t, err, billing.ErrUnknownTaxMode)
}

func TestIssueReceipt_RequiresIssuer(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{CalcRequest: CalcRequest{ProductAmount: 1000}})
	assert.ErrorIs(t, err, ErrIssuerRequired)

	_, err = f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 999})
	assert.ErrorIs(t, err, ErrIssuerRequired)

	assert.Empty(t, f.store.History())
	assert.Equal(t, 0, f.kv.SetCount(models.KindHistory.Key()))
}

func TestIssueReceipt_CreatesRecord(t *testing.T) {
	f := newServiceFixture(t)

	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{
		CalcRequest:    CalcRequest{ProductAmount: 10000, ShippingAmount: 500},
		IssuerID:       1,
		CustomerName:   " 山田 ",
		CustomerSuffix: "様",
	})
	require.NoError(t, err)

	assert.NotZero(t, record.ID)
	assert.Equal(t, "R-20250105-0930", record.ReceiptNumber)
	assert.Equal(t, "2025-01-05", record.Date)
	assert.Equal(t, "山田", record.CustomerName)
	assert.Equal(t, models.DefaultDescription, record.Description)
	assert.True(t, record.ShippingEnabled)
	assert.Equal(t, int64(11550), record.Figures.TotalWithTax)
	assert.True(t, record.IsElectronicReceipt)
	assert.Equal(t, models.DefaultIssuers()[0], record.Issuer)
	assert.Equal(t, 1, f.metrics.ReceiptsIssued[billing.ModeExclusive])

	history := f.store.History()
	require.Len(t, history, 1)
	assert.Equal(t, record.ID, history[0].ID)
}

func TestIssueReceipt_SecondFormatAndExplicitDate(t *testing.T) {
	f := newServiceFixture(t)
	f.svc.conf.Billing.ReceiptNumberFormat = NumberFormatSecond

	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1, Date: "2024-12-31"})
	require.NoError(t, err)
	assert.Equal(t, "20250105-093015", record.ReceiptNumber)
	assert.Equal(t, "2024-12-31", record.Date)

	_, err = f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1, Date: "31/12/2024"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestIssueReceipt_IssuerSnapshotSurvivesEdits(t *testing.T) {
	f := newServiceFixture(t)
	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1})
	require.NoError(t, err)

	_, err = f.svc.UpdateIssuer(context.Background(), 1, IssuerInput{Name: "新社名", Address: "東京都"})
	require.NoError(t, err)

	got, err := f.svc.GetHistoryRecord(record.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultIssuers()[0].Name, got.Issuer.Name)
}

func TestIssueReceipt_SucceedsWhenPersistenceFails(t *testing.T) {
	f := newServiceFixture(t)
	f.kv.SetFailWrites(true)

	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1})
	require.NoError(t, err)
	assert.Len(t, f.svc.ListHistory(), 1)
	assert.Equal(t, record.ID, f.svc.ListHistory()[0].ID)
	assert.True(t, f.store.Dirty())
}

func TestRenderReceipt_CachesOutput(t *testing.T) {
	f := newServiceFixture(t)
	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1, CalcRequest: CalcRequest{ProductAmount: 1000}})
	require.NoError(t, err)

	rendered, err := f.svc.RenderReceipt(record.ID, "html")
	require.NoError(t, err)
	assert.Equal(t, "text/html; charset=utf-8", rendered.ContentType)
	assert.Contains(t, string(rendered.Body), "20250105-0930")
	assert.Len(t, f.cache.Data, 1)

	again, err := f.svc.RenderReceipt(record.ID, "html")
	require.NoError(t, err)
	assert.Equal(t, rendered.Body, again.Body)

	require.NoError(t, f.svc.DeleteHistoryRecord(record.ID))
	_, err = f.svc.RenderReceipt(record.ID, "html")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestRenderReceipt_Errors(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.RenderReceipt(42, "html")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	_, err = f.svc.RenderReceipt(42, "docx")
	assert.ErrorIs(t, err, document.ErrUnknownFormat)
}

func TestPrintReceipt(t *testing.T) {
	f := newServiceFixture(t)
	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1})
	require.NoError(t, err)

	job, err := f.svc.PrintReceipt(record.ID, "escpos")
	require.NoError(t, err)
	assert.NotEmpty(t, job.ID)
	assert.Equal(t, "escpos", job.Format)
	require.Len(t, f.printer.printed, 1)
}

func TestPrintReceipt_PrinterUnavailable(t *testing.T) {
	f := newServiceFixture(t)
	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1})
	require.NoError(t, err)
	f.printer.connected = false

	_, err = f.svc.PrintReceipt(record.ID, "pdf")
	assert.ErrorIs(t, err, ErrPrinterUnavailable)
	assert.Empty(t, f.printer.printed)
}

func TestPrintReceipt_UnknownRecordBeforePrinterCheck(t *testing.T) {
	f := newServiceFixture(t)
	f.printer.connected = false

	_, err := f.svc.PrintReceipt(42, "pdf")
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1})
	require.NoError(t, err)
	_, err = f.svc.PrintReceipt(record.ID, "docx")
	assert.ErrorIs(t, err, document.ErrUnknownFormat)
	assert.Empty(t, f.printer.printed)
}

func TestPrintReceipt_PrinterError(t *testing.T) {
	f := newServiceFixture(t)
	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1})
	require.NoError(t, err)
	f.printer.err = errors.New("paper jam")

	_, err = f.svc.PrintReceipt(record.ID, "pdf")
	assert.ErrorIs(t, err, ErrPrintFailed)
}

func TestPrintReceipt_Spool(t *testing.T) {
	f := newServiceFixture(t)
	spool, err := printing.NewSpoolPrinter(t.TempDir())
	require.NoError(t, err)
	f.svc.printer = spool

	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1})
	require.NoError(t, err)

	job, err := f.svc.PrintReceipt(record.ID, "pdf")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(job.Output, job.ID+".pdf"))
}

func TestCreateIssuer_Validation(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.CreateIssuer(context.Background(), IssuerInput{Name: "  "})
	require.ErrorIs(t, err, ErrValidation)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "name", ve.Fields[0].Field)

	_, err = f.svc.CreateIssuer(context.Background(), IssuerInput{Name: "A", PostalCode: "12-345"})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "postalCode", ve.Fields[0].Field)

	assert.Len(t, f.svc.ListIssuers(), 1)
}

func TestCreateIssuer_FillsBlankAddress(t *testing.T) {
	f := newServiceFixture(t)

	issuer, err := f.svc.CreateIssuer(context.Background(), IssuerInput{Name: "A", PostalCode: "551-0031"})
	require.NoError(t, err)
	assert.Equal(t, "大阪府大阪市大正区泉尾", issuer.Address)
	assert.NotZero(t, issuer.ID)

	issuer, err = f.svc.CreateIssuer(context.Background(), IssuerInput{Name: "B", PostalCode: "551-0031", Address: "手入力"})
	require.NoError(t, err)
	assert.Equal(t, "手入力", issuer.Address)
}

func TestCreateIssuer_LookupFailureDoesNotBlock(t *testing.T) {
	f := newServiceFixture(t)
	f.postal.err = postal.ErrLookupFailed

	issuer, err := f.svc.CreateIssuer(context.Background(), IssuerInput{Name: "A", PostalCode: "5510031"})
	require.NoError(t, err)
	assert.Empty(t, issuer.Address)
	assert.Equal(t, 1, f.postal.calls)
}

func TestUpdateAndDeleteIssuer(t *testing.T) {
	f := newServiceFixture(t)
	created, err := f.svc.CreateIssuer(context.Background(), IssuerInput{Name: "A", Address: "x"})
	require.NoError(t, err)

	updated, err := f.svc.UpdateIssuer(context.Background(), created.ID, IssuerInput{Name: "B", Address: "y"})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "B", updated.Name)

	_, err = f.svc.UpdateIssuer(context.Background(), 777, IssuerInput{Name: "B"})
	assert.ErrorIs(t, err, store.ErrIssuerNotFound)

	require.NoError(t, f.svc.DeleteIssuer(created.ID))
	_, err = f.svc.GetIssuer(created.ID)
	assert.ErrorIs(t, err, store.ErrIssuerNotFound)
	assert.ErrorIs(t, f.svc.DeleteIssuer(created.ID), store.ErrIssuerNotFound)
}

func TestRestoreDefaultIssuers(t *testing.T) {
	f := newServiceFixture(t)
	require.NoError(t, f.svc.DeleteIssuer(1))

	assert.Equal(t, 1, f.svc.RestoreDefaultIssuers())
	assert.Equal(t, 0, f.svc.RestoreDefaultIssuers())
}

func TestHistoryOperations(t *testing.T) {
	f := newServiceFixture(t)
	first, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1, CustomerName: "first"})
	require.NoError(t, err)
	second, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1, CustomerName: "second"})
	require.NoError(t, err)

	history := f.svc.ListHistory()
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)

	_, err = f.svc.GetHistoryRecord(12345)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	assert.Equal(t, 2, f.svc.ClearHistory())
	assert.Empty(t, f.svc.ListHistory())
}

func TestLookupPostalCode(t *testing.T) {
	f := newServiceFixture(t)

	res, err := f.svc.LookupPostalCode(context.Background(), "551-0031", "")
	require.NoError(t, err)
	assert.True(t, res.Filled)
	assert.Equal(t, "大阪府大阪市大正区泉尾", res.Address)

	res, err = f.svc.LookupPostalCode(context.Background(), "551-0031", "既存")
	require.NoError(t, err)
	assert.False(t, res.Filled)
	assert.Equal(t, "既存", res.Address)

	_, err = f.svc.LookupPostalCode(context.Background(), "55", "")
	assert.ErrorIs(t, err, ErrValidation)

	f.postal.err = postal.ErrNoResults
	_, err = f.svc.LookupPostalCode(context.Background(), "0000000", "")
	assert.ErrorIs(t, err, postal.ErrNoResults)
}

func TestFormatReceiptNumber(t *testing.T) {
	ts := time.Date(2025, 3, 9, 7, 5, 3, 0, time.UTC)
	assert.Equal(t, "R-20250309-0705", FormatReceiptNumber(NumberFormatMinute, ts))
	assert.Equal(t, "20250309-070503", FormatReceiptNumber(NumberFormatSecond, ts))
	assert.Equal(t, "R-20250309-0705", FormatReceiptNumber("", ts))
}

func TestLoadLocation_FallsBackToJST(t *testing.T) {
	loc := loadLocation("Mars/Olympus")
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 9*60*60, offset)
}

func TestTaxRateOverride(t *testing.T) {
	f := newServiceFixture(t)
	figures, err := f.svc.Calculate(CalcRequest{ProductAmount: 1000, TaxRate: floatPtr(0.08)})
	require.NoError(t, err)
	assert.Equal(t, int64(80), figures.TaxAmount)
}

func TestTaxRateOverride_OutOfRange(t *testing.T) {
	f := newServiceFixture(t)

	for _, rate := range []float64{-0.5, 1.5, 1e300} {
		_, err := f.svc.Calculate(CalcRequest{ProductAmount: 1000, TaxRate: floatPtr(rate)})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "rate %v", rate)
		assert.Equal(t, "taxRate", ve.Fields[0].Field)

		_, err = f.svc.IssueReceipt(context.Background(), ReceiptInput{IssuerID: 1, CalcRequest: CalcRequest{ProductAmount: 1000, TaxRate: floatPtr(rate)}})
		assert.ErrorIs(t, err, ErrValidation, "rate %v", rate)
	}
	assert.Empty(t, f.store.History())

	figures, err := f.svc.Calculate(CalcRequest{ProductAmount: 1000, TaxRate: floatPtr(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(2000), figures.TotalWithTax)
}

func TestIssueReceipt_RecordReproducesFigures(t *testing.T) {
	f := newServiceFixture(t)

	record, err := f.svc.IssueReceipt(context.Background(), ReceiptInput{
		IssuerID:    1,
		CalcRequest: CalcRequest{ProductAmount: 1000, ShippingAmount: 200, TaxRate: floatPtr(0.08)},
	})
	require.NoError(t, err)
	assert.Equal(t, record.Figures.TaxRate, record.TaxRate)

	strategy, err := billing.StrategyByName(record.TaxMode)
	require.NoError(t, err)
	again := billing.Calculate(strategy, billing.Input{
		ProductAmount:       record.ProductAmount,
		ShippingAmount:      record.ShippingAmount,
		TaxRate:             record.TaxRate,
		IsElectronicReceipt: record.IsElectronicReceipt,
	})
	assert.Equal(t, record.Figures, again)
}
