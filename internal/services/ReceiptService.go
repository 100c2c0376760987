package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"receiptd/internal/apperror"
	"receiptd/internal/billing"
	"receiptd/internal/document"
	"receiptd/internal/models"
	"receiptd/internal/postal"
	"receiptd/internal/printing"
	"receiptd/internal/providers"
	"receiptd/internal/store"
	"receiptd/internal/structures"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gookit/validate"
)

// IssuerHistoryStore is the part of store.Store the service depends on.
type IssuerHistoryStore interface {
	Issuers() []models.Issuer
	FindIssuer(id int64) (models.Issuer, bool)
	AddIssuer(issuer models.Issuer) models.Issuer
	UpdateIssuer(id int64, issuer models.Issuer) (models.Issuer, error)
	RemoveIssuer(id int64) error
	RestoreDefaultIssuers() int
	History() []models.ReceiptRecord
	FindHistoryRecord(id int64) (models.ReceiptRecord, bool)
	AddHistoryRecord(record models.ReceiptRecord) models.ReceiptRecord
	RemoveHistoryRecord(id int64) error
	ClearHistory() int
}

type PostalLookupInterface interface {
	Lookup(ctx context.Context, code string) ([]postal.Candidate, error)
}

type ReceiptServiceInterface interface {
	Calculate(req CalcRequest) (billing.Figures, error)
	IssueReceipt(ctx context.Context, in ReceiptInput) (models.ReceiptRecord, error)
	RenderReceipt(id int64, format string) (*Rendered, error)
	PrintReceipt(id int64, format string) (*PrintJob, error)

	ListIssuers() []models.Issuer
	GetIssuer(id int64) (models.Issuer, error)
	CreateIssuer(ctx context.Context, in IssuerInput) (models.Issuer, error)
	UpdateIssuer(ctx context.Context, id int64, in IssuerInput) (models.Issuer, error)
	DeleteIssuer(id int64) error
	RestoreDefaultIssuers() int

	ListHistory() []models.ReceiptRecord
	GetHistoryRecord(id int64) (models.ReceiptRecord, error)
	DeleteHistoryRecord(id int64) error
	ClearHistory() int

	LookupPostalCode(ctx context.Context, code, currentAddress string) (*PostalResult, error)
}

type Rendered struct {
	Format      string
	ContentType string
	Extension   string
	Body        []byte
}

type PrintJob struct {
	ID     string `json:"id"`
	Format string `json:"format"`
	Output string `json:"output,omitempty"`
}

type PostalResult struct {
	Candidates []postal.Candidate `json:"candidates"`
	Address    string             `json:"address"`
	Filled     bool               `json:"filled"`
}

type ReceiptService struct {
	conf     *structures.Config
	logger   providers.Logger
	store    IssuerHistoryStore
	formats  *document.Registry
	printer  printing.Printer
	postal   PostalLookupInterface
	cache    providers.CacheProviderInterface
	metrics  providers.MetricsProviderInterface
	location *time.Location
	now      func() time.Time
}

func NewReceiptService(
	conf *structures.Config,
	logger providers.Logger,
	issuerStore IssuerHistoryStore,
	formats *document.Registry,
	printer printing.Printer,
	lookup PostalLookupInterface,
	cache providers.CacheProviderInterface,
	metrics providers.MetricsProviderInterface,
) *ReceiptService {
	return &ReceiptService{
		conf:     conf,
		logger:   logger,
		store:    issuerStore,
		formats:  formats,
		printer:  printer,
		postal:   lookup,
		cache:    cache,
		metrics:  metrics,
		location: loadLocation(conf.Billing.Timezone),
		now:      time.Now,
	}
}

// SetClock replaces the wall clock used for receipt numbers and dates.
func (s *ReceiptService) SetClock(now func() time.Time) {
	s.now = now
}

func (s *ReceiptService) strategy(mode string) (billing.Strategy, error) {
	if mode == "" {
		mode = s.conf.Billing.TaxMode
	}
	return billing.StrategyByName(mode)
}

// input resolves request defaults from config. A per-request tax rate must
// lie in [0, 1].
func (s *ReceiptService) input(req CalcRequest) (billing.Input, error) {
	rate := s.conf.Billing.TaxRate
	if req.TaxRate != nil {
		if err := billing.CheckTaxRate(*req.TaxRate); err != nil {
			return billing.Input{}, fieldError("taxRate", billing.ErrInvalidTaxRate.Error())
		}
		rate = *req.TaxRate
	}
	electronic := s.conf.Billing.ElectronicByDefault
	if req.IsElectronicReceipt != nil {
		electronic = *req.IsElectronicReceipt
	}
	shipping := req.ShippingAmount.Int64()
	if req.ShippingEnabled != nil && !*req.ShippingEnabled {
		shipping = 0
	}
	return billing.Input{
		ProductAmount:       req.ProductAmount.Int64(),
		ShippingAmount:      shipping,
		TaxRate:             rate,
		IsElectronicReceipt: electronic,
	}, nil
}

func (s *ReceiptService) Calculate(req CalcRequest) (billing.Figures, error) {
	strategy, err := s.strategy(req.TaxMode)
	if err != nil {
		return billing.Figures{}, err
	}
	calc, err := s.input(req)
	if err != nil {
		return billing.Figures{}, err
	}
	return billing.Calculate(strategy, calc), nil
}

func (s *ReceiptService) IssueReceipt(ctx context.Context, in ReceiptInput) (models.ReceiptRecord, error) {
	if err := ctx.Err(); err != nil {
		return models.ReceiptRecord{}, err
	}

	issuer, ok := s.store.FindIssuer(in.IssuerID)
	if in.IssuerID == 0 || !ok {
		return models.ReceiptRecord{}, ErrIssuerRequired
	}

	strategy, err := s.strategy(in.TaxMode)
	if err != nil {
		return models.ReceiptRecord{}, err
	}

	now := s.now().In(s.location)
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = now.Format("2006-01-02")
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return models.ReceiptRecord{}, fieldError("date", "date must be YYYY-MM-DD")
	}

	description := strings.TrimSpace(in.Description)
	if description == "" {
		description = models.DefaultDescription
	}

	shippingEnabled := in.ShippingEnabled == nil || *in.ShippingEnabled
	calc, err := s.input(in.CalcRequest)
	if err != nil {
		return models.ReceiptRecord{}, err
	}
	figures := billing.Calculate(strategy, calc)

	record := s.store.AddHistoryRecord(models.ReceiptRecord{
		ReceiptNumber:       FormatReceiptNumber(s.conf.Billing.ReceiptNumberFormat, now),
		Date:                date,
		CreatedAt:           now,
		CustomerName:        strings.TrimSpace(in.CustomerName),
		CustomerSuffix:      strings.TrimSpace(in.CustomerSuffix),
		Description:         description,
		ProductAmount:       calc.ProductAmount,
		ShippingAmount:      calc.ShippingAmount,
		ShippingEnabled:     shippingEnabled,
		TaxRate:             figures.TaxRate,
		TaxMode:             strategy.Name(),
		IsElectronicReceipt: calc.IsElectronicReceipt,
		Figures:             figures,
		Issuer:              issuer,
	})

	s.metrics.IncReceiptsIssued(strategy.Name())
	s.logger.Infof(providers.TypePost, "Issued receipt %s total=%d issuer=%d", record.ReceiptNumber, figures.TotalWithTax, issuer.ID)
	return record, nil
}

func renderCacheKey(id int64, format string) string {
	return "doc:" + strconv.FormatInt(id, 10) + ":" + format
}

// RenderReceipt formats a history record. Records never change once issued,
// so the output is cached by id and format.
func (s *ReceiptService) RenderReceipt(id int64, format string) (*Rendered, error) {
	formatter, err := s.formats.Get(format)
	if err != nil {
		return nil, err
	}

	record, ok := s.store.FindHistoryRecord(id)
	if !ok {
		return nil, store.ErrRecordNotFound
	}

	out := &Rendered{Format: formatter.Name(), ContentType: formatter.ContentType(), Extension: formatter.Extension()}
	if body, ok := s.cache.Get(renderCacheKey(id, format)); ok {
		out.Body = body
		return out, nil
	}

	body, err := formatter.Format(document.Build(record))
	if err != nil {
		return nil, fmt.Errorf("render %s as %s: %w", record.ReceiptNumber, format, err)
	}
	s.cache.Set(renderCacheKey(id, format), body)
	out.Body = body
	return out, nil
}

func (s *ReceiptService) PrintReceipt(id int64, format string) (*PrintJob, error) {
	if _, ok := s.store.FindHistoryRecord(id); !ok {
		return nil, store.ErrRecordNotFound
	}
	if _, err := s.formats.Get(format); err != nil {
		return nil, err
	}
	if !s.printer.IsConnected() {
		s.logger.Warnf(providers.TypePrint, "Printer unavailable for receipt %d", id)
		return nil, ErrPrinterUnavailable
	}

	rendered, err := s.RenderReceipt(id, format)
	if err != nil {
		return nil, err
	}

	job := &PrintJob{ID: uuid.NewString(), Format: rendered.Format}
	if jp, ok := s.printer.(printing.JobPrinter); ok {
		path, err := jp.PrintJob(rendered.Body, rendered.Extension)
		if err != nil {
			s.logger.Errorf(providers.TypePrint, "Print job for receipt %d failed: %s", id, err)
			return nil, fmt.Errorf("%w: %s", ErrPrintFailed, err)
		}
		job.ID = strings.TrimSuffix(filepath.Base(path), "."+rendered.Extension)
		job.Output = path
	} else if err := s.printer.Print(rendered.Body); err != nil {
		s.logger.Errorf(providers.TypePrint, "Print job for receipt %d failed: %s", id, err)
		return nil, fmt.Errorf("%w: %s", ErrPrintFailed, err)
	}

	s.logger.Infof(providers.TypePrint, "Printed receipt %d as %s (job %s)", id, rendered.Format, job.ID)
	return job, nil
}

func (s *ReceiptService) ListIssuers() []models.Issuer {
	return s.store.Issuers()
}

func (s *ReceiptService) GetIssuer(id int64) (models.Issuer, error) {
	issuer, ok := s.store.FindIssuer(id)
	if !ok {
		return models.Issuer{}, store.ErrIssuerNotFound
	}
	return issuer, nil
}

func validateIssuer(in IssuerInput) error {
	v := validate.Struct(&in)
	if v.Validate() {
		return nil
	}

	fields := make([]apperror.FieldError, 0, len(v.Errors))
	for field, msgs := range v.Errors {
		for _, msg := range msgs {
			fields = append(fields, apperror.FieldError{Field: jsonFieldName(field), Message: msg})
		}
	}
	sort.Slice(fields, func(i, j int) bool {
		if fields[i].Field != fields[j].Field {
			return fields[i].Field < fields[j].Field
		}
		return fields[i].Message < fields[j].Message
	})
	return &ValidationError{Fields: fields}
}

// jsonFieldName turns a struct field name such as PostalCode into the
// request key postalCode.
func jsonFieldName(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}

// fillAddress completes a blank address from the postal code. Lookup
// problems are logged and otherwise ignored.
func (s *ReceiptService) fillAddress(ctx context.Context, in IssuerInput) IssuerInput {
	if s.postal == nil || in.PostalCode == "" || strings.TrimSpace(in.Address) != "" {
		return in
	}
	candidates, err := s.postal.Lookup(ctx, in.PostalCode)
	if err != nil {
		s.logger.Infof(providers.TypePostal, "Address fill for %s skipped: %s", in.PostalCode, err)
		return in
	}
	if address, ok := postal.FillAddress(in.Address, candidates); ok {
		in.Address = address
	}
	return in
}

func (s *ReceiptService) CreateIssuer(ctx context.Context, in IssuerInput) (models.Issuer, error) {
	in = in.normalized()
	if err := validateIssuer(in); err != nil {
		return models.Issuer{}, err
	}
	in = s.fillAddress(ctx, in)

	issuer := s.store.AddIssuer(in.toIssuer(0))
	s.logger.Infof(providers.TypePost, "Added issuer %d", issuer.ID)
	return issuer, nil
}

func (s *ReceiptService) UpdateIssuer(ctx context.Context, id int64, in IssuerInput) (models.Issuer, error) {
	if _, ok := s.store.FindIssuer(id); !ok {
		return models.Issuer{}, store.ErrIssuerNotFound
	}
	in = in.normalized()
	if err := validateIssuer(in); err != nil {
		return models.Issuer{}, err
	}
	in = s.fillAddress(ctx, in)

	issuer, err := s.store.UpdateIssuer(id, in.toIssuer(id))
	if err != nil {
		return models.Issuer{}, err
	}
	s.logger.Infof(providers.TypePost, "Updated issuer %d", id)
	return issuer, nil
}

func (s *ReceiptService) DeleteIssuer(id int64) error {
	if err := s.store.RemoveIssuer(id); err != nil {
		return err
	}
	s.logger.Infof(providers.TypePost, "Removed issuer %d", id)
	return nil
}

func (s *ReceiptService) RestoreDefaultIssuers() int {
	added := s.store.RestoreDefaultIssuers()
	s.logger.Infof(providers.TypePost, "Restored %d default issuers", added)
	return added
}

func (s *ReceiptService) ListHistory() []models.ReceiptRecord {
	return s.store.History()
}

func (s *ReceiptService) GetHistoryRecord(id int64) (models.ReceiptRecord, error) {
	record, ok := s.store.FindHistoryRecord(id)
	if !ok {
		return models.ReceiptRecord{}, store.ErrRecordNotFound
	}
	return record, nil
}

func (s *ReceiptService) DeleteHistoryRecord(id int64) error {
	return s.store.RemoveHistoryRecord(id)
}

func (s *ReceiptService) ClearHistory() int {
	n := s.store.ClearHistory()
	s.logger.Infof(providers.TypePost, "Cleared %d history records", n)
	return n
}

func (s *ReceiptService) LookupPostalCode(ctx context.Context, code, currentAddress string) (*PostalResult, error) {
	if s.postal == nil {
		return nil, postal.ErrLookupDisabled
	}
	candidates, err := s.postal.Lookup(ctx, code)
	if err != nil {
		if errors.Is(err, postal.ErrInvalidPostalCode) {
			return nil, fieldError("postalCode", err.Error())
		}
		return nil, err
	}
	address, filled := postal.FillAddress(currentAddress, candidates)
	return &PostalResult{Candidates: candidates, Address: address, Filled: filled}, nil
}
