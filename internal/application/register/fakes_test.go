package register

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
)

var errNetwork = errors.New("connection refused")

type fakeBackend struct {
	mu sync.Mutex

	products    map[string]pos.ProductSnapshot // by barcode
	identifiers map[string]Identifier          // by value
	levels      map[string]int
	taxRate     float64

	identifierErr error
	invoiceErr    error
	renderErr     error
	emailErr      error

	invoiceCalls []InvoiceRequest
	deducted     map[string]int
	markedSold   []string
	printed      [][]byte
	emails       []string
	texts        []string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		products:    map[string]pos.ProductSnapshot{},
		identifiers: map[string]Identifier{},
		levels:      map[string]int{},
		deducted:    map[string]int{},
	}
}

func (f *fakeBackend) addProduct(barcode string, p pos.ProductSnapshot) {
	f.products[barcode] = p
	f.levels[p.ID] = p.Stock
}

func (f *fakeBackend) addIdentifier(i Identifier) {
	f.identifiers[i.Value] = i
}

func (f *fakeBackend) ProductByBarcode(_ context.Context, code string) (*pos.ProductSnapshot, error) {
	p, ok := f.products[code]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (f *fakeBackend) Product(_ context.Context, id string) (*pos.ProductSnapshot, error) {
	for _, p := range f.products {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (f *fakeBackend) SearchProducts(_ context.Context, query string, _ int) ([]pos.ProductSnapshot, error) {
	var out []pos.ProductSnapshot
	for _, p := range f.products {
		if strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeBackend) Available(_ context.Context, _ pos.IdentifierKind, productID string) ([]Identifier, error) {
	if f.identifierErr != nil {
		return nil, f.identifierErr
	}
	var out []Identifier
	for _, i := range f.identifiers {
		if i.ProductID == productID && !i.Sold {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeBackend) Lookup(_ context.Context, value string) (*Identifier, error) {
	if f.identifierErr != nil {
		return nil, f.identifierErr
	}
	i, ok := f.identifiers[value]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (f *fakeBackend) Search(_ context.Context, query string, _ int) ([]Identifier, error) {
	if f.identifierErr != nil {
		return nil, f.identifierErr
	}
	var out []Identifier
	for _, i := range f.identifiers {
		if strings.Contains(i.Value, query) {
			out = append(out, i)
		}
	}
	return out, nil
}

func (f *fakeBackend) StockLevels(context.Context) (map[string]int, error) {
	out := make(map[string]int, len(f.levels))
	for k, v := range f.levels {
		out[k] = v
	}
	return out, nil
}

func (f *fakeBackend) CreateInvoice(_ context.Context, req InvoiceRequest) (*InvoiceResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invoiceCalls = append(f.invoiceCalls, req)
	if f.invoiceErr != nil {
		return nil, f.invoiceErr
	}
	return &InvoiceResult{ID: "inv-1", InvoiceNo: "INV-0001"}, nil
}

func (f *fakeBackend) DeductStock(_ context.Context, productID string, quantity int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deducted[productID] += quantity
	return nil
}

func (f *fakeBackend) MarkSold(_ context.Context, value, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.markedSold = append(f.markedSold, value)
	return nil
}

func (f *fakeBackend) Render(_ context.Context, _ string, format enum.ReceiptFormat) (string, []byte, error) {
	if f.renderErr != nil {
		return "", nil, f.renderErr
	}
	if format.Thermal() {
		return "application/vnd.escpos", []byte("ESC/POS " + format.String()), nil
	}
	return "text/html; charset=utf-8", []byte("<html>" + format.String() + "</html>"), nil
}

func (f *fakeBackend) SendEmail(_ context.Context, _, to string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.emailErr != nil {
		return f.emailErr
	}
	f.emails = append(f.emails, to)
	return nil
}

func (f *fakeBackend) SendSMS(_ context.Context, _, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, phone)
	return nil
}

func (f *fakeBackend) DefaultTaxRate(context.Context) (float64, error) {
	return f.taxRate, nil
}

func (f *fakeBackend) Print(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.printed = append(f.printed, data)
	return nil
}

var (
	soap    = pos.ProductSnapshot{ID: "p-soap", Name: "Bar Soap", Barcode: "6001", Price: 50, Stock: 3, IdentifierType: pos.IdentifierNone}
	handset = pos.ProductSnapshot{ID: "p-phone", Name: "Phone X", Barcode: "7001", Price: 20000, Stock: 5, IdentifierType: pos.IdentifierIMEI}
)

// seededBackend has one plain product and one serialized product with two
// free units and one sold unit.
func seededBackend() *fakeBackend {
	f := newFakeBackend()
	f.addProduct(soap.Barcode, soap)
	f.addProduct(handset.Barcode, handset)
	f.addIdentifier(Identifier{Value: "IMEI-111", Type: pos.IdentifierIMEI, ProductID: handset.ID})
	f.addIdentifier(Identifier{Value: "IMEI-222", Type: pos.IdentifierIMEI, ProductID: handset.ID})
	f.addIdentifier(Identifier{Value: "IMEI-999", Type: pos.IdentifierIMEI, ProductID: handset.ID, Sold: true})
	return f
}

func loadedStock(f *fakeBackend) *StockCache {
	s := NewStockCache(f, 0)
	_ = s.Refresh(context.Background())
	return s
}
