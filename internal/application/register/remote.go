package register

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"github.com/sangkips/tillpoint-api/pkg/apiclient"
)

// Remote serves the register from another tillpoint API over HTTP. Reads are
// retried by the client; mutations are sent once.
type Remote struct {
	client *apiclient.Client
}

var _ Backend = (*Remote)(nil)

func NewRemote(client *apiclient.Client) *Remote {
	return &Remote{client: client}
}

type remoteProduct struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Barcode        *string `json:"barcode"`
	Code           string  `json:"code"`
	Quantity       int     `json:"quantity"`
	SellingPrice   float64 `json:"selling_price"`
	IdentifierType string  `json:"identifier_type"`
}

func (p remoteProduct) snapshot() pos.ProductSnapshot {
	s := pos.ProductSnapshot{
		ID:             p.ID,
		Name:           p.Name,
		Code:           p.Code,
		Price:          p.SellingPrice,
		Stock:          p.Quantity,
		IdentifierType: pos.IdentifierKind(p.IdentifierType),
	}
	if p.Barcode != nil {
		s.Barcode = *p.Barcode
	}
	return s
}

type remoteIdentifier struct {
	Value     string `json:"value"`
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Sold      bool   `json:"sold"`
	Product   *struct {
		Name string `json:"name"`
	} `json:"product"`
}

func (i remoteIdentifier) identifier() Identifier {
	out := Identifier{
		Value:     i.Value,
		Type:      pos.IdentifierKind(i.Type),
		ProductID: i.ProductID,
		Sold:      i.Sold,
	}
	if i.Product != nil {
		out.ProductName = i.Product.Name
	}
	return out
}

func (r *Remote) getProduct(ctx context.Context, path string) (*pos.ProductSnapshot, error) {
	var p remoteProduct
	err := r.client.GetJSON(ctx, path, &p)
	if apiclient.IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s := p.snapshot()
	return &s, nil
}

func (r *Remote) ProductByBarcode(ctx context.Context, code string) (*pos.ProductSnapshot, error) {
	return r.getProduct(ctx, "/api/products/barcode/"+url.PathEscape(code))
}

func (r *Remote) Product(ctx context.Context, id string) (*pos.ProductSnapshot, error) {
	return r.getProduct(ctx, "/api/products/"+url.PathEscape(id))
}

func (r *Remote) SearchProducts(ctx context.Context, query string, limit int) ([]pos.ProductSnapshot, error) {
	q := url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}}
	var products []remoteProduct
	if err := r.client.GetJSON(ctx, "/api/products/search?"+q.Encode(), &products); err != nil {
		return nil, err
	}
	out := make([]pos.ProductSnapshot, 0, len(products))
	for _, p := range products {
		out = append(out, p.snapshot())
	}
	return out, nil
}

func (r *Remote) identifiers(ctx context.Context, path string) ([]Identifier, error) {
	var idents []remoteIdentifier
	if err := r.client.GetJSON(ctx, path, &idents); err != nil {
		return nil, err
	}
	out := make([]Identifier, 0, len(idents))
	for _, i := range idents {
		out = append(out, i.identifier())
	}
	return out, nil
}

func (r *Remote) Available(ctx context.Context, kind pos.IdentifierKind, productID string) ([]Identifier, error) {
	return r.identifiers(ctx, "/api/identifiers/"+url.PathEscape(string(kind))+"/"+url.PathEscape(productID))
}

func (r *Remote) Lookup(ctx context.Context, value string) (*Identifier, error) {
	var ident remoteIdentifier
	err := r.client.GetJSON(ctx, "/api/identifiers/value/"+url.PathEscape(value), &ident)
	if apiclient.IsStatus(err, http.StatusNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	out := ident.identifier()
	return &out, nil
}

func (r *Remote) Search(ctx context.Context, query string, limit int) ([]Identifier, error) {
	q := url.Values{"q": {query}, "limit": {strconv.Itoa(limit)}}
	return r.identifiers(ctx, "/api/identifiers/search?"+q.Encode())
}

func (r *Remote) StockLevels(ctx context.Context) (map[string]int, error) {
	levels := map[string]int{}
	if err := r.client.LoadJSON(ctx, "/api/inventory", &levels); err != nil {
		return nil, err
	}
	return levels, nil
}

func (r *Remote) CreateInvoice(ctx context.Context, req InvoiceRequest) (*InvoiceResult, error) {
	var out InvoiceResult
	if err := r.client.Send(ctx, http.MethodPost, "/api/invoices", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Remote) DeductStock(ctx context.Context, productID string, quantity int) error {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	return r.client.Send(ctx, http.MethodPost, "/api/inventory/deduct", body, nil)
}

func (r *Remote) MarkSold(ctx context.Context, value, invoiceID string) error {
	body := map[string]any{"value": value, "invoice_id": invoiceID}
	return r.client.Send(ctx, http.MethodPost, "/api/identifiers/mark-sold", body, nil)
}

func (r *Remote) Render(ctx context.Context, invoiceID string, format enum.ReceiptFormat) (string, []byte, error) {
	return r.client.GetRaw(ctx, "/api/invoices/"+url.PathEscape(invoiceID)+"/receipt?format="+format.String())
}

func (r *Remote) SendEmail(ctx context.Context, invoiceID, to string) error {
	return r.client.Send(ctx, http.MethodPost, "/api/invoices/"+url.PathEscape(invoiceID)+"/email", map[string]string{"email": to}, nil)
}

func (r *Remote) SendSMS(ctx context.Context, invoiceID, phone string) error {
	return r.client.Send(ctx, http.MethodPost, "/api/invoices/"+url.PathEscape(invoiceID)+"/sms", map[string]string{"phone": phone}, nil)
}

func (r *Remote) DefaultTaxRate(ctx context.Context) (float64, error) {
	var settings struct {
		TaxRate float64 `json:"tax_rate"`
	}
	if err := r.client.GetJSON(ctx, "/api/business-settings", &settings); err != nil {
		return 0, err
	}
	return settings.TaxRate, nil
}
