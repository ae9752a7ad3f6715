package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/tillpoint-api/internal/domain/entity"
	"github.com/sangkips/tillpoint-api/internal/domain/enum"
	"github.com/sangkips/tillpoint-api/internal/domain/repository"
	"github.com/sangkips/tillpoint-api/pkg/pagination"
)

// In-memory repositories. Each returns (nil, nil) for missing rows like the
// gorm implementations do.

type memProducts struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.Product
}

func newMemProducts(products ...entity.Product) *memProducts {
	m := &memProducts{rows: make(map[uuid.UUID]*entity.Product)}
	for i := range products {
		p := products[i]
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		m.rows[p.ID] = &p
	}
	return m
}

func (m *memProducts) Create(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	for _, existing := range m.rows {
		if existing.Code == p.Code {
			return repository.ErrDuplicate
		}
	}
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memProducts) CreateBatch(ctx context.Context, products []entity.Product) error {
	for i := range products {
		if err := m.Create(ctx, &products[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *memProducts) GetByID(_ context.Context, id uuid.UUID) (*entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, nil
}

func (m *memProducts) GetByIDs(_ context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Product
	for _, id := range ids {
		if p, ok := m.rows[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memProducts) find(match func(*entity.Product) bool) *entity.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.rows {
		if match(p) {
			cp := *p
			return &cp
		}
	}
	return nil
}

func (m *memProducts) GetByCode(_ context.Context, code string) (*entity.Product, error) {
	return m.find(func(p *entity.Product) bool { return p.Code == code }), nil
}

func (m *memProducts) GetByBarcode(_ context.Context, barcode string) (*entity.Product, error) {
	if p := m.find(func(p *entity.Product) bool { return p.Barcode != nil && *p.Barcode == barcode }); p != nil {
		return p, nil
	}
	return m.find(func(p *entity.Product) bool { return p.Code == barcode }), nil
}

func (m *memProducts) Update(_ context.Context, p *entity.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *p
	m.rows[p.ID] = &cp
	return nil
}

func (m *memProducts) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memProducts) all() []entity.Product {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Product, 0, len(m.rows))
	for _, p := range m.rows {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (m *memProducts) List(_ context.Context, _ *repository.ProductFilterParams) ([]entity.Product, int64, error) {
	out := m.all()
	return out, int64(len(out)), nil
}

func (m *memProducts) ListWithCursor(_ context.Context, _ *repository.ProductCursorFilterParams) ([]entity.Product, error) {
	return m.all(), nil
}

func (m *memProducts) Search(_ context.Context, query string, limit int) ([]entity.Product, error) {
	var out []entity.Product
	q := strings.ToLower(query)
	for _, p := range m.all() {
		if strings.Contains(strings.ToLower(p.Name), q) || strings.Contains(strings.ToLower(p.Code), q) {
			out = append(out, p)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memProducts) GetLowStock(_ context.Context) ([]entity.Product, error) {
	var out []entity.Product
	for _, p := range m.all() {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) StockLevels(_ context.Context) (map[uuid.UUID]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[uuid.UUID]int, len(m.rows))
	for id, p := range m.rows {
		out[id] = p.Quantity
	}
	return out, nil
}

func (m *memProducts) AtomicDecrementQuantity(_ context.Context, id uuid.UUID, amount int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.rows[id]
	if !ok || p.Quantity < amount {
		return false, nil
	}
	p.Quantity -= amount
	return true, nil
}

func (m *memProducts) AdjustQuantity(_ context.Context, id uuid.UUID, delta int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.rows[id]; ok {
		p.Quantity += delta
	}
	return nil
}

type memIdentifiers struct {
	mu       sync.Mutex
	rows     []entity.ProductIdentifier
	products *memProducts
}

func (m *memIdentifiers) CreateBatch(_ context.Context, identifiers []entity.ProductIdentifier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range identifiers {
		for _, r := range m.rows {
			if r.Value == identifiers[i].Value {
				return repository.ErrDuplicate
			}
		}
		if identifiers[i].ID == uuid.Nil {
			identifiers[i].ID = uuid.New()
		}
		m.rows = append(m.rows, identifiers[i])
	}
	return nil
}

func (m *memIdentifiers) GetByValue(_ context.Context, value string) (*entity.ProductIdentifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.Value == value {
			cp := r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memIdentifiers) ListByProduct(_ context.Context, productID uuid.UUID, includeSold bool) ([]entity.ProductIdentifier, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []entity.ProductIdentifier{}
	for _, r := range m.rows {
		if r.ProductID == productID && (includeSold || !r.Sold) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memIdentifiers) Search(ctx context.Context, query string, limit int) ([]entity.ProductIdentifier, error) {
	m.mu.Lock()
	var out []entity.ProductIdentifier
	for _, r := range m.rows {
		if strings.Contains(r.Value, query) && len(out) < limit {
			out = append(out, r)
		}
	}
	m.mu.Unlock()
	if m.products != nil {
		for i := range out {
			out[i].Product, _ = m.products.GetByID(ctx, out[i].ProductID)
		}
	}
	return out, nil
}

func (m *memIdentifiers) MarkSold(_ context.Context, value string, invoiceID *uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].Value == value {
			if m.rows[i].Sold {
				return false, nil
			}
			now := time.Now()
			m.rows[i].Sold = true
			m.rows[i].SoldAt = &now
			m.rows[i].InvoiceID = invoiceID
			return true, nil
		}
	}
	return false, nil
}

type memInvoices struct {
	mu        sync.Mutex
	rows      []*entity.Invoice
	customers *memCustomers
	// dupOnce makes the next Create fail with ErrDuplicate.
	dupOnce bool
}

func (m *memInvoices) Create(_ context.Context, inv *entity.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dupOnce {
		m.dupOnce = false
		return repository.ErrDuplicate
	}
	for _, r := range m.rows {
		if r.InvoiceNo == inv.InvoiceNo {
			return repository.ErrDuplicate
		}
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	for i := range inv.Items {
		inv.Items[i].ID = uuid.New()
		inv.Items[i].InvoiceID = inv.ID
	}
	cp := *inv
	cp.Items = append([]entity.InvoiceItem(nil), inv.Items...)
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memInvoices) get(id uuid.UUID) *entity.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == id {
			cp := *r
			return &cp
		}
	}
	return nil
}

func (m *memInvoices) GetByID(_ context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return m.get(id), nil
}

func (m *memInvoices) GetByInvoiceNo(_ context.Context, no string) (*entity.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.InvoiceNo == no {
			cp := *r
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memInvoices) GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	inv := m.get(id)
	if inv == nil {
		return nil, nil
	}
	if inv.CustomerID != nil && m.customers != nil {
		inv.Customer, _ = m.customers.GetByID(ctx, *inv.CustomerID)
	}
	return inv, nil
}

func (m *memInvoices) UpdatePayment(_ context.Context, inv *entity.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.ID == inv.ID {
			r.AmountPaid = inv.AmountPaid
			r.PaymentStatus = inv.PaymentStatus
		}
	}
	return nil
}

func (m *memInvoices) snapshot() []entity.Invoice {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]entity.Invoice, 0, len(m.rows))
	for _, r := range m.rows {
		out = append(out, *r)
	}
	return out
}

func (m *memInvoices) List(_ context.Context, _ *repository.InvoiceFilterParams) ([]entity.Invoice, int64, error) {
	out := m.snapshot()
	return out, int64(len(out)), nil
}

func (m *memInvoices) ListWithCursor(_ context.Context, _ *repository.InvoiceCursorFilterParams) ([]entity.Invoice, error) {
	return m.snapshot(), nil
}

func (m *memInvoices) ListUnpaidByCustomer(_ context.Context, customerID uuid.UUID) ([]entity.Invoice, error) {
	var out []entity.Invoice
	for _, inv := range m.snapshot() {
		if inv.CustomerID != nil && *inv.CustomerID == customerID && inv.Due() > 0 {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memInvoices) CountSince(_ context.Context, t time.Time) (int64, error) {
	var n int64
	for _, inv := range m.snapshot() {
		if !inv.InvoiceDate.Before(t) {
			n++
		}
	}
	return n, nil
}

type memCustomers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.Customer
}

func newMemCustomers() *memCustomers {
	return &memCustomers{rows: make(map[uuid.UUID]*entity.Customer)}
}

func (m *memCustomers) Create(_ context.Context, c *entity.Customer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	cp := *c
	m.rows[c.ID] = &cp
	return nil
}

func (m *memCustomers) GetByID(_ context.Context, id uuid.UUID) (*entity.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.rows[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, nil
}

func (m *memCustomers) GetByPhone(_ context.Context, phone string) (*entity.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.rows {
		if c.Phone != nil && *c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memCustomers) Update(ctx context.Context, c *entity.Customer) error {
	return m.Create(ctx, c)
}

func (m *memCustomers) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memCustomers) List(_ context.Context, _ *pagination.PaginationParams, _ string) ([]entity.Customer, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Customer
	for _, c := range m.rows {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (m *memCustomers) ListWithCursor(ctx context.Context, _ *pagination.CursorParams, search string) ([]entity.Customer, error) {
	out, _, err := m.List(ctx, nil, search)
	return out, err
}

type memSettings struct {
	mu         sync.Mutex
	business   *entity.BusinessSettings
	additional *entity.AdditionalInfo
}

func (m *memSettings) GetBusiness(_ context.Context) (*entity.BusinessSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.business == nil {
		return nil, nil
	}
	cp := *m.business
	return &cp, nil
}

func (m *memSettings) SaveBusiness(_ context.Context, s *entity.BusinessSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.business = &cp
	return nil
}

func (m *memSettings) GetAdditional(_ context.Context) (*entity.AdditionalInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.additional == nil {
		return nil, nil
	}
	cp := *m.additional
	return &cp, nil
}

func (m *memSettings) SaveAdditional(_ context.Context, a *entity.AdditionalInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	m.additional = &cp
	return nil
}

type memCashbook struct {
	mu   sync.Mutex
	rows []entity.CashbookEntry
}

func (m *memCashbook) Create(_ context.Context, e *entity.CashbookEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	m.rows = append(m.rows, *e)
	return nil
}

func (m *memCashbook) List(_ context.Context, f repository.CashbookFilter) ([]entity.CashbookEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.CashbookEntry
	for _, e := range m.rows {
		if f.StartDate != nil && e.Date.Before(*f.StartDate) {
			continue
		}
		if f.EndDate != nil && e.Date.After(*f.EndDate) {
			continue
		}
		if f.Type != nil && e.Type != *f.Type {
			continue
		}
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (m *memCashbook) SumBefore(_ context.Context, t time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var sum int64
	for _, e := range m.rows {
		if !e.Date.Before(t) {
			continue
		}
		if e.Type == enum.CashbookCashOut {
			sum -= e.Amount
		} else {
			sum += e.Amount
		}
	}
	return sum, nil
}

func (m *memCashbook) entries() []entity.CashbookEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]entity.CashbookEntry(nil), m.rows...)
}

type memFinance struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.FinanceRecord
}

func newMemFinance() *memFinance {
	return &memFinance{rows: make(map[uuid.UUID]*entity.FinanceRecord)}
}

func (m *memFinance) Create(_ context.Context, r *entity.FinanceRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	cp := *r
	m.rows[r.ID] = &cp
	return nil
}

func (m *memFinance) GetByID(_ context.Context, id uuid.UUID) (*entity.FinanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *memFinance) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, id)
	return nil
}

func (m *memFinance) List(_ context.Context, kind enum.FinanceKind, start, end *time.Time) ([]entity.FinanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.FinanceRecord
	for _, r := range m.rows {
		if r.Kind != kind {
			continue
		}
		if start != nil && r.Date.Before(*start) {
			continue
		}
		if end != nil && r.Date.After(*end) {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*entity.User
}

func newMemUsers(users ...entity.User) *memUsers {
	m := &memUsers{rows: make(map[uuid.UUID]*entity.User)}
	for i := range users {
		u := users[i]
		m.rows[u.ID] = &u
	}
	return m
}

func (m *memUsers) Create(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.rows {
		if existing.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.rows[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.rows {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) Update(_ context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

func (m *memUsers) ListByRole(_ context.Context, role string) ([]entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.User
	for _, u := range m.rows {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	return out, nil
}

type memAdmin struct {
	mu      sync.Mutex
	otps    []*entity.AdminOTP
	cleared int
}

func (m *memAdmin) CreateOTP(_ context.Context, otp *entity.AdminOTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if otp.ID == uuid.Nil {
		otp.ID = uuid.New()
	}
	cp := *otp
	m.otps = append(m.otps, &cp)
	return nil
}

func (m *memAdmin) LatestOTP(_ context.Context, userID uuid.UUID) (*entity.AdminOTP, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.otps) - 1; i >= 0; i-- {
		if o := m.otps[i]; o.UserID == userID && o.UsedAt == nil {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memAdmin) SaveOTP(_ context.Context, otp *entity.AdminOTP) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, o := range m.otps {
		if o.ID == otp.ID {
			cp := *otp
			m.otps[i] = &cp
		}
	}
	return nil
}

func (m *memAdmin) TableCounts(_ context.Context) (map[string]int64, error) {
	return map[string]int64{"invoices": 0}, nil
}

func (m *memAdmin) ClearBusinessData(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleared++
	return nil
}

// fakeMailer captures sent messages.
type fakeMailer struct {
	mu       sync.Mutex
	invoices []string
	otps     []string
	err      error
}

func (f *fakeMailer) Configured() bool { return true }

func (f *fakeMailer) SendInvoiceEmail(to, _, invoiceNo, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.invoices = append(f.invoices, to+" "+invoiceNo)
	return nil
}

func (f *fakeMailer) SendOTPEmail(_, _, otp string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.otps = append(f.otps, otp)
	return nil
}

func (f *fakeMailer) lastOTP() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.otps) == 0 {
		return ""
	}
	return f.otps[len(f.otps)-1]
}

type fakeTexter struct {
	sent []string
}

func (f *fakeTexter) Configured() bool { return true }

func (f *fakeTexter) Send(_ context.Context, phone, text string) error {
	f.sent = append(f.sent, phone+": "+text)
	return nil
}

// memStore records uploads in memory.
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore { return &memStore{objects: make(map[string][]byte)} }

func (s *memStore) Put(_ context.Context, name, _ string, data []byte) (string, error) {
	s.objects[name] = data
	return "https://files.test/" + name, nil
}

func (s *memStore) Delete(_ context.Context, name string) error {
	delete(s.objects, name)
	return nil
}
