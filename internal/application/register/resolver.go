package register

import (
	"context"
	"strings"

	"github.com/sangkips/tillpoint-api/internal/domain/pos"
	"golang.org/x/sync/errgroup"
)

type ScanOutcome string

const (
	OutcomeAdded            ScanOutcome = "added"
	OutcomeSelectIdentifier ScanOutcome = "select_identifier"
	OutcomeSuggestions      ScanOutcome = "suggestions"
	OutcomeNotFound         ScanOutcome = "not_found"
	OutcomeAlreadySold      ScanOutcome = "already_sold"
)

const defaultSearchLimit = 20

type ScanResult struct {
	Outcome     ScanOutcome          `json:"outcome"`
	Tab         *pos.TabState        `json:"tab,omitempty"`
	Product     *pos.ProductSnapshot `json:"product,omitempty"`
	Identifiers []Identifier         `json:"identifiers,omitempty"`
	Suggestions []SearchHit          `json:"suggestions,omitempty"`
	Message     string               `json:"message,omitempty"`
}

// SearchHit is one row of the merged product and identifier search.
type SearchHit struct {
	Kind       string               `json:"kind"`
	Product    *pos.ProductSnapshot `json:"product,omitempty"`
	Identifier *Identifier          `json:"identifier,omitempty"`
	Selectable bool                 `json:"selectable"`
	Reason     string               `json:"reason,omitempty"`
}

// Resolver turns scanner input into cart changes.
type Resolver struct {
	catalog     Catalog
	identifiers IdentifierSource
	stock       *StockCache
}

func NewResolver(catalog Catalog, identifiers IdentifierSource, stock *StockCache) *Resolver {
	return &Resolver{catalog: catalog, identifiers: identifiers, stock: stock}
}

func (rs *Resolver) available(p *pos.ProductSnapshot) int {
	if rs.stock == nil {
		return p.Stock
	}
	return rs.stock.Available(p.ID, p.Stock)
}

// Scan resolves code against the active cart of tabID. commit is true when
// the cashier pressed Enter; without it an unmatched code only yields
// suggestions. Lookup failures leave the cart as it was.
func (rs *Resolver) Scan(ctx context.Context, reg *Register, tabID, code string, commit bool) (*ScanResult, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, ErrEmptyCode
	}
	tab, err := reg.Tab(tabID)
	if err != nil {
		return nil, err
	}

	p, err := rs.catalog.ProductByBarcode(ctx, code)
	if err != nil {
		return nil, err
	}
	if p != nil {
		if !p.Serialized() {
			next, err := reg.mutate(tabID, func(t pos.TabState) (pos.TabState, error) {
				return pos.AddProduct(t, *p, rs.available(p))
			})
			if err != nil {
				return nil, err
			}
			return &ScanResult{Outcome: OutcomeAdded, Tab: &next, Product: p}, nil
		}

		ids, err := rs.identifiers.Available(ctx, p.IdentifierType, p.ID)
		if err != nil {
			return nil, err
		}
		return &ScanResult{
			Outcome:     OutcomeSelectIdentifier,
			Product:     p,
			Identifiers: notInCart(ids, tab.Cart),
		}, nil
	}

	if !commit {
		hits, err := rs.Search(ctx, code, defaultSearchLimit)
		if err != nil {
			return nil, err
		}
		return &ScanResult{Outcome: OutcomeSuggestions, Suggestions: hits}, nil
	}

	// a committed code may be a unit identifier typed or scanned directly
	ident, err := rs.identifiers.Lookup(ctx, code)
	if err != nil {
		return nil, err
	}
	if ident == nil {
		return &ScanResult{Outcome: OutcomeNotFound, Message: "No product or identifier matches " + code}, nil
	}
	if ident.Sold {
		return &ScanResult{Outcome: OutcomeAlreadySold, Message: ident.Value + " is already sold"}, nil
	}
	next, prod, err := rs.addIdentified(ctx, reg, tabID, ident)
	if err != nil {
		return nil, err
	}
	return &ScanResult{Outcome: OutcomeAdded, Tab: &next, Product: prod}, nil
}

// SelectIdentifier adds one serialized unit after confirming it is still unsold.
func (rs *Resolver) SelectIdentifier(ctx context.Context, reg *Register, tabID, productID, value string) (pos.TabState, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return pos.TabState{}, pos.ErrIdentifierRequired
	}
	if _, err := reg.Tab(tabID); err != nil {
		return pos.TabState{}, err
	}
	ident, err := rs.identifiers.Lookup(ctx, value)
	if err != nil {
		return pos.TabState{}, err
	}
	if ident == nil {
		return pos.TabState{}, ErrIdentifierNotFound
	}
	if productID != "" && ident.ProductID != productID {
		return pos.TabState{}, ErrIdentifierMismatch
	}
	next, _, err := rs.addIdentified(ctx, reg, tabID, ident)
	return next, err
}

func (rs *Resolver) addIdentified(ctx context.Context, reg *Register, tabID string, ident *Identifier) (pos.TabState, *pos.ProductSnapshot, error) {
	if ident.Sold {
		return pos.TabState{}, nil, ErrIdentifierSold
	}
	p, err := rs.catalog.Product(ctx, ident.ProductID)
	if err != nil {
		return pos.TabState{}, nil, err
	}
	if p == nil {
		return pos.TabState{}, nil, ErrProductNotFound
	}
	if !p.Serialized() {
		p.IdentifierType = ident.Type
	}
	next, err := reg.mutate(tabID, func(t pos.TabState) (pos.TabState, error) {
		return pos.AddIdentifiedUnit(t, *p, ident.Value)
	})
	if err != nil {
		return pos.TabState{}, nil, err
	}
	return next, p, nil
}

// Search runs the product and identifier searches concurrently. Products come
// first, then unsold identifiers, then sold ones, which are listed but not
// selectable.
func (rs *Resolver) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []SearchHit{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var (
		products []pos.ProductSnapshot
		idents   []Identifier
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		products, err = rs.catalog.SearchProducts(gctx, query, limit)
		return err
	})
	g.Go(func() error {
		var err error
		idents, err = rs.identifiers.Search(gctx, query, limit)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(products)+len(idents))
	for i := range products {
		hits = append(hits, SearchHit{Kind: "product", Product: &products[i], Selectable: true})
	}
	var sold []SearchHit
	for i := range idents {
		id := &idents[i]
		if id.Sold {
			sold = append(sold, SearchHit{Kind: "identifier", Identifier: id, Reason: "already sold"})
			continue
		}
		hits = append(hits, SearchHit{Kind: "identifier", Identifier: id, Selectable: true})
	}
	return append(hits, sold...), nil
}

func notInCart(ids []Identifier, cart []pos.CartLine) []Identifier {
	inCart := make(map[string]bool, len(cart))
	for _, l := range cart {
		if l.IdentifierValue != "" {
			inCart[l.IdentifierValue] = true
		}
	}
	out := make([]Identifier, 0, len(ids))
	for _, id := range ids {
		if !id.Sold && !inCart[id.Value] {
			out = append(out, id)
		}
	}
	return out
}
