package iiko

import (
	"context"
	"net/url"
	"time"
)

// SupplierSearch filters SearchSuppliers. The server never searches by id.
type SupplierSearch struct {
	Name             string
	Code             string
	Phone            string
	CellPhone        string
	FirstName        string
	MiddleName       string
	LastName         string
	Email            string
	CardNumber       string
	TaxpayerIDNumber string
}

func (s SupplierSearch) params() Params {
	return NewParams().
		AddString("name", s.Name).
		AddString("code", s.Code).
		AddString("phone", s.Phone).
		AddString("cellPhone", s.CellPhone).
		AddString("firstName", s.FirstName).
		AddString("middleName", s.MiddleName).
		AddString("lastName", s.LastName).
		AddString("email", s.Email).
		AddString("cardNumber", s.CardNumber).
		AddString("taxpayerIdNumber", s.TaxpayerIDNumber)
}

// ListSuppliers retrieves all suppliers, optionally since a revision
func (c *Client) ListSuppliers(ctx context.Context, revisionFrom *int64) ([]Supplier, error) {
	return c.getSuppliers(ctx, "suppliers", NewParams().AddInt("revisionFrom", revisionFrom))
}

// SearchSuppliers finds suppliers matching every non-empty field of search
func (c *Client) SearchSuppliers(ctx context.Context, search SupplierSearch) ([]Supplier, error) {
	return c.getSuppliers(ctx, "suppliers/search", search.params())
}

func (c *Client) getSuppliers(ctx context.Context, path string, params Params) ([]Supplier, error) {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var wrapper suppliers
	if err := decodeXML(body, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Items, nil
}

// GetSupplierPriceList retrieves the supplier's price list valid from date,
// or the latest one when date is nil
func (c *Client) GetSupplierPriceList(ctx context.Context, code string, date *time.Time) ([]PriceListItem, error) {
	params := NewParams().AddTime("date", date, "02.01.2006")
	body, err := c.Get(ctx, "suppliers/"+url.PathEscape(code)+"/pricelist", params)
	if err != nil {
		return nil, err
	}

	var wrapper priceList
	if err := decodeXML(body, &wrapper); err != nil {
		return nil, err
	}

	// a price list with a single entry comes back unwrapped
	if wrapper.XMLName.Local == "supplierPriceListItemDto" {
		var item PriceListItem
		if err := decodeXML(body, &item); err != nil {
			return nil, err
		}
		return []PriceListItem{item}, nil
	}

	return wrapper.Items, nil
}
