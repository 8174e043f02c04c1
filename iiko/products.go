package iiko

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// ProductQuery filters ListProducts. Nil and empty fields are not sent.
type ProductQuery struct {
	IncludeDeleted *bool
	IDs            []string
	Nums           []string
	Types          []ProductType
	CategoryIDs    []string
	ParentIDs      []string
}

// SaveProductOptions controls code generation on import
type SaveProductOptions struct {
	GenerateNomenclatureCode *bool
	GenerateFastCode         *bool
}

// UpdateProductOptions controls code regeneration on update
type UpdateProductOptions struct {
	OverrideFastCode         *bool
	OverrideNomenclatureCode *bool
}

const resultError = "ERROR"

// ListProducts retrieves nomenclature items
func (c *Client) ListProducts(ctx context.Context, query ProductQuery) ([]Product, error) {
	types := make([]string, 0, len(query.Types))
	for _, t := range query.Types {
		types = append(types, string(t))
	}

	params := NewParams().
		AddBool("includeDeleted", query.IncludeDeleted).
		AddAll("ids", query.IDs).
		AddAll("nums", query.Nums).
		AddAll("types", types).
		AddAll("categoryIds", query.CategoryIDs).
		AddAll("parentIds", query.ParentIDs)

	body, err := c.Get(ctx, "v2/entities/products/list", params)
	if err != nil {
		return nil, err
	}

	var products []Product
	if err := decodeJSON(body, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SaveProduct imports a new nomenclature item
func (c *Client) SaveProduct(ctx context.Context, product Product, opts SaveProductOptions) (*ProductResult, error) {
	params := NewParams().
		AddBool("generateNomenclatureCode", opts.GenerateNomenclatureCode).
		AddBool("generateFastCode", opts.GenerateFastCode)
	return c.writeProduct(ctx, "v2/entities/products/save", product, params)
}

// UpdateProduct edits an existing item; product.ID is required
func (c *Client) UpdateProduct(ctx context.Context, product Product, opts UpdateProductOptions) (*ProductResult, error) {
	if product.ID == nil {
		return nil, &Error{Kind: KindBadRequest, Message: "product id is required for update"}
	}
	params := NewParams().
		AddBool("overrideFastCode", opts.OverrideFastCode).
		AddBool("overrideNomenclatureCode", opts.OverrideNomenclatureCode)
	return c.writeProduct(ctx, "v2/entities/products/update", product, params)
}

func (c *Client) writeProduct(ctx context.Context, path string, product Product, params Params) (*ProductResult, error) {
	payload, err := encodeJSON(product)
	if err != nil {
		return nil, err
	}

	body, err := c.Post(ctx, path, payload, ContentTypeJSON, params)
	if err != nil {
		return nil, err
	}

	var result ProductResult
	if err := decodeJSON(body, &result); err != nil {
		return nil, err
	}
	if result.Result == resultError {
		return &result, operationError(result.Errors)
	}
	return &result, nil
}

// DeleteProducts marks the given items as deleted
func (c *Client) DeleteProducts(ctx context.Context, ids []uuid.UUID) (*ProductsResult, error) {
	return c.productsOperation(ctx, "v2/entities/products/delete", ids, nil)
}

// RestoreProducts undeletes the given items
func (c *Client) RestoreProducts(ctx context.Context, ids []uuid.UUID, overrideNomenclatureCode *bool) (*ProductsResult, error) {
	params := NewParams().AddBool("overrideNomenclatureCode", overrideNomenclatureCode)
	return c.productsOperation(ctx, "v2/entities/products/restore", ids, params)
}

func (c *Client) productsOperation(ctx context.Context, path string, ids []uuid.UUID, params Params) (*ProductsResult, error) {
	request := itemsRequest{Items: make([]idItem, 0, len(ids))}
	for _, id := range ids {
		request.Items = append(request.Items, idItem{ID: id})
	}

	payload, err := encodeJSON(request)
	if err != nil {
		return nil, err
	}

	body, err := c.Post(ctx, path, payload, ContentTypeJSON, params)
	if err != nil {
		return nil, err
	}

	var result ProductsResult
	if err := decodeJSON(body, &result); err != nil {
		return nil, err
	}
	if result.Result == resultError {
		return &result, operationError(result.Errors)
	}
	return &result, nil
}

// operationError reports a 200 response whose payload says the write was rejected
func operationError(errs []OperationError) *Error {
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		switch {
		case e.Code != "" && e.Value != "":
			msgs = append(msgs, e.Code+": "+e.Value)
		case e.Value != "":
			msgs = append(msgs, e.Value)
		default:
			msgs = append(msgs, e.Code)
		}
	}
	if len(msgs) == 0 {
		msgs = append(msgs, "operation rejected")
	}
	return &Error{Kind: KindConflict, Message: strings.Join(msgs, "; ")}
}
