package backend

import (
	"context"
	"net/http"
)

// ListProducts returns one page of the product catalog. Price annotation is
// skipped on the listing grid, matching the web console.
func (c *Client) ListProducts(ctx context.Context, params ListParams) (*Page[Product], error) {
	query := params.query()
	query.Set("priceFiltering", "false")
	return listPage[Product](ctx, c, "/product", query)
}

// GetProduct fetches a single product for the detail view.
func (c *Client) GetProduct(ctx context.Context, id string) (*Product, error) {
	var product Product
	if err := c.get(ctx, "/product/"+id, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// CreateProduct adds a product to the catalog.
func (c *Client) CreateProduct(ctx context.Context, form ProductForm) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPost, "/product", nil, form, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct updates an existing product.
func (c *Client) UpdateProduct(ctx context.Context, id string, form ProductForm) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodPatch, "/product/"+id, nil, form, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/product/"+id, nil, nil, nil)
}
