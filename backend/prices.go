package backend

import (
	"context"
	"net/http"
	"net/url"
)

// ListPrices returns one page of reported prices with product and
// establishment details included.
func (c *Client) ListPrices(ctx context.Context, params ListParams) (*Page[Price], error) {
	query := params.query()
	query.Set("includeDetails", "true")
	return listPage[Price](ctx, c, "/price", query)
}

// GetPrice fetches a single reported price with its related user, product,
// and establishment records, as the detail view shows them.
func (c *Client) GetPrice(ctx context.Context, id string) (*Price, error) {
	var price Price
	if err := c.get(ctx, "/price/"+id, url.Values{"includeDetails": {"true"}}, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// CreatePrice reports a new price.
func (c *Client) CreatePrice(ctx context.Context, form PriceForm) (*Price, error) {
	var price Price
	if err := c.do(ctx, http.MethodPost, "/price", nil, form, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// UpdatePrice updates an existing reported price.
func (c *Client) UpdatePrice(ctx context.Context, id string, form PriceForm) (*Price, error) {
	var price Price
	if err := c.do(ctx, http.MethodPatch, "/price/"+id, nil, form, &price); err != nil {
		return nil, err
	}
	return &price, nil
}

// DeletePrice removes a reported price.
func (c *Client) DeletePrice(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/price/"+id, nil, nil, nil)
}
