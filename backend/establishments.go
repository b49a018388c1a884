package backend

import (
	"context"
	"net/http"
)

// ListEstablishments returns one page of establishments.
func (c *Client) ListEstablishments(ctx context.Context, params ListParams) (*Page[Establishment], error) {
	return listPage[Establishment](ctx, c, "/establishment", params.query())
}

// GetEstablishment fetches a single establishment with its business hours
// for the detail view.
func (c *Client) GetEstablishment(ctx context.Context, id string) (*Establishment, error) {
	var establishment Establishment
	if err := c.get(ctx, "/establishment/"+id, nil, &establishment); err != nil {
		return nil, err
	}
	return &establishment, nil
}

// CreateEstablishment registers a new establishment with its location and
// business hours.
func (c *Client) CreateEstablishment(ctx context.Context, form EstablishmentForm) (*Establishment, error) {
	var establishment Establishment
	if err := c.do(ctx, http.MethodPost, "/establishment", nil, form, &establishment); err != nil {
		return nil, err
	}
	return &establishment, nil
}

// UpdateEstablishment updates an existing establishment.
func (c *Client) UpdateEstablishment(ctx context.Context, id string, form EstablishmentForm) (*Establishment, error) {
	var establishment Establishment
	if err := c.do(ctx, http.MethodPatch, "/establishment/"+id, nil, form, &establishment); err != nil {
		return nil, err
	}
	return &establishment, nil
}

// DeleteEstablishment removes an establishment.
func (c *Client) DeleteEstablishment(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/establishment/"+id, nil, nil, nil)
}
