package backend

import (
	"context"
	"net/http"
)

// ListUsers returns one page of registered users.
func (c *Client) ListUsers(ctx context.Context, params ListParams) (*Page[User], error) {
	return listPage[User](ctx, c, "/user", params.query())
}

// GetUser fetches a single user for the detail view.
func (c *Client) GetUser(ctx context.Context, id string) (*User, error) {
	var user User
	if err := c.get(ctx, "/user/"+id, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser registers a new user.
func (c *Client) CreateUser(ctx context.Context, form UserForm) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/user", nil, form, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUser updates an existing user.
func (c *Client) UpdateUser(ctx context.Context, id string, form UserForm) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPatch, "/user/"+id, nil, form, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/user/"+id, nil, nil, nil)
}
