package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// CustomerListParams filters GET /customers. Zero values are omitted.
type CustomerListParams struct {
	Page    int
	Size    int
	Keyword string
}

// ListCustomers returns one page of customers plus the total page count.
// The backend may answer with either a bare array or a page envelope.
func (c *Client) ListCustomers(ctx context.Context, p CustomerListParams) ([]Customer, int, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.Keyword != "" {
		q.Set("keyword", p.Keyword)
	}
	var raw json.RawMessage
	if err := c.get(ctx, "/customers", q, &raw); err != nil {
		return nil, 0, err
	}
	return decodeList[Customer](raw)
}

// GetCustomer fetches one customer by id.
func (c *Client) GetCustomer(ctx context.Context, id int64) (*Customer, error) {
	var out Customer
	if err := c.get(ctx, "/customers/"+formatID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCustomer creates a customer and returns the stored record.
func (c *Client) CreateCustomer(ctx context.Context, in Customer) (*Customer, error) {
	var out Customer
	if err := c.post(ctx, "/customers", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCustomer updates a customer and returns the stored record.
func (c *Client) UpdateCustomer(ctx context.Context, id int64, in Customer) (*Customer, error) {
	var out Customer
	if err := c.put(ctx, "/customers/"+formatID(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateCustomer soft-deletes a customer: the backend flips the active
// flag, the record survives.
func (c *Client) DeactivateCustomer(ctx context.Context, id int64) error {
	return c.delete(ctx, "/customers/"+formatID(id))
}

// ActivateCustomer re-activates a deactivated customer.
func (c *Client) ActivateCustomer(ctx context.Context, id int64) error {
	return c.put(ctx, "/customers/"+formatID(id)+"/activate", nil, nil)
}

func formatID(id int64) string {
	return fmt.Sprintf("%d", id)
}
