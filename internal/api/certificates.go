package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
)

// CertListParams filters GET /certificates.
type CertListParams struct {
	Page       int
	Size       int
	CustomerID int64
}

// ListCertificates returns one page of certificates plus the total page
// count.
func (c *Client) ListCertificates(ctx context.Context, p CertListParams) ([]Certificate, int, error) {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Size > 0 {
		q.Set("size", strconv.Itoa(p.Size))
	}
	if p.CustomerID > 0 {
		q.Set("customerId", formatID(p.CustomerID))
	}
	var raw json.RawMessage
	if err := c.get(ctx, "/certificates", q, &raw); err != nil {
		return nil, 0, err
	}
	return decodeList[Certificate](raw)
}

// GetCertificate fetches one certificate.
func (c *Client) GetCertificate(ctx context.Context, id int64) (*Certificate, error) {
	var out Certificate
	if err := c.get(ctx, "/certificates/"+formatID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExpiringCertificates returns certificates expiring within the given
// number of days.
func (c *Client) ExpiringCertificates(ctx context.Context, days int) ([]Certificate, error) {
	q := url.Values{}
	q.Set("days", strconv.Itoa(days))
	var out []Certificate
	if err := c.get(ctx, "/certificates/expiring", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCertificate registers a certificate record.
func (c *Client) CreateCertificate(ctx context.Context, in Certificate) (*Certificate, error) {
	var out Certificate
	if err := c.post(ctx, "/certificates", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCertificate updates a certificate record.
func (c *Client) UpdateCertificate(ctx context.Context, id int64, in Certificate) (*Certificate, error) {
	var out Certificate
	if err := c.put(ctx, "/certificates/"+formatID(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenewCertificate records a renewal: a new expiry date plus renewal
// metadata appended to the record. Nothing is deleted.
func (c *Client) RenewCertificate(ctx context.Context, id int64, in CertRenewal) (*Certificate, error) {
	var out Certificate
	if err := c.post(ctx, "/certificates/"+formatID(id)+"/renew", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateCertificate soft-deletes a certificate record.
func (c *Client) DeactivateCertificate(ctx context.Context, id int64) error {
	return c.delete(ctx, "/certificates/"+formatID(id))
}
