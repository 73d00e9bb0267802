package api

import (
	"context"
	"net/url"
)

// AddonListParams filters GET /addons.
type AddonListParams struct {
	Category        string
	IncludeInactive bool
}

// ListAddons returns catalog entries, optionally filtered by category.
func (c *Client) ListAddons(ctx context.Context, p AddonListParams) ([]Addon, error) {
	q := url.Values{}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.IncludeInactive {
		q.Set("includeInactive", "true")
	}
	var out []Addon
	if err := c.get(ctx, "/addons", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetAddon fetches one catalog entry.
func (c *Client) GetAddon(ctx context.Context, id int64) (*Addon, error) {
	var out Addon
	if err := c.get(ctx, "/addons/"+formatID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateAddon registers a catalog entry. The system name is immutable from
// here on.
func (c *Client) CreateAddon(ctx context.Context, in Addon) (*Addon, error) {
	var out Addon
	if err := c.post(ctx, "/addons", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateAddon updates a catalog entry's mutable fields.
func (c *Client) UpdateAddon(ctx context.Context, id int64, in Addon) (*Addon, error) {
	var out Addon
	if err := c.put(ctx, "/addons/"+formatID(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateAddon soft-deletes a catalog entry.
func (c *Client) DeactivateAddon(ctx context.Context, id int64) error {
	return c.delete(ctx, "/addons/"+formatID(id))
}

// ActivateAddon re-activates a deactivated catalog entry.
func (c *Client) ActivateAddon(ctx context.Context, id int64) error {
	return c.patch(ctx, "/addons/"+formatID(id)+"/activate", nil, nil)
}

// ListAddonVersions returns the version history of one add-on.
func (c *Client) ListAddonVersions(ctx context.Context, addonID int64) ([]AddonVersion, error) {
	var out []AddonVersion
	if err := c.get(ctx, "/addons/"+formatID(addonID)+"/versions", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddAddonVersion registers a new version under an add-on.
func (c *Client) AddAddonVersion(ctx context.Context, addonID int64, in AddonVersion) (*AddonVersion, error) {
	var out AddonVersion
	if err := c.post(ctx, "/addons/"+formatID(addonID)+"/versions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAddonVersion removes one version record by its own id.
func (c *Client) DeleteAddonVersion(ctx context.Context, versionID int64) error {
	return c.delete(ctx, "/addons/versions/"+formatID(versionID))
}
