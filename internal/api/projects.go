package api

import "context"

// Projects are customer-scoped: every path hangs off /customers/{id}.

// ListProjects returns all projects of one customer.
func (c *Client) ListProjects(ctx context.Context, customerID int64) ([]Project, error) {
	var out []Project
	if err := c.get(ctx, "/customers/"+formatID(customerID)+"/projects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProject fetches one project.
func (c *Client) GetProject(ctx context.Context, customerID, id int64) (*Project, error) {
	var out Project
	if err := c.get(ctx, "/customers/"+formatID(customerID)+"/projects/"+formatID(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateProject creates a project under a customer. The customer reference
// is fixed at creation and cannot be moved afterwards.
func (c *Client) CreateProject(ctx context.Context, customerID int64, in Project) (*Project, error) {
	var out Project
	if err := c.post(ctx, "/customers/"+formatID(customerID)+"/projects", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProject updates a project's mutable fields.
func (c *Client) UpdateProject(ctx context.Context, customerID, id int64, in Project) (*Project, error) {
	var out Project
	if err := c.put(ctx, "/customers/"+formatID(customerID)+"/projects/"+formatID(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeactivateProject soft-deletes a project.
func (c *Client) DeactivateProject(ctx context.Context, customerID, id int64) error {
	return c.delete(ctx, "/customers/"+formatID(customerID)+"/projects/"+formatID(id))
}

// ActivateProject re-activates a deactivated project.
func (c *Client) ActivateProject(ctx context.Context, customerID, id int64) error {
	return c.put(ctx, "/customers/"+formatID(customerID)+"/projects/"+formatID(id)+"/activate", nil, nil)
}
