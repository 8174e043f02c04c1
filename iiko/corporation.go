package iiko

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// GroupSearch filters SearchGroups. Empty fields are not sent.
type GroupSearch struct {
	Name         string
	DepartmentID string
}

// TerminalSearch filters SearchTerminals. Empty fields are not sent.
type TerminalSearch struct {
	Name         string
	ComputerName string
	Anonymous    *bool
}

// CorporationSnapshot is the full corporation structure fetched in one go
type CorporationSnapshot struct {
	Departments []CorporateItem `json:"departments" yaml:"departments"`
	Stores      []CorporateItem `json:"stores" yaml:"stores"`
	Groups      []Group         `json:"groups" yaml:"groups"`
	Terminals   []Terminal      `json:"terminals" yaml:"terminals"`
}

func revisionParams(revisionFrom *int64) Params {
	rev := int64(-1)
	if revisionFrom != nil {
		rev = *revisionFrom
	}
	return NewParams().AddInt("revisionFrom", &rev)
}

// GetDepartments retrieves all departments changed since revisionFrom (nil for all)
func (c *Client) GetDepartments(ctx context.Context, revisionFrom *int64) ([]CorporateItem, error) {
	return c.getCorporateItems(ctx, "corporation/departments/", revisionParams(revisionFrom))
}

// GetStores retrieves all stores changed since revisionFrom (nil for all)
func (c *Client) GetStores(ctx context.Context, revisionFrom *int64) ([]CorporateItem, error) {
	return c.getCorporateItems(ctx, "corporation/stores/", revisionParams(revisionFrom))
}

// SearchDepartment returns the department with the given code, or nil
func (c *Client) SearchDepartment(ctx context.Context, code string) (*CorporateItem, error) {
	items, err := c.getCorporateItems(ctx, "corporation/departments/search", NewParams().Add("code", code))
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

// SearchStore returns the store with the given code, or nil
func (c *Client) SearchStore(ctx context.Context, code string) (*CorporateItem, error) {
	items, err := c.getCorporateItems(ctx, "corporation/stores/search", NewParams().Add("code", code))
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

func (c *Client) getCorporateItems(ctx context.Context, path string, params Params) ([]CorporateItem, error) {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var wrapper corporateItems
	if err := decodeXML(body, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Items, nil
}

// GetGroups retrieves department groups
func (c *Client) GetGroups(ctx context.Context, revisionFrom *int64) ([]Group, error) {
	return c.getGroups(ctx, "corporation/groups/", revisionParams(revisionFrom))
}

// SearchGroups finds groups by name and/or department
func (c *Client) SearchGroups(ctx context.Context, search GroupSearch) ([]Group, error) {
	params := NewParams().
		AddString("name", search.Name).
		AddString("departmentId", search.DepartmentID)
	return c.getGroups(ctx, "corporation/groups/search", params)
}

func (c *Client) getGroups(ctx context.Context, path string, params Params) ([]Group, error) {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var wrapper groups
	if err := decodeXML(body, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Items, nil
}

// GetTerminals retrieves front-office terminals
func (c *Client) GetTerminals(ctx context.Context, revisionFrom *int64) ([]Terminal, error) {
	return c.getTerminals(ctx, "corporation/terminals/", revisionParams(revisionFrom))
}

// SearchTerminals finds terminals by name, computer name or anonymity
func (c *Client) SearchTerminals(ctx context.Context, search TerminalSearch) ([]Terminal, error) {
	params := NewParams().
		AddString("name", search.Name).
		AddString("computerName", search.ComputerName).
		AddBool("anonymous", search.Anonymous)
	return c.getTerminals(ctx, "corporation/terminals/search", params)
}

func (c *Client) getTerminals(ctx context.Context, path string, params Params) ([]Terminal, error) {
	body, err := c.Get(ctx, path, params)
	if err != nil {
		return nil, err
	}

	var wrapper terminals
	if err := decodeXML(body, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.Items, nil
}

// GetCorporationSettings retrieves corporation-wide settings
func (c *Client) GetCorporationSettings(ctx context.Context) (*CorporationSettings, error) {
	body, err := c.Get(ctx, "v2/corporation/settings", nil)
	if err != nil {
		return nil, err
	}

	var settings CorporationSettings
	if err := decodeJSON(body, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// FetchCorporation retrieves departments, stores, groups and terminals.
// The calls are started together; the client still sends them one at a time.
func (c *Client) FetchCorporation(ctx context.Context) (*CorporationSnapshot, error) {
	var snapshot CorporationSnapshot

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := c.GetDepartments(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to get departments: %w", err)
		}
		snapshot.Departments = items
		return nil
	})
	g.Go(func() error {
		items, err := c.GetStores(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to get stores: %w", err)
		}
		snapshot.Stores = items
		return nil
	})
	g.Go(func() error {
		items, err := c.GetGroups(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to get groups: %w", err)
		}
		snapshot.Groups = items
		return nil
	})
	g.Go(func() error {
		items, err := c.GetTerminals(ctx, nil)
		if err != nil {
			return fmt.Errorf("failed to get terminals: %w", err)
		}
		snapshot.Terminals = items
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	c.logger.Debug().
		Int("departments", len(snapshot.Departments)).
		Int("stores", len(snapshot.Stores)).
		Int("groups", len(snapshot.Groups)).
		Int("terminals", len(snapshot.Terminals)).
		Msg("Fetched corporation structure")

	return &snapshot, nil
}
