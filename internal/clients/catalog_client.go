// internal/clients/catalog_client.go
package clients

import (
	"context"
	"net/http"
	"net/url"

	"courtdesk/internal/catalog"
)

type CatalogClient struct {
	client
}

func NewCatalogClient(baseURL string, httpClient *http.Client) *CatalogClient {
	return &CatalogClient{client: newClient(baseURL, httpClient)}
}

func (c *CatalogClient) ListPlans(ctx context.Context, activeOnly bool) ([]*catalog.Plan, error) {
	path := "/v1/plans"
	if activeOnly {
		path += "?active=true"
	}
	var plans []*catalog.Plan
	if err := c.do(ctx, http.MethodGet, path, nil, &plans); err != nil {
		return nil, err
	}
	return plans, nil
}

func (c *CatalogClient) GetPlan(ctx context.Context, id string) (*catalog.Plan, error) {
	var plan catalog.Plan
	if err := c.do(ctx, http.MethodGet, "/v1/plans/"+url.PathEscape(id), nil, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *CatalogClient) AddPlan(ctx context.Context, p catalog.Plan) (*catalog.Plan, error) {
	var plan catalog.Plan
	if err := c.do(ctx, http.MethodPost, "/v1/plans", p, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (c *CatalogClient) DeactivatePlan(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/plans/"+url.PathEscape(id), nil, nil)
}
