package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/storefront/checkout-service-go/internal/cart"
)

// Product is the catalog record as served upstream. Snapshot converts it
// to the immutable shape the cart captures.
type Product struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Price    float64  `json:"price"`
	Images   []string `json:"images"`
	Category Category `json:"category"`
}

func (p Product) Snapshot() cart.Product {
	return cart.Product{
		ID:     p.ID,
		Title:  p.Title,
		Price:  p.Price,
		Images: p.Images,
	}
}

// ErrNotFound is returned when the catalog has no product with the id.
var ErrNotFound = fmt.Errorf("product not found")

// Client is a narrow HTTP client for the catalog service.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base url %q: %w", baseURL, err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: u, http: httpClient}, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (Product, error) {
	var p Product
	if err := c.getJSON(ctx, "/api/catalog/products/"+url.PathEscape(id), &p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.getJSON(ctx, "/api/catalog/products", &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	u := c.baseURL.ResolveReference(&url.URL{Path: path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("catalog returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode catalog response: %w", err)
	}
	return nil
}
