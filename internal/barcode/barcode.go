// Package barcode looks up product names on Open Food Facts so scanned
// items can be added without typing.
package barcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"
)

// ErrNotFound is returned when the product is unknown or has no usable name.
var ErrNotFound = errors.New("product not found")

const defaultBaseURL = "https://world.openfoodfacts.org/api/v2/product"

// Product is the lookup result.
type Product struct {
	Name    string `json:"name"`
	Barcode string `json:"barcode"`
}

// Client queries the Open Food Facts product API.
type Client struct {
	client  *http.Client
	baseURL string
}

func NewClient() *Client {
	return &Client{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: defaultBaseURL,
	}
}

type apiResponse struct {
	Status  int `json:"status"`
	Product struct {
		ProductNameCS string `json:"product_name_cs"`
		ProductName   string `json:"product_name"`
		ProductNameEN string `json:"product_name_en"`
		Brands        string `json:"brands"`
	} `json:"product"`
}

// Lookup resolves a barcode to a product name. Network errors and
// upstream 5xx responses are retried with fibonacci backoff; 404s and
// nameless products return ErrNotFound.
func (c *Client) Lookup(ctx context.Context, code string) (*Product, error) {
	reqURL := fmt.Sprintf("%s/%s.json?fields=product_name,product_name_cs,product_name_en,brands",
		c.baseURL, url.PathEscape(code))

	var apiResp apiResponse
	backoff := retry.WithMaxRetries(3, retry.NewFibonacci(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("barcode API request: %w", err))
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("barcode API returned %d", resp.StatusCode))
		}
		if resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("barcode API returned %d", resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			return fmt.Errorf("decode barcode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if apiResp.Status != 1 {
		return nil, ErrNotFound
	}

	name := fullName(apiResp)
	if name == "" {
		return nil, ErrNotFound
	}

	return &Product{Name: name, Barcode: code}, nil
}

// fullName prefers the Czech name, then the generic one, then English,
// and appends the brand when both are known.
func fullName(resp apiResponse) string {
	p := resp.Product

	name := p.ProductNameCS
	if name == "" {
		name = p.ProductName
	}
	if name == "" {
		name = p.ProductNameEN
	}

	switch {
	case name != "" && p.Brands != "":
		return fmt.Sprintf("%s (%s)", name, p.Brands)
	case name != "":
		return name
	default:
		return p.Brands
	}
}
