package decoder

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"vinventory/internal/models"
	"vinventory/internal/vin"
)

const (
	defaultTimeout = 15 * time.Second
	maxAttempts    = 3
	retryDelay     = 2 * time.Second
)

// Client talks to the NHTSA vPIC vehicle API to decode real VINs.
type Client struct {
	baseURL    string
	http       *http.Client
	retryDelay time.Duration
}

// NewClient returns a decoder client against baseURL, e.g.
// https://vpic.nhtsa.dot.gov/api/vehicles.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		http:       &http.Client{Timeout: defaultTimeout},
		retryDelay: retryDelay,
	}
}

type decodeResponse struct {
	Count   int    `json:"Count"`
	Message string `json:"Message"`
	Results []struct {
		Variable string `json:"Variable"`
		Value    string `json:"Value"`
	} `json:"Results"`
}

// Decode calls DecodeVinExtended for v and returns the populated variables
// as a flat map. Synthetic tracking identifiers are rejected up front:
// they are not VINs and the API would return garbage for them.
func (c *Client) Decode(v string) (map[string]string, error) {
	if vin.IsSynthetic(v) {
		return nil, fmt.Errorf("refusing to decode synthetic identifier %s", v)
	}
	if !vin.IsValid(v) {
		return nil, fmt.Errorf("invalid VIN %s", v)
	}

	endpoint := fmt.Sprintf("%s/DecodeVinExtended/%s?format=json", c.baseURL, url.PathEscape(v))

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			// Linear backoff: each retry waits one interval longer.
			time.Sleep(c.retryDelay * time.Duration(attempt+1))
		}

		decoded, err := c.fetch(endpoint)
		if err != nil {
			lastErr = err
			continue
		}
		return decoded, nil
	}
	return nil, fmt.Errorf("decode of %s failed after %d attempts: %w", v, maxAttempts, lastErr)
}

func (c *Client) fetch(endpoint string) (map[string]string, error) {
	resp, err := c.http.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body decodeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	decoded := make(map[string]string)
	for _, result := range body.Results {
		if result.Value == "" || result.Value == "Not Applicable" {
			continue
		}
		decoded[result.Variable] = result.Value
	}
	return decoded, nil
}

// Enrich overlays decoded VIN variables onto an inventory record. Only
// fields the decode actually populated are touched.
func Enrich(rec *models.InventoryRecord, decoded map[string]string) {
	set := func(dst *string, key string) {
		if val, ok := decoded[key]; ok {
			*dst = val
		}
	}
	set(&rec.Make, "Make")
	set(&rec.Model, "Model")
	set(&rec.ModelYear, "Model Year")
	set(&rec.Manufacturer, "Manufacturer Name")
	set(&rec.BodyClass, "Body Class")
	set(&rec.Doors, "Doors")
	set(&rec.FuelType, "Fuel Type - Primary")
	set(&rec.EngineCylinders, "Engine Number of Cylinders")
	set(&rec.DisplacementL, "Displacement (L)")
	set(&rec.DriveType, "Drive Type")
	set(&rec.Transmission, "Transmission Style")
}
