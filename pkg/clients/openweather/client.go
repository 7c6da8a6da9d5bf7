package openweather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// ErrCityNotFound is returned for any non-success response that does not
// carry a more specific provider message.
var ErrCityNotFound = errors.New("city not found")

// ErrUnavailable wraps transport failures talking to the provider.
var ErrUnavailable = errors.New("weather service unavailable")

// Client exposes the OpenWeatherMap operations used by Weather Pro.
type Client interface {
	CurrentWeather(ctx context.Context, city string) (*CurrentResponse, error)
}

// Options configures the API client.
type Options struct {
	BaseURL string
	APIKey  string
	Units   string
	Timeout time.Duration
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	apiKey     string
	units      string
}

// NewClient builds an OpenWeatherMap client.
func NewClient(opts Options) *APIClient {
	base := strings.TrimSuffix(opts.BaseURL, "/")
	if base == "" {
		base = "https://api.openweathermap.org"
	}
	units := opts.Units
	if units == "" {
		units = "metric"
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(base).
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient, apiKey: opts.APIKey, units: units}
}

// CurrentResponse mirrors the fields of /data/2.5/weather that are displayed.
type CurrentResponse struct {
	Name string `json:"name"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
		Pressure  int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s
	} `json:"wind"`
	Visibility float64 `json:"visibility"` // metres
	Sys        struct {
		Country string `json:"country"`
	} `json:"sys"`
}

// Description returns the first weather condition description, if any.
func (r *CurrentResponse) Description() string {
	if len(r.Weather) == 0 {
		return ""
	}
	return r.Weather[0].Description
}

// APIError carries the provider's own error message.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openweather api error: status=%d, message=%s", e.StatusCode, e.Message)
}

// Unwrap makes a 404 match ErrCityNotFound while keeping the provider message.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrCityNotFound
	}
	return nil
}

type apiError struct {
	Cod     any    `json:"cod"`
	Message string `json:"message"`
}

// CurrentWeather fetches the current conditions of city.
func (c *APIClient) CurrentWeather(ctx context.Context, city string) (*CurrentResponse, error) {
	result := new(CurrentResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"q":     city,
			"appid": c.apiKey,
			"units": c.units,
		}).
		SetResult(result).
		SetError(apiErr).
		Get("/data/2.5/weather")
	if err != nil {
		return nil, fmt.Errorf("fetch weather for %q: %w: %w", city, ErrUnavailable, err)
	}

	if !resp.IsSuccess() {
		if apiErr.Message == "" {
			return nil, fmt.Errorf("%q: %w", city, ErrCityNotFound)
		}
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Message}
	}

	return result, nil
}
