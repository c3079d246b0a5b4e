// Package forecast talks to the external long-range forecasting service.
// Its output is treated as opaque, pre-bucketed data; the trend merger
// concatenates it with local historical buckets without validation beyond
// presence checks.
package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		apiKey:  apiKey,
	}
}

// EventSnapshot is the slim event view sent to the forecaster
type EventSnapshot struct {
	ID       string     `json:"id"`
	Date     *time.Time `json:"date"`
	Category string     `json:"category"`
}

// ItemSnapshot is the slim line-item view sent to the forecaster
type ItemSnapshot struct {
	EventID  string          `json:"event_id"`
	Cost     decimal.Decimal `json:"cost"`
	Quantity int             `json:"quantity"`
}

// AttendanceSnapshot is the slim attendance view sent to the forecaster
type AttendanceSnapshot struct {
	EventID           string `json:"event_id"`
	ExpectedAttendees int    `json:"expected_attendees"`
	EventAttendees    int    `json:"event_attendees"`
}

// Request carries the current collections the forecast is derived from
type Request struct {
	Events     []EventSnapshot      `json:"events"`
	Items      []ItemSnapshot       `json:"items"`
	Attendance []AttendanceSnapshot `json:"attendance"`
	Months     int                  `json:"months"`
}

// Prediction is one pre-bucketed forecast month
type Prediction struct {
	MonthYear                  string          `json:"month_year"`
	PredictedCost              decimal.Decimal `json:"predicted_cost"`
	PredictedRevenue           decimal.Decimal `json:"predicted_revenue"`
	PredictedEvents            int             `json:"predicted_events"`
	PredictedExpectedAttendees int             `json:"predicted_expected_attendees"`
}

// Response is the forecaster's full payload
type Response struct {
	Predictions       []Prediction `json:"predictions"`
	CostGrowthRate    float64      `json:"cost_growth_rate"`
	RevenueGrowthRate float64      `json:"revenue_growth_rate"`
	AvgDailyCost      float64      `json:"avg_daily_cost"`
	AvgDailyRevenue   float64      `json:"avg_daily_revenue"`
}

// Forecast submits the current collections and returns predicted buckets
func (c *Client) Forecast(ctx context.Context, req *Request) (*Response, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("forecast service not configured")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode forecast request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/forecast", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch forecast: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("forecast API error: %d - %s", resp.StatusCode, string(respBody))
	}

	var result Response
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode forecast response: %w", err)
	}

	return &result, nil
}
