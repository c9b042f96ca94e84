package blockchain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SponsorshipRequest asks the fee relay to sponsor a submission on behalf
// of the operating account.
type SponsorshipRequest struct {
	From                 string `json:"from"`
	To                   string `json:"to"`
	Data                 string `json:"data"`
	GasLimit             uint64 `json:"gasLimit"`
	MaxFeePerGas         string `json:"maxFeePerGas"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas"`
}

// SponsorshipResponse carries the relay's decision. The relay may revise the
// gas limit; a revised value of 0 means "keep yours".
type SponsorshipResponse struct {
	Approved        bool   `json:"approved"`
	RevisedGasLimit uint64 `json:"revisedGasLimit"`
	Reason          string `json:"reason,omitempty"`
}

// RelayClient talks to the fee sponsorship service
type RelayClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewRelayClient creates a relay client. An empty baseURL disables
// sponsorship; RequestSponsorship then approves locally without revision.
func NewRelayClient(baseURL string) *RelayClient {
	return &RelayClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SetHTTPClient overrides the HTTP client (used for testing)
func (c *RelayClient) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// RequestSponsorship submits the sponsorship request and returns the relay's
// decision.
func (c *RelayClient) RequestSponsorship(ctx context.Context, req *SponsorshipRequest) (*SponsorshipResponse, error) {
	if c.baseURL == "" {
		return &SponsorshipResponse{Approved: true}, nil
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/sponsorships", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("fee relay request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fee relay returned status %d", resp.StatusCode)
	}

	var out SponsorshipResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("fee relay response decode failed: %w", err)
	}
	return &out, nil
}
