package sbc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sniperbusiness/ebook-funnel/internal/infra/metrics"
)

const DefaultURL = "https://sniperbuisnesscenter.com/api/users/check-existence"

// Client looks prospects up in the SBC user base.
type Client struct {
	url  string
	http *http.Client
	log  *zap.SugaredLogger
}

func NewClient(url string, timeout time.Duration, log *zap.SugaredLogger) *Client {
	if url == "" {
		url = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// CheckMembership reports whether the contact is a registered SBC user.
// It fails closed: any transport, status or decoding problem is logged and reported as false.
func (c *Client) CheckMembership(ctx context.Context, email, phone string) bool {
	exists, err := c.checkExistence(ctx, email, phone)
	if err != nil {
		metrics.RecordMembershipCheck("error")
		metrics.RecordIntegrationError("sbc")
		c.log.Warnw("⚠️ sbc membership check failed", "email", email, "error", err)
		return false
	}

	if exists {
		metrics.RecordMembershipCheck("member")
	} else {
		metrics.RecordMembershipCheck("not_member")
	}
	return exists
}

func (c *Client) checkExistence(ctx context.Context, email, phone string) (bool, error) {
	jsonBody, err := json.Marshal(checkExistenceRequest{
		Email:       email,
		PhoneNumber: phone,
	})
	if err != nil {
		return false, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(jsonBody))
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("request sbc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return false, fmt.Errorf("sbc returned status %d: %s", resp.StatusCode, string(body))
	}

	var response checkExistenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return false, fmt.Errorf("decode sbc response: %w", err)
	}

	return response.Success && response.Data != nil && response.Data.Exists, nil
}
