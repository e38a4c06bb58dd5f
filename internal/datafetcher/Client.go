/*

This file contains the GraphQL client for the vault indexer API. All vault
state consumed by the analytics engine is fetched and parsed here; the engine
itself never sees raw network payloads.

*/

package datafetcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/lagoon-network/vae/internal/logger"
)

var fetchLogger = logger.GetForComponent("datafetcher")

var (
	ErrVaultNotFound  = errors.New("vault not found in indexer response")
	ErrGraphQLRequest = errors.New("graphql request failed")
)

// Client is a GraphQL client for the vault indexer.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a new indexer client with retrying HTTP transport.
func NewClient(endpoint string) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 3 * time.Second
	retryClient.Logger = nil

	return &Client{
		endpoint:   endpoint,
		httpClient: retryClient.StandardClient(),
	}
}

// graphqlRequest is the wire shape of a GraphQL POST body.
type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// query executes a GraphQL request and decodes the data payload into out.
func (c *Client) query(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Join(ErrGraphQLRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return errors.Join(ErrGraphQLRequest,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw)))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode graphql response: %w", err)
	}
	if len(envelope.Errors) > 0 {
		return errors.Join(ErrGraphQLRequest, errors.New(envelope.Errors[0].Message))
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to decode graphql data payload: %w", err)
	}

	fetchLogger.Debug().
		Str("endpoint", c.endpoint).
		Msg("GraphQL query completed")

	return nil
}
