// Package statuspage reads the upstream status page API.
package statuspage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/statusrelay/internal/core/domain"
)

// Client fetches status summaries and the latest chain block.
type Client struct {
	baseURL    string
	blockURL   string
	httpClient *http.Client
}

// NewClient creates a status page client. blockURL defaults to
// baseURL + "/blocks/latest".
func NewClient(baseURL, blockURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	if blockURL == "" {
		blockURL = baseURL + "/blocks/latest"
	}
	return &Client{
		baseURL:  baseURL,
		blockURL: blockURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 5,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// FetchSummary loads the page status, components and unresolved incidents
// concurrently. Any failing request fails the whole summary.
func (c *Client) FetchSummary(ctx context.Context) (*domain.StatusSummary, error) {
	var (
		status     struct{ Status domain.PageStatus }
		components struct{ Components []domain.Component }
		incidents  struct{ Incidents []domain.Incident }
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.getJSON(gctx, c.baseURL+"/status.json", &status) })
	g.Go(func() error { return c.getJSON(gctx, c.baseURL+"/components.json", &components) })
	g.Go(func() error { return c.getJSON(gctx, c.baseURL+"/incidents/unresolved.json", &incidents) })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &domain.StatusSummary{
		Status:     status.Status,
		Components: components.Components,
		Incidents:  incidents.Incidents,
	}
	if summary.Components == nil {
		summary.Components = []domain.Component{}
	}
	if summary.Incidents == nil {
		summary.Incidents = []domain.Incident{}
	}
	return summary, nil
}

type latestBlockResponse struct {
	Block struct {
		Header struct {
			Height blockHeight `json:"height"`
			Time   string      `json:"time"`
		} `json:"header"`
		BlockHash string `json:"block_hash"`
	} `json:"block"`
}

// FetchLatestBlock returns the newest block reported by the status page.
func (c *Client) FetchLatestBlock(ctx context.Context) (domain.BlockRecord, error) {
	var resp latestBlockResponse
	if err := c.getJSON(ctx, c.blockURL, &resp); err != nil {
		return domain.BlockRecord{}, fmt.Errorf("failed to fetch latest block: %w", err)
	}

	header := resp.Block.Header
	if header.Height == 0 {
		return domain.BlockRecord{}, fmt.Errorf("failed to fetch latest block: missing height")
	}
	if _, err := time.Parse(time.RFC3339Nano, header.Time); err != nil {
		return domain.BlockRecord{}, fmt.Errorf("failed to fetch latest block: bad time %q: %w", header.Time, err)
	}

	return domain.BlockRecord{
		Height:    uint64(header.Height),
		Timestamp: header.Time,
		Hash:      resp.Block.BlockHash,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("get %s: http %d: %s", url, resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

// blockHeight accepts heights encoded either as JSON numbers or strings.
type blockHeight uint64

func (h *blockHeight) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if len(data) == 0 || string(data) == "null" {
		*h = 0
		return nil
	}
	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid block height %q: %w", data, err)
	}
	*h = blockHeight(v)
	return nil
}
