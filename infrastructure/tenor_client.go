package infrastructure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/tidwall/gjson"
)

const DefaultTenorBaseURL = "https://tenor.googleapis.com/v2"

// maxTenorBody caps how much of a search response is read
const maxTenorBody = 4 << 20

// TenorClient searches GIFs through the Tenor v2 API
type TenorClient struct {
	apiKey  string
	baseURL string
	http    *http.Client
}

func NewTenorClient(apiKey, baseURL string, timeout time.Duration) *TenorClient {
	if baseURL == "" {
		baseURL = DefaultTenorBaseURL
	}
	return &TenorClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

// SearchGifs returns the GIF URL of every result for query
func (c *TenorClient) SearchGifs(ctx context.Context, query string, limit int) ([]string, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("key", c.apiKey)
	params.Set("limit", strconv.Itoa(limit))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build tenor request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tenor search: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTenorBody))
	if err != nil {
		return nil, fmt.Errorf("read tenor response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tenor search: unexpected status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("tenor search: invalid JSON response")
	}

	var urls []string
	gjson.GetBytes(body, "results.#.media_formats.gif.url").ForEach(func(_, value gjson.Result) bool {
		if u := value.String(); u != "" {
			urls = append(urls, u)
		}
		return true
	})
	return urls, nil
}
