package console

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// apiTimeout caps one REST call. It sits above the largest execution timeout
// the server permits, so even a maxed-out run completes before the client
// gives up.
const apiTimeout = 6 * time.Minute

// apiClient talks to the REST surface of a running toolbench server.
type apiClient struct {
	endpoint string
	http     *http.Client
}

func newAPIClient(endpoint string) *apiClient {
	return &apiClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     &http.Client{Timeout: apiTimeout},
	}
}

type executeResult struct {
	Output        string `json:"output"`
	Error         string `json:"error"`
	ExecutionTime int64  `json:"executionTime"`
	Truncated     bool   `json:"truncated"`
	Metrics       struct {
		OutputBytes    int `json:"outputBytes"`
		TokensEstimate int `json:"tokensEstimate"`
	} `json:"metrics"`
}

type toolEntry struct {
	Server      string `json:"server"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Signature   string `json:"signature"`
	Source      string `json:"source"`
}

type tokenSavings struct {
	Name          int     `json:"name"`
	Description   int     `json:"description"`
	Full          int     `json:"full"`
	CurrentLevel  string  `json:"currentLevel"`
	SavingsVsFull float64 `json:"savingsVsFull"`
}

type searchResult struct {
	Results      []toolEntry  `json:"results"`
	Count        int          `json:"count"`
	TokenSavings tokenSavings `json:"tokenSavings"`
}

type infoResult struct {
	Tool          toolEntry `json:"tool"`
	TokenEstimate int       `json:"tokenEstimate"`
}

type healthResult struct {
	Status        string         `json:"status"`
	Servers       int            `json:"servers"`
	TotalTools    int            `json:"totalTools"`
	ToolsByServer map[string]int `json:"toolsByServer"`
}

// Execute posts code to /execute. Zero timeoutMs leaves the choice to the
// server's configured default.
func (a *apiClient) Execute(ctx context.Context, code, language string, timeoutMs int) (*executeResult, error) {
	body := map[string]interface{}{"code": code}
	if language != "" {
		body["language"] = language
	}
	if timeoutMs > 0 {
		body["timeout"] = timeoutMs
	}

	var res executeResult
	if err := a.post(ctx, "/execute", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *apiClient) Search(ctx context.Context, query, server, detail string) (*searchResult, error) {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	if server != "" {
		params.Set("server", server)
	}
	if detail != "" {
		params.Set("detail", detail)
	}

	path := "/tools/search"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var res searchResult
	if err := a.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *apiClient) Info(ctx context.Context, server, tool, detail string) (*infoResult, error) {
	path := fmt.Sprintf("/tools/info/%s/%s", url.PathEscape(server), url.PathEscape(tool))
	if detail != "" {
		path += "?detail=" + url.QueryEscape(detail)
	}

	var res infoResult
	if err := a.get(ctx, path, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *apiClient) Health(ctx context.Context) (*healthResult, error) {
	var res healthResult
	if err := a.get(ctx, "/health", &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (a *apiClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+path, nil)
	if err != nil {
		return err
	}
	return a.do(req, out)
}

func (a *apiClient) post(ctx context.Context, path string, payload, out interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+path, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

// do runs the request and decodes the body. Non-200 responses surface the
// server's error field when present.
func (a *apiClient) do(req *http.Request, out interface{}) error {
	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", a.endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
