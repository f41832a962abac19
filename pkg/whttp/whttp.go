package whttp

import (
	"context"
	"io"
	"net/http"
	"strings"
)

const USER_AGENT = "groupgen/1.0 (+https://github.com/sw33tLie/groupgen)"

type WHTTPHeader struct {
	Name  string
	Value string
}

type WHTTPReq struct {
	URL     string
	Method  string
	Headers []WHTTPHeader
}

type WHTTPRes struct {
	StatusCode int
	BodyString string
}

// Doer is satisfied by *http.Client and by retryablehttp's StandardClient.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

func SendHTTPRequest(ctx context.Context, wReq *WHTTPReq, client Doer) (*WHTTPRes, error) {
	if client == nil {
		client = http.DefaultClient
	}
	method := wReq.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, wReq.URL, nil)
	if err != nil {
		return nil, err
	}

	// Set common headers
	req.Header.Set("User-Agent", USER_AGENT)
	req.Header.Set("Accept", "application/json")

	// Set custom headers
	for _, h := range wReq.Headers {
		req.Header.Set(h.Name, h.Value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &WHTTPRes{
		StatusCode: resp.StatusCode,
		BodyString: strings.ToValidUTF8(string(bodyBytes), ""),
	}, nil
}
