package main

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// apiClient talks to the feedback service REST API.
type apiClient struct {
	r *resty.Client
}

func newAPIClient(baseURL, token string) *apiClient {
	r := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(2 * time.Minute)
	if token != "" {
		r.SetAuthToken(token)
	}
	return &apiClient{r: r}
}

// do sends a request and returns the raw response body on 2xx.
func (c *apiClient) do(method, path string, body any, query map[string]string) ([]byte, error) {
	req := c.r.R().SetQueryParams(query)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("http %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	if resp.StatusCode() == http.StatusNoContent {
		return nil, nil
	}
	return resp.Body(), nil
}

func (c *apiClient) get(path string, query map[string]string) ([]byte, error) {
	return c.do(http.MethodGet, path, nil, query)
}

func (c *apiClient) post(path string, body any) ([]byte, error) {
	return c.do(http.MethodPost, path, body, nil)
}

func (c *apiClient) delete(path string) error {
	_, err := c.do(http.MethodDelete, path, nil, nil)
	return err
}
