package dashfm

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultEndpoint is the dashboard the tool was written for
const DefaultEndpoint = "https://playerservers.com"

// Response is the part of an HTTP response the dashboard protocol uses
type Response struct {
	StatusCode int
	Body       string
	Cookies    []*http.Cookie
}

// Cookie returns the value of the named cookie set by the response
func (r *Response) Cookie(name string) (string, bool) {
	for _, c := range r.Cookies {
		if c.Name == name && c.Value != "" {
			return c.Value, true
		}
	}
	return "", false
}

// Client handles HTTP communication with the dashboard
type Client struct {
	endpoint string
	http     *http.Client
	log      logrus.FieldLogger
}

// NewClient creates a client for the dashboard at endpoint
func NewClient(endpoint string, insecure bool, timeout time.Duration, log logrus.FieldLogger) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint: %q needs a scheme and host", endpoint)
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	httpClient := &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: insecure},
		},
	}

	return &Client{
		endpoint: strings.TrimRight(endpoint, "/"),
		http:     httpClient,
		log:      log,
	}, nil
}

// Endpoint returns the base URL of the dashboard
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Do performs a request and reads the whole body. Only transport failures
// and server errors are reported; everything else is left to Classify.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	path := r.URL()

	var body io.Reader
	if r.Form != nil {
		body = strings.NewReader(r.Body())
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, c.endpoint+path, body)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: err}
	}
	for k, v := range r.Header {
		req.Header[k] = append([]string(nil), v...)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Path: path, Err: err}
	}

	c.log.WithFields(logrus.Fields{
		"method":  r.Method,
		"path":    path,
		"status":  resp.StatusCode,
		"bytes":   len(data),
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("dashboard request")

	if resp.StatusCode >= http.StatusInternalServerError {
		return nil, &HTTPError{Path: path, StatusCode: resp.StatusCode}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       string(data),
		Cookies:    resp.Cookies(),
	}, nil
}
