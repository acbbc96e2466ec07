package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	errprocess "edu_social_client/pkg/err"
	"edu_social_client/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenSource supply the bearer token attached to every call
type TokenSource interface {
	BearerToken() (string, error)
}

// File multipart file part
type File struct {
	Field   string
	Name    string
	Content []byte
}

// Request one REST call
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body JSON encoded when not nil
	Body interface{}
	// Form and Files switch the call to multipart/form-data
	Form  map[string]string
	Files []File
}

// APIError non-2xx response
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Unwrap API errors are network errors
func (e *APIError) Unwrap() error {
	return errprocess.ErrNetwork
}

// Client REST client of one backend, built on the fiber http agent
type Client struct {
	baseURL string
	tokens  TokenSource
	timeout time.Duration
}

// New create Client, baseURL without trailing slash
func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		timeout: timeout,
	}
}

// Do send req and decode a JSON response into out when out is not nil
func (c *Client) Do(ctx context.Context, req Request, out interface{}) error {
	body, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errprocess.Wrap(errprocess.ErrNetwork, "decode "+req.Method+" "+req.Path, err)
	}
	return nil
}

// Bytes send req and return the raw body
func (c *Client) Bytes(ctx context.Context, req Request) ([]byte, error) {
	return c.send(ctx, req)
}

// Get GET path
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, Request{Method: fiber.MethodGet, Path: path, Query: query}, out)
}

// Post POST path with JSON body
func (c *Client) Post(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.Do(ctx, Request{Method: fiber.MethodPost, Path: path, Query: query, Body: body}, out)
}

// Put PUT path with JSON body
func (c *Client) Put(ctx context.Context, path string, query url.Values, body, out interface{}) error {
	return c.Do(ctx, Request{Method: fiber.MethodPut, Path: path, Query: query, Body: body}, out)
}

// Patch PATCH path
func (c *Client) Patch(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, Request{Method: fiber.MethodPatch, Path: path, Query: query}, out)
}

// Delete DELETE path
func (c *Client) Delete(ctx context.Context, path string, query url.Values) error {
	return c.Do(ctx, Request{Method: fiber.MethodDelete, Path: path, Query: query}, nil)
}

func (c *Client) send(ctx context.Context, r Request) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", errprocess.ErrNetwork, r.Method, r.Path, err)
	}

	bearer, err := c.tokens.BearerToken()
	if err != nil {
		return nil, errprocess.Wrap(errprocess.ErrSession, "no bearer token for "+r.Path, err)
	}

	uri := c.baseURL + r.Path
	if len(r.Query) > 0 {
		uri += "?" + r.Query.Encode()
	}
	requestID := uuid.NewString()

	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(r.Method)
	req.SetRequestURI(uri)
	a.Set(fiber.HeaderAuthorization, "Bearer "+bearer)
	a.Set(fiber.HeaderXRequestID, requestID)
	a.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)

	if t := c.deadline(ctx); t > 0 {
		a.Timeout(t)
	}

	switch {
	case len(r.Files) > 0 || len(r.Form) > 0:
		args := fiber.AcquireArgs()
		for k, v := range r.Form {
			args.Set(k, v)
		}
		for _, f := range r.Files {
			a.FileData(&fiber.FormFile{Fieldname: f.Field, Name: f.Name, Content: f.Content})
		}
		a.MultipartForm(args)
		fiber.ReleaseArgs(args)
	case r.Body != nil:
		b, err := json.Marshal(r.Body)
		if err != nil {
			fiber.ReleaseAgent(a)
			return nil, errprocess.Wrap(errprocess.ErrValidation, "encode "+r.Path, err)
		}
		a.ContentType(fiber.MIMEApplicationJSON)
		a.Body(b)
	}

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return nil, errprocess.Wrap(errprocess.ErrNetwork, "parse "+uri, err)
	}

	logger.Log.Debug("http request", zap.String("method", r.Method), zap.String("uri", uri), zap.String("request_id", requestID))

	// Agent.Bytes ignores ctx, the call keeps running in the background after a cancel
	done := make(chan reply, 1)
	go func() {
		var res reply
		res.code, res.body, res.errs = a.Bytes()
		done <- res
	}()

	var res reply
	select {
	case <-ctx.Done():
		logger.Log.Debug("http request cancelled", zap.String("uri", uri), zap.String("request_id", requestID))
		return nil, fmt.Errorf("%w: %s %s: %w", errprocess.ErrNetwork, r.Method, r.Path, ctx.Err())
	case res = <-done:
	}
	code, body, errs := res.code, res.body, res.errs
	if len(errs) > 0 {
		return nil, errprocess.Wrap(errprocess.ErrNetwork, r.Method+" "+r.Path, errs[0])
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		apiErr := &APIError{Method: r.Method, Path: r.Path, StatusCode: code, Body: truncate(string(body), 256)}
		logger.Log.Error("http call failed",
			zap.String("method", r.Method),
			zap.String("path", r.Path),
			zap.Int("status", code),
			zap.String("request_id", requestID),
		)
		return nil, apiErr
	}
	return body, nil
}

type reply struct {
	code int
	body []byte
	errs []error
}

// deadline the smaller of the ctx deadline and the client timeout
func (c *Client) deadline(ctx context.Context) time.Duration {
	t := c.timeout
	if d, ok := ctx.Deadline(); ok {
		if left := time.Until(d); t <= 0 || left < t {
			t = left
		}
	}
	if t < time.Millisecond && t > 0 {
		t = time.Millisecond
	}
	return t
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
