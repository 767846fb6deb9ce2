// Package printful is a thin client for the Printful mockup generator API.
package printful

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"mockupgen/internal/infra"
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = errors.New("printful: api key is required")

const (
	defaultBaseURL = "https://api.printful.com"
	createTaskPath = "/mockup-generator/create-task"
	taskPath       = "/mockup-generator/task"
)

// Options configures the Printful client.
type Options struct {
	APIKey         string
	BaseURL        string
	StoreID        string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the mockup generator endpoints.
type Client struct {
	rest    *resty.Client
	apiKey  string
	storeID string
	logger  *infra.Logger
}

// File is one placement image in a task request.
type File struct {
	Placement string `json:"placement"`
	ImageURL  string `json:"image_url"`
}

// CreateTaskRequest is the body of a create-task call.
type CreateTaskRequest struct {
	ProductID  int64   `json:"product_id"`
	VariantIDs []int64 `json:"variant_ids"`
	Format     string  `json:"format,omitempty"`
	Files      []File  `json:"files"`
}

// Task is the vendor's view of a mockup generation task.
type Task struct {
	TaskKey string   `json:"task_key"`
	Status  string   `json:"status"`
	Error   string   `json:"error,omitempty"`
	Mockups []Mockup `json:"mockups,omitempty"`
}

// Mockup is one rendered result.
type Mockup struct {
	Placement  string        `json:"placement"`
	VariantIDs []int64       `json:"variant_ids"`
	MockupURL  string        `json:"mockup_url"`
	Extra      []ExtraMockup `json:"extra,omitempty"`
}

// ExtraMockup is an additional angle rendered alongside a mockup.
type ExtraMockup struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Option      string `json:"option"`
	OptionGroup string `json:"option_group"`
}

// APIError is returned for any non-success response.
type APIError struct {
	StatusCode int
	Reason     string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("printful: status %d: %s (%s)", e.StatusCode, e.Message, e.Reason)
	}
	return fmt.Sprintf("printful: status %d: %s", e.StatusCode, e.Body)
}

type envelope struct {
	Code   int             `json:"code"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	var rest *resty.Client
	if opts.HTTPClient != nil {
		rest = resty.NewWithClient(opts.HTTPClient)
	} else {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		rest = resty.New().SetTimeout(timeout)
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	apiKey := strings.TrimSpace(opts.APIKey)
	rest.SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetAuthToken(apiKey)
	storeID := strings.TrimSpace(opts.StoreID)
	if storeID != "" {
		rest.SetHeader("X-PF-Store-Id", storeID)
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{rest: rest, apiKey: apiKey, storeID: storeID, logger: logger}, nil
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// CreateTask submits a mockup generation task.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (*Task, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if len(req.Files) == 0 {
		return nil, errors.New("printful: at least one file is required")
	}
	res, err := c.rest.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		Post(createTaskPath)
	if err != nil {
		return nil, fmt.Errorf("printful: create task: %w", err)
	}
	task, err := decodeTask(res)
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("task_key", task.TaskKey).
		Str("status", task.Status).
		Int("files", len(req.Files)).
		Msg("printful: task created")
	return task, nil
}

// GetTask fetches the current state of a task.
func (c *Client) GetTask(ctx context.Context, taskKey string) (*Task, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	taskKey = strings.TrimSpace(taskKey)
	if taskKey == "" {
		return nil, errors.New("printful: task key is required")
	}
	res, err := c.rest.R().
		SetContext(ctx).
		SetQueryParam("task_key", taskKey).
		Get(taskPath)
	if err != nil {
		return nil, fmt.Errorf("printful: get task: %w", err)
	}
	return decodeTask(res)
}

func decodeTask(res *resty.Response) (*Task, error) {
	body := res.Body()
	var env envelope
	decodeErr := json.Unmarshal(body, &env)
	if !res.IsSuccess() || (decodeErr == nil && env.Code != 0 && env.Code != http.StatusOK) {
		apiErr := &APIError{StatusCode: res.StatusCode(), Body: strings.TrimSpace(res.String())}
		if decodeErr == nil {
			if env.Code != 0 {
				apiErr.StatusCode = env.Code
			}
			if env.Error != nil {
				apiErr.Reason = env.Error.Reason
				apiErr.Message = env.Error.Message
			}
		}
		return nil, apiErr
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("printful: decode response: %w", decodeErr)
	}
	var task Task
	if err := json.Unmarshal(env.Result, &task); err != nil {
		return nil, fmt.Errorf("printful: decode task: %w", err)
	}
	return &task, nil
}

// URLs flattens the task's mockups into an ordered URL list. Extra angles
// follow their primary mockup when includeExtra is set.
func (t *Task) URLs(includeExtra bool) []string {
	if t == nil {
		return nil
	}
	var urls []string
	for _, m := range t.Mockups {
		if u := strings.TrimSpace(m.MockupURL); u != "" {
			urls = append(urls, u)
		}
		if !includeExtra {
			continue
		}
		for _, extra := range m.Extra {
			if u := strings.TrimSpace(extra.URL); u != "" {
				urls = append(urls, u)
			}
		}
	}
	return urls
}
