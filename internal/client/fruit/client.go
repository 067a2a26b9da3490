package fruit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	model "github.com/zhouzirui/fruitstand/backend/internal/model/fruit"
)

var ErrNotFound = errors.New("fruit not found")

// Client talks to a running fruitstand API.
type Client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
}

// New returns a Client for baseURL such as "http://localhost:8080".
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		dialer:  websocket.DefaultDialer,
	}
}

type errorBody struct {
	Error   string            `json:"error"`
	Details []model.Violation `json:"details"`
}

// Create posts a new fruit. A 422 answer is returned as *model.ValidationError.
func (c *Client) Create(ctx context.Context, name string, price float64) (model.Fruit, error) {
	payload, err := json.Marshal(model.Draft{Name: name, Price: price})
	if err != nil {
		return model.Fruit{}, err
	}

	var created model.Fruit
	err = c.do(ctx, http.MethodPost, "/fruits", payload, http.StatusCreated, &created)
	return created, err
}

// List fetches every fruit.
func (c *Client) List(ctx context.Context) ([]model.Fruit, error) {
	var items []model.Fruit
	if err := c.do(ctx, http.MethodGet, "/fruits", nil, http.StatusOK, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches one fruit; unknown ids yield ErrNotFound.
func (c *Client) Get(ctx context.Context, id int64) (model.Fruit, error) {
	var item model.Fruit
	err := c.do(ctx, http.MethodGet, "/fruits/"+strconv.FormatInt(id, 10), nil, http.StatusOK, &item)
	return item, err
}

// Watch streams fruit events from the websocket feed until ctx ends or the server closes.
func (c *Client) Watch(ctx context.Context, fn func(model.Event)) error {
	u, err := url.Parse(c.baseURL + "/ws/fruits")
	if err != nil {
		return errors.Wrap(err, "parse base url")
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return errors.Wrap(err, "dial feed")
	}
	defer conn.Close()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		var msg struct {
			Type      string          `json:"type"`
			Data      json.RawMessage `json:"data"`
			Timestamp int64           `json:"timestamp"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Wrap(err, "read feed")
		}
		if msg.Type != model.EventCreated {
			continue
		}

		var item model.Fruit
		if err := json.Unmarshal(msg.Data, &item); err != nil {
			return errors.Wrap(err, "decode feed event")
		}
		fn(model.Event{Type: msg.Type, Fruit: item, At: time.Unix(msg.Timestamp, 0).UTC()})
	}
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, want int, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if resp.StatusCode == want {
		return errors.Wrap(json.NewDecoder(resp.Body).Decode(out), "decode response")
	}

	var apiErr errorBody
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)

	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnprocessableEntity:
		return &model.ValidationError{Violations: apiErr.Details}
	default:
		return fmt.Errorf("%s %s: unexpected status %d: %s", method, path, resp.StatusCode, apiErr.Error)
	}
}
