package subsonic

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

const (
	apiStatusOK = "ok"
	apiFormat   = "json"
)

// envelope is the outer object of every JSON response.
type envelope struct {
	Response json.RawMessage `json:"subsonic-response"`
}

// status is the part of subsonic-response common to every endpoint.
type status struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Error   *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// authParams returns the credential query parameters with a fresh salt.
func (c *Client) authParams() url.Values {
	salt := newSalt(8)
	q := url.Values{}
	q.Set("u", c.username)
	q.Set("t", token(c.password, salt))
	q.Set("s", salt)
	q.Set("v", c.apiVersion)
	q.Set("c", c.clientName)
	return q
}

// endpointURL builds <base>/rest/<endpoint>.<suffix>.
func (c *Client) endpointURL(endpoint string) string {
	return fmt.Sprintf("%s/rest/%s.%s", c.baseURL, endpoint, c.suffix)
}

// StreamURL returns an authenticated URL the player can fetch directly.
// The URL embeds a one-off token, so it should not be logged.
func (c *Client) StreamURL(songID string) string {
	q := c.authParams()
	q.Set("id", songID)
	return c.endpointURL("stream") + "?" + q.Encode()
}

// call performs a GET request against endpoint and returns the contents of
// subsonic-response once its status has been checked.
func (c *Client) call(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	q := c.authParams()
	q.Set("f", apiFormat)
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}

	c.logDebugf("subsonic: calling %s", endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpointURL(endpoint)+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.clientName)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: err}
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &TransportError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to parse JSON response: %w", err)}
	}
	if len(env.Response) == 0 {
		return nil, &Error{Message: "Unknown error"}
	}

	var st status
	if err := json.Unmarshal(env.Response, &st); err != nil {
		return nil, &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to parse status: %w", err)}
	}
	if st.Status != apiStatusOK {
		apiErr := &Error{Message: "Unknown error"}
		if st.Error != nil {
			apiErr.Code = st.Error.Code
			if st.Error.Message != "" {
				apiErr.Message = st.Error.Message
			}
		}
		return nil, apiErr
	}

	c.logDebugf("subsonic: %s succeeded", endpoint)
	return env.Response, nil
}

// callInto performs call and decodes the response into out.
func (c *Client) callInto(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	raw, err := c.call(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &TransportError{Endpoint: endpoint, Err: fmt.Errorf("failed to decode %s: %w", endpoint, err)}
	}
	return nil
}

// Raw calls an arbitrary endpoint and returns the complete JSON document,
// including the outer subsonic-response object.
func (c *Client) Raw(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	inner, err := c.call(ctx, endpoint, params)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{Response: inner})
}
