// Package remote exposes a frontend device over HTTP so that a DiSEqC
// session can run on a different host than the one holding the DVB card.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/w1xm/diseqc_interface/diseqc"
	"github.com/w1xm/diseqc_interface/frontend"
)

// requestTimeout bounds a round trip, on top of the driver's own reply
// timeout for receive requests.
const requestTimeout = 10 * time.Second

// Request is one ioctl forwarded to the server. Buffer is nil for requests
// that take their argument by value.
type Request struct {
	Request uint32 `json:"request"`
	Value   int    `json:"value"`
	Buffer  []byte `json:"buffer,omitempty"`
}

// Response carries the updated buffer and the driver's errno, if any.
type Response struct {
	Buffer []byte `json:"buffer,omitempty"`
	Errno  int    `json:"errno,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Client is a frontend.Device that forwards every request to a Server.
type Client struct {
	baseURL  string
	password string
	client   *http.Client
}

func NewClient(baseURL, password string) *Client {
	return &Client{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		password: password,
		client:   &http.Client{},
	}
}

func (c *Client) timeout(req Request) time.Duration {
	if req.Request != frontend.FE_DISEQC_RECV_SLAVE_REPLY {
		return requestTimeout
	}
	var sr diseqc.SlaveReply
	if err := sr.UnmarshalBinary(req.Buffer); err != nil || sr.Timeout <= 0 {
		return requestTimeout
	}
	return requestTimeout + time.Duration(sr.Timeout)*time.Millisecond
}

func (c *Client) send(req Request) (*Response, error) {
	body, err := json.Marshal(&req)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout(req))
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/ioctl", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.password != "" {
		httpReq.SetBasicAuth("diseqc", c.password)
	}
	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status code: %s\n%s", resp.Status, string(data))
	}
	var sendResponse Response
	if err := json.Unmarshal(data, &sendResponse); err != nil {
		return nil, err
	}
	return &sendResponse, nil
}

func (r *Response) err() error {
	switch {
	case r.Errno != 0:
		return syscall.Errno(r.Errno)
	case r.Error != "":
		return errors.New(r.Error)
	}
	return nil
}

func (c *Client) IoctlValue(req uint32, value int) error {
	resp, err := c.send(Request{Request: req, Value: value})
	if err != nil {
		return err
	}
	return resp.err()
}

func (c *Client) IoctlBuffer(req uint32, buf []byte) error {
	resp, err := c.send(Request{Request: req, Buffer: buf})
	if err != nil {
		return err
	}
	if err := resp.err(); err != nil {
		return err
	}
	if len(resp.Buffer) != len(buf) {
		return fmt.Errorf("server returned %d byte buffer, want %d", len(resp.Buffer), len(buf))
	}
	copy(buf, resp.Buffer)
	return nil
}

func (c *Client) Close() error {
	return nil
}
