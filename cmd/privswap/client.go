package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const requestTimeout = 30 * time.Second

var httpClient = &http.Client{Timeout: requestTimeout}

// doRequest calls the REST interface of the daemon and returns the body of
// the response. Replies with a non 2xx status are returned as errors.
func doRequest(method, path string, query url.Values, body interface{}) ([]byte, error) {
	state, err := getState()
	if err != nil {
		return nil, err
	}
	server, ok := state["rpcserver"]
	if !ok {
		return nil, errors.New("set rpcserver with `config set rpcserver`")
	}

	endpoint := strings.TrimSuffix(server, "/") + path
	if len(query) > 0 {
		endpoint = fmt.Sprintf("%s?%s", endpoint, query.Encode())
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequest(method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to daemon: %w", err)
	}
	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errResp := struct {
			Error string `json:"error"`
		}{}
		if err := json.Unmarshal(buf, &errResp); err == nil && errResp.Error != "" {
			return nil, fmt.Errorf("%s (%d)", errResp.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("daemon replied %d: %s", resp.StatusCode, string(buf))
	}
	return buf, nil
}
