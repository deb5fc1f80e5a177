package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type apiClient struct {
	base string
	http *http.Client
}

func newAPIClient(base string, timeout time.Duration) *apiClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &apiClient{base: strings.TrimRight(base, "/"), http: &http.Client{Timeout: timeout}}
}

// call envoie body en JSON et décode la réponse; un statut >= 400 devient
// une erreur portant le message du serveur.
func (c *apiClient) call(ctx context.Context, method, path string, body any) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request")
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rdr)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read response")
	}
	var decoded any
	if len(bytes.TrimSpace(b)) > 0 {
		if err := json.Unmarshal(b, &decoded); err != nil {
			decoded = strings.TrimSpace(string(b))
		}
	}
	if resp.StatusCode >= 400 {
		if m, ok := decoded.(map[string]any); ok && m["error"] != nil {
			return nil, errors.Errorf("%s (HTTP %d)", m["error"], resp.StatusCode)
		}
		return nil, errors.Errorf("HTTP %d", resp.StatusCode)
	}
	return decoded, nil
}

type printer struct {
	w      io.Writer
	format string
}

func (p printer) print(v any) error {
	switch p.format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return errors.Wrap(err, "encode yaml")
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("format de sortie inconnu: %s", p.format)
	}
}
