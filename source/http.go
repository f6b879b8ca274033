package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// HTTP fetches files relative to a base URL.
type HTTP struct {
	Base   string
	Client *http.Client
}

// Fetch requests base/name. A response other than 2xx is a *StatusError.
func (h HTTP) Fetch(ctx context.Context, name string) (string, error) {
	u, err := url.JoinPath(h.Base, name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, name)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", err
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Code: resp.StatusCode}
	}

	return readAll(resp.Body)
}
