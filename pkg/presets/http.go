package presets

import (
	"context"
	"fmt"
	"strings"

	"github.com/lcalzada-xor/xsslab/pkg/logger"
	"github.com/lcalzada-xor/xsslab/pkg/network"
)

// HTTPLoader fetches presets from a payload server, the way the browser UI
// does. Bodies are returned verbatim and not cached.
type HTTPLoader struct {
	BaseURL string
	Client  *network.Client
	Logger  *logger.Logger
}

// NewHTTPLoader creates a loader for baseURL.
func NewHTTPLoader(baseURL string, client *network.Client, log *logger.Logger) *HTTPLoader {
	if log == nil {
		log = logger.Nop()
	}
	return &HTTPLoader{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  client,
		Logger:  log,
	}
}

// Load implements Loader.
func (l *HTTPLoader) Load(ctx context.Context, url string) (string, error) {
	if _, err := filePath(url); err != nil {
		return "", err
	}
	full := l.BaseURL + url
	l.Logger.V("Fetching preset %s", full)

	body, err := l.Client.Fetch(ctx, full)
	if err != nil {
		return "", fmt.Errorf("loading preset: %w", err)
	}
	return string(body), nil
}
