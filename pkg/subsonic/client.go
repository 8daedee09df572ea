package subsonic

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config holds client configuration.
type Config struct {
	BaseURL    string        // Required: server root, e.g. https://music.example.com
	Username   string        // Required
	Password   string        // Required: only ever sent as a salted token
	APIVersion string        // Optional: defaults to DefaultAPIVersion
	ClientName string        // Optional: defaults to DefaultClientName
	Suffix     string        // Optional: endpoint suffix, defaults to "view"
	Timeout    time.Duration // Optional: per-request timeout, defaults to 20s
	TLSVerify  *bool         // Optional: set to false to accept self-signed certificates
	HTTPClient *http.Client  // Optional: overrides Timeout and TLSVerify
	Logger     Logger        // Optional: debug logging
}

// Logger is an optional interface for logging.
type Logger interface {
	Debugf(format string, args ...interface{})
}

const (
	DefaultAPIVersion = "1.16.1"
	DefaultClientName = "simplay"
	DefaultSuffix     = "view"
	DefaultTimeout    = 20 * time.Second
)

// Client is the entry point for Subsonic API operations.
type Client struct {
	baseURL    string
	username   string
	password   string
	apiVersion string
	clientName string
	suffix     string
	httpClient *http.Client
	logger     Logger

	browse    *BrowseService
	annotate  *AnnotationService
	playlists *PlaylistService
}

// NewClient creates a new Subsonic API client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("subsonic: BaseURL is required")
	}
	if cfg.Username == "" {
		return nil, fmt.Errorf("subsonic: Username is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("subsonic: Password is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
		if cfg.TLSVerify != nil && !*cfg.TLSVerify {
			httpClient.Transport = &http.Transport{
				Proxy:           http.ProxyFromEnvironment,
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			}
		}
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		apiVersion: withDefault(cfg.APIVersion, DefaultAPIVersion),
		clientName: withDefault(cfg.ClientName, DefaultClientName),
		suffix:     withDefault(cfg.Suffix, DefaultSuffix),
		httpClient: httpClient,
		logger:     cfg.Logger,
	}

	c.browse = &BrowseService{client: c}
	c.annotate = &AnnotationService{client: c}
	c.playlists = &PlaylistService{client: c}

	return c, nil
}

// Browse returns the browsing and search service.
func (c *Client) Browse() *BrowseService {
	return c.browse
}

// Annotate returns the scrobble, star and rating service.
func (c *Client) Annotate() *AnnotationService {
	return c.annotate
}

// Playlists returns the playlist service.
func (c *Client) Playlists() *PlaylistService {
	return c.playlists
}

func (c *Client) logDebugf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debugf(format, args...)
	}
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
