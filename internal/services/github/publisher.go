package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"scribe/internal/services"
)

// DefaultAPIURL is the GitHub REST API base used when none is configured.
const DefaultAPIURL = "https://api.github.com"

// Config carries the repository coordinates for report publishing.
type Config struct {
	Token     string
	Repo      string // owner/repo
	Branch    string
	RemoteDir string
	APIURL    string

	// SkipExisting makes Publish return an empty URL instead of updating a
	// file that is already in the repository.
	SkipExisting bool
}

// Publisher uploads files to a GitHub repository via the contents API.
type Publisher struct {
	token        string
	repo         string
	branch       string
	remoteDir    string
	apiURL       string
	skipExisting bool
	httpClient   *http.Client
}

// Option customizes the publisher.
type Option func(*Publisher)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *Publisher) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewPublisher constructs a publisher. A missing token or repository leaves
// the publisher disabled rather than failing.
func NewPublisher(cfg Config, opts ...Option) *Publisher {
	pub := &Publisher{
		token:        strings.TrimSpace(cfg.Token),
		repo:         strings.TrimSpace(cfg.Repo),
		branch:       strings.TrimSpace(cfg.Branch),
		remoteDir:    strings.Trim(strings.TrimSpace(cfg.RemoteDir), "/"),
		apiURL:       strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/"),
		skipExisting: cfg.SkipExisting,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
	if pub.branch == "" {
		pub.branch = "main"
	}
	if pub.remoteDir == "" {
		pub.remoteDir = "reports"
	}
	if pub.apiURL == "" {
		pub.apiURL = DefaultAPIURL
	}
	for _, opt := range opts {
		opt(pub)
	}
	return pub
}

// Enabled reports whether the publisher has enough configuration to upload.
func (p *Publisher) Enabled() bool {
	return p != nil && p.token != "" && p.repo != ""
}

// Publish uploads a local file under the configured remote directory and
// returns its html_url. An unconfigured publisher returns an empty URL
// without error. Existing remote files are updated in place unless
// SkipExisting is set, in which case an empty URL signals the skip.
func (p *Publisher) Publish(ctx context.Context, filePath string) (string, error) {
	if !p.Enabled() {
		return "", nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "publish", "github", "read report file", err)
	}

	remotePath := path.Join(p.remoteDir, filepath.Base(filePath))
	sha, err := p.existingSHA(ctx, remotePath)
	if err != nil {
		return "", err
	}
	if sha != "" && p.skipExisting {
		return "", nil
	}

	payload := map[string]string{
		"message": fmt.Sprintf("Add report: %s", filepath.Base(filePath)),
		"content": base64.StdEncoding.EncodeToString(data),
		"branch":  p.branch,
	}
	if sha != "" {
		payload["sha"] = sha
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrTransient, "publish", "github", "encode upload payload", err)
	}

	req, err := p.newRequest(ctx, http.MethodPut, remotePath, bytes.NewReader(encoded))
	if err != nil {
		return "", err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "github", "upload file", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "github", "read upload response", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		message := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return "", services.Wrap(services.ErrExternalTool, "publish", "github", message, nil)
	}

	var result struct {
		Content struct {
			HTMLURL string `json:"html_url"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "github", "parse upload response", err)
	}
	return result.Content.HTMLURL, nil
}

// existingSHA returns the blob sha when the remote file already exists so
// the upload becomes an update instead of a conflicting create.
func (p *Publisher) existingSHA(ctx context.Context, remotePath string) (string, error) {
	req, err := p.newRequest(ctx, http.MethodGet, remotePath, nil)
	if err != nil {
		return "", err
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "github", "check existing file", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		message := fmt.Sprintf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		return "", services.Wrap(services.ErrExternalTool, "publish", "github", message, nil)
	}

	var result struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "publish", "github", "parse contents response", err)
	}
	return result.SHA, nil
}

func (p *Publisher) newRequest(ctx context.Context, method, remotePath string, body io.Reader) (*http.Request, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s", p.apiURL, p.repo, remotePath)
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "publish", "github", "build request", err)
	}
	req.Header.Set("Authorization", "token "+p.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}
