package export

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Publisher pushes export files to a GitHub repository through the contents
// API, so consumers can read them from raw.githubusercontent.com without
// this service exposing anything itself.
//
// Pushes are rate-limited by a minimum interval; Force bypasses the guard
// for the manual push endpoint.
type Publisher struct {
	apiBase    string
	repo       string // "owner/name"
	branch     string
	token      string
	httpClient *http.Client
	log        zerolog.Logger

	mu       sync.Mutex
	lastPush time.Time
	minGap   time.Duration
}

// NewPublisher creates a GitHub publisher. An empty token disables
// publishing (Push becomes a logged no-op).
func NewPublisher(repo, branch, token string, minGap time.Duration, log zerolog.Logger) *Publisher {
	return &Publisher{
		apiBase:    "https://api.github.com",
		repo:       repo,
		branch:     branch,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		minGap:     minGap,
		log:        log.With().Str("component", "publisher").Logger(),
	}
}

// Enabled reports whether publishing is configured.
func (p *Publisher) Enabled() bool {
	return p.token != "" && p.repo != ""
}

// LastPush returns when the last successful push happened (zero if never).
func (p *Publisher) LastPush() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastPush
}

// Push uploads the given local files to the repository under their base
// names prefixed with "api_exports/". When force is false and the minimum
// interval has not elapsed, the push is skipped and false is returned.
func (p *Publisher) Push(paths []string, force bool) (bool, error) {
	if !p.Enabled() {
		p.log.Debug().Msg("Publishing disabled, skipping push")
		return false, nil
	}

	p.mu.Lock()
	sinceLast := time.Since(p.lastPush)
	if !force && !p.lastPush.IsZero() && sinceLast < p.minGap {
		p.mu.Unlock()
		p.log.Debug().Dur("since_last", sinceLast).Msg("Skipping push, interval not elapsed")
		return false, nil
	}
	p.mu.Unlock()

	message := fmt.Sprintf("Auto-update guild data - %s", time.Now().UTC().Format("2006-01-02 15:04"))

	for _, path := range paths {
		remotePath := "api_exports/" + filepath.Base(path)
		if err := p.pushFile(path, remotePath, message); err != nil {
			return false, err
		}
	}

	p.mu.Lock()
	p.lastPush = time.Now()
	p.mu.Unlock()

	p.log.Info().Int("files", len(paths)).Str("repo", p.repo).Msg("Exports pushed")
	return true, nil
}

// pushFile uploads one file via the contents API. Updates need the current
// blob SHA, so it is looked up first; a 404 means the file is new.
func (p *Publisher) pushFile(localPath, remotePath, message string) error {
	content, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", localPath, err)
	}

	apiURL := fmt.Sprintf("%s/repos/%s/contents/%s", p.apiBase, p.repo, remotePath)

	sha, err := p.currentSHA(apiURL)
	if err != nil {
		return err
	}

	body := map[string]string{
		"message": message,
		"content": base64.StdEncoding.EncodeToString(content),
		"branch":  p.branch,
	}
	if sha != "" {
		body["sha"] = sha
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode push payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPut, apiURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("github API returned status %d for %s", resp.StatusCode, remotePath)
	}

	p.log.Debug().Str("path", remotePath).Msg("File pushed")
	return nil
}

// currentSHA fetches the existing blob SHA for a path, or "" if the file
// does not exist yet.
func (p *Publisher) currentSHA(apiURL string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build SHA lookup request: %w", err)
	}
	p.setHeaders(req)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("SHA lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github API returned status %d on SHA lookup", resp.StatusCode)
	}

	var result struct {
		SHA string `json:"sha"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode SHA lookup response: %w", err)
	}
	return result.SHA, nil
}

func (p *Publisher) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "token "+p.token)
	req.Header.Set("Accept", "application/vnd.github.v3+json")
}
