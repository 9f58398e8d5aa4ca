package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ayeeff/marketmap/pkg/errors"
	"github.com/ayeeff/marketmap/pkg/observability"
)

// ContentClient provides access to GitHub repository content.
type ContentClient struct {
	token      string
	httpClient *http.Client
	baseURL    string
	now        func() time.Time
}

// NewContentClient creates a content client with the given access token.
// An empty token allows unauthenticated reads of public repositories.
func NewContentClient(token string) *ContentClient {
	return &ContentClient{
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.github.com",
		now:        time.Now,
	}
}

// FetchUser retrieves the authenticated user's info.
func (c *ContentClient) FetchUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "GET", "/user", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListContents lists files and directories in a repository path.
func (c *ContentClient) ListContents(ctx context.Context, owner, repo, path string) ([]ContentItem, error) {
	if err := errors.ValidateRepoName(owner + "/" + repo); err != nil {
		return nil, err
	}

	var items []apiContentResponse
	url := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	if err := c.do(ctx, "GET", url, nil, &items); err != nil {
		return nil, err
	}

	result := make([]ContentItem, len(items))
	for i, item := range items {
		result[i] = ContentItem{
			Name: item.Name,
			Path: item.Path,
			Type: item.Type,
			Size: item.Size,
			SHA:  item.SHA,
		}
	}
	return result, nil
}

// FetchFile retrieves a file from a repository, base64-decoded.
func (c *ContentClient) FetchFile(ctx context.Context, owner, repo, path string) (*FileContent, error) {
	if err := errors.ValidateRepoName(owner + "/" + repo); err != nil {
		return nil, err
	}
	if err := errors.ValidateRepoPath(path); err != nil {
		return nil, err
	}

	var fileResp apiContentResponse
	url := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	if err := c.do(ctx, "GET", url, nil, &fileResp); err != nil {
		return nil, err
	}

	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(fileResp.Content, "\n", ""))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode content of %s", path)
	}

	return &FileContent{
		Path:    fileResp.Path,
		Size:    fileResp.Size,
		SHA:     fileResp.SHA,
		Content: content,
	}, nil
}

// UpsertFile creates or updates a file in one call. It fetches the current
// blob SHA first; if the file exists the write is an update, otherwise a
// create. The commit message gets a UTC timestamp appended, matching the
// history convention of the data repository:
//
//	Update countries market cap data - 2026-08-29 14:05 UTC
func (c *ContentClient) UpsertFile(ctx context.Context, owner, repo, path, message string, content []byte) (*UpsertResult, error) {
	if err := errors.ValidateRepoName(owner + "/" + repo); err != nil {
		return nil, err
	}
	if err := errors.ValidateRepoPath(path); err != nil {
		return nil, err
	}
	if c.token == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "a GitHub token is required to write to %s/%s", owner, repo)
	}

	observability.Pipeline().OnPublishStart(ctx, owner+"/"+repo, path)
	start := time.Now()

	result, err := c.upsert(ctx, owner, repo, path, message, content)
	observability.Pipeline().OnPublishComplete(ctx, owner+"/"+repo, path, time.Since(start), err)
	return result, err
}

func (c *ContentClient) upsert(ctx context.Context, owner, repo, path, message string, content []byte) (*UpsertResult, error) {
	timestamp := c.now().UTC().Format("2006-01-02 15:04 UTC")

	req := apiUpsertRequest{
		Message: fmt.Sprintf("%s - %s", message, timestamp),
		Content: base64.StdEncoding.EncodeToString(content),
	}

	// Existing file needs its blob SHA; a miss means create.
	created := true
	if existing, err := c.FetchFile(ctx, owner, repo, path); err == nil {
		req.SHA = existing.SHA
		created = false
	} else if !errors.Is(err, errors.ErrCodeNotFound) {
		return nil, err
	}

	var resp apiUpsertResponse
	url := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, path)
	if err := c.do(ctx, "PUT", url, req, &resp); err != nil {
		return nil, err
	}

	return &UpsertResult{
		Path:    resp.Content.Path,
		SHA:     resp.Content.SHA,
		Created: created,
	}, nil
}

// do performs an API request and JSON-decodes the response into v.
func (c *ContentClient) do(ctx context.Context, method, path string, body, v any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "encode request")
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create request")
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp, method, path); err != nil {
		return err
	}
	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode response of %s %s", method, path)
	}
	return nil
}

func checkStatus(resp *http.Response, method, path string) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.New(errors.ErrCodeNotFound, "%s not found", path)
	case resp.StatusCode == http.StatusUnauthorized:
		return errors.New(errors.ErrCodeUnauthorized, "bad credentials for %s %s", method, path)
	case resp.StatusCode == http.StatusForbidden:
		return errors.New(errors.ErrCodeForbidden, "forbidden: %s %s", method, path)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return errors.New(errors.ErrCodeNetwork, "GitHub API error (%d): %s", resp.StatusCode, string(body))
	}
}
