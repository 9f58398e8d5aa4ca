package github

// User represents a GitHub user.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Email     string `json:"email"`
}

// ContentItem represents an item in a repository directory listing.
type ContentItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
	Size int    `json:"size"`
	SHA  string `json:"sha"`
}

// FileContent represents the decoded content of a file.
type FileContent struct {
	Path    string `json:"path"`
	Size    int    `json:"size"`
	SHA     string `json:"sha"`
	Content []byte `json:"content"`
}

// UpsertResult reports what an UpsertFile call did.
type UpsertResult struct {
	Path    string `json:"path"`
	SHA     string `json:"sha"`     // blob SHA after the write
	Created bool   `json:"created"` // false means the file was updated
}

// apiContentResponse is the GitHub API representation of file content.
type apiContentResponse struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// apiUpsertRequest is the PUT body for the contents API.
type apiUpsertRequest struct {
	Message string `json:"message"`
	Content string `json:"content"` // base64
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

// apiUpsertResponse is the PUT response from the contents API.
type apiUpsertResponse struct {
	Content struct {
		Path string `json:"path"`
		SHA  string `json:"sha"`
	} `json:"content"`
}
