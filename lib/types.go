package lib

import "time"

// Repository is the slice of a search result the store cares about.
type Repository struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Owner       string    `json:"owner"`
	Description string    `json:"description"`
	Topics      []string  `json:"topics"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Release struct {
	TagName     string         `json:"tag_name"`
	Name        string         `json:"name"`
	PublishedAt time.Time      `json:"published_at"`
	Body        string         `json:"body"`
	HTMLURL     string         `json:"html_url"`
	Assets      []ReleaseAsset `json:"assets"`
}

type ReleaseAsset struct {
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
}

type Commit struct {
	SHA         string    `json:"sha"`
	CommittedAt time.Time `json:"committed_at"`
}

// DirEntry is one item of a repository directory listing.
type DirEntry struct {
	Name        string
	Type        string // "file" or "dir"
	DownloadURL string
	Size        int
}

// DirTree is a resolved directory listing. Subdirs holds the listings of
// first-level (and deeper, when fetched recursively) directories keyed by
// name; a directory whose listing could not be fetched maps to an empty
// tree rather than being absent.
type DirTree struct {
	Entries []DirEntry
	Subdirs map[string]*DirTree
}

// HasFile reports whether a file with the given name exists directly in
// this tree level.
func (t *DirTree) HasFile(name string) bool {
	if t == nil {
		return false
	}
	for _, e := range t.Entries {
		if e.Type == "file" && e.Name == name {
			return true
		}
	}
	return false
}

// DirNames returns the names of the directories directly in this tree
// level, in listing order.
func (t *DirTree) DirNames() []string {
	if t == nil {
		return nil
	}
	var names []string
	for _, e := range t.Entries {
		if e.Type == "dir" {
			names = append(names, e.Name)
		}
	}
	return names
}

// Subdir returns the resolved subtree for a first-level directory, or nil
// when it was never fetched.
func (t *DirTree) Subdir(name string) *DirTree {
	if t == nil || t.Subdirs == nil {
		return nil
	}
	return t.Subdirs[name]
}

// PatchFile is a user-patch candidate found in a patch repository root.
type PatchFile struct {
	Name        string `json:"name"`
	DownloadURL string `json:"download_url"`
}
