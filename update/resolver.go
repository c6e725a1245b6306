package update

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/kostore/kostore/catalog"
	"github.com/kostore/kostore/lib"
	"github.com/kostore/kostore/plugin"
)

// Type names which resolution tier produced an update candidate.
type Type string

const (
	TypeRelease    Type = "release"
	TypeCommit     Type = "commit"
	TypeRepository Type = "repository"
)

// RecentUpdateLabel is the synthetic version label of a Tier 3 result; it
// is a human string, not a parsable version.
const RecentUpdateLabel = "Recent Update"

// commitGrace pads the local install time before comparing against
// upstream commit timestamps, absorbing clock skew and the install delay
// itself.
const commitGrace = 24 * time.Hour

// recencyWindow is how far back a repository update still counts as a
// "possible update" for plugins with no readable version.
const recencyWindow = 7 * 24 * time.Hour

// Candidate describes one available update. It is produced by the
// resolver and consumed once by the installer; it is never persisted.
type Candidate struct {
	PluginName       string
	Owner            string
	Repo             string
	InstalledVersion string
	LatestVersion    string
	UpdateType       Type
	DownloadURL      string
	ReleaseNotes     string
	PublishedAt      time.Time
}

// Resolver decides whether installed plugins are outdated, using an
// ordered chain of strategies. The first strategy with a usable signal
// decides the outcome; a definite "no update" from a strategy terminates
// the chain just like an update does.
type Resolver struct {
	logger   *log.Logger
	provider lib.Provider
	now      func() time.Time
}

func NewResolver(logger *log.Logger, provider lib.Provider) *Resolver {
	return &Resolver{logger: logger, provider: provider, now: time.Now}
}

// tierOutcome is a strategy's tagged result.
type tierOutcome int

const (
	// tierNoSignal means the strategy was not applicable; consult the next.
	tierNoSignal tierOutcome = iota
	// tierNoUpdate means the strategy decided the plugin is current.
	tierNoUpdate
	// tierUpdate means the strategy found an update.
	tierUpdate
)

type strategy struct {
	name  string
	check func(ctx context.Context, installed plugin.Installed, cand catalog.Candidate) (tierOutcome, *Candidate)
}

// Resolve matches one installed plugin against the catalog and runs the
// resolution chain. It returns nil when no catalog entry matches or no
// tier finds an update; neither case is an error.
func (r *Resolver) Resolve(ctx context.Context, installed plugin.Installed, cat []catalog.Candidate) *Candidate {
	cand := matchCandidate(installed.Name, cat)
	if cand == nil {
		r.logger.Debug("No catalog entry for installed plugin", "name", installed.Name)
		return nil
	}

	strategies := []strategy{
		{name: "release", check: r.releaseStrategy},
		{name: "commit", check: r.commitStrategy},
		{name: "recency", check: r.recencyStrategy},
	}

	for _, s := range strategies {
		outcome, update := s.check(ctx, installed, *cand)
		switch outcome {
		case tierUpdate:
			r.logger.Info("Update available", "plugin", installed.Name,
				"installed", installed.Version, "latest", update.LatestVersion, "tier", s.name)
			return update
		case tierNoUpdate:
			r.logger.Debug("Plugin is current", "plugin", installed.Name, "tier", s.name)
			return nil
		}
	}

	return nil
}

// CheckAll resolves every installed plugin and returns the update set.
func (r *Resolver) CheckAll(ctx context.Context, installed []plugin.Installed, cat []catalog.Candidate) []Candidate {
	var updates []Candidate
	for _, p := range installed {
		if u := r.Resolve(ctx, p, cat); u != nil {
			updates = append(updates, *u)
		}
	}
	r.logger.Info("Update check complete", "installed", len(installed), "updates", len(updates))
	return updates
}

// matchCandidate finds the catalog entry for an installed plugin: exact
// name, then with the .koplugin suffix stripped, then case-insensitive on
// the stripped name. First match wins.
func matchCandidate(name string, cat []catalog.Candidate) *catalog.Candidate {
	for i := range cat {
		if cat[i].Name == name {
			return &cat[i]
		}
	}

	stripped := strings.TrimSuffix(name, plugin.DirSuffix)
	for i := range cat {
		if cat[i].Name == stripped {
			return &cat[i]
		}
	}

	for i := range cat {
		if strings.EqualFold(cat[i].Name, stripped) {
			return &cat[i]
		}
	}

	return nil
}

// releaseStrategy compares the latest tagged release against the
// installed version. A present release decides the outcome either way; a
// missing release or a transport failure yields no signal.
func (r *Resolver) releaseStrategy(ctx context.Context, installed plugin.Installed, cand catalog.Candidate) (tierOutcome, *Candidate) {
	release, err := r.provider.LatestRelease(ctx, cand.Owner, cand.Name)
	if err != nil {
		r.logger.Warn("Failed to fetch latest release", "repo", cand.Owner+"/"+cand.Name, "error", err)
		return tierNoSignal, nil
	}
	if release == nil || release.TagName == "" {
		return tierNoSignal, nil
	}

	if !IsNewerVersion(installed.Version, release.TagName) {
		return tierNoUpdate, nil
	}

	return tierUpdate, &Candidate{
		PluginName:       installed.Name,
		Owner:            cand.Owner,
		Repo:             cand.Name,
		InstalledVersion: installed.Version,
		LatestVersion:    release.TagName,
		UpdateType:       TypeRelease,
		DownloadURL:      releaseDownloadURL(release, cand.Owner, cand.Name),
		ReleaseNotes:     release.Body,
		PublishedAt:      release.PublishedAt,
	}
}

// releaseDownloadURL picks the first .zip asset, falling back to the
// source archive of the tag.
func releaseDownloadURL(release *lib.Release, owner, repo string) string {
	for _, asset := range release.Assets {
		if strings.HasSuffix(asset.Name, plugin.ArchiveSuffix) {
			return asset.DownloadURL
		}
	}
	return fmt.Sprintf("https://github.com/%s/%s/archive/%s.zip", owner, repo, release.TagName)
}

// commitStrategy compares the newest upstream commit against the local
// metadata file's modification time plus the grace window. Any stat,
// fetch, or parse failure is swallowed and falls through to the next
// tier.
func (r *Resolver) commitStrategy(ctx context.Context, installed plugin.Installed, cand catalog.Candidate) (tierOutcome, *Candidate) {
	info, err := plugin.MetaModTime(installed.Path)
	if err != nil {
		return tierNoSignal, nil
	}

	commits, err := r.provider.RecentCommits(ctx, cand.Owner, cand.Name, time.Time{})
	if err != nil || len(commits) == 0 {
		if err != nil {
			r.logger.Warn("Failed to fetch commits", "repo", cand.Owner+"/"+cand.Name, "error", err)
		}
		return tierNoSignal, nil
	}

	latest := commits[0]
	if !latest.CommittedAt.After(info.ModTime().Add(commitGrace)) {
		return tierNoUpdate, nil
	}

	sha := latest.SHA
	if len(sha) > 8 {
		sha = sha[:8]
	}
	return tierUpdate, &Candidate{
		PluginName:       installed.Name,
		Owner:            cand.Owner,
		Repo:             cand.Name,
		InstalledVersion: installed.Version,
		LatestVersion:    sha,
		UpdateType:       TypeCommit,
		PublishedAt:      latest.CommittedAt,
	}
}

// recencyStrategy is the last resort for plugins with no readable
// version: a repository touched within the window counts as a possible
// update. False positives on metadata-only pushes are accepted.
func (r *Resolver) recencyStrategy(_ context.Context, installed plugin.Installed, cand catalog.Candidate) (tierOutcome, *Candidate) {
	if installed.Version != plugin.UnknownVersion {
		return tierNoSignal, nil
	}
	if cand.UpdatedAt.IsZero() || !cand.UpdatedAt.After(r.now().Add(-recencyWindow)) {
		return tierNoUpdate, nil
	}

	return tierUpdate, &Candidate{
		PluginName:       installed.Name,
		Owner:            cand.Owner,
		Repo:             cand.Name,
		InstalledVersion: installed.Version,
		LatestVersion:    RecentUpdateLabel,
		UpdateType:       TypeRepository,
		PublishedAt:      cand.UpdatedAt,
	}
}
