package plugin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/kostore/kostore/lib"
)

// Installer fetches plugin archives and replaces installed copies on the
// device. The replace is remove-then-copy, not an atomic swap: a crash
// between the two steps leaves the plugin uninstalled. Callers must not
// run two installs over the same scratch directory concurrently.
type Installer struct {
	logger     *log.Logger
	provider   lib.Provider
	pluginsDir string
	patchesDir string
}

func NewInstaller(logger *log.Logger, provider lib.Provider, pluginsDir, patchesDir string) *Installer {
	return &Installer{
		logger:     logger,
		provider:   provider,
		pluginsDir: pluginsDir,
		patchesDir: patchesDir,
	}
}

// archiveSource is one named step of the acquisition chain.
type archiveSource struct {
	name  string
	fetch func(ctx context.Context) ([]byte, error)
}

// acquireArchive tries the acquisition chain in order: latest release
// asset ending in .zip, source archive of the requested branch, source
// archive of master. Each failure is logged and the next source tried.
func (i *Installer) acquireArchive(ctx context.Context, owner, repo, branch string) ([]byte, error) {
	sources := []archiveSource{
		{
			name: "release asset",
			fetch: func(ctx context.Context) ([]byte, error) {
				release, err := i.provider.LatestRelease(ctx, owner, repo)
				if err != nil {
					return nil, err
				}
				if release == nil {
					return nil, fmt.Errorf("no releases found")
				}
				for _, asset := range release.Assets {
					if strings.HasSuffix(asset.Name, ArchiveSuffix) {
						i.logger.Info("Found release archive", "asset", asset.Name)
						return i.provider.DownloadRawFile(ctx, asset.DownloadURL)
					}
				}
				return nil, fmt.Errorf("no zip asset in latest release")
			},
		},
		{
			name: "source archive (" + branch + ")",
			fetch: func(ctx context.Context) ([]byte, error) {
				return i.provider.DownloadArchive(ctx, owner, repo, branch)
			},
		},
		{
			name: "source archive (master)",
			fetch: func(ctx context.Context) ([]byte, error) {
				return i.provider.DownloadArchive(ctx, owner, repo, "master")
			},
		},
	}

	for _, source := range sources {
		data, err := source.fetch(ctx)
		if err != nil {
			i.logger.Warn("Archive source failed", "repo", owner+"/"+repo, "source", source.name, "error", err)
			continue
		}
		i.logger.Info("Downloaded archive", "repo", owner+"/"+repo, "source", source.name, "bytes", len(data))
		return data, nil
	}

	return nil, fmt.Errorf("no archive available for %s/%s", owner, repo)
}

// Install downloads, extracts, and installs a plugin repository into the
// plugins directory. scratch is a caller-owned working directory for this
// one install; it is removed on success and left behind on failure for
// inspection.
func (i *Installer) Install(ctx context.Context, scratch, owner, repo, branch string, isUpdate bool) Result {
	i.logger.Debug("Starting plugin installation", "repo", owner+"/"+repo, "branch", branch)

	data, err := i.acquireArchive(ctx, owner, repo, branch)
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	if err := os.MkdirAll(scratch, 0755); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("failed to create scratch directory: %v", err)}
	}

	archivePath := filepath.Join(scratch, repo+ArchiveSuffix)
	if err := os.WriteFile(archivePath, data, 0644); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("failed to write archive: %v", err)}
	}

	if err := extractZip(data, scratch); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("failed to extract archive: %v", err)}
	}

	layout, ok := LocateExtracted(scratch)
	if !ok {
		return Result{Success: false, Message: "no valid plugin structure found (missing main.lua and _meta.lua)"}
	}

	name := CanonicalName(filepath.Base(layout.RootDir))
	target := filepath.Join(i.pluginsDir, name)

	if err := os.RemoveAll(target); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("failed to remove existing installation: %v", err)}
	}
	if err := copyDir(layout.RootDir, target); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("failed to copy plugin: %v", err)}
	}

	if err := os.RemoveAll(scratch); err != nil {
		i.logger.Warn("Failed to clean up scratch directory", "path", scratch, "error", err)
	}

	verb := "installed"
	if isUpdate {
		verb = "updated"
	}
	i.logger.Info("Plugin "+verb+" successfully", "name", name, "path", target)
	return Result{
		Success:    true,
		Message:    fmt.Sprintf("%s %s successfully!", repo, verb),
		PluginName: name,
		PluginPath: target,
	}
}

// InstallPatches writes each patch file into the patches directory under
// its own name. The first failed fetch or write aborts the batch; earlier
// patches stay in place.
func (i *Installer) InstallPatches(ctx context.Context, patches []lib.PatchFile) Result {
	if len(patches) == 0 {
		return Result{Success: false, Message: "No patches found"}
	}

	if err := os.MkdirAll(i.patchesDir, 0755); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("failed to create patches directory: %v", err)}
	}

	var written []string
	for _, patch := range patches {
		data, err := i.provider.DownloadRawFile(ctx, patch.DownloadURL)
		if err != nil {
			return Result{
				Success:   false,
				Message:   fmt.Sprintf("Error: failed to download %s: %v", patch.Name, err),
				Installed: written,
			}
		}

		target := filepath.Join(i.patchesDir, patch.Name)
		if err := os.WriteFile(target, data, 0644); err != nil {
			return Result{
				Success:   false,
				Message:   fmt.Sprintf("Error: failed to write %s: %v", patch.Name, err),
				Installed: written,
			}
		}
		written = append(written, patch.Name)
		i.logger.Debug("Installed patch", "name", patch.Name)
	}

	return Result{
		Success:   true,
		Message:   fmt.Sprintf("%d patch(es) installed!", len(written)),
		Installed: written,
	}
}
