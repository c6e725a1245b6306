package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/kostore/kostore/catalog"
	"github.com/kostore/kostore/lib"
	"github.com/kostore/kostore/logger"
	"github.com/kostore/kostore/plugin"
	"github.com/kostore/kostore/update"
	"github.com/kostore/kostore/worker"
)

var (
	successStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#00FF00"))
	failureStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	progressStyle = lipgloss.NewStyle().Faint(true)
)

type app struct {
	logger     *log.Logger
	rl         *logger.RateLimitedLogger
	config     Config
	provider   *lib.GitHubClient
	classifier *catalog.Classifier
	resolver   *update.Resolver
	installer  *plugin.Installer
}

func newApp(rl *logger.RateLimitedLogger, config Config) *app {
	base := rl.Base()
	provider := lib.NewGitHubClient(base, config.token(), config.metaTimeout(), config.archiveTimeout())
	return &app{
		logger:     base,
		rl:         rl,
		config:     config,
		provider:   provider,
		classifier: catalog.NewClassifier(base),
		resolver:   update.NewResolver(base, provider),
		installer:  plugin.NewInstaller(base, provider, config.pluginsPath(), config.patchesPath()),
	}
}

func printWelcomeMessage() {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FFD700")).
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(1)

	subtitleStyle := lipgloss.NewStyle().
		Italic(true).
		Foreground(lipgloss.Color("#87CEEB"))

	version, _ := getCurrentVersion()

	fmt.Println(titleStyle.Render("Welcome to KOReader Store!"))
	fmt.Println(subtitleStyle.Render(fmt.Sprintf("Current version: %s", version)))
	fmt.Println()
}

func printProgress(message string) {
	fmt.Println(progressStyle.Render("  " + message))
}

func printResult(result plugin.Result) {
	if result.Success {
		fmt.Println(successStyle.Render(result.Message))
	} else {
		fmt.Println(failureStyle.Render(result.Message))
	}
}

// handleMainMenu runs one main-menu round trip; true means quit.
func (a *app) handleMainMenu() bool {
	var choice string
	err := huh.NewSelect[string]().
		Title("Choose an action").
		Options(
			huh.NewOption("Browse store", "browse"),
			huh.NewOption("Check for updates", "updates"),
			huh.NewOption("Uninstall plugin", "uninstall"),
			huh.NewOption("Device info", "device"),
			huh.NewOption("Version", "version"),
			huh.NewOption("Quit", "quit"),
		).
		Value(&choice).
		Run()

	if err != nil {
		if err == huh.ErrUserAborted {
			return true
		}
		a.logger.Error("Error getting user choice", "error", err)
		return false
	}

	switch choice {
	case "browse":
		a.handleBrowse()
	case "updates":
		a.handleUpdates()
	case "uninstall":
		a.handleUninstall()
	case "device":
		a.handleDeviceInfo()
	case "version":
		printVersionInfo(a.rl)
	case "quit":
		return true
	default:
		a.logger.Error("Invalid choice")
	}

	return false
}

func (a *app) handleBrowse() {
	ctx := context.Background()
	sources := loadSources(a.logger)

	events := worker.Run(func(progress worker.ProgressFunc) ([]catalog.Candidate, error) {
		progress("Searching repositories...")
		return a.classifier.Search(ctx, a.provider, sources), nil
	})
	cat, err := worker.Wait(events, printProgress)
	if err != nil {
		a.logger.Error("Catalog search failed", "error", err)
		return
	}
	if len(cat) == 0 {
		fmt.Println(failureStyle.Render("No plugins or patches found"))
		return
	}

	for {
		cand, ok := selectCandidate(cat)
		if !ok {
			return
		}
		if quit := a.handleCandidate(ctx, cand); quit {
			return
		}
	}
}

func selectCandidate(cat []catalog.Candidate) (catalog.Candidate, bool) {
	options := make([]huh.Option[int], 0, len(cat)+1)
	for i, c := range cat {
		label := fmt.Sprintf("%s/%s [%s]", c.Owner, c.Name, c.RepoType)
		options = append(options, huh.NewOption(label, i))
	}
	options = append(options, huh.NewOption("Go back", -1))

	var choice int
	err := huh.NewSelect[int]().
		Title("Choose a plugin or patch").
		Options(options...).
		Value(&choice).
		Run()
	if err != nil || choice < 0 {
		return catalog.Candidate{}, false
	}
	return cat[choice], true
}

func (a *app) handleCandidate(ctx context.Context, cand catalog.Candidate) bool {
	var choice string
	err := huh.NewSelect[string]().
		Title(fmt.Sprintf("%s/%s", cand.Owner, cand.Name)).
		Description(cand.Description).
		Options(
			huh.NewOption("Install", "install"),
			huh.NewOption("View README", "readme"),
			huh.NewOption("Go back", "back"),
		).
		Value(&choice).
		Run()
	if err != nil {
		return true
	}

	switch choice {
	case "install":
		if cand.RepoType == catalog.RepoTypePatch {
			a.installPatches(ctx, cand)
		} else {
			a.installPlugin(ctx, cand.Owner, cand.Name, "main", false)
		}
	case "readme":
		fmt.Println(a.provider.ReadmeMarkdown(ctx, cand.Owner, cand.Name))
	}
	return false
}

// installPlugin runs one install on a background worker. Installs are
// serialized by construction: the menu blocks on the event stream, so at
// most one install is ever in flight.
func (a *app) installPlugin(ctx context.Context, owner, repo, branch string, isUpdate bool) {
	scratch, err := os.MkdirTemp("", "kostore-install-*")
	if err != nil {
		a.logger.Error("Failed to create scratch directory", "error", err)
		return
	}

	events := worker.Run(func(progress worker.ProgressFunc) (plugin.Result, error) {
		progress(fmt.Sprintf("Downloading %s...", repo))
		return a.installer.Install(ctx, scratch, owner, repo, branch, isUpdate), nil
	})
	result, err := worker.Wait(events, printProgress)
	if err != nil {
		a.logger.Error("Install worker failed", "error", err)
		return
	}
	printResult(result)
}

func (a *app) installPatches(ctx context.Context, cand catalog.Candidate) {
	events := worker.Run(func(progress worker.ProgressFunc) (plugin.Result, error) {
		progress("Listing patches...")
		patches, err := a.provider.PatchFiles(ctx, cand.Owner, cand.Name)
		if err != nil {
			return plugin.Result{}, err
		}
		progress("Downloading patches...")
		return a.installer.InstallPatches(ctx, patches), nil
	})
	result, err := worker.Wait(events, printProgress)
	if err != nil {
		a.logger.Error("Patch install failed", "error", err)
		return
	}
	printResult(result)
}

func (a *app) handleUpdates() {
	ctx := context.Background()

	installed, err := plugin.ScanInstalled(a.logger, a.config.pluginsPath())
	if err != nil {
		a.logger.Error("Failed to scan installed plugins", "error", err)
		return
	}
	if len(installed) == 0 {
		fmt.Println(failureStyle.Render("No plugins installed"))
		return
	}

	sources := loadSources(a.logger)
	events := worker.Run(func(progress worker.ProgressFunc) ([]update.Candidate, error) {
		progress("Searching repositories...")
		cat := a.classifier.Search(ctx, a.provider, sources)
		progress("Checking for updates...")
		return a.resolver.CheckAll(ctx, installed, cat), nil
	})
	updates, err := worker.Wait(events, printProgress)
	if err != nil {
		a.logger.Error("Update check failed", "error", err)
		return
	}
	if len(updates) == 0 {
		fmt.Println(successStyle.Render("All plugins are up to date"))
		return
	}

	for {
		options := make([]huh.Option[int], 0, len(updates)+1)
		for i, u := range updates {
			label := fmt.Sprintf("%s: %s -> %s (%s)", u.PluginName, u.InstalledVersion, u.LatestVersion, u.UpdateType)
			options = append(options, huh.NewOption(label, i))
		}
		options = append(options, huh.NewOption("Go back", -1))

		var choice int
		err := huh.NewSelect[int]().
			Title("Available updates").
			Options(options...).
			Value(&choice).
			Run()
		if err != nil || choice < 0 {
			return
		}

		u := updates[choice]
		if notes := strings.TrimSpace(u.ReleaseNotes); notes != "" {
			fmt.Println(progressStyle.Render(notes))
		}

		var confirmed bool
		err = huh.NewConfirm().
			Title(fmt.Sprintf("Update %s to %s?", u.PluginName, u.LatestVersion)).
			Value(&confirmed).
			Run()
		if err != nil || !confirmed {
			continue
		}

		a.installPlugin(ctx, u.Owner, u.Repo, "main", true)
	}
}

func (a *app) handleUninstall() {
	installed, err := plugin.ScanInstalled(a.logger, a.config.pluginsPath())
	if err != nil {
		a.logger.Error("Failed to scan installed plugins", "error", err)
		return
	}
	if len(installed) == 0 {
		fmt.Println(failureStyle.Render("No plugins installed"))
		return
	}

	options := make([]huh.Option[string], 0, len(installed)+1)
	for _, p := range installed {
		options = append(options, huh.NewOption(fmt.Sprintf("%s (%s)", p.Name, p.Version), p.Name))
	}
	options = append(options, huh.NewOption("Go back", ""))

	var choice string
	err = huh.NewSelect[string]().
		Title("Choose a plugin to uninstall").
		Options(options...).
		Value(&choice).
		Run()
	if err != nil || choice == "" {
		return
	}

	var confirmed bool
	err = huh.NewConfirm().
		Title(fmt.Sprintf("Remove %s from the device?", choice)).
		Value(&confirmed).
		Run()
	if err != nil || !confirmed {
		return
	}

	printResult(plugin.Uninstall(a.logger, a.config.pluginsPath(), choice))
}

func (a *app) handleDeviceInfo() {
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	infoStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("15"))

	info := GetDeviceInfo(a.logger, a.config.Device.Path)

	fmt.Println(headerStyle.Render("\nKOReader Device:"))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Path:     %s", info.Path)))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Valid:    %t", info.Valid)))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Version:  %s", info.Version)))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Platform: %s", info.Platform)))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Plugins:  %t", info.PluginsExist)))
	fmt.Println(infoStyle.Render(fmt.Sprintf("  Patches:  %t", info.PatchesExist)))
	fmt.Println()
}
