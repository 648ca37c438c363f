package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/lkowalski/repopulse/rotate"
	"github.com/lkowalski/repopulse/service"
)

func main() {
	startGops()
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "monitor":
		monitorCmd(os.Args[2:])
	case "workflows":
		workflowsCmd(os.Args[2:])
	case "metrics":
		metricsCmd(os.Args[2:])
	case "readme":
		readmeCmd(os.Args[2:])
	case "rotate":
		rotateCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: repopulse <command> [options]")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  monitor    Scan project directories and update activity docs")
	fmt.Fprintln(os.Stderr, "  workflows  Analyze GitHub Actions workflow definitions")
	fmt.Fprintln(os.Stderr, "  metrics    Collect project and repository metrics")
	fmt.Fprintln(os.Stderr, "  readme     Regenerate auto-generated README sections")
	fmt.Fprintln(os.Stderr, "  rotate     Rotate and archive monitor logs")
}

func monitorCmd(args []string) {
	flags := flag.NewFlagSet("monitor", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	projectsDir := flags.String("projects", "", "directory holding project directories")
	docsDir := flags.String("docs", "", "directory holding per-project markdown docs")
	stateURL := flags.String("state", "", "state file path")
	logPath := flags.String("log", "", "monitor log path (optional)")
	limit := flags.Int("limit", 0, "modifications kept per project")
	timeout := flags.Duration("timeout", 0, "per-project scan timeout")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfig(*configPath)
	request := &service.MonitorRequest{
		ProjectsDir:   firstOf(*projectsDir, cfg.ProjectsDir),
		ProjectPrefix: cfg.ProjectPrefix,
		DocsDir:       firstOf(*docsDir, cfg.DocsDir),
		StateURL:      firstOf(*stateURL, cfg.StatePath),
		LogPath:       firstOf(*logPath, cfg.LogPath),
		Limit:         *limit,
		Timeout:       *timeout,
		ExcludeDirs:   cfg.Scan.ExcludeDirs,
		ExcludeExts:   cfg.Scan.ExcludeExts,
	}
	if request.Limit == 0 {
		request.Limit = cfg.Scan.Limit
	}
	if request.Timeout == 0 && cfg.Scan.TimeoutSeconds > 0 {
		request.Timeout = time.Duration(cfg.Scan.TimeoutSeconds) * time.Second
	}
	request.Depth = cfg.Scan.Depth
	request.MaxPathLen = cfg.Scan.MaxPathLen
	request.Logf = makeLogf(request.LogPath)

	srv := newService()
	response, err := srv.Monitor(ctx, request)
	if err != nil {
		log.Fatalf("monitor: %v", err)
	}
	fmt.Printf("pass %s: %d updated, %d skipped, %d failed in %s\n",
		response.PassID, response.Updated, response.Skipped, response.Failed, response.Elapsed.Round(time.Millisecond))
}

func workflowsCmd(args []string) {
	flags := flag.NewFlagSet("workflows", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	dir := flags.String("dir", "", "workflow directory (default .github/workflows)")
	stateURL := flags.String("state", ".workflow_state.json", "workflow state output path")
	summaryURL := flags.String("summary", ".workflow_summary.txt", "summary output path")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfig(*configPath)
	srv := newService()
	response, err := srv.Workflows(ctx, &service.WorkflowsRequest{
		Dir:        firstOf(*dir, cfg.WorkflowDir),
		StateURL:   *stateURL,
		SummaryURL: *summaryURL,
		Logf:       makeLogf(""),
	})
	if err != nil {
		log.Fatalf("workflows: %v", err)
	}
	fmt.Println(response.Summary)
}

func metricsCmd(args []string) {
	flags := flag.NewFlagSet("metrics", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	projectsDir := flags.String("projects", "", "directory holding project directories")
	repoDir := flags.String("repo", ".", "repository directory")
	stateURL := flags.String("state", "", "monitor state path (optional)")
	cacheURL := flags.String("cache", ".metrics_cache.json", "metrics cache output path")
	summaryURL := flags.String("summary", ".metrics_summary.txt", "summary output path")
	historyDSN := flags.String("history", "", "metrics history sqlite path (optional)")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfig(*configPath)
	srv := newService()
	response, err := srv.Metrics(ctx, &service.MetricsRequest{
		ProjectsDir:   firstOf(*projectsDir, cfg.ProjectsDir),
		ProjectPrefix: cfg.ProjectPrefix,
		RepoDir:       *repoDir,
		StateURL:      firstOf(*stateURL, cfg.StatePath),
		CacheURL:      *cacheURL,
		SummaryURL:    *summaryURL,
		HistoryDSN:    firstOf(*historyDSN, cfg.History.DSN),
		Logf:          makeLogf(""),
	})
	if err != nil {
		log.Fatalf("metrics: %v", err)
	}
	fmt.Println(response.Summary)
}

func readmeCmd(args []string) {
	flags := flag.NewFlagSet("readme", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	readmeURL := flags.String("readme", "README.md", "readme path")
	stateURL := flags.String("state", ".workflow_state.json", "workflow state path")
	cacheURL := flags.String("cache", ".metrics_cache.json", "metrics cache path")
	historyDSN := flags.String("history", "", "metrics history sqlite path (optional)")
	repoDir := flags.String("repo", ".", "repository directory")
	force := flags.Bool("force", false, "update even without workflow data")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfig(*configPath)
	srv := newService()
	response, err := srv.Readme(ctx, &service.ReadmeRequest{
		ReadmeURL:  firstOf(*readmeURL, cfg.ReadmePath),
		StateURL:   *stateURL,
		CacheURL:   *cacheURL,
		HistoryDSN: firstOf(*historyDSN, cfg.History.DSN),
		RepoDir:    *repoDir,
		Force:      *force,
		Logf:       makeLogf(""),
	})
	if err != nil {
		log.Fatalf("readme: %v", err)
	}
	if response.Updated {
		fmt.Println("README updated")
	} else {
		fmt.Println("README already up to date")
	}
}

func rotateCmd(args []string) {
	flags := flag.NewFlagSet("rotate", flag.ExitOnError)
	configPath := flags.String("config", "", "config yaml (optional)")
	logDir := flags.String("log-dir", ".", "directory holding live logs")
	archiveDir := flags.String("archive-dir", "", "archive directory (default <log-dir>/monitor_logs_archive)")
	reportURL := flags.String("report", "log_rotation_report.json", "rotation report output path")
	flags.Parse(args)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := loadConfig(*configPath)
	policies := cfg.Rotation.Policies
	if len(policies) == 0 {
		policies = rotate.DefaultPolicies()
	}
	srv := newService()
	response, err := srv.Rotate(ctx, &service.RotateRequest{
		LogDir:     firstOf(cfg.Rotation.LogDir, *logDir),
		ArchiveDir: firstOf(*archiveDir, cfg.Rotation.ArchiveDir),
		ReportURL:  firstOf(cfg.Rotation.ReportPath, *reportURL),
		Policies:   policies,
		Logf:       makeLogf(""),
	})
	if err != nil {
		log.Fatalf("rotate: %v", err)
	}
	report := response.Report
	fmt.Printf("rotated %d, deleted %d, %d archives (%.2fMB)\n",
		len(report.Rotated), len(report.Deleted), report.Archives.Count, report.Archives.TotalSizeMB)
}

func newService() *service.Service {
	srv, err := service.NewService()
	if err != nil {
		log.Fatalf("service: %v", err)
	}
	return srv
}

func loadConfig(path string) *service.Config {
	if path == "" {
		return &service.Config{}
	}
	cfg, err := service.LoadConfig(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func firstOf(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// makeLogf prints timestamped lines and mirrors them into the monitor
// log file when one is configured.
func makeLogf(logPath string) func(format string, args ...any) {
	return func(format string, args ...any) {
		line := fmt.Sprintf("[%s] %s\n", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
		fmt.Print(line)
		if logPath == "" {
			return
		}
		f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = f.WriteString(line)
	}
}

func startGops() {
	if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
		log.Printf("gops: %v", err)
	}
}
