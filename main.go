// Package main implements repokit, a repository configuration generator.
//
// repokit scans Go packages for repository interfaces (interfaces embedding
// repository.Repository[T, ID]), resolves their custom and fragment
// implementations, registers the bean definitions that assemble each
// repository, and generates a Go file describing every repository's
// composition so the application can wire repositories without scanning.
//
// Generation flow:
//
//  1. Read go.mod → module path
//  2. Read generate.go → //repokit:repositories blocks, then repokit.yaml
//  3. Discover repokit.factories.yaml files → published fragments, store modules
//  4. For each source: scan base packages → repository interfaces
//  5. Detect custom + fragment implementations, register bean definitions
//  6. Read the registry back → repository compositions
//  7. Generate zz_repokit_aot.go
//
// Usage:
//
//	//go:generate go run github.com/iVampireSP/repokit@latest aot
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iVampireSP/repokit/internal/aot"
	"github.com/iVampireSP/repokit/internal/logger"
	"github.com/iVampireSP/repokit/internal/metrics"
	"github.com/iVampireSP/repokit/internal/typemeta"
)

// metadataCacheSize bounds the number of type metadata entries kept in memory.
const metadataCacheSize = 4096

type options struct {
	verbose  bool
	config   string
	logLevel string
	logEnv   string
}

func main() {
	_ = godotenv.Load()

	opts := &options{
		logLevel: envOr("REPOKIT_LOG_LEVEL", "info"),
		logEnv:   envOr("REPOKIT_LOG_ENV", "dev"),
	}

	root := &cobra.Command{
		Use:           "repokit",
		Short:         "Repository discovery and composition generator",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&opts.config, "config", "", "additional repokit YAML source")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", opts.logLevel, "log level: debug|info|warn|error (env REPOKIT_LOG_LEVEL)")
	root.PersistentFlags().StringVar(&opts.logEnv, "log-env", opts.logEnv, "log format: dev|prod (env REPOKIT_LOG_ENV)")

	root.AddCommand(newScanCommand(opts), newAotCommand(opts))

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "repokit: %v\n", err)
		os.Exit(1)
	}
}

// session is the state shared by every subcommand run.
type session struct {
	cfg      *Config
	reader   typemeta.ReadLister
	log      *zap.Logger
	recorder *metrics.Recorder
	gatherer prometheus.Gatherer
}

func newSession(opts *options) (*session, error) {
	level := opts.logLevel
	if opts.verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Env: opts.logEnv, Level: level})

	// Resolve module root: walk up from cwd to find go.mod
	moduleRoot, err := findModuleRoot()
	if err != nil {
		return nil, err
	}

	cfg, err := BuildConfig(moduleRoot, opts.config)
	if err != nil {
		return nil, err
	}
	log.Debug("configuration loaded",
		zap.String("module", cfg.Module),
		zap.String("root", moduleRoot),
		zap.Int("sources", len(cfg.Sources)),
		zap.Strings("factories", cfg.Factories.Files()))

	reader, err := typemeta.NewCachingReader(typemeta.NewPackagesReader(moduleRoot), metadataCacheSize)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	rec := metrics.NewRecorder()
	if err := rec.Register(reg); err != nil {
		return nil, err
	}

	return &session{cfg: cfg, reader: reader, log: log, recorder: rec, gatherer: reg}, nil
}

// reportMetrics logs the bootstrap counters at debug level.
func (s *session) reportMetrics() {
	families, err := s.gatherer.Gather()
	if err != nil {
		s.log.Warn("gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.String("metric", mf.GetName())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			switch {
			case m.GetCounter() != nil:
				fields = append(fields, zap.Float64("value", m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				fields = append(fields, zap.Float64("sum", m.GetHistogram().GetSampleSum()))
			}
			s.log.Debug("metric", fields...)
		}
	}
}

func newScanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "List the repositories and implementations repokit would register",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			defer s.log.Sync() //nolint:errcheck

			b, err := Run(s.cfg, s.reader, s.log, s.recorder)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "BEAN\tINTERFACE\tCUSTOM\tFRAGMENTS")
			for _, name := range b.Registrations.BeanNames() {
				snapshot := b.Registrations[name]
				custom := snapshot.CustomImplementation
				if custom == "" {
					custom = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", name, snapshot.RepositoryInterface, custom, len(snapshot.Fragments))
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if opts.verbose {
				queries, err := NamedQueries(s.cfg)
				if err != nil {
					return err
				}
				for origin, q := range queries {
					s.log.Debug("named queries", zap.String("source", origin), zap.Int("count", len(q)))
				}
				s.reportMetrics()
			}
			return nil
		},
	}
}

func newAotCommand(opts *options) *cobra.Command {
	var (
		dryRun  bool
		pkgName string
		output  string
	)
	cmd := &cobra.Command{
		Use:   "aot",
		Short: "Generate the repository composition file",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			defer s.log.Sync() //nolint:errcheck

			b, err := Run(s.cfg, s.reader, s.log, s.recorder)
			if err != nil {
				return err
			}
			infos, err := b.Read(s.cfg, s.reader)
			if err != nil {
				return err
			}
			f, err := aot.NewGenerator(pkgName).Generate(infos)
			if err != nil {
				return fmt.Errorf("generate: %w", err)
			}

			if dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "// === %s ===\n%s\n", f.Name, f.Content)
				return nil
			}
			dir := output
			if !filepath.IsAbs(dir) {
				dir = filepath.Join(s.cfg.Root, dir)
			}
			path := filepath.Join(dir, f.Name)
			s.log.Debug("writing generated file", zap.String("path", path))
			if err := os.WriteFile(path, f.Content, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			s.log.Info("generated repository compositions",
				zap.String("file", path),
				zap.Int("repositories", len(infos)))
			if opts.verbose {
				s.reportMetrics()
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print generated code without writing")
	cmd.Flags().StringVar(&pkgName, "package", "main", "package clause of the generated file")
	cmd.Flags().StringVar(&output, "output", ".", "directory of the generated file, relative to the module root")
	return cmd
}

// findModuleRoot walks up from cwd to find the directory containing go.mod.
func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("go.mod not found in any parent directory")
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
