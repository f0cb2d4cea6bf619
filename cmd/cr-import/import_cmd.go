package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/Olbrasoft/cr/modules/territory/domain/territory"
	"github.com/Olbrasoft/cr/modules/territory/infrastructure/extract"
	"github.com/Olbrasoft/cr/modules/territory/infrastructure/persistence"
	"github.com/Olbrasoft/cr/modules/territory/services"
	"github.com/Olbrasoft/cr/pkg/configuration"
	"github.com/Olbrasoft/cr/pkg/logging"
	"github.com/Olbrasoft/cr/pkg/metrics"
)

const manifestVersion = 1

type importOptions struct {
	source          string
	dryRun          bool
	strict          bool
	migrate         bool
	manifestDir     string
	metricsTextfile string
	delimiter       string
	encoding        string
	sheet           string
	columns         map[string]string
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [path]",
		Short: "Import the territorial structure from a CSV or XLSX extract",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.source = args[0]
			}
			return runImport(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Run the import against an in-memory store and discard the result")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when a code reappears with a different name or parent")
	cmd.Flags().BoolVar(&opts.migrate, "migrate", false, "Apply embedded migrations before importing (also CR_IMPORT_MIGRATE)")
	cmd.Flags().StringVar(&opts.manifestDir, "manifest-dir", "", "Write an import manifest into this directory")
	cmd.Flags().StringVar(&opts.metricsTextfile, "metrics-textfile", "", "Write run metrics to this node_exporter textfile")
	cmd.Flags().StringVar(&opts.delimiter, "delimiter", "", "CSV field delimiter, \"tab\" for tabs (default CR_IMPORT_DELIMITER)")
	cmd.Flags().StringVar(&opts.encoding, "encoding", "", "CSV encoding, e.g. windows-1250 (default CR_IMPORT_ENCODING)")
	cmd.Flags().StringVar(&opts.sheet, "sheet", "", "XLSX worksheet (default: first sheet)")
	cmd.Flags().StringToStringVar(&opts.columns, "column", nil, "Header label for a column role, e.g. municipality_name=NAZEV (repeatable)")

	return cmd
}

type importManifestV1 struct {
	Version    int       `json:"version"`
	RunID      uuid.UUID `json:"run_id"`
	Backend    string    `json:"backend"`
	DryRun     bool      `json:"dry_run"`
	Strict     bool      `json:"strict"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Input      struct {
		Path     string `json:"path"`
		Encoding string `json:"encoding"`
		Rows     int    `json:"rows"`
	} `json:"input"`
	Counts   territory.Counts `json:"counts"`
	Inserted struct {
		Regions        map[string]int64 `json:"regions"`
		Districts      map[string]int64 `json:"districts"`
		Offices        map[string]int64 `json:"offices"`
		Municipalities map[string]int64 `json:"municipalities"`
	} `json:"inserted"`
}

type importSummary struct {
	Status     string           `json:"status"`
	RunID      string           `json:"run_id"`
	Backend    string           `json:"backend"`
	DryRun     bool             `json:"dry_run"`
	Source     string           `json:"source"`
	Rows       int              `json:"rows"`
	Counts     territory.Counts `json:"counts"`
	DurationMS int64            `json:"duration_ms"`
	Manifest   string           `json:"manifest,omitempty"`
}

// importRun carries the state shared by the steps of one invocation.
type importRun struct {
	id        uuid.UUID
	startedAt time.Time
	opts      importOptions
	cfg       *configuration.Configuration
	logger    *logrus.Entry
	metrics   *metrics.ImportMetrics
}

func runImport(ctx context.Context, stdout, stderr io.Writer, opts importOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyImportFlags(cfg, &opts); err != nil {
		return err
	}

	run := &importRun{
		id:        uuid.New(),
		startedAt: time.Now().UTC(),
		opts:      opts,
		cfg:       cfg,
		metrics:   metrics.NewImportMetrics(),
	}
	run.logger = logging.New(cfg.LogLevel, cfg.LogFormat, stderr).WithField("run_id", run.id.String())

	summary, err := run.execute(ctx)
	if err != nil {
		run.fail(err)
		return err
	}
	return writeJSONLine(stdout, summary)
}

func applyImportFlags(cfg *configuration.Configuration, opts *importOptions) error {
	if strings.TrimSpace(opts.source) == "" {
		opts.source = cfg.SourcePath
	}
	if opts.delimiter != "" {
		cfg.CSVDelimiter = opts.delimiter
	}
	if opts.encoding != "" {
		cfg.SourceEncoding = opts.encoding
	}
	if opts.migrate {
		cfg.MigrateOnImport = true
	}
	if err := cfg.Validate(); err != nil {
		return withCode(exitUsage, err)
	}
	return nil
}

func (r *importRun) execute(ctx context.Context) (*importSummary, error) {
	if !r.opts.dryRun {
		if err := requireDatabaseURL(r.cfg); err != nil {
			return nil, err
		}
	}

	rows, err := r.readSource()
	if err != nil {
		return nil, err
	}
	r.logger.WithFields(logrus.Fields{
		"source": r.opts.source,
		"rows":   len(rows),
	}).Info("source parsed")

	store, backendName, closeStore, err := r.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer closeStore()

	svc := services.NewImportService(store, r.logger)
	result, err := svc.Import(ctx, rows, services.ImportOptions{Strict: r.opts.strict})
	if err != nil {
		return nil, err
	}
	finishedAt := time.Now().UTC()

	for _, l := range territory.Levels() {
		r.metrics.ObserveInserted(string(l), result.Counts.Of(l))
	}
	r.metrics.ObserveDuration(finishedAt.Sub(r.startedAt))
	r.metrics.MarkSuccess(finishedAt)
	r.writeMetrics()

	summary := &importSummary{
		Status:     "committed",
		RunID:      r.id.String(),
		Backend:    backendName,
		DryRun:     r.opts.dryRun,
		Source:     r.opts.source,
		Rows:       len(rows),
		Counts:     result.Counts,
		DurationMS: finishedAt.Sub(r.startedAt).Milliseconds(),
	}
	if r.opts.dryRun {
		summary.Status = "dry_run"
	}

	// The hierarchy is already committed; a manifest failure is only logged.
	if r.opts.manifestDir != "" {
		path, err := r.writeManifest(backendName, len(rows), result, finishedAt)
		if err != nil {
			r.logger.WithError(err).Warn("write import manifest")
		} else {
			summary.Manifest = path
		}
	}
	return summary, nil
}

func (r *importRun) readSource() ([]territory.Row, error) {
	cols, err := extract.DefaultColumns().Override(r.opts.columns)
	if err != nil {
		return nil, withCode(exitUsage, fmt.Errorf("invalid --column: %w", err))
	}
	delim, err := r.cfg.Delimiter()
	if err != nil {
		return nil, withCode(exitUsage, err)
	}
	return extract.ReadFile(r.opts.source, extract.Options{
		Columns:   cols,
		Delimiter: delim,
		Encoding:  r.cfg.SourceEncoding,
		Sheet:     r.opts.sheet,
	})
}

// openStore returns the store the import writes to. A dry run uses a fresh
// MemoryStore so the same unique and parent checks apply without a database.
func (r *importRun) openStore(ctx context.Context) (territory.Store, string, func(), error) {
	if r.opts.dryRun {
		return persistence.NewMemoryStore(), "memory", func() {}, nil
	}

	b, err := openBackend(ctx, r.cfg)
	if err != nil {
		return nil, "", nil, err
	}
	if r.cfg.MigrateOnImport {
		applied, err := migrateBackend(ctx, b)
		if err != nil {
			b.Close()
			return nil, "", nil, err
		}
		r.logger.WithField("applied", len(applied)).Info("migrations applied")
	}
	if err := b.EnsureEmpty(ctx); err != nil {
		b.Close()
		return nil, "", nil, emptyCheckError(err)
	}
	return b.Store, string(b.Dialect), b.Close, nil
}

func emptyCheckError(err error) error {
	kind := territory.KindPersistence
	if errors.Is(err, territory.ErrNotEmpty) {
		kind = territory.KindConfiguration
	}
	return &territory.ImportError{Kind: kind, Err: err}
}

func (r *importRun) writeManifest(backend string, rows int, result *services.ImportResult, finishedAt time.Time) (string, error) {
	m := &importManifestV1{
		Version:    manifestVersion,
		RunID:      r.id,
		Backend:    backend,
		DryRun:     r.opts.dryRun,
		Strict:     r.opts.strict,
		StartedAt:  r.startedAt,
		FinishedAt: finishedAt,
		Counts:     result.Counts,
	}
	m.Input.Path = r.opts.source
	m.Input.Encoding = r.cfg.SourceEncoding
	m.Input.Rows = rows
	m.Inserted.Regions = result.Regions
	m.Inserted.Districts = result.Districts
	m.Inserted.Offices = result.Offices
	m.Inserted.Municipalities = result.Municipalities

	ts := r.startedAt.Format("20060102T150405Z")
	path := filepath.Join(r.opts.manifestDir, fmt.Sprintf("import_manifest_%s_%s.json", ts, r.id.String()))
	if err := writeJSONFile(path, m); err != nil {
		return "", err
	}
	r.logger.WithField("path", path).Info("manifest written")
	return path, nil
}

func (r *importRun) fail(err error) {
	kind := territory.KindOf(err)
	r.metrics.ObserveFailure(kind.String())
	r.metrics.ObserveDuration(time.Since(r.startedAt))
	r.writeMetrics()
	r.logger.WithFields(logrus.Fields{
		"kind":      kind.String(),
		"exit_code": exitCode(err),
	}).WithError(err).Error("territory import failed")
}

func (r *importRun) writeMetrics() {
	if r.opts.metricsTextfile == "" {
		return
	}
	if err := r.metrics.WriteTextfile(r.opts.metricsTextfile); err != nil {
		r.logger.WithError(err).Warn("write metrics textfile")
	}
}
