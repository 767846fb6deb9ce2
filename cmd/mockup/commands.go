package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"mockupgen/internal/infra"
	"mockupgen/internal/mockup"
	"mockupgen/internal/render"
	"mockupgen/internal/storage"
)

type cliOptions struct {
	scheme     string
	policy     string
	preview    string
	noPreview  bool
	writeBack  bool
	extras     bool
	format     string
	productID  int64
	variantIDs []int64
	attempts   int
	interval   time.Duration
	quiet      bool
	verbose    bool
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "mockup",
		Short:         "Partition a full-canvas design and render Printful mockups",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.scheme, "scheme", "", "partition scheme: direct or mirror (default from MOCKUP_SCHEME)")
	flags.StringVar(&opts.policy, "policy", "", "canvas size mismatch policy: strict or resample")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log every status poll")
	flags.StringVar(&opts.preview, "preview", "", "path of the partition preview image (default <canvas>_preview.png)")

	generate := &cobra.Command{
		Use:   "generate <canvas>",
		Short: "Submit the canvas and print the rendered mockup URLs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts, args[0])
		},
	}
	gf := generate.Flags()
	gf.BoolVar(&opts.noPreview, "no-preview", false, "skip writing the partition preview")
	gf.BoolVar(&opts.writeBack, "write-back", false, "overwrite the canvas file with its resampled version")
	gf.BoolVar(&opts.extras, "extras", false, "include extra mockup angles in the output")
	gf.StringVar(&opts.format, "format", "", "mockup output format (jpg or png)")
	gf.Int64Var(&opts.productID, "product", 0, "Printful product id")
	gf.Int64SliceVar(&opts.variantIDs, "variants", nil, "Printful variant ids")
	gf.IntVar(&opts.attempts, "attempts", 0, "maximum status polls")
	gf.DurationVar(&opts.interval, "interval", 0, "wait between status polls")
	gf.BoolVarP(&opts.quiet, "quiet", "q", false, "hide the progress bar")

	preview := &cobra.Command{
		Use:   "preview <canvas>",
		Short: "Write the partition preview without contacting Printful",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, opts, args[0])
		},
	}

	root.AddCommand(generate, preview)
	return root
}

func loadConfig(cmd *cobra.Command, opts *cliOptions) (*infra.Config, error) {
	cfg, err := infra.LoadConfig()
	if err != nil {
		return nil, err
	}
	if opts.scheme != "" {
		cfg.Scheme = strings.ToLower(strings.TrimSpace(opts.scheme))
	}
	if opts.policy != "" {
		cfg.MismatchPolicy = strings.ToLower(strings.TrimSpace(opts.policy))
	}
	if cmd.Flags().Changed("write-back") {
		cfg.WriteBack = opts.writeBack
	}
	if cmd.Flags().Changed("extras") {
		cfg.IncludeExtras = opts.extras
	}
	if opts.format != "" {
		cfg.OutputFormat = strings.ToLower(opts.format)
	}
	if opts.productID > 0 {
		cfg.ProductID = opts.productID
	}
	if len(opts.variantIDs) > 0 {
		cfg.VariantIDs = opts.variantIDs
	}
	if opts.attempts > 0 {
		cfg.MaxPollAttempts = opts.attempts
	}
	if opts.interval > 0 {
		cfg.PollInterval = opts.interval
	}
	return cfg, nil
}

func cliLogger(opts *cliOptions) infra.Logger {
	logger := infra.NewLogger("cli")
	if opts.verbose {
		logger = logger.Level(zerolog.DebugLevel)
	}
	return logger
}

func previewPath(opts *cliOptions, canvasPath string) string {
	if opts.preview != "" {
		return opts.preview
	}
	ext := filepath.Ext(canvasPath)
	return strings.TrimSuffix(canvasPath, ext) + "_preview.png"
}

func runPreview(cmd *cobra.Command, opts *cliOptions, canvasPath string) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := cliLogger(opts)
	partitioner, err := mockup.NewPartitionerFromConfig(cfg, &logger)
	if err != nil {
		return err
	}
	canvas, err := storage.ReadImageFile(canvasPath)
	if err != nil {
		return err
	}
	preview, err := partitioner.Preview(canvas)
	if err != nil {
		return err
	}
	out := previewPath(opts, canvasPath)
	if err := storage.WriteImageFile(out, preview); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}

func runGenerate(cmd *cobra.Command, opts *cliOptions, canvasPath string) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := cliLogger(opts)

	client, err := mockup.NewPrintfulClient(cfg, mockup.ConfigCredentials(cfg), &logger)
	if err != nil {
		return err
	}
	if !client.HasCredentials() {
		return fmt.Errorf("PRINTFUL_API_KEY is required")
	}
	partitioner, err := mockup.NewPartitionerFromConfig(cfg, &logger)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if !opts.quiet {
		bar = progressbar.NewOptions(cfg.MaxPollAttempts,
			progressbar.OptionSetDescription("rendering"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetWidth(30),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}
	onPoll := func(p render.Poll) {
		if bar == nil {
			return
		}
		_ = bar.Set(p.Attempt)
		bar.Describe("rendering (" + string(p.State) + ")")
	}
	orchestrator, err := mockup.NewOrchestratorFromConfig(cfg, client, &logger, onPoll)
	if err != nil {
		return err
	}
	generator, err := mockup.NewGenerator(mockup.Options{
		Partitioner: partitioner,
		Renderer:    orchestrator,
		Writer:      storage.Paths{},
		WriteBack:   cfg.WriteBack,
		Logger:      &logger,
	})
	if err != nil {
		return err
	}

	canvas, err := storage.ReadImageFile(canvasPath)
	if err != nil {
		return err
	}
	req := mockup.Request{Canvas: canvas, SourceKey: canvasPath}
	if !opts.noPreview {
		req.PreviewKey = previewPath(opts, canvasPath)
	}
	res, err := generator.Generate(ctx, req)
	if bar != nil {
		_ = bar.Finish()
	}
	if res.PreviewKey != "" {
		logger.Info().Str("path", res.PreviewKey).Msg("preview written")
	}
	if err != nil {
		return err
	}
	for _, u := range res.URLs {
		fmt.Fprintln(cmd.OutOrStdout(), u)
	}
	return nil
}
