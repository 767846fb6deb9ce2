package mockup

import (
	"fmt"
	"strings"

	"mockupgen/internal/domain"
	"mockupgen/internal/geometry"
	"mockupgen/internal/infra"
	"mockupgen/internal/infra/credentials"
	"mockupgen/internal/providers/printful"
	"mockupgen/internal/render"
)

// TemplateFromConfig builds the template described by the environment.
// Unset dimensions, areas and sleeve fraction keep the values of
// geometry.DefaultTemplate.
func TemplateFromConfig(cfg *infra.Config) (geometry.Template, error) {
	scheme, err := geometry.ParseScheme(cfg.Scheme)
	if err != nil {
		return geometry.Template{}, err
	}
	tpl := geometry.DefaultTemplate()
	tpl.Scheme = scheme
	if cfg.TemplateWidth > 0 {
		tpl.Width = cfg.TemplateWidth
	}
	if cfg.TemplateHeight > 0 {
		tpl.Height = cfg.TemplateHeight
	}
	raw := map[domain.Placement]string{
		domain.PlacementFront:       cfg.FrontArea,
		domain.PlacementBack:        cfg.BackArea,
		domain.PlacementLeftSleeve:  cfg.LeftSleeveArea,
		domain.PlacementRightSleeve: cfg.RightSleeveArea,
	}
	for placement, value := range raw {
		if strings.TrimSpace(value) == "" {
			continue
		}
		rect, err := geometry.ParseRect(value)
		if err != nil {
			return geometry.Template{}, fmt.Errorf("%s area: %w", placement, err)
		}
		tpl.Areas[placement] = rect
	}
	tpl.Front = tpl.Areas[domain.PlacementFront]
	tpl.SleeveWidth = cfg.SleeveWidth
	if cfg.SleeveFraction > 0 {
		tpl.SleeveFraction = cfg.SleeveFraction
	}
	if _, err := tpl.Layout(); err != nil {
		return geometry.Template{}, err
	}
	return tpl, nil
}

// NewPartitionerFromConfig builds a partitioner for the configured template
// and mismatch policy.
func NewPartitionerFromConfig(cfg *infra.Config, logger *infra.Logger) (*geometry.Partitioner, error) {
	tpl, err := TemplateFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	policy, err := geometry.ParseMismatchPolicy(cfg.MismatchPolicy)
	if err != nil {
		return nil, err
	}
	return geometry.NewPartitioner(geometry.Options{Template: tpl, Policy: policy, Logger: logger})
}

// ConfigCredentials returns the Printful credentials set in the environment.
func ConfigCredentials(cfg *infra.Config) credentials.Printful {
	return credentials.Printful{APIKey: cfg.PrintfulAPIKey, StoreID: cfg.PrintfulStoreID}
}

// NewPrintfulClient builds the vendor client. Empty fields of creds fall back
// to the configured values.
func NewPrintfulClient(cfg *infra.Config, creds credentials.Printful, logger *infra.Logger) (*printful.Client, error) {
	if creds.APIKey == "" {
		creds.APIKey = cfg.PrintfulAPIKey
	}
	if creds.StoreID == "" {
		creds.StoreID = cfg.PrintfulStoreID
	}
	return printful.NewClient(printful.Options{
		APIKey:         creds.APIKey,
		BaseURL:        cfg.PrintfulBaseURL,
		StoreID:        creds.StoreID,
		Logger:         logger,
		RequestTimeout: cfg.RequestTimeout,
	})
}

// NewOrchestratorFromConfig wires the poll settings from cfg.
func NewOrchestratorFromConfig(cfg *infra.Config, client render.TaskClient, logger *infra.Logger, onPoll func(render.Poll)) (*render.Orchestrator, error) {
	return render.NewOrchestrator(render.Options{
		Client:        client,
		ProductID:     cfg.ProductID,
		VariantIDs:    cfg.VariantIDs,
		Format:        cfg.OutputFormat,
		PollInterval:  cfg.PollInterval,
		MaxAttempts:   cfg.MaxPollAttempts,
		IncludeExtras: cfg.IncludeExtras,
		Logger:        logger,
		OnPoll:        onPoll,
	})
}
