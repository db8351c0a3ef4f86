package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/miradorstack/mirador-fmeda/internal/bom"
	"github.com/miradorstack/mirador-fmeda/internal/catalog"
	"github.com/miradorstack/mirador-fmeda/internal/engine"
	"github.com/miradorstack/mirador-fmeda/internal/models"
	"github.com/miradorstack/mirador-fmeda/internal/utils"
)

type globalFlags struct {
	bomPath       string
	constantsPath string
	logLevel      string
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "fmedactl",
		Short:         "Offline FMEDA calculations over a YAML bill of materials",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&flags.bomPath, "bom", "", "path to the BOM YAML file")
	root.PersistentFlags().StringVar(&flags.constantsPath, "constants", "", "path to a standards constants pack (built-in defaults when empty)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "log level")
	_ = root.MarkPersistentFlagRequired("bom")

	root.AddCommand(newFITCmd(flags), newProjectCmd(flags), newPredictCmd(flags))
	return root
}

// offline is a pipeline over a BOM file.
type offline struct {
	logger   *slog.Logger
	store    *bom.Store
	pipeline *engine.Pipeline
}

func loadOffline(cmd *cobra.Command, flags *globalFlags) (*offline, error) {
	logger := utils.NewLoggerTo(cmd.ErrOrStderr(), flags.logLevel, false)
	store, err := bom.Load(flags.bomPath)
	if err != nil {
		return nil, err
	}
	constants, err := engine.LoadConstants(flags.constantsPath, logger)
	if err != nil {
		return nil, err
	}
	estimator := engine.NewEstimator(engine.DefaultRegistry(constants, logger), constants.SN29500, logger)
	pipeline := engine.NewPipeline(logger, store, catalog.NewResolver(logger, store, 0), estimator,
		engine.WithCrossChecker(engine.NewCrossChecker(logger, 0)))
	return &offline{logger: logger, store: store, pipeline: pipeline}, nil
}

func newFITCmd(flags *globalFlags) *cobra.Command {
	var standard string
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Print the standard-based FIT of every BOM component",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := loadOffline(cmd, flags)
			if err != nil {
				return err
			}
			out, err := o.pipeline.CalculateProject(context.Background(), models.ProjectCalculationRequest{
				ProjectID: o.store.ProjectID(),
				Standard:  standard,
			})
			if err != nil {
				return err
			}
			return writeFITTable(cmd.OutOrStdout(), o.store.Components(), out.StandardFITs)
		},
	}
	cmd.Flags().StringVar(&standard, "standard", engine.StandardSN29500, "reliability standard")
	return cmd
}

func writeFITTable(w io.Writer, components []models.Component, fits []models.ComponentFIT) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REF\tMPN\tTYPE\tQTY\tSTANDARD\tFIT\tNOTES")
	total := 0.0
	for i, fit := range fits {
		c := components[i]
		notes := strings.Join(fit.Warnings, "; ")
		if fit.Error != "" {
			notes = "error: " + fit.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%.4f\t%s\n",
			dash(c.ReferenceDesignator), c.ManufacturerPartNumber, dash(c.Type), c.Quantity, fit.Standard, fit.FIT, notes)
		total += fit.FIT * float64(c.Quantity)
	}
	fmt.Fprintf(tw, "\t\t\t\tTOTAL\t%.4f\t\n", total)
	return tw.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func newProjectCmd(flags *globalFlags) *cobra.Command {
	var standard string
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Print the project FMEDA result as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := loadOffline(cmd, flags)
			if err != nil {
				return err
			}
			out, err := o.pipeline.CalculateProject(context.Background(), models.ProjectCalculationRequest{
				ProjectID: o.store.ProjectID(),
				Standard:  standard,
			})
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&standard, "standard", "", "also estimate each component under this standard")
	return cmd
}

func newPredictCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "predict",
		Short: "Apportion each component's predicted FIT across its failure modes",
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := loadOffline(cmd, flags)
			if err != nil {
				return err
			}
			ctx := context.Background()
			resolver := catalog.NewResolver(o.logger, o.store, 0)
			predictions := make([]models.ModePrediction, 0)
			for _, c := range o.store.Components() {
				modes, err := resolver.Resolve(ctx, c)
				if err != nil {
					return err
				}
				var profile *models.MissionProfile
				if c.MissionProfileID != nil {
					p, err := o.store.GetMissionProfile(ctx, *c.MissionProfileID)
					if err != nil {
						return err
					}
					profile = &p
				}
				predictions = append(predictions, engine.PredictModes(c, profile, modes))
			}
			return writeJSON(cmd.OutOrStdout(), predictions)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
