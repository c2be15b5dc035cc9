package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/maastricht-university/heartclean/clients"
	cfg "github.com/maastricht-university/heartclean/config"
	"github.com/maastricht-university/heartclean/orchestrator"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	var confPath string

	root := &cobra.Command{
		Use:           "heartclean",
		Short:         "Denoise heart-sound recordings with a fixed-window model",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&confPath, "config", "", "config file (default config/$CONFIG_ENV/config.yaml)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("out-dir", "", "name of the output subdirectory")
	_ = v.BindPFlag("pipeline.log_level", root.PersistentFlags().Lookup("log-level"))
	_ = v.BindPFlag("output.dir_name", root.PersistentFlags().Lookup("out-dir"))

	load := func(w io.Writer) (*cfg.Root, *logrus.Logger, func(), error) {
		conf, err := cfg.Load(confPath)
		if err != nil {
			return nil, nil, nil, err
		}
		conf.Override(v)
		if err := conf.Validate(); err != nil {
			return nil, nil, nil, err
		}
		log, closeLog, err := newLogger(conf, w)
		if err != nil {
			return nil, nil, nil, err
		}
		return conf, log, closeLog, nil
	}

	root.AddCommand(newCleanCmd(v, load), newCompareCmd(v, load))
	return root
}

// loader resolves the configuration and builds a logger writing to w.
type loader func(w io.Writer) (*cfg.Root, *logrus.Logger, func(), error)

func newCleanCmd(v *viper.Viper, load loader) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "clean [dir]",
		Short: "Clean every wav file in dir and write the results to dir/clean",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, closeLog, err := load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			dir := conf.Paths.Data
			if len(args) > 0 {
				dir = args[0]
			}

			opts := []orchestrator.Option{orchestrator.WithLogger(log)}
			if dryRun {
				opts = append(opts, orchestrator.WithModel(clients.Identity{}))
			}
			if conf.Pipeline.Progress {
				opts = append(opts, orchestrator.WithProgress(cmd.ErrOrStderr()))
			}

			log.WithFields(logrus.Fields{
				"dir":    dir,
				"window": conf.Windowing.Size,
				"mode":   conf.Output.Mode,
				"model":  conf.Services.Model.ModelPath,
			}).Infof("%s %s starting", conf.Pipeline.Name, conf.Pipeline.Version)

			res, err := orchestrator.NewPipeline(conf, opts...).Run(cmd.Context(), dir)
			if err != nil {
				// cobra reports the error
				return err
			}
			for _, f := range res.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.Int("window", 0, "samples per model window")
	f.String("mode", "", "output mode: concatenated or per_chunk")
	f.Int("sample-rate", 0, "sample rate stamped on outputs")
	f.String("model-url", "", "base URL of the model sidecar")
	f.String("model-path", "", "model artifact loaded by the sidecar")
	f.Bool("progress", false, "show a progress bar while writing")
	f.Bool("manifest", false, "write manifest.json next to the outputs")
	f.BoolVar(&dryRun, "dry-run", false, "skip the model and write the input windows back")
	_ = v.BindPFlag("windowing.size", f.Lookup("window"))
	_ = v.BindPFlag("output.mode", f.Lookup("mode"))
	_ = v.BindPFlag("audio.sample_rate", f.Lookup("sample-rate"))
	_ = v.BindPFlag("services.model.url", f.Lookup("model-url"))
	_ = v.BindPFlag("services.model.model_path", f.Lookup("model-path"))
	_ = v.BindPFlag("pipeline.progress", f.Lookup("progress"))
	_ = v.BindPFlag("output.manifest", f.Lookup("manifest"))
	return cmd
}

func newCompareCmd(v *viper.Viper, load loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <dir> <id>...",
		Short: "Compare recordings with their cleaned output",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, log, closeLog, err := load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer closeLog()

			viz := conf.Services.Visualization.URL
			w := cmd.OutOrStdout()
			for _, id := range args[1:] {
				c, err := orchestrator.Compare(conf, args[0], id)
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "%s\n", c.Source)
				for _, t := range []struct {
					label string
					tr    orchestrator.Track
				}{{"original", c.Original}, {"clean", c.Clean}} {
					s := t.tr.Stats
					fmt.Fprintf(w, "  %-8s %8d samples  %6d Hz  %7.3fs  rms %.4f  peak %.4f  dominant %.1f Hz\n",
						t.label, s.Samples, s.SampleRate, s.Duration, s.RMS, s.Peak, s.DominantHz)
				}
				if viz == "" {
					continue
				}
				resp, err := clients.NewHTTP(0).GenerateComparison(cmd.Context(), viz, clients.ComparisonReq{
					Title:     fmt.Sprintf("Waveform & spectrogram of %q", c.Source),
					Original:  clients.Waveform{Samples: c.Original.Samples, SampleRate: c.Original.SampleRate},
					Clean:     clients.Waveform{Samples: c.Clean.Samples, SampleRate: c.Clean.SampleRate},
					OutputDir: filepath.Join(args[0], conf.Output.DirName),
				})
				if err != nil {
					return err
				}
				log.WithFields(logrus.Fields{"source": c.Source, "path": resp.Path}).Info("comparison rendered")
			}
			return nil
		},
	}
	cmd.Flags().String("viz-url", "", "base URL of the visualization sidecar")
	_ = v.BindPFlag("services.visualization.url", cmd.Flags().Lookup("viz-url"))
	return cmd
}
