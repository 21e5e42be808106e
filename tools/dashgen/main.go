package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/donaldgifford/empire-watcher/tools/dashgen/dashboards"
	"github.com/donaldgifford/empire-watcher/tools/dashgen/rules"
	"github.com/donaldgifford/empire-watcher/tools/dashgen/validate"
)

const generatedHeader = "# Code generated by tools/dashgen. DO NOT EDIT.\n"

func main() {
	validateOnly := flag.Bool("validate", false, "validate generated artifacts without writing files")
	outputDir := flag.String("output", "", "override output directory")
	flag.Parse()

	cfg := DefaultConfig()
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg, *validateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// artifact is one generated file, relative to the output directory.
type artifact struct {
	path string
	data []byte
}

func run(cfg Config, validateOnly bool) error {
	artifacts, err := generate(cfg)
	if err != nil {
		return err
	}

	if validateOnly {
		fmt.Println("validation passed")
		return nil
	}

	for _, a := range artifacts {
		dest := filepath.Join(cfg.OutputDir, a.path)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("creating directory for %s: %w", a.path, err)
		}
		if err := os.WriteFile(dest, a.data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", a.path, err)
		}
		fmt.Printf("dashgen: wrote %s\n", dest)
	}
	return nil
}

// generate builds and validates every enabled artifact.
func generate(cfg Config) ([]artifact, error) {
	var out []artifact

	if cfg.DashboardEnabled {
		dash, err := dashboards.BuildOverview().Build()
		if err != nil {
			return nil, fmt.Errorf("building overview dashboard: %w", err)
		}
		if res := validate.Dashboard(dash, KnownMetrics); !res.Ok() {
			return nil, fmt.Errorf("overview dashboard: %w", joinFindings(res.Errors))
		}
		data, err := json.MarshalIndent(dash, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling overview dashboard: %w", err)
		}
		out = append(out, artifact{
			path: filepath.Join("grafana", "data", "ew-overview.json"),
			data: append(data, '\n'),
		})
	}

	if cfg.RulesEnabled {
		recording, alerts := rules.RecordingRules(), rules.AlertRules()
		for _, r := range []struct {
			file string
			cr   rules.PrometheusRule
		}{
			{file: "ew-recording-rules.yaml", cr: recording},
			{file: "ew-alerts.yaml", cr: alerts},
		} {
			if res := validate.Rules(r.cr, KnownMetrics); !res.Ok() {
				return nil, fmt.Errorf("%s: %w", r.file, joinFindings(res.Errors))
			}
			data, err := yaml.Marshal(r.cr)
			if err != nil {
				return nil, fmt.Errorf("marshaling %s: %w", r.file, err)
			}
			out = append(out, artifact{
				path: filepath.Join("prometheus", r.file),
				data: append([]byte(generatedHeader), data...),
			})
		}

		data, err := yaml.Marshal(rules.File(recording, alerts))
		if err != nil {
			return nil, fmt.Errorf("marshaling plain rule file: %w", err)
		}
		out = append(out, artifact{
			path: filepath.Join("prometheus", "ew-rules.yaml"),
			data: append([]byte(generatedHeader), data...),
		})
	}

	return out, nil
}

func joinFindings(findings []string) error {
	errs := make([]error, 0, len(findings))
	for _, f := range findings {
		errs = append(errs, errors.New(f))
	}
	return errors.Join(errs...)
}
