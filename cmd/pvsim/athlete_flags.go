package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	pvsim "github.com/sandiegoi-PV/AI-PVSim"
	"github.com/sandiegoi-PV/AI-PVSim/config"
)

// runFlags are the analysis flags shared by analyze and batch. Values only
// override the config file when the flag is set.
type runFlags struct {
	mass       float64
	height     float64
	pixelRatio float64
	athleteFIT string
	outDir     string
	format     string
	overwrite  bool
	copySource bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.Float64Var(&f.mass, "mass", 0, "Athlete mass in kg")
	flags.Float64Var(&f.height, "height", 0, "Athlete height in meters")
	flags.Float64Var(&f.pixelRatio, "pixel-ratio", 0, "Meters per pixel in the camera plane")
	flags.StringVar(&f.athleteFIT, "athlete-fit", "", "Garmin FIT settings file supplying athlete mass")
	flags.StringVarP(&f.outDir, "out", "o", "", "Output directory")
	flags.StringVar(&f.format, "format", "", "Energy series format (parquet, csv)")
	flags.BoolVar(&f.overwrite, "overwrite", false, "Allow writing into a non-empty output directory")
	flags.BoolVar(&f.copySource, "copy-source", false, "Copy the landmark file next to the artifacts")
}

func (f *runFlags) athlete(cmd *cobra.Command, cfg *config.Config) pvsim.Config {
	out := pvsim.Config{
		MassKG:       cfg.Athlete.MassKG,
		HeightM:      cfg.Athlete.HeightM,
		PixelToMeter: cfg.Athlete.PixelToMeter,
	}
	if cmd.Flags().Changed("mass") {
		out.MassKG = f.mass
	}
	if cmd.Flags().Changed("height") {
		out.HeightM = f.height
	}
	if cmd.Flags().Changed("pixel-ratio") {
		out.PixelToMeter = f.pixelRatio
	}
	return out
}

// massExplicit reports whether --mass was given; it then beats a FIT profile.
func (f *runFlags) massExplicit(cmd *cobra.Command) bool {
	return cmd.Flags().Changed("mass")
}

func (f *runFlags) fitPath(cfg *config.Config) string {
	if p := strings.TrimSpace(f.athleteFIT); p != "" {
		return p
	}
	return cfg.Athlete.FITProfile
}

func (f *runFlags) seriesFormat(cfg *config.Config) string {
	if p := strings.TrimSpace(f.format); p != "" {
		return p
	}
	return cfg.Output.Format
}

func (f *runFlags) overwriteOutput(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("overwrite") {
		return f.overwrite
	}
	return cfg.Output.Overwrite
}

func (f *runFlags) copySourceFile(cmd *cobra.Command, cfg *config.Config) bool {
	if cmd.Flags().Changed("copy-source") {
		return f.copySource
	}
	return cfg.Output.CopySource
}

// outputDirFor places each input in its own directory named after the file.
func outputDirFor(base, input string) string {
	stem := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	if stem == "" {
		stem = "attempt"
	}
	return filepath.Join(base, stem)
}

// outputDirsFor assigns one directory per input. Inputs sharing a file stem
// get -2, -3... suffixes in argument order so no two runs write to the same
// directory.
func outputDirsFor(base string, inputs []string) []string {
	dirs := make([]string, len(inputs))
	used := make(map[string]bool, len(inputs))
	for i, input := range inputs {
		dir := outputDirFor(base, input)
		candidate := dir
		for n := 2; used[strings.ToLower(candidate)]; n++ {
			candidate = fmt.Sprintf("%s-%d", dir, n)
		}
		used[strings.ToLower(candidate)] = true
		dirs[i] = candidate
	}
	return dirs
}
