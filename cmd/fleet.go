package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fleetlab/dispatchsim/config"
	"github.com/fleetlab/dispatchsim/fleet"
)

var (
	fleetOut  string
	fleetSize int
	fleetSeed int64
)

var fleetCmd = &cobra.Command{
	Use:   "fleet",
	Short: "Fleet file commands",
}

var fleetGenCmd = &cobra.Command{
	Use:   "gen",
	Short: "Generate a random fleet file",
	RunE:  runFleetGen,
}

func init() {
	fleetGenCmd.Flags().StringVar(&fleetOut, "out", "fleet.yaml", "output file (.yaml or .json)")
	fleetGenCmd.Flags().IntVar(&fleetSize, "size", 0, "number of drivers, 0 keeps the configured value")
	fleetGenCmd.Flags().Int64Var(&fleetSeed, "seed", 0, "random seed, 0 keeps the configured value")
	fleetCmd.AddCommand(fleetGenCmd)
	rootCmd.AddCommand(fleetCmd)
}

// runFleetGen writes a population file from the config's generate section,
// or from defaults when no config file exists.
func runFleetGen(cmd *cobra.Command, args []string) error {
	var gen fleet.GenConfig
	if _, err := os.Stat(cfgPath); err == nil {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		gen = cfg.Fleet.Generate
	}
	if fleetSize > 0 {
		gen.Size = fleetSize
	}
	if fleetSeed != 0 {
		gen.Seed = fleetSeed
	}
	gen.SetDefaults()
	if err := gen.Validate(); err != nil {
		return err
	}
	file, err := fleet.Generate(gen, nil)
	if err != nil {
		return err
	}
	if err := fleet.Save(fleetOut, file); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d drivers to %s\n", len(file.Drivers), fleetOut)
	return nil
}
