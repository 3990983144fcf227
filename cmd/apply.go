// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"strings"

	"github.com/LeeDigitalWorks/cephcrush/pkg/crush"
	"github.com/LeeDigitalWorks/cephcrush/pkg/inventory"
	"github.com/LeeDigitalWorks/cephcrush/pkg/utils"

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Create and nest the CRUSH buckets of one node",
	Long: `Create the CRUSH buckets declared in a node's location and nest each one
under the next more general bucket type.

Bucket types, most specific first:
  ` + levelList() + `

Example:
  cephcrush apply --location host=node1,rack=rackA,root=default
  cephcrush apply --location-file /etc/ceph/crush-location.yml --check`,
	RunE: runApply,
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Print the CRUSH commands for a location without running them",
	RunE:  runPlan,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(planCmd)

	addRunFlags(applyCmd)
	addLocationFlags(applyCmd)

	planCmd.Flags().String("cluster", crush.DefaultCluster, "Ceph cluster name")
	planCmd.Flags().String("ceph-binary", crush.DefaultProgram, "Path to the ceph CLI")
	addLocationFlags(planCmd)
}

func addLocationFlags(cmd *cobra.Command) {
	cmd.Flags().StringToString("location", nil, "Bucket type to bucket name, e.g. host=node1,rack=rackA")
	cmd.Flags().String("location-file", "", "YAML or JSON file holding the location mapping")
}

// loadLocation takes the location from --location, then --location-file,
// then the "location" config key.
func loadLocation(cmd *cobra.Command) (crush.Location, error) {
	f := NewFlagLoader(cmd)
	if cmd.Flags().Changed("location") {
		return crush.Location(f.StringToString("location")), nil
	}
	if path := f.String("location-file"); path != "" {
		return inventory.LoadLocationFile(utils.ResolvePath(path))
	}
	if loc := f.StringToString("location"); len(loc) > 0 {
		return crush.Location(loc), nil
	}
	return nil, errors.New("no location given: use --location, --location-file or the 'location' config key")
}

func runApply(cmd *cobra.Command, args []string) error {
	opts, err := loadRunOptions(cmd)
	if err != nil {
		return err
	}
	loc, err := loadLocation(cmd)
	if err != nil {
		return err
	}

	ctx := opts.context(cmd.Context())
	res := opts.runner().Run(ctx, crush.Request{
		Cluster:  opts.cluster,
		Location: loc,
		Check:    opts.check,
	})
	captureFailure(ctx, res)
	opts.exportMetrics(res.Host)

	if err := printResult(cmd.OutOrStdout(), opts.output, res); err != nil {
		return err
	}
	if !res.OK() {
		return errRunFailed
	}
	return nil
}

func runPlan(cmd *cobra.Command, args []string) error {
	f := NewFlagLoader(cmd)
	loc, err := loadLocation(cmd)
	if err != nil {
		return err
	}
	if err := loc.Validate(); err != nil {
		return err
	}

	program := f.String("ceph-binary")
	out := cmd.OutOrStdout()
	for _, c := range crush.Plan(f.String("cluster"), loc) {
		if _, err := out.Write([]byte(strings.Join(c.Args(program), " ") + "\n")); err != nil {
			return err
		}
	}
	return nil
}

func levelList() string {
	var names []string
	for _, l := range crush.Levels() {
		names = append(names, l.String())
	}
	return strings.Join(names, ", ")
}
