// Copyright 2025 The cephcrush Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/LeeDigitalWorks/cephcrush/pkg/crush"
	"github.com/LeeDigitalWorks/cephcrush/pkg/inventory"
	"github.com/LeeDigitalWorks/cephcrush/pkg/logger"
	"github.com/LeeDigitalWorks/cephcrush/pkg/utils"

	"github.com/spf13/cobra"
)

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Apply the CRUSH location of every OSD host in an Ansible inventory",
	Long: `Read an Ansible YAML inventory and apply the CRUSH location held in each
host's location variable, one host after another.

Hosts of the group (and its child groups) without the variable are skipped.
Group variables are inherited; host variables take precedence.

Example:
  cephcrush inventory -i hosts.yml --group osds --location-var osd_crush_location`,
	RunE: runInventory,
}

func init() {
	rootCmd.AddCommand(inventoryCmd)

	addRunFlags(inventoryCmd)
	inventoryCmd.Flags().StringP("inventory", "i", "", "Path to the Ansible YAML inventory (required)")
	inventoryCmd.Flags().String("group", inventory.DefaultGroup, "Inventory group holding the OSD hosts")
	inventoryCmd.Flags().String("location-var", inventory.DefaultLocationVar, "Host variable holding the CRUSH location")
	inventoryCmd.Flags().StringSlice("limit", nil, "Only process these hosts")
}

func runInventory(cmd *cobra.Command, args []string) error {
	opts, err := loadRunOptions(cmd)
	if err != nil {
		return err
	}

	f := NewFlagLoader(cmd)
	path := f.String("inventory")
	if path == "" {
		return fmt.Errorf("--inventory is required")
	}
	inv, err := inventory.LoadFile(utils.ResolvePath(path))
	if err != nil {
		return err
	}

	hosts, err := inv.GroupHosts(f.String("group"))
	if err != nil {
		return err
	}
	if limit := f.StringSlice("limit"); len(limit) > 0 {
		hosts = slices.DeleteFunc(hosts, func(h string) bool {
			return !slices.Contains(limit, h)
		})
	}

	ctx := opts.context(cmd.Context())
	runner := opts.runner()
	locationVar := f.String("location-var")
	out := cmd.OutOrStdout()

	var results []*crush.Result
	var skipped []string
	failed := false
	for _, host := range hosts {
		loc, ok, err := inv.HostLocation(host, locationVar)
		if err != nil {
			return err
		}
		if !ok {
			logger.Warn().Str("inventory_host", host).Str("var", locationVar).Msg("Host has no CRUSH location, skipping")
			skipped = append(skipped, host)
			continue
		}

		res := runner.Run(ctx, crush.Request{
			Cluster:  opts.cluster,
			Location: loc,
			Check:    opts.check,
		})
		captureFailure(ctx, res)
		if !res.OK() {
			failed = true
		}
		results = append(results, res)

		if opts.output == outputText {
			if err := printResult(out, outputText, res); err != nil {
				return err
			}
		}
	}

	hostname, _ := os.Hostname()
	opts.exportMetrics(hostname)

	if opts.output == outputJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"results": results,
			"skipped": skipped,
		}); err != nil {
			return err
		}
	} else {
		fmt.Fprintln(out)
		printSummary(out, results, skipped)
	}

	if failed {
		return errRunFailed
	}
	return nil
}
