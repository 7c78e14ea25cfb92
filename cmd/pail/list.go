package main

import (
	"fmt"
	"os"

	"github.com/pailkit/pail/internal/common/config"
	"github.com/pailkit/pail/internal/common/logger"
	"github.com/pailkit/pail/internal/common/output"
	"github.com/pailkit/pail/internal/installed"
	"github.com/pailkit/pail/internal/paths"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list [user|global]",
	Short: "List installed apps",
	Long:  `Lists installed apps with their active version, origin bucket, and scope. With no argument both scopes are listed, user scope first.`,
	Args:  cobra.MaximumNArgs(1),
	Run:   runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("loading config: %v", err)
		os.Exit(1)
	}

	resolver, err := newResolver(cfg)
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}

	var apps []installed.Package
	if len(args) == 1 {
		scope, err := paths.ParseScope(args[0])
		if err != nil {
			logger.Error("%v", err)
			os.Exit(1)
		}
		apps, err = installed.List(resolver, scope)
		if err != nil {
			logger.Error("listing installed apps: %v", err)
			os.Exit(1)
		}
	} else {
		apps, err = installed.ListAll(resolver)
		if err != nil {
			logger.Error("listing installed apps: %v", err)
			os.Exit(1)
		}
	}

	if len(apps) == 0 {
		output.PrintInfo("No installed apps")
		return
	}

	for _, app := range apps {
		version := app.Version
		if app.Failed() {
			version = output.Sprint(output.Failed, "(broken)")
		}

		line := fmt.Sprintf("%-24s %-14s %-12s %s",
			app.Name, version, app.Bucket, app.Scope)
		if app.Held {
			line += " " + output.FormatState("held")
		}
		fmt.Println(line)
	}
}
