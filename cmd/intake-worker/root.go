package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:   "intake-worker",
	Short: "Clinical document intake OCR worker",
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(enqueueCmd)
}
