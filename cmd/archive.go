package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var archiveCmd = &cobra.Command{
	Use:   "archive",
	Short: "Manage the PostGIS photo archive",
}

var archiveInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the archive table and spatial index",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.InitSchema(cmd.Context()); err != nil {
			return err
		}
		log.Info().Msg("archive schema ready")
		return nil
	},
}

var archiveCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of archived photos",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		count, err := a.Count(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), count)
		return nil
	},
}

var (
	archiveBox  string
	archiveJSON bool
)

var archiveQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "List archived photos inside a box",
	RunE: func(cmd *cobra.Command, args []string) error {
		box, err := parseBox(archiveBox)
		if err != nil {
			return err
		}

		a, err := openArchive(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		photos, err := a.QueryBox(cmd.Context(), box)
		if err != nil {
			return err
		}

		p := newPrinter(cmd.OutOrStdout())
		if archiveJSON {
			return p.printJSON(photos)
		}
		p.printPhotos(photos, nil)
		return nil
	},
}

func init() {
	archiveQueryCmd.Flags().StringVar(&archiveBox, "box", "", "Box as minLat,maxLat,minLon,maxLon")
	archiveQueryCmd.Flags().BoolVar(&archiveJSON, "json", false, "Output results as JSON")
	_ = archiveQueryCmd.MarkFlagRequired("box")

	archiveCmd.AddCommand(archiveInitCmd, archiveCountCmd, archiveQueryCmd)
}
