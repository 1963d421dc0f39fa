package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"convert-json-to-parquet/internal/columnar"
	"convert-json-to-parquet/internal/location"
	"convert-json-to-parquet/internal/storage"
	"convert-json-to-parquet/pkg/types"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <location>",
	Short: "Print the footer metadata of a Parquet part file",
	Long: `Inspect prints the row count, row groups and column chunks of a Parquet
file as YAML. With --rows N it also prints the first N rows as JSON lines.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		loc, err := location.Parse(args[0])
		if err != nil {
			return err
		}

		path, cleanup, err := localCopy(cmd, loc)
		if err != nil {
			return err
		}
		defer cleanup()

		md, err := columnar.Inspect(path)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(md); err != nil {
			return fmt.Errorf("encoding metadata: %w", err)
		}
		if err := enc.Close(); err != nil {
			return err
		}

		rows, _ := cmd.Flags().GetInt("rows")
		if rows <= 0 {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		recs, _, err := columnar.ReadParquet(cmd.Context(), f, rows)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "---")
		for _, rec := range recs {
			line, err := rec.MarshalLine()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(line))
		}
		return nil
	},
}

// localCopy returns a local path for loc, downloading S3 objects to a
// temporary file that cleanup removes.
func localCopy(cmd *cobra.Command, loc location.Location) (string, func(), error) {
	if loc.Scheme == location.SchemeFile {
		return loc.Path, func() {}, nil
	}

	store, err := storage.ForScheme(cmd.Context(), loc.Scheme, types.S3Config{
		Region:       viper.GetString("s3.region"),
		Endpoint:     viper.GetString("s3.endpoint"),
		UsePathStyle: viper.GetBool("s3.use_path_style"),
	})
	if err != nil {
		return "", nil, err
	}

	body, err := store.Open(cmd.Context(), loc)
	if err != nil {
		return "", nil, err
	}
	defer body.Close()

	tmp, err := os.CreateTemp("", "inspect-*.parquet")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.Remove(tmp.Name()) }

	if _, err := io.Copy(tmp, body); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("downloading %s: %w", loc, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return tmp.Name(), cleanup, nil
}

func init() {
	inspectCmd.Flags().Int("rows", 0, "also print the first N rows as JSON lines")
	rootCmd.AddCommand(inspectCmd)
}
