package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"convert-json-to-parquet/internal/converter"
	"convert-json-to-parquet/internal/job"
	"convert-json-to-parquet/internal/jobargs"
	"convert-json-to-parquet/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Convert the records at INPUT_LOC to Parquet at OUTPUT_LOC",
	Long: `Run reads all JSON records at --INPUT_LOC, infers a schema and writes
them as Parquet part files to --OUTPUT_LOC. JOB_NAME, INPUT_LOC and OUTPUT_LOC
are required; nothing is read or written if any of them is missing.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		args, err := jobargs.Resolve(viper.GetString, jobargs.Required...)
		if err != nil {
			return err
		}

		log, err := newLogger(cmd)
		if err != nil {
			return err
		}
		defer log.Sync()

		cfg := jobConfig(args)
		c, err := converter.NewFromConfig(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}

		var ledger job.Ledger
		if cfg.LedgerPath != "" {
			l, err := job.OpenSQLiteLedger(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer l.Close()
			ledger = l
		}

		res, err := converter.RunJob(cmd.Context(), job.New(ledger, log), args, c)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Converted %d records from %d objects into %d part files\n", res.Records, res.InputObjects, len(res.Files))
		for _, f := range res.Files {
			fmt.Fprintf(out, "  %s\n", f)
		}
		return nil
	},
}

// runFlags maps run flag names to their viper keys.
var runFlags = map[string]string{
	jobargs.JobName:        jobargs.JobName,
	jobargs.InputLoc:       jobargs.InputLoc,
	jobargs.OutputLoc:      jobargs.OutputLoc,
	"separator":            "format.separator",
	"with-header":          "format.with_header",
	"compression":          "output.compression",
	"batch-size":           "output.batch_size",
	"max-records-per-file": "output.max_records_per_file",
	"mode":                 "output.mode",
	"staging-dir":          "output.staging_dir",
	"verify":               "output.verify",
	"region":               "s3.region",
	"endpoint":             "s3.endpoint",
	"path-style":           "s3.use_path_style",
	"ledger":               "ledger_path",
}

func init() {
	f := runCmd.Flags()
	f.String(jobargs.JobName, "", "job name (required)")
	f.String(jobargs.InputLoc, "", "input location: s3://bucket/prefix, file:///path or a path (required)")
	f.String(jobargs.OutputLoc, "", "output location for the Parquet part files (required)")
	f.String("separator", types.DefaultSeparator, "character allowed between top-level JSON records")
	f.Bool("with-header", false, "skip the first line of every input object")
	f.String("compression", types.DefaultCompression, "parquet compression: snappy, gzip, zstd, brotli or none")
	f.Int("batch-size", types.DefaultBatchSize, "rows per Arrow record batch")
	f.Int("max-records-per-file", 0, "split output into part files of at most this many records (0: one file)")
	f.String("mode", string(types.ModeAppend), "what to do with existing output: append or overwrite")
	f.String("staging-dir", "", "directory for part files before upload (default: system temp dir)")
	f.Bool("verify", true, "check each part file's footer row count before upload")
	f.String("region", "", "AWS region override")
	f.String("endpoint", "", "custom S3 endpoint")
	f.Bool("path-style", false, "use path-style S3 addressing")
	f.String("ledger", "", "SQLite run ledger file (disabled when empty)")

	for name, key := range runFlags {
		if err := viper.BindPFlag(key, f.Lookup(name)); err != nil {
			panic(err)
		}
	}

	rootCmd.AddCommand(runCmd)
}

// jobConfig assembles the job configuration from viper and the resolved arguments.
func jobConfig(args jobargs.Args) types.JobConfig {
	return types.JobConfig{
		JobName:   args.Get(jobargs.JobName),
		InputLoc:  args.Get(jobargs.InputLoc),
		OutputLoc: args.Get(jobargs.OutputLoc),
		Format: types.FormatOptions{
			WithHeader: viper.GetBool("format.with_header"),
			Separator:  viper.GetString("format.separator"),
		},
		Output: types.OutputOptions{
			Compression:       viper.GetString("output.compression"),
			BatchSize:         viper.GetInt("output.batch_size"),
			MaxRecordsPerFile: viper.GetInt("output.max_records_per_file"),
			Mode:              types.WriteMode(viper.GetString("output.mode")),
			StagingDir:        viper.GetString("output.staging_dir"),
			Verify:            viper.GetBool("output.verify"),
		},
		S3: types.S3Config{
			Region:       viper.GetString("s3.region"),
			Endpoint:     viper.GetString("s3.endpoint"),
			UsePathStyle: viper.GetBool("s3.use_path_style"),
		},
		LedgerPath: viper.GetString("ledger_path"),
	}.WithDefaults()
}
