package cli

import (
	"fmt"

	"github.com/raphaelgruber/chatai/internal/export"
	"github.com/raphaelgruber/chatai/internal/view"
	"github.com/spf13/cobra"
)

var (
	exportOutput string
	exportS3     bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the conversation as plain text",
	Long: `Export the conversation as plain text.

By default the file is written to the export directory as chat-history.txt,
replacing an earlier export. With --s3 it is uploaded to the configured
MinIO/S3 bucket instead (MINIO_ENDPOINT, MINIO_ACCESS_KEY, MINIO_SECRET_KEY).

Examples:
  chatai export
  chatai export -o ~/notes/chat.txt
  chatai export --s3`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file")
	exportCmd.Flags().BoolVar(&exportS3, "s3", false, "upload to the configured bucket")
	exportCmd.MarkFlagsMutuallyExclusive("output", "s3")
}

func runExport(cmd *cobra.Command, args []string) error {
	sink, err := exportSink()
	if err != nil {
		return err
	}

	location, err := sink.Export(cmd.Context(), view.ExportFileName, view.ExportText(sess.Transcript()))
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	logger.Info("transcript exported", "location", location, "entries", sess.Len())
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d entries to %s\n", sess.Len(), location)
	return nil
}

func exportSink() (export.Sink, error) {
	switch {
	case exportS3:
		if !cfg.MinioEnabled() {
			return nil, fmt.Errorf("object storage not configured (set MINIO_ENDPOINT, MINIO_ACCESS_KEY and MINIO_SECRET_KEY)")
		}
		return export.NewMinioSink(export.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
	case exportOutput != "":
		return export.PathSink{Path: exportOutput}, nil
	default:
		return export.FileSink{Dir: cfg.ExportDir}, nil
	}
}
