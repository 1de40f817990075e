// Command collector feeds scraped job listings into the ingest API. It
// reads raw records as JSON lines, buffers them through the ingest queue and
// reports sync stats when the queue drains. The scraping itself happens
// elsewhere; this binary is the delivery side.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wolram/jobapp/internal/queue"
)

var (
	apiURL    string
	token     string
	inputPath string
)

var rootCmd = &cobra.Command{
	Use:     "collector",
	Short:   "Deliver scraped job listings to the ingest API",
	Version: "1.0.0",
}

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Read raw records (JSON lines) and deliver them in batches",
	Long: `Reads one raw opportunity record per line from a file or stdin,
queues them with the same dedupe/group/chunk behavior the browser extension
uses, and blocks until the queue has drained.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			token = os.Getenv("JOBAPP_TOKEN")
		}
		if token == "" {
			return fmt.Errorf("no token: pass --token or set JOBAPP_TOKEN")
		}

		records, err := readRecords(inputPath)
		if err != nil {
			return err
		}
		if len(records) == 0 {
			fmt.Println("No records to ingest.")
			return nil
		}

		sender := queue.NewHTTPSender(apiURL, token)
		q := queue.New(sender, queue.DefaultConfig())

		q.Add(records...)
		q.Flush()
		q.Close()

		stats := q.Stats()
		fmt.Printf("Ingest complete: %d attempted, %d succeeded, %d failed\n",
			stats.Attempted, stats.Succeeded, stats.Failed)
		if !stats.LastSync.IsZero() {
			fmt.Printf("Last sync: %s\n", stats.LastSync.Format("2006-01-02 15:04:05"))
		}

		if stats.Failed > 0 {
			return fmt.Errorf("%d item(s) failed to deliver", stats.Failed)
		}
		return nil
	},
}

func readRecords(path string) ([]queue.RawRecord, error) {
	var reader io.Reader = os.Stdin
	if path != "" && path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open input: %w", err)
		}
		defer file.Close()
		reader = file
	}

	var records []queue.RawRecord
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if text == "" {
			continue
		}

		var record queue.RawRecord
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			// One bad record must not abort the rest.
			fmt.Fprintf(os.Stderr, "Skipping line %d: %v\n", line, err)
			continue
		}
		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	return records, nil
}

func main() {
	ingestCmd.Flags().StringVar(&apiURL, "api-url", "http://localhost:3000", "base URL of the ingest API")
	ingestCmd.Flags().StringVar(&token, "token", "", "personal access token (or JOBAPP_TOKEN)")
	ingestCmd.Flags().StringVarP(&inputPath, "file", "f", "-", "input file of JSON-line records, - for stdin")
	rootCmd.AddCommand(ingestCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
