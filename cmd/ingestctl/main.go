// ingestctl drives the ingestion API from the command line. It is the
// retrying client: the server attempts each operation once, and this
// tool backs off and retries on failure.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dimsonMba/MTSU-Connect/internal/retry"
)

var (
	serverURL  string
	documentID string
	attempts   int
)

func main() {
	root := &cobra.Command{
		Use:           "ingestctl",
		Short:         "Ingest study documents into the QA service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "base URL of the API server")
	root.PersistentFlags().StringVar(&documentID, "document-id", "", "target document id")
	root.PersistentFlags().IntVar(&attempts, "attempts", retry.DefaultPolicy.MaxAttempts, "max attempts per request")

	root.AddCommand(textCmd(), fileCmd(), reindexCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func textCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "text [text ...]",
		Short: "Ingest inline text (reads stdin when no args are given)",
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args, " ")
			if text == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				text = string(data)
			}

			body, err := json.Marshal(map[string]string{
				"document_id": documentID,
				"text":        text,
			})
			if err != nil {
				return err
			}
			return postWithRetry(cmd.Context(), "/api/ingest", "application/json", func() (io.Reader, error) {
				return bytes.NewReader(body), nil
			})
		},
	}
}

func fileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "file <path>",
		Short: "Upload a PDF for later extraction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			filename := filepath.Base(args[0])

			var buf bytes.Buffer
			mw := multipart.NewWriter(&buf)
			if err := mw.WriteField("document_id", documentID); err != nil {
				return err
			}
			fw, err := mw.CreateFormFile("file", filename)
			if err != nil {
				return err
			}
			if _, err := fw.Write(data); err != nil {
				return err
			}
			if err := mw.Close(); err != nil {
				return err
			}

			payload := buf.Bytes()
			return postWithRetry(cmd.Context(), "/api/ingest", mw.FormDataContentType(), func() (io.Reader, error) {
				return bytes.NewReader(payload), nil
			})
		},
	}
}

func reindexCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Re-extract and re-embed a stored document",
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := json.Marshal(map[string]string{"document_id": documentID})
			if err != nil {
				return err
			}
			return postWithRetry(cmd.Context(), "/api/ingest", "application/json", func() (io.Reader, error) {
				return bytes.NewReader(body), nil
			})
		},
	}
}

// postWithRetry sends the request under the backoff policy. newBody is
// called per attempt so each try gets a fresh reader.
func postWithRetry(ctx context.Context, path, contentType string, newBody func() (io.Reader, error)) error {
	policy := retry.Policy{MaxAttempts: attempts, BaseDelay: time.Second}
	client := &http.Client{Timeout: 2 * time.Minute}

	return retry.Do(ctx, policy, func(ctx context.Context) error {
		body, err := newBody()
		if err != nil {
			return err
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverURL+path, body)
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", contentType)

		resp, err := client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		out, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if resp.StatusCode >= 400 {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(out)))
		}

		fmt.Println(strings.TrimSpace(string(out)))
		return nil
	})
}
