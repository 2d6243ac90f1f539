package docai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"condo-assistant-be/pkg/ocr"

	"golang.org/x/oauth2"
	documentai "google.golang.org/api/documentai/v1"
	"google.golang.org/api/option"
	gcs "google.golang.org/api/storage/v1"
)

// Config bounds the polling loop. 5s × 60 attempts gives the analysis
// service a 5-minute ceiling per job.
type Config struct {
	PollInterval    time.Duration
	MaxPollAttempts int
}

func DefaultConfig() Config {
	return Config{
		PollInterval:    5 * time.Second,
		MaxPollAttempts: 60,
	}
}

// JobSpec is one batch-analysis job: which processor to run and where
// its JSON shards land in object storage.
type JobSpec struct {
	ProcessorName string
	OutputPrefix  string
}

// Client orchestrates asynchronous document-analysis batch jobs and
// retrieves their sharded results from object storage.
type Client struct {
	docs    *documentai.Service
	storage *gcs.Service
	cfg     Config
	logger  *log.Logger
}

// NewClient builds the analysis and storage services off one token
// source. location is the analysis service region (e.g. "us", "eu").
func NewClient(ctx context.Context, ts oauth2.TokenSource, location string, cfg Config, logger *log.Logger) (*Client, error) {
	endpoint := fmt.Sprintf("https://%s-documentai.googleapis.com/", location)
	docs, err := documentai.NewService(ctx,
		option.WithTokenSource(ts),
		option.WithEndpoint(endpoint),
	)
	if err != nil {
		return nil, fmt.Errorf("create document analysis service: %w", err)
	}

	storage, err := gcs.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create storage service: %w", err)
	}

	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultConfig().PollInterval
	}
	if cfg.MaxPollAttempts <= 0 {
		cfg.MaxPollAttempts = DefaultConfig().MaxPollAttempts
	}

	return &Client{docs: docs, storage: storage, cfg: cfg, logger: logger}, nil
}

// SubmitJob starts one batch job and returns its operation handle.
func (c *Client) SubmitJob(ctx context.Context, spec JobSpec, inputUri string) (string, error) {
	req := &documentai.GoogleCloudDocumentaiV1BatchProcessRequest{
		InputDocuments: &documentai.GoogleCloudDocumentaiV1BatchDocumentsInputConfig{
			GcsDocuments: &documentai.GoogleCloudDocumentaiV1GcsDocuments{
				Documents: []*documentai.GoogleCloudDocumentaiV1GcsDocument{
					{GcsUri: inputUri, MimeType: "application/pdf"},
				},
			},
		},
		DocumentOutputConfig: &documentai.GoogleCloudDocumentaiV1DocumentOutputConfig{
			GcsOutputConfig: &documentai.GoogleCloudDocumentaiV1DocumentOutputConfigGcsOutputConfig{
				GcsUri: spec.OutputPrefix,
			},
		},
	}

	op, err := c.docs.Projects.Locations.Processors.BatchProcess(spec.ProcessorName, req).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("submit batch job to %s: %w", spec.ProcessorName, err)
	}

	c.logf("batch job submitted: %s", op.Name)
	return op.Name, nil
}

// WaitForCompletion polls the operation at the configured interval.
// A completion report carrying an error payload fails the job with
// that error; exceeding the attempt ceiling fails with a timeout.
func (c *Client) WaitForCompletion(ctx context.Context, operationName string) error {
	for attempt := 0; attempt < c.cfg.MaxPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}

		op, err := c.docs.Projects.Locations.Operations.Get(operationName).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("poll operation %s: %w", operationName, err)
		}
		if !op.Done {
			continue
		}
		if op.Error != nil {
			return fmt.Errorf("analysis job failed: %s", op.Error.Message)
		}
		return nil
	}

	return fmt.Errorf("analysis job timed out after %d attempts", c.cfg.MaxPollAttempts)
}

// RunJobs submits every job and waits for all of them. Jobs run
// concurrently; reading results from a partially completed set is
// never valid, so the first error wins and the call returns only once
// every job has settled.
func (c *Client) RunJobs(ctx context.Context, inputUri string, jobs []JobSpec) error {
	errCh := make(chan error, len(jobs))

	for _, job := range jobs {
		go func(spec JobSpec) {
			opName, err := c.SubmitJob(ctx, spec, inputUri)
			if err != nil {
				errCh <- err
				return
			}
			errCh <- c.WaitForCompletion(ctx, opName)
		}(job)
	}

	var firstErr error
	for range jobs {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// UploadObject stores raw bytes in the bucket and returns the gs:// uri
// a batch job can consume.
func (c *Client) UploadObject(ctx context.Context, bucket, name string, body io.Reader, contentType string) (string, error) {
	obj := &gcs.Object{Name: name, ContentType: contentType}
	_, err := c.storage.Objects.Insert(bucket, obj).Media(body).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("upload object %s: %w", name, err)
	}
	return fmt.Sprintf("gs://%s/%s", bucket, name), nil
}

// FetchShardDocuments lists every JSON shard under the output prefix
// (sorted by name so concatenation order is deterministic), downloads
// and parses each.
func (c *Client) FetchShardDocuments(ctx context.Context, outputPrefix string) ([]*ocr.AnalysisDocument, error) {
	bucket, prefix, err := splitGcsUri(outputPrefix)
	if err != nil {
		return nil, err
	}

	var names []string
	pageToken := ""
	for {
		call := c.storage.Objects.List(bucket).Prefix(prefix).Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		res, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("list shards under %s: %w", outputPrefix, err)
		}
		for _, obj := range res.Items {
			if strings.HasSuffix(obj.Name, ".json") {
				names = append(names, obj.Name)
			}
		}
		if res.NextPageToken == "" {
			break
		}
		pageToken = res.NextPageToken
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no result shards found under %s", outputPrefix)
	}
	sort.Strings(names)

	docs := make([]*ocr.AnalysisDocument, 0, len(names))
	for _, name := range names {
		doc, err := c.downloadShard(ctx, bucket, name)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	c.logf("fetched %d result shards from %s", len(docs), outputPrefix)
	return docs, nil
}

func (c *Client) downloadShard(ctx context.Context, bucket, name string) (*ocr.AnalysisDocument, error) {
	res, err := c.storage.Objects.Get(bucket, name).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download shard %s: %w", name, err)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read shard %s: %w", name, err)
	}

	var doc ocr.AnalysisDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse shard %s: %w", name, err)
	}
	return &doc, nil
}

func splitGcsUri(uri string) (bucket, object string, err error) {
	trimmed := strings.TrimPrefix(uri, "gs://")
	if trimmed == uri {
		return "", "", fmt.Errorf("not a gs:// uri: %s", uri)
	}
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", fmt.Errorf("malformed gs:// uri: %s", uri)
	}
	return parts[0], parts[1], nil
}

func (c *Client) logf(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Printf("[INFO] "+format, args...)
	}
}
