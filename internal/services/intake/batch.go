package intake

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/xelth-com/receiptdesk/internal/ai"
	"github.com/xelth-com/receiptdesk/internal/models"
	"golang.org/x/sync/errgroup"
)

// File states of the extraction stage
const (
	FileWaiting    = "waiting"
	FileProcessing = "processing"
	FileSuccess    = "success"
	FileError      = "error"
)

// MessageExtractionStatus is the websocket message type for file state changes
const MessageExtractionStatus = "EXTRACTION_STATUS"

// File is one uploaded receipt image moving through extraction
type File struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	Image  string                `json:"-"`
	Status string                `json:"status"`
	Result *models.ExtractedData `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// NewFile wraps an image data URI in a waiting File
func NewFile(name, image string) *File {
	return &File{
		ID:     uuid.NewString(),
		Name:   name,
		Image:  image,
		Status: FileWaiting,
	}
}

// StatusMessage is broadcast whenever a file changes state
type StatusMessage struct {
	Type    string `json:"type"`
	BatchID string `json:"batchId"`
	File    File   `json:"file"`
}

// ExtractionRunner is the single-image extraction call
type ExtractionRunner interface {
	Extract(ctx context.Context, req ai.Request) (*models.ExtractedData, error)
}

// Notifier receives file state changes
type Notifier interface {
	Broadcast(v interface{}) error
}

// BatchOptions are shared by every file of one run
type BatchOptions struct {
	BatchID  string
	APIKey   string
	Model    string
	Prompt   string
	PromptID string
}

// Batch runs extractions for many files with bounded concurrency
type Batch struct {
	extractor ExtractionRunner
	notifier  Notifier
	limit     int
	timeout   time.Duration
	logger    *logrus.Logger

	mu sync.Mutex
}

// NewBatch creates a runner. A nil notifier disables progress messages.
func NewBatch(extractor ExtractionRunner, notifier Notifier, limit int, timeout time.Duration, logger *logrus.Logger) *Batch {
	if limit < 1 {
		limit = 1
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Batch{
		extractor: extractor,
		notifier:  notifier,
		limit:     limit,
		timeout:   timeout,
		logger:    logger,
	}
}

// Run extracts every file whose status is waiting or error and returns once
// all of them have settled. A failing file never stops the others; its error
// is recorded on the file. A missing API key fails the run before any call.
func (b *Batch) Run(ctx context.Context, files []*File, opts BatchOptions) error {
	if opts.APIKey == "" {
		return ai.ErrMissingAPIKey
	}
	if opts.BatchID == "" {
		opts.BatchID = uuid.NewString()
	}

	g := new(errgroup.Group)
	g.SetLimit(b.limit)

	for _, f := range files {
		if f.Status != FileWaiting && f.Status != FileError {
			continue
		}
		f := f
		g.Go(func() error {
			b.process(ctx, f, opts)
			return nil
		})
	}
	return g.Wait()
}

func (b *Batch) process(ctx context.Context, f *File, opts BatchOptions) {
	b.setState(opts.BatchID, f, FileProcessing, nil, "")

	callCtx := ctx
	if b.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	result, err := b.extractor.Extract(callCtx, ai.Request{
		Image:    f.Image,
		APIKey:   opts.APIKey,
		Model:    opts.Model,
		Prompt:   opts.Prompt,
		PromptID: opts.PromptID,
	})
	if err != nil {
		msg := err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			msg = "extraction timed out after " + b.timeout.String()
		}
		b.logger.WithFields(logrus.Fields{
			"file":     f.Name,
			"batch_id": opts.BatchID,
			"duration": time.Since(start).String(),
		}).WithError(err).Warn("❌ Extraction failed")
		b.setState(opts.BatchID, f, FileError, nil, msg)
		return
	}

	b.logger.WithFields(logrus.Fields{
		"file":     f.Name,
		"batch_id": opts.BatchID,
		"items":    len(result.Items),
		"duration": time.Since(start).String(),
	}).Info("✅ Extraction finished")
	b.setState(opts.BatchID, f, FileSuccess, result, "")
}

func (b *Batch) setState(batchID string, f *File, status string, result *models.ExtractedData, errMsg string) {
	b.mu.Lock()
	f.Status = status
	f.Result = result
	f.Error = errMsg
	snapshot := *f
	b.mu.Unlock()

	if b.notifier == nil {
		return
	}
	if err := b.notifier.Broadcast(StatusMessage{Type: MessageExtractionStatus, BatchID: batchID, File: snapshot}); err != nil {
		b.logger.WithError(err).Debug("status broadcast dropped")
	}
}
