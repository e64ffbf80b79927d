package intake

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/xelth-com/receiptdesk/internal/ai"
	"github.com/xelth-com/receiptdesk/internal/models"
)

type fakeRunner struct {
	delay    time.Duration
	failOn   map[string]error
	block    bool
	calls    atomic.Int32
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (f *fakeRunner) Extract(ctx context.Context, req ai.Request) (*models.ExtractedData, error) {
	f.calls.Add(1)
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		old := f.maxSeen.Load()
		if n <= old || f.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if err, ok := f.failOn[req.Image]; ok {
		return nil, err
	}
	return &models.ExtractedData{
		DocumentType: "PN",
		Items:        []models.ExtractedItem{{Name: req.Image}},
	}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []StatusMessage
}

func (n *recordingNotifier) Broadcast(v interface{}) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, v.(StatusMessage))
	return nil
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestBatchRun_MissingKey(t *testing.T) {
	runner := &fakeRunner{}
	b := NewBatch(runner, nil, 2, time.Second, quietLogger())

	files := []*File{NewFile("a.jpg", "a")}
	if err := b.Run(context.Background(), files, BatchOptions{}); !errors.Is(err, ai.ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if runner.calls.Load() != 0 {
		t.Errorf("no extraction should run without a key")
	}
	if files[0].Status != FileWaiting {
		t.Errorf("file should stay waiting, got %s", files[0].Status)
	}
}

func TestBatchRun_IndependentFailures(t *testing.T) {
	runner := &fakeRunner{failOn: map[string]error{"bad": errors.New("quota exceeded")}}
	notifier := &recordingNotifier{}
	b := NewBatch(runner, notifier, 4, time.Second, quietLogger())

	files := []*File{NewFile("1.jpg", "good"), NewFile("2.jpg", "bad"), NewFile("3.jpg", "fine")}
	if err := b.Run(context.Background(), files, BatchOptions{BatchID: "b1", APIKey: "k"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if files[0].Status != FileSuccess || files[2].Status != FileSuccess {
		t.Errorf("expected successes, got %s and %s", files[0].Status, files[2].Status)
	}
	if files[1].Status != FileError || files[1].Error != "quota exceeded" {
		t.Errorf("expected error state with message, got %s %q", files[1].Status, files[1].Error)
	}
	if files[0].Result == nil || files[0].Result.Items[0].Name != "good" {
		t.Errorf("result not attached: %+v", files[0].Result)
	}

	if len(notifier.messages) != 6 {
		t.Fatalf("expected 6 status messages, got %d", len(notifier.messages))
	}
	for _, m := range notifier.messages {
		if m.Type != MessageExtractionStatus || m.BatchID != "b1" {
			t.Errorf("unexpected message %+v", m)
		}
	}

	// Rerun only touches the failed file
	runner.failOn = nil
	before := runner.calls.Load()
	if err := b.Run(context.Background(), files, BatchOptions{APIKey: "k"}); err != nil {
		t.Fatalf("rerun failed: %v", err)
	}
	if got := runner.calls.Load() - before; got != 1 {
		t.Errorf("expected 1 retried call, got %d", got)
	}
	if files[1].Status != FileSuccess || files[1].Error != "" {
		t.Errorf("retried file should succeed, got %s %q", files[1].Status, files[1].Error)
	}
}

func TestBatchRun_BoundedConcurrency(t *testing.T) {
	runner := &fakeRunner{delay: 20 * time.Millisecond}
	b := NewBatch(runner, nil, 2, time.Second, quietLogger())

	var files []*File
	for i := 0; i < 8; i++ {
		files = append(files, NewFile("f.jpg", "img"))
	}
	if err := b.Run(context.Background(), files, BatchOptions{APIKey: "k"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if got := runner.maxSeen.Load(); got > 2 {
		t.Errorf("expected at most 2 concurrent calls, saw %d", got)
	}
	if got := runner.calls.Load(); got != 8 {
		t.Errorf("expected 8 calls, got %d", got)
	}
}

func TestBatchRun_Timeout(t *testing.T) {
	runner := &fakeRunner{block: true}
	b := NewBatch(runner, nil, 1, 30*time.Millisecond, quietLogger())

	files := []*File{NewFile("slow.jpg", "img")}
	if err := b.Run(context.Background(), files, BatchOptions{APIKey: "k"}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if files[0].Status != FileError {
		t.Fatalf("expected error state, got %s", files[0].Status)
	}
	if !strings.Contains(files[0].Error, "timed out") {
		t.Errorf("expected timeout message, got %q", files[0].Error)
	}
}
