package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grainlens/uploader/internal/domain/entity"
	"github.com/grainlens/uploader/internal/domain/service"
	"github.com/grainlens/uploader/internal/infrastructure/metrics"
)

// ErrClosed is the cancel cause of requests still in flight at Close
var ErrClosed = errors.New("upload classifier closed")

// Presenter overwrites the output element with a result
type Presenter interface {
	Show(result entity.Result)
}

// UploadClassifier turns file selections into rendered classification results.
//
// Only the latest selection may write the output element: a new selection
// cancels the request of the previous one, and a superseded request never
// renders.
type UploadClassifier interface {
	// Select starts classifying the first file of the selection and returns
	// immediately. An empty selection is a no-op and returns nil.
	Select(ctx context.Context, sel *entity.Selection) *Pending

	// Classify runs one request synchronously without touching the output.
	Classify(ctx context.Context, file *entity.SelectedFile) entity.Result

	// State reports the state of the latest selection.
	State() entity.State

	// Close cancels the in-flight request and waits for it to finish.
	Close()
}

type uploadClassifier struct {
	classifier service.Classifier
	presenter  Presenter
	logger     *zap.Logger
	metrics    *metrics.Metrics
	timeout    time.Duration

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelCauseFunc
	state      entity.State
	closed     bool
	wg         sync.WaitGroup
}

// NewUploadClassifier creates a new upload classifier.
// A zero timeout leaves request deadlines to the transport.
func NewUploadClassifier(classifier service.Classifier, presenter Presenter, logger *zap.Logger, m *metrics.Metrics, timeout time.Duration) UploadClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &uploadClassifier{
		classifier: classifier,
		presenter:  presenter,
		logger:     logger,
		metrics:    m,
		timeout:    timeout,
		state:      entity.StateIdle,
	}
}

func (u *uploadClassifier) Select(ctx context.Context, sel *entity.Selection) *Pending {
	file, err := sel.First()
	if err != nil {
		return nil
	}

	u.mu.Lock()
	if u.closed {
		u.mu.Unlock()
		return nil
	}
	if u.cancel != nil {
		u.cancel(entity.ErrSuperseded)
	}
	u.generation++
	gen := u.generation
	reqCtx, cancel := context.WithCancelCause(ctx)
	u.cancel = cancel
	u.state = entity.StatePending
	u.wg.Add(1)
	u.mu.Unlock()

	p := newPending(sel.ID)
	go u.run(reqCtx, cancel, gen, sel.ID, file, p)
	return p
}

func (u *uploadClassifier) run(ctx context.Context, cancel context.CancelCauseFunc, gen uint64, id uuid.UUID, file *entity.SelectedFile, p *Pending) {
	defer u.wg.Done()
	defer cancel(nil)

	result := u.classify(ctx, id, file)

	u.mu.Lock()
	if gen == u.generation {
		// Only Close cancels the latest request; that ends it without a render.
		if result.Kind != entity.ResultSuperseded {
			u.presenter.Show(result)
		}
		u.state = result.Kind.State()
		u.cancel = nil
	}
	u.mu.Unlock()

	p.resolve(result)
}

func (u *uploadClassifier) Classify(ctx context.Context, file *entity.SelectedFile) entity.Result {
	return u.classify(ctx, uuid.New(), file)
}

func (u *uploadClassifier) classify(ctx context.Context, id uuid.UUID, file *entity.SelectedFile) entity.Result {
	log := u.logger.With(
		zap.String("selection_id", id.String()),
		zap.String("file", file.Name),
		zap.Int("bytes", file.Size()),
	)
	log.Debug("Sending file for classification")

	reqCtx := ctx
	if u.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, u.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := u.classifier.Classify(reqCtx, file)
	elapsed := time.Since(start)

	var result entity.Result
	switch {
	case err != nil && isSuperseded(ctx):
		result = entity.Fail(entity.ResultSuperseded, "", context.Cause(ctx))
		log.Debug("Classification request superseded", zap.Error(context.Cause(ctx)))
	case err != nil:
		result = entity.Fail(entity.ResultTransportError, "", err)
		log.Error("Classification request failed", zap.Error(err), zap.Duration("latency", elapsed))
	default:
		result = resp.Result()
		switch result.Kind {
		case entity.ResultSuccess:
			log.Info("File classified", zap.String("label", result.Label), zap.Duration("latency", elapsed))
		case entity.ResultApplicationError:
			log.Warn("Classification service rejected the file", zap.String("error", result.Message), zap.Duration("latency", elapsed))
		default:
			log.Warn("Classification response has neither predicted_class nor error", zap.Duration("latency", elapsed))
		}
	}

	u.metrics.ObserveResult(string(result.Kind), elapsed, file.Size())
	return result
}

func isSuperseded(ctx context.Context) bool {
	cause := context.Cause(ctx)
	return errors.Is(cause, entity.ErrSuperseded) || errors.Is(cause, ErrClosed)
}

func (u *uploadClassifier) State() entity.State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

func (u *uploadClassifier) Close() {
	u.mu.Lock()
	u.closed = true
	if u.cancel != nil {
		u.cancel(ErrClosed)
		u.cancel = nil
	}
	u.mu.Unlock()

	u.wg.Wait()
}
