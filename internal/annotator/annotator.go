package annotator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"docsmith/internal/completion"
	"docsmith/internal/config"
	"docsmith/internal/extractor"

	"go.uber.org/zap"
)

// State is the lifecycle of one block inside a run.
type State int

const (
	StatePending State = iota
	StateRequesting
	StateCompleted
	StateTimedOut
	StateMalformed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateRequesting:
		return "requesting"
	case StateCompleted:
		return "completed"
	case StateTimedOut:
		return "timed_out"
	case StateMalformed:
		return "malformed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Summary counts block outcomes for one run.
type Summary struct {
	Total     int
	Completed int
	TimedOut  int
	Malformed int
}

type Options struct {
	Sampling      config.Sampling
	Model         string
	Timeout       time.Duration
	Delay         time.Duration
	DocstringOnly bool
	Logger        *zap.Logger
}

// Annotator requests a docstring for each block and streams the transcript.
// Blocks are processed strictly one after another.
type Annotator struct {
	completer completion.Completer
	out       io.Writer
	opts      Options
	logger    *zap.Logger
	wait      func(ctx context.Context, d time.Duration) bool
}

func New(c completion.Completer, out io.Writer, opts Options) *Annotator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Annotator{
		completer: c,
		out:       out,
		opts:      opts,
		logger:    logger,
		wait:      waitOrCancel,
	}
}

// Run annotates blocks in order. Timeouts and malformed responses are
// recovered per block; cancellation of ctx and any other completion error
// stop the run.
func (a *Annotator) Run(ctx context.Context, blocks []extractor.FunctionBlock) (Summary, error) {
	summary := Summary{Total: len(blocks)}

	for i, block := range blocks {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		if _, err := fmt.Fprintf(a.out, "# >>>>>>>>>>>>>>> METHOD/FUNCTION: %s (%d/%d)\n\n", block.Name, block.Ordinal, len(blocks)); err != nil {
			return summary, err
		}

		state, doc, err := a.annotate(ctx, block)
		if err != nil {
			return summary, err
		}
		a.logger.Debug("Block annotated",
			zap.String("name", block.Name),
			zap.Int("ordinal", block.Ordinal),
			zap.Stringer("state", state))

		switch state {
		case StateTimedOut:
			summary.TimedOut++
			continue
		case StateMalformed:
			summary.Malformed++
		default:
			summary.Completed++
		}

		if err := Render(a.out, block, doc, !a.opts.DocstringOnly); err != nil {
			return summary, err
		}

		if i < len(blocks)-1 && !a.wait(ctx, a.opts.Delay) {
			return summary, ctx.Err()
		}
	}
	return summary, nil
}

func (a *Annotator) annotate(ctx context.Context, block extractor.FunctionBlock) (State, string, error) {
	req := BuildRequest(block, a.opts.Sampling, a.opts.Model)

	callCtx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	a.logger.Debug("Requesting docstring",
		zap.String("name", block.Name),
		zap.Int("max_tokens", req.MaxTokens))
	text, err := a.completer.Complete(callCtx, req)

	switch {
	case err == nil:
		return StateCompleted, CleanCompletion(text, block.Name), nil
	case ctx.Err() != nil:
		return StateRequesting, "", ctx.Err()
	case errors.Is(callCtx.Err(), context.DeadlineExceeded):
		a.logger.Warn("Request is taking too long. Skipping...",
			zap.String("name", block.Name),
			zap.Duration("timeout", a.opts.Timeout))
		return StateTimedOut, "", nil
	case errors.Is(err, completion.ErrMalformedResponse):
		a.logger.Warn("Malformed completion response", zap.String("name", block.Name), zap.Error(err))
		if _, werr := fmt.Fprintf(a.out, "ERROR!: %v\n", err); werr != nil {
			return StateMalformed, "", werr
		}
		return StateMalformed, "", nil
	default:
		return StateRequesting, "", fmt.Errorf("completion for %s failed: %w", block.Name, err)
	}
}

func waitOrCancel(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
