package execution

import (
	"context"
	"sync"
	"time"

	"github.com/microsoft/toolcheck/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/microsoft/toolcheck/internal/execution"

// Traced wraps engine so that every Stream call is recorded as a span on the
// global tracer provider. The span ends when the stream is exhausted, fails
// or is closed.
func Traced(engine ChatEngine) ChatEngine {
	return &tracedEngine{ChatEngine: engine, tracer: otel.Tracer(tracerName)}
}

type tracedEngine struct {
	ChatEngine
	tracer trace.Tracer
}

func (e *tracedEngine) Stream(ctx context.Context, messages []models.Message) (Stream, error) {
	ctx, span := e.tracer.Start(ctx, "toolcheck.stream", trace.WithAttributes(
		attribute.String("gen_ai.operation.name", "chat"),
		attribute.String("gen_ai.provider.name", e.Name()),
		attribute.String("gen_ai.request.model", e.Model()),
		attribute.Int("toolcheck.messages", len(messages)),
	))

	inner, err := e.ChatEngine.Stream(ctx, messages)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		span.End()
		return nil, err
	}

	return &tracedStream{Stream: inner, span: span, start: time.Now()}, nil
}

type tracedStream struct {
	Stream
	span  trace.Span
	start time.Time

	fragments int
	chars     int
	firstAt   time.Duration

	endOnce sync.Once
}

func (s *tracedStream) Next() bool {
	if s.Stream.Next() {
		if s.fragments == 0 {
			s.firstAt = time.Since(s.start)
		}
		s.fragments++
		s.chars += len(s.Stream.Current())
		return true
	}

	s.end(s.Stream.Err())
	return false
}

func (s *tracedStream) Close() error {
	err := s.Stream.Close()
	s.end(nil)
	return err
}

func (s *tracedStream) end(err error) {
	s.endOnce.Do(func() {
		if err != nil {
			s.span.RecordError(err)
			s.span.SetStatus(codes.Error, err.Error())
		}

		s.span.SetAttributes(
			attribute.Int("toolcheck.response.fragments", s.fragments),
			attribute.Int("toolcheck.response.length", s.chars),
		)
		if s.fragments > 0 {
			s.span.SetAttributes(attribute.Float64("gen_ai.server.time_to_first_token", s.firstAt.Seconds()))
		}

		s.span.End()
	})
}
