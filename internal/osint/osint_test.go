package osint

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

// stubSource is a scriptable Source for aggregator tests.
type stubSource struct {
	name  string
	data  map[string]any
	err   error
	delay time.Duration
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Lookup(ctx context.Context, _ Identifiers) (map[string]any, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.data, nil
}

func TestCollect_AllSucceed(t *testing.T) {
	agg := NewAggregator(time.Second,
		&stubSource{name: "alpha", data: map[string]any{"k": "a"}},
		&stubSource{name: "beta", data: map[string]any{"k": "b"}},
	)

	findings := agg.Collect(context.Background(), Identifiers{Username: "jane"})
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	// Findings come back in configuration order regardless of completion order.
	if findings[0].Source != "alpha" || findings[1].Source != "beta" {
		t.Errorf("findings out of configuration order: %+v", findings)
	}
	for _, f := range findings {
		if !f.Success {
			t.Errorf("source %s should have succeeded: %+v", f.Source, f)
		}
		if f.Reason != "" {
			t.Errorf("successful finding should carry no reason: %+v", f)
		}
	}
}

func TestCollect_FailureIsolated(t *testing.T) {
	agg := NewAggregator(time.Second,
		&stubSource{name: "broken", err: errors.New("boom")},
		&stubSource{name: "fine", data: map[string]any{"k": "v"}},
	)

	findings := agg.Collect(context.Background(), Identifiers{Username: "jane"})
	if findings[0].Success {
		t.Errorf("broken source should report failure: %+v", findings[0])
	}
	if findings[0].Reason != "boom" {
		t.Errorf("failure reason = %q, want boom", findings[0].Reason)
	}
	if !findings[1].Success {
		t.Errorf("healthy source must be unaffected by a failing peer: %+v", findings[1])
	}
}

func TestCollect_PerSourceTimeout(t *testing.T) {
	agg := NewAggregator(20*time.Millisecond,
		&stubSource{name: "slow", data: map[string]any{"k": "v"}, delay: 500 * time.Millisecond},
		&stubSource{name: "fast", data: map[string]any{"k": "v"}},
	)

	findings := agg.Collect(context.Background(), Identifiers{Username: "jane"})
	if findings[0].Success {
		t.Errorf("slow source should have timed out: %+v", findings[0])
	}
	if !findings[1].Success {
		t.Errorf("fast source should have completed: %+v", findings[1])
	}
}

func TestCollect_ParentDeadlinePreservesCompleted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	agg := NewAggregator(time.Second,
		&stubSource{name: "fast", data: map[string]any{"k": "v"}},
		&stubSource{name: "stuck", data: map[string]any{"k": "v"}, delay: time.Minute},
	)

	findings := agg.Collect(ctx, Identifiers{Username: "jane"})
	if len(findings) != 2 {
		t.Fatalf("expected a finding per source, got %d", len(findings))
	}
	if findings[1].Success {
		t.Errorf("stuck source should be recorded as a failure: %+v", findings[1])
	}
	if findings[1].Reason == "" {
		t.Errorf("unfinished source must carry a reason: %+v", findings[1])
	}
}

func TestCollect_NoSources(t *testing.T) {
	agg := NewAggregator(time.Second)
	if findings := agg.Collect(context.Background(), Identifiers{}); len(findings) != 0 {
		t.Errorf("expected no findings, got %+v", findings)
	}
}

func TestSuccessfulSources(t *testing.T) {
	findings := []Finding{
		{Source: "a", Success: true},
		{Source: "b", Success: false, Reason: "nope"},
		{Source: "c", Success: true},
	}

	got := SuccessfulSources(findings)
	if !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("SuccessfulSources = %v, want [a c]", got)
	}
	if names := SuccessfulSources(nil); len(names) != 0 {
		t.Errorf("expected no names for empty findings, got %v", names)
	}
}
