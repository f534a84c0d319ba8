package weather

import (
	"context"
	"reflect"
	"testing"
)

type fakeProbe struct {
	values map[string]float64
	calls  []string
}

func (f *fakeProbe) TryLatestHumidity(_ context.Context, id string) (float64, bool) {
	f.calls = append(f.calls, id)
	v, ok := f.values[id]
	return v, ok
}

func TestFirstHumidityStopsAtFirstSuccess(t *testing.T) {
	probe := &fakeProbe{values: map[string]float64{"KC": 45, "KD": 90}}

	got, err := FirstHumidity(context.Background(), probe, []string{"KA", "KB", "KC", "KD"}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || *got != 45 {
		t.Fatalf("expected 45, got %v", got)
	}
	if want := []string{"KA", "KB", "KC"}; !reflect.DeepEqual(probe.calls, want) {
		t.Fatalf("expected calls %v, got %v", want, probe.calls)
	}
}

func TestFirstHumidityRespectsLimit(t *testing.T) {
	probe := &fakeProbe{values: map[string]float64{"K3": 50}}

	got, err := FirstHumidity(context.Background(), probe, []string{"K1", "K2", "K3"}, 2)
	if err != nil || got != nil {
		t.Fatalf("expected absent, got %v, %v", got, err)
	}
	if len(probe.calls) != 2 {
		t.Fatalf("expected 2 attempts, got %v", probe.calls)
	}
}

func TestFirstAvailableNoCandidates(t *testing.T) {
	_, ok, err := FirstAvailable(context.Background(), nil, 10, func(context.Context, string) (int, bool) {
		t.Fatal("try should not be called")
		return 0, false
	})
	if ok || err != nil {
		t.Fatalf("expected no result, got ok=%v err=%v", ok, err)
	}
}

func TestFirstAvailableStopsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0

	_, ok, err := FirstAvailable(ctx, []string{"a", "b", "c"}, 0, func(context.Context, string) (string, bool) {
		attempts++
		cancel()
		return "", false
	})
	if ok || err != context.Canceled {
		t.Fatalf("expected context.Canceled, got ok=%v err=%v", ok, err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}
