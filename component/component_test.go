package component

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"testing"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(&mockComponent{name: "db"}); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if err := r.Register(&mockComponent{name: "db"}); err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "db"})

	if got := r.Get("db"); got == nil || got.Name() != "db" {
		t.Fatalf("expected registered component, got %v", got)
	}
	if r.Get("missing") != nil {
		t.Error("expected nil for unknown component")
	}
}

func TestStartAllOrderAndIdempotence(t *testing.T) {
	var order []string
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", startOrder: &order})
	r.Register(&mockComponent{name: "b", startOrder: &order})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}
	r.Register(&mockComponent{name: "c", startOrder: &order})
	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("second StartAll failed: %v", err)
	}
	if !slices.Equal(order, []string{"a", "b", "c"}) {
		t.Errorf("expected each component started once in order, got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "bad", startErr: fmt.Errorf("start failed")})

	err := r.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bad") {
		t.Errorf("expected start error naming component, got %v", err)
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	var stopOrder []string
	r := NewRegistry()
	r.Register(&mockComponent{name: "first", stopOrder: &stopOrder})
	r.Register(&mockComponent{name: "second", stopOrder: &stopOrder})
	r.Register(&mockComponent{name: "third", stopOrder: &stopOrder})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if !slices.Equal(stopOrder, []string{"third", "second", "first"}) {
		t.Errorf("expected reverse stop order, got %v", stopOrder)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	var stopOrder []string
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", stopOrder: &stopOrder})

	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(stopOrder) != 0 {
		t.Errorf("expected no stops for unstarted components, got %v", stopOrder)
	}
}

func TestStopAllCollectsErrors(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "a", stopErr: fmt.Errorf("a failed")})
	r.Register(&mockComponent{name: "b", stopErr: fmt.Errorf("b failed")})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Fatal("expected stop error")
	}
	if !strings.Contains(err.Error(), "a failed") || !strings.Contains(err.Error(), "b failed") {
		t.Errorf("expected both errors, got %v", err)
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry()
	r.Register(&mockComponent{name: "db", health: Health{Name: "db", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "cache", health: Health{Name: "cache", Status: StatusDegraded}})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[1].Status != StatusDegraded {
		t.Errorf("expected degraded cache, got %s", results[1].Status)
	}
	if all := r.All(); len(all) != 2 || all[0].Name() != "db" {
		t.Errorf("unexpected All(): %v", all)
	}
}
