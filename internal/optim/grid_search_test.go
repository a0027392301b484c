package optim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/waddington/internal/config"
	"github.com/san-kum/waddington/internal/dynamo"
	"github.com/san-kum/waddington/internal/experiment"
)

func TestLinspace(t *testing.T) {
	if diff := cmp.Diff([]float64{0.5, 1.0, 1.5, 2.0}, Linspace(0.5, 2.0, 4)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
	if got := Linspace(3, 9, 1); len(got) != 1 || got[0] != 3 {
		t.Errorf("single point %v", got)
	}
}

func TestSearchFindsMinimum(t *testing.T) {
	g := NewGridSearch([]string{"x", "y"}, [][]float64{{-1, 0, 1, 2}, {-2, 3}})
	bowl := func(ctx context.Context, p map[string]float64) (float64, error) {
		return (p["x"]-1)*(p["x"]-1) + (p["y"]-3)*(p["y"]-3), nil
	}

	res, err := g.Search(context.Background(), bowl)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 8 {
		t.Errorf("evaluated %d points, want 8", len(res.Points))
	}
	if diff := cmp.Diff(map[string]float64{"x": 1, "y": 3}, res.Best); diff != "" {
		t.Errorf("best (-want +got):\n%s", diff)
	}
	if res.BestValue != 0 {
		t.Errorf("best value %v", res.BestValue)
	}
	ranked := res.Ranked()
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Value < ranked[i-1].Value {
			t.Fatal("ranked points out of order")
		}
	}
}

func TestSearchSkipsFailures(t *testing.T) {
	boom := errors.New("boom")
	g := NewGridSearch([]string{"x"}, [][]float64{{0, 1, 2}})
	res, err := g.Search(context.Background(), func(ctx context.Context, p map[string]float64) (float64, error) {
		if p["x"] == 0 {
			return -100, boom
		}
		return p["x"], nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.Best["x"] != 1 {
		t.Errorf("failed point chosen: %v", res.Best)
	}
	if len(res.Ranked()) != 2 {
		t.Errorf("ranked should drop failures")
	}
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := NewGridSearch([]string{"x"}, [][]float64{{0, 1}})
	_, err := g.Search(ctx, func(context.Context, map[string]float64) (float64, error) { return 0, nil })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestMeanDeviationObjectivePrefersDeepBasin(t *testing.T) {
	plan, err := experiment.FromConfig(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	plan.Transient = 100
	plan.Run.Seed = 1

	obj := MeanDeviation(experiment.New(nil), plan, 8, 4)
	g := NewGridSearch([]string{"depth"}, [][]float64{{0.5, 3.0}})
	res, err := g.Search(context.Background(), obj)
	if err != nil {
		t.Fatal(err)
	}
	if res.Best["depth"] != 3.0 {
		t.Errorf("expected deeper basin to win, got %v", res.Best)
	}

	bad, err := obj(context.Background(), map[string]float64{"width": 0})
	if !errors.Is(err, dynamo.ErrInvalidParameter) || !math.IsInf(bad, 1) {
		t.Errorf("invalid width: value %v err %v", bad, err)
	}
}
