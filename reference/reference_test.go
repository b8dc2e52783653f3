package reference

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/echoflaresat/eclipses/eclipse"
)

func TestPredict(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want eclipse.Kind
	}{
		{"total 2024-04-08", time.Date(2024, 4, 8, 18, 17, 0, 0, time.UTC), eclipse.TotalOrHybrid},
		{"annular 2023-10-14", time.Date(2023, 10, 14, 18, 0, 0, 0, time.UTC), eclipse.Annular},
		{"hybrid 2023-04-20", time.Date(2023, 4, 20, 4, 17, 0, 0, time.UTC), eclipse.TotalOrHybrid},
		{"partial 2022-10-25", time.Date(2022, 10, 25, 11, 0, 0, 0, time.UTC), eclipse.Partial},
		{"no eclipse 2024-05-08", time.Date(2024, 5, 8, 3, 22, 0, 0, time.UTC), eclipse.None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Predict(tt.at)
			if p.Kind != tt.want {
				t.Fatalf("Predict(%v) = %v, want %v", tt.at, p.Kind, tt.want)
			}
			if p.Kind == eclipse.None {
				return
			}
			if d := p.Greatest.Sub(tt.at); d < -2*time.Hour || d > 2*time.Hour {
				t.Errorf("greatest eclipse at %v, want near %v", p.Greatest, tt.at)
			}
		})
	}
}

func TestCheckAll(t *testing.T) {
	total := time.Date(2024, 4, 8, 18, 17, 0, 0, time.UTC)
	annular := time.Date(2023, 10, 14, 18, 0, 0, 0, time.UTC)

	results := []eclipse.Result{
		{Record: eclipse.Record{Instant: total, Kind: eclipse.TotalOrHybrid}},
		{Record: eclipse.Record{Instant: annular, Kind: eclipse.Partial}},
		{Record: eclipse.Record{Instant: annular, Kind: eclipse.None}, Err: eclipse.ErrDegenerateGeometry},
	}

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	got := CheckAll(results, logger)

	if len(got) != 1 {
		t.Fatalf("got %d mismatches, want 1: %+v", len(got), got)
	}
	if got[0].Ours != eclipse.Partial || got[0].Theirs != eclipse.Annular || got[0].Agree {
		t.Errorf("mismatch = %+v", got[0])
	}
	if !strings.Contains(logs.String(), "review manually") {
		t.Errorf("expected a warning, got %q", logs.String())
	}

	if v := Check(results[0].Record); !v.Agree {
		t.Errorf("total should agree: %+v", v)
	}
}
