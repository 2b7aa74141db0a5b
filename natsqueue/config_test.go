package natsqueue

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	c := DefaultConfig()

	if c.Namespace == "" {
		t.Error("expected non-empty default namespace")
	}
	if c.MaxDeliver != 5 {
		t.Errorf("MaxDeliver = %d, want 5", c.MaxDeliver)
	}
	if c.AckWait != 30*time.Second {
		t.Errorf("AckWait = %v, want 30s", c.AckWait)
	}
	if !c.EnableDLQ {
		t.Error("expected DLQ enabled by default")
	}
	if len(c.NakBackoff) == 0 {
		t.Error("expected non-empty default nak backoff table")
	}
}

func TestBackoffForClampsToTableBounds(t *testing.T) {
	c := Config{NakBackoff: []time.Duration{time.Second, 2 * time.Second, 5 * time.Second}}

	cases := []struct {
		delivered uint64
		want      time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 5 * time.Second},
		{100, 5 * time.Second},
	}

	for _, c2 := range cases {
		if got := c.backoffFor(c2.delivered); got != c2.want {
			t.Errorf("backoffFor(%d) = %v, want %v", c2.delivered, got, c2.want)
		}
	}
}

func TestBackoffForEmptyTable(t *testing.T) {
	c := Config{}
	if got := c.backoffFor(3); got != 0 {
		t.Errorf("backoffFor on empty table = %v, want 0", got)
	}
}
