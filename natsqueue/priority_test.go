package natsqueue

import "testing"

func TestPriorityString(t *testing.T) {
	cases := []struct {
		p    Priority
		want string
	}{
		{High, "high"},
		{Medium, "medium"},
		{Low, "low"},
	}

	for _, c := range cases {
		if got := c.p.String(); got != c.want {
			t.Errorf("Priority(%d).String() = %q, want %q", c.p, got, c.want)
		}
	}
}

func TestPriorityZeroValueIsMedium(t *testing.T) {
	var p Priority
	if p != Medium {
		t.Errorf("zero value Priority = %v, want Medium", p)
	}
}

func TestPrioritiesOrderedHighMediumLow(t *testing.T) {
	want := []Priority{High, Medium, Low}
	if len(priorities) != len(want) {
		t.Fatalf("priorities has %d entries, want %d", len(priorities), len(want))
	}
	for i, p := range want {
		if priorities[i] != p {
			t.Errorf("priorities[%d] = %v, want %v", i, priorities[i], p)
		}
	}
}

func TestStreamSubjectConsumerNaming(t *testing.T) {
	if got, want := streamName("apalis", High), "apalis_high"; got != want {
		t.Errorf("streamName = %q, want %q", got, want)
	}
	if got, want := subjectName("apalis", Low), "apalis.low"; got != want {
		t.Errorf("subjectName = %q, want %q", got, want)
	}
	if got, want := consumerName("apalis", Medium), "apalis_medium_consumer"; got != want {
		t.Errorf("consumerName = %q, want %q", got, want)
	}
	if got, want := dlqStreamName("apalis"), "apalis_dlq"; got != want {
		t.Errorf("dlqStreamName = %q, want %q", got, want)
	}
	if got, want := dlqSubjectName("apalis"), "apalis.dlq"; got != want {
		t.Errorf("dlqSubjectName = %q, want %q", got, want)
	}
}
