package natsqueue

import "fmt"

// Priority selects which of the three per-namespace work-queue streams a
// job is published to and the order the fetch loop drains them in.
type Priority int

const (
	// Medium is the default priority when none is given.
	Medium Priority = iota
	High
	Low
)

// String returns the lowercase form used when building stream, subject and
// consumer names (e.g. "{namespace}_high", "{namespace}.high").
func (p Priority) String() string {
	switch p {
	case High:
		return "high"
	case Medium:
		return "medium"
	case Low:
		return "low"
	default:
		return fmt.Sprintf("priority(%d)", int(p))
	}
}

// priorities is the strict fetch order the loop visits every pass: §4.4
// requires High before Medium before Low.
var priorities = [...]Priority{High, Medium, Low}

func streamName(namespace string, p Priority) string {
	return fmt.Sprintf("%s_%s", namespace, p)
}

func subjectName(namespace string, p Priority) string {
	return fmt.Sprintf("%s.%s", namespace, p)
}

func consumerName(namespace string, p Priority) string {
	return fmt.Sprintf("%s_%s_consumer", namespace, p)
}

func dlqStreamName(namespace string) string {
	return namespace + "_dlq"
}

func dlqSubjectName(namespace string) string {
	return namespace + ".dlq"
}
