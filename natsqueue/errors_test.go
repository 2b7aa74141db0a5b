package natsqueue

import (
	"errors"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("dial refused")
	err := natsErr("connect", cause)

	if !errors.Is(err, cause) {
		t.Error("expected errors.Is to find the wrapped cause")
	}
	if err.Error() == "" {
		t.Error("expected non-empty error message")
	}
}

func TestIsNotSupported(t *testing.T) {
	if !IsNotSupported(ErrNotSupported) {
		t.Error("expected ErrNotSupported to be reported as not supported")
	}
	if IsNotSupported(natsErr("connect", errors.New("boom"))) {
		t.Error("did not expect a nats-kind error to be reported as not supported")
	}
	if IsNotSupported(errors.New("plain error")) {
		t.Error("did not expect a plain error to be reported as not supported")
	}
}
