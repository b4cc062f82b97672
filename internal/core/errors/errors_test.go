package errors

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := New(CodeParseError, "bad stylesheet")
	if !strings.Contains(err.Error(), "PARSE_ERROR") {
		t.Errorf("expected code in message, got %q", err.Error())
	}

	wrapped := Wrap(errors.New("unexpected token"), CodeParseError, "bad stylesheet")
	if !strings.Contains(wrapped.Error(), "unexpected token") {
		t.Errorf("expected cause in message, got %q", wrapped.Error())
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeNotFound, "no such document")
	if !IsCode(err, CodeNotFound) {
		t.Error("expected CodeNotFound")
	}
	if IsCode(err, CodeIOError) {
		t.Error("did not expect CodeIOError")
	}
	if IsCode(errors.New("plain"), CodeNotFound) {
		t.Error("plain errors carry no code")
	}
}

func TestAddContext(t *testing.T) {
	err := New(CodeIOError, "read failed")
	err = AddContext(err, CtxPath, "/tmp/a.scss")
	if !strings.Contains(err.Error(), "/tmp/a.scss") {
		t.Errorf("expected context in message, got %q", err.Error())
	}

	plain := AddContext(errors.New("boom"), CtxOperation, "scan")
	var de *DomainError
	if !errors.As(plain, &de) {
		t.Fatal("expected DomainError wrapper")
	}
	if de.Context[CtxOperation] != "scan" {
		t.Errorf("expected operation context, got %v", de.Context)
	}
}
