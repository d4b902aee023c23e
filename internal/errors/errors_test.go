package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestCoreError_Error(t *testing.T) {
	err := New(ErrCategoryStorage, CodeInsertFailed, "insert failed")
	expected := "[STORAGE:INSERT_FAILED] insert failed"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestCoreError_ErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("database is locked")
	err := Wrap(ErrCategoryStorage, CodeInsertFailed, "insert failed", cause)
	expected := "[STORAGE:INSERT_FAILED] insert failed: database is locked"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
}

func TestCoreError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("root cause")
	err := Wrap(ErrCategoryCollection, CodeSweepFailed, "sweep failed", cause)
	if !errors.Is(err, cause) {
		t.Error("Unwrap should allow errors.Is to find the cause")
	}
}

func TestCoreError_Is(t *testing.T) {
	err1 := New(ErrCategoryDelivery, CodeSendFailed, "first")
	err2 := New(ErrCategoryDelivery, CodeSendFailed, "second")
	err3 := New(ErrCategoryDelivery, CodeBridgeRejected, "different code")

	if !errors.Is(err1, err2) {
		t.Error("errors with same category+code should match via Is")
	}
	if errors.Is(err1, err3) {
		t.Error("errors with different codes should not match via Is")
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		category  ErrorCategory
		code      string
		retryable bool
	}{
		{ErrCategoryCollection, CodeSweepFailed, true},
		{ErrCategoryCollection, CodeBridgeTimeout, true},
		{ErrCategorySynthesis, CodeReasoningFailed, true},
		{ErrCategorySynthesis, CodeEmptyResponse, false},
		{ErrCategoryDelivery, CodeSendFailed, true},
		{ErrCategoryDelivery, CodeBridgeRejected, false},
		{ErrCategoryMemory, CodeMalformedDirective, false},
		{ErrCategoryStorage, CodeOpenFailed, false},
		{ErrCategoryInternal, CodeUnexpected, false},
	}

	for _, tt := range tests {
		err := New(tt.category, tt.code, "test")
		if IsRetryable(err) != tt.retryable {
			t.Errorf("%s:%s retryable=%v, want %v", tt.category, tt.code, IsRetryable(err), tt.retryable)
		}
	}
}

func TestGetCategory(t *testing.T) {
	err := New(ErrCategorySynthesis, CodeReasoningFailed, "timeout")
	if GetCategory(err) != ErrCategorySynthesis {
		t.Errorf("got %q, want %q", GetCategory(err), ErrCategorySynthesis)
	}
	if GetCategory(fmt.Errorf("plain error")) != "" {
		t.Error("non-CoreError should return empty category")
	}
}

func TestGetCode(t *testing.T) {
	err := New(ErrCategoryMemory, CodeMalformedDirective, "missing ACTION line")
	if GetCode(err) != CodeMalformedDirective {
		t.Errorf("got %q, want %q", GetCode(err), CodeMalformedDirective)
	}
	if GetCode(fmt.Errorf("plain error")) != "" {
		t.Error("non-CoreError should return empty code")
	}
}

func TestWrappedChain(t *testing.T) {
	inner := New(ErrCategoryStorage, CodeQueryFailed, "query failed")
	outer := fmt.Errorf("synthesis aborted: %w", inner)

	if GetCategory(outer) != ErrCategoryStorage {
		t.Error("category should be extracted through wrapped chains")
	}
	if GetCode(outer) != CodeQueryFailed {
		t.Error("code should be extracted through wrapped chains")
	}
}
