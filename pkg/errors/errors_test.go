package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
		user string
	}{
		{
			name: "plain",
			err:  New(ErrCodeMissingNode, "edge %d->%d", 1, 7),
			want: "MISSING_NODE: edge 1->7",
			user: "edge 1->7",
		},
		{
			name: "wrapped",
			err:  Wrap(ErrCodeSolverFailure, errors.New("node limit"), "lane %s", "Sales"),
			want: "SOLVER_FAILURE: lane Sales: node limit",
			user: "lane Sales",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
			if got := UserMessage(tt.err); got != tt.user {
				t.Errorf("UserMessage() = %q, want %q", got, tt.user)
			}
		})
	}

	if got := UserMessage(errors.New("boom")); got != "boom" {
		t.Errorf("UserMessage(plain) = %q, want %q", got, "boom")
	}
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("write: %w", Wrap(ErrCodeInternal, cause, "cache"))

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if got := GetCode(err); got != ErrCodeInternal {
		t.Errorf("GetCode() = %q, want %q", got, ErrCodeInternal)
	}
}

func TestIs(t *testing.T) {
	inner := New(ErrCodeInvalidInput, "inner")
	outer := Wrap(ErrCodeTimeout, inner, "outer")

	tests := []struct {
		name  string
		err   error
		codes []Code
		want  bool
	}{
		{"match", inner, []Code{ErrCodeInvalidInput}, true},
		{"any of several", inner, []Code{ErrCodeMissingNode, ErrCodeInvalidInput}, true},
		{"mismatch", inner, []Code{ErrCodeMissingNode}, false},
		{"outermost wins", outer, []Code{ErrCodeInvalidInput}, false},
		{"outer code", outer, []Code{ErrCodeTimeout}, true},
		{"no codes", inner, nil, false},
		{"plain error", errors.New("x"), []Code{ErrCodeInternal}, false},
		{"nil", nil, []Code{ErrCodeInternal}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.codes...); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidFormat, "x"), http.StatusBadRequest},
		{New(ErrCodeDuplicateNode, "x"), http.StatusBadRequest},
		{New(ErrCodeInfeasibleLayers, "x"), http.StatusUnprocessableEntity},
		{New(ErrCodeFileNotFound, "x"), http.StatusNotFound},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{New(ErrCodeSolverFailure, "x"), http.StatusInternalServerError},
		{errors.New("x"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestValidateFormat(t *testing.T) {
	allowed := []string{"json", "bpmn"}
	for format, wantErr := range map[string]bool{"bpmn": false, "json": false, "": true, "png": true, "BPMN": true} {
		err := ValidateFormat(format, allowed)
		if (err != nil) != wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", format, err, wantErr)
		}
		if err != nil && !Is(err, ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %q, want %q", format, GetCode(err), ErrCodeInvalidFormat)
		}
	}
}

func TestValidateGraphFile(t *testing.T) {
	tests := []struct {
		path string
		want Code
	}{
		{"order.yaml", ""},
		{"dir/order.YML", ""},
		{"claims.json", ""},
		{"", ErrCodeInvalidInput},
		{"order.txt", ErrCodeInvalidFormat},
		{"order", ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		if got := GetCode(ValidateGraphFile(tt.path)); got != tt.want {
			t.Errorf("ValidateGraphFile(%q) code = %q, want %q", tt.path, got, tt.want)
		}
	}
}
