package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestTBErrorFormat(t *testing.T) {
	tests := []struct {
		name    string
		err     *TBError
		wantErr string
	}{
		{
			name:    "what only",
			err:     &TBError{What: "something broke"},
			wantErr: "something broke",
		},
		{
			name:    "what and why",
			err:     &TBError{What: "something broke", Why: "bad input"},
			wantErr: "something broke: bad input",
		},
		{
			name: "with cause",
			err: &TBError{
				What:  "something broke",
				Cause: errors.New("underlying error"),
			},
			wantErr: "something broke: underlying error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.wantErr {
				t.Errorf("Error() = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		err  *TBError
		want int
	}{
		{ErrScheduleNotFound("2024-06-01"), 404},
		{ErrBlockNotFound("2024-06-01", 3), 404},
		{ErrStorage("save schedule", errors.New("disk full")), 500},
		{ErrOracleUnavailable(errors.New("connection refused")), 503},
		{ErrInvalidRequest("missing year"), 400},
		{ErrConfigInvalid("storage.dialect", "unknown dialect"), 400},
		{&TBError{Code: Code("SOMETHING_ELSE"), What: "x"}, 500},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			if got := tt.err.HTTPStatus(); got != tt.want {
				t.Errorf("HTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestAsTBError(t *testing.T) {
	orig := ErrBlockNotFound("2024-06-01", 7)
	wrapped := fmt.Errorf("complete block: %w", orig)

	got := AsTBError(wrapped)
	if got == nil {
		t.Fatal("AsTBError returned nil for wrapped TBError")
	}
	if got.Code != CodeBlockNotFound {
		t.Errorf("Code = %s, want %s", got.Code, CodeBlockNotFound)
	}

	if AsTBError(errors.New("plain")) != nil {
		t.Error("AsTBError should return nil for non-TBError")
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := ErrScheduleNotFound("2024-06-01").WithCause(errors.New("no row"))
	if !errors.Is(err, ErrScheduleNotFound("2024-07-15")) {
		t.Error("errors.Is should match TBErrors by code")
	}
	if errors.Is(err, ErrStorage("x", nil)) {
		t.Error("errors.Is should not match different codes")
	}
}

func TestMarshalJSONOmitsCause(t *testing.T) {
	err := ErrStorage("save schedule", errors.New("secret driver detail"))
	data, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatalf("marshal: %v", jerr)
	}
	if strings.Contains(string(data), "secret driver detail") {
		t.Errorf("serialized error leaks cause: %s", data)
	}
	if !strings.Contains(string(data), string(CodeStorageFailure)) {
		t.Errorf("serialized error missing code: %s", data)
	}
}
