package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/crease/internal/apperrors"
)

func TestOutputFormatter_JSONSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	data := map[string]string{"result": "success"}
	err := formatter.Success(data)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
	assert.NotNil(t, resp.Data)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	err := formatter.Error("MATCH_CLOSED", "match m1 is complete", nil)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.Equal(t, "MATCH_CLOSED", resp.Error.Code)
	assert.Equal(t, "match m1 is complete", resp.Error.Message)
}

func TestOutputFormatter_JSONErrorWithDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "json",
		Writer: buf,
	}

	details := map[string]string{"bowler": "b1", "overs": "4"}
	err := formatter.Error("BOWLER_OVER_QUOTA", "b1 has bowled 4 overs", details)
	require.NoError(t, err)

	var resp CLIResponse
	err = json.Unmarshal(buf.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "error", resp.Status)
	assert.NotNil(t, resp.Error)
	assert.NotNil(t, resp.Error.Details)
}

func TestOutputFormatter_TextSuccess(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format: "text",
		Writer: buf,
	}

	err := formatter.Success("3 matches replayed")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "3 matches replayed")
}

func TestOutputFormatter_TextError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: false,
	}

	err := formatter.Error("MATCH_CLOSED", "match m1 is complete", nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [MATCH_CLOSED]")
	assert.Contains(t, buf.String(), "match m1 is complete")
}

func TestOutputFormatter_TextErrorVerbose(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{
		Format:  "text",
		Writer:  buf,
		Verbose: true,
	}

	details := map[string]string{"striker": "a1"}
	err := formatter.Error("BATTER_REQUIRED", "no striker selected", details)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Error [BATTER_REQUIRED]")
	assert.Contains(t, buf.String(), "Details:")
}

func TestOutputFormatter_VerboseLog(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		wantLog bool
	}{
		{"verbose_enabled", true, true},
		{"verbose_disabled", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{
				Format:  "text",
				Writer:  buf,
				Verbose: tt.verbose,
			}

			formatter.VerboseLog("Replaying %s", "m1")

			if tt.wantLog {
				assert.Contains(t, buf.String(), "Replaying m1")
			} else {
				assert.Empty(t, buf.String())
			}
		})
	}
}

func TestCLIResponse_JSON(t *testing.T) {
	resp := CLIResponse{
		Status: "ok",
		Data:   map[string]int{"count": 42},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded CLIResponse
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "ok", decoded.Status)
}

func TestCLIError_JSON(t *testing.T) {
	cliErr := CLIError{
		Code:    "REPLAY_DIVERGED",
		Message: "2 fields differ from the delivery log",
		Details: []string{"innings 1: runs"},
	}

	data, err := json.Marshal(cliErr)
	require.NoError(t, err)

	var decoded CLIError
	err = json.Unmarshal(data, &decoded)
	require.NoError(t, err)
	assert.Equal(t, "REPLAY_DIVERGED", decoded.Code)
	assert.Equal(t, "2 fields differ from the delivery log", decoded.Message)
}

func TestOutputFormatter_Emit(t *testing.T) {
	text := func(w io.Writer) error {
		_, err := io.WriteString(w, "17/1 (1.0)\n")
		return err
	}

	t.Run("text", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "text", Writer: buf}
		require.NoError(t, formatter.Emit(map[string]int{"runs": 17}, text))
		assert.Equal(t, "17/1 (1.0)\n", buf.String())
	})

	t.Run("json", func(t *testing.T) {
		buf := &bytes.Buffer{}
		formatter := &OutputFormatter{Format: "json", Writer: buf}
		require.NoError(t, formatter.Emit(map[string]int{"runs": 17}, text))

		var resp struct {
			Status string         `json:"status"`
			Data   map[string]int `json:"data"`
		}
		require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, 17, resp.Data["runs"])
	})
}

func TestOutputFormatter_Fail(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{
			name:     "precondition",
			err:      apperrors.Precondition(apperrors.CodeMatchClosed, "match m1 is complete"),
			wantCode: ExitFailure,
			wantOut:  "Error [MATCH_CLOSED]: match m1 is complete",
		},
		{
			name:     "invariant",
			err:      apperrors.Invariant(apperrors.CodeNothingToUndo, "no deliveries"),
			wantCode: ExitFailure,
			wantOut:  "Error [NOTHING_TO_UNDO]: no deliveries",
		},
		{
			name:     "persistence",
			err:      apperrors.Persistence("commit", errors.New("disk full")),
			wantCode: ExitCommandError,
			wantOut:  "Error [PERSISTENCE_FAILED]",
		},
		{
			name:     "uncoded",
			err:      errors.New("boom"),
			wantCode: ExitCommandError,
			wantOut:  "Error [COMMAND_ERROR]: undo rejected: boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf}

			err := formatter.Fail("undo rejected", tt.err)
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, GetExitCode(err))
			assert.True(t, reported(err))
			assert.ErrorIs(t, err, tt.err)
			assert.Contains(t, buf.String(), tt.wantOut)
		})
	}
}

func TestOutputFormatter_FailJSONDetails(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	cause := apperrors.Precondition(apperrors.CodeBowlerOverQuota, "b1 has bowled 1 over").With("bowler", "b1")
	_ = formatter.Fail("delivery rejected", cause)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string            `json:"code"`
			Details map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, "BOWLER_OVER_QUOTA", resp.Error.Code)
	assert.Equal(t, "b1", resp.Error.Details["bowler"])
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad flag")))

	wrapped := WrapExitError(ExitFailure, "replay", errors.New("diverged"))
	assert.Equal(t, "replay: diverged", wrapped.Error())
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
}
