package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/goalie-roster-api/internal/models"
	"github.com/noah-isme/goalie-roster-api/internal/service"
	appErrors "github.com/noah-isme/goalie-roster-api/pkg/errors"
)

type stubRunner struct {
	req     service.ImportRequest
	summary *models.ImportSummary
	err     error
}

func (s *stubRunner) Import(_ context.Context, req service.ImportRequest) (*models.ImportSummary, error) {
	s.req = req
	return s.summary, s.err
}

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, runner *stubRunner, args ...string) (runResult, error) {
	t.Helper()
	var out bytes.Buffer
	deps := runDeps{
		openImporter: func(context.Context) (importRunner, func(), error) { return runner, func() {}, nil },
		stdout:       &out,
	}
	cmd := newRootCmd(deps)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())

	var result runResult
	if out.Len() > 0 {
		require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	}
	return result, err
}

func TestRunImportsFile(t *testing.T) {
	runner := &stubRunner{summary: &models.ImportSummary{RowsParsed: 1, AthletesCreated: 1}}
	path := writeCSV(t, "Email\njane@example.com\n")

	result, err := execute(t, runner, "run", "--file", path, "--target", " GC-8001 ", "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, "GC-8001", runner.req.TargetAthleteID)
	assert.True(t, runner.req.DryRun)
	assert.False(t, runner.req.KeepHistory)
	assert.Equal(t, "cli", runner.req.RequestedBy)
	assert.Equal(t, "Email\njane@example.com\n", runner.req.Content)
	require.NotNil(t, result.Summary)
	assert.Equal(t, 1, result.Summary.AthletesCreated)
}

func TestRunKeepHistoryFlag(t *testing.T) {
	runner := &stubRunner{summary: &models.ImportSummary{RowsParsed: 1, SessionsSkipped: true}}
	path := writeCSV(t, "Email,Name\njane@example.com,Jane Doe\n")

	_, err := execute(t, runner, "run", "--file", path, "--keep-history")
	require.NoError(t, err)

	assert.True(t, runner.req.KeepHistory)
	assert.False(t, runner.req.DryRun)
}

func TestRunExitCodes(t *testing.T) {
	path := writeCSV(t, "Email\n")
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"structural", appErrors.New("NO_VALID_ROWS", http.StatusUnprocessableEntity, "no valid rows"), exitValidation},
		{"store", appErrors.Wrap(errors.New("db down"), appErrors.ErrRosterUpsertFailed.Code, appErrors.ErrRosterUpsertFailed.Status, appErrors.ErrRosterUpsertFailed.Message), exitDB},
		{"partial", appErrors.Clone(appErrors.ErrSessionRebuildPartial, ""), exitPartial},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := execute(t, &stubRunner{err: tc.err}, "run", "--file", path)
			require.Error(t, err)
			assert.Equal(t, tc.code, exitCode(err))
			assert.Equal(t, appErrors.FromError(tc.err).Code, result.Code)
		})
	}
}

func TestRunUsageErrors(t *testing.T) {
	_, err := execute(t, &stubRunner{}, "run", "--file", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, &stubRunner{}, "run", "--file", writeCSV(t, "Email\n"), "--target", "8001")
	assert.Equal(t, exitUsage, exitCode(err))

	_, err = execute(t, &stubRunner{}, "run")
	assert.Equal(t, exitFailure, exitCode(err))
}
