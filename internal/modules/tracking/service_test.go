package tracking

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantfx/fx-risk-api/pkg/logger"
)

func testService(t *testing.T) *Service {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Pretty: false})
	return NewService(t.TempDir(), log)
}

func TestService_Save(t *testing.T) {
	svc := testService(t)
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	result, err := svc.Save(SaveRequest{
		Login:                      "5012345",
		Ticket:                     "98761234",
		SyntheticParamsSignal:      json.RawMessage(`{"symbol":"EURUSD","timeframe":"H4"}`),
		SyntheticResponseSignal:    json.RawMessage(`{"signal":"BUY"}`),
		SyntheticParamsRiskManager: json.RawMessage(`{"balance":1000}`),
		SyntheticResponseRiskMgr:   json.RawMessage(`{"status":"CONTINUE"}`),
	})
	require.NoError(t, err)

	wantFolder := filepath.Join(svc.baseDir, "08-2026", "31", "ORDERS", "LOGINID_5012345", "ticket_98761234")
	assert.Equal(t, wantFolder, result.FolderPath)

	for _, name := range []string{
		"synthetic_params_signal.log",
		"synthetic_response_signal.log",
		"synthetic_params_risk_manager.log",
		"synthetic_response_risk_manager.log",
	} {
		data, err := os.ReadFile(filepath.Join(wantFolder, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}

	signalParams, err := os.ReadFile(result.SignalParamsFile)
	require.NoError(t, err)
	assert.Contains(t, string(signalParams), `"symbol": "EURUSD"`)
}

func TestService_SaveEmptyPayloadBecomesEmptyObject(t *testing.T) {
	svc := testService(t)

	result, err := svc.Save(SaveRequest{Login: "1", Ticket: "2"})
	require.NoError(t, err)

	data, err := os.ReadFile(result.SignalParamsFile)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestService_SaveValidation(t *testing.T) {
	svc := testService(t)

	_, err := svc.Save(SaveRequest{Ticket: "2"})
	assert.Error(t, err, "missing login must be rejected")

	_, err = svc.Save(SaveRequest{Login: "1"})
	assert.Error(t, err, "missing ticket must be rejected")
}

func TestService_SaveIsIdempotentPerTicket(t *testing.T) {
	svc := testService(t)

	req := SaveRequest{
		Login:                   "7",
		Ticket:                  "42",
		SyntheticResponseSignal: json.RawMessage(`{"signal":"SELL"}`),
	}
	first, err := svc.Save(req)
	require.NoError(t, err)

	req.SyntheticResponseSignal = json.RawMessage(`{"signal":"BUY"}`)
	second, err := svc.Save(req)
	require.NoError(t, err)
	assert.Equal(t, first.FolderPath, second.FolderPath)

	data, err := os.ReadFile(second.SignalResponseFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "BUY", "later saves overwrite the files")
}

func TestService_Cleanup(t *testing.T) {
	svc := testService(t)
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }

	for _, month := range []string{"01-2026", "04-2026", "07-2026", "08-2026"} {
		require.NoError(t, os.MkdirAll(filepath.Join(svc.baseDir, month, "01", "ORDERS"), 0755))
	}
	// Unrelated directories survive any cleanup.
	require.NoError(t, os.MkdirAll(filepath.Join(svc.baseDir, "archive"), 0755))

	removed, err := svc.Cleanup(3)
	require.NoError(t, err)
	assert.Equal(t, 2, removed, "01-2026 and 04-2026 are past the 3-month window")

	for month, want := range map[string]bool{
		"01-2026": false,
		"04-2026": false,
		"07-2026": true,
		"08-2026": true,
		"archive": true,
	} {
		_, err := os.Stat(filepath.Join(svc.baseDir, month))
		if want {
			assert.NoError(t, err, month)
		} else {
			assert.True(t, os.IsNotExist(err), month)
		}
	}
}

func TestService_CleanupMissingBaseDir(t *testing.T) {
	log := logger.New(logger.Config{Level: "error", Pretty: false})
	svc := NewService(filepath.Join(t.TempDir(), "never-created"), log)

	removed, err := svc.Cleanup(3)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestService_CleanupRejectsNonPositiveRetention(t *testing.T) {
	svc := testService(t)
	_, err := svc.Cleanup(0)
	assert.Error(t, err)
}
