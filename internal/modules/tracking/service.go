// Package tracking persists per-order audit trails: the exact signal and
// risk-manager request/response payloads, filed by date, login and ticket.
package tracking

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// File names written into every ticket folder.
const (
	fileSignalParams   = "synthetic_params_signal.log"
	fileSignalResponse = "synthetic_response_signal.log"
	fileRiskParams     = "synthetic_params_risk_manager.log"
	fileRiskResponse   = "synthetic_response_risk_manager.log"
)

// SaveRequest is the POST /api/v1/tracking_data payload. The four payload
// blocks are stored verbatim, one file each.
type SaveRequest struct {
	Login                      string          `json:"login"`
	Ticket                     string          `json:"ticket"`
	SyntheticParamsSignal      json.RawMessage `json:"synthetic_params_signal"`
	SyntheticResponseSignal    json.RawMessage `json:"synthetic_response_signal"`
	SyntheticParamsRiskManager json.RawMessage `json:"synthetic_params_risk_manager"`
	SyntheticResponseRiskMgr   json.RawMessage `json:"synthetic_response_risk_manager"`
}

// Validate checks the identifying fields
func (r SaveRequest) Validate() error {
	if r.Login == "" {
		return fmt.Errorf("login is required")
	}
	if r.Ticket == "" {
		return fmt.Errorf("ticket is required")
	}
	return nil
}

// SaveResult reports where the tracking data landed
type SaveResult struct {
	FolderPath              string `json:"folder_path"`
	SignalParamsFile        string `json:"signal_params_file"`
	SignalResponseFile      string `json:"signal_response_file"`
	RiskManagerParamsFile   string `json:"risk_manager_params_file"`
	RiskManagerResponseFile string `json:"risk_manager_response_file"`
}

// Service writes tracking folders under a base directory
type Service struct {
	baseDir string
	log     zerolog.Logger
	now     func() time.Time
}

// NewService creates a new tracking service rooted at baseDir
func NewService(baseDir string, log zerolog.Logger) *Service {
	return &Service{
		baseDir: baseDir,
		log:     log.With().Str("component", "tracking_service").Logger(),
		now:     time.Now,
	}
}

// Save writes the four payload files under
// {base}/{MM-YYYY}/{DD}/ORDERS/LOGINID_{login}/ticket_{ticket}/.
func (s *Service) Save(req SaveRequest) (SaveResult, error) {
	if err := req.Validate(); err != nil {
		return SaveResult{}, err
	}

	now := s.now()
	folder := filepath.Join(
		s.baseDir,
		now.Format("01-2006"),
		now.Format("02"),
		"ORDERS",
		"LOGINID_"+req.Login,
		"ticket_"+req.Ticket,
	)
	if err := os.MkdirAll(folder, 0755); err != nil {
		return SaveResult{}, fmt.Errorf("failed to create tracking folder: %w", err)
	}

	files := []struct {
		name string
		data json.RawMessage
	}{
		{fileSignalParams, req.SyntheticParamsSignal},
		{fileSignalResponse, req.SyntheticResponseSignal},
		{fileRiskParams, req.SyntheticParamsRiskManager},
		{fileRiskResponse, req.SyntheticResponseRiskMgr},
	}

	result := SaveResult{FolderPath: folder}
	result.SignalParamsFile = filepath.Join(folder, fileSignalParams)
	result.SignalResponseFile = filepath.Join(folder, fileSignalResponse)
	result.RiskManagerParamsFile = filepath.Join(folder, fileRiskParams)
	result.RiskManagerResponseFile = filepath.Join(folder, fileRiskResponse)

	for _, f := range files {
		if err := writePayload(filepath.Join(folder, f.name), f.data); err != nil {
			return SaveResult{}, err
		}
	}

	s.log.Info().
		Str("login", req.Login).
		Str("ticket", req.Ticket).
		Str("folder", folder).
		Msg("Tracking data saved")
	return result, nil
}

// writePayload pretty-prints the payload for human inspection; empty
// payloads become an empty JSON object.
func writePayload(path string, data json.RawMessage) error {
	if len(data) == 0 {
		data = json.RawMessage("{}")
	}

	var pretty []byte
	var decoded interface{}
	if err := json.Unmarshal(data, &decoded); err == nil {
		pretty, _ = json.MarshalIndent(decoded, "", "  ")
	} else {
		pretty = data
	}

	if err := os.WriteFile(path, pretty, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Cleanup removes month folders older than the retention window and
// reports how many were dropped.
func (s *Service) Cleanup(retentionMonths int) (int, error) {
	if retentionMonths <= 0 {
		return 0, fmt.Errorf("retention months must be positive")
	}

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read tracking base dir: %w", err)
	}

	cutoff := s.now().AddDate(0, -retentionMonths, 0)
	removed := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		monthStart, err := time.Parse("01-2006", entry.Name())
		if err != nil {
			continue // unrelated directory
		}
		// Keep a month folder until the whole month is past the cutoff.
		if monthStart.AddDate(0, 1, 0).After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(s.baseDir, entry.Name())); err != nil {
			s.log.Error().Err(err).Str("folder", entry.Name()).Msg("Failed to remove expired tracking folder")
			continue
		}
		removed++
		s.log.Info().Str("folder", entry.Name()).Msg("Expired tracking folder removed")
	}
	return removed, nil
}
