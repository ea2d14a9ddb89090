package command

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/sawyersrpg/savecore/internal/core/domain"
	"github.com/sawyersrpg/savecore/pkg/canonical"
	"github.com/sawyersrpg/savecore/pkg/checksum"
)

func init() {
	// Keep failing commands from terminating the test binary
	cli.OsExiter = func(int) {}
}

// runApp runs the CLI against a sqlite store in dir and captures stdout.
func runApp(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()

	app := App()
	var buf bytes.Buffer
	app.Writer = &buf
	app.ErrWriter = &bytes.Buffer{}
	app.Reader = strings.NewReader("")

	full := []string{"savecore", "--backend", "sqlite", "--data-dir", dir}
	full = append(full, args...)

	err := app.Run(full)
	return buf.String(), err
}

// sampleRecord builds a well-formed save record for tests.
func sampleRecord(t *testing.T, name string, timestamp int64) *domain.SaveRecord {
	t.Helper()

	state := domain.NewGameState()
	state.Player.Name = "Sawyer"
	state.Player.Level = 7
	state.Player.Gold = 340
	state.Timestamp = timestamp
	state.TotalPlayTime = 3_600_000

	doc, err := state.ToDocument()
	if err != nil {
		t.Fatalf("ToDocument() error = %v", err)
	}

	payload, err := canonical.Marshal(doc)
	if err != nil {
		t.Fatalf("canonical.Marshal() error = %v", err)
	}
	sum, err := checksum.Generate(doc)
	if err != nil {
		t.Fatalf("checksum.Generate() error = %v", err)
	}

	return &domain.SaveRecord{
		Payload:  payload,
		Checksum: sum,
		Metadata: domain.RecordMetadata{
			Timestamp:        timestamp,
			TotalPlayTime:    state.TotalPlayTime,
			EquipmentVersion: domain.CurrentEquipmentVersion,
			Name:             name,
		},
	}
}

// writeRecordFile writes a save record to a JSON file and returns its path.
func writeRecordFile(t *testing.T, record *domain.SaveRecord) string {
	t.Helper()

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		t.Fatalf("marshal record: %v", err)
	}

	path := filepath.Join(t.TempDir(), "save.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write record file: %v", err)
	}
	return path
}

// cloudServer is a scriptable stand-in for the cloud save service.
type cloudServer struct {
	*httptest.Server

	mu      chan struct{}
	records map[string]json.RawMessage
}

func newCloudServer(t *testing.T) *cloudServer {
	t.Helper()

	s := &cloudServer{
		mu:      make(chan struct{}, 1),
		records: make(map[string]json.RawMessage),
	}
	s.mu <- struct{}{}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/slots/", func(w http.ResponseWriter, r *http.Request) {
		<-s.mu
		defer func() { s.mu <- struct{}{} }()

		key := strings.TrimPrefix(r.URL.Path, "/v1/slots/")

		if slotKey, ok := strings.CutSuffix(key, "/metadata"); ok && r.Method == http.MethodGet {
			record, ok := s.records[slotKey]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": "slot/not-found"},
				})
				return
			}
			var decoded struct {
				Metadata json.RawMessage `json:"metadata"`
			}
			if err := json.Unmarshal(record, &decoded); err != nil {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write(decoded.Metadata)
			return
		}

		switch r.Method {
		case http.MethodPut:
			var record json.RawMessage
			if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			s.records[key] = record
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"metadata": map[string]any{}})
		case http.MethodGet:
			record, ok := s.records[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]any{"code": "slot/not-found"},
				})
				return
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]any{"record": record})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}
