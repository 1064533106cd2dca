package domain

import (
	"bytes"
	"encoding/json"
	"os"
)

// ReadSuiteFile loads a canonical test_cases.json produced by extraction.
func ReadSuiteFile(path string) (*TestSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError("run", path, 0, "failed to read suite file", err)
	}
	var suite TestSuite
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, NewError("run", path, 0, "failed to parse suite file", err)
	}
	return &suite, nil
}

// WriteSuiteFile writes the canonical intermediate format consumed by the
// orchestrator. Output is deterministic for the same suite.
func WriteSuiteFile(path string, suite *TestSuite) error {
	data, err := marshalIndent(suite)
	if err != nil {
		return NewError("extract", path, 0, "failed to encode suite", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return NewError("extract", path, 0, "failed to write suite file", err)
	}
	return nil
}

// ReadRecordFile loads a results.json produced by the orchestrator.
func ReadRecordFile(path string) (*ExecutionRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewError("report", path, 0, "failed to read results file", err)
	}
	var record ExecutionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, NewError("report", path, 0, "failed to parse results file", err)
	}
	return &record, nil
}

// WriteRecordFile writes the execution result format consumed by renderers.
func WriteRecordFile(path string, record *ExecutionRecord) error {
	data, err := marshalIndent(record)
	if err != nil {
		return NewError("run", path, 0, "failed to encode execution record", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return NewError("run", path, 0, "failed to write results file", err)
	}
	return nil
}

// marshalIndent keeps non-ASCII text (Chinese step targets) readable instead
// of \uXXXX-escaping it.
func marshalIndent(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
