package sheet

import (
	"encoding/json"
	"strings"
)

// Row is one spreadsheet record. The script returns flat objects whose
// values may be strings, numbers or booleans depending on how the cell was
// last written, so no shape is assumed here.
type Row map[string]any

type envelope struct {
	Success *bool           `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// ParseResponse normalizes a raw script response body into rows.
//
// The script is ambiguous about its response shape: reads return
// {"data":[...]} or a bare array, writes return {"success":...,"data":...,
// "error":...}, and a misdeployed script returns an HTML login or redirect
// page. Precedence order: HTML detection, JSON parse, declared error,
// accepted shapes.
func ParseResponse(body []byte) ([]Row, error) {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return nil, newError(KindFormat, "empty response")
	}

	if strings.HasPrefix(trimmed, "<") ||
		strings.Contains(trimmed, "<!DOCTYPE") ||
		strings.Contains(trimmed, "<HTML>") {
		return nil, newError(KindConfig, "script returned HTML instead of JSON; check the web app deployment")
	}

	// Bare array shape.
	if strings.HasPrefix(trimmed, "[") {
		var rows []Row
		if err := json.Unmarshal(body, &rows); err != nil {
			return nil, wrapError(KindFormat, "invalid JSON array", err)
		}
		return rows, nil
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, wrapError(KindFormat, "invalid JSON response", err)
	}

	if env.Error != "" {
		return nil, newError(KindApp, env.Error)
	}
	if env.Success != nil && !*env.Success {
		return nil, newError(KindApp, "script reported failure")
	}

	if len(env.Data) == 0 {
		if env.Success != nil && *env.Success {
			// Successful write with no payload.
			return nil, nil
		}
		return nil, newError(KindFormat, "response has neither data nor success field")
	}

	rows, err := decodeData(env.Data)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// decodeData accepts data as an array of rows, a single row object, or a
// nested {"data":[...]} wrapper (the script double-wraps on some paths).
func decodeData(raw json.RawMessage) ([]Row, error) {
	trimmed := strings.TrimSpace(string(raw))
	switch {
	case strings.HasPrefix(trimmed, "["):
		var rows []Row
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, wrapError(KindFormat, "invalid data array", err)
		}
		return rows, nil
	case strings.HasPrefix(trimmed, "{"):
		var inner envelope
		if err := json.Unmarshal(raw, &inner); err == nil && len(inner.Data) > 0 {
			return decodeData(inner.Data)
		}
		var row Row
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, wrapError(KindFormat, "invalid data object", err)
		}
		return []Row{row}, nil
	default:
		return nil, newError(KindFormat, "data field is not an object or array")
	}
}
