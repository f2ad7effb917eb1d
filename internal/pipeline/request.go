// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Mihir205/Challenge-1b/pkg/types"
)

// ParseRequest decodes a persona request file. Request files come from
// several generations of tooling, so both spellings of the job field
// are recognized: "job" (plain string) and "job_to_be_done" (string or
// object with a "task" key). "persona" may be a string or an object
// with a "role" key. An absent job is the empty string.
func ParseRequest(data []byte) (types.Request, error) {
	var raw struct {
		Persona     json.RawMessage `json:"persona"`
		Job         json.RawMessage `json:"job"`
		JobToBeDone json.RawMessage `json:"job_to_be_done"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return types.Request{}, fmt.Errorf("parsing request: %w", err)
	}

	req := types.Request{
		Persona: stringOrField(raw.Persona, "role"),
	}
	switch {
	case raw.Job != nil:
		req.Job = stringOrField(raw.Job, "")
	case raw.JobToBeDone != nil:
		req.Job = stringOrField(raw.JobToBeDone, "task")
	}
	return req, nil
}

// stringOrField extracts a plain string, or the named string field of
// an object. Anything else degrades to the raw JSON text rather than
// failing the whole request.
func stringOrField(raw json.RawMessage, field string) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if field != "" {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err == nil {
			if v, ok := obj[field]; ok {
				if err := json.Unmarshal(v, &s); err == nil {
					return s
				}
			}
		}
	}
	return strings.TrimSpace(string(raw))
}
