package model

import (
	"encoding/json"
	"strings"

	"github.com/google/uuid"
)

// planNamespace scopes plan codes so they never collide with other
// name-based UUIDs derived from the same bytes.
var planNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/piwi3910/cutplan/plan"))

// PlanCode returns a short identifier derived from the configuration.
// Identical configurations always get the same code.
func PlanCode(cfg PackConfig) string {
	data, _ := json.Marshal(cfg)
	return shortCode(data)
}

// JobCode returns the code of a multi-material job. A single configuration
// gets the same code as PlanCode.
func JobCode(cfgs ...PackConfig) string {
	if len(cfgs) == 1 {
		return PlanCode(cfgs[0])
	}
	data, _ := json.Marshal(cfgs)
	return shortCode(data)
}

func shortCode(data []byte) string {
	id := uuid.NewSHA1(planNamespace, data)
	return strings.ToUpper(id.String()[:8])
}
