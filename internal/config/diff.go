package config

import (
	"encoding/json"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeSummary renders the settings lines that differ between two configs,
// shown in the "settings reloaded" notification. Returns nil when the two
// configs serialize identically.
func ChangeSummary(oldCfg, newCfg *Config) []string {
	oldJSON, err := json.MarshalIndent(oldCfg, "", "  ")
	if err != nil {
		return nil
	}
	newJSON, err := json.MarshalIndent(newCfg, "", "  ")
	if err != nil {
		return nil
	}
	if string(oldJSON) == string(newJSON) {
		return nil
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(string(oldJSON), string(newJSON))
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var changed []string
	for _, d := range diffs {
		if d.Type == diffmatchpatch.DiffEqual {
			continue
		}
		prefix := "+ "
		if d.Type == diffmatchpatch.DiffDelete {
			prefix = "- "
		}
		for _, line := range strings.Split(strings.TrimRight(d.Text, "\n"), "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || trimmed == "{" || trimmed == "}" {
				continue
			}
			changed = append(changed, prefix+trimmed)
		}
	}
	return changed
}
