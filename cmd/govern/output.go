package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// render writes v in the selected --output format. The text callback
// owns the human-readable form; json and yaml marshal v as-is.
func render(v any, text func()) error {
	switch flagOutput {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	case "text", "":
		text()
		return nil
	default:
		return fmt.Errorf("invalid --output: %s (use json|yaml|text)", flagOutput)
	}
}

// fail reports an operation error in the selected output format. With
// --output json the error is emitted as a JSON object on stdout and the
// returned error is silenced; otherwise it propagates to Execute, which
// prints it to stderr. The exit code carries the failure class either way.
func fail(err error) error {
	if flagOutput == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(map[string]any{"ok": false, "error": err.Error()})
		return silentErr{err}
	}
	return err
}

func kv(label string, value any) {
	fmt.Printf("  %-18s %v\n", label+":", value)
}

// fmtTime renders unix seconds as UTC, or "-" when unset.
func fmtTime(unix int64) string {
	if unix == 0 {
		return "-"
	}
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04:05")
}

func fmtDur(secs int64) string {
	return (time.Duration(secs) * time.Second).String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
