package tui

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/aalvaropc/dfkit/internal/domain"
)

var reLine = regexp.MustCompile(`(?i)\bline\s+(\d+)\b`)

// UserMessage turns an error into a short message for people, not logs.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var oe *domain.OpError
	if errors.As(err, &oe) {
		switch oe.Kind {

		case domain.KindNotFound:
			if strings.Contains(oe.Op, "workspacefinder.findroot") {
				return "Workspace not found (run `dfkit init`)"
			}
			if strings.Contains(oe.Op, "dfcli.run") {
				return "DataFed CLI not found; install it (pip install datafed) and run `datafed setup`"
			}
			if errors.Is(err, domain.ErrNoMetadata) {
				return "No metadata JSON file found next to the data file"
			}
			if strings.Contains(oe.Op, "endpoints.resolve") {
				return "Unknown Globus endpoint for this machine; add it under endpoints.hosts in dfkit.yaml"
			}
			if oe.Path != "" {
				return "Not found: " + oe.Path
			}
			return "Not found"

		case domain.KindAuth:
			return "Not authenticated with DataFed; go to a terminal and run `datafed setup`"

		case domain.KindConflict:
			if oe.Path != "" {
				return "A record with alias " + oe.Path + " already exists"
			}
			return "Record already exists"

		case domain.KindRemote:
			if msg := domain.RemoteMessage(err); msg != "" {
				return "DataFed: " + msg
			}
			return "DataFed rejected the command (see logs)"

		case domain.KindTransfer:
			return "Transfer did not succeed (see logs)"

		case domain.KindInvalidArgument:
			return strings.TrimPrefix(innermost(err), "invalid argument: ")

		case domain.KindInvalidConfig:
			base := "config"
			if strings.TrimSpace(oe.Path) != "" {
				base = filepath.Base(oe.Path)
			}

			line := extractLine(err.Error())
			if line != "" {
				return "Invalid YAML at " + base + " line " + line
			}

			if looksLikeYAMLProblem(err.Error()) {
				return "Invalid YAML at " + base
			}
			return "Invalid config in " + base + ": " + innermost(err)

		default:
			return "Unexpected error (see logs)"
		}
	}

	if looksLikeYAMLProblem(err.Error()) {
		line := extractLine(err.Error())
		if line != "" {
			return "Invalid YAML line " + line
		}
		return "Invalid YAML"
	}

	return "Unexpected error (see logs)"
}

// innermost returns the message of the deepest OpError's cause.
func innermost(err error) string {
	var oe *domain.OpError
	for errors.As(err, &oe) && oe.Err != nil {
		err = oe.Err
	}
	return err.Error()
}

func looksLikeYAMLProblem(s string) bool {
	ls := strings.ToLower(s)
	return strings.Contains(ls, "yaml:") || strings.Contains(ls, "did not find expected") || strings.Contains(ls, "cannot unmarshal")
}

func extractLine(s string) string {
	m := reLine.FindStringSubmatch(s)
	if len(m) == 2 {
		return m[1]
	}
	return ""
}
