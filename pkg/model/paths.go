package model

import (
	"fmt"
	"strings"
)

// GetArchivePathToSnapshot yields the location of a snapshot descriptor in a store
func GetArchivePathToSnapshot(id string) string {
	return fmt.Sprint("snapshots/", id, "/snapshot.yaml")
}

// GetArchivePathPrefixToSnapshots yields the prefix below which all snapshots are archived
func GetArchivePathPrefixToSnapshots() string {
	return "snapshots/"
}

// GetArchivePathToSizeReport yields the location of a size report in a store
func GetArchivePathToSizeReport(fingerprint string) string {
	return fmt.Sprint("reports/", fingerprint, "/report.yaml")
}

// GetArchivePathPrefixToSizeReports yields the prefix below which all size reports are archived
func GetArchivePathPrefixToSizeReports() string {
	return "reports/"
}

// ArchivePathComponents holds the parsed out elements of an archive path
type ArchivePathComponents struct {
	SnapshotID  string
	Fingerprint string
	_           struct{}
}

// GetArchivePathComponents parses an archive path into its components.
//
// Paths not produced by one of the GetArchivePathTo* helpers are an error.
func GetArchivePathComponents(path string) (ArchivePathComponents, error) {
	cs := strings.SplitN(path, "/", 3)
	if len(cs) != 3 {
		return ArchivePathComponents{}, fmt.Errorf("expected at least 3 path components in %q", path)
	}
	switch cs[0] {
	case "snapshots":
		if cs[2] != "snapshot.yaml" {
			return ArchivePathComponents{}, fmt.Errorf("expected snapshot.yaml as the last path component in %q", path)
		}
		return ArchivePathComponents{SnapshotID: cs[1]}, nil
	case "reports":
		if cs[2] != "report.yaml" {
			return ArchivePathComponents{}, fmt.Errorf("expected report.yaml as the last path component in %q", path)
		}
		return ArchivePathComponents{Fingerprint: cs[1]}, nil
	default:
		return ArchivePathComponents{}, fmt.Errorf("unknown archive class %q in %q", cs[0], path)
	}
}
