package watchlist

import (
	"fmt"
	"strings"
)

// WatchedApp identifies an application the daemon should record automatically.
// At least one of BundleID or ProcessName must be set.
type WatchedApp struct {
	Name        string
	BundleID    string
	ProcessName string
}

// NewWatchedApp builds a WatchedApp and rejects entries with no identifying field.
func NewWatchedApp(name, bundleID, processName string) (WatchedApp, error) {
	if bundleID == "" && processName == "" {
		return WatchedApp{}, fmt.Errorf("watched app %q: bundle_id or process_name required", name)
	}
	return WatchedApp{
		Name:        name,
		BundleID:    bundleID,
		ProcessName: processName,
	}, nil
}

// Key returns the identity used to compare watched apps. The bundle id wins
// over the process name when both are configured.
func (w WatchedApp) Key() string {
	if w.BundleID != "" {
		return strings.ToLower(w.BundleID)
	}
	return strings.ToLower(w.ProcessName)
}

// RunningProcess is a live process handle supplied by the process observer.
// Its lifetime is owned by the OS; callers hold it only while the process is
// alive.
type RunningProcess struct {
	PID         int32
	BundleID    string
	DisplayName string
	Executable  string
}

// Match pairs a watched app with the running process that satisfied its rule.
type Match struct {
	App     WatchedApp
	Process RunningProcess
}

// Find returns the first watched app (in configured order) matching the
// process: bundle id first, then display or executable name, all
// case-insensitive. The second return is false when nothing matches.
func Find(proc RunningProcess, apps []WatchedApp) (WatchedApp, bool) {
	for _, app := range apps {
		if app.BundleID != "" && proc.BundleID != "" &&
			strings.EqualFold(app.BundleID, proc.BundleID) {
			return app, true
		}
	}
	for _, app := range apps {
		if app.ProcessName == "" {
			continue
		}
		if strings.EqualFold(app.ProcessName, proc.DisplayName) ||
			strings.EqualFold(app.ProcessName, proc.Executable) {
			return app, true
		}
	}
	return WatchedApp{}, false
}
