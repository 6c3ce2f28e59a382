package preflight

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Targets names the resolved locations a command will touch. Empty fields are
// not checked.
type Targets struct {
	StateDir      string
	LogDir        string
	SourceRoot    string
	ThumbnailRoot string
	Document      string
}

// RunAll executes every applicable preflight check.
func RunAll(t Targets) []Result {
	var results []Result

	if t.StateDir != "" {
		results = append(results, CheckDirectoryAccess("State directory", t.StateDir))
	}
	if t.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", t.LogDir))
	}
	if t.SourceRoot != "" {
		results = append(results, CheckReadableDirectory("Source root", t.SourceRoot))
	} else {
		results = append(results, Result{Name: "Source root", Detail: "not configured (use --root or 'spritedeck root <dir>')"})
	}
	if t.ThumbnailRoot != "" {
		results = append(results, CheckCreatableDirectory("Thumbnail root", t.ThumbnailRoot))
	}
	if t.Document != "" {
		results = append(results, CheckDocument("Catalog document", t.Document))
	}
	return results
}

// Failed reports whether any result did not pass.
func Failed(results []Result) bool {
	for _, r := range results {
		if !r.Passed {
			return true
		}
	}
	return false
}
