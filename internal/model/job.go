package model

import "strings"

// JobParams are the values collected for a processing job. They are turned
// into the script argument string.
type JobParams struct {
	DataDir   string
	VideoDir  string
	ExportDir string
	// Extra are additional raw tokens appended after the known flags.
	Extra []string
}

// Args returns the space-joined argument string. Empty values are skipped.
// Values are not escaped.
func (j JobParams) Args() string {
	var tokens []string
	add := func(flag, value string) {
		if value == "" {
			return
		}
		tokens = append(tokens, flag, value)
	}

	add("--data_dir", j.DataDir)
	add("--video_dir", j.VideoDir)
	add("--export_dir", j.ExportDir)
	tokens = append(tokens, j.Extra...)

	return strings.Join(tokens, " ")
}
