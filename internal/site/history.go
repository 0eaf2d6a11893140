package site

import (
	"fmt"
	"sort"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/avallon-labs/avallon/internal/pages"
)

// Summarize describes what changed between two page collections in
// human-readable form, suitable for the conversation log. Output order is
// deterministic.
func Summarize(old, new pages.Collection) []string {
	var keys []string
	seen := map[string]bool{}
	for k := range new {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range old {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	dmp := diffmatchpatch.New()

	var out []string
	for _, k := range keys {
		oldHTML, hadOld := old[k]
		newHTML, hasNew := new[k]
		switch {
		case !hadOld && hasNew:
			out = append(out, fmt.Sprintf("added %s", k))
		case hadOld && !hasNew:
			out = append(out, fmt.Sprintf("removed %s", k))
		case oldHTML != newHTML:
			ins, del := diffSize(dmp, oldHTML, newHTML)
			out = append(out, fmt.Sprintf("edited %s (+%d/-%d chars)", k, ins, del))
		}
	}
	return out
}

func diffSize(dmp *diffmatchpatch.DiffMatchPatch, old, new string) (inserted, deleted int) {
	diffs := dmp.DiffMain(old, new, false)
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += len(d.Text)
		}
	}
	return inserted, deleted
}
