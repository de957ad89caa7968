package token

import (
	"regexp"
	"sort"
	"strings"
)

var (
	startMarkerRe = regexp.MustCompile(`<!-- START: (block_\S*?_instance_\S*?) -->`)
	endMarkerRe   = regexp.MustCompile(`<!-- END: (block_\S*?_instance_\S*?) -->`)
)

// StartMarker returns the comment that opens an instance region.
func StartMarker(instanceID string) string {
	return "<!-- START: " + instanceID + " -->"
}

// EndMarker returns the comment that closes an instance region.
func EndMarker(instanceID string) string {
	return "<!-- END: " + instanceID + " -->"
}

// Wrap surrounds body with the instance markers, each on its own line.
func Wrap(instanceID, body string) string {
	return StartMarker(instanceID) + "\n" + body + "\n" + EndMarker(instanceID)
}

// InstanceSpan is a marked instance region. End is the offset just past the end marker.
type InstanceSpan struct {
	ID    string
	Start int
	End   int
}

// Instances returns every instance region whose start marker is followed by
// a matching end marker, in text order.
func Instances(text string) []InstanceSpan {
	var spans []InstanceSpan
	for _, loc := range startMarkerRe.FindAllStringSubmatchIndex(text, -1) {
		id := text[loc[2]:loc[3]]
		end := strings.Index(text[loc[1]:], EndMarker(id))
		if end == -1 {
			continue
		}
		spans = append(spans, InstanceSpan{
			ID:    id,
			Start: loc[0],
			End:   loc[1] + end + len(EndMarker(id)),
		})
	}
	return spans
}

// InstanceIDs returns the distinct ids of every start marker in text.
func InstanceIDs(text string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, m := range startMarkerRe.FindAllStringSubmatch(text, -1) {
		if seen[m[1]] {
			continue
		}
		seen[m[1]] = true
		ids = append(ids, m[1])
	}
	return ids
}

// InstancesOf returns the ids of instances of blockID present in text.
func InstancesOf(text, blockID string) []string {
	re := regexp.MustCompile(`<!-- START: (` + regexp.QuoteMeta(blockID+InstanceSeparator) + `\d+) -->`)
	var ids []string
	for _, m := range re.FindAllStringSubmatch(text, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

// OpenInstancesAt returns the ids of instance regions that are open at byte offset pos,
// i.e. started before pos without a matching end before pos.
func OpenInstancesAt(text string, pos int) []string {
	if pos < 0 {
		pos = 0
	}
	if pos > len(text) {
		pos = len(text)
	}
	before := text[:pos]

	type event struct {
		offset int
		id     string
		open   bool
	}
	var events []event
	for _, m := range startMarkerRe.FindAllStringSubmatchIndex(before, -1) {
		events = append(events, event{offset: m[0], id: before[m[2]:m[3]], open: true})
	}
	for _, m := range endMarkerRe.FindAllStringSubmatchIndex(before, -1) {
		events = append(events, event{offset: m[0], id: before[m[2]:m[3]]})
	}
	sort.Slice(events, func(i, j int) bool { return events[i].offset < events[j].offset })

	open := make(map[string]bool)
	for _, e := range events {
		if e.open {
			open[e.id] = true
		} else {
			delete(open, e.id)
		}
	}

	ids := make([]string, 0, len(open))
	for id := range open {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RemoveInstance deletes every region of instanceID (start marker through the
// nearest end marker, plus one trailing newline). It reports whether anything
// was removed.
func RemoveInstance(text, instanceID string) (string, bool) {
	id := regexp.QuoteMeta(instanceID)
	re := regexp.MustCompile(`<!-- START: ` + id + ` -->[\s\S]*?<!-- END: ` + id + ` -->\n?`)
	if !re.MatchString(text) {
		return text, false
	}
	return re.ReplaceAllLiteralString(text, ""), true
}
