package fingerprint

import (
	"bytes"
	"fmt"
	"strings"
)

// parseLsFiles parses `git ls-files -s -z` output:
//
//	<mode> SP <object> SP <stage> TAB <file> NUL
func parseLsFiles(out []byte) (map[string]string, error) {
	fp := make(map[string]string)
	for _, rec := range bytes.Split(out, []byte{0}) {
		if len(rec) == 0 {
			continue
		}
		meta, path, ok := strings.Cut(string(rec), "\t")
		if !ok {
			return nil, fmt.Errorf("unexpected ls-files record %q", rec)
		}
		fields := strings.Fields(meta)
		if len(fields) != 3 {
			return nil, fmt.Errorf("unexpected ls-files record %q", rec)
		}
		// Unmerged entries appear once per stage; the last one wins.
		fp[path] = fields[1]
	}
	return fp, nil
}

// change is one working-tree entry reported by git status.
type change struct {
	path    string
	deleted bool
}

// parseStatus parses `git status --porcelain -z` output. Porcelain paths
// are relative to the repository root; prefix is the project directory
// relative to the root (as printed by `git rev-parse --show-prefix`) and is
// stripped so paths match ls-files output. Renames report the new path as a
// change and the old path as deleted.
func parseStatus(out []byte, prefix string) ([]change, error) {
	var changes []change
	recs := bytes.Split(out, []byte{0})
	for i := 0; i < len(recs); i++ {
		rec := string(recs[i])
		if rec == "" {
			continue
		}
		if len(rec) < 4 || rec[2] != ' ' {
			return nil, fmt.Errorf("unexpected status record %q", rec)
		}
		x, y, path := rec[0], rec[1], rec[3:]

		switch {
		case x == 'R' || x == 'C':
			changes = append(changes, change{path: path})
			// The source path follows as its own record.
			if i+1 < len(recs) {
				i++
				if x == 'R' {
					changes = append(changes, change{path: string(recs[i]), deleted: true})
				}
			}
		case x == 'D' || y == 'D':
			changes = append(changes, change{path: path, deleted: true})
		default:
			changes = append(changes, change{path: path})
		}
	}

	out2 := changes[:0]
	for _, c := range changes {
		if !strings.HasPrefix(c.path, prefix) {
			continue
		}
		c.path = strings.TrimPrefix(c.path, prefix)
		if c.path == "" || strings.HasSuffix(c.path, "/") {
			// Directories (e.g. nested repositories) carry no content hash.
			continue
		}
		out2 = append(out2, c)
	}
	return out2, nil
}
