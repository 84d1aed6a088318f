// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bibliography

import (
	"strings"
	"unicode/utf8"
)

// apaMaxListed is the number of authors APA lists before eliding with
// "..." and the final author.
const apaMaxListed = 20

// Initials converts given names to spaced initials: "Ana María" -> "A. M.".
func Initials(given string) string {
	var out []string
	for _, w := range strings.Fields(given) {
		r, _ := utf8.DecodeRuneInString(w)
		if r == utf8.RuneError {
			continue
		}
		out = append(out, strings.ToUpper(string(r))+".")
	}
	return strings.Join(out, " ")
}

// SplitName splits a full name into family name and given initials. It
// accepts "Family, Given" and "Given Family".
func SplitName(name string) (family, initials string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	if i := strings.Index(name, ","); i >= 0 {
		return strings.TrimSpace(name[:i]), Initials(name[i+1:])
	}
	parts := strings.Fields(name)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[len(parts)-1], Initials(strings.Join(parts[:len(parts)-1], " "))
}

// FormatName renders one author as "Family, I.".
func FormatName(name string) string {
	family, initials := SplitName(name)
	if initials == "" {
		return family
	}
	return family + ", " + initials
}

// JoinAuthors formats a list of author names APA-style:
// "Pérez, A., & Gómez, J.". Lists longer than 20 keep the first 19, an
// ellipsis, and the last author.
func JoinAuthors(names []string) string {
	parts := make([]string, 0, len(names))
	for _, n := range names {
		if s := FormatName(n); s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) > apaMaxListed {
		head := strings.Join(parts[:apaMaxListed-1], ", ")
		return head + ", ... " + parts[len(parts)-1]
	}
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", & " + parts[len(parts)-1]
	}
}

// SplitAuthors reverses JoinAuthors on a best-effort basis and also accepts
// semicolon-separated lists. Each returned name is either "Family, I." or
// the original free-text name.
func SplitAuthors(author string) []string {
	var out []string
	for _, group := range strings.Split(author, ";") {
		group = strings.ReplaceAll(group, "&", "")
		group = strings.ReplaceAll(group, "...", "")
		segs := strings.Split(group, ",")
		for i := 0; i < len(segs); i++ {
			seg := strings.TrimSpace(segs[i])
			if seg == "" {
				continue
			}
			if i+1 < len(segs) && isInitials(strings.TrimSpace(segs[i+1])) {
				out = append(out, seg+", "+strings.TrimSpace(segs[i+1]))
				i++
				continue
			}
			out = append(out, seg)
		}
	}
	return out
}

// isInitials reports whether s looks like "A." or "J. L.".
func isInitials(s string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !strings.HasSuffix(f, ".") || utf8.RuneCountInString(f) > 3 {
			return false
		}
	}
	return true
}
