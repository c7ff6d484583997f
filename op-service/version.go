package op_service

import "strings"

// shortCommitLen is the number of commit hash characters kept in version strings.
const shortCommitLen = 8

// FormatVersion builds "<version>[-<commit>][-<date>][-<meta>]", skipping empty parts.
func FormatVersion(version string, gitCommit string, gitDate string, meta string) string {
	if len(gitCommit) > shortCommitLen {
		gitCommit = gitCommit[:shortCommitLen]
	}
	parts := []string{version}
	for _, p := range []string{gitCommit, gitDate, meta} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "-")
}
