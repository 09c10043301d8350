package git

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	httpsRemote = regexp.MustCompile(`^https?://(?:[^@/]+@)?([^/]+)/([^/]+)/([^/]+)$`)
	sshRemote   = regexp.MustCompile(`^(?:ssh://)?git@([^:/]+)[:/]([^/]+)/([^/]+)$`)
	gitRemote   = regexp.MustCompile(`^git://([^/]+)/([^/]+)/([^/]+)$`)
)

// ParseRepoURL extracts host, owner and repository name from a remote URL.
// Supports multiple URL formats:
//   - HTTPS: https://github.com/owner/repo.git
//   - SSH: git@github.com:owner/repo.git or ssh://git@github.com/owner/repo
//   - Git protocol: git://github.com/owner/repo.git
func ParseRepoURL(remoteURL string) (host, owner, repo string, err error) {
	remoteURL = strings.TrimSuffix(strings.TrimSpace(remoteURL), "/")
	remoteURL = strings.TrimSuffix(remoteURL, ".git")

	for _, re := range []*regexp.Regexp{httpsRemote, sshRemote, gitRemote} {
		if m := re.FindStringSubmatch(remoteURL); len(m) == 4 {
			return m[1], m[2], m[3], nil
		}
	}
	return "", "", "", fmt.Errorf("unrecognized git URL format: %s", remoteURL)
}

// WebURL turns a remote into the browsable https address, or "" when the
// remote cannot be parsed.
func WebURL(remoteURL string) string {
	host, owner, repo, err := ParseRepoURL(remoteURL)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("https://%s/%s/%s", host, owner, repo)
}

// CommitURL links a commit under a web URL; "" when there is no web URL.
func CommitURL(webURL, sha string) string {
	if webURL == "" {
		return ""
	}
	return webURL + "/commit/" + sha
}
