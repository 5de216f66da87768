// Data transfer objects for the GitHub repository endpoint.

package githubapi

import "errors"

var ErrRepoNotFound = errors.New("github api: repository not found")

type Owner struct {
	Login string `json:"login"`
	ID    int64  `json:"id"`
}

type GithubAPIResponse struct {
	Id            int64  `json:"id"`
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Owner         Owner  `json:"owner"`
	DefaultBranch string `json:"default_branch"`
	CloneUrl      string `json:"clone_url"`
}
