package model

// RepoMessage carries one metadata row to the repo mirror consumer.
type RepoMessage struct {
	ID            int64  `json:"id"`
	User          string `json:"user"`
	Name          string `json:"name"`
	DefaultBranch string `json:"default_branch"`
	CloneUrl      string `json:"clone_url"`
}

// DownloadRequestMessage asks the consumer to download one repository.
type DownloadRequestMessage struct {
	ID int64 `json:"id"`
}

// DownloadResultMessage reports the outcome of one download request.
type DownloadResultMessage struct {
	ID     int64  `json:"id"`
	Path   string `json:"path"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

const (
	DownloadStatusDone    = "done"
	DownloadStatusSkipped = "skipped"
	DownloadStatusFailed  = "failed"
)
