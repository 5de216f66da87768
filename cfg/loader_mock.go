package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (ml *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "repo-downloader",
			Version: "0.0.1",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "repo_downloader",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// GithubApi
		GithubApi: GithubApi{
			AccessToken: "",
			ApiUrl:      "https://api.github.com",
		},

		// Storage
		Storage: Storage{
			Root:       "downloads",
			GroupWidth: 2,
			MinGroups:  4,
		},

		// Fetch
		Fetch: Fetch{
			ArchiveUrlTemplate: "https://github.com/{user}/{repo}/archive/refs/heads/{branch}.zip",
			ZipballUrlTemplate: "https://api.github.com/repos/{user}/{repo}/zipball",
			TimeoutSeconds:     120,
		},

		// Kafka
		Kafka: Kafka{
			Brokers: []string{"127.0.0.1:9092"},
			Topics: KafkaTopics{
				Request: "download-requests",
				Result:  "download-results",
			},
		},
	}, nil
}
