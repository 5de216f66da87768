package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	GithubApi struct {
		AccessToken string
		ApiUrl      string
	}

	// Storage describes the download tree rooted at Root. Identifiers are
	// mapped to directories of GroupWidth-digit segments, at least MinGroups
	// of them.
	Storage struct {
		Root       string
		GroupWidth int
		MinGroups  int
	}

	Fetch struct {
		ArchiveUrlTemplate string
		ZipballUrlTemplate string
		TimeoutSeconds     int
	}

	KafkaTopics struct {
		Request string
		Result  string
	}

	Kafka struct {
		Brokers []string
		Topics  KafkaTopics
	}
)

type Config struct {
	App       App
	Mysql     Mysql
	GithubApi GithubApi
	Storage   Storage
	Fetch     Fetch
	Kafka     Kafka
}
