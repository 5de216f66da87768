package model

import (
	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/pkg/db"
	"github.com/thep200/repo-downloader/pkg/log"
)

type Model struct {
	Config *cfg.Config `gorm:"-"`
	Logger log.Logger  `gorm:"-"`
	Mysql  *db.Mysql   `gorm:"-"`
}
