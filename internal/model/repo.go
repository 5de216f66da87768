package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thep200/repo-downloader/cfg"
	"github.com/thep200/repo-downloader/pkg/db"
	"github.com/thep200/repo-downloader/pkg/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo mirrors one row of the external metadata database. The ID column is
// the globally unique identifier the storage path scheme is keyed on, so it
// is never auto-incremented locally.
type Repo struct {
	Model
	ID            int64     `json:"id" gorm:"column:id;primaryKey;autoIncrement:false"`
	User          string    `json:"user" gorm:"column:user;type:varchar(255);not null"`
	Name          string    `json:"name" gorm:"column:name;type:varchar(255);not null"`
	DefaultBranch string    `json:"default_branch" gorm:"column:default_branch;type:varchar(255);default:master"`
	CloneUrl      string    `json:"clone_url" gorm:"column:clone_url;type:varchar(512)"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null;default:CURRENT_TIMESTAMP"`
}

func NewRepo(config *cfg.Config, logger log.Logger, db *db.Mysql) (*Repo, error) {
	repo := &Repo{
		Model: Model{
			Config: config,
			Logger: logger,
			Mysql:  db,
		},
	}
	return repo, nil
}

func (r *Repo) TableName() string {
	return "repos"
}

// FindByID loads the metadata row for an identifier. Returns
// gorm.ErrRecordNotFound when the identifier is unknown.
func (r *Repo) FindByID(ctx context.Context, id int64) (*Repo, error) {
	db, err := r.Mysql.Db()
	if err != nil {
		r.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return nil, err
	}

	found := &Repo{}
	if err := db.WithContext(ctx).First(found, "id = ?", id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			r.Logger.Error(ctx, "Failed to query repo id=%d: %v", id, err)
		}
		return nil, err
	}
	return found, nil
}

func (r *Repo) Create(user, name, defaultBranch, cloneUrl string, id int64) error {
	ctx := context.Background()
	user = TruncateString(user, 250)
	name = TruncateString(name, 250)

	newRepo := &Repo{}
	newRepo.ID = id
	newRepo.User = user
	newRepo.Name = name
	newRepo.DefaultBranch = defaultBranch
	newRepo.CloneUrl = cloneUrl
	newRepo.CreatedAt = time.Now()
	newRepo.UpdatedAt = time.Now()

	db, err := r.Mysql.Db()
	if err != nil {
		r.Logger.Error(ctx, "Failed to get database connection: %v", err)
		return err
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"user", "name", "default_branch", "clone_url", "updated_at"}),
	}).Create(newRepo).Error; err != nil {
		r.Logger.Error(ctx, "Failed to create repo: %v", err)
		return err
	}

	r.Logger.Info(ctx, "Successfully upserted repo with ID=%d", newRepo.ID)
	return nil
}

// CreateBatch upserts a batch of metadata rows delivered over Kafka.
func (r *Repo) CreateBatch(messages []RepoMessage) error {
	db, err := r.Mysql.Db()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %w", err)
	}

	repos := make([]Repo, 0, len(messages))
	now := time.Now()

	for _, msg := range messages {
		repo := Repo{
			ID:            msg.ID,
			User:          TruncateString(msg.User, 250),
			Name:          TruncateString(msg.Name, 250),
			DefaultBranch: msg.DefaultBranch,
			CloneUrl:      msg.CloneUrl,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		repos = append(repos, repo)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		result := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"user", "name", "default_branch", "clone_url", "updated_at"}),
		}).CreateInBatches(repos, 100)

		if result.Error != nil {
			return fmt.Errorf("failed to batch upsert repositories: %w", result.Error)
		}

		return nil
	})
}
