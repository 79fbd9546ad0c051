package main

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

const _seedBatchSize = 100

var _seedAuthors = []string{"Ada Lovelace", "Grace Hopper", "Alan Turing"}

func newSeedCmd(v *viper.Viper) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Inserts demo authors and posts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}

			return withDB(cfg.Database, logger, func(db *gorm.DB) error {
				return seed(cmd.Context(), db, count, time.Now().Add(-time.Duration(count)*time.Minute), logger)
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 50, "number of posts")

	return cmd
}

// seed inserts the demo authors and count posts. Post i is created i minutes
// after start and has i*10 views.
func seed(ctx context.Context, db *gorm.DB, count int, start time.Time, logger logrus.FieldLogger) error {
	if count < 0 {
		return fmt.Errorf("cannot seed %d posts", count)
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		authors := make([]Author, 0, len(_seedAuthors))
		for _, name := range _seedAuthors {
			authors = append(authors, Author{Name: name, CreatedAt: start})
		}

		if err := tx.Create(&authors).Error; err != nil {
			return fmt.Errorf("cannot create authors: %w", err)
		}

		if count == 0 {
			return nil
		}

		posts := make([]Post, 0, count)
		for i := 1; i <= count; i++ {
			status := "published"
			if i%2 == 0 {
				status = "draft"
			}

			posts = append(posts, Post{
				Title:     fmt.Sprintf("Post #%d", i),
				Status:    status,
				Views:     i * 10,
				AuthorID:  authors[(i-1)%len(authors)].ID,
				CreatedAt: start.Add(time.Duration(i) * time.Minute),
			})
		}

		if err := tx.CreateInBatches(&posts, _seedBatchSize).Error; err != nil {
			return fmt.Errorf("cannot create posts: %w", err)
		}

		logger.WithFields(logrus.Fields{
			"authors": len(authors),
			"posts":   len(posts),
		}).Info("seeded database")

		return nil
	})
}
