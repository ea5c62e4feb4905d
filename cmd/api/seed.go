package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"lessonhub/pkg/config"
	"lessonhub/pkg/lesson"
	lessonmongo "lessonhub/pkg/lesson/mongostore"
	"lessonhub/pkg/logger"
	"lessonhub/pkg/mongodb"
)

// seedFile is the layout of a lesson seed file.
type seedFile struct {
	Lessons []lesson.Lesson `yaml:"lessons"`
}

func newSeedCmd(configPath *string) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert lessons from a YAML file into the lessons collection",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			lessons, err := readSeedFile(file)
			if err != nil {
				return err
			}
			log := logger.New(os.Stdout, logger.LevelInfo, cfg.Telemetry.ServiceName, nil)
			return seed(cmd.Context(), log, cfg, lessons)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "lessons.yaml", "YAML file with a top-level lessons list")

	return cmd
}

func seed(ctx context.Context, log *logger.Logger, cfg *config.Config, lessons []lesson.Lesson) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:            cfg.DB.ConnectionURI(),
		Database:       cfg.DB.Name,
		ConnectTimeout: cfg.DB.ConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("connecting to mongodb: %w", err)
	}
	defer client.Disconnect(context.Background())

	n, err := lessonmongo.New(db).Insert(ctx, lessons)
	if err != nil {
		return err
	}
	log.Info(ctx, "seed", "inserted", n, "collection", lessonmongo.Collection)
	return nil
}

func readSeedFile(path string) ([]lesson.Lesson, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(f.Lessons) == 0 {
		return nil, fmt.Errorf("seed file %s has no lessons", path)
	}
	return f.Lessons, nil
}
