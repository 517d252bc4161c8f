package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/platefeed/backend/config"
	"github.com/platefeed/backend/internal/database"
	"github.com/platefeed/backend/internal/models"
)

// Default tag set for a fresh installation. Colors are the hex values the
// frontend ships with.
var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

func main() {
	ingredientsPath := flag.String("ingredients", "data/ingredients.csv", "CSV file with name,measurement_unit rows")
	skipTags := flag.Bool("skip-tags", false, "Do not create the default tags")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := database.WaitFor(cfg, 60*time.Second); err != nil {
		logger.Fatal("database never became ready", zap.Error(err))
	}

	db, err := database.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	count, err := seedIngredients(db, *ingredientsPath)
	if err != nil {
		logger.Fatal("failed to seed ingredients", zap.Error(err))
	}
	logger.Info("seeded ingredients", zap.Int("count", count))

	if !*skipTags {
		if err := seedTags(db); err != nil {
			logger.Fatal("failed to seed tags", zap.Error(err))
		}
		logger.Info("seeded tags", zap.Int("count", len(defaultTags)))
	}
}

// seedIngredients loads the reference catalog from a headerless CSV of
// name,measurement_unit rows. Rows whose name already exists are skipped
// so the command can be re-run safely.
func seedIngredients(db *gorm.DB, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = 2

	records, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var ingredients []models.Ingredient
	for _, record := range records {
		ingredients = append(ingredients, models.Ingredient{
			Name:            record[0],
			MeasurementUnit: record[1],
		})
	}
	if len(ingredients) == 0 {
		return 0, nil
	}

	err = db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}, {Name: "measurement_unit"}},
		DoNothing: true,
	}).CreateInBatches(ingredients, 500).Error
	if err != nil {
		return 0, err
	}
	return len(ingredients), nil
}

func seedTags(db *gorm.DB) error {
	for _, tag := range defaultTags {
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&tag).Error
		if err != nil {
			return err
		}
	}
	return nil
}
