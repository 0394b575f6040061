package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pageza/foodgram/backend/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const ingredientSearchLimit = 50

// LoadResult reports what a catalogue import did.
type LoadResult struct {
	Created  int `json:"created"`
	Existing int `json:"existing"`
}

type IngredientService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewIngredientService(db *gorm.DB, log *zap.Logger) *IngredientService {
	return &IngredientService{db: db, log: log.Named("ingredients")}
}

// Search returns catalogue entries whose name starts with query.
func (s *IngredientService) Search(ctx context.Context, query string) ([]models.Ingredient, error) {
	query = strings.Trim(query, "/")

	q := s.db.WithContext(ctx).Order("name").Order("unit").Limit(ingredientSearchLimit)
	if query != "" {
		q = q.Where(`name LIKE ? ESCAPE '\'`, escapeLike(query)+"%")
	}

	var ingredients []models.Ingredient
	if err := q.Find(&ingredients).Error; err != nil {
		return nil, fmt.Errorf("search ingredients: %w", err)
	}
	return ingredients, nil
}

// Resolve finds an ingredient by name, narrowed by unit when one is given.
func (s *IngredientService) Resolve(ctx context.Context, name, unit string) (*models.Ingredient, error) {
	q := s.db.WithContext(ctx).Where("name = ?", name)
	if unit != "" {
		q = q.Where("unit = ?", unit)
	}

	var ingredient models.Ingredient
	if err := q.Order("unit").First(&ingredient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("resolve ingredient: %w", err)
	}
	return &ingredient, nil
}

// LoadCSV imports "name,unit" rows. The whole file is rejected if any row is malformed.
func (s *IngredientService) LoadCSV(ctx context.Context, r io.Reader) (LoadResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var result LoadResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return nil
			}
			if err != nil {
				var perr *csv.ParseError
				if errors.As(err, &perr) {
					return fmt.Errorf("row %d: %w", perr.StartLine, err)
				}
				return err
			}
			line, _ := reader.FieldPos(0)
			if len(record) != 2 {
				return fmt.Errorf("row %d: expected 2 columns, got %d", line, len(record))
			}

			name := strings.TrimSpace(record[0])
			unit := strings.TrimSpace(record[1])
			if name == "" || unit == "" {
				return fmt.Errorf("row %d: name and unit are required", line)
			}

			var count int64
			if err := tx.Model(&models.Ingredient{}).
				Where("name = ? AND unit = ?", name, unit).
				Count(&count).Error; err != nil {
				return fmt.Errorf("row %d: %w", line, err)
			}
			if count > 0 {
				result.Existing++
				continue
			}
			if err := tx.Create(&models.Ingredient{Name: name, Unit: unit}).Error; err != nil {
				return fmt.Errorf("row %d: %w", line, err)
			}
			result.Created++
		}
	})
	if err != nil {
		return LoadResult{}, fmt.Errorf("load ingredients: %w", err)
	}

	s.log.Info("ingredients loaded", zap.Int("created", result.Created), zap.Int("existing", result.Existing))
	return result, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
