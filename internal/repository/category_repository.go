package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/service-marketplace/internal/model"
)

// CategoryRepo reads the category/subcategory browse tree.  Rows are managed
// out of band; the API never writes them.
type CategoryRepo struct{ DB *sql.DB }

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{DB: db} }

// CategoryWithSubs is the browse payload: a category and its subcategories.
type CategoryWithSubs struct {
	model.Category
	SubCategories []model.SubCategory `json:"subcategories"`
}

// List returns all categories with their subcategories, ordered by name.
func (r *CategoryRepo) List(ctx context.Context) ([]CategoryWithSubs, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.id, c.name, s.id, s.name, s.category_id
		 FROM categories c
		 LEFT JOIN subcategories s ON s.category_id = c.id
		 ORDER BY c.name, s.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CategoryWithSubs
	index := map[uint64]int{} // category id -> position in out
	for rows.Next() {
		var (
			cat   model.Category
			subID sql.NullInt64
			sub   model.SubCategory
		)
		var subName sql.NullString
		var subCatID sql.NullInt64
		if err := rows.Scan(&cat.ID, &cat.Name, &subID, &subName, &subCatID); err != nil {
			return nil, err
		}
		pos, ok := index[cat.ID]
		if !ok {
			out = append(out, CategoryWithSubs{Category: cat})
			pos = len(out) - 1
			index[cat.ID] = pos
		}
		if subID.Valid {
			sub.ID = uint64(subID.Int64)
			sub.Name = subName.String
			sub.CategoryID = uint64(subCatID.Int64)
			out[pos].SubCategories = append(out[pos].SubCategories, sub)
		}
	}
	return out, rows.Err()
}

// GetSubCategory fetches one subcategory by id.
func (r *CategoryRepo) GetSubCategory(ctx context.Context, id uint64) (model.SubCategory, error) {
	var s model.SubCategory
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, category_id FROM subcategories WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.Name, &s.CategoryID)
	return s, err
}
