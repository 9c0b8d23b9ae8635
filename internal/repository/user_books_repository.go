package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shelfwise/shelfwise/internal/models"
)

// UserBooksRepository reads the user's shelved books. The user_books table is
// owned by the external shelf CRUD service; this core never writes it.
type UserBooksRepository struct {
	db *pgxpool.Pool
}

// NewUserBooksRepository creates a user books repository.
func NewUserBooksRepository(db *pgxpool.Pool) *UserBooksRepository {
	return &UserBooksRepository{db: db}
}

// ListByUser returns all books on any of the user's shelves, highest rating
// first (unrated books last). The ordering fixes the anchor input order for
// clustering, which makes the first-anchor tie-break deterministic.
func (r *UserBooksRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.UserBook, error) {
	rows, err := r.db.Query(ctx, `
		SELECT book_id, title, author, rating
		FROM user_books
		WHERE user_id = $1
		ORDER BY rating DESC NULLS LAST, book_id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list user books: %w", err)
	}
	defer rows.Close()

	var books []models.UserBook

	for rows.Next() {
		var b models.UserBook

		if err := rows.Scan(&b.BookID, &b.Title, &b.Author, &b.Rating); err != nil {
			return nil, fmt.Errorf("scan user book: %w", err)
		}

		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user books: %w", err)
	}

	return books, nil
}
