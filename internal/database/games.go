package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gameverse-sync-go/internal/models"
	"gameverse-sync-go/internal/store"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// GetOwnedGames returns the user's ownership rows joined with catalog fields,
// most recently purchased first.
func (s *Service) GetOwnedGames(ctx context.Context, userId string) ([]models.OwnedGame, error) {
	zap.L().Debug("Querying owned games", zap.String("user_id", userId))

	rows, err := s.db.QueryContext(ctx, queryGetOwnedGames, userId)
	if err != nil {
		zap.L().Error("Failed to query owned games", zap.String("user_id", userId), zap.Error(err))
		return nil, fmt.Errorf("unable to query owned games: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var games []models.OwnedGame
	for rows.Next() {
		var game models.OwnedGame
		var priceStr string
		err := rows.Scan(&game.Id, &game.Title, &game.Description, &game.ImageURL, &priceStr,
			&game.Category, &game.Developer, &game.CreatedAt,
			&game.Progress, &game.Status, &game.PurchasedAt)
		if err != nil {
			return nil, fmt.Errorf("unable to scan owned game row: %w", err)
		}
		game.Price, err = decimal.NewFromString(priceStr)
		if err != nil {
			return nil, fmt.Errorf("unable to parse price %q: %w", priceStr, err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		zap.L().Error("Error during owned game row iteration", zap.Error(err))
		return nil, fmt.Errorf("error iterating owned game rows: %w", err)
	}

	zap.L().Debug("Retrieved owned games", zap.String("user_id", userId), zap.Int("count", len(games)))
	return games, nil
}

// GetCatalogGames returns the full game catalog, newest first.
func (s *Service) GetCatalogGames(ctx context.Context) ([]models.CatalogGame, error) {
	rows, err := s.db.QueryContext(ctx, queryGetCatalogGames)
	if err != nil {
		zap.L().Error("Failed to query catalog games", zap.Error(err))
		return nil, fmt.Errorf("unable to query catalog games: %w", err)
	}
	defer func(rows *sql.Rows) {
		if err := rows.Close(); err != nil {
			zap.L().Warn("Failed to close rows", zap.Error(err))
		}
	}(rows)

	var games []models.CatalogGame
	for rows.Next() {
		game, err := scanCatalogGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, *game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalog game rows: %w", err)
	}

	return games, nil
}

// GetCatalogGame returns a single catalog game by id.
func (s *Service) GetCatalogGame(ctx context.Context, gameId string) (*models.CatalogGame, error) {
	row := s.db.QueryRowContext(ctx, queryGetCatalogGameById, gameId)
	game, err := scanCatalogGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return game, nil
}

// GetOwnedGame returns the user's ownership row for one game joined with its
// catalog entry. Returns store.ErrNotFound when the game is not owned.
func (s *Service) GetOwnedGame(ctx context.Context, userId, gameId string) (*models.OwnedGame, error) {
	var game models.OwnedGame
	var priceStr string
	err := s.db.QueryRowContext(ctx, queryGetOwnedGame, userId, gameId).Scan(
		&game.Id, &game.Title, &game.Description, &game.ImageURL, &priceStr,
		&game.Category, &game.Developer, &game.CreatedAt,
		&game.Progress, &game.Status, &game.PurchasedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		zap.L().Error("Failed to query owned game",
			zap.String("user_id", userId), zap.String("game_id", gameId), zap.Error(err))
		return nil, fmt.Errorf("unable to query owned game: %w", err)
	}
	game.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse price %q: %w", priceStr, err)
	}
	return &game, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCatalogGame(row rowScanner) (*models.CatalogGame, error) {
	var game models.CatalogGame
	var priceStr string
	err := row.Scan(&game.Id, &game.Title, &game.Description, &game.ImageURL, &priceStr,
		&game.Category, &game.Developer, &game.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("unable to scan catalog game row: %w", err)
	}
	game.Price, err = decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("unable to parse price %q: %w", priceStr, err)
	}
	return &game, nil
}

// UpsertOwnership marks a game as owned by the user. Idempotent on
// (user, game); an existing row keeps its progress.
func (s *Service) UpsertOwnership(ctx context.Context, userId, gameId string, status models.GameStatus) error {
	zap.L().Info("Upserting game ownership",
		zap.String("user_id", userId),
		zap.String("game_id", gameId),
		zap.String("status", string(status)))

	if _, err := s.db.ExecContext(ctx, queryUpsertOwnership, userId, gameId, string(status)); err != nil {
		zap.L().Error("Failed to upsert ownership",
			zap.String("user_id", userId),
			zap.String("game_id", gameId),
			zap.Error(err))
		return fmt.Errorf("unable to upsert ownership: %w", err)
	}
	return nil
}

// SetGameProgress writes progress and the derived status through to the
// ownership row. ErrNotFound when the game is not owned.
func (s *Service) SetGameProgress(ctx context.Context, userId, gameId string, progress int, status models.GameStatus) error {
	result, err := s.db.ExecContext(ctx, querySetGameProgress, progress, string(status), userId, gameId)
	if err != nil {
		zap.L().Error("Failed to set game progress",
			zap.String("user_id", userId),
			zap.String("game_id", gameId),
			zap.Error(err))
		return fmt.Errorf("unable to set game progress: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("unable to check rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return store.ErrNotFound
	}

	zap.L().Debug("Game progress updated",
		zap.String("user_id", userId),
		zap.String("game_id", gameId),
		zap.Int("progress", progress),
		zap.String("status", string(status)))
	return nil
}

// SeedCatalogGame inserts a catalog game if absent. Used by cmd/setup.
func (s *Service) SeedCatalogGame(ctx context.Context, game models.CatalogGame) error {
	_, err := s.db.ExecContext(ctx, queryInsertCatalogGame,
		game.Id, game.Title, game.Description, game.ImageURL,
		game.Price.String(), game.Category, game.Developer)
	if err != nil {
		return fmt.Errorf("unable to seed catalog game %q: %w", game.Title, err)
	}
	return nil
}
