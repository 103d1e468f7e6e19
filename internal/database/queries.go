package database

const (
	// User queries
	queryGetUserByAddress = `
		SELECT id, wallet_address, email, created_at, updated_at
		FROM users
		WHERE wallet_address = LOWER(?)`

	queryUpsertUser = `
		INSERT INTO users (id, wallet_address, email)
		VALUES (?, LOWER(?), ?)
		ON CONFLICT(wallet_address) DO UPDATE SET updated_at = CURRENT_TIMESTAMP`

	queryGetUsers = `
		SELECT id, wallet_address, email, created_at, updated_at
		FROM users
		ORDER BY created_at`

	// Game queries
	queryGetOwnedGames = `
		SELECT g.id, g.title, g.description, g.image_url, g.price, g.category, g.developer, g.created_at,
		       ug.progress, ug.status, ug.purchased_at
		FROM user_games ug
		JOIN games g ON g.id = ug.game_id
		WHERE ug.user_id = ?
		ORDER BY ug.purchased_at DESC`

	queryGetCatalogGames = `
		SELECT id, title, description, image_url, price, category, developer, created_at
		FROM games
		ORDER BY created_at DESC`

	queryGetCatalogGameById = `
		SELECT id, title, description, image_url, price, category, developer, created_at
		FROM games
		WHERE id = ?`

	queryGetOwnedGame = `
		SELECT g.id, g.title, g.description, g.image_url, g.price, g.category, g.developer, g.created_at,
		       ug.progress, ug.status, ug.purchased_at
		FROM user_games ug
		JOIN games g ON g.id = ug.game_id
		WHERE ug.user_id = ? AND ug.game_id = ?`

	queryUpsertOwnership = `
		INSERT INTO user_games (user_id, game_id, progress, status)
		VALUES (?, ?, 0, ?)
		ON CONFLICT(user_id, game_id) DO UPDATE SET
			status = excluded.status,
			updated_at = CURRENT_TIMESTAMP`

	querySetGameProgress = `
		UPDATE user_games
		SET progress = ?, status = ?, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND game_id = ?`

	queryInsertCatalogGame = `
		INSERT OR IGNORE INTO games (id, title, description, image_url, price, category, developer)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	// Achievement queries
	queryGetUserAchievements = `
		SELECT user_id, achievement_id, claimed, unlocked_at
		FROM user_achievements
		WHERE user_id = ?`

	queryGetCatalogAchievements = `
		SELECT id, title, description, icon, rarity, reward_amount, created_at
		FROM achievements
		ORDER BY CASE rarity
			WHEN 'legendary' THEN 0
			WHEN 'epic' THEN 1
			WHEN 'rare' THEN 2
			ELSE 3
		END, created_at`

	queryUpsertUnlock = `
		INSERT OR IGNORE INTO user_achievements (user_id, achievement_id)
		VALUES (?, ?)`

	// The claimed = 0 guard makes the flip atomic: of two racing claims
	// only one update touches a row.
	querySetClaimed = `
		UPDATE user_achievements
		SET claimed = 1
		WHERE user_id = ? AND achievement_id = ? AND claimed = 0`

	queryGetUnlock = `
		SELECT user_id, achievement_id, claimed, unlocked_at
		FROM user_achievements
		WHERE user_id = ? AND achievement_id = ?`

	queryGetCatalogAchievementById = `
		SELECT id, title, description, icon, rarity, reward_amount, created_at
		FROM achievements
		WHERE id = ?`

	queryInsertCatalogAchievement = `
		INSERT OR IGNORE INTO achievements (id, title, description, icon, rarity, reward_amount)
		VALUES (?, ?, ?, ?, ?, ?)`

	// Balance queries
	queryGetBalance = `
		SELECT user_id, balance, version, updated_at
		FROM user_balances
		WHERE user_id = ?`

	queryInsertBalance = `
		INSERT INTO user_balances (user_id, balance, version)
		VALUES (?, ?, 1)
		ON CONFLICT(user_id) DO NOTHING`

	// Optimistic locking: the version predicate makes the write a
	// compare-and-swap, so two racing read-modify-write cycles cannot
	// both land on the same version.
	queryUpdateBalanceCAS = `
		UPDATE user_balances
		SET balance = ?, version = version + 1, updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND version = ?`

	// Transaction queries
	queryInsertTransaction = `
		INSERT INTO transactions (id, user_id, kind, amount, description, game_id, achievement_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, user_id, kind, amount, description, game_id, achievement_id, status, created_at`

	queryGetTransactions = `
		SELECT id, user_id, kind, amount, description, game_id, achievement_id, status, created_at
		FROM transactions
		WHERE user_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`
)
