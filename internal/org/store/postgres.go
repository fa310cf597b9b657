package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"isleport/internal/org/models"
	id "isleport/pkg/domain"
	"isleport/pkg/platform/sentinel"
	"isleport/pkg/platform/tx"
)

// Postgres stores the org graph in PostgreSQL. Queries run against the
// transaction in the context when one is present.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Postgres) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *Postgres) CreateRegion(ctx context.Context, region *models.Region) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO regions (id, name, created_at) VALUES ($1, $2, $3)`,
		region.ID.String(), region.Name, region.CreatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert region: %w", err)
	}
	return nil
}

func (s *Postgres) FindRegion(ctx context.Context, regionID id.RegionID) (*models.Region, error) {
	var (
		region models.Region
		rawID  string
	)
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, name, created_at FROM regions WHERE id = $1`,
		regionID.String(),
	).Scan(&rawID, &region.Name, &region.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find region: %w", err)
	}
	region.ID, err = id.ParseRegionID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse region id: %w", err)
	}
	return &region, nil
}

func (s *Postgres) ListRegions(ctx context.Context) ([]*models.Region, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, name, created_at FROM regions ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer rows.Close()

	var out []*models.Region
	for rows.Next() {
		var (
			region models.Region
			rawID  string
		)
		if err := rows.Scan(&rawID, &region.Name, &region.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan region: %w", err)
		}
		region.ID, err = id.ParseRegionID(rawID)
		if err != nil {
			return nil, fmt.Errorf("parse region id: %w", err)
		}
		out = append(out, &region)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteRegion(ctx context.Context, regionID id.RegionID) error {
	var islandCount int
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT COUNT(*) FROM islands WHERE region_id = $1`,
		regionID.String(),
	).Scan(&islandCount)
	if err != nil {
		return fmt.Errorf("count islands: %w", err)
	}
	if islandCount > 0 {
		return sentinel.ErrInvalidState
	}

	res, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM regions WHERE id = $1`, regionID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete region: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete region: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) CreateIsland(ctx context.Context, island *models.Island) error {
	_, err := s.q(ctx).ExecContext(ctx,
		`INSERT INTO islands (id, region_id, name, created_at) VALUES ($1, $2, $3, $4)`,
		island.ID.String(), island.RegionID.String(), island.Name, island.CreatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if isForeignKeyViolation(err) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("insert island: %w", err)
	}
	return nil
}

func (s *Postgres) FindIsland(ctx context.Context, islandID id.IslandID) (*models.Island, error) {
	var (
		island    models.Island
		rawID     string
		rawRegion string
	)
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, region_id, name, created_at FROM islands WHERE id = $1`,
		islandID.String(),
	).Scan(&rawID, &rawRegion, &island.Name, &island.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find island: %w", err)
	}
	if island.ID, err = id.ParseIslandID(rawID); err != nil {
		return nil, fmt.Errorf("parse island id: %w", err)
	}
	if island.RegionID, err = id.ParseRegionID(rawRegion); err != nil {
		return nil, fmt.Errorf("parse region id: %w", err)
	}
	return &island, nil
}

func (s *Postgres) ListIslands(ctx context.Context, regionID id.RegionID) ([]*models.Island, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, region_id, name, created_at FROM islands WHERE region_id = $1 ORDER BY name`,
		regionID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list islands: %w", err)
	}
	defer rows.Close()

	var out []*models.Island
	for rows.Next() {
		var (
			island    models.Island
			rawID     string
			rawRegion string
		)
		if err := rows.Scan(&rawID, &rawRegion, &island.Name, &island.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan island: %w", err)
		}
		if island.ID, err = id.ParseIslandID(rawID); err != nil {
			return nil, fmt.Errorf("parse island id: %w", err)
		}
		if island.RegionID, err = id.ParseRegionID(rawRegion); err != nil {
			return nil, fmt.Errorf("parse region id: %w", err)
		}
		out = append(out, &island)
	}
	return out, rows.Err()
}

func (s *Postgres) DeleteIsland(ctx context.Context, islandID id.IslandID) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`DELETE FROM islands WHERE id = $1`, islandID.String(),
	)
	if err != nil {
		return fmt.Errorf("delete island: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete island: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) CreateUser(ctx context.Context, user *models.User, regionIDs []id.RegionID, islandIDs []id.IslandID) error {
	q := s.q(ctx)

	_, err := q.ExecContext(ctx,
		`INSERT INTO users (id, name, role, verified_status, created_at) VALUES ($1, $2, $3, $4, $5)`,
		user.ID.String(), user.Name, string(user.Role), string(user.Verified), user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	if len(regionIDs) > 0 {
		_, err = q.ExecContext(ctx,
			`INSERT INTO user_regions (user_id, region_id)
			 SELECT $1, unnest($2::uuid[])`,
			user.ID.String(), pq.Array(regionIDStrings(regionIDs)),
		)
		if isForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("insert user regions: %w", err)
		}
	}
	if len(islandIDs) > 0 {
		_, err = q.ExecContext(ctx,
			`INSERT INTO user_islands (user_id, island_id)
			 SELECT $1, unnest($2::uuid[])`,
			user.ID.String(), pq.Array(islandIDStrings(islandIDs)),
		)
		if isForeignKeyViolation(err) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("insert user islands: %w", err)
		}
	}
	return nil
}

func (s *Postgres) FindUser(ctx context.Context, userID id.UserID) (*models.User, error) {
	var (
		user  models.User
		rawID string
	)
	err := s.q(ctx).QueryRowContext(ctx,
		`SELECT id, name, role, verified_status, created_at FROM users WHERE id = $1`,
		userID.String(),
	).Scan(&rawID, &user.Name, &user.Role, &user.Verified, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user.ID, err = id.ParseUserID(rawID); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &user, nil
}

func (s *Postgres) UpdateUserVerification(ctx context.Context, userID id.UserID, status id.VerifiedStatus) error {
	res, err := s.q(ctx).ExecContext(ctx,
		`UPDATE users SET verified_status = $2 WHERE id = $1`,
		userID.String(), string(status),
	)
	if err != nil {
		return fmt.Errorf("update user verification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update user verification: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Postgres) IslandsInRegions(ctx context.Context, regionIDs []id.RegionID) ([]id.IslandID, error) {
	if len(regionIDs) == 0 {
		return nil, nil
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id FROM islands WHERE region_id = ANY($1) ORDER BY id`,
		pq.Array(regionIDStrings(regionIDs)),
	)
	if err != nil {
		return nil, fmt.Errorf("islands in regions: %w", err)
	}
	defer rows.Close()
	return scanIslandIDs(rows)
}

func (s *Postgres) UsersOnIslands(ctx context.Context, islandIDs []id.IslandID) ([]id.UserID, error) {
	if len(islandIDs) == 0 {
		return nil, nil
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT DISTINCT user_id FROM user_islands WHERE island_id = ANY($1) ORDER BY user_id`,
		pq.Array(islandIDStrings(islandIDs)),
	)
	if err != nil {
		return nil, fmt.Errorf("users on islands: %w", err)
	}
	defer rows.Close()
	return scanUserIDs(rows)
}

func (s *Postgres) RegionsOfIslands(ctx context.Context, islandIDs []id.IslandID) ([]id.RegionID, error) {
	if len(islandIDs) == 0 {
		return nil, nil
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT DISTINCT region_id FROM islands WHERE id = ANY($1) ORDER BY region_id`,
		pq.Array(islandIDStrings(islandIDs)),
	)
	if err != nil {
		return nil, fmt.Errorf("regions of islands: %w", err)
	}
	defer rows.Close()
	return scanRegionIDs(rows)
}

func (s *Postgres) UsersByRole(ctx context.Context, role id.Role) ([]id.UserID, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id FROM users WHERE role = $1 ORDER BY id`,
		string(role),
	)
	if err != nil {
		return nil, fmt.Errorf("users by role: %w", err)
	}
	defer rows.Close()
	return scanUserIDs(rows)
}

func (s *Postgres) AdminsInRegions(ctx context.Context, regionIDs []id.RegionID) ([]id.UserID, error) {
	if len(regionIDs) == 0 {
		return nil, nil
	}
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT DISTINCT u.id FROM users u
		 JOIN user_regions ur ON ur.user_id = u.id
		 WHERE u.role = $1 AND ur.region_id = ANY($2)
		 ORDER BY u.id`,
		string(id.RoleAdmin), pq.Array(regionIDStrings(regionIDs)),
	)
	if err != nil {
		return nil, fmt.Errorf("admins in regions: %w", err)
	}
	defer rows.Close()
	return scanUserIDs(rows)
}

func (s *Postgres) RegionsOfUser(ctx context.Context, userID id.UserID) ([]id.RegionID, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT region_id FROM user_regions WHERE user_id = $1 ORDER BY region_id`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("regions of user: %w", err)
	}
	defer rows.Close()
	return scanRegionIDs(rows)
}

func (s *Postgres) IslandsOfUser(ctx context.Context, userID id.UserID) ([]id.IslandID, error) {
	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT island_id FROM user_islands WHERE user_id = $1 ORDER BY island_id`,
		userID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("islands of user: %w", err)
	}
	defer rows.Close()
	return scanIslandIDs(rows)
}

func (s *Postgres) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Regions:     make(map[id.RegionID]models.Region),
		Islands:     make(map[id.IslandID]models.Island),
		Users:       make(map[id.UserID]models.User),
		UserRegions: make(map[id.UserID][]id.RegionID),
		UserIslands: make(map[id.UserID][]id.IslandID),
	}

	regions, err := s.ListRegions(ctx)
	if err != nil {
		return nil, err
	}
	for _, region := range regions {
		snap.Regions[region.ID] = *region
	}

	rows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, region_id, name, created_at FROM islands`,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot islands: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			island    models.Island
			rawID     string
			rawRegion string
		)
		if err := rows.Scan(&rawID, &rawRegion, &island.Name, &island.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan island: %w", err)
		}
		if island.ID, err = id.ParseIslandID(rawID); err != nil {
			return nil, err
		}
		if island.RegionID, err = id.ParseRegionID(rawRegion); err != nil {
			return nil, err
		}
		snap.Islands[island.ID] = island
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	userRows, err := s.q(ctx).QueryContext(ctx,
		`SELECT id, name, role, verified_status, created_at FROM users`,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot users: %w", err)
	}
	defer userRows.Close()
	for userRows.Next() {
		var (
			user  models.User
			rawID string
		)
		if err := userRows.Scan(&rawID, &user.Name, &user.Role, &user.Verified, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		if user.ID, err = id.ParseUserID(rawID); err != nil {
			return nil, err
		}
		snap.Users[user.ID] = user
	}
	if err := userRows.Err(); err != nil {
		return nil, err
	}

	memberRows, err := s.q(ctx).QueryContext(ctx,
		`SELECT user_id, region_id FROM user_regions`,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot user regions: %w", err)
	}
	defer memberRows.Close()
	for memberRows.Next() {
		var rawUser, rawRegion string
		if err := memberRows.Scan(&rawUser, &rawRegion); err != nil {
			return nil, fmt.Errorf("scan user region: %w", err)
		}
		userID, err := id.ParseUserID(rawUser)
		if err != nil {
			return nil, err
		}
		regionID, err := id.ParseRegionID(rawRegion)
		if err != nil {
			return nil, err
		}
		snap.UserRegions[userID] = append(snap.UserRegions[userID], regionID)
	}
	if err := memberRows.Err(); err != nil {
		return nil, err
	}

	islandRows, err := s.q(ctx).QueryContext(ctx,
		`SELECT user_id, island_id FROM user_islands`,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot user islands: %w", err)
	}
	defer islandRows.Close()
	for islandRows.Next() {
		var rawUser, rawIsland string
		if err := islandRows.Scan(&rawUser, &rawIsland); err != nil {
			return nil, fmt.Errorf("scan user island: %w", err)
		}
		userID, err := id.ParseUserID(rawUser)
		if err != nil {
			return nil, err
		}
		islandID, err := id.ParseIslandID(rawIsland)
		if err != nil {
			return nil, err
		}
		snap.UserIslands[userID] = append(snap.UserIslands[userID], islandID)
	}
	if err := islandRows.Err(); err != nil {
		return nil, err
	}

	return snap, nil
}

func regionIDStrings(ids []id.RegionID) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		out = append(out, v.String())
	}
	return out
}

func islandIDStrings(ids []id.IslandID) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		out = append(out, v.String())
	}
	return out
}

func scanUserIDs(rows *sql.Rows) ([]id.UserID, error) {
	var out []id.UserID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		userID, err := id.ParseUserID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, userID)
	}
	return out, rows.Err()
}

func scanRegionIDs(rows *sql.Rows) ([]id.RegionID, error) {
	var out []id.RegionID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan region id: %w", err)
		}
		regionID, err := id.ParseRegionID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, regionID)
	}
	return out, rows.Err()
}

func scanIslandIDs(rows *sql.Rows) ([]id.IslandID, error) {
	var out []id.IslandID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan island id: %w", err)
		}
		islandID, err := id.ParseIslandID(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, islandID)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23503"
	}
	return false
}
