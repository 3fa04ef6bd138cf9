package persist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

type CharacterRow struct {
	ID               int32
	AccountName      string
	Name             string
	HairStyle        int16
	HairColor        int16
	Points           int16
	CorrectionPoints int16
	MapID            int32
	X                int32
	Y                int32
	CreatedAt        time.Time
}

// AttributeRow is one persisted attribute. Base is authoritative; modified
// is stored alongside so other services can read effective values without
// replaying the modifier stack.
type AttributeRow struct {
	AttrID   int32
	Base     float64
	Modified float64
}

type KillRow struct {
	TypeID int32
	Count  int32
}

type ItemRow struct {
	Slot   uint16
	ItemID uint32
	Amount uint16
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

func (r *CharacterRepo) LoadByID(ctx context.Context, id int32) (*CharacterRow, error) {
	c := &CharacterRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, account_name, name, hair_style, hair_color,
		        points, correction_points, map_id, x, y, created_at
		 FROM characters WHERE id = $1`, id,
	).Scan(
		&c.ID, &c.AccountName, &c.Name, &c.HairStyle, &c.HairColor,
		&c.Points, &c.CorrectionPoints, &c.MapID, &c.X, &c.Y, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CharacterRepo) LoadByName(ctx context.Context, name string) (*CharacterRow, error) {
	c := &CharacterRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, account_name, name, hair_style, hair_color,
		        points, correction_points, map_id, x, y, created_at
		 FROM characters WHERE name = $1`, name,
	).Scan(
		&c.ID, &c.AccountName, &c.Name, &c.HairStyle, &c.HairColor,
		&c.Points, &c.CorrectionPoints, &c.MapID, &c.X, &c.Y, &c.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *CharacterRepo) LoadByAccount(ctx context.Context, accountName string) ([]CharacterRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT id, account_name, name, hair_style, hair_color,
		        points, correction_points, map_id, x, y, created_at
		 FROM characters WHERE account_name = $1 ORDER BY id`, accountName,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CharacterRow
	for rows.Next() {
		var c CharacterRow
		if err := rows.Scan(
			&c.ID, &c.AccountName, &c.Name, &c.HairStyle, &c.HairColor,
			&c.Points, &c.CorrectionPoints, &c.MapID, &c.X, &c.Y, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *CharacterRepo) Create(ctx context.Context, c *CharacterRow) error {
	return r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (
			account_name, name, hair_style, hair_color,
			points, correction_points, map_id, x, y
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id`,
		c.AccountName, c.Name, c.HairStyle, c.HairColor,
		c.Points, c.CorrectionPoints, c.MapID, c.X, c.Y,
	).Scan(&c.ID)
}

func (r *CharacterRepo) NameExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM characters WHERE name = $1)`, name,
	).Scan(&exists)
	return exists, err
}

func (r *CharacterRepo) LoadAttributes(ctx context.Context, charID int32) ([]AttributeRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT attr_id, base, modified
		 FROM character_attributes WHERE char_id = $1 ORDER BY attr_id`, charID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AttributeRow
	for rows.Next() {
		var a AttributeRow
		if err := rows.Scan(&a.AttrID, &a.Base, &a.Modified); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// UpsertAttribute writes one attribute's current values. Called from the
// persist flush with whatever the game loop queued during the tick.
func (r *CharacterRepo) UpsertAttribute(ctx context.Context, charID, attrID int32, base, modified float64) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO character_attributes (char_id, attr_id, base, modified)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (char_id, attr_id)
		 DO UPDATE SET base = EXCLUDED.base, modified = EXCLUDED.modified`,
		charID, attrID, base, modified,
	)
	return err
}

func (r *CharacterRepo) LoadKills(ctx context.Context, charID int32) ([]KillRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT type_id, count FROM character_kills WHERE char_id = $1 ORDER BY type_id`, charID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []KillRow
	for rows.Next() {
		var k KillRow
		if err := rows.Scan(&k.TypeID, &k.Count); err != nil {
			return nil, err
		}
		result = append(result, k)
	}
	return result, rows.Err()
}

func (r *CharacterRepo) UpsertKillCount(ctx context.Context, charID, typeID, count int32) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO character_kills (char_id, type_id, count)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (char_id, type_id) DO UPDATE SET count = EXCLUDED.count`,
		charID, typeID, count,
	)
	return err
}

func (r *CharacterRepo) LoadAbilities(ctx context.Context, charID int32) ([]int32, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT ability_id FROM character_abilities WHERE char_id = $1 ORDER BY ability_id`, charID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []int32
	for rows.Next() {
		var id int32
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		result = append(result, id)
	}
	return result, rows.Err()
}

func (r *CharacterRepo) GrantAbility(ctx context.Context, charID, abilityID int32) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO character_abilities (char_id, ability_id)
		 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		charID, abilityID,
	)
	return err
}

func (r *CharacterRepo) LoadItems(ctx context.Context, charID int32) ([]ItemRow, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT slot, item_id, amount FROM character_items WHERE char_id = $1 ORDER BY slot`, charID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ItemRow
	for rows.Next() {
		var it ItemRow
		if err := rows.Scan(&it.Slot, &it.ItemID, &it.Amount); err != nil {
			return nil, err
		}
		result = append(result, it)
	}
	return result, rows.Err()
}

// SaveSnapshot writes a full character state in one transaction: the base
// row, every attribute, every kill tally, the ability list and the
// inventory. Partial writes are never visible to a concurrent loader.
func (r *CharacterRepo) SaveSnapshot(ctx context.Context, c *CharacterRow,
	attrs []AttributeRow, kills []KillRow, abilities []int32, items []ItemRow) error {

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE characters SET
			hair_style = $1, hair_color = $2,
			points = $3, correction_points = $4,
			map_id = $5, x = $6, y = $7
		 WHERE id = $8`,
		c.HairStyle, c.HairColor, c.Points, c.CorrectionPoints,
		c.MapID, c.X, c.Y, c.ID,
	); err != nil {
		return err
	}

	for _, a := range attrs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO character_attributes (char_id, attr_id, base, modified)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (char_id, attr_id)
			 DO UPDATE SET base = EXCLUDED.base, modified = EXCLUDED.modified`,
			c.ID, a.AttrID, a.Base, a.Modified,
		); err != nil {
			return err
		}
	}

	for _, k := range kills {
		if _, err := tx.Exec(ctx,
			`INSERT INTO character_kills (char_id, type_id, count)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (char_id, type_id) DO UPDATE SET count = EXCLUDED.count`,
			c.ID, k.TypeID, k.Count,
		); err != nil {
			return err
		}
	}

	for _, id := range abilities {
		if _, err := tx.Exec(ctx,
			`INSERT INTO character_abilities (char_id, ability_id)
			 VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			c.ID, id,
		); err != nil {
			return err
		}
	}

	// Inventory is replaced wholesale. Slots deleted in game must not
	// survive the save.
	if _, err := tx.Exec(ctx,
		`DELETE FROM character_items WHERE char_id = $1`, c.ID,
	); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(ctx,
			`INSERT INTO character_items (char_id, slot, item_id, amount)
			 VALUES ($1, $2, $3, $4)`,
			c.ID, it.Slot, it.ItemID, it.Amount,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
