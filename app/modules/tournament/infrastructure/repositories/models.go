package tournamentdb

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// Snapshot is one stored tournament document. The full event state lives in
// the jsonb column; the name is duplicated out of the document so upserts
// can key on it.
type Snapshot struct {
	bun.BaseModel `bun:"table:tournaments,alias:t"`
	ID            int64           `bun:"id,pk,autoincrement" json:"id"`
	Name          string          `bun:"name,unique,notnull" json:"name"`
	Document      json.RawMessage `bun:"document,type:jsonb,notnull" json:"document"`
	UpdatedAt     time.Time       `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}
