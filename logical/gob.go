package logical

import (
	"encoding/gob"
)

// Plans and expressions cross the wire inside Collect actions, encoded
// with gob. Register every concrete variant so interface-typed fields
// round-trip.
func init() {
	gob.Register(&ColumnExpr{})
	gob.Register(&LiteralExpr{})
	gob.Register(&WildcardExpr{})
	gob.Register(&AggregateExpr{})
	gob.Register(&EmptyRelation{})
	gob.Register(&MemoryScan{})
	gob.Register(&FileScan{})
	gob.Register(&Projection{})
	gob.Register(&Selection{})
	gob.Register(&Limit{})
	gob.Register(&Aggregate{})
}
