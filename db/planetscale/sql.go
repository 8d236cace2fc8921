package planetscale

import (
	"context"

	"github.com/upper/db/v4"
)

var personColumns = []string{
	"id", "email", "username", "displayname", "description", "avatar", "banner", "created_at",
}

// prefixedColumns qualifies columns with a table alias for joins.
func prefixedColumns(alias string, columns []string, extra ...interface{}) []interface{} {
	output := make([]interface{}, 0, len(columns)+len(extra))
	for _, column := range columns {
		output = append(output, alias+"."+column)
	}
	return append(output, extra...)
}

func exists(ctx context.Context, sess db.Session, table string, cond string, args ...interface{}) (bool, error) {
	var row struct {
		Found int `db:"found"`
	}
	if err := sess.SQL().
		Select(db.Raw("1 AS found")).
		From(table).
		Where(append([]interface{}{cond}, args...)...).
		Limit(1).
		IteratorContext(ctx).
		One(&row); err != nil {
		if err == db.ErrNoMoreRows {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
