package dao

import "database/sql"

type NullInt64 struct {
	sql.NullInt64
}

// AsInt if parent is nil, returns -1
func (ni *NullInt64) AsInt() int64 {
	if !ni.NullInt64.Valid {
		return -1
	}
	return ni.NullInt64.Int64
}

func (ni *NullInt64) AsPtr() *int64 {
	if !ni.NullInt64.Valid {
		return nil
	}
	v := ni.NullInt64.Int64
	return &v
}

func NullInt64From(v *int64) NullInt64 {
	if v == nil {
		return NullInt64{}
	}
	return NullInt64{sql.NullInt64{Int64: *v, Valid: true}}
}

type NullString struct {
	sql.NullString
}

func (ns *NullString) AsPtr() *string {
	if !ns.NullString.Valid {
		return nil
	}
	v := ns.NullString.String
	return &v
}

func NullStringFrom(v *string) NullString {
	if v == nil {
		return NullString{}
	}
	return NullString{sql.NullString{String: *v, Valid: true}}
}
