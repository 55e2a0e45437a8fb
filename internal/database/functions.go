package database

import (
	"database/sql/driver"
	"strings"

	"modernc.org/sqlite"
)

// SQLite の組み込み LOWER は ASCII しか小文字化しない
const sqliteLowerFunc = "unicode_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(sqliteLowerFunc, 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return v, nil
		}
	})
}

// LowerFunc は方言ごとの Unicode 対応の小文字化関数名を返します。
func LowerFunc(d Dialect) string {
	if d == SQLite {
		return sqliteLowerFunc
	}
	return "LOWER"
}
