// Copyright 2026 Google LLC
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package dbpool

import (
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// ConvertToType decodes a single raw driver value according to its MySQL
// column type, the same decode table the original implementation's
// get_column_val used:
//
//	BIGINT/INT family        -> int64
//	DATETIME/TIMESTAMP/DATE/TIME -> string (verbatim)
//	TEXT family / VARCHAR / CHAR -> string
//	JSON                      -> parsed value (object/array/scalar)
//	BLOB/BINARY family        -> UTF-8 string, or base64 if not valid UTF-8
//	DECIMAL                   -> string (to avoid float precision loss)
//	FLOAT/DOUBLE              -> float64
//	NULL                      -> nil
func ConvertToType(colType *sql.ColumnType, raw any) (any, error) {
	if raw == nil {
		return nil, nil
	}

	dbType := strings.ToUpper(colType.DatabaseTypeName())

	switch v := raw.(type) {
	case []byte:
		switch dbType {
		case "JSON":
			var parsed any
			if err := json.Unmarshal(v, &parsed); err != nil {
				return nil, err
			}
			return parsed, nil
		case "BLOB", "TINYBLOB", "MEDIUMBLOB", "LONGBLOB", "BINARY", "VARBINARY":
			if utf8.Valid(v) {
				return string(v), nil
			}
			return base64.StdEncoding.EncodeToString(v), nil
		case "DECIMAL", "NEWDECIMAL":
			return string(v), nil
		default:
			return string(v), nil
		}
	case int64:
		return v, nil
	case float64:
		return v, nil
	case bool:
		return v, nil
	default:
		return v, nil
	}
}
