// Copyright (c) 2025 ADBC Drivers Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//         http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloudsql

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/adbc-drivers/driverbase-go/driverbase"
	"github.com/apache/arrow-adbc/go/adbc"
	"github.com/go-sql-driver/mysql"
)

// The transport stringifies server errors as either "1045: message" or
// "(1062, 'message')"; some re-wrapped errors match neither form.
var errorCodeRE = regexp.MustCompile(`^(\d+)L?:|^\((\d+)L?,`)

// ExtractErrorCode attempts to recover the server's numeric error code from
// an error. Structured wire-driver errors carry the code directly; anything
// else is parsed best-effort from the string form. When the transport has
// re-wrapped the error into an unrecognizable shape, ok is false and the
// error stays unclassified.
func ExtractErrorCode(err error) (code int, ok bool) {
	if err == nil {
		return 0, false
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return int(me.Number), true
	}
	m := errorCodeRE.FindStringSubmatch(err.Error())
	if m == nil {
		return 0, false
	}
	digits := m[1]
	if digits == "" {
		digits = m[2]
	}
	n, convErr := strconv.Atoi(digits)
	if convErr != nil {
		return 0, false
	}
	return n, true
}

// wrapServerError wraps a server-side failure into an adbc.Error carrying
// the recovered vendor code, the mapped status, and the SQLSTATE when the
// wire driver reports one. Errors that are already ADBC errors pass
// through unchanged; unclassifiable errors keep StatusIO.
func wrapServerError(helper *driverbase.ErrorHelper, err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	var existing adbc.Error
	if errors.As(err, &existing) {
		return err
	}

	adbcErr := adbc.Error{
		Code: adbc.StatusIO,
		Msg:  fmt.Sprintf("[%s] %s: %v", helper.DriverName, fmt.Sprintf(format, args...), err),
	}

	var me *mysql.MySQLError
	if errors.As(err, &me) && me.SQLState != [5]byte{} {
		adbcErr.SqlState = me.SQLState
	}
	if code, ok := ExtractErrorCode(err); ok {
		adbcErr.VendorCode = int32(code)
		adbcErr.Code = statusForCode(code, adbc.StatusIO)
	}
	return errors.Join(adbcErr, err)
}

func statusForCode(code int, defaultStatus adbc.Status) adbc.Status {
	switch code {
	case 1022, 1062: // duplicate key / duplicate entry
		return adbc.StatusAlreadyExists
	case 1045: // access denied
		return adbc.StatusUnauthenticated
	case 1044, 1142: // database / command denied
		return adbc.StatusUnauthorized
	case 1049, 1146: // unknown database / table
		return adbc.StatusNotFound
	case 1205: // lock wait timeout
		return adbc.StatusTimeout
	case 1048, 1451, 1452, 3819: // null, foreign key, check violations
		return adbc.StatusIntegrity
	default:
		return defaultStatus
	}
}
