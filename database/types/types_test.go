// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package types_test

import (
	"database/sql"
	"database/sql/driver"
	"reflect"
	"testing"

	"github.com/blinklabs-io/kelpie/database/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypesScanValue(t *testing.T) {
	testDefs := []struct {
		origValue     any
		expectedValue any
	}{
		{
			origValue: func(v types.Uint64) *types.Uint64 { return &v }(
				types.Uint64(123),
			),
			expectedValue: "00000000000000000123",
		},
		{
			origValue: func(v types.Uint64) *types.Uint64 { return &v }(
				types.Uint64(18446744073709551615),
			),
			expectedValue: "18446744073709551615",
		},
	}
	var ok bool
	var tmpScanner sql.Scanner
	var tmpValuer driver.Valuer
	for _, testDef := range testDefs {
		tmpValuer, ok = testDef.origValue.(driver.Valuer)
		if !ok {
			t.Fatalf("test original value does not implement driver.Valuer")
		}
		valueOut, err := tmpValuer.Value()
		if err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !reflect.DeepEqual(valueOut, testDef.expectedValue) {
			t.Fatalf(
				"did not get expected value from Value(): got %#v, expected %#v",
				valueOut,
				testDef.expectedValue,
			)
		}
		tmpScanner, ok = testDef.origValue.(sql.Scanner)
		if !ok {
			t.Fatalf(
				"test original value does not implement sql.Scanner (it must be a pointer)",
			)
		}
		if err := tmpScanner.Scan(valueOut); err != nil {
			t.Fatalf("unexpected error: %s", err)
		}
		if !reflect.DeepEqual(tmpScanner, testDef.origValue) {
			t.Fatalf(
				"did not get expected value after Scan(): got %#v, expected %#v",
				tmpScanner,
				testDef.origValue,
			)
		}
	}
}

func TestUint64Scan(t *testing.T) {
	var u types.Uint64
	require.NoError(t, u.Scan([]byte("00000000000000000042")))
	assert.Equal(t, types.Uint64(42), u)
	require.Error(t, u.Scan(int64(5)))
	require.Error(t, u.Scan("-1"))
}

func TestUint64ValueOrdersNumerically(t *testing.T) {
	small, err := types.Uint64(9).Value()
	require.NoError(t, err)
	large, err := types.Uint64(10).Value()
	require.NoError(t, err)
	assert.Less(t, small.(string), large.(string))
}

func TestAccountBlobKey(t *testing.T) {
	addr := make([]byte, 32)
	addr[0] = 0xaa
	key := types.AccountBlobKey(addr)
	assert.Equal(t, "acct", string(key[:4]))
	assert.Len(t, key, 36)
	assert.Equal(t, addr, types.AccountAddressFromKey(key))
	assert.Nil(t, types.AccountAddressFromKey([]byte("bp1234")))
	assert.Nil(t, types.AccountAddressFromKey([]byte("acct")))
}
