// Copyright 2025 Gramsetu Contributors
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

package mysql

import (
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	m, err := NewWithOptions(
		WithHost("db.local"),
		WithPort(3307),
		WithUser("gram"),
		WithPassword("secret"),
		WithDatabase("villages"),
		WithTLSMode("skip-verify"),
	)
	require.NoError(t, err)
	cfg, err := mysql.ParseDSN(m.DSN())
	require.NoError(t, err)
	assert.Equal(t, "gram", cfg.User)
	assert.Equal(t, "secret", cfg.Passwd)
	assert.Equal(t, "db.local:3307", cfg.Addr)
	assert.Equal(t, "villages", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "skip-verify", cfg.TLSConfig)
}

func TestDSNOverride(t *testing.T) {
	m, err := NewWithOptions(WithDSN("u:p@tcp(h:3306)/db?parseTime=true"))
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(h:3306)/db?parseTime=true", m.DSN())
}

func TestDefaults(t *testing.T) {
	m, err := NewWithOptions()
	require.NoError(t, err)
	assert.Equal(t, "root", m.user)
	assert.Equal(t, uint(3306), m.port)
	assert.Equal(t, 50, m.maxConns)
	assert.NoError(t, m.Close())
}
